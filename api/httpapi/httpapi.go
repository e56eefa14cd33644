// Package httpapi exposes the score tracker over HTTP: the search
// endpoint, the suspicious-score snapshot, and the WebSocket stream.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	wsadapter "scorewatch/adapters/websocket"
	"scorewatch/core"
	"scorewatch/osuapi"
	"scorewatch/realtime"
	"scorewatch/search"
)

// Options configures the HTTP API surface.
type Options struct {
	// PathPrefix, if set, is prepended to all routes (e.g., "/api").
	PathPrefix string
	// AllowCORSOrigin, if non-empty, enables basic CORS with the given origin (use "*" for any).
	AllowCORSOrigin string
	// APIKeys, if non-empty, enables static API key auth via Authorization: Bearer or X-API-Key.
	APIKeys []string
	// RateLimitEnabled toggles rate limiting.
	RateLimitEnabled bool
	// RateLimitRPM is the allowed requests per minute per client key.
	RateLimitRPM int
	// RateLimitBurst defines burst capacity.
	RateLimitBurst int
}

// Searcher runs one on-demand score query.
type Searcher interface {
	Search(ctx context.Context, p search.Params) ([]*core.ScoreRecord, error)
}

// State is the tracker state exposed over HTTP.
type State interface {
	Snapshot() core.Snapshot
	Suspicious() []*core.ScoreRecord
}

// NewMux builds an http.Handler exposing the scorewatch API.
// Routes:
//   - GET {prefix}/search?user=&min_pp=&max_pp=&mods=HD,DT&limit=&type=best|recent&include_fails=&client_id=&client_secret=
//   - GET {prefix}/suspicious
//   - GET {prefix}/healthz
//   - WS  {prefix}/ws
func NewMux(searcher Searcher, state State, hub *realtime.Hub, opts Options) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/healthz"), func(w http.ResponseWriter, r *http.Request) {
		healthCheck(w, r, hub)
	})

	// WebSocket events
	if hub != nil {
		mux.Handle(withPrefix(opts.PathPrefix, "/ws"), wsadapter.Handler(hub, state.Snapshot))
	}

	mux.HandleFunc(withPrefix(opts.PathPrefix, "/suspicious"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET", nil)
			return
		}
		scores := state.Suspicious()
		if scores == nil {
			scores = []*core.ScoreRecord{}
		}
		writeJSON(w, map[string]any{"scores": scores})
	})

	mux.HandleFunc(withPrefix(opts.PathPrefix, "/search"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET", nil)
			return
		}
		handleSearch(w, r, searcher)
	})

	var handler http.Handler = mux
	if opts.AllowCORSOrigin != "" {
		handler = withCORS(handler, opts.AllowCORSOrigin)
	}
	if len(opts.APIKeys) > 0 {
		handler = withAPIKeyAuth(handler, opts.APIKeys)
	}
	if opts.RateLimitEnabled && opts.RateLimitRPM > 0 && opts.RateLimitBurst > 0 {
		handler = withRateLimit(handler, opts.RateLimitRPM, opts.RateLimitBurst)
	}
	return handler
}

func handleSearch(w http.ResponseWriter, r *http.Request, searcher Searcher) {
	q := r.URL.Query()

	p := search.Params{
		Username:     q.Get("user"),
		Type:         q.Get("type"),
		ClientID:     strings.TrimSpace(q.Get("client_id")),
		ClientSecret: strings.TrimSpace(q.Get("client_secret")),
	}
	if p.ClientID == "" || p.ClientSecret == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials", "client_id and client_secret are required", nil)
		return
	}

	switch v := q.Get("include_fails"); v {
	case "1", "true":
		p.IncludeFails = true
	}

	if v := q.Get("min_pp"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_min_pp", "min_pp must be numeric", nil)
			return
		}
		p.MinPP = &f
	}
	if v := q.Get("max_pp"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_max_pp", "max_pp must be numeric", nil)
			return
		}
		p.MaxPP = &f
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer", nil)
			return
		}
		p.Limit = n
	}
	if v := q.Get("mods"); v != "" {
		for _, mod := range strings.Split(v, ",") {
			if mod = strings.TrimSpace(mod); mod != "" {
				p.Mods = append(p.Mods, strings.ToUpper(mod))
			}
		}
	}

	scores, err := searcher.Search(r.Context(), p)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrNotFound):
			writeError(w, http.StatusNotFound, "user_not_found", "username could not be resolved", nil)
		case errors.Is(err, osuapi.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "credential exchange was rejected", nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal", err.Error(), nil)
		}
		return
	}
	if scores == nil {
		scores = []*core.ScoreRecord{}
	}
	writeJSON(w, map[string]any{"scores": scores})
}

// Helpers

// healthCheck reports liveness plus the live-client count.
func healthCheck(w http.ResponseWriter, _ *http.Request, hub *realtime.Hub) {
	subscribers := 0
	if hub != nil {
		subscribers = hub.Subscribers()
	}
	w.WriteHeader(http.StatusOK)
	writeJSON(w, map[string]any{
		"status":      "healthy",
		"subscribers": subscribers,
	})
}

func withPrefix(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}
	if prefix[len(prefix)-1] == '/' {
		return prefix[:len(prefix)-1] + path
	}
	return prefix + path
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Code: code, Message: msg, Details: details})
}

// withCORS wraps a handler with a minimal CORS policy.
func withCORS(next http.Handler, origin string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withAPIKeyAuth enforces a shared API key list.
func withAPIKeyAuth(next http.Handler, apiKeys []string) http.Handler {
	allowed := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		k = strings.TrimSpace(k)
		if k != "" {
			allowed[k] = struct{}{}
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractAPIKey(r)
		if key == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing API key", nil)
			return
		}
		if _, ok := allowed[key]; !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid API key", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit applies a simple token-bucket limiter per client key.
func withRateLimit(next http.Handler, rpm int, burst int) http.Handler {
	limiter := newRateLimiter(rpm, burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !limiter.allow(key) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractAPIKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	return ""
}

// clientKey uses API key if present, otherwise remote IP.
func clientKey(r *http.Request) string {
	if key := extractAPIKey(r); key != "" {
		return key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type rateLimiter struct {
	rpm   float64
	burst float64
	mu    sync.Mutex
	b     map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

func newRateLimiter(rpm, burst int) *rateLimiter {
	return &rateLimiter{
		rpm:   float64(rpm),
		burst: float64(burst),
		b:     make(map[string]*bucket),
	}
}

func (l *rateLimiter) allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.b[key]
	if !ok {
		l.b[key] = &bucket{tokens: l.burst - 1, last: now}
		return true
	}

	elapsed := now.Sub(b.last).Minutes()
	b.tokens += elapsed * l.rpm
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
