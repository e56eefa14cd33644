// Package sdk provides typed Go access to the scorewatch HTTP and
// WebSocket API.
package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"scorewatch/core"
)

// Option configures the Client.
type Option func(*Client)

// Client provides typed access to the scorewatch HTTP + WebSocket API.
type Client struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	headers    http.Header
}

// NewClient constructs a new SDK client targeting the given baseURL (e.g., http://localhost:8080/api).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:    baseURL,
		wsURL:      deriveWSURL(baseURL),
		httpClient: http.DefaultClient,
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithAuthToken adds an Authorization: Bearer token header to all requests (HTTP + WS).
func WithAuthToken(token string) Option {
	return func(c *Client) {
		if strings.TrimSpace(token) != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithAPIKey adds an X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.headers.Set("X-API-Key", key)
		}
	}
}

// WithHeader sets an arbitrary header applied to HTTP and WS calls.
func WithHeader(k, v string) Option {
	return func(c *Client) {
		if k != "" {
			c.headers.Set(k, v)
		}
	}
}

// Search runs one on-demand score query and returns the matching
// records, newest first.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]*core.ScoreRecord, error) {
	if strings.TrimSpace(q.ClientID) == "" || strings.TrimSpace(q.ClientSecret) == "" {
		return nil, ErrMissingCredentials
	}

	u, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, err
	}
	vals := u.Query()
	vals.Set("client_id", q.ClientID)
	vals.Set("client_secret", q.ClientSecret)
	if q.User != "" {
		vals.Set("user", q.User)
	}
	if q.MinPP != nil {
		vals.Set("min_pp", strconv.FormatFloat(*q.MinPP, 'f', -1, 64))
	}
	if q.MaxPP != nil {
		vals.Set("max_pp", strconv.FormatFloat(*q.MaxPP, 'f', -1, 64))
	}
	if len(q.Mods) > 0 {
		vals.Set("mods", strings.Join(q.Mods, ","))
	}
	if q.Limit > 0 {
		vals.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Type != "" {
		vals.Set("type", q.Type)
	}
	if q.IncludeFails {
		vals.Set("include_fails", "1")
	}
	u.RawQuery = vals.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Scores []*core.ScoreRecord `json:"scores"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, err
	}
	return body.Scores, nil
}

// Suspicious fetches every score flagged since the tracker started.
func (c *Client) Suspicious(ctx context.Context) ([]*core.ScoreRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/suspicious", nil)
	if err != nil {
		return nil, err
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Scores []*core.ScoreRecord `json:"scores"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, err
	}
	return body.Scores, nil
}

// Health probes /healthz and returns status plus the live-client count.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return HealthStatus{}, err
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthStatus{}, err
	}
	defer resp.Body.Close()

	var hs HealthStatus
	if err := decodeJSON(resp, &hs); err != nil {
		return HealthStatus{}, err
	}
	return hs, nil
}

// Subscribe connects to the WebSocket stream and emits frames: the
// state snapshot first, then live events. The returned channel closes
// when ctx is done or the connection drops.
func (c *Client) Subscribe(ctx context.Context) (<-chan Message, error) {
	if c.wsURL == "" {
		return nil, errors.New("wsURL is not set; ensure baseURL is http/https")
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, c.headers)
	if err != nil {
		return nil, err
	}

	out := make(chan Message, 32)
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				_, raw, err := conn.ReadMessage()
				if err != nil {
					return
				}
				msg, err := decodeFrame(raw)
				if err != nil {
					continue
				}
				select {
				case out <- msg:
				default:
					// drop if consumer is slow
				}
			}
		}
	}()
	return out, nil
}

// decodeFrame classifies a raw WS frame by its type tag.
func decodeFrame(raw []byte) (Message, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Message{}, err
	}
	msg := Message{Type: probe.Type}
	if probe.Type == "snapshot" {
		var snap core.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return Message{}, err
		}
		msg.Snapshot = &snap
		return msg, nil
	}
	var evt core.Event
	if err := json.Unmarshal(raw, &evt); err != nil {
		return Message{}, err
	}
	if evt.Type == "" {
		return Message{}, fmt.Errorf("frame missing type tag")
	}
	msg.Event = &evt
	return msg, nil
}

func (c *Client) applyHeaders(r *http.Request) {
	for k, vals := range c.headers {
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}
}

func deriveWSURL(httpBase string) string {
	u, err := url.Parse(httpBase)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		// leave as-is for custom schemes
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
