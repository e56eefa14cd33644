// Package osuapi is a client for the osu! v2 scoring API: credential
// exchange, the global score feed, per-user score lists, and batched
// beatmap/user lookups.
package osuapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultBaseURL targets the production API host.
	DefaultBaseURL = "https://osu.ppy.sh"

	// BatchLimit is the maximum number of ids accepted by one batched
	// entity lookup call.
	BatchLimit = 50

	apiPrefix = "/api/v2"
	tokenPath = "/oauth/token"

	// tokenSafetyMargin is subtracted from the advertised ttl so the
	// token is refreshed before clock skew or request latency can make
	// an apparently-valid token expire mid-flight.
	tokenSafetyMargin = 60 * time.Second
)

var (
	// ErrUnauthorized indicates the credential exchange was rejected or
	// a bearer token was refused.
	ErrUnauthorized = errors.New("osuapi: invalid client credentials")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("osuapi: not found")
)

// Client talks to the remote API with client-credential auth. The
// bearer token is cached until shortly before expiry; refresh is
// single-flight.
type Client struct {
	http         *resty.Client
	clientID     string
	clientSecret string
	now          func() time.Time

	mu          sync.Mutex
	accessToken string
	expiry      time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host (useful for tests).
func WithBaseURL(base string) Option {
	return func(c *Client) { c.http.SetBaseURL(base) }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithClock overrides the time source used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds a client for the given OAuth application.
func NewClient(clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          time.Now,
	}
	c.http = resty.New().
		SetBaseURL(DefaultBaseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// token returns the cached bearer token, exchanging credentials when it
// is absent or past its safety-margin expiry. The lock is held across
// the exchange, so concurrent callers wait on the in-flight refresh
// instead of issuing duplicates.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.expiry) {
		return c.accessToken, nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
			"grant_type":    "client_credentials",
			"scope":         "public",
		}).
		Post(tokenPath)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusBadRequest:
		return "", ErrUnauthorized
	default:
		return "", fmt.Errorf("token exchange: status %d", resp.StatusCode())
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp.Body(), &tr); err != nil {
		return "", fmt.Errorf("token exchange: decode: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token exchange: empty access token")
	}

	c.accessToken = tr.AccessToken
	c.expiry = c.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenSafetyMargin)
	return c.accessToken, nil
}

// get performs an authenticated GET against the v2 API and decodes the
// JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	req := c.http.R().SetContext(ctx).SetAuthToken(tok)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	resp, err := req.Get(apiPrefix + path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("get %s: status %d", path, resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("get %s: decode: %w", path, err)
	}
	return nil
}
