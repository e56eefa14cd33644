package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"scorewatch/core"
)

// SearchQuery carries the parameters for one /search request.
// ClientID and ClientSecret are the caller's own API application
// credentials; the server never uses its poller credentials for search.
type SearchQuery struct {
	User         string
	MinPP        *float64
	MaxPP        *float64
	Mods         []string
	Limit        int
	Type         string // "best" or "recent"; user mode only
	IncludeFails bool
	ClientID     string
	ClientSecret string
}

// HealthStatus describes the /healthz response.
type HealthStatus struct {
	Status      string `json:"status"`
	Subscribers int    `json:"subscribers"`
}

// Message is one frame from the WebSocket stream. The first frame on
// every connection is a snapshot; all later frames are events.
type Message struct {
	Type     string
	Snapshot *core.Snapshot
	Event    *core.Event
}

// APIError is a structured error response from the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

func decodeJSON(resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Code == "" {
			return fmt.Errorf("request failed: status %d", resp.StatusCode)
		}
		return apiErr
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// ErrMissingCredentials is returned before any request is made when a
// search query lacks the caller's API credentials.
var ErrMissingCredentials = errors.New("client_id and client_secret are required")
