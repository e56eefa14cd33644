package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorewatch/core"
	"scorewatch/osuapi"
	"scorewatch/realtime"
	"scorewatch/search"
)

type stubSearcher struct {
	got    search.Params
	scores []*core.ScoreRecord
	err    error
}

func (s *stubSearcher) Search(_ context.Context, p search.Params) ([]*core.ScoreRecord, error) {
	s.got = p
	return s.scores, s.err
}

type stubState struct {
	suspicious []*core.ScoreRecord
}

func (s *stubState) Snapshot() core.Snapshot {
	return core.Snapshot{Recent: nil, Suspicious: s.suspicious}
}

func (s *stubState) Suspicious() []*core.ScoreRecord { return s.suspicious }

func newTestServer(t *testing.T, searcher Searcher, state State, opts Options) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewMux(searcher, state, realtime.NewHub(), opts))
	t.Cleanup(srv.Close)
	return srv
}

func decodeError(t *testing.T, resp *http.Response) apiError {
	t.Helper()
	var e apiError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func TestSearchRequiresCredentials(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{}, &stubState{}, Options{})

	resp, err := http.Get(srv.URL + "/search?user=peppy")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing_credentials", decodeError(t, resp).Code)
}

func TestSearchParsesParams(t *testing.T) {
	s := &stubSearcher{scores: []*core.ScoreRecord{{ID: 1}}}
	srv := newTestServer(t, s, &stubState{}, Options{})

	resp, err := http.Get(srv.URL + "/search?client_id=cid&client_secret=sec&min_pp=200&max_pp=300&mods=hd,dt&limit=5&type=recent&include_fails=1&user=peppy")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "peppy", s.got.Username)
	assert.Equal(t, "cid", s.got.ClientID)
	require.NotNil(t, s.got.MinPP)
	assert.Equal(t, 200.0, *s.got.MinPP)
	require.NotNil(t, s.got.MaxPP)
	assert.Equal(t, 300.0, *s.got.MaxPP)
	assert.Equal(t, []string{"HD", "DT"}, s.got.Mods)
	assert.Equal(t, 5, s.got.Limit)
	assert.Equal(t, "recent", s.got.Type)
	assert.True(t, s.got.IncludeFails)

	var body struct {
		Scores []*core.ScoreRecord `json:"scores"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Scores, 1)
}

func TestSearchErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", search.ErrNotFound, http.StatusNotFound, "user_not_found"},
		{"bad credentials", osuapi.ErrUnauthorized, http.StatusUnauthorized, "invalid_credentials"},
		{"upstream", assert.AnError, http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, &stubSearcher{err: tc.err}, &stubState{}, Options{})

			resp, err := http.Get(srv.URL + "/search?client_id=cid&client_secret=sec")
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, tc.wantCode, decodeError(t, resp).Code)
		})
	}
}

func TestSearchRejectsBadNumbers(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{}, &stubState{}, Options{})

	resp, err := http.Get(srv.URL + "/search?client_id=cid&client_secret=sec&min_pp=lots")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_min_pp", decodeError(t, resp).Code)
}

func TestSuspiciousSnapshot(t *testing.T) {
	state := &stubState{suspicious: []*core.ScoreRecord{{ID: 1, PP: 150}, {ID: 2, PP: 220}}}
	srv := newTestServer(t, &stubSearcher{}, state, Options{})

	resp, err := http.Get(srv.URL + "/suspicious")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Scores []*core.ScoreRecord `json:"scores"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Scores, 2)
	assert.Equal(t, int64(1), body.Scores[0].ID)
}

func TestPathPrefixAndHealthz(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{}, &stubState{}, Options{PathPrefix: "/api"})

	resp, err := http.Get(srv.URL + "/api/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	missing, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestAPIKeyAuth(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{}, &stubState{}, Options{APIKeys: []string{"sekrit"}})

	resp, err := http.Get(srv.URL + "/suspicious")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/suspicious", nil)
	req.Header.Set("X-API-Key", "sekrit")
	authed, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer authed.Body.Close()
	assert.Equal(t, http.StatusOK, authed.StatusCode)
}
