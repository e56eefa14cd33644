// Package search serves on-demand score queries. Each request runs
// with caller-supplied API credentials, a separate trust domain from
// the background tracker, and shares only the user-entity cache with
// the rest of the process.
package search

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"scorewatch/core"
	"scorewatch/engine"
	"scorewatch/osuapi"
)

// ErrNotFound indicates a username that could not be resolved.
var ErrNotFound = errors.New("search: user not found")

// Global-mode bounds: whichever is hit first ends the pagination loop
// with a partial result.
const (
	DefaultBudget     = 25 * time.Second
	DefaultMaxScanned = 10000
	DefaultLimit      = 10
)

// Source is the slice of the remote API one search request uses.
type Source interface {
	engine.EntitySource
	LatestScores(ctx context.Context, ruleset string, limit int, cursor string) (*osuapi.ScorePage, error)
	LookupUser(ctx context.Context, usernameOrID string) (*core.User, error)
	UserScores(ctx context.Context, userID int64, kind string, includeFails bool, limit int) ([]*core.ScoreRecord, error)
}

// ClientFactory builds an API client from caller-supplied credentials.
type ClientFactory func(clientID, clientSecret string) Source

// Params describes one search request.
type Params struct {
	Username     string
	MinPP        *float64
	MaxPP        *float64
	Mods         []string
	Limit        int
	Type         string // "best" or "recent", default "best"
	IncludeFails bool
	ClientID     string
	ClientSecret string
}

// Options tunes the engine. Zero values take the defaults above.
type Options struct {
	Ruleset    string
	PageSize   int
	Budget     time.Duration
	MaxScanned int
}

// Engine runs search requests.
type Engine struct {
	factory    ClientFactory
	users      engine.UserCache
	ruleset    string
	pageSize   int
	budget     time.Duration
	maxScanned int
	now        func() time.Time
}

func New(factory ClientFactory, users engine.UserCache, opts Options) *Engine {
	e := &Engine{
		factory:    factory,
		users:      users,
		ruleset:    opts.Ruleset,
		pageSize:   opts.PageSize,
		budget:     opts.Budget,
		maxScanned: opts.MaxScanned,
		now:        time.Now,
	}
	if e.ruleset == "" {
		e.ruleset = engine.DefaultRuleset
	}
	if e.pageSize <= 0 {
		e.pageSize = engine.DefaultPageSize
	}
	if e.budget <= 0 {
		e.budget = DefaultBudget
	}
	if e.maxScanned <= 0 {
		e.maxScanned = DefaultMaxScanned
	}
	return e
}

// Search runs one request: resolve and fetch (user mode) or paginate
// the global feed under budget (global mode), then sort by creation
// timestamp descending, truncate to the limit, and enrich only the
// truncated page.
func (e *Engine) Search(ctx context.Context, p Params) ([]*core.ScoreRecord, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	src := e.factory(p.ClientID, p.ClientSecret)

	var scores []*core.ScoreRecord
	var err error
	if strings.TrimSpace(p.Username) != "" {
		scores, err = e.userScores(ctx, src, p)
	} else {
		scores, err = e.globalScores(ctx, src, p, limit)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return laterCreated(scores[i], scores[j])
	})
	if len(scores) > limit {
		scores = scores[:limit]
	}

	fetcher := engine.NewFetcher(src, e.users)
	engine.NewEnricher(fetcher).Enrich(ctx, scores)
	return scores, nil
}

// userScores fetches one user's best or recent list and filters it
// after the fetch.
func (e *Engine) userScores(ctx context.Context, src Source, p Params) ([]*core.ScoreRecord, error) {
	userID, err := resolveUser(ctx, src, p.Username)
	if err != nil {
		return nil, err
	}

	kind := p.Type
	if kind != "recent" {
		kind = "best"
	}
	includeFails := p.IncludeFails && kind == "recent"

	raw, err := src.UserScores(ctx, userID, kind, includeFails, e.pageSize)
	if err != nil {
		return nil, err
	}

	out := make([]*core.ScoreRecord, 0, len(raw))
	for _, s := range raw {
		if s == nil {
			continue
		}
		core.Normalize(s)
		if matchesFilters(s, p) {
			out = append(out, s)
		}
	}
	return out, nil
}

// globalScores paginates the global feed, filtering each page as it
// arrives, until the limit is met or a bound is hit. Bound stops
// return the partial result set, never an error.
func (e *Engine) globalScores(ctx context.Context, src Source, p Params, limit int) ([]*core.ScoreRecord, error) {
	deadline := e.now().Add(e.budget)
	var matches []*core.ScoreRecord
	scanned := 0
	cursor := ""

	for {
		page, err := src.LatestScores(ctx, e.ruleset, e.pageSize, cursor)
		if err != nil {
			// Credential rejections always surface; any other failure
			// after at least one good page yields the partial result.
			if errors.Is(err, osuapi.ErrUnauthorized) || len(matches) == 0 {
				return nil, err
			}
			return matches, nil
		}
		if page == nil || len(page.Scores) == 0 {
			return matches, nil
		}

		scanned += len(page.Scores)
		for _, s := range page.Scores {
			if s == nil {
				continue
			}
			core.Normalize(s)
			if matchesFilters(s, p) {
				matches = append(matches, s)
			}
		}

		switch {
		case len(matches) >= limit:
			return matches, nil
		case scanned >= e.maxScanned:
			return matches, nil
		case e.now().After(deadline):
			return matches, nil
		case ctx.Err() != nil:
			return matches, nil
		case page.Cursor == "":
			// Single "more pages" predicate: a non-empty cursor on a
			// non-empty page.
			return matches, nil
		}
		cursor = page.Cursor
	}
}

// resolveUser treats numeric input as a user id and anything else as a
// username needing a lookup call.
func resolveUser(ctx context.Context, src Source, username string) (int64, error) {
	name := strings.TrimSpace(username)
	if id, err := strconv.ParseInt(name, 10, 64); err == nil && id > 0 {
		return id, nil
	}
	u, err := src.LookupUser(ctx, name)
	if err != nil {
		if errors.Is(err, osuapi.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if u == nil || u.ID == 0 {
		return 0, ErrNotFound
	}
	return u.ID, nil
}

func matchesFilters(s *core.ScoreRecord, p Params) bool {
	pp := float64(s.PP)
	if p.MinPP != nil && pp < *p.MinPP {
		return false
	}
	if p.MaxPP != nil && pp > *p.MaxPP {
		return false
	}
	return s.Mods.HasAll(p.Mods)
}

// laterCreated orders scores by creation timestamp descending, pushing
// records without a timestamp to the end.
func laterCreated(a, b *core.ScoreRecord) bool {
	switch {
	case a.CreatedAt == nil:
		return false
	case b.CreatedAt == nil:
		return true
	default:
		return a.CreatedAt.After(*b.CreatedAt)
	}
}
