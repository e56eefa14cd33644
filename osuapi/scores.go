package osuapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"scorewatch/core"
)

// ScorePage is one page of the global score feed. Cursor is the opaque
// continuation token for the next (older) page; empty means no more
// pages.
type ScorePage struct {
	Scores []*core.ScoreRecord `json:"scores"`
	Cursor string              `json:"cursor_string"`
}

// LatestScores fetches a page of the global score feed. An empty cursor
// requests the newest page.
func (c *Client) LatestScores(ctx context.Context, ruleset string, limit int, cursor string) (*ScorePage, error) {
	q := url.Values{}
	if ruleset != "" {
		q.Set("ruleset", ruleset)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor_string", cursor)
	}
	var page ScorePage
	if err := c.get(ctx, "/scores", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// LookupUser resolves a username (or stringified id) to a user entity.
func (c *Client) LookupUser(ctx context.Context, usernameOrID string) (*core.User, error) {
	q := url.Values{}
	q.Set("key", "username")
	var u core.User
	if err := c.get(ctx, "/users/"+url.PathEscape(usernameOrID), q, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserScores fetches a user's score list. kind is "best" or "recent";
// includeFails only applies to the recent variant.
func (c *Client) UserScores(ctx context.Context, userID int64, kind string, includeFails bool, limit int) ([]*core.ScoreRecord, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if includeFails {
		q.Set("include_fails", "1")
	}
	var scores []*core.ScoreRecord
	path := fmt.Sprintf("/users/%d/scores/%s", userID, url.PathEscape(kind))
	if err := c.get(ctx, path, q, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// LookupBeatmaps fetches up to BatchLimit beatmap entities by id.
// Chunking larger sets is the caller's job.
func (c *Client) LookupBeatmaps(ctx context.Context, ids []int64) ([]*core.Beatmap, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > BatchLimit {
		return nil, fmt.Errorf("lookup beatmaps: %d ids exceeds batch limit %d", len(ids), BatchLimit)
	}
	q := url.Values{}
	for _, id := range ids {
		q.Add("ids[]", strconv.FormatInt(id, 10))
	}
	var out struct {
		Beatmaps []*core.Beatmap `json:"beatmaps"`
	}
	if err := c.get(ctx, "/beatmaps", q, &out); err != nil {
		return nil, err
	}
	return out.Beatmaps, nil
}

// LookupUsers fetches up to BatchLimit user entities by id.
func (c *Client) LookupUsers(ctx context.Context, ids []int64) ([]*core.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > BatchLimit {
		return nil, fmt.Errorf("lookup users: %d ids exceeds batch limit %d", len(ids), BatchLimit)
	}
	q := url.Values{}
	for _, id := range ids {
		q.Add("ids[]", strconv.FormatInt(id, 10))
	}
	var out struct {
		Users []*core.User `json:"users"`
	}
	if err := c.get(ctx, "/users", q, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}
