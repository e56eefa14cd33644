package engine

import (
	"context"
	"log/slog"
	"time"

	"scorewatch/core"
)

// Backfill paginates backward through recent history once, before live
// polling starts, to seed the cursor and the suspicious list. Pages are
// classified but never appended to the recent list or broadcast as
// new-score events. Stopping early (empty page, missing continuation
// cursor, fetch error) is normal, not a failure.
func (t *Tracker) Backfill(ctx context.Context) {
	cursor := ""
	for page := 0; page < t.backfillPages; page++ {
		if page > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(t.backfillDelay):
			}
		}

		resp, err := t.src.LatestScores(ctx, t.ruleset, t.pageSize, cursor)
		if err != nil {
			slog.Warn("backfill fetch failed", "page", page, "error", err)
			return
		}
		if resp == nil || len(resp.Scores) == 0 {
			return
		}

		if page == 0 {
			t.seedCursor(resp.Scores)
		}
		t.process(ctx, resp.Scores, false)

		if resp.Cursor == "" {
			return
		}
		cursor = resp.Cursor
	}
}

// seedCursor establishes the initial cursor from the newest page's
// maximum id, but only when no cursor exists yet.
func (t *Tracker) seedCursor(scores []*core.ScoreRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastID != 0 {
		return
	}
	for _, s := range scores {
		if s != nil && s.ID > t.lastID {
			t.lastID = s.ID
		}
	}
}
