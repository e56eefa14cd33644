package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorewatch/core"
	"scorewatch/osuapi"
)

func suspiciousScore(id int64) *core.ScoreRecord {
	return &core.ScoreRecord{ID: id, UserID: id, BeatmapID: id, Mods: core.ModList{"FL"}, PP: 200}
}

func TestBackfillSeedsCursorAndSuspicious(t *testing.T) {
	src := &fakeScoreSource{pages: []*osuapi.ScorePage{
		{Scores: []*core.ScoreRecord{suspiciousScore(500), {ID: 510, PP: 10}}, Cursor: "p2"},
		{Scores: []*core.ScoreRecord{suspiciousScore(490)}, Cursor: ""},
	}}

	bus := NewEventBus(DispatchSync)
	defer bus.Close()
	var newScoreEvents, suspiciousEvents int
	bus.Subscribe(core.EventNewScores, func(ctx context.Context, e core.Event) { newScoreEvents++ })
	bus.Subscribe(core.EventNewSuspicious, func(ctx context.Context, e core.Event) { suspiciousEvents++ })

	tr := newTestTracker(src, bus)
	tr.backfillDelay = 1 // keep the test fast
	tr.Backfill(context.Background())

	// Cursor seeded from the first (newest) page's max id.
	assert.Equal(t, int64(510), tr.LastID())
	// Both pages were classified; nothing was broadcast as new scores
	// and nothing landed in the recent list.
	assert.Equal(t, 2, tr.suspicious.Len())
	assert.Equal(t, 2, suspiciousEvents)
	assert.Zero(t, newScoreEvents)
	assert.Zero(t, tr.recent.Len())
	// Second page had no continuation cursor: exactly 2 fetches.
	assert.Equal(t, 2, src.calls)
}

func TestBackfillStopsOnEmptyPage(t *testing.T) {
	src := &fakeScoreSource{pages: []*osuapi.ScorePage{
		{Scores: nil, Cursor: "p2"},
	}}
	bus := NewEventBus(DispatchSync)
	defer bus.Close()

	tr := newTestTracker(src, bus)
	tr.Backfill(context.Background())

	assert.Zero(t, tr.LastID())
	assert.Equal(t, 1, src.calls)
}

func TestBackfillDoesNotOverwriteExistingCursor(t *testing.T) {
	src := &fakeScoreSource{pages: []*osuapi.ScorePage{
		{Scores: scoresWithIDs(300)},
	}}
	bus := NewEventBus(DispatchSync)
	defer bus.Close()

	tr := newTestTracker(src, bus)
	tr.mu.Lock()
	tr.lastID = 400
	tr.mu.Unlock()

	tr.Backfill(context.Background())
	assert.Equal(t, int64(400), tr.LastID())
}

func TestBackfillRespectsPageCeiling(t *testing.T) {
	pages := make([]*osuapi.ScorePage, 10)
	for i := range pages {
		pages[i] = &osuapi.ScorePage{Scores: scoresWithIDs(int64(1000 - i)), Cursor: "more"}
	}
	src := &fakeScoreSource{pages: pages}
	bus := NewEventBus(DispatchSync)
	defer bus.Close()

	tr := newTestTracker(src, bus)
	tr.backfillDelay = 1
	tr.Backfill(context.Background())

	require.Equal(t, DefaultBackfillPages, src.calls)
}
