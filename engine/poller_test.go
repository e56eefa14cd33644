package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorewatch/core"
	"scorewatch/osuapi"
)

// fakeScoreSource serves scripted pages in order, then empty pages.
type fakeScoreSource struct {
	pages []*osuapi.ScorePage
	calls int
}

func (f *fakeScoreSource) LatestScores(_ context.Context, _ string, _ int, _ string) (*osuapi.ScorePage, error) {
	if f.calls >= len(f.pages) {
		return &osuapi.ScorePage{}, nil
	}
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func scoresWithIDs(ids ...int64) []*core.ScoreRecord {
	out := make([]*core.ScoreRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, &core.ScoreRecord{ID: id, UserID: id, BeatmapID: id, PP: 10})
	}
	return out
}

func newTestTracker(src ScoreSource, bus *EventBus) *Tracker {
	suspicious := NewSuspiciousList()
	fetcher := NewFetcher(&fakeEntitySource{}, newMapCache())
	return NewTracker(
		src,
		NewEnricher(fetcher),
		NewClassifier("FL", 100, suspicious, bus),
		NewRecentList(50),
		suspicious,
		bus,
		TrackerOptions{},
	)
}

func TestPollClaimsOnlyUnseenIDs(t *testing.T) {
	// 50 records, of which 10 have id > 1000.
	var ids []int64
	for i := int64(961); i <= 1010; i++ {
		ids = append(ids, i)
	}
	src := &fakeScoreSource{pages: []*osuapi.ScorePage{{Scores: scoresWithIDs(ids...)}}}

	bus := NewEventBus(DispatchSync)
	defer bus.Close()
	var published []core.Event
	bus.Subscribe(core.EventNewScores, func(ctx context.Context, e core.Event) { published = append(published, e) })

	tr := newTestTracker(src, bus)
	tr.mu.Lock()
	tr.lastID = 1000
	tr.mu.Unlock()

	tr.Poll(context.Background())

	assert.Equal(t, int64(1010), tr.LastID())
	require.Len(t, published, 1)
	require.Len(t, published[0].Scores, 10)
	for i, s := range published[0].Scores {
		assert.Equal(t, int64(1001+i), s.ID, "batch must be sorted ascending")
		assert.NotNil(t, s.User, "published scores are enriched")
	}
	assert.Equal(t, 10, tr.recent.Len())
}

func TestPollNeverReprocessesClaimedIDs(t *testing.T) {
	src := &fakeScoreSource{pages: []*osuapi.ScorePage{
		{Scores: scoresWithIDs(1, 2, 3)},
		{Scores: scoresWithIDs(2, 3, 4)},
	}}

	bus := NewEventBus(DispatchSync)
	defer bus.Close()
	var batches [][]*core.ScoreRecord
	bus.Subscribe(core.EventNewScores, func(ctx context.Context, e core.Event) { batches = append(batches, e.Scores) })

	tr := newTestTracker(src, bus)
	tr.Poll(context.Background())
	tr.Poll(context.Background())
	tr.Poll(context.Background()) // empty page, no publish

	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 3)
	require.Len(t, batches[1], 1)
	assert.Equal(t, int64(4), batches[1][0].ID)
	assert.Equal(t, int64(4), tr.LastID())
}

func TestPollCursorIsNonDecreasing(t *testing.T) {
	src := &fakeScoreSource{pages: []*osuapi.ScorePage{
		{Scores: scoresWithIDs(100)},
		{Scores: scoresWithIDs(40, 50)}, // stale page, all below cursor
	}}
	bus := NewEventBus(DispatchSync)
	defer bus.Close()
	tr := newTestTracker(src, bus)

	tr.Poll(context.Background())
	require.Equal(t, int64(100), tr.LastID())

	tr.Poll(context.Background())
	assert.Equal(t, int64(100), tr.LastID())
}

func TestRecentListCapDropsOldest(t *testing.T) {
	l := NewRecentList(50)
	l.Append(scoresWithIDs(idRange(1, 30)...))
	l.Append(scoresWithIDs(idRange(31, 60)...))

	snap := l.Snapshot()
	require.Len(t, snap, 50)
	assert.Equal(t, int64(11), snap[0].ID, "oldest ids are dropped first")
	assert.Equal(t, int64(60), snap[len(snap)-1].ID)
}

func TestSuspiciousListDeduplicates(t *testing.T) {
	l := NewSuspiciousList()
	s := &core.ScoreRecord{ID: 77}
	assert.True(t, l.Add(s))
	assert.False(t, l.Add(s))
	assert.False(t, l.Add(&core.ScoreRecord{ID: 77}))
	assert.Equal(t, 1, l.Len())
}
