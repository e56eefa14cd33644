package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorewatch/core"
)

// emptyEntitySource resolves nothing.
type emptyEntitySource struct{}

func (emptyEntitySource) LookupBeatmaps(_ context.Context, _ []int64) ([]*core.Beatmap, error) {
	return nil, nil
}

func (emptyEntitySource) LookupUsers(_ context.Context, _ []int64) ([]*core.User, error) {
	return nil, nil
}

func TestEnricherDoesNotOverwritePopulatedFields(t *testing.T) {
	src := &fakeEntitySource{}
	e := NewEnricher(NewFetcher(src, newMapCache()))

	beatmap := &core.Beatmap{ID: 1, Version: "preset"}
	user := &core.User{ID: 2, Username: "preset"}
	full := &core.ScoreRecord{ID: 10, BeatmapID: 1, UserID: 2, Beatmap: beatmap, User: user}
	// A second record still missing its user keeps the batch lookup
	// path live.
	partial := &core.ScoreRecord{ID: 11, UserID: 3}

	e.Enrich(context.Background(), []*core.ScoreRecord{full, partial})

	// Same pointers, untouched contents.
	assert.Same(t, beatmap, full.Beatmap)
	assert.Same(t, user, full.User)
	assert.Equal(t, "preset", full.Beatmap.Version)
	assert.Equal(t, "preset", full.User.Username)

	// The populated record contributed no lookup ids.
	require.Len(t, src.userChunks, 1)
	assert.Equal(t, []int64{3}, src.userChunks[0])
	assert.Empty(t, src.beatmapChunks)
	require.NotNil(t, partial.User)
	assert.Equal(t, int64(3), partial.User.ID)
}

func TestEnricherAttachesBeatmapsetFromFetchedBeatmap(t *testing.T) {
	src := &fakeEntitySource{}
	e := NewEnricher(NewFetcher(src, newMapCache()))

	s := &core.ScoreRecord{ID: 1, BeatmapID: 7, UserID: 2}
	e.Enrich(context.Background(), []*core.ScoreRecord{s})

	require.NotNil(t, s.Beatmap)
	assert.Equal(t, int64(7), s.Beatmap.ID)
	// fakeEntitySource nests a beatmapset with id*10 under each beatmap.
	require.NotNil(t, s.Beatmapset)
	assert.Equal(t, int64(70), s.Beatmapset.ID)
}

func TestEnricherSkipsBeatmapLookupWhenBeatmapsetPresent(t *testing.T) {
	src := &fakeEntitySource{}
	e := NewEnricher(NewFetcher(src, newMapCache()))

	set := &core.Beatmapset{ID: 99, Title: "preset"}
	s := &core.ScoreRecord{ID: 1, BeatmapID: 7, Beatmapset: set}
	e.Enrich(context.Background(), []*core.ScoreRecord{s})

	assert.Empty(t, src.beatmapChunks)
	assert.Nil(t, s.Beatmap)
	assert.Same(t, set, s.Beatmapset)
}

func TestEnricherLeavesUnresolvedEntitiesAbsent(t *testing.T) {
	e := NewEnricher(NewFetcher(emptyEntitySource{}, newMapCache()))

	s := &core.ScoreRecord{ID: 1, BeatmapID: 7, UserID: 2}
	got := e.Enrich(context.Background(), []*core.ScoreRecord{s, nil})

	require.Len(t, got, 2)
	assert.Nil(t, s.Beatmap)
	assert.Nil(t, s.Beatmapset)
	assert.Nil(t, s.User)
}
