package engine

import (
	"context"

	"scorewatch/core"
)

// Enricher fills missing beatmap and user references on score batches
// using one batched lookup per entity kind.
type Enricher struct {
	fetch *Fetcher
}

func NewEnricher(fetch *Fetcher) *Enricher {
	return &Enricher{fetch: fetch}
}

// Enrich mutates the given records in place and returns them. A record
// needs a beatmap lookup only when it lacks both beatmap and
// beatmapset, and a user lookup only when it lacks a user. Records
// whose entities cannot be resolved keep their fields absent; that is
// not an error. Populated fields are never overwritten.
func (e *Enricher) Enrich(ctx context.Context, scores []*core.ScoreRecord) []*core.ScoreRecord {
	var beatmapIDs, userIDs []int64
	for _, s := range scores {
		if s == nil {
			continue
		}
		if s.Beatmap == nil && s.Beatmapset == nil && s.BeatmapID > 0 {
			beatmapIDs = append(beatmapIDs, s.BeatmapID)
		}
		if s.User == nil && s.UserID > 0 {
			userIDs = append(userIDs, s.UserID)
		}
	}

	var beatmaps map[int64]*core.Beatmap
	if len(beatmapIDs) > 0 {
		beatmaps = e.fetch.Beatmaps(ctx, beatmapIDs)
	}
	var users map[int64]*core.User
	if len(userIDs) > 0 {
		users = e.fetch.Users(ctx, userIDs)
	}

	for _, s := range scores {
		if s == nil {
			continue
		}
		if s.Beatmap == nil {
			if b, ok := beatmaps[s.BeatmapID]; ok {
				s.Beatmap = b
				if s.Beatmapset == nil && b.Beatmapset != nil {
					s.Beatmapset = b.Beatmapset
				}
			}
		}
		if s.User == nil {
			if u, ok := users[s.UserID]; ok {
				s.User = u
			}
		}
	}
	return scores
}
