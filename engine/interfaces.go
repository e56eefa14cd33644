package engine

import (
	"context"

	"scorewatch/core"
	"scorewatch/osuapi"
)

// ScoreSource is the slice of the remote API the tracker consumes.
type ScoreSource interface {
	LatestScores(ctx context.Context, ruleset string, limit int, cursor string) (*osuapi.ScorePage, error)
}

// EntitySource issues batched entity lookups. Implementations accept at
// most osuapi.BatchLimit ids per call.
type EntitySource interface {
	LookupBeatmaps(ctx context.Context, ids []int64) ([]*core.Beatmap, error)
	LookupUsers(ctx context.Context, ids []int64) ([]*core.User, error)
}

// UserCache is the process-wide read-through cache for user entities.
// Put is an idempotent upsert, so concurrent readers and writers need
// no coordination beyond the implementation's own locking.
type UserCache interface {
	Get(ctx context.Context, id int64) (*core.User, bool)
	Put(ctx context.Context, u *core.User)
}
