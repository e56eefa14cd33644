package engine

import (
	"context"
	"log/slog"

	"scorewatch/core"
	"scorewatch/osuapi"
)

// Fetcher resolves batches of entity ids against the remote API. Ids
// are deduplicated and chunked to the API's batch ceiling; chunks are
// issued sequentially to respect upstream rate limits. A failed chunk
// is logged and skipped, so a partially-filled result is a valid
// outcome rather than an error.
type Fetcher struct {
	src   EntitySource
	users UserCache
}

func NewFetcher(src EntitySource, users UserCache) *Fetcher {
	return &Fetcher{src: src, users: users}
}

// Beatmaps resolves beatmap entities by id. Beatmaps are only
// deduplicated per call, not cached across requests.
func (f *Fetcher) Beatmaps(ctx context.Context, ids []int64) map[int64]*core.Beatmap {
	out := make(map[int64]*core.Beatmap)
	for _, chunk := range chunkIDs(dedupIDs(ids), osuapi.BatchLimit) {
		beatmaps, err := f.src.LookupBeatmaps(ctx, chunk)
		if err != nil {
			slog.Warn("beatmap lookup chunk failed", "ids", len(chunk), "error", err)
			continue
		}
		for _, b := range beatmaps {
			if b != nil {
				out[b.ID] = b
			}
		}
	}
	return out
}

// Users resolves user entities by id, serving cached entries without a
// remote call and upserting every fetched entity into the shared cache.
func (f *Fetcher) Users(ctx context.Context, ids []int64) map[int64]*core.User {
	out := make(map[int64]*core.User)
	var missing []int64
	for _, id := range dedupIDs(ids) {
		if u, ok := f.users.Get(ctx, id); ok {
			out[id] = u
			continue
		}
		missing = append(missing, id)
	}
	for _, chunk := range chunkIDs(missing, osuapi.BatchLimit) {
		users, err := f.src.LookupUsers(ctx, chunk)
		if err != nil {
			slog.Warn("user lookup chunk failed", "ids", len(chunk), "error", err)
			continue
		}
		for _, u := range users {
			if u == nil {
				continue
			}
			f.users.Put(ctx, u)
			out[u.ID] = u
		}
	}
	return out
}

// dedupIDs drops duplicates and non-positive ids, preserving order.
func dedupIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func chunkIDs(ids []int64, size int) [][]int64 {
	if len(ids) == 0 {
		return nil
	}
	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	return append(chunks, ids)
}
