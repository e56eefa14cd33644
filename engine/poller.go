package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"scorewatch/core"
)

// Tracker defaults, matching the remote API's page limit and a
// rate-limit-respecting cadence.
const (
	DefaultRuleset       = "osu"
	DefaultPageSize      = 50
	DefaultPollInterval  = 5 * time.Second
	DefaultBackfillPages = 5
	DefaultBackfillDelay = 1500 * time.Millisecond
)

// TrackerOptions tunes the ingestion loop. Zero values take the
// defaults above.
type TrackerOptions struct {
	Ruleset       string
	PageSize      int
	PollInterval  time.Duration
	BackfillPages int
	BackfillDelay time.Duration
}

// Tracker owns the ingestion pipeline state: the score cursor, the
// recent and suspicious lists, and the poll loop that feeds them.
type Tracker struct {
	src        ScoreSource
	enricher   *Enricher
	classifier *Classifier
	recent     *RecentList
	suspicious *SuspiciousList
	bus        *EventBus

	ruleset       string
	pageSize      int
	interval      time.Duration
	backfillPages int
	backfillDelay time.Duration

	mu     sync.Mutex
	lastID int64
}

func NewTracker(src ScoreSource, enricher *Enricher, classifier *Classifier, recent *RecentList, suspicious *SuspiciousList, bus *EventBus, opts TrackerOptions) *Tracker {
	t := &Tracker{
		src:           src,
		enricher:      enricher,
		classifier:    classifier,
		recent:        recent,
		suspicious:    suspicious,
		bus:           bus,
		ruleset:       opts.Ruleset,
		pageSize:      opts.PageSize,
		interval:      opts.PollInterval,
		backfillPages: opts.BackfillPages,
		backfillDelay: opts.BackfillDelay,
	}
	if t.ruleset == "" {
		t.ruleset = DefaultRuleset
	}
	if t.pageSize <= 0 {
		t.pageSize = DefaultPageSize
	}
	if t.interval <= 0 {
		t.interval = DefaultPollInterval
	}
	if t.backfillPages <= 0 {
		t.backfillPages = DefaultBackfillPages
	}
	if t.backfillDelay <= 0 {
		t.backfillDelay = DefaultBackfillDelay
	}
	return t
}

// Run performs the historical backfill and then polls until the
// context is cancelled. Cycles execute on this goroutine, so a slow
// cycle delays the next tick instead of overlapping it.
func (t *Tracker) Run(ctx context.Context) {
	t.Backfill(ctx)

	slog.Info("tracker polling", "interval", t.interval, "ruleset", t.ruleset)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("tracker stopped")
			return
		case <-ticker.C:
			t.Poll(ctx)
		}
	}
}

// Poll runs one ingestion cycle. Any failure ends the cycle with a log
// line; the next tick is unaffected.
func (t *Tracker) Poll(ctx context.Context) {
	page, err := t.src.LatestScores(ctx, t.ruleset, t.pageSize, "")
	if err != nil {
		slog.Warn("score fetch failed", "error", err)
		return
	}
	if page == nil || len(page.Scores) == 0 {
		return
	}

	fresh := t.claim(page.Scores)
	if len(fresh) == 0 {
		return
	}
	t.process(ctx, fresh, true)
}

// claim filters the page to unseen ids and advances the cursor before
// any enrichment, so a failure mid-cycle cannot cause claimed ids to
// be reprocessed on the next tick.
func (t *Tracker) claim(scores []*core.ScoreRecord) []*core.ScoreRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	var fresh []*core.ScoreRecord
	maxID := t.lastID
	for _, s := range scores {
		if s == nil || s.ID <= t.lastID {
			continue
		}
		fresh = append(fresh, s)
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	t.lastID = maxID
	return fresh
}

// process runs normalize, enrich, classify over the batch. When
// publish is set it also appends to the recent list and broadcasts one
// batch event, sorted by id ascending to defend against out-of-order
// pages.
func (t *Tracker) process(ctx context.Context, scores []*core.ScoreRecord, publish bool) {
	for _, s := range scores {
		core.Normalize(s)
	}
	t.enricher.Enrich(ctx, scores)
	for _, s := range scores {
		t.classifier.Classify(ctx, s)
	}
	if !publish {
		return
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].ID < scores[j].ID })
	t.recent.Append(scores)
	t.bus.Publish(ctx, core.NewScoresBatch(scores))
}

// LastID returns the ingestion cursor (0 means unset).
func (t *Tracker) LastID() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastID
}

// Snapshot returns the live-client initial state.
func (t *Tracker) Snapshot() core.Snapshot {
	return core.Snapshot{
		Recent:     t.recent.Snapshot(),
		Suspicious: t.suspicious.Snapshot(),
	}
}

// Suspicious returns the current flagged-score list.
func (t *Tracker) Suspicious() []*core.ScoreRecord {
	return t.suspicious.Snapshot()
}
