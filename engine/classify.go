package engine

import (
	"context"

	"scorewatch/core"
)

// Default suspicious-play heuristic: an assisted-visibility-reduction
// mod combined with a performance-point value no legitimate run of it
// tends to reach.
const (
	DefaultSuspiciousMod = "FL"
	DefaultSuspiciousPP  = 100.0
)

// Classifier flags normalized scores under a fixed heuristic and
// records new flags in the suspicious list, publishing one
// notification per newly flagged id.
type Classifier struct {
	mod       string
	threshold float64
	list      *SuspiciousList
	bus       *EventBus
}

func NewClassifier(mod string, threshold float64, list *SuspiciousList, bus *EventBus) *Classifier {
	if mod == "" {
		mod = DefaultSuspiciousMod
	}
	if threshold <= 0 {
		threshold = DefaultSuspiciousPP
	}
	return &Classifier{mod: mod, threshold: threshold, list: list, bus: bus}
}

// Classify reports whether the score matches the heuristic. A positive
// match is appended to the suspicious list and announced exactly once
// per id, no matter how many passes observe it.
func (c *Classifier) Classify(ctx context.Context, s *core.ScoreRecord) bool {
	if s == nil {
		return false
	}
	if !s.Mods.Contains(c.mod) || float64(s.PP) <= c.threshold {
		return false
	}
	if c.list.Add(s) {
		c.bus.Publish(ctx, core.NewSuspiciousScore(s))
	}
	return true
}
