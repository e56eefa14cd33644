package engine

import (
	"sync"

	"scorewatch/core"
)

// RecentList is a bounded FIFO of the newest enriched scores, ordered
// by id ascending. When capacity is exceeded the oldest records are
// dropped.
type RecentList struct {
	mu     sync.RWMutex
	cap    int
	scores []*core.ScoreRecord
}

// DefaultRecentCapacity matches the live-client snapshot size.
const DefaultRecentCapacity = 50

func NewRecentList(capacity int) *RecentList {
	if capacity <= 0 {
		capacity = DefaultRecentCapacity
	}
	return &RecentList{cap: capacity}
}

// Append adds a processed batch (already sorted by id ascending) and
// trims the list back to capacity from the front.
func (l *RecentList) Append(batch []*core.ScoreRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scores = append(l.scores, batch...)
	if excess := len(l.scores) - l.cap; excess > 0 {
		l.scores = append([]*core.ScoreRecord(nil), l.scores[excess:]...)
	}
}

// Snapshot returns a copy of the current list.
func (l *RecentList) Snapshot() []*core.ScoreRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*core.ScoreRecord(nil), l.scores...)
}

// Len returns the current list length.
func (l *RecentList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.scores)
}

// SuspiciousList is an append-only sequence of flagged scores,
// deduplicated by id.
type SuspiciousList struct {
	mu     sync.RWMutex
	seen   map[int64]struct{}
	scores []*core.ScoreRecord
}

func NewSuspiciousList() *SuspiciousList {
	return &SuspiciousList{seen: make(map[int64]struct{})}
}

// Add appends the score unless its id is already present. Reports
// whether the score was newly added.
func (l *SuspiciousList) Add(s *core.ScoreRecord) bool {
	if s == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[s.ID]; ok {
		return false
	}
	l.seen[s.ID] = struct{}{}
	l.scores = append(l.scores, s)
	return true
}

// Snapshot returns a copy of the current list.
func (l *SuspiciousList) Snapshot() []*core.ScoreRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*core.ScoreRecord(nil), l.scores...)
}

// Len returns the number of flagged scores.
func (l *SuspiciousList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.scores)
}
