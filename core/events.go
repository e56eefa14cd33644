package core

import "time"

// EventType enumerates domain events.
type EventType string

const (
	EventNewScores     EventType = "new_scores"
	EventNewSuspicious EventType = "new_suspicious_score"
)

// Event represents an immutable domain event.
type Event struct {
	Type   EventType      `json:"type"`
	Time   time.Time      `json:"time"`
	Scores []*ScoreRecord `json:"scores,omitempty"`
	Score  *ScoreRecord   `json:"score,omitempty"`
}

// NewScoresBatch builds the event published once per ingestion cycle
// with the enriched batch, ordered by id ascending.
func NewScoresBatch(scores []*ScoreRecord) Event {
	return Event{Type: EventNewScores, Time: time.Now().UTC(), Scores: scores}
}

// NewSuspiciousScore builds the event published exactly once per
// newly flagged score id.
func NewSuspiciousScore(score *ScoreRecord) Event {
	return Event{Type: EventNewSuspicious, Time: time.Now().UTC(), Score: score}
}
