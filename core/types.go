package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ScoreRecord is one submitted play as reported by the remote scoring
// API. Identifiers are monotonically increasing and unique. A record is
// mutated in place during a single enrichment pass and treated as
// immutable afterwards.
type ScoreRecord struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id"`
	BeatmapID  int64       `json:"beatmap_id"`
	Beatmap    *Beatmap    `json:"beatmap,omitempty"`
	Beatmapset *Beatmapset `json:"beatmapset,omitempty"`
	User       *User       `json:"user,omitempty"`
	Mods       ModList     `json:"mods"`
	PP         FlexFloat   `json:"pp"`
	Ruleset    string      `json:"ruleset,omitempty"`
	Passed     bool        `json:"passed,omitempty"`
	CreatedAt  *time.Time  `json:"created_at,omitempty"`
	EndedAt    *time.Time  `json:"ended_at,omitempty"`
}

// Beatmap is the remote-provided beatmap entity, identified by id.
type Beatmap struct {
	ID               int64       `json:"id"`
	BeatmapsetID     int64       `json:"beatmapset_id,omitempty"`
	Status           string      `json:"status,omitempty"`
	Version          string      `json:"version,omitempty"`
	DifficultyRating float64     `json:"difficulty_rating,omitempty"`
	Beatmapset       *Beatmapset `json:"beatmapset,omitempty"`
}

// Beatmapset groups beatmaps under one mapset.
type Beatmapset struct {
	ID     int64  `json:"id"`
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
}

// User is the remote-provided user entity, identified by id. Instances
// are cached process-wide keyed by id.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	CountryCode string `json:"country_code,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// ModList is an ordered list of mod acronyms. The remote API emits two
// wire shapes for mods: a legacy acronym array (["HD","DT"]) and a
// structured array ([{"acronym":"HD"}]). Both decode to plain acronyms.
type ModList []string

func (m *ModList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ModList, 0, len(raw))
	for _, entry := range raw {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			Acronym string `json:"acronym"`
		}
		if err := json.Unmarshal(entry, &obj); err != nil {
			return err
		}
		out = append(out, obj.Acronym)
	}
	*m = out
	return nil
}

// Contains reports whether the list includes the given acronym,
// case-insensitively.
func (m ModList) Contains(acronym string) bool {
	for _, mod := range m {
		if strings.EqualFold(mod, acronym) {
			return true
		}
	}
	return false
}

// HasAll reports whether the list is a superset of required.
func (m ModList) HasAll(required []string) bool {
	for _, r := range required {
		if !m.Contains(r) {
			return false
		}
	}
	return true
}

// FlexFloat is a float64 tolerant of sloppy wire values: absent, null,
// quoted numbers, and garbage all decode to 0.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var quoted string
		if err := json.Unmarshal(data, &quoted); err != nil {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(quoted, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

// Snapshot is the initial state pushed to a live client on connect.
type Snapshot struct {
	Recent     []*ScoreRecord `json:"recent"`
	Suspicious []*ScoreRecord `json:"suspicious"`
}
