package core

// Normalize standardizes a raw score record in place: the creation
// timestamp falls back to the end-of-play timestamp when absent, and a
// nil mod list becomes an empty one. Mod-shape and pp coercion happen
// at decode time (see ModList and FlexFloat). Idempotent: applying it
// to an already-normalized record is a no-op.
func Normalize(s *ScoreRecord) {
	if s == nil {
		return
	}
	if s.CreatedAt == nil && s.EndedAt != nil {
		t := *s.EndedAt
		s.CreatedAt = &t
	}
	if s.Mods == nil {
		s.Mods = ModList{}
	}
}
