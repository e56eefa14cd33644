package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModListDecodesBothShapes(t *testing.T) {
	var legacy ModList
	require.NoError(t, json.Unmarshal([]byte(`["HD","DT"]`), &legacy))
	assert.Equal(t, ModList{"HD", "DT"}, legacy)

	var structured ModList
	require.NoError(t, json.Unmarshal([]byte(`[{"acronym":"FL"},{"acronym":"HR"}]`), &structured))
	assert.Equal(t, ModList{"FL", "HR"}, structured)
}

func TestModListContainsIsCaseInsensitive(t *testing.T) {
	mods := ModList{"HD", "dt"}
	assert.True(t, mods.Contains("hd"))
	assert.True(t, mods.Contains("DT"))
	assert.False(t, mods.Contains("FL"))
	assert.True(t, mods.HasAll([]string{"HD", "DT"}))
	assert.False(t, mods.HasAll([]string{"HD", "FL"}))
	assert.True(t, mods.HasAll(nil))
}

func TestFlexFloatCoercion(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{`123.5`, 123.5},
		{`"99.1"`, 99.1},
		{`null`, 0},
		{`"not a number"`, 0},
	}
	for _, tc := range cases {
		var f FlexFloat
		require.NoError(t, json.Unmarshal([]byte(tc.in), &f))
		assert.Equal(t, tc.want, float64(f), "input %s", tc.in)
	}
}

func TestNormalizeTimestampFallback(t *testing.T) {
	ended := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &ScoreRecord{ID: 1, EndedAt: &ended}
	Normalize(s)

	require.NotNil(t, s.CreatedAt)
	assert.Equal(t, ended, *s.CreatedAt)
	assert.NotNil(t, s.Mods)
	assert.Empty(t, s.Mods)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	ended := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	created := time.Date(2024, 3, 1, 11, 59, 0, 0, time.UTC)
	s := &ScoreRecord{ID: 7, CreatedAt: &created, EndedAt: &ended, Mods: ModList{"HD"}, PP: 250}

	Normalize(s)
	first := *s
	Normalize(s)

	assert.Equal(t, first, *s)
	assert.Equal(t, created, *s.CreatedAt)
}

func TestScoreRecordDecode(t *testing.T) {
	raw := `{
		"id": 42,
		"user_id": 7,
		"beatmap_id": 99,
		"mods": [{"acronym":"HD"}],
		"pp": "312.7",
		"ended_at": "2024-03-01T12:00:00Z"
	}`
	var s ScoreRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	assert.Equal(t, int64(42), s.ID)
	assert.Equal(t, ModList{"HD"}, s.Mods)
	assert.Equal(t, 312.7, float64(s.PP))
	assert.Nil(t, s.CreatedAt)
	require.NotNil(t, s.EndedAt)
}
