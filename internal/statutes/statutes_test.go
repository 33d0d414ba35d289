package statutes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableLoads(t *testing.T) {
	tbl, err := Load(exclusionsYAML)
	require.NoError(t, err)
	assert.Len(t, tbl.Ranges, 3)
	assert.Len(t, tbl.SingleStatutes, 6)
	assert.Equal(t, "6301a1", tbl.CorruptionOfMinors)
	assert.NotPanics(t, func() { Default() })
}

func TestLoadRejectsBadCategory(t *testing.T) {
	_, err := Load([]byte("ranges:\n  - category: jaywalking\n    chapter: 18\n    above: 1\n    below: 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid value for category")
}

func TestLoadRejectsInvertedRange(t *testing.T) {
	doc := `
ranges:
  - {category: danger_to_person, chapter: 18, above: 3300, below: 2300}
corruption_of_minors: "6301a1"
`
	_, err := Load([]byte(doc))
	require.Error(t, err)
}

func TestParse(t *testing.T) {
	cases := []struct {
		raw     string
		chapter int
		section float64
		key     string
	}{
		{"18 § 3127", 18, 3127, "3127"},
		{"18 § 4915.1", 18, 4915.1, "4915.1"},
		{"18 § 3126 (a)(1)", 18, 3126, "3126a1"},
		{"18 § 6301 §§ A1", 18, 6301, "6301a1"},
		{"18 § 3124.2 (a.1)", 18, 3124.2, "3124.2a.1"},
		{"24 &sect; 102", 24, 102, "102"},
		{"18 § 0987", 18, 987, "0987"},
	}
	for _, tc := range cases {
		s, err := Parse(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.chapter, s.Chapter, tc.raw)
		assert.Equal(t, tc.section, s.Section, tc.raw)
		assert.Equal(t, tc.key, s.Key(), tc.raw)
	}
}

func TestParseUnreadable(t *testing.T) {
	for _, raw := range []string{"", "example", "14 s 123"} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrUnreadable, raw)
	}
}

func TestLookups(t *testing.T) {
	tbl := Default()
	mustParse := func(raw string) Statute {
		s, err := Parse(raw)
		require.NoError(t, err)
		return s
	}

	assert.True(t, tbl.Range(DangerToPerson).Contains(mustParse("18 § 2701")))
	assert.False(t, tbl.Range(DangerToPerson).Contains(mustParse("18 § 2300")))
	assert.Equal(t, "M1", tbl.Range(DangerToPerson).GradeFloor)
	assert.True(t, tbl.Range(OffenseAgainstFamily).Contains(mustParse("18 § 4301")))
	assert.True(t, tbl.Range(Firearms).Contains(mustParse("18 § 6106")))

	assert.True(t, tbl.IsTieredSexOffense(mustParse("18 § 3126 (a)(1)")))
	assert.False(t, tbl.IsTieredSexOffense(mustParse("42 § 3126 (a)(1)")))
	assert.True(t, tbl.IsCorruptionOfMinors(mustParse("18 § 6301 (a)(1)")))
	assert.False(t, tbl.IsCorruptionOfMinors(mustParse("18 § 6301 (a)(1)(ii)")))

	var matched []string
	for _, ss := range tbl.SingleStatutes {
		if ss.Matches(mustParse("18 § 4915.2")) {
			matched = append(matched, ss.Name)
		}
	}
	assert.Equal(t, []string{"failure_to_register"}, matched)

	assert.True(t, tbl.IsCrueltyToAnimals(mustParse("18 § 5533")))

	assert.True(t, tbl.PunishableTwoYears("M2"))
	assert.False(t, tbl.PunishableTwoYears("M3"))
}
