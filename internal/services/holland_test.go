package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTallyHolland(t *testing.T) {
	tally := TallyHolland(map[string]string{
		"q1": "R", "q2": "r ", "q3": "I", "q4": "S", "q5": "I", "q6": "R", "q7": "", "q8": "X",
	})

	assert.Equal(t, 3, tally.Count("R"))
	assert.Equal(t, 2, tally.Count("I"))
	assert.Equal(t, 1, tally.Count("S"))
	assert.Equal(t, 1, tally.Count("X"))
	assert.Equal(t, 0, tally.Count("C"))
	assert.Equal(t, 7, tally.Total())
	assert.Equal(t, []string{"R", "I", "S", "X"}, tally.Categories())
}

func TestHollandSummaries(t *testing.T) {
	tt := []struct {
		name        string
		answers     map[string]string
		wantCounts  string
		wantTop3    string
	}{
		{
			name:       "empty answers",
			answers:    map[string]string{},
			wantCounts: "",
			wantTop3:   "",
		},
		{
			name:       "ranked with ties in canonical order",
			answers:    map[string]string{"1": "C", "2": "C", "3": "A", "4": "E", "5": "R", "6": "C"},
			wantCounts: "R:1, A:1, E:1, C:3",
			wantTop3:   "C型(3分), R型(1分), A型(1分)",
		},
		{
			name:       "fewer than three categories",
			answers:    map[string]string{"1": "I", "2": "I"},
			wantCounts: "I:2",
			wantTop3:   "I型(2分)",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			tally := TallyHolland(tc.answers)
			assert.Equal(t, tc.wantCounts, tally.CountSummary())
			assert.Equal(t, tc.wantTop3, tally.TopSummary(3))
		})
	}
}

func TestTopIsNonIncreasing(t *testing.T) {
	tally := TallyHolland(map[string]string{"1": "S", "2": "E", "3": "E", "4": "I", "5": "I", "6": "I"})

	top := tally.Top(6)
	require.Len(t, top, 3)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Count, top[i].Count)
	}
	assert.Equal(t, CategoryCount{Category: "I", Count: 3}, top[0])
}

func TestParseHollandAnswers(t *testing.T) {
	answers, err := ParseHollandAnswers(`{"q1":"R","q2":"I","q3":3,"q4":null}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"q1": "R", "q2": "I", "q3": "3"}, answers)

	answers, err = ParseHollandAnswers("")
	require.NoError(t, err)
	assert.NotNil(t, answers)
	assert.Empty(t, answers)

	for _, raw := range []string{"not json", `["R","I"]`, `"R"`} {
		answers, err = ParseHollandAnswers(raw)
		assert.Error(t, err, raw)
		assert.NotNil(t, answers)
		assert.Empty(t, answers)
	}
}
