package services

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// RIASEC lists the six Holland categories in their canonical order.
var RIASEC = []string{"R", "I", "A", "S", "E", "C"}

type CategoryCount struct {
	Category string
	Count    int
}

// HollandTally counts answers per category letter.
type HollandTally struct {
	counts map[string]int
	total  int
}

// TallyHolland counts every non-empty answer after trimming and upper-casing it.
// Letters outside RIASEC are kept so that counts always sum to Total().
func TallyHolland(answers map[string]string) HollandTally {
	t := HollandTally{counts: make(map[string]int)}
	for _, answer := range answers {
		cat := strings.ToUpper(strings.TrimSpace(answer))
		if cat == "" {
			continue
		}
		t.counts[cat]++
		t.total++
	}
	return t
}

func (t HollandTally) Count(category string) int {
	return t.counts[category]
}

func (t HollandTally) Total() int {
	return t.total
}

// Categories returns every counted key: RIASEC letters first in canonical
// order, then any other keys sorted lexically.
func (t HollandTally) Categories() []string {
	cats := make([]string, 0, len(t.counts))
	for _, c := range RIASEC {
		if _, ok := t.counts[c]; ok {
			cats = append(cats, c)
		}
	}

	var extra []string
	for c := range t.counts {
		if !slices.Contains(RIASEC, c) {
			extra = append(extra, c)
		}
	}
	slices.Sort(extra)

	return append(cats, extra...)
}

// CountSummary renders the raw tally, e.g. "R:3, I:2".
func (t HollandTally) CountSummary() string {
	parts := make([]string, 0, len(t.counts))
	for _, c := range t.Categories() {
		parts = append(parts, fmt.Sprintf("%s:%d", c, t.counts[c]))
	}
	return strings.Join(parts, ", ")
}

// Top returns up to n RIASEC categories with a positive count, highest first.
// Equal counts keep canonical RIASEC order.
func (t HollandTally) Top(n int) []CategoryCount {
	ranked := make([]CategoryCount, 0, len(RIASEC))
	for _, c := range RIASEC {
		if count := t.counts[c]; count > 0 {
			ranked = append(ranked, CategoryCount{Category: c, Count: count})
		}
	}

	slices.SortStableFunc(ranked, func(a, b CategoryCount) int {
		return b.Count - a.Count
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TopSummary renders the top categories, e.g. "R型(3分), I型(2分)".
func (t HollandTally) TopSummary(n int) string {
	top := t.Top(n)
	parts := make([]string, 0, len(top))
	for _, cc := range top {
		parts = append(parts, fmt.Sprintf("%s型(%d分)", cc.Category, cc.Count))
	}
	return strings.Join(parts, ", ")
}

// ParseHollandAnswers decodes the holland_answers form field. On any error the
// returned mapping is empty, never nil, so callers can log and carry on.
func ParseHollandAnswers(raw string) (map[string]string, error) {
	answers := make(map[string]string)

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return answers, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return answers, fmt.Errorf("invalid holland_answers: %w", err)
	}

	for q, v := range decoded {
		switch val := v.(type) {
		case string:
			answers[q] = val
		case float64:
			answers[q] = strconv.FormatFloat(val, 'f', -1, 64)
		case nil:
		default:
			answers[q] = fmt.Sprint(val)
		}
	}
	return answers, nil
}
