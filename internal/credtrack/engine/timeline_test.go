package engine_test

import (
	"testing"

	"github.com/credtrack/server/internal/credtrack/engine"
	"github.com/credtrack/server/internal/credtrack/types"
)

func TestWeekLabel_Boundaries(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{-1, "Overdue"},
		{0, "This week"},
		{7, "This week"},
		{8, "Next week"},
		{14, "Next week"},
		{15, "In 2 weeks"},
		{21, "In 2 weeks"},
		{22, "In 3 weeks"},
		{28, "In 3 weeks"},
		{29, "In 4 weeks"},
		{35, "In 4 weeks"},
		{36, "In 5-8 weeks"},
		{60, "In 5-8 weeks"},
		{61, "Later"},
	}

	for _, tc := range cases {
		if got := engine.WeekLabel(tc.days); got != tc.want {
			t.Errorf("WeekLabel(%d): expected %q, got %q", tc.days, tc.want, got)
		}
	}
}

func enrichedWithDays(id string, d *int) types.EnrichedCredential {
	return types.EnrichedCredential{
		Credential:    types.Credential{ID: id, Name: id},
		DaysRemaining: d,
	}
}

func TestGroupByWeek_FixedChronologicalOrder(t *testing.T) {
	// Deliberately fed latest-first; the emitted order must not care.
	input := []types.EnrichedCredential{
		enrichedWithDays("c_later", days(70)),
		enrichedWithDays("c_mid", days(40)),
		enrichedWithDays("c_next", days(10)),
		enrichedWithDays("c_now", days(3)),
		enrichedWithDays("c_over", days(-2)),
	}

	groups := engine.GroupByWeek(input)

	wantLabels := []string{"Overdue", "This week", "Next week", "In 5-8 weeks", "Later"}
	if len(groups) != len(wantLabels) {
		t.Fatalf("expected %d groups, got %d", len(wantLabels), len(groups))
	}
	for i, g := range groups {
		if g.Label != wantLabels[i] {
			t.Errorf("group %d: expected label %q, got %q", i, wantLabels[i], g.Label)
		}
		if len(g.Credentials) == 0 {
			t.Errorf("group %q: expected no empty groups", g.Label)
		}
	}
}

func TestGroupByWeek_PartitionsExactly(t *testing.T) {
	input := []types.EnrichedCredential{
		enrichedWithDays("c1", days(-5)),
		enrichedWithDays("c2", days(2)),
		enrichedWithDays("c3", days(5)),
		enrichedWithDays("c4", days(12)),
		enrichedWithDays("c_no_expiry", nil),
	}

	groups := engine.GroupByWeek(input)

	seen := make(map[string]int)
	total := 0
	for _, g := range groups {
		for _, c := range g.Credentials {
			seen[c.ID]++
			total++
		}
	}

	// Every credential with a timeline lands in exactly one group.
	if total != 4 {
		t.Fatalf("expected 4 grouped credentials, got %d", total)
	}
	for _, id := range []string{"c1", "c2", "c3", "c4"} {
		if seen[id] != 1 {
			t.Errorf("credential %s: expected exactly one group, got %d", id, seen[id])
		}
	}
	if seen["c_no_expiry"] != 0 {
		t.Error("credential without expiration must be excluded from grouping")
	}
}

func TestGroupByWeek_Empty(t *testing.T) {
	if groups := engine.GroupByWeek(nil); len(groups) != 0 {
		t.Fatalf("expected no groups for empty input, got %d", len(groups))
	}
}
