package engine

import (
	"github.com/credtrack/server/internal/credtrack/types"
)

// weekOrder is the fixed chronological ordering of timeline buckets.
// GroupByWeek emits groups in this order no matter which bucket filled
// first.
var weekOrder = []string{
	"Overdue",
	"This week",
	"Next week",
	"In 2 weeks",
	"In 3 weeks",
	"In 4 weeks",
	"In 5-8 weeks",
	"Later",
}

func WeekLabel(days int) string {
	switch {
	case days < 0:
		return "Overdue"
	case days <= 7:
		return "This week"
	case days <= 14:
		return "Next week"
	case days <= 21:
		return "In 2 weeks"
	case days <= 28:
		return "In 3 weeks"
	case days <= 35:
		return "In 4 weeks"
	case days <= 60:
		return "In 5-8 weeks"
	default:
		return "Later"
	}
}

// GroupByWeek buckets credentials into the renewal timeline. Credentials
// without a days-remaining value have no renewal timeline and are skipped;
// empty buckets are omitted.
func GroupByWeek(creds []types.EnrichedCredential) []types.RenewalGroup {
	buckets := make(map[string][]types.EnrichedCredential)
	for _, c := range creds {
		if c.DaysRemaining == nil {
			continue
		}
		label := WeekLabel(*c.DaysRemaining)
		buckets[label] = append(buckets[label], c)
	}

	groups := make([]types.RenewalGroup, 0, len(buckets))
	for _, label := range weekOrder {
		if cs, ok := buckets[label]; ok {
			groups = append(groups, types.RenewalGroup{Label: label, Credentials: cs})
		}
	}
	return groups
}
