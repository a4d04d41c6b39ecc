// Package engine holds the pure computation layer: urgency classification,
// priority ranking, and renewal-timeline grouping. Nothing in here touches
// a store or a clock; callers pass the reference date in.
package engine

import (
	"fmt"
	"math"
	"time"
)

type Urgency string

const (
	UrgencyCritical  Urgency = "critical"
	UrgencyWarning   Urgency = "warning"
	UrgencyAttention Urgency = "attention"
	UrgencyOK        Urgency = "ok"
)

// Midnight anchors t to 00:00 UTC on its calendar day. Day arithmetic is
// done on anchored values so the result is stable for any wall-clock time
// within the same day.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the number of calendar days from today until target,
// negative when target is in the past and nil when there is no target.
// Ceiling division keeps a target exactly N days out at exactly N.
func DaysUntil(target *time.Time, today time.Time) *int {
	if target == nil {
		return nil
	}
	diff := Midnight(*target).Sub(Midnight(today))
	days := int(math.Ceil(float64(diff) / float64(24*time.Hour)))
	return &days
}

// LevelFor maps days remaining onto the four-tier urgency ladder.
// Boundaries are inclusive on the lower tier: day 7 is critical, day 8
// is warning. Negative values (already expired) are critical too.
func LevelFor(days *int) Urgency {
	if days == nil {
		return UrgencyOK
	}
	switch d := *days; {
	case d <= 7:
		return UrgencyCritical
	case d <= 30:
		return UrgencyWarning
	case d <= 60:
		return UrgencyAttention
	default:
		return UrgencyOK
	}
}

// FormatDaysRemaining renders days remaining as badge text.
func FormatDaysRemaining(days *int) string {
	switch {
	case days == nil:
		return "No expiration"
	case *days < 0:
		overdue := -*days
		if overdue == 1 {
			return "1 day overdue"
		}
		return fmt.Sprintf("%d days overdue", overdue)
	case *days == 0:
		return "Expires today"
	case *days == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", *days)
	}
}
