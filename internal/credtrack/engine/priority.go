package engine

// expiredFloor dominates any realistic non-expired score, so an expired
// credential always sorts above a merely-upcoming one regardless of how
// many accounts either blocks.
const expiredFloor = 10000

// PriorityScore combines time pressure and blast radius into one sortable
// value. No deadline means no urgency; past-or-today deadlines get the
// dominant floor; otherwise the score decays with the inverse of the days
// remaining, scaled by the number of accounts affected.
func PriorityScore(days *int, impact int) float64 {
	if days == nil {
		return 0
	}
	if *days <= 0 {
		return expiredFloor * float64(impact)
	}
	return 1 / float64(*days) * float64(impact) * 100
}
