package progress

import "time"

// NextStreak advances a practice streak for a session on day today, given
// the day of the previous session (empty when there is none). Days are
// YYYY-MM-DD. Practising on the day after the last session extends the
// streak, a longer gap restarts it at 1 and a repeat on the same day leaves
// it alone. An unparseable lastDay is treated as no previous session.
func NextStreak(current, longest int, lastDay, today string) (int, int) {
	day, err := time.Parse(time.DateOnly, today)
	if err != nil {
		return current, max(longest, current)
	}

	last, err := time.Parse(time.DateOnly, lastDay)
	switch {
	case lastDay == "" || err != nil:
		current++
	default:
		gap := int(day.Sub(last).Hours() / 24)
		switch {
		case gap == 1:
			current++
		case gap > 1:
			current = 1
		}
	}
	return current, max(longest, current)
}
