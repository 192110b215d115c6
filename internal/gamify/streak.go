// Package gamify holds the streak tracker and the badge/bonus rules that react to review events.
package gamify

import "github.com/conorfennell/muraje/internal/domain"

// UpdateStreak computes the streak for a session starting today.
// It is idempotent within a day: if last is already today nothing changes.
func UpdateStreak(streak int, last, today domain.Date) (int, domain.Date, error) {
	if last.IsZero() {
		return 0, today, nil
	}
	if last == today {
		return streak, last, nil
	}

	yesterday, err := today.Yesterday()
	if err != nil {
		return streak, last, err
	}
	if last == yesterday {
		return streak + 1, today, nil
	}
	return 0, today, nil
}
