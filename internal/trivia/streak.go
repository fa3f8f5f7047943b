package trivia

import (
	"fmt"
	"time"

	"nusakalaAPI/internal/types/streak"
)

// DateLayout is the format of trivia day keys and LastActiveDate.
const DateLayout = "2006-01-02"

// Milestones are the streak lengths that trigger a push notification.
var Milestones = []int{3, 7, 30, 100}

// DateString returns the trivia day for t in loc.
func DateString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// PreviousDay returns the day before the given YYYY-MM-DD day.
func PreviousDay(day string) (string, error) {
	t, err := time.Parse(DateLayout, day)
	if err != nil {
		return "", fmt.Errorf("invalid trivia date %q: %w", day, err)
	}
	return t.AddDate(0, 0, -1).Format(DateLayout), nil
}

// UpdateStreak applies one daily answer to rec.
//
// A correct answer extends the streak when the previous active day was
// yesterday, keeps it when the user was already active today and restarts
// it at one otherwise. A wrong answer always drops the streak to zero.
// LongestStreak only grows, so CurrentStreak <= LongestStreak holds after
// every call.
func UpdateStreak(rec *streak.UserStreak, correct bool, points int, today string) error {
	yesterday, err := PreviousDay(today)
	if err != nil {
		return err
	}

	rec.TotalAnswers++

	if correct {
		rec.CorrectAnswers++
		rec.TotalPoints += points

		switch rec.LastActiveDate {
		case yesterday:
			rec.CurrentStreak++
		case today:
		default:
			rec.CurrentStreak = 1
		}
	} else {
		rec.CurrentStreak = 0
	}

	if rec.CurrentStreak > rec.LongestStreak {
		rec.LongestStreak = rec.CurrentStreak
	}
	rec.LastActiveDate = today

	return nil
}

// IsMilestone reports whether a streak of n days deserves a notification.
func IsMilestone(n int) bool {
	for _, m := range Milestones {
		if n == m {
			return true
		}
	}
	return false
}
