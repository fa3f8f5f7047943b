package trivia

import (
	"cmp"
	"slices"

	"nusakalaAPI/internal/types/streak"
)

// CompareStanding orders records by points, then current streak, both
// descending. Ties fall back to user id so the order is stable.
func CompareStanding(a, b *streak.UserStreak) int {
	if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
		return c
	}
	if c := cmp.Compare(b.CurrentStreak, a.CurrentStreak); c != 0 {
		return c
	}
	return cmp.Compare(a.UserID, b.UserID)
}

// AssignRanks sorts records into leaderboard order and sets 1-based
// competition ranks: equal points and streak share a rank and the next
// distinct standing skips ahead (1, 1, 3).
func AssignRanks(records []*streak.UserStreak) {
	slices.SortFunc(records, CompareStanding)

	for i, rec := range records {
		rank := i + 1
		if i > 0 {
			prev := records[i-1]
			if prev.TotalPoints == rec.TotalPoints && prev.CurrentStreak == rec.CurrentStreak {
				rank = *prev.Rank
			}
		}
		r := rank
		rec.Rank = &r
	}
}
