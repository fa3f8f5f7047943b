package leaderboard

import "nusakalaAPI/internal/types/streak"

type Leaderboard struct {
	Entries      []*streak.UserStreak `json:"entries"`
	UserPosition *streak.UserStreak   `json:"userPosition,omitempty"`
	TotalUsers   int                  `json:"totalUsers"`
}
