package streak

import "time"

// UserStreak is the per-user trivia record. LastActiveDate is a YYYY-MM-DD
// day in the trivia timezone and is empty until the first answer.
type UserStreak struct {
	UserID         string    `json:"userId" db:"user_id"`
	Username       string    `json:"username" db:"username"`
	Avatar         *string   `json:"avatar,omitempty" db:"image_url"`
	CurrentStreak  int       `json:"currentStreak" db:"current_streak"`
	LongestStreak  int       `json:"longestStreak" db:"longest_streak"`
	TotalPoints    int       `json:"totalPoints" db:"total_points"`
	CorrectAnswers int       `json:"correctAnswers" db:"correct_answers"`
	TotalAnswers   int       `json:"totalAnswers" db:"total_answers"`
	LastActiveDate string    `json:"lastActiveDate" db:"last_active_date"`
	Rank           *int      `json:"rank,omitempty" db:"rank"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// TriviaStatus marks what a user did on one trivia day.
type TriviaStatus struct {
	UserID           string  `json:"userId"`
	Date             string  `json:"date"`
	HasSeenToday     bool    `json:"hasSeenToday"`
	HasAnsweredToday bool    `json:"hasAnsweredToday"`
	IsCorrect        *bool   `json:"isCorrect,omitempty"`
	TriviaID         *string `json:"triviaId,omitempty"`
	Points           *int    `json:"points,omitempty"`
}
