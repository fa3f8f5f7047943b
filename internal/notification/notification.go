package notification

import "time"

type NotificationType string

const (
	NotificationStreakMilestone NotificationType = "streak_milestone"
)

type DeviceToken struct {
	Token    string    `json:"token"`
	Platform string    `json:"platform"`
	AddedAt  time.Time `json:"addedAt"`
	LastUsed time.Time `json:"lastUsed"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// Push is one message fanned out to every device of a user.
type Push struct {
	Type  NotificationType
	Title string
	Body  string
	Data  map[string]any
}
