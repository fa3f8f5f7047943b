package event

import "time"

type Event struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	Province         string     `json:"province"`
	Location         string     `json:"location"`
	StartDate        time.Time  `json:"startDate"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	ImageURL         *string    `json:"imageUrl,omitempty"`
	OrganizerID      string     `json:"organizerId"`
	ValidationStatus string     `json:"validationStatus"`
	ValidationReason string     `json:"validationReason,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type CreateEventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Province    string     `json:"province"`
	Location    string     `json:"location"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
}

type Filter struct {
	Province string
	Category string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

type Page struct {
	Events []*Event `json:"events"`
	Total  int      `json:"total"`
	Page   int      `json:"page"`
	Limit  int      `json:"limit"`
}
