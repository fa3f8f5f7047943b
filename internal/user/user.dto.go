package user

import (
	"encoding/json"
	"strings"

	"nusakalaAPI/internal/types/streak"
)

type UpsertProfileRequest struct {
	ClerkID   string
	Email     string
	Username  string
	FirstName string
	LastName  string
	ImageURL  string
}

type ProfileResponse struct {
	Profile *Profile           `json:"profile"`
	Streak  *streak.UserStreak `json:"streak"`
}

// ClerkWebhookEvent is the envelope Clerk posts for user lifecycle events.
type ClerkWebhookEvent struct {
	Type   string          `json:"type"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

type ClerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type ClerkUserData struct {
	ID                    string              `json:"id"`
	Username              string              `json:"username"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	ImageURL              string              `json:"image_url"`
	ProfileImageURL       string              `json:"profile_image_url"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	EmailAddresses        []ClerkEmailAddress `json:"email_addresses"`
}

// ToUpsert maps Clerk data onto a profile. The username falls back to the
// full name, then to the local part of the email.
func (d *ClerkUserData) ToUpsert() *UpsertProfileRequest {
	email := ""
	for _, e := range d.EmailAddresses {
		if e.ID == d.PrimaryEmailAddressID || email == "" {
			email = e.EmailAddress
		}
	}

	username := strings.TrimSpace(d.Username)
	if username == "" {
		username = strings.TrimSpace(d.FirstName + " " + d.LastName)
	}
	if username == "" && email != "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	imageURL := d.ImageURL
	if imageURL == "" {
		imageURL = d.ProfileImageURL
	}

	return &UpsertProfileRequest{
		ClerkID:   d.ID,
		Email:     email,
		Username:  username,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		ImageURL:  imageURL,
	}
}
