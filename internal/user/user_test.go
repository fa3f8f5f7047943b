package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClerkUserData_ToUpsert(t *testing.T) {
	d := &ClerkUserData{
		ID:                    "user_2abc",
		FirstName:             "Dewi",
		LastName:              "Sartika",
		ProfileImageURL:       "https://img.clerk.com/p.png",
		PrimaryEmailAddressID: "idn_2",
		EmailAddresses: []ClerkEmailAddress{
			{ID: "idn_1", EmailAddress: "old@example.com"},
			{ID: "idn_2", EmailAddress: "dewi@example.com"},
		},
	}

	req := d.ToUpsert()
	assert.Equal(t, "user_2abc", req.ClerkID)
	assert.Equal(t, "dewi@example.com", req.Email)
	assert.Equal(t, "Dewi Sartika", req.Username)
	assert.Equal(t, "https://img.clerk.com/p.png", req.ImageURL)
}

func TestClerkUserData_UsernameFromEmail(t *testing.T) {
	d := &ClerkUserData{
		ID:             "user_x",
		EmailAddresses: []ClerkEmailAddress{{ID: "e", EmailAddress: "wayang@example.com"}},
	}
	assert.Equal(t, "wayang", d.ToUpsert().Username)
}
