package domain

import (
	"time"
)

// User is a staff account. HostelID is empty only for platform super admins.
type User struct {
	ID           string    `json:"id"`
	HostelID     string    `json:"hostelId,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity returns the caller identity a token for this user carries
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, HostelID: u.HostelID, Role: u.Role}
}
