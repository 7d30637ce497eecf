package domain

import (
	"time"
)

// Guest is a person staying at a hostel
type Guest struct {
	ID             string    `json:"id"`
	HostelID       string    `json:"hostelId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Nationality    string    `json:"nationality,omitempty"`
	DocumentType   string    `json:"documentType,omitempty"`
	DocumentNumber string    `json:"documentNumber,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// FullName joins first and last name
func (g *Guest) FullName() string {
	if g.LastName == "" {
		return g.FirstName
	}
	return g.FirstName + " " + g.LastName
}
