package domain

import (
	"time"
)

// RoomType classifies rooms for pricing and stats
type RoomType string

const (
	RoomTypePrivate RoomType = "PRIVATE"
	RoomTypeDorm    RoomType = "DORM"
	RoomTypeFamily  RoomType = "FAMILY"
	RoomTypeDeluxe  RoomType = "DELUXE"
)

// IsValid returns true for known room types
func (t RoomType) IsValid() bool {
	switch t {
	case RoomTypePrivate, RoomTypeDorm, RoomTypeFamily, RoomTypeDeluxe:
		return true
	}
	return false
}

// Room is a bookable unit of a hostel
type Room struct {
	ID                string    `json:"id"`
	HostelID          string    `json:"hostelId"`
	RoomNumber        string    `json:"roomNumber"`
	Name              string    `json:"name,omitempty"`
	Type              RoomType  `json:"type"`
	Beds              int       `json:"beds"`
	MaxGuests         int       `json:"maxGuests"`
	PricePerNight     float64   `json:"pricePerNight"`
	Floor             *int      `json:"floor,omitempty"`
	Size              *float64  `json:"size,omitempty"`
	Description       string    `json:"description,omitempty"`
	Amenities         []string  `json:"amenities"`
	Images            []string  `json:"images"`
	HousekeepingNotes string    `json:"housekeepingNotes,omitempty"`
	IsAvailable       bool      `json:"isAvailable"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
