package domain

import (
	"errors"
	"math"
	"time"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusCheckedIn  BookingStatus = "CHECKED_IN"
	BookingStatusCheckedOut BookingStatus = "CHECKED_OUT"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
	BookingStatusNoShow     BookingStatus = "NO_SHOW"
)

// ErrInvalidStatusTransition is returned when a status change is not allowed
var ErrInvalidStatusTransition = errors.New("invalid status transition")

// bookingTransitions defines allowed status changes
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusCheckedIn, BookingStatusCancelled, BookingStatusNoShow},
	BookingStatusCheckedIn:  {BookingStatusCheckedOut},
	BookingStatusCheckedOut: {}, // Terminal
	BookingStatusCancelled:  {}, // Terminal
	BookingStatusNoShow:     {}, // Terminal
}

// IsValid returns true for known booking statuses
func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// IsTerminal returns true when no further transitions exist
func (s BookingStatus) IsTerminal() bool {
	next, ok := bookingTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo returns true if moving to target is allowed
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Booking reserves a room for a guest over a date range
type Booking struct {
	ID             string        `json:"id"`
	HostelID       string        `json:"hostelId"`
	RoomID         string        `json:"roomId"`
	GuestID        string        `json:"guestId"`
	CheckIn        time.Time     `json:"checkIn"`
	CheckOut       time.Time     `json:"checkOut"`
	NumberOfGuests int           `json:"numberOfGuests"`
	TotalAmount    float64       `json:"totalAmount"`
	Status         BookingStatus `json:"status"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Nights returns the stay length, rounding partial days up
func (b *Booking) Nights() int {
	return NightsBetween(b.CheckIn, b.CheckOut)
}

// NightsBetween returns ceil((checkOut-checkIn)/24h), never negative
func NightsBetween(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// TransitionTo moves the booking to target or returns ErrInvalidStatusTransition
func (b *Booking) TransitionTo(target BookingStatus, now time.Time) error {
	if !b.Status.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	b.Status = target
	b.UpdatedAt = now
	return nil
}
