package dto

import (
	"errors"
	"time"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

var ErrCheckOutBeforeCheckIn = errors.New("check-out must be after check-in")

// CreateBookingRequest represents request to create a booking
type CreateBookingRequest struct {
	HostelID       string               `json:"hostelId"`
	RoomID         string               `json:"roomId" binding:"required"`
	GuestID        string               `json:"guestId" binding:"required"`
	CheckIn        string               `json:"checkIn" binding:"required"`
	CheckOut       string               `json:"checkOut" binding:"required"`
	NumberOfGuests int                  `json:"numberOfGuests" binding:"required,min=1"`
	TotalAmount    *float64             `json:"totalAmount" binding:"omitempty,gte=0"`
	Status         domain.BookingStatus `json:"status" binding:"omitempty,oneof=PENDING CONFIRMED"`
	Notes          string               `json:"notes" binding:"omitempty,max=2000"`
}

// Dates parses and orders the stay dates
func (r *CreateBookingRequest) Dates() (time.Time, time.Time, error) {
	return parseStay(r.CheckIn, r.CheckOut)
}

// UpdateBookingRequest represents a partial booking update; status changes go through the status endpoint
type UpdateBookingRequest struct {
	RoomID         *string  `json:"roomId"`
	CheckIn        *string  `json:"checkIn"`
	CheckOut       *string  `json:"checkOut"`
	NumberOfGuests *int     `json:"numberOfGuests" binding:"omitempty,min=1"`
	TotalAmount    *float64 `json:"totalAmount" binding:"omitempty,gte=0"`
	Notes          *string  `json:"notes" binding:"omitempty,max=2000"`
}

// Validate validates that at least one field is provided for update
func (r *UpdateBookingRequest) Validate() (bool, string) {
	if r.RoomID == nil && r.CheckIn == nil && r.CheckOut == nil && r.NumberOfGuests == nil &&
		r.TotalAmount == nil && r.Notes == nil {
		return false, "At least one field must be provided for update"
	}
	return true, ""
}

// ApplyDates merges requested dates over the current stay and checks ordering
func (r *UpdateBookingRequest) ApplyDates(checkIn, checkOut time.Time) (time.Time, time.Time, error) {
	var err error
	if r.CheckIn != nil {
		if checkIn, err = ParseDate(*r.CheckIn); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if r.CheckOut != nil {
		if checkOut, err = ParseDate(*r.CheckOut); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, ErrCheckOutBeforeCheckIn
	}
	return checkIn, checkOut, nil
}

func parseStay(in, out string) (time.Time, time.Time, error) {
	checkIn, err := ParseDate(in)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	checkOut, err := ParseDate(out)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, ErrCheckOutBeforeCheckIn
	}
	return checkIn, checkOut, nil
}

// UpdateBookingStatusRequest moves a booking through its lifecycle
type UpdateBookingStatusRequest struct {
	Status domain.BookingStatus `json:"status" binding:"required,oneof=PENDING CONFIRMED CHECKED_IN CHECKED_OUT CANCELLED NO_SHOW"`
}

// ListBookingsQuery represents query parameters for listing bookings
type ListBookingsQuery struct {
	PageQuery
	Status  domain.BookingStatus `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED CHECKED_IN CHECKED_OUT CANCELLED NO_SHOW"`
	RoomID  string               `form:"roomId"`
	GuestID string               `form:"guestId"`
	From    string               `form:"from"`
	To      string               `form:"to"`
}

// Range parses the optional from/to filters on check-in
func (q *ListBookingsQuery) Range() (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if q.From != "" {
		t, err := ParseDate(q.From)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if q.To != "" {
		t, err := ParseDate(q.To)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	return from, to, nil
}

// ListBookingsResponse represents a paginated list of bookings
type ListBookingsResponse struct {
	Bookings   []*domain.Booking   `json:"bookings"`
	Pagination response.Pagination `json:"pagination"`
}

// BookingEnvelope wraps a single booking
type BookingEnvelope struct {
	Booking *domain.Booking `json:"booking"`
}
