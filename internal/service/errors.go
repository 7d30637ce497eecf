package service

import (
	"errors"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
)

var (
	ErrForbidden          = errors.New("access denied")
	ErrHostelNotFound     = errors.New("hostel not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrGuestNotFound      = errors.New("guest not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrSlugTaken          = errors.New("hostel slug already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrRoomNumberTaken    = errors.New("room number already exists in this hostel")
	ErrHasBookings        = errors.New("record is referenced by bookings")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrHostelDisabled     = errors.New("hostel account is disabled")

	// ErrInvalidStatusTransition is re-exported so handlers only depend on this package
	ErrInvalidStatusTransition = domain.ErrInvalidStatusTransition
)

// AccessDeniedError is an ErrForbidden with a caller-facing explanation
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

func (e *AccessDeniedError) Is(target error) bool { return target == ErrForbidden }

func denied(msg string) error {
	return &AccessDeniedError{Message: msg}
}

// ValidationError reports a request that is well-formed JSON but semantically invalid
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
