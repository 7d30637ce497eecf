package domain

import (
	"errors"
	"testing"
	"time"
)

func TestBookingStatus_Transitions(t *testing.T) {
	tests := []struct {
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusCheckedIn, false},
		{BookingStatusConfirmed, BookingStatusCheckedIn, true},
		{BookingStatusConfirmed, BookingStatusNoShow, true},
		{BookingStatusCheckedIn, BookingStatusCheckedOut, true},
		{BookingStatusCheckedIn, BookingStatusCancelled, false},
		{BookingStatusCheckedOut, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatus("UNKNOWN"), BookingStatusConfirmed, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestBookingStatus_Terminal(t *testing.T) {
	terminal := []BookingStatus{BookingStatusCheckedOut, BookingStatusCancelled, BookingStatusNoShow}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if BookingStatusPending.IsTerminal() {
		t.Error("PENDING should not be terminal")
	}
	if BookingStatus("X").IsValid() {
		t.Error("unknown status should be invalid")
	}
}

func TestBooking_TransitionTo(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b := &Booking{Status: BookingStatusPending}

	if err := b.TransitionTo(BookingStatusConfirmed, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != BookingStatusConfirmed || !b.UpdatedAt.Equal(now) {
		t.Errorf("unexpected booking after transition: %+v", b)
	}
	if err := b.TransitionTo(BookingStatusPending, now); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("expected ErrInvalidStatusTransition, got %v", err)
	}
}

func TestNightsBetween(t *testing.T) {
	base := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		out  time.Time
		want int
	}{
		{"two nights", base.Add(48 * time.Hour), 2},
		{"partial day rounds up", base.Add(25 * time.Hour), 2},
		{"same instant", base, 0},
		{"reversed", base.Add(-time.Hour), 0},
	}
	for _, tt := range tests {
		if got := NightsBetween(base, tt.out); got != tt.want {
			t.Errorf("%s: NightsBetween = %d, want %d", tt.name, got, tt.want)
		}
	}
}
