package domain

import (
	"time"
)

// PaymentMethod represents how a payment was collected
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodOnline       PaymentMethod = "ONLINE"
)

// IsValid returns true for known payment methods
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodOnline:
		return true
	}
	return false
}

// PaymentStatus represents the state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusCompleted: {PaymentStatusRefunded},
	PaymentStatusFailed:    {},
	PaymentStatusRefunded:  {},
}

// IsValid returns true for known payment statuses
func (s PaymentStatus) IsValid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// IsTerminal returns true when no further transitions exist
func (s PaymentStatus) IsTerminal() bool {
	next, ok := paymentTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo returns true if moving to target is allowed
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Payment is a ledger entry recorded by hostel staff
type Payment struct {
	ID        string        `json:"id"`
	HostelID  string        `json:"hostelId"`
	BookingID string        `json:"bookingId,omitempty"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	Method    PaymentMethod `json:"method"`
	Status    PaymentStatus `json:"status"`
	Reference string        `json:"reference,omitempty"`
	Notes     string        `json:"notes,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// TransitionTo moves the payment to target or returns ErrInvalidStatusTransition
func (p *Payment) TransitionTo(target PaymentStatus, now time.Time) error {
	if !p.Status.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	p.Status = target
	p.UpdatedAt = now
	return nil
}

// IsRevenue reports whether the payment counts toward revenue figures
func (p *Payment) IsRevenue() bool {
	return p.Status == PaymentStatusCompleted
}
