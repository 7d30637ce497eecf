package dto

import (
	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// CreatePaymentRequest records a payment against a hostel and optionally a booking
type CreatePaymentRequest struct {
	HostelID  string               `json:"hostelId"`
	BookingID string               `json:"bookingId"`
	Amount    float64              `json:"amount" binding:"required,gt=0"`
	Currency  string               `json:"currency" binding:"omitempty,len=3"`
	Method    domain.PaymentMethod `json:"method" binding:"required,oneof=CASH CARD BANK_TRANSFER ONLINE"`
	Status    domain.PaymentStatus `json:"status" binding:"omitempty,oneof=PENDING COMPLETED"`
	Reference string               `json:"reference" binding:"omitempty,max=255"`
	Notes     string               `json:"notes" binding:"omitempty,max=2000"`
}

// UpdatePaymentRequest represents a partial payment update
type UpdatePaymentRequest struct {
	Amount    *float64              `json:"amount" binding:"omitempty,gt=0"`
	Method    *domain.PaymentMethod `json:"method" binding:"omitempty,oneof=CASH CARD BANK_TRANSFER ONLINE"`
	Reference *string               `json:"reference" binding:"omitempty,max=255"`
	Notes     *string               `json:"notes" binding:"omitempty,max=2000"`
}

// Validate validates that at least one field is provided for update
func (r *UpdatePaymentRequest) Validate() (bool, string) {
	if r.Amount == nil && r.Method == nil && r.Reference == nil && r.Notes == nil {
		return false, "At least one field must be provided for update"
	}
	return true, ""
}

// UpdatePaymentStatusRequest moves a payment through its lifecycle
type UpdatePaymentStatusRequest struct {
	Status domain.PaymentStatus `json:"status" binding:"required,oneof=PENDING COMPLETED FAILED REFUNDED"`
}

// ListPaymentsQuery represents query parameters for listing payments
type ListPaymentsQuery struct {
	PageQuery
	Status    domain.PaymentStatus `form:"status" binding:"omitempty,oneof=PENDING COMPLETED FAILED REFUNDED"`
	BookingID string               `form:"bookingId"`
}

// ListPaymentsResponse represents a paginated list of payments
type ListPaymentsResponse struct {
	Payments   []*domain.Payment   `json:"payments"`
	Pagination response.Pagination `json:"pagination"`
}

// PaymentEnvelope wraps a single payment
type PaymentEnvelope struct {
	Payment *domain.Payment `json:"payment"`
}
