package dto

import (
	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// CreateGuestRequest represents request to register a guest
type CreateGuestRequest struct {
	HostelID       string `json:"hostelId"`
	FirstName      string `json:"firstName" binding:"required,min=1,max=100"`
	LastName       string `json:"lastName" binding:"required,min=1,max=100"`
	Email          string `json:"email" binding:"omitempty,email"`
	Phone          string `json:"phone" binding:"omitempty,max=50"`
	Nationality    string `json:"nationality" binding:"omitempty,max=100"`
	DocumentType   string `json:"documentType" binding:"omitempty,max=50"`
	DocumentNumber string `json:"documentNumber" binding:"omitempty,max=100"`
	Notes          string `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateGuestRequest represents a partial guest update
type UpdateGuestRequest struct {
	FirstName      *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName       *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone" binding:"omitempty,max=50"`
	Nationality    *string `json:"nationality" binding:"omitempty,max=100"`
	DocumentType   *string `json:"documentType" binding:"omitempty,max=50"`
	DocumentNumber *string `json:"documentNumber" binding:"omitempty,max=100"`
	Notes          *string `json:"notes" binding:"omitempty,max=2000"`
}

// Validate validates that at least one field is provided for update
func (r *UpdateGuestRequest) Validate() (bool, string) {
	if r.FirstName == nil && r.LastName == nil && r.Email == nil && r.Phone == nil &&
		r.Nationality == nil && r.DocumentType == nil && r.DocumentNumber == nil && r.Notes == nil {
		return false, "At least one field must be provided for update"
	}
	return true, ""
}

// ListGuestsQuery represents query parameters for listing guests
type ListGuestsQuery struct {
	PageQuery
	Search string `form:"search" binding:"omitempty,max=100"`
}

// ListGuestsResponse represents a paginated list of guests
type ListGuestsResponse struct {
	Guests     []*domain.Guest     `json:"guests"`
	Pagination response.Pagination `json:"pagination"`
}

// GuestEnvelope wraps a single guest
type GuestEnvelope struct {
	Guest *domain.Guest `json:"guest"`
}
