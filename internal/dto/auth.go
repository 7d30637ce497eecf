package dto

import (
	"strings"
	"time"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
)

// RegisterRequest creates a hostel together with its owning admin
type RegisterRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6,max=128"`
	HostelName string `json:"hostelName" binding:"required,min=2,max=100"`
	HostelSlug string `json:"hostelSlug" binding:"required"`
}

// Normalize lower-cases the email and trims names
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.HostelName = strings.TrimSpace(r.HostelName)
	r.HostelSlug = strings.TrimSpace(r.HostelSlug)
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is a user without credentials
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	HostelID  string      `json:"hostelId,omitempty"`
	IsActive  bool        `json:"isActive"`
	CreatedAt string      `json:"createdAt"`
}

// HostelSummary is the hostel attached to auth payloads
type HostelSummary struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Slug     string      `json:"slug"`
	Plan     domain.Plan `json:"plan"`
	IsActive bool        `json:"isActive"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User      UserResponse   `json:"user"`
	Hostel    *HostelSummary `json:"hostel,omitempty"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// MeUser is the current user with their hostel nested
type MeUser struct {
	UserResponse
	Hostel *HostelSummary `json:"hostel,omitempty"`
}

// MeResponse wraps the current user
type MeResponse struct {
	User MeUser `json:"user"`
}

// NewUserResponse converts a domain user
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		HostelID:  u.HostelID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// NewHostelSummary converts a domain hostel; nil stays nil
func NewHostelSummary(h *domain.Hostel) *HostelSummary {
	if h == nil {
		return nil
	}
	return &HostelSummary{ID: h.ID, Name: h.Name, Slug: h.Slug, Plan: h.Plan, IsActive: h.IsActive}
}
