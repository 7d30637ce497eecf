package domain

import (
	"time"
)

// Plan is a hostel's subscription tier
type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanBasic      Plan = "BASIC"
	PlanPremium    Plan = "PREMIUM"
	PlanEnterprise Plan = "ENTERPRISE"
)

// IsValid returns true for known plans
func (p Plan) IsValid() bool {
	switch p {
	case PlanFree, PlanBasic, PlanPremium, PlanEnterprise:
		return true
	}
	return false
}

const (
	DefaultCurrency = "USD"
	DefaultTimezone = "UTC"
)

// HostelSettings holds per-hostel operational preferences
type HostelSettings struct {
	Address            string   `json:"address,omitempty"`
	Phone              string   `json:"phone,omitempty"`
	Email              string   `json:"email,omitempty"`
	Website            string   `json:"website,omitempty"`
	CheckInTime        string   `json:"checkInTime,omitempty"`
	CheckOutTime       string   `json:"checkOutTime,omitempty"`
	Currency           string   `json:"currency"`
	Timezone           string   `json:"timezone"`
	LateCheckoutFee    *float64 `json:"lateCheckoutFee,omitempty"`
	CancellationPolicy string   `json:"cancellationPolicy,omitempty"`
}

// WithDefaults fills currency and timezone when unset
func (s HostelSettings) WithDefaults() HostelSettings {
	if s.Currency == "" {
		s.Currency = DefaultCurrency
	}
	if s.Timezone == "" {
		s.Timezone = DefaultTimezone
	}
	return s
}

// Hostel is the tenant root; every other entity is scoped to a hostel id
type Hostel struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Plan      Plan           `json:"plan"`
	IsActive  bool           `json:"isActive"`
	Settings  HostelSettings `json:"settings"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt *time.Time     `json:"deletedAt,omitempty"` // Soft delete support
}

// HostelCounts holds related-record counts shown alongside a hostel
type HostelCounts struct {
	Users    int `json:"users"`
	Rooms    int `json:"rooms"`
	Bookings int `json:"bookings"`
	Guests   int `json:"guests"`
}
