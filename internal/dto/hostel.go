package dto

import (
	"time"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// HostelSettingsInput is a partial settings update; nil fields are left unchanged
type HostelSettingsInput struct {
	Address            *string  `json:"address" binding:"omitempty,max=255"`
	Phone              *string  `json:"phone" binding:"omitempty,max=50"`
	Email              *string  `json:"email" binding:"omitempty,email"`
	Website            *string  `json:"website" binding:"omitempty,url"`
	CheckInTime        *string  `json:"checkInTime" binding:"omitempty,max=5"`
	CheckOutTime       *string  `json:"checkOutTime" binding:"omitempty,max=5"`
	Currency           *string  `json:"currency" binding:"omitempty,len=3"`
	Timezone           *string  `json:"timezone" binding:"omitempty,max=64"`
	LateCheckoutFee    *float64 `json:"lateCheckoutFee" binding:"omitempty,gte=0"`
	CancellationPolicy *string  `json:"cancellationPolicy" binding:"omitempty,max=1000"`
}

// Apply merges the provided fields into s
func (in *HostelSettingsInput) Apply(s domain.HostelSettings) domain.HostelSettings {
	if in == nil {
		return s.WithDefaults()
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.Address, in.Address)
	set(&s.Phone, in.Phone)
	set(&s.Email, in.Email)
	set(&s.Website, in.Website)
	set(&s.CheckInTime, in.CheckInTime)
	set(&s.CheckOutTime, in.CheckOutTime)
	set(&s.Currency, in.Currency)
	set(&s.Timezone, in.Timezone)
	set(&s.CancellationPolicy, in.CancellationPolicy)
	if in.LateCheckoutFee != nil {
		fee := *in.LateCheckoutFee
		s.LateCheckoutFee = &fee
	}
	return s.WithDefaults()
}

// CreateHostelRequest represents request to create a hostel
type CreateHostelRequest struct {
	Name     string               `json:"name" binding:"required,min=2,max=100"`
	Slug     string               `json:"slug" binding:"required"`
	Plan     domain.Plan          `json:"plan" binding:"omitempty"`
	Settings *HostelSettingsInput `json:"settings"`
}

// Validate checks slug format and plan
func (r *CreateHostelRequest) Validate() (bool, string) {
	if ok, msg := ValidateSlug(r.Slug); !ok {
		return false, msg
	}
	if r.Plan != "" && !r.Plan.IsValid() {
		return false, "Plan must be one of FREE, BASIC, PREMIUM, ENTERPRISE"
	}
	return true, ""
}

// UpdateHostelRequest represents a partial hostel update
type UpdateHostelRequest struct {
	Name     *string              `json:"name" binding:"omitempty,min=2,max=100"`
	Slug     *string              `json:"slug"`
	Plan     *domain.Plan         `json:"plan"`
	IsActive *bool                `json:"isActive"`
	Settings *HostelSettingsInput `json:"settings"`
}

// TouchesRestrictedFields reports whether the update sets fields only a super admin may change
func (r *UpdateHostelRequest) TouchesRestrictedFields() bool {
	return r.Slug != nil || r.Plan != nil || r.IsActive != nil
}

// Validate validates that at least one field is provided and each is well formed
func (r *UpdateHostelRequest) Validate() (bool, string) {
	if r.Name == nil && r.Slug == nil && r.Plan == nil && r.IsActive == nil && r.Settings == nil {
		return false, "At least one field must be provided for update"
	}
	if r.Slug != nil {
		if ok, msg := ValidateSlug(*r.Slug); !ok {
			return false, msg
		}
	}
	if r.Plan != nil && !r.Plan.IsValid() {
		return false, "Plan must be one of FREE, BASIC, PREMIUM, ENTERPRISE"
	}
	return true, ""
}

// UpdateHostelStatusRequest toggles a hostel on or off. IsActive is a pointer so
// that a missing field can be told apart from false.
type UpdateHostelStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

// ListHostelsQuery represents query parameters for listing hostels
type ListHostelsQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"search" binding:"omitempty,max=100"`
}

// SetDefaults sets default values for query parameters
func (q *ListHostelsQuery) SetDefaults() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
}

// HostelResponse represents hostel data in responses
type HostelResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Slug      string                `json:"slug"`
	Plan      domain.Plan           `json:"plan"`
	IsActive  bool                  `json:"isActive"`
	Settings  domain.HostelSettings `json:"settings"`
	CreatedAt string                `json:"createdAt"`
	UpdatedAt string                `json:"updatedAt"`
	Count     *domain.HostelCounts  `json:"_count,omitempty"`
}

// NewHostelResponse converts a domain hostel; counts may be nil
func NewHostelResponse(h *domain.Hostel, counts *domain.HostelCounts) HostelResponse {
	return HostelResponse{
		ID:        h.ID,
		Name:      h.Name,
		Slug:      h.Slug,
		Plan:      h.Plan,
		IsActive:  h.IsActive,
		Settings:  h.Settings,
		CreatedAt: h.CreatedAt.Format(time.RFC3339),
		UpdatedAt: h.UpdatedAt.Format(time.RFC3339),
		Count:     counts,
	}
}

// HostelEnvelope wraps a single hostel
type HostelEnvelope struct {
	Hostel HostelResponse `json:"hostel"`
}

// ListHostelsResponse represents a paginated list of hostels
type ListHostelsResponse struct {
	Hostels    []HostelResponse    `json:"hostels"`
	Pagination response.Pagination `json:"pagination"`
}

// MyHostelStats is the dashboard summary shown with the caller's own hostel
type MyHostelStats struct {
	MonthlyRevenue float64 `json:"monthlyRevenue"`
	TodayBookings  int     `json:"todayBookings"`
	AvailableRooms int     `json:"availableRooms"`
	TotalRooms     int     `json:"totalRooms"`
	TotalGuests    int     `json:"totalGuests"`
	TotalBookings  int     `json:"totalBookings"`
	TotalStaff     int     `json:"totalStaff"`
}

// MyHostelResponse is GET /api/hostels/my-hostel
type MyHostelResponse struct {
	Hostel HostelResponse `json:"hostel"`
	Stats  MyHostelStats  `json:"stats"`
}

// HostelStats is the analytics view of one hostel
type HostelStats struct {
	MonthlyRevenue       float64                  `json:"monthlyRevenue"`
	YearlyRevenue        float64                  `json:"yearlyRevenue"`
	OccupancyRate        float64                  `json:"occupancyRate"`
	TotalGuests          int                      `json:"totalGuests"`
	ActiveBookings       int                      `json:"activeBookings"`
	RoomTypes            []domain.RoomTypeCount   `json:"roomTypes"`
	MonthlyBookingsTrend []domain.MonthlyBookings `json:"monthlyBookingsTrend"`
}

// HostelStatsResponse is GET /api/hostels/:id/stats
type HostelStatsResponse struct {
	Stats HostelStats `json:"stats"`
}

// NewMyHostelStats projects the dashboard summary out of a snapshot
func NewMyHostelStats(s *domain.StatsSnapshot) MyHostelStats {
	return MyHostelStats{
		MonthlyRevenue: s.MonthlyRevenue,
		TodayBookings:  s.TodayBookings,
		AvailableRooms: s.AvailableRooms,
		TotalRooms:     s.TotalRooms,
		TotalGuests:    s.TotalGuests,
		TotalBookings:  s.TotalBookings,
		TotalStaff:     s.TotalStaff,
	}
}

// NewHostelStats projects the analytics view out of a snapshot
func NewHostelStats(s *domain.StatsSnapshot) HostelStats {
	return HostelStats{
		MonthlyRevenue:       s.MonthlyRevenue,
		YearlyRevenue:        s.YearlyRevenue,
		OccupancyRate:        s.OccupancyRate,
		TotalGuests:          s.TotalGuests,
		ActiveBookings:       s.ActiveBookings,
		RoomTypes:            s.RoomTypes,
		MonthlyBookingsTrend: s.MonthlyBookingsTrend,
	}
}
