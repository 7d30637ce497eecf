package dto

import (
	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// CreateRoomRequest represents request to create a room
type CreateRoomRequest struct {
	HostelID          string          `json:"hostelId"`
	RoomNumber        string          `json:"roomNumber" binding:"required,max=20"`
	Name              string          `json:"name" binding:"omitempty,max=100"`
	Type              domain.RoomType `json:"type" binding:"required,oneof=PRIVATE DORM FAMILY DELUXE"`
	Beds              int             `json:"beds" binding:"required,min=1"`
	MaxGuests         int             `json:"maxGuests" binding:"required,min=1"`
	PricePerNight     float64         `json:"pricePerNight" binding:"gte=0"`
	Floor             *int            `json:"floor"`
	Size              *float64        `json:"size" binding:"omitempty,gte=0"`
	Description       string          `json:"description" binding:"omitempty,max=2000"`
	Amenities         []string        `json:"amenities"`
	Images            []string        `json:"images" binding:"omitempty,dive,url"`
	HousekeepingNotes string          `json:"housekeepingNotes" binding:"omitempty,max=2000"`
	IsAvailable       *bool           `json:"isAvailable"`
}

// UpdateRoomRequest represents a partial room update
type UpdateRoomRequest struct {
	RoomNumber        *string          `json:"roomNumber" binding:"omitempty,max=20"`
	Name              *string          `json:"name" binding:"omitempty,max=100"`
	Type              *domain.RoomType `json:"type" binding:"omitempty,oneof=PRIVATE DORM FAMILY DELUXE"`
	Beds              *int             `json:"beds" binding:"omitempty,min=1"`
	MaxGuests         *int             `json:"maxGuests" binding:"omitempty,min=1"`
	PricePerNight     *float64         `json:"pricePerNight" binding:"omitempty,gte=0"`
	Floor             *int             `json:"floor"`
	Size              *float64         `json:"size" binding:"omitempty,gte=0"`
	Description       *string          `json:"description" binding:"omitempty,max=2000"`
	Amenities         *[]string        `json:"amenities"`
	Images            *[]string        `json:"images"`
	HousekeepingNotes *string          `json:"housekeepingNotes" binding:"omitempty,max=2000"`
	IsAvailable       *bool            `json:"isAvailable"`
}

// Validate validates that at least one field is provided for update
func (r *UpdateRoomRequest) Validate() (bool, string) {
	if r.RoomNumber == nil && r.Name == nil && r.Type == nil && r.Beds == nil && r.MaxGuests == nil &&
		r.PricePerNight == nil && r.Floor == nil && r.Size == nil && r.Description == nil &&
		r.Amenities == nil && r.Images == nil && r.HousekeepingNotes == nil && r.IsAvailable == nil {
		return false, "At least one field must be provided for update"
	}
	return true, ""
}

// UpdateRoomStatusRequest toggles room availability
type UpdateRoomStatusRequest struct {
	IsAvailable *bool `json:"isAvailable"`
}

// ListRoomsQuery represents query parameters for listing rooms
type ListRoomsQuery struct {
	PageQuery
	Search      string          `form:"search" binding:"omitempty,max=100"`
	Type        domain.RoomType `form:"type" binding:"omitempty,oneof=PRIVATE DORM FAMILY DELUXE"`
	Floor       *int            `form:"floor"`
	IsAvailable *bool           `form:"isAvailable"`
}

// ListRoomsResponse represents a paginated list of rooms
type ListRoomsResponse struct {
	Rooms      []*domain.Room      `json:"rooms"`
	Pagination response.Pagination `json:"pagination"`
}

// RoomEnvelope wraps a single room
type RoomEnvelope struct {
	Room *domain.Room `json:"room"`
}
