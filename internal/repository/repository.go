package repository

import (
	"context"
	"errors"
	"time"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
)

var (
	// ErrNotFound is returned by writes that matched no live row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateSlug is returned when a live hostel already uses the slug
	ErrDuplicateSlug = errors.New("duplicate hostel slug")
	// ErrDuplicateEmail is returned when a user already uses the email
	ErrDuplicateEmail = errors.New("duplicate user email")
	// ErrDuplicateRoomNumber is returned when a hostel already has the room number
	ErrDuplicateRoomNumber = errors.New("duplicate room number")
)

// Page is an offset page request; Page is 1-based
type Page struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// HostelFilter filters hostel listings
type HostelFilter struct {
	Page
	Search string
}

// RoomFilter filters room listings within one hostel
type RoomFilter struct {
	Page
	HostelID    string
	Search      string
	Type        domain.RoomType
	Floor       *int
	IsAvailable *bool
}

// GuestFilter filters guest listings within one hostel
type GuestFilter struct {
	Page
	HostelID string
	Search   string
}

// BookingFilter filters booking listings within one hostel; From/To bound check-in
type BookingFilter struct {
	Page
	HostelID string
	Status   domain.BookingStatus
	RoomID   string
	GuestID  string
	From     *time.Time
	To       *time.Time
}

// PaymentFilter filters payment listings within one hostel
type PaymentFilter struct {
	Page
	HostelID  string
	Status    domain.PaymentStatus
	BookingID string
}

// HostelRepository defines the interface for hostel data access.
// Reads never return soft-deleted hostels.
type HostelRepository interface {
	// Create creates a new hostel
	Create(ctx context.Context, hostel *domain.Hostel) error
	// CreateWithOwner creates a hostel and its first user in one transaction
	CreateWithOwner(ctx context.Context, hostel *domain.Hostel, owner *domain.User) error
	// GetByID retrieves a hostel by ID, or nil
	GetByID(ctx context.Context, id string) (*domain.Hostel, error)
	// GetBySlug retrieves a hostel by slug, or nil
	GetBySlug(ctx context.Context, slug string) (*domain.Hostel, error)
	// List retrieves hostels newest first with the total match count
	List(ctx context.Context, filter HostelFilter) ([]*domain.Hostel, int64, error)
	// Update updates a hostel
	Update(ctx context.Context, hostel *domain.Hostel) error
	// SoftDelete marks a hostel deleted
	SoftDelete(ctx context.Context, id string, at time.Time) error
	// SlugTaken reports whether another live hostel uses slug
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	// Counts returns related-record counts for a hostel
	Counts(ctx context.Context, id string) (*domain.HostelCounts, error)
	// CountAll counts live hostels
	CountAll(ctx context.Context) (int64, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail looks up a user by lower-cased email, or nil
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// RoomRepository defines the interface for room data access
type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	List(ctx context.Context, filter RoomFilter) ([]*domain.Room, int64, error)
	Update(ctx context.Context, room *domain.Room) error
	Delete(ctx context.Context, id string) error
	// HasBookings reports whether any booking references the room
	HasBookings(ctx context.Context, id string) (bool, error)
}

// GuestRepository defines the interface for guest data access
type GuestRepository interface {
	Create(ctx context.Context, guest *domain.Guest) error
	GetByID(ctx context.Context, id string) (*domain.Guest, error)
	List(ctx context.Context, filter GuestFilter) ([]*domain.Guest, int64, error)
	Update(ctx context.Context, guest *domain.Guest) error
	Delete(ctx context.Context, id string) error
	// HasBookings reports whether any booking references the guest
	HasBookings(ctx context.Context, id string) (bool, error)
}

// BookingRepository defines the interface for booking data access
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]*domain.Booking, int64, error)
	Update(ctx context.Context, booking *domain.Booking) error
	// Delete removes a booking; payments keep their amounts but lose the link
	Delete(ctx context.Context, id string) error
}

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]*domain.Payment, int64, error)
	Update(ctx context.Context, payment *domain.Payment) error
	Delete(ctx context.Context, id string) error
}

// Stay is the date range of one booking
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// StatsRepository provides the aggregate reads behind hostel statistics.
// Time bounds are inclusive on both ends.
type StatsRepository interface {
	// SumCompletedPayments sums COMPLETED payment amounts created in [from, to]
	SumCompletedPayments(ctx context.Context, hostelID string, from, to time.Time) (float64, error)
	// CountBookingsCreated counts bookings created in [from, to]
	CountBookingsCreated(ctx context.Context, hostelID string, from, to time.Time) (int, error)
	// CountRooms counts rooms, only available ones when availableOnly is set
	CountRooms(ctx context.Context, hostelID string, availableOnly bool) (int, error)
	// StaysWithin returns bookings with checkIn >= from and checkOut <= to
	StaysWithin(ctx context.Context, hostelID string, from, to time.Time) ([]Stay, error)
	// CountActiveBookings counts CHECKED_IN bookings plus CONFIRMED ones checking in at or after asOf
	CountActiveBookings(ctx context.Context, hostelID string, asOf time.Time) (int, error)
	// RoomTypeCounts groups rooms by type
	RoomTypeCounts(ctx context.Context, hostelID string) ([]domain.RoomTypeCount, error)
	// MonthlyBookingCounts counts bookings created in [from, to] per "YYYY-MM" (UTC)
	MonthlyBookingCounts(ctx context.Context, hostelID string, from, to time.Time) (map[string]int, error)
	CountGuests(ctx context.Context, hostelID string) (int, error)
	CountBookings(ctx context.Context, hostelID string) (int, error)
	CountStaff(ctx context.Context, hostelID string) (int, error)
}

// Store bundles every repository for one storage backend
type Store struct {
	Hostels  HostelRepository
	Users    UserRepository
	Rooms    RoomRepository
	Guests   GuestRepository
	Bookings BookingRepository
	Payments PaymentRepository
	Stats    StatsRepository
}
