package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/repository"
)

var testNow = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store    *repository.Store
	clock    FixedClock
	guard    *AccessGuard
	events   *MemoryEventPublisher
	notifier *ChangeNotifier
	stats    StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore().Store()
	clock := FixedClock{At: testNow}
	events := &MemoryEventPublisher{}
	return &testEnv{
		store:    store,
		clock:    clock,
		guard:    NewAccessGuard(store.Hostels),
		events:   events,
		notifier: NewChangeNotifier(nil, events, clock, nil),
		stats:    NewStatsService(store.Stats, nil, clock, nil),
	}
}

func (e *testEnv) hostel(t *testing.T, slug string) *domain.Hostel {
	t.Helper()
	h := &domain.Hostel{
		ID:        uuid.New().String(),
		Name:      "Hostel " + slug,
		Slug:      slug,
		Plan:      domain.PlanFree,
		IsActive:  true,
		Settings:  domain.HostelSettings{}.WithDefaults(),
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(t, e.store.Hostels.Create(context.Background(), h))
	return h
}

func (e *testEnv) room(t *testing.T, hostelID, number string, typ domain.RoomType, available bool) *domain.Room {
	t.Helper()
	r := &domain.Room{
		ID:            uuid.New().String(),
		HostelID:      hostelID,
		RoomNumber:    number,
		Type:          typ,
		Beds:          2,
		MaxGuests:     2,
		PricePerNight: 40,
		Amenities:     []string{},
		Images:        []string{},
		IsAvailable:   available,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
	require.NoError(t, e.store.Rooms.Create(context.Background(), r))
	return r
}

func (e *testEnv) guest(t *testing.T, hostelID string) *domain.Guest {
	t.Helper()
	g := &domain.Guest{
		ID:        uuid.New().String(),
		HostelID:  hostelID,
		FirstName: "Ana",
		LastName:  "Silva",
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(t, e.store.Guests.Create(context.Background(), g))
	return g
}

func (e *testEnv) booking(t *testing.T, room *domain.Room, guest *domain.Guest, in, out time.Time, status domain.BookingStatus, createdAt time.Time) *domain.Booking {
	t.Helper()
	b := &domain.Booking{
		ID:             uuid.New().String(),
		HostelID:       room.HostelID,
		RoomID:         room.ID,
		GuestID:        guest.ID,
		CheckIn:        in,
		CheckOut:       out,
		NumberOfGuests: 1,
		TotalAmount:    80,
		Status:         status,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	require.NoError(t, e.store.Bookings.Create(context.Background(), b))
	return b
}

func (e *testEnv) payment(t *testing.T, hostelID string, amount float64, status domain.PaymentStatus, createdAt time.Time) *domain.Payment {
	t.Helper()
	p := &domain.Payment{
		ID:        uuid.New().String(),
		HostelID:  hostelID,
		Amount:    amount,
		Currency:  "USD",
		Method:    domain.PaymentMethodCash,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, e.store.Payments.Create(context.Background(), p))
	return p
}

func staffOf(hostelID string) domain.Identity {
	return domain.Identity{UserID: uuid.New().String(), HostelID: hostelID, Role: domain.RoleStaff}
}

func adminOf(hostelID string) domain.Identity {
	return domain.Identity{UserID: uuid.New().String(), HostelID: hostelID, Role: domain.RoleAdmin}
}

func superAdmin() domain.Identity {
	return domain.Identity{UserID: uuid.New().String(), Role: domain.RoleSuperAdmin}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
