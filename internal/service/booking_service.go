package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/internal/repository"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// BookingService defines the interface for reservations
type BookingService interface {
	List(ctx context.Context, identity domain.Identity, query *dto.ListBookingsQuery) (*dto.ListBookingsResponse, error)
	Get(ctx context.Context, identity domain.Identity, id string) (*domain.Booking, error)
	Create(ctx context.Context, identity domain.Identity, req *dto.CreateBookingRequest) (*domain.Booking, error)
	Update(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateBookingRequest) (*domain.Booking, error)
	// UpdateStatus moves a booking along its lifecycle
	UpdateStatus(ctx context.Context, identity domain.Identity, id string, status domain.BookingStatus) (*domain.Booking, error)
	// Delete removes a booking; its payments stay on the ledger unlinked
	Delete(ctx context.Context, identity domain.Identity, id string) error
}

type bookingService struct {
	bookings repository.BookingRepository
	rooms    repository.RoomRepository
	guests   repository.GuestRepository
	guard    *AccessGuard
	notifier *ChangeNotifier
	clock    Clock
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookings repository.BookingRepository,
	rooms repository.RoomRepository,
	guests repository.GuestRepository,
	guard *AccessGuard,
	notifier *ChangeNotifier,
	clock Clock,
) BookingService {
	if clock == nil {
		clock = SystemClock{}
	}
	if notifier == nil {
		notifier = NewChangeNotifier(nil, nil, clock, nil)
	}
	return &bookingService{
		bookings: bookings,
		rooms:    rooms,
		guests:   guests,
		guard:    guard,
		notifier: notifier,
		clock:    clock,
	}
}

func (s *bookingService) List(ctx context.Context, identity domain.Identity, query *dto.ListBookingsQuery) (*dto.ListBookingsResponse, error) {
	hostel, err := s.guard.ResolveHostel(ctx, identity, query.HostelID)
	if err != nil {
		return nil, err
	}

	from, to, err := query.Range()
	if err != nil {
		return nil, invalid("from", "from and to must be dates (YYYY-MM-DD or RFC3339)")
	}

	query.SetDefaults()
	bookings, total, err := s.bookings.List(ctx, repository.BookingFilter{
		Page:     repository.Page{Page: query.Page, Limit: query.Limit},
		HostelID: hostel.ID,
		Status:   query.Status,
		RoomID:   query.RoomID,
		GuestID:  query.GuestID,
		From:     from,
		To:       to,
	})
	if err != nil {
		return nil, err
	}

	return &dto.ListBookingsResponse{
		Bookings:   bookings,
		Pagination: response.NewPagination(query.Page, query.Limit, total),
	}, nil
}

func (s *bookingService) Get(ctx context.Context, identity domain.Identity, id string) (*domain.Booking, error) {
	return s.load(ctx, identity, id)
}

func (s *bookingService) Create(ctx context.Context, identity domain.Identity, req *dto.CreateBookingRequest) (*domain.Booking, error) {
	hostel, err := s.guard.ResolveHostel(ctx, identity, req.HostelID)
	if err != nil {
		return nil, err
	}

	checkIn, checkOut, err := req.Dates()
	if err != nil {
		return nil, dateError(err)
	}

	room, err := s.roomIn(ctx, hostel.ID, req.RoomID)
	if err != nil {
		return nil, err
	}
	guest, err := s.guests.GetByID(ctx, req.GuestID)
	if err != nil {
		return nil, err
	}
	if guest == nil || guest.HostelID != hostel.ID {
		return nil, invalid("guestId", "Guest not found in this hostel")
	}
	if req.NumberOfGuests > room.MaxGuests {
		return nil, invalid("numberOfGuests", fmt.Sprintf("Room %s holds at most %d guests", room.RoomNumber, room.MaxGuests))
	}

	status := req.Status
	if status == "" {
		status = domain.BookingStatusPending
	}

	now := s.clock.Now().UTC()
	booking := &domain.Booking{
		ID:             uuid.New().String(),
		HostelID:       hostel.ID,
		RoomID:         room.ID,
		GuestID:        guest.ID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		NumberOfGuests: req.NumberOfGuests,
		Status:         status,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.TotalAmount != nil {
		booking.TotalAmount = *req.TotalAmount
	} else {
		booking.TotalAmount = stayPrice(room, booking)
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.changed(ctx, identity, dto.ChangeCreated, booking, "", "")
	return booking, nil
}

func (s *bookingService) Update(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateBookingRequest) (*domain.Booking, error) {
	booking, err := s.load(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if ok, msg := req.Validate(); !ok {
		return nil, invalid("", msg)
	}

	reshapes := req.RoomID != nil || req.CheckIn != nil || req.CheckOut != nil || req.NumberOfGuests != nil
	if reshapes && booking.Status.IsTerminal() {
		return nil, invalid("status", fmt.Sprintf("A %s booking can no longer be changed", booking.Status))
	}

	room, err := s.roomIn(ctx, booking.HostelID, booking.RoomID)
	if req.RoomID != nil {
		room, err = s.roomIn(ctx, booking.HostelID, *req.RoomID)
	}
	if err != nil {
		return nil, err
	}

	checkIn, checkOut, err := req.ApplyDates(booking.CheckIn, booking.CheckOut)
	if err != nil {
		return nil, dateError(err)
	}

	guests := booking.NumberOfGuests
	if req.NumberOfGuests != nil {
		guests = *req.NumberOfGuests
	}
	if guests > room.MaxGuests {
		return nil, invalid("numberOfGuests", fmt.Sprintf("Room %s holds at most %d guests", room.RoomNumber, room.MaxGuests))
	}

	repriced := booking.RoomID != room.ID || !booking.CheckIn.Equal(checkIn) || !booking.CheckOut.Equal(checkOut)
	booking.RoomID = room.ID
	booking.CheckIn = checkIn
	booking.CheckOut = checkOut
	booking.NumberOfGuests = guests
	if req.Notes != nil {
		booking.Notes = *req.Notes
	}
	switch {
	case req.TotalAmount != nil:
		booking.TotalAmount = *req.TotalAmount
	case repriced:
		booking.TotalAmount = stayPrice(room, booking)
	}
	booking.UpdatedAt = s.clock.Now().UTC()

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, s.writeError(err)
	}

	s.changed(ctx, identity, dto.ChangeUpdated, booking, "", "")
	return booking, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, identity domain.Identity, id string, status domain.BookingStatus) (*domain.Booking, error) {
	booking, err := s.load(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, invalid("status", "Unknown booking status")
	}

	from := booking.Status
	if err := booking.TransitionTo(status, s.clock.Now().UTC()); err != nil {
		return nil, fmt.Errorf("%w: booking cannot move from %s to %s", err, from, status)
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, s.writeError(err)
	}

	s.changed(ctx, identity, dto.ChangeStatusChanged, booking, string(from), string(status))
	return booking, nil
}

func (s *bookingService) Delete(ctx context.Context, identity domain.Identity, id string) error {
	booking, err := s.load(ctx, identity, id)
	if err != nil {
		return err
	}

	if err := s.bookings.Delete(ctx, booking.ID); err != nil {
		return s.writeError(err)
	}

	s.notifier.changed(ctx, dto.TopicBookingChanged, &dto.EntityChangedEvent{
		Change:   dto.ChangeDeleted,
		HostelID: booking.HostelID,
		EntityID: booking.ID,
		ActorID:  identity.UserID,
	})
	return nil
}

func (s *bookingService) load(ctx context.Context, identity domain.Identity, id string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if err := s.guard.Authorize(ctx, identity, booking.HostelID); err != nil {
		return nil, err
	}
	return booking, nil
}

// roomIn loads a room that must belong to hostelID
func (s *bookingService) roomIn(ctx context.Context, hostelID, roomID string) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil || room.HostelID != hostelID {
		return nil, invalid("roomId", "Room not found in this hostel")
	}
	return room, nil
}

func (s *bookingService) changed(ctx context.Context, identity domain.Identity, change dto.ChangeType, booking *domain.Booking, from, to string) {
	s.notifier.changed(ctx, dto.TopicBookingChanged, &dto.EntityChangedEvent{
		Change:     change,
		HostelID:   booking.HostelID,
		EntityID:   booking.ID,
		ActorID:    identity.UserID,
		FromStatus: from,
		ToStatus:   to,
		Entity:     booking,
	})
}

func (s *bookingService) writeError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrBookingNotFound
	}
	return err
}

func stayPrice(room *domain.Room, booking *domain.Booking) float64 {
	return round2(float64(booking.Nights()) * room.PricePerNight)
}

func dateError(err error) error {
	if errors.Is(err, dto.ErrCheckOutBeforeCheckIn) {
		return invalid("checkOut", "Check-out must be after check-in")
	}
	return invalid("checkIn", "checkIn and checkOut must be dates (YYYY-MM-DD or RFC3339)")
}
