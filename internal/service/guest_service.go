package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/internal/repository"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// GuestService defines the interface for guest records
type GuestService interface {
	List(ctx context.Context, identity domain.Identity, query *dto.ListGuestsQuery) (*dto.ListGuestsResponse, error)
	Get(ctx context.Context, identity domain.Identity, id string) (*domain.Guest, error)
	Create(ctx context.Context, identity domain.Identity, req *dto.CreateGuestRequest) (*domain.Guest, error)
	Update(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateGuestRequest) (*domain.Guest, error)
	// Delete removes a guest that no booking references
	Delete(ctx context.Context, identity domain.Identity, id string) error
}

type guestService struct {
	guests   repository.GuestRepository
	guard    *AccessGuard
	notifier *ChangeNotifier
	clock    Clock
}

// NewGuestService creates a new GuestService
func NewGuestService(guests repository.GuestRepository, guard *AccessGuard, notifier *ChangeNotifier, clock Clock) GuestService {
	if clock == nil {
		clock = SystemClock{}
	}
	if notifier == nil {
		notifier = NewChangeNotifier(nil, nil, clock, nil)
	}
	return &guestService{guests: guests, guard: guard, notifier: notifier, clock: clock}
}

func (s *guestService) List(ctx context.Context, identity domain.Identity, query *dto.ListGuestsQuery) (*dto.ListGuestsResponse, error) {
	hostel, err := s.guard.ResolveHostel(ctx, identity, query.HostelID)
	if err != nil {
		return nil, err
	}

	query.SetDefaults()
	guests, total, err := s.guests.List(ctx, repository.GuestFilter{
		Page:     repository.Page{Page: query.Page, Limit: query.Limit},
		HostelID: hostel.ID,
		Search:   query.Search,
	})
	if err != nil {
		return nil, err
	}

	return &dto.ListGuestsResponse{
		Guests:     guests,
		Pagination: response.NewPagination(query.Page, query.Limit, total),
	}, nil
}

func (s *guestService) Get(ctx context.Context, identity domain.Identity, id string) (*domain.Guest, error) {
	return s.load(ctx, identity, id)
}

func (s *guestService) Create(ctx context.Context, identity domain.Identity, req *dto.CreateGuestRequest) (*domain.Guest, error) {
	hostel, err := s.guard.ResolveHostel(ctx, identity, req.HostelID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	guest := &domain.Guest{
		ID:             uuid.New().String(),
		HostelID:       hostel.ID,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          req.Phone,
		Nationality:    req.Nationality,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.guests.Create(ctx, guest); err != nil {
		return nil, err
	}

	s.changed(ctx, identity, dto.ChangeCreated, guest)
	return guest, nil
}

func (s *guestService) Update(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateGuestRequest) (*domain.Guest, error) {
	guest, err := s.load(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if ok, msg := req.Validate(); !ok {
		return nil, invalid("", msg)
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&guest.FirstName, req.FirstName)
	set(&guest.LastName, req.LastName)
	set(&guest.Email, req.Email)
	set(&guest.Phone, req.Phone)
	set(&guest.Nationality, req.Nationality)
	set(&guest.DocumentType, req.DocumentType)
	set(&guest.DocumentNumber, req.DocumentNumber)
	set(&guest.Notes, req.Notes)
	guest.Email = strings.ToLower(guest.Email)
	guest.UpdatedAt = s.clock.Now().UTC()

	if err := s.guests.Update(ctx, guest); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}

	s.changed(ctx, identity, dto.ChangeUpdated, guest)
	return guest, nil
}

func (s *guestService) Delete(ctx context.Context, identity domain.Identity, id string) error {
	guest, err := s.load(ctx, identity, id)
	if err != nil {
		return err
	}

	inUse, err := s.guests.HasBookings(ctx, guest.ID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrHasBookings
	}

	if err := s.guests.Delete(ctx, guest.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGuestNotFound
		}
		return err
	}

	s.notifier.changed(ctx, dto.TopicGuestChanged, &dto.EntityChangedEvent{
		Change:   dto.ChangeDeleted,
		HostelID: guest.HostelID,
		EntityID: guest.ID,
		ActorID:  identity.UserID,
	})
	return nil
}

func (s *guestService) load(ctx context.Context, identity domain.Identity, id string) (*domain.Guest, error) {
	guest, err := s.guests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if guest == nil {
		return nil, ErrGuestNotFound
	}
	if err := s.guard.Authorize(ctx, identity, guest.HostelID); err != nil {
		return nil, err
	}
	return guest, nil
}

func (s *guestService) changed(ctx context.Context, identity domain.Identity, change dto.ChangeType, guest *domain.Guest) {
	s.notifier.changed(ctx, dto.TopicGuestChanged, &dto.EntityChangedEvent{
		Change:   change,
		HostelID: guest.HostelID,
		EntityID: guest.ID,
		ActorID:  identity.UserID,
		Entity:   guest,
	})
}
