package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/internal/repository"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// RoomService defines the interface for room management
type RoomService interface {
	List(ctx context.Context, identity domain.Identity, query *dto.ListRoomsQuery) (*dto.ListRoomsResponse, error)
	Get(ctx context.Context, identity domain.Identity, id string) (*domain.Room, error)
	Create(ctx context.Context, identity domain.Identity, req *dto.CreateRoomRequest) (*domain.Room, error)
	Update(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateRoomRequest) (*domain.Room, error)
	UpdateStatus(ctx context.Context, identity domain.Identity, id string, isAvailable *bool) (*domain.Room, error)
	// Delete removes a room that no booking references
	Delete(ctx context.Context, identity domain.Identity, id string) error
}

type roomService struct {
	rooms    repository.RoomRepository
	guard    *AccessGuard
	notifier *ChangeNotifier
	clock    Clock
}

// NewRoomService creates a new RoomService
func NewRoomService(rooms repository.RoomRepository, guard *AccessGuard, notifier *ChangeNotifier, clock Clock) RoomService {
	if clock == nil {
		clock = SystemClock{}
	}
	if notifier == nil {
		notifier = NewChangeNotifier(nil, nil, clock, nil)
	}
	return &roomService{rooms: rooms, guard: guard, notifier: notifier, clock: clock}
}

func (s *roomService) List(ctx context.Context, identity domain.Identity, query *dto.ListRoomsQuery) (*dto.ListRoomsResponse, error) {
	hostel, err := s.guard.ResolveHostel(ctx, identity, query.HostelID)
	if err != nil {
		return nil, err
	}

	query.SetDefaults()
	rooms, total, err := s.rooms.List(ctx, repository.RoomFilter{
		Page:        repository.Page{Page: query.Page, Limit: query.Limit},
		HostelID:    hostel.ID,
		Search:      query.Search,
		Type:        query.Type,
		Floor:       query.Floor,
		IsAvailable: query.IsAvailable,
	})
	if err != nil {
		return nil, err
	}

	return &dto.ListRoomsResponse{
		Rooms:      rooms,
		Pagination: response.NewPagination(query.Page, query.Limit, total),
	}, nil
}

func (s *roomService) Get(ctx context.Context, identity domain.Identity, id string) (*domain.Room, error) {
	return s.load(ctx, identity, id)
}

func (s *roomService) Create(ctx context.Context, identity domain.Identity, req *dto.CreateRoomRequest) (*domain.Room, error) {
	hostel, err := s.guard.ResolveHostel(ctx, identity, req.HostelID)
	if err != nil {
		return nil, err
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	now := s.clock.Now().UTC()
	room := &domain.Room{
		ID:                uuid.New().String(),
		HostelID:          hostel.ID,
		RoomNumber:        req.RoomNumber,
		Name:              req.Name,
		Type:              req.Type,
		Beds:              req.Beds,
		MaxGuests:         req.MaxGuests,
		PricePerNight:     req.PricePerNight,
		Floor:             req.Floor,
		Size:              req.Size,
		Description:       req.Description,
		Amenities:         orEmpty(req.Amenities),
		Images:            orEmpty(req.Images),
		HousekeepingNotes: req.HousekeepingNotes,
		IsAvailable:       isAvailable,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.changed(ctx, identity, dto.ChangeCreated, room)
	return room, nil
}

func (s *roomService) Update(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateRoomRequest) (*domain.Room, error) {
	room, err := s.load(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if ok, msg := req.Validate(); !ok {
		return nil, invalid("", msg)
	}

	// Update fields if provided
	if req.RoomNumber != nil {
		room.RoomNumber = *req.RoomNumber
	}
	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Type != nil {
		room.Type = *req.Type
	}
	if req.Beds != nil {
		room.Beds = *req.Beds
	}
	if req.MaxGuests != nil {
		room.MaxGuests = *req.MaxGuests
	}
	if req.PricePerNight != nil {
		room.PricePerNight = *req.PricePerNight
	}
	if req.Floor != nil {
		room.Floor = req.Floor
	}
	if req.Size != nil {
		room.Size = req.Size
	}
	if req.Description != nil {
		room.Description = *req.Description
	}
	if req.Amenities != nil {
		room.Amenities = orEmpty(*req.Amenities)
	}
	if req.Images != nil {
		room.Images = orEmpty(*req.Images)
	}
	if req.HousekeepingNotes != nil {
		room.HousekeepingNotes = *req.HousekeepingNotes
	}
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}
	room.UpdatedAt = s.clock.Now().UTC()

	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, s.writeError(err)
	}

	s.changed(ctx, identity, dto.ChangeUpdated, room)
	return room, nil
}

func (s *roomService) UpdateStatus(ctx context.Context, identity domain.Identity, id string, isAvailable *bool) (*domain.Room, error) {
	room, err := s.load(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if isAvailable == nil {
		return nil, invalid("isAvailable", "isAvailable must be a boolean")
	}

	room.IsAvailable = *isAvailable
	room.UpdatedAt = s.clock.Now().UTC()
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, s.writeError(err)
	}

	s.changed(ctx, identity, dto.ChangeStatusChanged, room)
	return room, nil
}

func (s *roomService) Delete(ctx context.Context, identity domain.Identity, id string) error {
	room, err := s.load(ctx, identity, id)
	if err != nil {
		return err
	}

	inUse, err := s.rooms.HasBookings(ctx, room.ID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrHasBookings
	}

	if err := s.rooms.Delete(ctx, room.ID); err != nil {
		return s.writeError(err)
	}

	s.notifier.changed(ctx, dto.TopicRoomChanged, &dto.EntityChangedEvent{
		Change:   dto.ChangeDeleted,
		HostelID: room.HostelID,
		EntityID: room.ID,
		ActorID:  identity.UserID,
	})
	return nil
}

// load fetches a room (404) and then checks tenant access on its hostel (403)
func (s *roomService) load(ctx context.Context, identity domain.Identity, id string) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if err := s.guard.Authorize(ctx, identity, room.HostelID); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *roomService) changed(ctx context.Context, identity domain.Identity, change dto.ChangeType, room *domain.Room) {
	s.notifier.changed(ctx, dto.TopicRoomChanged, &dto.EntityChangedEvent{
		Change:   change,
		HostelID: room.HostelID,
		EntityID: room.ID,
		ActorID:  identity.UserID,
		Entity:   room,
	})
}

func (s *roomService) writeError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRoomNotFound
	}
	return mapRepositoryError(err)
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
