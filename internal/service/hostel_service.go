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

// HostelService defines the interface for hostel management and reporting
type HostelService interface {
	// List retrieves hostels with pagination; super admins only
	List(ctx context.Context, identity domain.Identity, query *dto.ListHostelsQuery) (*dto.ListHostelsResponse, error)
	// Get retrieves one hostel with related-record counts
	Get(ctx context.Context, identity domain.Identity, hostelID string) (*dto.HostelResponse, error)
	// MyHostel returns the caller's own hostel with dashboard stats
	MyHostel(ctx context.Context, identity domain.Identity) (*dto.MyHostelResponse, error)
	// Stats returns the analytics view of a hostel
	Stats(ctx context.Context, identity domain.Identity, hostelID string) (*dto.HostelStatsResponse, error)
	// StatsSnapshot returns the hostel and its full stats snapshot
	StatsSnapshot(ctx context.Context, identity domain.Identity, hostelID string) (*domain.Hostel, *domain.StatsSnapshot, error)
	// Create creates a hostel; super admins only
	Create(ctx context.Context, identity domain.Identity, req *dto.CreateHostelRequest) (*dto.HostelResponse, error)
	// Update applies a partial update
	Update(ctx context.Context, identity domain.Identity, hostelID string, req *dto.UpdateHostelRequest) (*dto.HostelResponse, error)
	// UpdateStatus activates or suspends a hostel; super admins only
	UpdateStatus(ctx context.Context, identity domain.Identity, hostelID string, isActive *bool) (*dto.HostelResponse, error)
	// Delete soft deletes a hostel; super admins only
	Delete(ctx context.Context, identity domain.Identity, hostelID string) error
}

type hostelService struct {
	hostels  repository.HostelRepository
	stats    StatsService
	guard    *AccessGuard
	notifier *ChangeNotifier
	clock    Clock
}

// NewHostelService creates a new HostelService
func NewHostelService(
	hostels repository.HostelRepository,
	stats StatsService,
	guard *AccessGuard,
	notifier *ChangeNotifier,
	clock Clock,
) HostelService {
	if clock == nil {
		clock = SystemClock{}
	}
	if notifier == nil {
		notifier = NewChangeNotifier(nil, nil, clock, nil)
	}
	return &hostelService{
		hostels:  hostels,
		stats:    stats,
		guard:    guard,
		notifier: notifier,
		clock:    clock,
	}
}

// List retrieves hostels with pagination; super admins only
func (s *hostelService) List(ctx context.Context, identity domain.Identity, query *dto.ListHostelsQuery) (*dto.ListHostelsResponse, error) {
	if err := s.guard.AuthorizeListAll(ctx, identity); err != nil {
		return nil, err
	}

	// Set defaults
	query.SetDefaults()

	hostels, total, err := s.hostels.List(ctx, repository.HostelFilter{
		Page:   repository.Page{Page: query.Page, Limit: query.Limit},
		Search: query.Search,
	})
	if err != nil {
		return nil, err
	}

	items := make([]dto.HostelResponse, 0, len(hostels))
	for _, h := range hostels {
		counts, err := s.hostels.Counts(ctx, h.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, dto.NewHostelResponse(h, counts))
	}

	return &dto.ListHostelsResponse{
		Hostels:    items,
		Pagination: response.NewPagination(query.Page, query.Limit, total),
	}, nil
}

// Get retrieves one hostel with related-record counts
func (s *hostelService) Get(ctx context.Context, identity domain.Identity, hostelID string) (*dto.HostelResponse, error) {
	hostel, err := s.guard.RequireHostel(ctx, identity, hostelID)
	if err != nil {
		return nil, err
	}

	counts, err := s.hostels.Counts(ctx, hostel.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewHostelResponse(hostel, counts)
	return &resp, nil
}

// MyHostel returns the caller's own hostel with dashboard stats
func (s *hostelService) MyHostel(ctx context.Context, identity domain.Identity) (*dto.MyHostelResponse, error) {
	if identity.HostelID == "" {
		return nil, ErrHostelNotFound
	}

	hostel, err := s.hostels.GetByID(ctx, identity.HostelID)
	if err != nil {
		return nil, err
	}
	if hostel == nil {
		return nil, ErrHostelNotFound
	}

	snap, err := s.stats.Snapshot(ctx, hostel.ID)
	if err != nil {
		return nil, err
	}

	return &dto.MyHostelResponse{
		Hostel: dto.NewHostelResponse(hostel, nil),
		Stats:  dto.NewMyHostelStats(snap),
	}, nil
}

// Stats returns the analytics view of a hostel
func (s *hostelService) Stats(ctx context.Context, identity domain.Identity, hostelID string) (*dto.HostelStatsResponse, error) {
	_, snap, err := s.StatsSnapshot(ctx, identity, hostelID)
	if err != nil {
		return nil, err
	}
	return &dto.HostelStatsResponse{Stats: dto.NewHostelStats(snap)}, nil
}

// StatsSnapshot returns the hostel and its full stats snapshot
func (s *hostelService) StatsSnapshot(ctx context.Context, identity domain.Identity, hostelID string) (*domain.Hostel, *domain.StatsSnapshot, error) {
	hostel, err := s.guard.RequireHostel(ctx, identity, hostelID)
	if err != nil {
		return nil, nil, err
	}

	snap, err := s.stats.Snapshot(ctx, hostel.ID)
	if err != nil {
		return nil, nil, err
	}
	return hostel, snap, nil
}

// Create creates a hostel; super admins only
func (s *hostelService) Create(ctx context.Context, identity domain.Identity, req *dto.CreateHostelRequest) (*dto.HostelResponse, error) {
	if err := s.guard.AuthorizeSuperAdmin(ctx, identity, "create hostels"); err != nil {
		return nil, err
	}

	if ok, msg := req.Validate(); !ok {
		return nil, invalid("slug", msg)
	}

	// Check if a live hostel already uses this slug
	taken, err := s.hostels.SlugTaken(ctx, req.Slug, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	plan := req.Plan
	if plan == "" {
		plan = domain.PlanFree
	}

	now := s.clock.Now().UTC()
	hostel := &domain.Hostel{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Slug:      req.Slug,
		Plan:      plan,
		IsActive:  true,
		Settings:  req.Settings.Apply(domain.HostelSettings{}),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.hostels.Create(ctx, hostel); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.notifier.changed(ctx, dto.TopicHostelChanged, &dto.EntityChangedEvent{
		Change:   dto.ChangeCreated,
		HostelID: hostel.ID,
		EntityID: hostel.ID,
		ActorID:  identity.UserID,
		Entity:   hostel,
	})

	resp := dto.NewHostelResponse(hostel, nil)
	return &resp, nil
}

// Update applies a partial update. Checks run in a fixed order: existence,
// tenant access, restricted fields, validation, slug uniqueness.
func (s *hostelService) Update(ctx context.Context, identity domain.Identity, hostelID string, req *dto.UpdateHostelRequest) (*dto.HostelResponse, error) {
	hostel, err := s.guard.RequireHostel(ctx, identity, hostelID)
	if err != nil {
		return nil, err
	}

	if req.TouchesRestrictedFields() {
		if err := s.guard.AuthorizeSlugChange(ctx, identity); err != nil {
			return nil, err
		}
	}

	if ok, msg := req.Validate(); !ok {
		return nil, invalid("", msg)
	}

	if req.Slug != nil && *req.Slug != hostel.Slug {
		taken, err := s.hostels.SlugTaken(ctx, *req.Slug, hostel.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
		hostel.Slug = *req.Slug
	}

	// Update fields if provided
	if req.Name != nil {
		hostel.Name = *req.Name
	}
	if req.Plan != nil {
		hostel.Plan = *req.Plan
	}
	if req.IsActive != nil {
		hostel.IsActive = *req.IsActive
	}
	if req.Settings != nil {
		hostel.Settings = req.Settings.Apply(hostel.Settings)
	}
	hostel.UpdatedAt = s.clock.Now().UTC()

	if err := s.hostels.Update(ctx, hostel); err != nil {
		return nil, s.writeError(err)
	}

	s.notifier.changed(ctx, dto.TopicHostelChanged, &dto.EntityChangedEvent{
		Change:   dto.ChangeUpdated,
		HostelID: hostel.ID,
		EntityID: hostel.ID,
		ActorID:  identity.UserID,
		Entity:   hostel,
	})

	resp := dto.NewHostelResponse(hostel, nil)
	return &resp, nil
}

// UpdateStatus activates or suspends a hostel; super admins only
func (s *hostelService) UpdateStatus(ctx context.Context, identity domain.Identity, hostelID string, isActive *bool) (*dto.HostelResponse, error) {
	hostel, err := s.load(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AuthorizeSuperAdmin(ctx, identity, "change a hostel's status"); err != nil {
		return nil, err
	}
	if isActive == nil {
		return nil, invalid("isActive", "isActive must be a boolean")
	}

	from := hostel.IsActive
	hostel.IsActive = *isActive
	hostel.UpdatedAt = s.clock.Now().UTC()
	if err := s.hostels.Update(ctx, hostel); err != nil {
		return nil, s.writeError(err)
	}

	s.notifier.changed(ctx, dto.TopicHostelChanged, &dto.EntityChangedEvent{
		Change:     dto.ChangeStatusChanged,
		HostelID:   hostel.ID,
		EntityID:   hostel.ID,
		ActorID:    identity.UserID,
		FromStatus: activeLabel(from),
		ToStatus:   activeLabel(hostel.IsActive),
	})

	resp := dto.NewHostelResponse(hostel, nil)
	return &resp, nil
}

// Delete soft deletes a hostel; super admins only
func (s *hostelService) Delete(ctx context.Context, identity domain.Identity, hostelID string) error {
	// Check if hostel exists
	hostel, err := s.load(ctx, hostelID)
	if err != nil {
		return err
	}
	if err := s.guard.AuthorizeSuperAdmin(ctx, identity, "delete hostels"); err != nil {
		return err
	}

	if err := s.hostels.SoftDelete(ctx, hostel.ID, s.clock.Now().UTC()); err != nil {
		return s.writeError(err)
	}

	s.notifier.changed(ctx, dto.TopicHostelChanged, &dto.EntityChangedEvent{
		Change:   dto.ChangeDeleted,
		HostelID: hostel.ID,
		EntityID: hostel.ID,
		ActorID:  identity.UserID,
	})
	return nil
}

func (s *hostelService) load(ctx context.Context, hostelID string) (*domain.Hostel, error) {
	hostel, err := s.hostels.GetByID(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	if hostel == nil {
		return nil, ErrHostelNotFound
	}
	return hostel, nil
}

func (s *hostelService) writeError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrHostelNotFound
	}
	return mapRepositoryError(err)
}

func activeLabel(active bool) string {
	if active {
		return "ACTIVE"
	}
	return "INACTIVE"
}
