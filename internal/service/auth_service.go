package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/internal/repository"
	"github.com/prohmpiriya/hostel-saas/pkg/logger"
	"github.com/prohmpiriya/hostel-saas/pkg/middleware"
	"github.com/prohmpiriya/hostel-saas/pkg/telemetry"
)

// DefaultBcryptCost is the work factor for stored password hashes
const DefaultBcryptCost = 10

// AuthConfig holds token and hashing settings
type AuthConfig struct {
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthService defines the interface for registration and login
type AuthService interface {
	// Register creates a hostel together with its ADMIN user and signs them in
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	// Login checks credentials and issues a token
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// Me returns the user behind a token
	Me(ctx context.Context, userID string) (*dto.MeResponse, error)
	// EnsureSuperAdmin creates the platform account when it does not exist yet
	EnsureSuperAdmin(ctx context.Context, name, email, password string) (bool, error)
}

type authService struct {
	hostels  repository.HostelRepository
	users    repository.UserRepository
	notifier *ChangeNotifier
	clock    Clock
	cfg      AuthConfig
	log      *logger.Logger
	logins   *telemetry.Counter
}

// NewAuthService creates a new AuthService
func NewAuthService(
	hostels repository.HostelRepository,
	users repository.UserRepository,
	notifier *ChangeNotifier,
	clock Clock,
	cfg AuthConfig,
	log *logger.Logger,
) AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultBcryptCost
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 7 * 24 * time.Hour
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	if notifier == nil {
		notifier = NewChangeNotifier(nil, nil, clock, log)
	}
	return &authService{
		hostels:  hostels,
		users:    users,
		notifier: notifier,
		clock:    clock,
		cfg:      cfg,
		log:      log.Named("auth"),
		logins: telemetry.MustCounter(telemetry.MetricOpts{
			Name:        "auth_logins_total",
			Description: "Login attempts by outcome",
			Unit:        "1",
		}),
	}
}

// Register creates a hostel together with its ADMIN user and signs them in
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	req.Normalize()

	// Validate slug format
	if ok, msg := dto.ValidateSlug(req.HostelSlug); !ok {
		return nil, invalid("hostelSlug", msg)
	}

	// Uniqueness checks give friendly errors; the repository still enforces them under races
	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}
	taken, err := s.hostels.SlugTaken(ctx, req.HostelSlug, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	hostel := &domain.Hostel{
		ID:        uuid.New().String(),
		Name:      req.HostelName,
		Slug:      req.HostelSlug,
		Plan:      domain.PlanFree,
		IsActive:  true,
		Settings:  domain.HostelSettings{}.WithDefaults(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := &domain.User{
		ID:           uuid.New().String(),
		HostelID:     hostel.ID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.hostels.CreateWithOwner(ctx, hostel, user); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.log.InfoContext(ctx, "hostel registered",
		zap.String("hostel_id", hostel.ID),
		zap.String("user_id", user.ID),
	)
	s.notifier.registered(ctx, &dto.UserRegisteredEvent{
		UserID:   user.ID,
		HostelID: hostel.ID,
		Email:    user.Email,
	})

	return s.issue(user, hostel)
}

// Login checks credentials and issues a token
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	resp, err := s.login(ctx, req)
	outcome := "success"
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		outcome = "invalid_credentials"
	case errors.Is(err, ErrAccountDisabled), errors.Is(err, ErrHostelDisabled):
		outcome = "disabled"
	case err != nil:
		outcome = "error"
	}
	s.logins.Inc(ctx, telemetry.OutcomeAttr(outcome))
	return resp, err
}

func (s *authService) login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	var hostel *domain.Hostel
	if user.HostelID != "" {
		hostel, err = s.hostels.GetByID(ctx, user.HostelID)
		if err != nil {
			return nil, err
		}
		// A deleted hostel locks its staff out the same way a suspended one does
		if hostel == nil || !hostel.IsActive {
			return nil, ErrHostelDisabled
		}
	}

	return s.issue(user, hostel)
}

// Me returns the user behind a token
func (s *authService) Me(ctx context.Context, userID string) (*dto.MeResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	var hostel *domain.Hostel
	if user.HostelID != "" {
		if hostel, err = s.hostels.GetByID(ctx, user.HostelID); err != nil {
			return nil, err
		}
	}

	return &dto.MeResponse{
		User: dto.MeUser{
			UserResponse: dto.NewUserResponse(user),
			Hostel:       dto.NewHostelSummary(hostel),
		},
	}, nil
}

// EnsureSuperAdmin creates the platform account when it does not exist yet
func (s *authService) EnsureSuperAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		if existing.Role != domain.RoleSuperAdmin {
			s.log.Warn("super admin email belongs to a tenant user", zap.String("user_id", existing.ID))
		}
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return false, err
	}
	if name == "" {
		name = "Super Admin"
	}

	now := s.clock.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleSuperAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *authService) issue(user *domain.User, hostel *domain.Hostel) (*dto.AuthResponse, error) {
	token, expiresAt, err := middleware.GenerateToken(s.cfg.JWTSecret, s.cfg.Issuer, s.cfg.TokenTTL, middleware.Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Role:     string(user.Role),
		HostelID: user.HostelID,
	})
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		User:      dto.NewUserResponse(user),
		Hostel:    dto.NewHostelSummary(hostel),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// mapRepositoryError turns storage-level uniqueness failures into service errors
func mapRepositoryError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateSlug):
		return ErrSlugTaken
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrEmailTaken
	case errors.Is(err, repository.ErrDuplicateRoomNumber):
		return ErrRoomNumberTaken
	}
	return err
}
