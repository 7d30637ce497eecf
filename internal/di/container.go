package di

import (
	"time"

	"github.com/prohmpiriya/hostel-saas/internal/handler"
	"github.com/prohmpiriya/hostel-saas/internal/repository"
	"github.com/prohmpiriya/hostel-saas/internal/service"
	"github.com/prohmpiriya/hostel-saas/pkg/database"
	"github.com/prohmpiriya/hostel-saas/pkg/kafka"
	"github.com/prohmpiriya/hostel-saas/pkg/logger"
	pkgredis "github.com/prohmpiriya/hostel-saas/pkg/redis"
)

// Container holds all dependencies for the hostel API
type Container struct {
	// Infrastructure
	DB       *database.PostgresDB
	Redis    *pkgredis.Client
	Producer *kafka.Producer
	Log      *logger.Logger

	// Repositories
	Store *repository.Store

	// Cross-cutting
	Clock      service.Clock
	Guard      *service.AccessGuard
	StatsCache service.StatsCache
	Publisher  service.EventPublisher
	Notifier   *service.ChangeNotifier

	// Services
	AuthService    service.AuthService
	StatsService   service.StatsService
	HostelService  service.HostelService
	RoomService    service.RoomService
	GuestService   service.GuestService
	BookingService service.BookingService
	PaymentService service.PaymentService

	// Handlers
	HealthHandler  *handler.HealthHandler
	AuthHandler    *handler.AuthHandler
	HostelHandler  *handler.HostelHandler
	RoomHandler    *handler.RoomHandler
	GuestHandler   *handler.GuestHandler
	BookingHandler *handler.BookingHandler
	PaymentHandler *handler.PaymentHandler
}

// ContainerConfig contains configuration for building the container.
// DB, Redis and Producer are optional; Store is required.
type ContainerConfig struct {
	DB       *database.PostgresDB
	Redis    *pkgredis.Client
	Producer *kafka.Producer
	Store    *repository.Store
	Log      *logger.Logger

	// Clock defaults to the system clock
	Clock service.Clock
	// Publisher overrides the Kafka publisher, mainly for tests
	Publisher service.EventPublisher

	Auth          service.AuthConfig
	StatsCacheTTL time.Duration
	Version       string
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:       cfg.DB,
		Redis:    cfg.Redis,
		Producer: cfg.Producer,
		Log:      cfg.Log,
		Store:    cfg.Store,
		Clock:    cfg.Clock,
	}
	if c.Log == nil {
		c.Log = logger.NewNop()
	}
	if c.Clock == nil {
		c.Clock = service.SystemClock{}
	}

	// Initialize cross-cutting pieces
	c.Publisher = cfg.Publisher
	if c.Publisher == nil {
		if cfg.Producer != nil {
			c.Publisher = service.NewKafkaEventPublisher(cfg.Producer)
		} else {
			c.Publisher = service.NoopEventPublisher{}
		}
	}
	c.StatsCache = service.NewStatsCache(cfg.Redis, cfg.StatsCacheTTL, c.Log)
	c.Notifier = service.NewChangeNotifier(c.StatsCache, c.Publisher, c.Clock, c.Log)
	c.Guard = service.NewAccessGuard(c.Store.Hostels)

	// Initialize services
	c.AuthService = service.NewAuthService(c.Store.Hostels, c.Store.Users, c.Notifier, c.Clock, cfg.Auth, c.Log)
	c.StatsService = service.NewStatsService(c.Store.Stats, c.StatsCache, c.Clock, c.Log)
	c.HostelService = service.NewHostelService(c.Store.Hostels, c.StatsService, c.Guard, c.Notifier, c.Clock)
	c.RoomService = service.NewRoomService(c.Store.Rooms, c.Guard, c.Notifier, c.Clock)
	c.GuestService = service.NewGuestService(c.Store.Guests, c.Guard, c.Notifier, c.Clock)
	c.BookingService = service.NewBookingService(c.Store.Bookings, c.Store.Rooms, c.Store.Guests, c.Guard, c.Notifier, c.Clock)
	c.PaymentService = service.NewPaymentService(c.Store.Payments, c.Store.Bookings, c.Guard, c.Notifier, c.Clock)

	// Initialize handlers
	checkers := map[string]handler.HealthChecker{}
	if c.DB != nil {
		checkers["postgres"] = c.DB
	}
	if c.Redis != nil {
		checkers["redis"] = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(c.Store.Hostels, cfg.Version, checkers)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)
	c.HostelHandler = handler.NewHostelHandler(c.HostelService, c.Guard)
	c.RoomHandler = handler.NewRoomHandler(c.RoomService)
	c.GuestHandler = handler.NewGuestHandler(c.GuestService)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService)
	c.PaymentHandler = handler.NewPaymentHandler(c.PaymentService)

	return c
}

// Handlers returns the handler set for the router
func (c *Container) Handlers() *handler.Handlers {
	return &handler.Handlers{
		Health:  c.HealthHandler,
		Auth:    c.AuthHandler,
		Hostel:  c.HostelHandler,
		Room:    c.RoomHandler,
		Guest:   c.GuestHandler,
		Booking: c.BookingHandler,
		Payment: c.PaymentHandler,
	}
}
