package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/hostel-saas/pkg/logger"
	"github.com/prohmpiriya/hostel-saas/pkg/middleware"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// Handlers groups the HTTP handlers mounted by NewRouter
type Handlers struct {
	Health  *HealthHandler
	Auth    *AuthHandler
	Hostel  *HostelHandler
	Room    *RoomHandler
	Guest   *GuestHandler
	Booking *BookingHandler
	Payment *PaymentHandler
}

// RouterConfig carries the middleware settings. Nil optional parts are left out.
type RouterConfig struct {
	JWTSecret   string
	JWTIssuer   string
	CORSOrigins []string

	// RateLimit enables per-client limiting when non-nil
	RateLimit *middleware.RateLimitConfig
	Limiter   middleware.Limiter

	Audit   *middleware.AuditLogger
	Metrics *middleware.HTTPMetrics
	Log     *logger.Logger
}

// NewRouter builds the gin engine with the full middleware chain and all routes
func NewRouter(h *Handlers, cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Get()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(log.Named("http")))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig(cfg.CORSOrigins...)))
	r.Use(middleware.SecurityHeaders())
	if cfg.RateLimit != nil {
		rl := *cfg.RateLimit
		rl.SkipPaths = append(append([]string{}, rl.SkipPaths...), "/health", "/ready", "/metrics")
		if cfg.Limiter != nil {
			r.Use(middleware.RateLimiterWith(cfg.Limiter, rl))
		} else {
			r.Use(middleware.RateLimiter(rl))
		}
	}
	if cfg.Audit != nil {
		r.Use(middleware.AuditMiddleware(cfg.Audit))
	}

	// Probes
	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	if cfg.Metrics != nil {
		r.GET("/metrics", cfg.Metrics.Handler())
	}

	api := r.Group("/api")
	api.GET("/health", h.Health.APIHealth)
	api.GET("/db-test", h.Health.DBTest)

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.JWTMiddleware(&middleware.JWTConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
	}))

	protected.GET("/auth/me", h.Auth.Me)

	hostels := protected.Group("/hostels")
	{
		hostels.GET("", h.Hostel.List)
		hostels.POST("", h.Hostel.Create)
		hostels.GET("/my-hostel", h.Hostel.MyHostel)
		hostels.GET("/:id", h.Hostel.GetByID)
		hostels.PUT("/:id", h.Hostel.Update)
		hostels.PATCH("/:id/status", h.Hostel.UpdateStatus)
		hostels.DELETE("/:id", h.Hostel.Delete)
		hostels.GET("/:id/stats", h.Hostel.Stats)
		hostels.GET("/:id/stats/export", h.Hostel.ExportStats)
	}

	rooms := protected.Group("/rooms")
	{
		rooms.GET("", h.Room.List)
		rooms.POST("", h.Room.Create)
		rooms.GET("/:id", h.Room.GetByID)
		rooms.PUT("/:id", h.Room.Update)
		rooms.PATCH("/:id/status", h.Room.UpdateStatus)
		rooms.DELETE("/:id", h.Room.Delete)
	}

	guests := protected.Group("/guests")
	{
		guests.GET("", h.Guest.List)
		guests.POST("", h.Guest.Create)
		guests.GET("/:id", h.Guest.GetByID)
		guests.PUT("/:id", h.Guest.Update)
		guests.DELETE("/:id", h.Guest.Delete)
	}

	bookings := protected.Group("/bookings")
	{
		bookings.GET("", h.Booking.List)
		bookings.POST("", h.Booking.Create)
		bookings.GET("/:id", h.Booking.GetByID)
		bookings.PUT("/:id", h.Booking.Update)
		bookings.PATCH("/:id/status", h.Booking.UpdateStatus)
		bookings.DELETE("/:id", h.Booking.Delete)
	}

	payments := protected.Group("/payments")
	{
		payments.GET("", h.Payment.List)
		payments.POST("", h.Payment.Create)
		payments.GET("/:id", h.Payment.GetByID)
		payments.PUT("/:id", h.Payment.Update)
		payments.PATCH("/:id/status", h.Payment.UpdateStatus)
		payments.DELETE("/:id", h.Payment.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		respond(c, http.StatusNotFound, response.ErrorWithDetails(
			response.ErrCodeNotFound, "Route not found", map[string]string{"path": c.Request.URL.Path}))
	})

	return r
}
