package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/hostel-saas/internal/repository"
	"github.com/prohmpiriya/hostel-saas/pkg/logger"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// HealthChecker is satisfied by the postgres and redis wrappers
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves liveness, readiness and the database smoke test
type HealthHandler struct {
	hostels  repository.HostelRepository
	checkers map[string]HealthChecker
	version  string
	timeout  time.Duration
}

// NewHealthHandler creates a health handler. Nil checkers are skipped, so the
// in-memory deployment reports ready without a database.
func NewHealthHandler(hostels repository.HostelRepository, version string, checkers map[string]HealthChecker) *HealthHandler {
	active := make(map[string]HealthChecker, len(checkers))
	for name, hc := range checkers {
		if hc != nil {
			active[name] = hc
		}
	}
	return &HealthHandler{
		hostels:  hostels,
		checkers: active,
		version:  version,
		timeout:  3 * time.Second,
	}
}

func timestamp() string { return time.Now().UTC().Format(time.RFC3339) }

// APIHealth handles GET /api/health
func (h *HealthHandler) APIHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "Hostel SaaS API is running",
		"timestamp": timestamp(),
	})
}

// DBTest handles GET /api/db-test
func (h *HealthHandler) DBTest(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if db, ok := h.checkers["postgres"]; ok {
		if err := db.HealthCheck(ctx); err != nil {
			h.dbFailed(c, err)
			return
		}
	}

	count, err := h.hostels.CountAll(ctx)
	if err != nil {
		h.dbFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "Database connected successfully",
		"database":    "PostgreSQL",
		"hostelCount": count,
		"timestamp":   timestamp(),
	})
}

func (h *HealthHandler) dbFailed(c *gin.Context, err error) {
	logger.Get().ErrorContext(c.Request.Context(), "database connection test failed", zap.Error(err))
	respond(c, http.StatusInternalServerError, response.InternalError("Database connection failed"))
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": h.version,
	})
}

// Ready handles GET /ready and pings every configured dependency
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks := make(map[string]string, len(h.checkers))
	ready := true
	for name, hc := range h.checkers {
		if err := hc.HealthCheck(ctx); err != nil {
			logger.Get().WarnContext(ctx, "readiness check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = "unavailable"
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
