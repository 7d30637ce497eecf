package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/internal/export"
	"github.com/prohmpiriya/hostel-saas/internal/service"
	"github.com/prohmpiriya/hostel-saas/pkg/middleware"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
	"github.com/prohmpiriya/hostel-saas/pkg/telemetry"
)

// HostelHandler handles hostel HTTP requests
type HostelHandler struct {
	hostelService service.HostelService
	guard         *service.AccessGuard
}

// NewHostelHandler creates a new hostel handler
func NewHostelHandler(hostelService service.HostelService, guard *service.AccessGuard) *HostelHandler {
	return &HostelHandler{
		hostelService: hostelService,
		guard:         guard,
	}
}

// List handles listing hostels with pagination
// GET /api/hostels
func (h *HostelHandler) List(c *gin.Context) {
	var query dto.ListHostelsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.hostelService.List(c.Request.Context(), identityFrom(c), &query)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(result))
}

// MyHostel handles the dashboard lookup of the caller's hostel
// GET /api/hostels/my-hostel
func (h *HostelHandler) MyHostel(c *gin.Context) {
	result, err := h.hostelService.MyHostel(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(result))
}

// GetByID handles getting a hostel by ID
// GET /api/hostels/:id
func (h *HostelHandler) GetByID(c *gin.Context) {
	result, err := h.hostelService.Get(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(dto.HostelEnvelope{Hostel: *result}))
}

// Stats handles the analytics view of a hostel
// GET /api/hostels/:id/stats
func (h *HostelHandler) Stats(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.hostel.stats")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(telemetry.HostelIDAttr(id))

	result, err := h.hostelService.Stats(ctx, identityFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(result))
}

// ExportStats streams the stats snapshot as a spreadsheet
// GET /api/hostels/:id/stats/export
func (h *HostelHandler) ExportStats(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.hostel.stats_export")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	hostel, snap, err := h.hostelService.StatsSnapshot(ctx, identityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	body, err := export.StatsWorkbook(hostel, snap)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(hostel, snap)))
	c.Data(http.StatusOK, export.ContentType, body)
}

// Create handles hostel creation
// POST /api/hostels
func (h *HostelHandler) Create(c *gin.Context) {
	var req dto.CreateHostelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.hostelService.Create(c.Request.Context(), identityFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditResourceID(c, result.ID)
	middleware.SetAuditHostelID(c, result.ID)
	respond(c, http.StatusCreated, response.Success(dto.HostelEnvelope{Hostel: *result}))
}

// Update handles partial hostel updates
// PUT /api/hostels/:id
func (h *HostelHandler) Update(c *gin.Context) {
	id := c.Param("id")
	identity := identityFrom(c)

	// Tenant check comes before the body so a foreign hostel never leaks validation detail
	if _, err := h.guard.RequireHostel(c.Request.Context(), identity, id); err != nil {
		respondError(c, err)
		return
	}

	var req dto.UpdateHostelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.hostelService.Update(c.Request.Context(), identity, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditHostelID(c, result.ID)
	respond(c, http.StatusOK, response.Success(dto.HostelEnvelope{Hostel: *result}))
}

// UpdateStatus handles activating or suspending a hostel
// PATCH /api/hostels/:id/status
func (h *HostelHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateHostelStatusRequest
	// decoding "yes" into *bool leaves a non-nil false behind, so drop it
	if err := c.ShouldBindJSON(&req); err != nil {
		req.IsActive = nil
	}

	result, err := h.hostelService.UpdateStatus(c.Request.Context(), identityFrom(c), c.Param("id"), req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditHostelID(c, result.ID)
	respond(c, http.StatusOK, response.Success(dto.HostelEnvelope{Hostel: *result}))
}

// Delete handles soft deleting a hostel
// DELETE /api/hostels/:id
func (h *HostelHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.hostelService.Delete(c.Request.Context(), identityFrom(c), id); err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditHostelID(c, id)
	respond(c, http.StatusOK, response.Success(gin.H{"message": "Hostel deleted successfully"}))
}
