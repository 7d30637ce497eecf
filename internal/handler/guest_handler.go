package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/internal/service"
	"github.com/prohmpiriya/hostel-saas/pkg/middleware"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// GuestHandler handles guest HTTP requests
type GuestHandler struct {
	guestService service.GuestService
}

// NewGuestHandler creates a new guest handler
func NewGuestHandler(guestService service.GuestService) *GuestHandler {
	return &GuestHandler{guestService: guestService}
}

// List handles GET /api/guests
func (h *GuestHandler) List(c *gin.Context) {
	var query dto.ListGuestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.guestService.List(c.Request.Context(), identityFrom(c), &query)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(result))
}

// GetByID handles GET /api/guests/:id
func (h *GuestHandler) GetByID(c *gin.Context) {
	guest, err := h.guestService.Get(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(dto.GuestEnvelope{Guest: guest}))
}

// Create handles POST /api/guests
func (h *GuestHandler) Create(c *gin.Context) {
	var req dto.CreateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	guest, err := h.guestService.Create(c.Request.Context(), identityFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditResourceID(c, guest.ID)
	middleware.SetAuditHostelID(c, guest.HostelID)
	respond(c, http.StatusCreated, response.Success(dto.GuestEnvelope{Guest: guest}))
}

// Update handles PUT /api/guests/:id
func (h *GuestHandler) Update(c *gin.Context) {
	var req dto.UpdateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	guest, err := h.guestService.Update(c.Request.Context(), identityFrom(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditHostelID(c, guest.HostelID)
	respond(c, http.StatusOK, response.Success(dto.GuestEnvelope{Guest: guest}))
}

// Delete handles DELETE /api/guests/:id
func (h *GuestHandler) Delete(c *gin.Context) {
	if err := h.guestService.Delete(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(gin.H{"message": "Guest deleted successfully"}))
}
