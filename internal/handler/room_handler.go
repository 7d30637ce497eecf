package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/internal/service"
	"github.com/prohmpiriya/hostel-saas/pkg/middleware"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// RoomHandler handles room HTTP requests
type RoomHandler struct {
	roomService service.RoomService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomService service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// List handles GET /api/rooms
func (h *RoomHandler) List(c *gin.Context) {
	var query dto.ListRoomsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.roomService.List(c.Request.Context(), identityFrom(c), &query)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(result))
}

// GetByID handles GET /api/rooms/:id
func (h *RoomHandler) GetByID(c *gin.Context) {
	room, err := h.roomService.Get(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(dto.RoomEnvelope{Room: room}))
}

// Create handles POST /api/rooms
func (h *RoomHandler) Create(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	room, err := h.roomService.Create(c.Request.Context(), identityFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditResourceID(c, room.ID)
	middleware.SetAuditHostelID(c, room.HostelID)
	respond(c, http.StatusCreated, response.Success(dto.RoomEnvelope{Room: room}))
}

// Update handles PUT /api/rooms/:id
func (h *RoomHandler) Update(c *gin.Context) {
	var req dto.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	room, err := h.roomService.Update(c.Request.Context(), identityFrom(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditHostelID(c, room.HostelID)
	respond(c, http.StatusOK, response.Success(dto.RoomEnvelope{Room: room}))
}

// UpdateStatus handles PATCH /api/rooms/:id/status
func (h *RoomHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateRoomStatusRequest
	// a failed decode may leave a non-nil false; the service reports nil as 400
	if err := c.ShouldBindJSON(&req); err != nil {
		req.IsAvailable = nil
	}

	room, err := h.roomService.UpdateStatus(c.Request.Context(), identityFrom(c), c.Param("id"), req.IsAvailable)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditHostelID(c, room.HostelID)
	respond(c, http.StatusOK, response.Success(dto.RoomEnvelope{Room: room}))
}

// Delete handles DELETE /api/rooms/:id
func (h *RoomHandler) Delete(c *gin.Context) {
	if err := h.roomService.Delete(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(gin.H{"message": "Room deleted successfully"}))
}
