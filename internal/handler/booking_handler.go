package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/internal/service"
	"github.com/prohmpiriya/hostel-saas/pkg/middleware"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// List handles GET /api/bookings
func (h *BookingHandler) List(c *gin.Context) {
	var query dto.ListBookingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.bookingService.List(c.Request.Context(), identityFrom(c), &query)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(result))
}

// GetByID handles GET /api/bookings/:id
func (h *BookingHandler) GetByID(c *gin.Context) {
	booking, err := h.bookingService.Get(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(dto.BookingEnvelope{Booking: booking}))
}

// Create handles POST /api/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), identityFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditResourceID(c, booking.ID)
	middleware.SetAuditHostelID(c, booking.HostelID)
	respond(c, http.StatusCreated, response.Success(dto.BookingEnvelope{Booking: booking}))
}

// Update handles PUT /api/bookings/:id
func (h *BookingHandler) Update(c *gin.Context) {
	var req dto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.bookingService.Update(c.Request.Context(), identityFrom(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditHostelID(c, booking.HostelID)
	respond(c, http.StatusOK, response.Success(dto.BookingEnvelope{Booking: booking}))
}

// UpdateStatus handles PATCH /api/bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), identityFrom(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditHostelID(c, booking.HostelID)
	respond(c, http.StatusOK, response.Success(dto.BookingEnvelope{Booking: booking}))
}

// Delete handles DELETE /api/bookings/:id
func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.bookingService.Delete(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(gin.H{"message": "Booking deleted successfully"}))
}
