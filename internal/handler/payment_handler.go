package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/internal/service"
	"github.com/prohmpiriya/hostel-saas/pkg/middleware"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// PaymentHandler handles payment HTTP requests
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// List handles GET /api/payments
func (h *PaymentHandler) List(c *gin.Context) {
	var query dto.ListPaymentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.paymentService.List(c.Request.Context(), identityFrom(c), &query)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(result))
}

// GetByID handles GET /api/payments/:id
func (h *PaymentHandler) GetByID(c *gin.Context) {
	payment, err := h.paymentService.Get(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(dto.PaymentEnvelope{Payment: payment}))
}

// Create handles POST /api/payments
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	payment, err := h.paymentService.Create(c.Request.Context(), identityFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditResourceID(c, payment.ID)
	middleware.SetAuditHostelID(c, payment.HostelID)
	respond(c, http.StatusCreated, response.Success(dto.PaymentEnvelope{Payment: payment}))
}

// Update handles PUT /api/payments/:id
func (h *PaymentHandler) Update(c *gin.Context) {
	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	payment, err := h.paymentService.Update(c.Request.Context(), identityFrom(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditHostelID(c, payment.HostelID)
	respond(c, http.StatusOK, response.Success(dto.PaymentEnvelope{Payment: payment}))
}

// UpdateStatus handles PATCH /api/payments/:id/status
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	payment, err := h.paymentService.UpdateStatus(c.Request.Context(), identityFrom(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditHostelID(c, payment.HostelID)
	respond(c, http.StatusOK, response.Success(dto.PaymentEnvelope{Payment: payment}))
}

// Delete handles DELETE /api/payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	if err := h.paymentService.Delete(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(gin.H{"message": "Payment deleted successfully"}))
}
