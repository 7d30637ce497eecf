package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/internal/service"
	"github.com/prohmpiriya/hostel-saas/pkg/middleware"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// AuthHandler handles registration, login and the current-user lookup
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles hostel sign-up
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditResourceID(c, result.User.ID)
	if result.Hostel != nil {
		middleware.SetAuditHostelID(c, result.Hostel.ID)
	}
	respond(c, http.StatusCreated, response.Success(result))
}

// Login handles credential exchange
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuditResourceID(c, result.User.ID)
	if result.Hostel != nil {
		middleware.SetAuditHostelID(c, result.Hostel.ID)
	}
	respond(c, http.StatusOK, response.Success(result))
}

// Me returns the authenticated user
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respond(c, http.StatusUnauthorized, response.Unauthorized("Access token required"))
		return
	}

	result, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response.Success(result))
}
