package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/internal/service"
	"github.com/prohmpiriya/hostel-saas/pkg/logger"
	"github.com/prohmpiriya/hostel-saas/pkg/middleware"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
	"github.com/prohmpiriya/hostel-saas/pkg/telemetry"
)

// identityFrom reads the caller established by the JWT middleware
func identityFrom(c *gin.Context) domain.Identity {
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetRole(c)
	hostelID, _ := middleware.GetHostelID(c)
	return domain.Identity{UserID: userID, HostelID: hostelID, Role: domain.Role(role)}
}

// respond writes the envelope with the request id attached
func respond(c *gin.Context, status int, body *response.Response) {
	c.JSON(status, body.WithRequestID(middleware.GetRequestID(c)))
}

// respondBindError reports malformed JSON as BAD_REQUEST and tag failures as VALIDATION_FAILED
func respondBindError(c *gin.Context, err error) {
	if details := dto.ValidationDetails(err); len(details) > 0 {
		respond(c, http.StatusBadRequest, response.ValidationFailed(details))
		return
	}
	respond(c, http.StatusBadRequest, response.BadRequest(err.Error()))
}

// respondError maps service errors to the response envelope
func respondError(c *gin.Context, err error) {
	var denied *service.AccessDeniedError
	var verr *service.ValidationError

	switch {
	case errors.As(err, &denied):
		respond(c, http.StatusForbidden, response.Forbidden(denied.Message))
	case errors.Is(err, service.ErrForbidden):
		respond(c, http.StatusForbidden, response.Forbidden("Access denied"))
	case errors.As(err, &verr):
		if verr.Field != "" {
			respond(c, http.StatusBadRequest, response.ErrorWithDetails(
				response.ErrCodeValidationFailed, verr.Message, map[string]string{verr.Field: verr.Message}))
			return
		}
		respond(c, http.StatusBadRequest, response.BadRequest(verr.Message))

	case errors.Is(err, service.ErrHostelNotFound):
		respond(c, http.StatusNotFound, response.NotFound("Hostel not found"))
	case errors.Is(err, service.ErrRoomNotFound):
		respond(c, http.StatusNotFound, response.NotFound("Room not found"))
	case errors.Is(err, service.ErrGuestNotFound):
		respond(c, http.StatusNotFound, response.NotFound("Guest not found"))
	case errors.Is(err, service.ErrBookingNotFound):
		respond(c, http.StatusNotFound, response.NotFound("Booking not found"))
	case errors.Is(err, service.ErrPaymentNotFound):
		respond(c, http.StatusNotFound, response.NotFound("Payment not found"))

	case errors.Is(err, service.ErrSlugTaken):
		respond(c, http.StatusBadRequest, response.Conflict("Hostel slug already taken"))
	case errors.Is(err, service.ErrEmailTaken):
		respond(c, http.StatusBadRequest, response.Conflict("Email already registered"))
	case errors.Is(err, service.ErrRoomNumberTaken):
		respond(c, http.StatusBadRequest, response.Conflict("Room number already exists in this hostel"))
	case errors.Is(err, service.ErrHasBookings):
		respond(c, http.StatusBadRequest, response.Conflict("Cannot delete a record that has bookings"))
	case errors.Is(err, service.ErrInvalidStatusTransition):
		respond(c, http.StatusBadRequest, response.BadRequest(err.Error()))

	case errors.Is(err, service.ErrInvalidCredentials):
		respond(c, http.StatusUnauthorized, response.Unauthorized("Invalid credentials"))
	case errors.Is(err, service.ErrAccountDisabled):
		respond(c, http.StatusUnauthorized, response.Unauthorized("Account is disabled"))
	case errors.Is(err, service.ErrHostelDisabled):
		respond(c, http.StatusUnauthorized, response.Unauthorized("Hostel account is disabled"))
	case errors.Is(err, service.ErrUserNotFound):
		respond(c, http.StatusUnauthorized, response.Unauthorized("User not found"))

	default:
		ctx := c.Request.Context()
		telemetry.SetSpanError(ctx, err)
		logger.Get().ErrorContext(ctx, "request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		respond(c, http.StatusInternalServerError, response.InternalError("Internal server error"))
	}
}
