package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebooking/internal/repository"
	"ridebooking/internal/service"
)

// ErrorResponse represents an error response. Code carries the stable
// rejection code for refused booking operations.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	status := mapErrorToHTTPStatus(err)

	var rejection *service.RejectionError
	if errors.As(err, &rejection) {
		c.JSON(status, ErrorResponse{Error: rejection.Message, Code: string(rejection.Code)})
		return
	}

	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		// Internal state details never leak to callers.
		c.Error(err)
		c.JSON(status, ErrorResponse{Error: "internal error"})
		return
	}

	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var rejection *service.RejectionError
	if errors.As(err, &rejection) {
		switch rejection.Code {
		case service.CodeUnknownPassenger,
			service.CodeUnknownRide,
			service.CodeRideNotFound,
			service.CodeBookingNotFound:
			return http.StatusNotFound
		default:
			return http.StatusConflict
		}
	}

	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidPassengerID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidOrigin),
		errors.Is(err, service.ErrInvalidDestination),
		errors.Is(err, service.ErrInvalidSchedule),
		errors.Is(err, service.ErrDepartureInPast),
		errors.Is(err, service.ErrInvalidCapacity):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrRideNotInScheduledState),
		errors.Is(err, service.ErrRideNotInProgress),
		errors.Is(err, service.ErrRideAlreadyCancelled),
		errors.Is(err, service.ErrRideCannotBeCancelled):
		return http.StatusConflict

	// Contention exhausted the lock retry budget
	case errors.Is(err, service.ErrLockUnavailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
