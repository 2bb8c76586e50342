package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridebooking/internal/domain"
	"ridebooking/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBookingRequest is the HTTP request body for creating a booking.
type CreateBookingRequest struct {
	PassengerID string `json:"passenger_id"`
	RideID      string `json:"ride_id"`
}

// BookingResponse is the HTTP representation of a booking.
type BookingResponse struct {
	ID          string `json:"id"`
	RideID      string `json:"ride_id"`
	PassengerID string `json:"passenger_id"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	CancelledAt string `json:"cancelled_at,omitempty"`
}

// RosterEntryResponse is one row of a ride's passenger list.
type RosterEntryResponse struct {
	Booking           BookingResponse `json:"booking"`
	PassengerFullName string          `json:"passenger_full_name"`
}

// CreateBooking handles POST /v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), req.PassengerID, req.RideID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toBookingResponse(booking))
}

// CancelBooking handles POST /v1/rides/:id/bookings/:passengerId/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	rideID := c.Param("id")
	passengerID := c.Param("passengerId")

	booking, err := h.bookingService.Cancel(c.Request.Context(), rideID, passengerID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// ListPassengers handles GET /v1/rides/:id/passengers
func (h *BookingHandler) ListPassengers(c *gin.Context) {
	entries, err := h.bookingService.ListPassengers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	roster := make([]RosterEntryResponse, 0, len(entries))
	for _, entry := range entries {
		roster = append(roster, RosterEntryResponse{
			Booking:           toBookingResponse(entry.Booking),
			PassengerFullName: entry.PassengerFullName,
		})
	}

	respondJSON(c, http.StatusOK, roster)
}

func toBookingResponse(booking *domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:          booking.ID,
		RideID:      booking.RideID,
		PassengerID: booking.PassengerID,
		Status:      string(booking.Status),
		CreatedAt:   booking.CreatedAt.Format(time.RFC3339),
	}
	if !booking.CancelledAt.IsZero() {
		resp.CancelledAt = booking.CancelledAt.Format(time.RFC3339)
	}
	return resp
}
