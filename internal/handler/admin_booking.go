package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

// AdminBookingHandler serves operator-only booking endpoints: direct
// status transitions, the explicit completion sweep and hard deletes.
// Routes using it must sit behind RequireRole("ADMIN").
type AdminBookingHandler struct {
	Bookings *service.BookingService
}

// NewAdminBookingHandler constructs an AdminBookingHandler.  The service
// must be non-nil.
func NewAdminBookingHandler(bookings *service.BookingService) *AdminBookingHandler {
	if bookings == nil {
		panic("nil service passed to NewAdminBookingHandler")
	}
	return &AdminBookingHandler{Bookings: bookings}
}

// updateStatusRequest is the JSON body of PATCH /v1/bookings/:id/status.
type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /v1/bookings/:id/status.  Only the forward
// transitions PENDING→CONFIRMED and CONFIRMED→COMPLETED are allowed
// directly; CANCELLED routes through the cancellation flow so the refund
// is never skipped.
func (h *AdminBookingHandler) UpdateStatus(c echo.Context) error {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body updateStatusRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status := strings.ToUpper(strings.TrimSpace(body.Status))
	if status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}

	booking, err := h.Bookings.UpdateBookingStatus(c.Request().Context(), bookingID, status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
		case errors.Is(err, repository.ErrAlreadyCancelled):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking already cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update status"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": booking})
}

// Sweep handles POST /v1/admin/bookings/sweep.  It marks every confirmed
// booking whose stay has ended as completed and reports how many rows
// changed.  The sweep also runs implicitly on read paths, so calling it
// twice in a row is harmless.
func (h *AdminBookingHandler) Sweep(c echo.Context) error {
	n, err := h.Bookings.AutoCompletePastBookings(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sweep failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"completed": n})
}

// Delete handles DELETE /v1/bookings/:id.  It removes the booking and
// its room lines permanently; cancellation is the customer-facing path,
// deletion exists for operator cleanup only.
func (h *AdminBookingHandler) Delete(c echo.Context) error {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Bookings.DeleteBooking(c.Request().Context(), bookingID); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking deleted"})
}
