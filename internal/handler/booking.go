package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/inventory"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

// BookingHandler serves the customer-facing booking endpoints.  All
// methods assume that JWT authentication and role validation has already
// been performed by middleware; they may return 401 Unauthorized if the
// user ID cannot be extracted from the context.
type BookingHandler struct {
	Bookings *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.  The service must be
// non-nil.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	if bookings == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

// createBookingRequest is the JSON body of POST /v1/bookings.  Rooms maps
// room type IDs (as decimal strings, since JSON object keys are strings)
// to unit quantities.
type createBookingRequest struct {
	HotelID        uint64            `json:"hotel_id"`
	Rooms          map[string]uint32 `json:"rooms"`
	StartDate      string            `json:"start_date"`
	EndDate        string            `json:"end_date"`
	CardholderName string            `json:"cardholder_name"`
}

// Create handles POST /v1/bookings.  It validates the stay, reserves the
// requested units atomically and captures payment.  A 409 response with
// error "room unavailable" is distinguishable from other failures so the
// client can offer alternative dates.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.HotelID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hotel_id is required"})
	}
	start, err := parseStayDate(body.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
	}
	end, err := parseStayDate(body.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
	}
	rooms := make(map[uint64]uint32, len(body.Rooms))
	for key, qty := range body.Rooms {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room type id"})
		}
		rooms[id] = qty
	}

	booking, err := h.Bookings.CreateBooking(c.Request().Context(), service.CreateBookingInput{
		HotelID:        body.HotelID,
		UserID:         userID,
		Rooms:          rooms,
		StartDate:      start,
		EndDate:        end,
		CardholderName: body.CardholderName,
	})
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrInvalidDateRange):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date range"})
		case errors.Is(err, service.ErrNoRoomsRequested):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no rooms requested"})
		case errors.Is(err, repository.ErrHotelNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
		case errors.Is(err, repository.ErrRoomTypeNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown room type"})
		case errors.Is(err, repository.ErrRoomUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "room unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": booking})
}

// Cancel handles POST /v1/bookings/:id/cancel.  Confirmed and completed
// bookings are both cancellable; cancellation refunds the full amount.
// A repeated cancel returns 409 and never refunds twice.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	booking, refund, err := h.Bookings.CancelBooking(c.Request().Context(), bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrAlreadyCancelled):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking already cancelled"})
		case errors.Is(err, service.ErrCancelWindowClosed):
			return c.JSON(http.StatusConflict, echo.Map{"error": "cancellation window closed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"item":         booking,
		"refund_cents": refund,
	})
}

// List handles GET /v1/my-bookings.  It returns all bookings created by
// the current user, newest first.  When none exist it returns an empty
// array.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListUserBookings(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/bookings/:id.  It returns a single booking owned
// by the current user; 404 when it does not exist, 403 when it belongs
// to someone else.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	booking, err := h.Bookings.GetBooking(c.Request().Context(), bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": booking})
}
