package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/inventory"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

// PublicHandler serves the unauthenticated hotel search and availability
// endpoints.  These are read paths: they may trigger the auto-complete
// sweep inside the service but never mutate inventory themselves.
type PublicHandler struct {
	Bookings *service.BookingService
}

// NewPublicHandler constructs a PublicHandler.  The service must be
// non-nil.
func NewPublicHandler(bookings *service.BookingService) *PublicHandler {
	if bookings == nil {
		panic("nil service passed to NewPublicHandler")
	}
	return &PublicHandler{Bookings: bookings}
}

// parseRoomRequests parses the "rooms" query parameter.  Each requested
// room is written as adults-children and rooms are comma separated, e.g.
// rooms=2-1,2-0 for one double with a child plus one double.  An empty
// parameter means no explicit requests.
func parseRoomRequests(raw string) ([]inventory.RoomRequest, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]inventory.RoomRequest, 0, len(parts))
	for _, p := range parts {
		fields := strings.SplitN(strings.TrimSpace(p), "-", 2)
		adults, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil || adults == 0 {
			return nil, errors.New("invalid rooms parameter")
		}
		var children uint64
		if len(fields) == 2 && fields[1] != "" {
			children, err = strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				return nil, errors.New("invalid rooms parameter")
			}
		}
		out = append(out, inventory.RoomRequest{Adults: uint32(adults), Children: uint32(children)})
	}
	return out, nil
}

// SearchHotels handles GET /v1/hotels/search.  Query parameters:
// destination (city substring), type (hotel category), start_date and
// end_date (YYYY-MM-DD, both or neither), rooms (see parseRoomRequests).
// Without dates the search runs in browsing mode and skips inventory
// filtering; browsing results must not be used to confirm a booking.
// Zero matches returns an empty list, not an error.
func (h *PublicHandler) SearchHotels(c echo.Context) error {
	rng, err := parseStayRange(c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date range"})
	}
	requests, err := parseRoomRequests(c.QueryParam("rooms"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	hotels, err := h.Bookings.SearchAvailableHotels(c.Request().Context(), service.SearchInput{
		Destination: c.QueryParam("destination"),
		Type:        c.QueryParam("type"),
		Range:       rng,
		Requests:    requests,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": hotels})
}

// CheckAvailability handles GET /v1/hotels/:id/availability.  It returns
// the IDs of room types with no free unit for the requested range so a
// client can grey them out.  Both start_date and end_date are required.
func (h *PublicHandler) CheckAvailability(c echo.Context) error {
	hotelID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || hotelID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	rng, err := parseStayRange(c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil || rng == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date range"})
	}

	booked, err := h.Bookings.CheckAvailability(c.Request().Context(), hotelID, *rng)
	if err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability check failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"booked_room_type_ids": booked})
}

// UnitOccupancy handles GET /v1/hotels/:id/rooms/:room_type_id/units.  It
// returns each physical unit of the room type together with the stay
// intervals projected onto it for the requested range.  Bookings claim
// quantities rather than units, so the projection shows one valid
// assignment for display.
func (h *PublicHandler) UnitOccupancy(c echo.Context) error {
	hotelID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || hotelID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	roomTypeID, err := strconv.ParseUint(c.Param("room_type_id"), 10, 64)
	if err != nil || roomTypeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room type id"})
	}
	rng, err := parseStayRange(c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil || rng == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date range"})
	}

	units, err := h.Bookings.UnitOccupancy(c.Request().Context(), hotelID, roomTypeID, *rng)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrHotelNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
		case errors.Is(err, repository.ErrRoomTypeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "occupancy check failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": units})
}
