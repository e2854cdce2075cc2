package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER or ADMIN role.  Customers
// can create bookings, cancel them, and view their own bookings; ADMIN
// is accepted so operators can exercise the same flows.
func RegisterCustomer(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER", "ADMIN"),
	)
	// Note: GET /v1/hotels/search and GET /v1/hotels/:id/availability are
	// registered on the public router so that guests can browse hotels and
	// check availability.  Customer-specific endpoints begin here.
	g.POST("/bookings", h.Create)
	g.POST("/bookings/:id/cancel", h.Cancel)
	g.GET("/my-bookings", h.List)

	// Booking detail endpoint.  The handler validates that the booking
	// belongs to the requesting user.
	g.GET("/bookings/:id", h.Get)
}
