package router

// This file registers operator-only routes for managing bookings.  The
// routes defined here allow direct status transitions, the explicit
// completion sweep and hard deletes.  They are kept separate from the
// customer routes so the two permission surfaces stay isolated.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
)

// RegisterAdmin registers routes that allow operators to manage
// bookings.  All routes are mounted under /v1 and require a JWT token
// as well as the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminBookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	// Apply a forward status transition to a single booking
	g.PATCH("/bookings/:id/status", h.UpdateStatus)
	// Complete every confirmed booking whose stay has ended
	g.POST("/admin/bookings/sweep", h.Sweep)
	// Hard-delete a booking (operator cleanup, bypasses the refund path)
	g.DELETE("/bookings/:id", h.Delete)
}
