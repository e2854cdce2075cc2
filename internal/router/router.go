package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/hotel-reservation/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated hotel browse and
// availability endpoints.  The optional middlewares (response cache and
// rate limiter) are applied only to these read-heavy routes; when Redis
// is unavailable both degrade to pass-through.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mws...)
	// Search hotels by destination/type, optionally filtered by stay dates
	// and room requests so only hotels that can host the party are returned.
	g.GET("/hotels/search", p.SearchHotels)
	// List the room types of one hotel that are fully booked for a range so
	// clients can grey them out before attempting a booking.
	g.GET("/hotels/:id/availability", p.CheckAvailability)
	// Per-unit occupancy projection of one room type for a range.
	g.GET("/hotels/:id/rooms/:room_type_id/units", p.UnitOccupancy)
}
