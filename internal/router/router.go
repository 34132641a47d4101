// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hkhang692004/cinema-ops-console/internal/handler"
	"github.com/hkhang692004/cinema-ops-console/internal/middleware"
)

// Handlers bundles every handler the API exposes so registration stays in
// one place.
type Handlers struct {
	Auth     *handler.AuthHandler
	Booking  *handler.BookingHandler
	Showtime *handler.ShowtimeHandler
	Catalog  *handler.CatalogHandler
}

// RegisterRoutes registers the whole API surface. The console is a staff
// tool: apart from the health check and the auth endpoints, every route
// requires a valid token with the MANAGER or STAFF role. cacheMW fronts
// the slow-moving catalogue endpoints only; seat maps and bookings are
// always served fresh.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, cacheMW echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	auth := e.Group("/v1/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	staff := e.Group("/v1")
	staff.Use(middleware.JWTAuth(jwtSecret))
	staff.Use(middleware.RequireRole("MANAGER", "STAFF"))

	staff.GET("/me", h.Auth.Me)
	staff.POST("/logout", h.Auth.Logout)

	// Booking work queue and lifecycle.
	staff.GET("/bookings", h.Booking.List)
	staff.GET("/bookings/:id", h.Booking.Get)
	staff.POST("/bookings/:id/transition", h.Booking.Transition)
	staff.POST("/bookings/:id/seats/auto", h.Booking.AutoAssignSeats)
	staff.PUT("/bookings/:id/seats", h.Booking.UpdateSeats)

	// Schedule management.
	staff.POST("/showtimes", h.Showtime.Create)
	staff.GET("/showtimes/:id", h.Showtime.Get)
	staff.PUT("/showtimes/:id", h.Showtime.Update)
	staff.GET("/showtimes/:id/seat-map", h.Booking.SeatMap)
	staff.GET("/rooms/:id/showtimes", h.Showtime.ListByRoom)

	// Reference data, cached.
	if cacheMW != nil {
		staff.GET("/movies", h.Catalog.ListMovies, cacheMW)
		staff.GET("/rooms", h.Catalog.ListRooms, cacheMW)
	} else {
		staff.GET("/movies", h.Catalog.ListMovies)
		staff.GET("/rooms", h.Catalog.ListRooms)
	}
}
