package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hkhang692004/cinema-ops-console/internal/repository"
)

// CatalogHandler serves the reference data the console needs to populate
// its pickers: the movie catalogue and the room list. Both endpoints sit
// behind the response cache since this data changes rarely.
type CatalogHandler struct {
	Movies *repository.MovieRepo
	Rooms  *repository.RoomRepo
}

// NewCatalogHandler constructs a CatalogHandler and panics if any dependency is nil.
func NewCatalogHandler(movies *repository.MovieRepo, rooms *repository.RoomRepo) *CatalogHandler {
	if movies == nil || rooms == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Movies: movies, Rooms: rooms}
}

// ListMovies handles GET /v1/movies and returns every title currently
// programmed.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	items, err := h.Movies.ListShowing(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movies"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListRooms handles GET /v1/rooms and returns every active room.
func (h *CatalogHandler) ListRooms(c echo.Context) error {
	items, err := h.Rooms.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rooms"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
