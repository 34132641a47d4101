package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/hkhang692004/cinema-ops-console/internal/config"
	"github.com/hkhang692004/cinema-ops-console/internal/database"
	"github.com/hkhang692004/cinema-ops-console/internal/handler"
	"github.com/hkhang692004/cinema-ops-console/internal/middleware"
	"github.com/hkhang692004/cinema-ops-console/internal/queue"
	"github.com/hkhang692004/cinema-ops-console/internal/repository"
	"github.com/hkhang692004/cinema-ops-console/internal/router"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	bookings := repository.NewBookingRepo(db)
	showtimes := repository.NewShowtimeRepo(db)
	seats := repository.NewSeatRepo(db)
	rooms := repository.NewRoomRepo(db)
	movies := repository.NewMovieRepo(db)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Booking:  handler.NewBookingHandler(bookings, showtimes, seats, rooms),
		Showtime: handler.NewShowtimeHandler(showtimes, rooms, movies),
		Catalog:  handler.NewCatalogHandler(movies, rooms),
	}

	// Fulfillment log consumer runs for the lifetime of the process and
	// reconnects on its own when the broker drops.
	go queue.StartCompletionConsumer()

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	router.RegisterRoutes(e, h, cfg.JWTSecret, cacheMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
