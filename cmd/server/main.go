package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/hotel-reservation/internal/config"     // Internal config loader
	"github.com/iliyamo/hotel-reservation/internal/database"   // MySQL connection helper
	"github.com/iliyamo/hotel-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/hotel-reservation/internal/inventory"  // Clock used by the booking engine
	"github.com/iliyamo/hotel-reservation/internal/middleware" // Cache and rate-limit middleware
	"github.com/iliyamo/hotel-reservation/internal/queue"      // RabbitMQ consumer
	"github.com/iliyamo/hotel-reservation/internal/repository" // MySQL repositories
	"github.com/iliyamo/hotel-reservation/internal/router"     // Route registration
	"github.com/iliyamo/hotel-reservation/internal/service"    // Booking engine
)

func main() {
	// Load .env if present; real deployments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load() // Load environment config

	// Connect to MySQL.  The engine cannot run without durable storage.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Redis backs the search response cache and the rate limiter.  A nil
	// client disables both; the API keeps working without them.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	// Wire repositories into the booking engine.  The AMQP publisher is
	// best-effort: publish failures are logged, never surfaced to clients.
	hotels := repository.NewHotelRepo(db)
	rooms := repository.NewRoomTypeRepo(db)
	bookings := repository.NewBookingRepo(db)

	svc := service.NewBookingService(hotels, rooms, bookings, inventory.SystemClock{}, service.AMQPPublisher{})
	svc.CancelCutoff = cfg.CancelCutoff

	publicHandler := handler.NewPublicHandler(svc)
	bookingHandler := handler.NewBookingHandler(svc)
	adminHandler := handler.NewAdminBookingHandler(svc)

	// Consume booking events in the background and append them to
	// logs/booking.log.  The consumer reconnects on its own.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterPublic(e, publicHandler,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)
	router.RegisterCustomer(e, bookingHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
