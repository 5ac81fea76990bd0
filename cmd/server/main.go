package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/event-seat-inventory/internal/config"
	"github.com/iliyamo/event-seat-inventory/internal/database"
	"github.com/iliyamo/event-seat-inventory/internal/handler"
	"github.com/iliyamo/event-seat-inventory/internal/middleware"
	"github.com/iliyamo/event-seat-inventory/internal/queue"
	"github.com/iliyamo/event-seat-inventory/internal/repository"
	"github.com/iliyamo/event-seat-inventory/internal/router"
	"github.com/iliyamo/event-seat-inventory/internal/service"
)

func main() {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	eventRepo := repository.NewEventRepo(db)
	leaseRepo := repository.NewLeaseRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	priceRepo := repository.NewPriceRepo(db)

	coordinator := service.NewCoordinator(eventRepo, leaseRepo, bookingRepo, priceRepo, service.NewAMQPPublisher())
	availability := service.NewAvailabilityEngine(eventRepo, leaseRepo, bookingRepo)
	reaper := service.NewReaper(leaseRepo)

	e := echo.New()
	router.RegisterRoutes(e)

	// Redis is optional: a nil client disables caching and rate limiting.
	rdb := config.NewRedisClient()
	var cacheMW, rateMW echo.MiddlewareFunc
	if rdb != nil {
		cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
		rateMW = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	} else {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	bookingHandler := handler.NewBookingHandler(coordinator)
	eventHandler := handler.NewEventHandler(coordinator, availability)
	priceHandler := handler.NewPriceHandler(coordinator)
	authHandler := handler.NewAuthHandler(cfg.JWTSecret, cfg.AdminAPIKey, cfg.AccessTTLMin)

	router.RegisterPublic(e, eventHandler, bookingHandler, cacheMW)
	router.RegisterBooking(e, bookingHandler, rateMW)
	router.RegisterAdmin(e, authHandler, eventHandler, priceHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error { return e.Start(addr) })
	g.Go(func() error { return reaper.Run(ctx) })
	g.Go(func() error { return queue.StartBookingConsumer() })
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}
