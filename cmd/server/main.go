package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/fleetshare/fleetshare/internal/config"
	"github.com/fleetshare/fleetshare/internal/database"
	"github.com/fleetshare/fleetshare/internal/handler"
	"github.com/fleetshare/fleetshare/internal/queue"
	"github.com/fleetshare/fleetshare/internal/repository"
	"github.com/fleetshare/fleetshare/internal/router"
	"github.com/fleetshare/fleetshare/internal/service"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	// In-memory entity store; MySQL only persists whole-store snapshots.
	store := repository.NewStore()
	tokens := repository.NewTokenRepo()

	var snapshots *repository.SnapshotRepo
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Printf("mysql unavailable, snapshots disabled: %v", err)
	} else {
		snapshots = repository.NewSnapshotRepo(db)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := snapshots.EnsureSchema(ctx)
		cancel()
		if err != nil {
			log.Printf("snapshot schema setup failed, snapshots disabled: %v", err)
			snapshots = nil
		}
	}

	// Redis caches weather readings; a nil client degrades to uncached
	// fetches.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, weather cache disabled")
	}
	weather := service.NewWeatherClient(rdb, time.Duration(cfg.WeatherTTLMin)*time.Minute)

	rentals := service.NewRentalService(store, weather)
	stats := service.NewStatsService(store)
	importer := service.NewImporter(store, cfg.BcryptCost)

	// Background consumer appends confirmed rentals to logs/rental.log.
	go func() {
		if err := queue.StartConfirmedConsumer(); err != nil {
			log.Printf("rental consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, store, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(store, stats, weather))
	router.RegisterClient(e, handler.NewClientHandler(store, rentals), cfg.JWTSecret)
	router.RegisterOwner(e, handler.NewOwnerHandler(store, rentals, stats), cfg.JWTSecret)
	router.RegisterData(e, handler.NewDataHandler(store, snapshots, importer))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
