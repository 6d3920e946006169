package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-reservations/internal/config"
	"github.com/iliyamo/travel-reservations/internal/database"
	"github.com/iliyamo/travel-reservations/internal/handler"
	"github.com/iliyamo/travel-reservations/internal/logger"
	"github.com/iliyamo/travel-reservations/internal/middleware"
	"github.com/iliyamo/travel-reservations/internal/queue"
	"github.com/iliyamo/travel-reservations/internal/repository"
	"github.com/iliyamo/travel-reservations/internal/router"
	"github.com/iliyamo/travel-reservations/internal/service"
)

func main() {
	// .env is optional; real deployments pass the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		zl.Fatal("database: open failed", zap.Error(err))
	}
	defer db.Close()

	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			zl.Fatal("database: migrate failed", zap.Error(err))
		}
		zl.Info("database: schema up to date")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	stats := repository.NewStatsRepo(db)
	st := service.Stores{
		Tx:                 database.NewTransactor(db, cfg.TxMaxAttempts, zl),
		Users:              users,
		Flights:            repository.NewFlightRepo(db),
		Hotels:             repository.NewHotelRepo(db),
		FlightReservations: repository.NewFlightReservationRepo(db),
		HotelReservations:  repository.NewHotelReservationRepo(db),
		Payments:           repository.NewPaymentRepo(db),
		Stats:              stats,
	}

	accounts := service.NewAccountService(users, cfg.BcryptCost, zl)
	if err := accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminFullName); err != nil {
		zl.Fatal("bootstrap admin failed", zap.Error(err))
	}

	var events service.EventPublisher
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.RabbitURL, zl)
	}
	if cfg.EventsConsumerEnabled {
		consumer := &queue.Consumer{URL: cfg.RabbitURL, LogDir: cfg.EventsLogDir, Log: zl}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("reservation-consumer stopped", zap.Error(err))
			}
		}()
	}

	// Redis backs the rate limiter and the search cache.  Both degrade to
	// pass-through when it is unreachable.
	var rdb *redis.Client
	if rc, err := config.NewRedisClient(config.LoadRedisConfig()); err != nil {
		zl.Warn("redis unavailable; rate limiting and caching disabled", zap.Error(err))
	} else {
		rdb = rc
		defer rdb.Close()
	}
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, zl)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, zl)

	reservations := service.NewReservationService(st, events, zl)
	payments := service.NewPaymentService(st, events, zl)
	adminRes := service.NewAdminReservationService(st, events, zl)
	inventory := service.NewInventoryService(st, zl)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler(zl)
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(zl))
	e.Use(echomw.Recover())

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, accounts, tokens, zl), cfg.JWTSecret, limit)
	router.RegisterClient(e, router.ClientHandlers{
		Search:       handler.NewSearchHandler(inventory),
		Reservations: handler.NewClientReservationHandler(reservations),
		Payments:     handler.NewClientPaymentHandler(payments),
	}, cfg.JWTSecret, limit, cache)
	router.RegisterAdmin(e, router.AdminHandlers{
		Reservations: handler.NewAdminReservationHandler(adminRes),
		Stats:        handler.NewAdminStatsHandler(service.NewStatsService(stats)),
		Inventory:    handler.NewAdminInventoryHandler(inventory),
	}, cfg.JWTSecret, limit)

	addr := ":" + cfg.Port
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}
