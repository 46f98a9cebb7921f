package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/teereserve/golf-booking/internal/config"
	"github.com/teereserve/golf-booking/internal/database"
	"github.com/teereserve/golf-booking/internal/handler"
	"github.com/teereserve/golf-booking/internal/middleware"
	"github.com/teereserve/golf-booking/internal/queue"
	"github.com/teereserve/golf-booking/internal/repository"
	"github.com/teereserve/golf-booking/internal/router"
	"github.com/teereserve/golf-booking/internal/service"
	"github.com/teereserve/golf-booking/internal/teesheet"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (default command)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	db, err := database.Open(dbSettings(cfg))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Redis is optional: without it the cache and rate limiter pass through.
	var rdb *redis.Client
	if client, err := config.NewRedisClient(cfg.Redis); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable; cache and rate limiting disabled")
	} else {
		rdb = client
		defer rdb.Close()
	}

	var events service.Publisher = service.NopPublisher{}
	if cfg.AMQPURL != "" {
		events = service.NewAMQPPublisher(cfg.AMQPURL)
		go func() {
			if err := queue.StartAlertConsumer(ctx, cfg.AMQPURL, cfg.AlertLogPath, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("alert consumer stopped")
			}
		}()
	} else {
		logger.Info().Msg("RABBITMQ_URL not set; events disabled")
	}

	courses := repository.NewCourseRepo(db)
	prices := service.NewPricingService(repository.NewRuleStore(db))
	providers := teesheet.NewRegistry(teesheet.NewMockProvider())
	purge := func(ctx context.Context) error { return middleware.PurgeCache(ctx, rdb, cfg.Cache.Prefix) }

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	cache := middleware.NewRedisCache(cfg.Cache, rdb)
	limit := middleware.NewTokenBucket(cfg.RateLimit, rdb)

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), cfg.JWTSecret)
	router.RegisterPricing(e, handler.NewPricingHandler(prices), limit, cache)
	router.RegisterPublic(e, handler.NewPublicHandler(courses, prices), limit, cache)
	router.RegisterAdmin(e, handler.NewAdminHandler(courses, repository.NewBaseProductRepo(db), repository.NewPriceRuleRepo(db),
		repository.NewCalendarRepo(db), prices, events, purge), cfg.JWTSecret)
	router.RegisterBooking(e, handler.NewBookingHandler(courses, prices, providers, repository.NewBookingRepo(db), events),
		cfg.JWTSecret, limit)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
