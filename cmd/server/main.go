package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/room-escape-reservation/internal/config"
	"github.com/iliyamo/room-escape-reservation/internal/database"
	"github.com/iliyamo/room-escape-reservation/internal/handler"
	"github.com/iliyamo/room-escape-reservation/internal/middleware"
	"github.com/iliyamo/room-escape-reservation/internal/payment"
	"github.com/iliyamo/room-escape-reservation/internal/queue"
	"github.com/iliyamo/room-escape-reservation/internal/repository"
	"github.com/iliyamo/room-escape-reservation/internal/router"
	"github.com/iliyamo/room-escape-reservation/internal/service"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database open failed", zap.Error(err))
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logger.Fatal("schema migration failed", zap.Error(err))
		}
	}

	members := repository.NewMemberRepo(db)
	tokens := repository.NewTokenRepo(db)
	themes := repository.NewThemeRepo(db)
	times := repository.NewTimeRepo(db)
	reservations := repository.NewReservationRepo(db)

	payments := payment.NewClient(payment.Config{
		BaseURL:        cfg.Payment.BaseURL,
		Secret:         cfg.Payment.Secret,
		ConnectTimeout: cfg.Payment.ConnectTimeout,
		ReadTimeout:    cfg.Payment.ReadTimeout,
	})

	var events service.EventPublisher = queue.NopPublisher{}
	if cfg.Events.Enabled {
		events = queue.NewPublisher(cfg.Events.URL, cfg.Events.Queue, logger)
		if cfg.Events.Consume {
			consumer := queue.NewConsumer(cfg.Events.URL, cfg.Events.Queue, cfg.Events.ConsumerLog, logger)
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("event consumer stopped", zap.Error(err))
				}
			}()
		}
	}

	memberSvc := service.NewMemberService(members, tokens, service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	}, logger)
	themeSvc := service.NewThemeService(themes, logger)
	timeSvc := service.NewTimeService(times, themes, logger)
	reservationSvc := service.NewReservationService(reservations, members, themes, times, payments, events, logger)

	if cfg.Admin.Email != "" {
		if err := memberSvc.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			logger.Fatal("admin bootstrap failed", zap.Error(err))
		}
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		logger.Warn("redis unavailable, cache and rate limit disabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewRedisCache(cfg.Cache, rdb, logger)
	purge := middleware.PurgeOnWrite(middleware.NewCachePurger(rdb, cfg.Cache.Prefix, logger))
	limiter := middleware.NewTokenBucket(cfg.Rate, rdb, logger)

	authH := handler.NewAuthHandler(memberSvc, cfg.CookieSecure, logger)
	catalogH := handler.NewCatalogHandler(themeSvc, timeSvc, logger)
	reservationH := handler.NewReservationHandler(reservationSvc,
		handler.BookingTimeout(cfg.Payment.ConnectTimeout, cfg.Payment.ReadTimeout), logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Recover())
	e.Use(requestLogger(logger))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, catalogH, reservationH, cache)
	router.RegisterMember(e, reservationH, cfg.JWTSecret, limiter)
	router.RegisterAdmin(e, router.AdminHandlers{
		Reservations: reservationH,
		Catalog:      catalogH,
		Auth:         authH,
	}, cfg.JWTSecret, purge)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProd() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// requestLogger writes one structured line per request.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}
