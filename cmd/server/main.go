package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/booking-hub/internal/booking"
	"github.com/iliyamo/booking-hub/internal/config"
	"github.com/iliyamo/booking-hub/internal/database"
	"github.com/iliyamo/booking-hub/internal/handler"
	"github.com/iliyamo/booking-hub/internal/logger"
	"github.com/iliyamo/booking-hub/internal/middleware"
	"github.com/iliyamo/booking-hub/internal/queue"
	"github.com/iliyamo/booking-hub/internal/repository"
	"github.com/iliyamo/booking-hub/internal/router"
	"github.com/iliyamo/booking-hub/internal/store"
	"github.com/iliyamo/booking-hub/internal/telemetry"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, zl *zap.Logger) error {
	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.Version,
		Environment:    cfg.Env,
		CollectorAddr:  cfg.Telemetry.CollectorAddr,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	st, closeStore, err := openStore(cfg, zl)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := []booking.Option{booking.WithLogger(zl)}
	if cfg.AMQPURL != "" {
		opts = append(opts, booking.WithPublisher(queue.NewPublisher(cfg.AMQPURL, cfg.EventsQueue, zl)))
	} else {
		zl.Info("RABBITMQ_URL not set; booking events are not published")
	}
	svc := booking.NewService(st, booking.Config{
		RestaurantSlotCapacity: cfg.Booking.RestaurantSlotCapacity,
		MaxPartySize:           cfg.Booking.MaxPartySize,
		MaxSpecialRequestLen:   cfg.Booking.MaxSpecialRequestLen,
		CancelWindow:           cfg.Booking.CancelWindow,
		DefaultPageSize:        cfg.Booking.DefaultPageSize,
		MaxPageSize:            cfg.Booking.MaxPageSize,
	}, opts...)

	var limiter echo.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		rdb := config.NewRedisClient(cfg.Redis)
		if rdb != nil {
			defer func() { _ = rdb.Close() }()
		}
		limiter = middleware.NewTokenBucket(cfg.RateLimit, rdb, zl).Middleware()
	}

	if cfg.AuditConsumer && cfg.AMQPURL != "" {
		stopAudit, err := startAudit(ctx, cfg, zl)
		if err != nil {
			return err
		}
		defer stopAudit()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(zl))

	h := handler.NewBookingHandler(svc, zl)
	router.RegisterRoutes(e)
	router.RegisterBookings(e, h, cfg.JWTSecret, limiter)
	router.RegisterAdmin(e, h, cfg.JWTSecret)

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		zl.Warn("http shutdown", zap.Error(err))
	}
	svc.Wait()
	if err := shutdownTracing(sctx); err != nil {
		zl.Warn("telemetry shutdown", zap.Error(err))
	}
	return nil
}

func openStore(cfg config.Config, zl *zap.Logger) (store.Store, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		m := store.NewMemory()
		if cfg.SeedFile != "" {
			f, err := os.Open(cfg.SeedFile)
			if err != nil {
				return nil, nil, fmt.Errorf("open seed: %w", err)
			}
			defer f.Close()
			if err := m.LoadSeed(f); err != nil {
				return nil, nil, fmt.Errorf("load seed %s: %w", cfg.SeedFile, err)
			}
		}
		zl.Warn("using in-memory store; bookings are lost on restart")
		return m, func() {}, nil
	}

	db, err := database.Open(database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	return repository.NewStore(db), func() { _ = db.Close() }, nil
}

// startAudit runs the audit consumer until ctx ends. The returned func
// waits for it and closes the log file.
func startAudit(ctx context.Context, cfg config.Config, zl *zap.Logger) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.AuditLogPath), 0o755); err != nil {
		return nil, fmt.Errorf("audit log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.AuditLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}
	c := &queue.Consumer{URL: cfg.AMQPURL, Queue: cfg.EventsQueue, Out: f, Log: zl.Named("audit")}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zl.Error("audit consumer stopped", zap.Error(err))
		}
	}()
	return func() {
		<-done
		_ = f.Close()
	}, nil
}
