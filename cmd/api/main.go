package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/hongnam/internal/adapters/device"
	"github.com/samirrijal/hongnam/internal/adapters/http"
	"github.com/samirrijal/hongnam/internal/adapters/memcache"
	"github.com/samirrijal/hongnam/internal/adapters/memory"
	natsadapter "github.com/samirrijal/hongnam/internal/adapters/nats"
	"github.com/samirrijal/hongnam/internal/adapters/valkey"
	"github.com/samirrijal/hongnam/internal/core/domain"
	"github.com/samirrijal/hongnam/internal/core/ports"
	"github.com/samirrijal/hongnam/internal/core/usecases"
	"github.com/samirrijal/hongnam/internal/pkg/config"
	"github.com/samirrijal/hongnam/internal/pkg/logging"
	"github.com/samirrijal/hongnam/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("hongnam-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup("hongnam-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Store
	seed := memory.DemoSeed(time.Now())
	if cfg.Seed.Path != "" {
		seed, err = memory.LoadSeed(cfg.Seed.Path, time.Now())
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
	}
	repo := memory.NewRestroomRepo(seed)
	slog.Info("store seeded", "restrooms", repo.Len())

	// Cache: shared Valkey when configured, in-process otherwise
	var cache ports.CacheService
	if cfg.Valkey.Addr != "" {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, using in-process cache", "error", err)
		} else {
			defer vc.Close()
			cache = vc
		}
	}
	if cache == nil {
		cache = memcache.New(
			time.Duration(cfg.Cache.DefaultTTL)*time.Second,
			time.Duration(cfg.Cache.CleanupInterval)*time.Second,
		)
	}

	// NATS
	var (
		publisher ports.EventPublisher
		natsConn  *nats.Conn
	)
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}

		// Raw NATS connection for WebSocket relay
		natsConn, err = natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer natsConn.Close()
		}
	}

	// Use cases
	restroomSvc := usecases.NewRestroomService(repo, publisher, cache)

	var sess *usecases.Session
	navigator := device.NewMapsLink(cfg.Maps.BaseURL, func(ctx context.Context, name, link string) {
		sess.Notify(domain.Notice{
			Kind:    domain.NoticeNavigation,
			Title:   name,
			Message: "Open directions in your map app.",
			URL:     link,
		})
	})
	locator := device.StaticLocator{
		Granted:  cfg.Location.Granted,
		Position: domain.GeoPoint{Lat: cfg.Location.Lat, Lon: cfg.Location.Lon},
	}
	// Photos come from the client; without a reported result the picker is
	// unavailable and the request is denied.
	sess = usecases.NewSession(restroomSvc, locator, nil, navigator)
	defer sess.Close()

	deps := &http.Dependencies{
		Restrooms: restroomSvc,
		Session:   sess,
		NATS:      natsConn,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Hongnam API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
