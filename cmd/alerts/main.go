package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/hongnam/internal/adapters/nats"
	"github.com/samirrijal/hongnam/internal/core/usecases"
	"github.com/samirrijal/hongnam/internal/pkg/config"
	"github.com/samirrijal/hongnam/internal/pkg/logging"
)

// alerts consumes check-in, report and restroom events from JetStream and logs the
// ones that need an operator.
func main() {
	cfg, err := config.Load("hongnam-alerts")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.NATS.URL == "" {
		log.Fatal("nats.url is required")
	}

	logger := logging.Setup("hongnam-alerts", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Make sure the streams exist even when the API has not started yet
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	pub.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	alerts := usecases.NewAlertService(logger)
	if err := sub.SubscribeCheckIns(ctx, alerts.HandleCheckIn); err != nil {
		log.Fatalf("subscribe check-ins: %v", err)
	}
	if err := sub.SubscribeRestroomsAdded(ctx, alerts.HandleRestroomAdded); err != nil {
		log.Fatalf("subscribe restrooms: %v", err)
	}
	if err := sub.SubscribeReports(ctx, alerts.HandleReport); err != nil {
		log.Fatalf("subscribe reports: %v", err)
	}

	slog.Info("alerts consumer running", "nats", cfg.NATS.URL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutting down", "signal", sig.String())
}
