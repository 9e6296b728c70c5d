package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/irmandades/ghala-backend/internal/events"
	"github.com/irmandades/ghala-backend/internal/inventory"
	"github.com/irmandades/ghala-backend/internal/locations"
	"github.com/irmandades/ghala-backend/internal/members"
	"github.com/irmandades/ghala-backend/internal/messages"
	"github.com/irmandades/ghala-backend/internal/realtime"
	"github.com/irmandades/ghala-backend/internal/snapshot"
	"github.com/irmandades/ghala-backend/internal/treasury"
	"github.com/irmandades/ghala-backend/pkg/config"
	"github.com/irmandades/ghala-backend/pkg/db"
	"github.com/irmandades/ghala-backend/pkg/logger"
	"github.com/irmandades/ghala-backend/pkg/pubsub"
)

// The worker tails the change feed and rebuilds the dashboard snapshot on
// every mutation, so a warm export is always one read away.
func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if !cfg.PubSub.Enabled(cfg.GCP) {
		logg.Error(context.Background(), "change feed not configured, worker has nothing to do", nil)
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	assembler, err := snapshot.NewAssembler(
		members.NewRepository(dbClient.DB()),
		inventory.NewRepository(dbClient.DB()),
		events.NewRepository(dbClient.DB()),
		treasury.NewRepository(dbClient.DB()),
		messages.NewRepository(dbClient.DB()),
		locations.NewRepository(dbClient.DB()),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot assembler", err)
		os.Exit(1)
	}

	handler := func(ctx context.Context, change realtime.Change) error {
		snap, err := assembler.Assemble(ctx)
		if err != nil {
			return err
		}
		logg.Info(logg.WithFields(ctx, map[string]any{
			"table":     change.Table,
			"entity_id": change.EntityID,
			"action":    string(change.Action),
			"members":   len(snap.Members),
			"events":    len(snap.Events),
		}), "snapshot refreshed")
		return nil
	}

	watcher, err := realtime.NewWatcher(pubsubClient.ChangesSubscription(), handler, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create change watcher", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting worker")

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "worker shutting down gracefully")
}
