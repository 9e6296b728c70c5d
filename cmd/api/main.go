package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/irmandades/ghala-backend/api/routes"
	"github.com/irmandades/ghala-backend/internal/auth"
	"github.com/irmandades/ghala-backend/internal/bootstrap"
	"github.com/irmandades/ghala-backend/internal/events"
	"github.com/irmandades/ghala-backend/internal/inventory"
	"github.com/irmandades/ghala-backend/internal/locations"
	"github.com/irmandades/ghala-backend/internal/members"
	"github.com/irmandades/ghala-backend/internal/messages"
	"github.com/irmandades/ghala-backend/internal/permissions"
	"github.com/irmandades/ghala-backend/internal/realtime"
	"github.com/irmandades/ghala-backend/internal/snapshot"
	"github.com/irmandades/ghala-backend/internal/treasury"
	"github.com/irmandades/ghala-backend/pkg/config"
	"github.com/irmandades/ghala-backend/pkg/db"
	"github.com/irmandades/ghala-backend/pkg/logger"
	"github.com/irmandades/ghala-backend/pkg/metrics"
	"github.com/irmandades/ghala-backend/pkg/migrate"
	"github.com/irmandades/ghala-backend/pkg/pubsub"
	"github.com/irmandades/ghala-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	notifier := realtime.NewNopNotifier()
	pingers := map[string]db.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}
	if cfg.PubSub.Enabled(cfg.GCP) {
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
		notifier = realtime.NewNotifier(pubsubClient.ChangesPublisher(), logg)
		pingers["pubsub"] = pubsubClient
	}

	domainMetrics := metrics.NewDomainMetrics(prometheus.DefaultRegisterer)

	membersRepo := members.NewRepository(dbClient.DB())
	inventoryRepo := inventory.NewRepository(dbClient.DB())
	eventsRepo := events.NewRepository(dbClient.DB())
	treasuryRepo := treasury.NewRepository(dbClient.DB())
	messagesRepo := messages.NewRepository(dbClient.DB())
	locationsRepo := locations.NewRepository(dbClient.DB())
	permissionsRepo := permissions.NewRepository(dbClient.DB())

	gate, err := permissions.NewGate(permissionsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create permission gate", err)
		os.Exit(1)
	}

	membersService, err := members.NewService(membersRepo, treasuryRepo, dbClient, cfg.Club)
	if err != nil {
		logg.Error(context.Background(), "failed to create members service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventoryRepo, treasuryRepo, dbClient, domainMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	eventsService, err := events.NewService(eventsRepo, inventoryService, treasuryRepo, dbClient, cfg.Club, domainMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create events service", err)
		os.Exit(1)
	}

	treasuryService, err := treasury.NewService(treasuryRepo, domainMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create treasury service", err)
		os.Exit(1)
	}

	messagesService, err := messages.NewService(messagesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create messages service", err)
		os.Exit(1)
	}

	locationsService, err := locations.NewService(locationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create locations service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(membersService, redisClient, cfg.JWT, domainMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	snapshotAssembler, err := snapshot.NewAssembler(membersRepo, inventoryRepo, eventsRepo, treasuryRepo, messagesRepo, locationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot assembler", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.SeedDefaults {
		seeder, err := bootstrap.NewSeeder(
			locationsRepo,
			permissionsRepo,
			membersRepo,
			inventoryRepo,
			eventsRepo,
			treasuryRepo,
			messagesRepo,
			dbClient,
			cfg.Club,
			logg,
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create seeder", err)
			os.Exit(1)
		}
		if err := seeder.Seed(context.Background()); err != nil {
			logg.Error(context.Background(), "failed to seed defaults", err)
			os.Exit(1)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			pingers,
			redisClient,
			gate,
			notifier,
			snapshotAssembler,
			authService,
			membersService,
			inventoryService,
			eventsService,
			treasuryService,
			messagesService,
			locationsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
