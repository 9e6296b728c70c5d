package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/irmandades/ghala-backend/api/controllers"
	"github.com/irmandades/ghala-backend/api/middleware"
	"github.com/irmandades/ghala-backend/internal/auth"
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
	"github.com/irmandades/ghala-backend/pkg/enums"
	"github.com/irmandades/ghala-backend/pkg/logger"
	"github.com/irmandades/ghala-backend/pkg/redis"
)

// NewRouter assembles the full HTTP surface of the dashboard API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	pingers map[string]db.Pinger,
	redisClient *redis.Client,
	gate permissions.Gate,
	notifier realtime.Notifier,
	snapshotAssembler *snapshot.Assembler,
	authService auth.Service,
	membersService members.Service,
	inventoryService inventory.Service,
	eventsService events.Service,
	treasuryService treasury.Service,
	messagesService messages.Service,
	locationsService locations.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginPinLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.Auth(cfg.JWT, redisClient, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, redisClient, logg))

		r.Get("/export", controllers.SnapshotExport(snapshotAssembler, logg))

		r.Route("/members", func(r chi.Router) {
			r.Get("/", controllers.MemberList(membersService, gate, logg))
			r.Get("/{memberId}", controllers.MemberDetail(membersService, gate, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(gate, enums.CapabilityManageMembers, logg))
				r.Post("/", controllers.MemberCreate(membersService, gate, notifier, logg))
				r.Patch("/{memberId}", controllers.MemberUpdate(membersService, gate, notifier, logg))
				r.Delete("/{memberId}", controllers.MemberDelete(membersService, notifier, logg))
				r.Post("/charge-fees", controllers.MemberChargeFees(membersService, notifier, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(inventoryService, logg))
			r.Get("/low-stock", controllers.ProductLowStock(inventoryService, logg))
			r.Get("/{productId}", controllers.ProductDetail(inventoryService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(gate, enums.CapabilityManageInventory, logg))
				r.Post("/", controllers.ProductCreate(inventoryService, notifier, logg))
				r.Patch("/{productId}", controllers.ProductUpdate(inventoryService, notifier, logg))
				r.Post("/{productId}/deactivate", controllers.ProductDeactivate(inventoryService, notifier, logg))
				r.Post("/{productId}/purchase", controllers.ProductPurchase(inventoryService, notifier, logg))
				r.Post("/{productId}/shrinkage", controllers.ProductShrinkage(inventoryService, notifier, logg))
				r.Post("/{productId}/audit", controllers.ProductAudit(inventoryService, notifier, logg))
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.EventList(eventsService, logg))
			r.Get("/{eventId}", controllers.EventDetail(eventsService, logg))
			r.Get("/{eventId}/transactions", controllers.EventTransactions(treasuryService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(gate, enums.CapabilityManageEvents, logg))
				r.Post("/", controllers.EventCreate(eventsService, notifier, logg))
				r.Patch("/{eventId}", controllers.EventUpdate(eventsService, notifier, logg))
				r.Delete("/{eventId}", controllers.EventDelete(eventsService, notifier, logg))
				r.Post("/{eventId}/consumptions", controllers.EventAddConsumption(eventsService, notifier, logg))
				r.Delete("/{eventId}/consumptions/{consumptionId}", controllers.EventRemoveConsumption(eventsService, notifier, logg))
				r.Post("/{eventId}/finalize", controllers.EventFinalize(eventsService, notifier, logg))
				r.Post("/{eventId}/cancel", controllers.EventCancel(eventsService, notifier, logg))
			})

			// Settlement mints a treasury entry, so it sits with the other
			// ledger writes rather than the event workflow.
			r.With(middleware.RequireCapability(gate, enums.CapabilityManageFinance, logg)).
				Post("/{eventId}/settle", controllers.EventSettle(eventsService, notifier, logg))
		})

		r.Route("/treasury", func(r chi.Router) {
			r.Get("/transactions", controllers.TransactionList(treasuryService, logg))
			r.Get("/transactions/{transactionId}", controllers.TransactionDetail(treasuryService, logg))
			r.Get("/balance", controllers.TreasuryBalance(treasuryService, logg))
			r.Get("/summary", controllers.TreasuryMonthlySummary(treasuryService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(gate, enums.CapabilityManageFinance, logg))
				r.Post("/transactions", controllers.TransactionAppend(treasuryService, notifier, logg))
				r.Patch("/transactions/{transactionId}", controllers.TransactionUpdate(treasuryService, notifier, logg))
				r.Post("/transactions/{transactionId}/reconcile", controllers.TransactionToggleReconciled(treasuryService, notifier, logg))
			})
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", controllers.MessageList(messagesService, logg))
			r.Post("/", controllers.MessageSend(messagesService, notifier, logg))
			r.Post("/{messageId}/read", controllers.MessageMarkRead(messagesService, notifier, logg))
			r.Delete("/{messageId}", controllers.MessageDelete(messagesService, notifier, logg))
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", controllers.LocationList(locationsService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(gate, enums.CapabilityManageSettings, logg))
				r.Post("/", controllers.LocationCreate(locationsService, notifier, logg))
				r.Patch("/{locationId}", controllers.LocationUpdate(locationsService, notifier, logg))
				r.Delete("/{locationId}", controllers.LocationDelete(locationsService, notifier, logg))
			})
		})

		r.Route("/settings/roles", func(r chi.Router) {
			r.Get("/", controllers.RoleDefinitionList(gate, logg))
			r.With(middleware.RequireCapability(gate, enums.CapabilityManageSettings, logg)).
				Patch("/{role}", controllers.RoleDefinitionUpdate(gate, notifier, logg))
		})
	})

	return r
}
