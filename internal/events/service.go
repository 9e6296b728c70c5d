package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/internal/inventory"
	"github.com/irmandades/ghala-backend/internal/treasury"
	"github.com/irmandades/ghala-backend/pkg/config"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"github.com/irmandades/ghala-backend/pkg/metrics"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service runs the event lifecycle: reservation, consumption tracking, and
// settlement into the treasury ledger.
type Service interface {
	Create(ctx context.Context, input CreateEventInput) (*models.Event, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, input UpdateEventInput) (*models.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	AddProductConsumption(ctx context.Context, eventID, productID uuid.UUID, qty int) (*models.Event, error)
	AddCustomConsumption(ctx context.Context, eventID uuid.UUID, name string, qty int, unitCost decimal.Decimal) (*models.Event, error)
	AddServiceConsumption(ctx context.Context, eventID uuid.UUID, name string, unitCost decimal.Decimal) (*models.Event, error)
	RemoveConsumption(ctx context.Context, eventID, consumptionID uuid.UUID) (*models.Event, error)
	Finalize(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Settle(ctx context.Context, id uuid.UUID, method enums.PaymentMethod, settledBy uuid.UUID) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo      Repository
	inventory inventory.Service
	treasury  treasury.Repository
	runner    TxRunner
	club      config.ClubConfig
	metrics   *metrics.DomainMetrics
}

// CreateEventInput captures a new reservation.
type CreateEventInput struct {
	Title       string      `json:"title"`
	Date        time.Time   `json:"date"`
	OrganizerID uuid.UUID   `json:"organizer_id"`
	AttendeeIDs []uuid.UUID `json:"attendee_ids"`
	GuestCount  int         `json:"guest_count"`
	ZoneID      uuid.UUID   `json:"zone_id"`
}

// UpdateEventInput edits the reservation fields of a pending event.
type UpdateEventInput struct {
	Title       string      `json:"title"`
	Date        time.Time   `json:"date"`
	AttendeeIDs []uuid.UUID `json:"attendee_ids"`
	GuestCount  int         `json:"guest_count"`
	ZoneID      uuid.UUID   `json:"zone_id"`
}

func (i CreateEventInput) validate() error {
	if i.OrganizerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "organizer id is required")
	}
	return validateReservation(i.Title, i.Date, i.ZoneID, i.GuestCount)
}

func (i UpdateEventInput) validate() error {
	return validateReservation(i.Title, i.Date, i.ZoneID, i.GuestCount)
}

func validateReservation(title string, date time.Time, zoneID uuid.UUID, guestCount int) error {
	if strings.TrimSpace(title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event title is required")
	}
	if date.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "event date is required")
	}
	if zoneID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "zone id is required")
	}
	if guestCount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "guest count cannot be negative")
	}
	return nil
}

// NewService wires an event service with its collaborators.
func NewService(
	repo Repository,
	inventorySvc inventory.Service,
	treasuryRepo treasury.Repository,
	runner TxRunner,
	club config.ClubConfig,
	domainMetrics *metrics.DomainMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("events repository required")
	}
	if inventorySvc == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if treasuryRepo == nil {
		return nil, fmt.Errorf("treasury repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		repo:      repo,
		inventory: inventorySvc,
		treasury:  treasuryRepo,
		runner:    runner,
		club:      club,
		metrics:   domainMetrics,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	booked, err := s.repo.ZoneBooked(ctx, input.ZoneID, input.Date, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check zone availability")
	}
	if booked {
		return nil, pkgerrors.New(pkgerrors.CodeZoneConflict, "zone already booked for that date")
	}

	event := &models.Event{
		ID:            uuid.New(),
		Title:         strings.TrimSpace(input.Title),
		Date:          input.Date,
		OrganizerID:   input.OrganizerID,
		AttendeeIDs:   uuidStrings(input.AttendeeIDs),
		GuestCount:    input.GuestCount,
		ZoneID:        input.ZoneID,
		Status:        enums.EventStatusScheduled,
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMethod: enums.PaymentMethodNone,
	}
	event.TotalCost = s.computeTotal(event)

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event")
	}
	return event, nil
}

func (s *service) UpdateDetails(ctx context.Context, id uuid.UUID, input UpdateEventInput) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	event, err := s.loadEvent(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if event.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "settled events cannot be edited")
	}

	booked, err := s.repo.ZoneBooked(ctx, input.ZoneID, input.Date, event.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check zone availability")
	}
	if booked {
		return nil, pkgerrors.New(pkgerrors.CodeZoneConflict, "zone already booked for that date")
	}

	event.Title = strings.TrimSpace(input.Title)
	event.Date = input.Date
	event.AttendeeIDs = uuidStrings(input.AttendeeIDs)
	event.GuestCount = input.GuestCount
	event.ZoneID = input.ZoneID
	event.TotalCost = s.computeTotal(event)

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update event")
	}
	return event, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	return s.loadEvent(ctx, s.repo, id)
}

func (s *service) List(ctx context.Context) ([]models.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}
	return events, nil
}

// AddProductConsumption decrements stock and snapshots the sale price as
// the line's unit cost, all in one transaction.
func (s *service) AddProductConsumption(ctx context.Context, eventID, productID uuid.UUID, qty int) (*models.Event, error) {
	if eventID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id and product id are required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var updated *models.Event
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		event, err := s.loadMutableEvent(ctx, repo, eventID)
		if err != nil {
			return err
		}

		product, err := s.inventory.DecrementStock(ctx, tx, productID, qty)
		if err != nil {
			return err
		}

		unitCost := product.SalePrice
		line := &models.EventConsumption{
			ID:        uuid.New(),
			EventID:   event.ID,
			Type:      enums.ConsumptionTypeProduct,
			ProductID: &product.ID,
			Name:      product.Name,
			Quantity:  qty,
			UnitCost:  unitCost,
			TotalCost: unitCost.Mul(decimal.NewFromInt(int64(qty))),
		}
		if err := repo.AddConsumption(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add consumption")
		}

		event.Consumptions = append(event.Consumptions, *line)
		return s.storeTotal(ctx, repo, event)
	})
	if err != nil {
		return nil, err
	}
	updated, err = s.loadEvent(ctx, s.repo, eventID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) AddCustomConsumption(ctx context.Context, eventID uuid.UUID, name string, qty int, unitCost decimal.Decimal) (*models.Event, error) {
	return s.addStocklessConsumption(ctx, eventID, enums.ConsumptionTypeCustom, name, qty, unitCost)
}

// AddServiceConsumption books a flat service charge; quantity is always one.
func (s *service) AddServiceConsumption(ctx context.Context, eventID uuid.UUID, name string, unitCost decimal.Decimal) (*models.Event, error) {
	return s.addStocklessConsumption(ctx, eventID, enums.ConsumptionTypeService, name, 1, unitCost)
}

func (s *service) addStocklessConsumption(ctx context.Context, eventID uuid.UUID, lineType enums.ConsumptionType, name string, qty int, unitCost decimal.Decimal) (*models.Event, error) {
	if eventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "consumption name is required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit cost cannot be negative")
	}

	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		event, err := s.loadMutableEvent(ctx, repo, eventID)
		if err != nil {
			return err
		}

		line := &models.EventConsumption{
			ID:        uuid.New(),
			EventID:   event.ID,
			Type:      lineType,
			Name:      strings.TrimSpace(name),
			Quantity:  qty,
			UnitCost:  unitCost,
			TotalCost: unitCost.Mul(decimal.NewFromInt(int64(qty))),
		}
		if err := repo.AddConsumption(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add consumption")
		}

		event.Consumptions = append(event.Consumptions, *line)
		return s.storeTotal(ctx, repo, event)
	})
	if err != nil {
		return nil, err
	}
	return s.loadEvent(ctx, s.repo, eventID)
}

// RemoveConsumption deletes a line and, for product lines, returns the
// recorded quantity to stock. A product deleted from the catalog since the
// line was added makes the restock a no-op.
func (s *service) RemoveConsumption(ctx context.Context, eventID, consumptionID uuid.UUID) (*models.Event, error) {
	if eventID == uuid.Nil || consumptionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id and consumption id are required")
	}

	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		event, err := s.loadMutableEvent(ctx, repo, eventID)
		if err != nil {
			return err
		}

		line, err := repo.FindConsumption(ctx, eventID, consumptionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "consumption not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load consumption")
		}

		if line.Type == enums.ConsumptionTypeProduct && line.ProductID != nil {
			if err := s.inventory.IncrementStock(ctx, tx, *line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		if err := repo.DeleteConsumption(ctx, line.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete consumption")
		}

		remaining := event.Consumptions[:0]
		for _, existing := range event.Consumptions {
			if existing.ID != line.ID {
				remaining = append(remaining, existing)
			}
		}
		event.Consumptions = remaining
		return s.storeTotal(ctx, repo, event)
	})
	if err != nil {
		return nil, err
	}
	return s.loadEvent(ctx, s.repo, eventID)
}

func (s *service) Finalize(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.transitionStatus(ctx, id, enums.EventStatusCompleted)
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.transitionStatus(ctx, id, enums.EventStatusCancelled)
}

func (s *service) transitionStatus(ctx context.Context, id uuid.UUID, target enums.EventStatus) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}

	event, err := s.loadEvent(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if event.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "settled events cannot change status")
	}

	event.Status = target
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update event status")
	}
	return event, nil
}

// Settle freezes the event total and books it as treasury income. The
// pending to paid transition happens exactly once.
func (s *service) Settle(ctx context.Context, id uuid.UUID, method enums.PaymentMethod, settledBy uuid.UUID) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", method))
	}
	if settledBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settler id is required")
	}

	var settled *models.Event
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		event, err := s.loadEvent(ctx, repo, id)
		if err != nil {
			return err
		}
		if event.PaymentStatus != enums.PaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "event already settled")
		}

		now := time.Now().UTC()
		event.TotalCost = s.computeTotal(event)
		event.PaymentStatus = enums.PaymentStatusPaid
		event.PaymentMethod = method
		event.SettledByID = &settledBy
		event.SettlementDate = &now
		if err := repo.Update(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update event")
		}

		entry := &models.Transaction{
			ID:             uuid.New(),
			Date:           now,
			Description:    fmt.Sprintf("Event settlement: %s", event.Title),
			Amount:         event.TotalCost,
			Category:       enums.TransactionCategoryEvent,
			RelatedEventID: &event.ID,
			PaymentMethod:  method,
		}
		if err := s.treasury.WithTx(tx).Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "book settlement income")
		}

		settled = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncSettlement(method.String())
	return settled, nil
}

// Delete discards the event and its owned consumption lines. Stock is not
// returned; cancellation before deletion is the path for that.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	if _, err := s.loadEvent(ctx, s.repo, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete event")
	}
	return nil
}

func (s *service) computeTotal(event *models.Event) decimal.Decimal {
	total := decimal.Zero
	for _, line := range event.Consumptions {
		total = total.Add(line.TotalCost)
	}
	guestFees := s.club.GuestFee.Mul(decimal.NewFromInt(int64(event.GuestCount)))
	return total.Add(guestFees)
}

func (s *service) storeTotal(ctx context.Context, repo Repository, event *models.Event) error {
	event.TotalCost = s.computeTotal(event)
	if err := repo.Update(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store event total")
	}
	return nil
}

func (s *service) loadEvent(ctx context.Context, repo Repository, id uuid.UUID) (*models.Event, error) {
	event, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	return event, nil
}

func (s *service) loadMutableEvent(ctx context.Context, repo Repository, id uuid.UUID) (*models.Event, error) {
	event, err := s.loadEvent(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if event.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "settled events cannot be modified")
	}
	return event, nil
}

func uuidStrings(ids []uuid.UUID) pq.StringArray {
	if len(ids) == 0 {
		return nil
	}
	out := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
