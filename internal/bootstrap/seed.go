package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/internal/events"
	"github.com/irmandades/ghala-backend/internal/inventory"
	"github.com/irmandades/ghala-backend/internal/locations"
	"github.com/irmandades/ghala-backend/internal/members"
	"github.com/irmandades/ghala-backend/internal/messages"
	"github.com/irmandades/ghala-backend/internal/permissions"
	"github.com/irmandades/ghala-backend/internal/treasury"
	"github.com/irmandades/ghala-backend/pkg/config"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	"github.com/irmandades/ghala-backend/pkg/logger"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Seeder fills empty tables with the club's default dataset so a fresh
// install boots with a usable dashboard. Tables that already hold rows are
// left untouched.
type Seeder struct {
	locations   locations.Repository
	permissions permissions.Repository
	members     members.Repository
	products    inventory.Repository
	events      events.Repository
	treasury    treasury.Repository
	messages    messages.Repository
	runner      TxRunner
	club        config.ClubConfig
	logg        *logger.Logger
}

// NewSeeder wires a default-dataset seeder.
func NewSeeder(
	locationsRepo locations.Repository,
	permissionsRepo permissions.Repository,
	membersRepo members.Repository,
	productsRepo inventory.Repository,
	eventsRepo events.Repository,
	treasuryRepo treasury.Repository,
	messagesRepo messages.Repository,
	runner TxRunner,
	club config.ClubConfig,
	logg *logger.Logger,
) (*Seeder, error) {
	if locationsRepo == nil || permissionsRepo == nil || membersRepo == nil ||
		productsRepo == nil || eventsRepo == nil || treasuryRepo == nil ||
		messagesRepo == nil {
		return nil, fmt.Errorf("all seed repositories required")
	}
	if runner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &Seeder{
		locations:   locationsRepo,
		permissions: permissionsRepo,
		members:     membersRepo,
		products:    productsRepo,
		events:      eventsRepo,
		treasury:    treasuryRepo,
		messages:    messagesRepo,
		runner:      runner,
		club:        club,
		logg:        logg,
	}, nil
}

// Seed runs all table seeds in one transaction.
func (s *Seeder) Seed(ctx context.Context) error {
	return s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		seededLocations, err := s.seedLocations(ctx, tx)
		if err != nil {
			return err
		}
		if err := s.seedRoleDefinitions(ctx, tx); err != nil {
			return err
		}
		seededMembers, err := s.seedMembers(ctx, tx)
		if err != nil {
			return err
		}
		if err := s.seedProducts(ctx, tx); err != nil {
			return err
		}
		if err := s.seedEvents(ctx, tx, seededMembers, seededLocations); err != nil {
			return err
		}
		if err := s.seedTransactions(ctx, tx); err != nil {
			return err
		}
		return s.seedMessages(ctx, tx, seededMembers)
	})
}

func (s *Seeder) seedLocations(ctx context.Context, tx *gorm.DB) ([]models.Location, error) {
	repo := s.locations.WithTx(tx)
	existing, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking locations: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	defaults := []models.Location{
		{ID: uuid.New(), Name: "Comedor Principal", Capacity: 40},
		{ID: uuid.New(), Name: "Txoko (Cocina)", Capacity: 10},
		{ID: uuid.New(), Name: "Terraza Jardín", Capacity: 25},
		{ID: uuid.New(), Name: "Sala de Juntas", Capacity: 8},
	}
	for i := range defaults {
		if err := repo.Create(ctx, &defaults[i]); err != nil {
			return nil, fmt.Errorf("seeding location %q: %w", defaults[i].Name, err)
		}
	}
	s.info(ctx, "seeded default locations")
	return defaults, nil
}

func (s *Seeder) seedRoleDefinitions(ctx context.Context, tx *gorm.DB) error {
	repo := s.permissions.WithTx(tx)
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("checking role definitions: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	// Board roles hold every capability; regular members can run events
	// and touch stock but stay out of finance and settings.
	board := func(role enums.MemberRole) models.RoleDefinition {
		return models.RoleDefinition{
			Role:              role,
			ManageEvents:      true,
			ManageMembers:     true,
			ManageInventory:   true,
			ManageFinance:     true,
			ManageSettings:    true,
			ViewSensitiveData: true,
		}
	}
	regular := func(role enums.MemberRole) models.RoleDefinition {
		return models.RoleDefinition{
			Role:            role,
			ManageEvents:    true,
			ManageInventory: true,
		}
	}

	defaults := []models.RoleDefinition{
		board(enums.MemberRolePresident),
		board(enums.MemberRoleTreasurer),
		board(enums.MemberRoleSecretary),
		regular(enums.MemberRoleMember),
		regular(enums.MemberRoleUser),
	}
	for i := range defaults {
		if err := repo.Upsert(ctx, &defaults[i]); err != nil {
			return fmt.Errorf("seeding role definition %q: %w", defaults[i].Role, err)
		}
	}
	s.info(ctx, "seeded default role definitions")
	return nil
}

func (s *Seeder) seedMembers(ctx context.Context, tx *gorm.DB) ([]models.Member, error) {
	repo := s.members.WithTx(tx)
	existing, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking members: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	// The seed PIN is the last four digits of the phone number.
	demoMember := func(name, dni, phone, email string, role enums.MemberRole) models.Member {
		return models.Member{
			ID:              uuid.New(),
			FullName:        name,
			DNI:             dni,
			Email:           email,
			Phone:           phone,
			Address:         "Sede Social Ghala",
			IBAN:            "ES91 1234 5678 9012 3456 7890",
			Status:          enums.MemberStatusActive,
			JoinDate:        time.Now().UTC(),
			Role:            role,
			PIN:             phone[len(phone)-4:],
			DocumentsSigned: true,
		}
	}

	defaults := []models.Member{
		demoMember("Anxo Bernárdez", "12345678A", "600000628", "anxo@ghala.org", enums.MemberRolePresident),
		demoMember("Sabela Rey", "87654321B", "600002222", "sabela@ghala.org", enums.MemberRoleTreasurer),
		demoMember("Iago Montes", "11223344C", "600003333", "iago@ghala.org", enums.MemberRoleMember),
		demoMember("Socia Demo", "44332211D", "600004444", "demo1@ghala.org", enums.MemberRoleMember),
	}
	for i := range defaults {
		if err := repo.Create(ctx, &defaults[i]); err != nil {
			return nil, fmt.Errorf("seeding member %q: %w", defaults[i].FullName, err)
		}
	}
	s.info(ctx, "seeded default members")
	return defaults, nil
}

func (s *Seeder) seedProducts(ctx context.Context, tx *gorm.DB) error {
	repo := s.products.WithTx(tx)
	existing, err := repo.List(ctx, true)
	if err != nil {
		return fmt.Errorf("checking products: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := []models.Product{
		{
			ID: uuid.New(), Name: "Estrella Galicia 0,33l",
			Category: enums.ProductCategoryBeverage, Unit: "Botella",
			CurrentStock: 48, MinStock: 24, EmergencyStock: 12,
			CostPrice: decimal.RequireFromString("0.80"), SalePrice: decimal.RequireFromString("1.50"),
			Provider: "Distribuciones Rías Baixas", IsActive: true,
		},
		{
			ID: uuid.New(), Name: "Viño Branco Albariño",
			Category: enums.ProductCategoryBeverage, Unit: "Botella",
			CurrentStock: 12, MinStock: 6, EmergencyStock: 3,
			CostPrice: decimal.RequireFromString("4.50"), SalePrice: decimal.RequireFromString("9.00"),
			Provider: "Adega Local", IsActive: true,
		},
		{
			ID: uuid.New(), Name: "Café en Grán 1kg",
			Category: enums.ProductCategoryFood, Unit: "Paquete",
			CurrentStock: 5, MinStock: 2, EmergencyStock: 1,
			CostPrice: decimal.RequireFromString("12.00"), SalePrice: decimal.RequireFromString("15.00"),
			Provider: "Tostadeiro Galego", IsActive: true,
		},
		{
			ID: uuid.New(), Name: "Auga Mineral 0,5l",
			Category: enums.ProductCategoryBeverage, Unit: "Botella",
			CurrentStock: 20, MinStock: 10, EmergencyStock: 5,
			CostPrice: decimal.RequireFromString("0.30"), SalePrice: decimal.RequireFromString("1.00"),
			Provider: "Mondariz", IsActive: true,
		},
	}
	for i := range defaults {
		if err := repo.Create(ctx, &defaults[i]); err != nil {
			return fmt.Errorf("seeding product %q: %w", defaults[i].Name, err)
		}
	}
	s.info(ctx, "seeded default products")
	return nil
}

func (s *Seeder) seedEvents(ctx context.Context, tx *gorm.DB, seededMembers []models.Member, seededLocations []models.Location) error {
	if len(seededMembers) == 0 || len(seededLocations) == 0 {
		return nil
	}
	repo := s.events.WithTx(tx)
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("checking events: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	organizer := seededMembers[0]
	attendees := pq.StringArray{}
	for i, member := range seededMembers {
		if i >= 3 {
			break
		}
		attendees = append(attendees, member.ID.String())
	}

	guestCount := 5
	welcome := models.Event{
		ID:            uuid.New(),
		Title:         "Cea de Benvida",
		Date:          time.Now().UTC().AddDate(0, 1, 0),
		OrganizerID:   organizer.ID,
		AttendeeIDs:   attendees,
		GuestCount:    guestCount,
		ZoneID:        seededLocations[0].ID,
		Status:        enums.EventStatusScheduled,
		TotalCost:     s.club.GuestFee.Mul(decimal.NewFromInt(int64(guestCount))),
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMethod: enums.PaymentMethodNone,
	}
	if err := repo.Create(ctx, &welcome); err != nil {
		return fmt.Errorf("seeding event %q: %w", welcome.Title, err)
	}
	s.info(ctx, "seeded default event")
	return nil
}

func (s *Seeder) seedTransactions(ctx context.Context, tx *gorm.DB) error {
	repo := s.treasury.WithTx(tx)
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("checking transactions: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now().UTC()
	defaults := []models.Transaction{
		{
			ID: uuid.New(), Date: now.AddDate(0, -2, 0),
			Description: "Fondo Inicial Irmandade",
			Amount:      decimal.RequireFromString("1500.00"),
			Category:    enums.TransactionCategoryOther,
			IsReconciled: true, PaymentMethod: enums.PaymentMethodCash,
		},
		{
			ID: uuid.New(), Date: now.AddDate(0, -1, -15),
			Description: "Compra Bebidas Distribuidor",
			Amount:      decimal.RequireFromString("-250.00"),
			Category:    enums.TransactionCategorySuppliesPurchase,
			IsReconciled: true, PaymentMethod: enums.PaymentMethodTransfer,
		},
		{
			ID: uuid.New(), Date: now.AddDate(0, -1, 0),
			Description: "Recibo Luz",
			Amount:      decimal.RequireFromString("-85.20"),
			Category:    enums.TransactionCategoryUtilities,
			PaymentMethod: enums.PaymentMethodTransfer,
		},
	}
	for i := range defaults {
		if err := repo.Create(ctx, &defaults[i]); err != nil {
			return fmt.Errorf("seeding transaction %q: %w", defaults[i].Description, err)
		}
	}
	s.info(ctx, "seeded default transactions")
	return nil
}

func (s *Seeder) seedMessages(ctx context.Context, tx *gorm.DB, seededMembers []models.Member) error {
	if len(seededMembers) < 2 {
		return nil
	}
	repo := s.messages.WithTx(tx)
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("checking messages: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now().UTC()
	defaults := []models.UserMessage{
		{
			ID:       uuid.New(),
			SenderID: seededMembers[1].ID,
			Body:     "Boas a todas! Alguén sabe onde quedou a chave da bodega?",
			SentAt:   now.Add(-time.Hour),
		},
		{
			ID:       uuid.New(),
			SenderID: seededMembers[0].ID,
			Body:     "Está colgada detrás da porta da cociña, Sabela.",
			IsRead:   true,
			SentAt:   now,
		},
	}
	for i := range defaults {
		if err := repo.Create(ctx, &defaults[i]); err != nil {
			return fmt.Errorf("seeding message: %w", err)
		}
	}
	s.info(ctx, "seeded default messages")
	return nil
}

func (s *Seeder) info(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Info(ctx, msg)
	}
}
