package members

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/internal/treasury"
	"github.com/irmandades/ghala-backend/pkg/config"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubRepo struct {
	members map[uuid.UUID]*models.Member
	err     error
}

func newStubRepo(members ...*models.Member) *stubRepo {
	byID := map[uuid.UUID]*models.Member{}
	for _, member := range members {
		byID[member.ID] = member
	}
	return &stubRepo{members: byID}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, member *models.Member) error {
	if s.err != nil {
		return s.err
	}
	s.members[member.ID] = member
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	member, ok := s.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *member
	return &copied, nil
}

func (s *stubRepo) FindByPIN(ctx context.Context, pin string) (*models.Member, error) {
	for _, member := range s.members {
		if member.PIN == pin && member.Status == enums.MemberStatusActive {
			copied := *member
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByDNI(ctx context.Context, dni string) (*models.Member, error) {
	for _, member := range s.members {
		if member.DNI == dni {
			copied := *member
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	for _, member := range s.members {
		members = append(members, *member)
	}
	return members, nil
}

func (s *stubRepo) ListByStatus(ctx context.Context, status enums.MemberStatus) ([]models.Member, error) {
	var members []models.Member
	for _, member := range s.members {
		if member.Status == status {
			members = append(members, *member)
		}
	}
	return members, nil
}

func (s *stubRepo) Update(ctx context.Context, member *models.Member) error {
	s.members[member.ID] = member
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.members, id)
	return nil
}

type stubTreasuryRepo struct {
	created []models.Transaction
}

func (s *stubTreasuryRepo) WithTx(tx *gorm.DB) treasury.Repository { return s }

func (s *stubTreasuryRepo) Create(ctx context.Context, transaction *models.Transaction) error {
	s.created = append(s.created, *transaction)
	return nil
}

func (s *stubTreasuryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTreasuryRepo) List(ctx context.Context) ([]models.Transaction, error) {
	return s.created, nil
}

func (s *stubTreasuryRepo) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]models.Transaction, error) {
	return nil, nil
}

func (s *stubTreasuryRepo) Update(ctx context.Context, transaction *models.Transaction) error {
	return nil
}

func (s *stubTreasuryRepo) SumAmounts(ctx context.Context, reconciledOnly bool) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type stubRunner struct{}

func (stubRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func validInput() MemberInput {
	return MemberInput{
		FullName: "Carmen Otero",
		DNI:      "12345678A",
		Email:    "carmen@example.com",
		Status:   enums.MemberStatusActive,
		Role:     enums.MemberRoleMember,
		PIN:      "4321",
	}
}

func activeMember(pin string, fee *decimal.Decimal) *models.Member {
	return &models.Member{
		ID:         uuid.New(),
		FullName:   "Carmen Otero",
		DNI:        "12345678A",
		Email:      "carmen@example.com",
		Status:     enums.MemberStatusActive,
		JoinDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Role:       enums.MemberRoleMember,
		PIN:        pin,
		MonthlyFee: fee,
	}
}

func newTestService(t *testing.T, repo *stubRepo, treasuryRepo *stubTreasuryRepo) Service {
	t.Helper()
	club := config.ClubConfig{
		GuestFee:   decimal.RequireFromString("3.00"),
		MonthlyFee: decimal.RequireFromString("30.00"),
	}
	svc, err := NewService(repo, treasuryRepo, stubRunner{}, club)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateMemberNormalizesFields(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubTreasuryRepo{})

	input := validInput()
	input.DNI = " 12345678a "
	input.Email = " Carmen@Example.com "
	member, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if member.DNI != "12345678A" {
		t.Fatalf("expected normalized dni, got %q", member.DNI)
	}
	if member.Email != "carmen@example.com" {
		t.Fatalf("expected normalized email, got %q", member.Email)
	}
	if member.JoinDate.IsZero() {
		t.Fatal("expected join date defaulted")
	}
}

func TestCreateMemberRejectsBadPIN(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubTreasuryRepo{})

	for _, pin := range []string{"", "123", "12345", "abcd"} {
		input := validInput()
		input.PIN = pin
		_, gotErr := svc.Create(context.Background(), input)
		if gotErr == nil {
			t.Fatalf("expected validation error for pin %q", pin)
		}
		if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation code for pin %q, got %v", pin, gotErr)
		}
	}
}

func TestAuthenticateByPIN(t *testing.T) {
	member := activeMember("4321", nil)
	svc := newTestService(t, newStubRepo(member), &stubTreasuryRepo{})

	found, err := svc.Authenticate(context.Background(), "4321")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if found.ID != member.ID {
		t.Fatalf("unexpected member %s", found.ID)
	}
}

func TestAuthenticateUnknownPIN(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubTreasuryRepo{})

	_, gotErr := svc.Authenticate(context.Background(), "0000")
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", gotErr)
	}
}

func TestAuthenticateInactiveMemberRejected(t *testing.T) {
	member := activeMember("4321", nil)
	member.Status = enums.MemberStatusInactive
	svc := newTestService(t, newStubRepo(member), &stubTreasuryRepo{})

	_, gotErr := svc.Authenticate(context.Background(), "4321")
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", gotErr)
	}
}

func TestChargeMonthlyFeesUsesOverride(t *testing.T) {
	override := decimal.RequireFromString("45.00")
	defaulted := activeMember("1111", nil)
	custom := activeMember("2222", &override)
	custom.ID = uuid.New()
	inactive := activeMember("3333", nil)
	inactive.ID = uuid.New()
	inactive.Status = enums.MemberStatusInactive

	treasuryRepo := &stubTreasuryRepo{}
	svc := newTestService(t, newStubRepo(defaulted, custom, inactive), treasuryRepo)

	period := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	result, err := svc.ChargeMonthlyFees(context.Background(), period)
	if err != nil {
		t.Fatalf("charge fees: %v", err)
	}
	if result.Charged != 2 {
		t.Fatalf("expected 2 members charged, got %d", result.Charged)
	}
	if !result.Total.Equal(decimal.RequireFromString("75.00")) {
		t.Fatalf("expected total 75.00, got %s", result.Total)
	}
	if result.Period != "2026-06" {
		t.Fatalf("unexpected period %s", result.Period)
	}
	if len(treasuryRepo.created) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(treasuryRepo.created))
	}
	for _, entry := range treasuryRepo.created {
		if entry.Category != enums.TransactionCategoryMembershipFee {
			t.Fatalf("unexpected category %s", entry.Category)
		}
		if entry.RelatedMemberID == nil {
			t.Fatal("expected member back-reference")
		}
	}
}

func TestDeleteMissingMember(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubTreasuryRepo{})

	gotErr := svc.Delete(context.Background(), uuid.New())
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", gotErr)
	}
}
