package members

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/internal/treasury"
	"github.com/irmandades/ghala-backend/pkg/config"
	"github.com/irmandades/ghala-backend/pkg/db"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var pinRe = regexp.MustCompile(`^\d{4}$`)

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the member roster and membership billing.
type Service interface {
	Create(ctx context.Context, input MemberInput) (*models.Member, error)
	Update(ctx context.Context, id uuid.UUID, input MemberInput) (*models.Member, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	List(ctx context.Context) ([]models.Member, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Authenticate(ctx context.Context, pin string) (*models.Member, error)
	ChargeMonthlyFees(ctx context.Context, period time.Time) (*FeeChargeResult, error)
}

type service struct {
	repo     Repository
	treasury treasury.Repository
	runner   TxRunner
	club     config.ClubConfig
}

// MemberInput captures the editable fields of a member record.
type MemberInput struct {
	FullName        string             `json:"full_name"`
	DNI             string             `json:"dni"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	Address         string             `json:"address"`
	IBAN            string             `json:"iban"`
	MonthlyFee      *decimal.Decimal   `json:"monthly_fee"`
	Status          enums.MemberStatus `json:"status"`
	JoinDate        time.Time          `json:"join_date"`
	Role            enums.MemberRole   `json:"role"`
	PIN             string             `json:"pin"`
	AvatarURL       string             `json:"avatar_url"`
	Allergies       string             `json:"allergies"`
	Notes           string             `json:"notes"`
	DocumentsSigned bool               `json:"documents_signed"`
}

// FeeChargeResult summarizes one monthly fee run.
type FeeChargeResult struct {
	Period  string          `json:"period"`
	Charged int             `json:"charged"`
	Total   decimal.Decimal `json:"total"`
}

func (i MemberInput) validate() error {
	if strings.TrimSpace(i.FullName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	if strings.TrimSpace(i.DNI) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "dni is required")
	}
	if !strings.Contains(i.Email, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	if !i.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid member status %q", i.Status))
	}
	if !i.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid member role %q", i.Role))
	}
	if !pinRe.MatchString(i.PIN) {
		return pkgerrors.New(pkgerrors.CodeValidation, "pin must be exactly 4 digits")
	}
	if i.MonthlyFee != nil && i.MonthlyFee.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "monthly fee cannot be negative")
	}
	return nil
}

// NewService wires a members service with its collaborators.
func NewService(repo Repository, treasuryRepo treasury.Repository, runner TxRunner, club config.ClubConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("members repository required")
	}
	if treasuryRepo == nil {
		return nil, fmt.Errorf("treasury repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		repo:     repo,
		treasury: treasuryRepo,
		runner:   runner,
		club:     club,
	}, nil
}

func (s *service) Create(ctx context.Context, input MemberInput) (*models.Member, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	joinDate := input.JoinDate
	if joinDate.IsZero() {
		joinDate = time.Now().UTC()
	}

	member := &models.Member{
		ID:              uuid.New(),
		FullName:        strings.TrimSpace(input.FullName),
		DNI:             strings.ToUpper(strings.TrimSpace(input.DNI)),
		Email:           strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:           strings.TrimSpace(input.Phone),
		Address:         strings.TrimSpace(input.Address),
		IBAN:            strings.TrimSpace(input.IBAN),
		MonthlyFee:      input.MonthlyFee,
		Status:          input.Status,
		JoinDate:        joinDate,
		Role:            input.Role,
		PIN:             input.PIN,
		AvatarURL:       strings.TrimSpace(input.AvatarURL),
		Allergies:       strings.TrimSpace(input.Allergies),
		Notes:           strings.TrimSpace(input.Notes),
		DocumentsSigned: input.DocumentsSigned,
	}

	if err := s.repo.Create(ctx, member); err != nil {
		if db.IsUniqueViolation(err, "members_dni_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a member with that dni already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create member")
	}
	return member, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input MemberInput) (*models.Member, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	member, err := s.loadMember(ctx, id)
	if err != nil {
		return nil, err
	}

	member.FullName = strings.TrimSpace(input.FullName)
	member.DNI = strings.ToUpper(strings.TrimSpace(input.DNI))
	member.Email = strings.ToLower(strings.TrimSpace(input.Email))
	member.Phone = strings.TrimSpace(input.Phone)
	member.Address = strings.TrimSpace(input.Address)
	member.IBAN = strings.TrimSpace(input.IBAN)
	member.MonthlyFee = input.MonthlyFee
	member.Status = input.Status
	if !input.JoinDate.IsZero() {
		member.JoinDate = input.JoinDate
	}
	member.Role = input.Role
	member.PIN = input.PIN
	member.AvatarURL = strings.TrimSpace(input.AvatarURL)
	member.Allergies = strings.TrimSpace(input.Allergies)
	member.Notes = strings.TrimSpace(input.Notes)
	member.DocumentsSigned = input.DocumentsSigned

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update member")
	}
	return member, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}
	return s.loadMember(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.Member, error) {
	members, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	return members, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}
	if _, err := s.loadMember(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete member")
	}
	return nil
}

// Authenticate resolves an active member by PIN. The same unauthorized
// answer covers unknown and inactive members.
func (s *service) Authenticate(ctx context.Context, pin string) (*models.Member, error) {
	if !pinRe.MatchString(pin) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pin must be exactly 4 digits")
	}

	member, err := s.repo.FindByPIN(ctx, pin)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup member by pin")
	}
	return member, nil
}

// ChargeMonthlyFees books one membership fee per active member for the
// period, using the member override when present.
func (s *service) ChargeMonthlyFees(ctx context.Context, period time.Time) (*FeeChargeResult, error) {
	if period.IsZero() {
		period = time.Now().UTC()
	}
	periodKey := period.Format("2006-01")

	result := &FeeChargeResult{Period: periodKey, Total: decimal.Zero}
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		active, err := s.repo.WithTx(tx).ListByStatus(ctx, enums.MemberStatusActive)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active members")
		}

		treasuryRepo := s.treasury.WithTx(tx)
		for i := range active {
			member := active[i]
			fee := s.club.MonthlyFee
			if member.MonthlyFee != nil {
				fee = *member.MonthlyFee
			}
			if fee.IsZero() {
				continue
			}

			entry := &models.Transaction{
				ID:              uuid.New(),
				Date:            period,
				Description:     fmt.Sprintf("Membership fee %s: %s", periodKey, member.FullName),
				Amount:          fee,
				Category:        enums.TransactionCategoryMembershipFee,
				RelatedMemberID: &member.ID,
				PaymentMethod:   enums.PaymentMethodTransfer,
			}
			if err := treasuryRepo.Create(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "book membership fee")
			}
			result.Charged++
			result.Total = result.Total.Add(fee)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) loadMember(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	return member, nil
}
