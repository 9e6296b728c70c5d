package permissions

import (
	"context"
	"errors"
	"testing"

	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubRepo struct {
	definition *models.RoleDefinition
	list       []models.RoleDefinition
	err        error
	upserted   *models.RoleDefinition
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) FindByRole(ctx context.Context, role enums.MemberRole) (*models.RoleDefinition, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.definition == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.definition, nil
}

func (s *stubRepo) List(ctx context.Context) ([]models.RoleDefinition, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func (s *stubRepo) Upsert(ctx context.Context, definition *models.RoleDefinition) error {
	if s.err != nil {
		return s.err
	}
	s.upserted = definition
	return nil
}

func TestNewGateRequiresRepo(t *testing.T) {
	if _, err := NewGate(nil); err == nil {
		t.Fatal("expected error creating gate without repo")
	}
}

func TestGateCanGrantsFlag(t *testing.T) {
	repo := &stubRepo{definition: &models.RoleDefinition{
		Role:          enums.MemberRoleTreasurer,
		ManageFinance: true,
	}}
	gate, err := NewGate(repo)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	allowed, err := gate.Can(context.Background(), enums.MemberRoleTreasurer, enums.CapabilityManageFinance)
	if err != nil {
		t.Fatalf("can: %v", err)
	}
	if !allowed {
		t.Fatal("expected manage_finance to be granted")
	}

	allowed, err = gate.Can(context.Background(), enums.MemberRoleTreasurer, enums.CapabilityManageMembers)
	if err != nil {
		t.Fatalf("can: %v", err)
	}
	if allowed {
		t.Fatal("expected manage_members to be denied")
	}
}

func TestGateCanFailsClosedWithoutDefinition(t *testing.T) {
	gate, err := NewGate(&stubRepo{})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	allowed, err := gate.Can(context.Background(), enums.MemberRoleUser, enums.CapabilityManageEvents)
	if err != nil {
		t.Fatalf("can: %v", err)
	}
	if allowed {
		t.Fatal("expected undefined role to grant nothing")
	}
}

func TestGateCanRejectsUnknownCapability(t *testing.T) {
	gate, err := NewGate(&stubRepo{})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	_, gotErr := gate.Can(context.Background(), enums.MemberRolePresident, "manage_everything")
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", gotErr)
	}
}

func TestGateCanDependencyError(t *testing.T) {
	gate, err := NewGate(&stubRepo{err: errors.New("boom")})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	_, gotErr := gate.Can(context.Background(), enums.MemberRolePresident, enums.CapabilityManageEvents)
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", gotErr)
	}
}

func TestGateRequireDeniesBeforeMutation(t *testing.T) {
	repo := &stubRepo{definition: &models.RoleDefinition{Role: enums.MemberRoleMember}}
	gate, err := NewGate(repo)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	gotErr := gate.Require(context.Background(), enums.MemberRoleMember, enums.CapabilityManageFinance)
	if gotErr == nil {
		t.Fatal("expected forbidden error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden code, got %v", gotErr)
	}
}

func TestGateUpdateDefinitionValidatesRole(t *testing.T) {
	gate, err := NewGate(&stubRepo{})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	_, gotErr := gate.UpdateDefinition(context.Background(), models.RoleDefinition{Role: "janitor"})
	if gotErr == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", gotErr)
	}
}
