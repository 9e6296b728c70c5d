package permissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"gorm.io/gorm"
)

// Gate answers capability questions for roles. A role without a stored
// definition grants nothing.
type Gate interface {
	Can(ctx context.Context, role enums.MemberRole, capability enums.Capability) (bool, error)
	Require(ctx context.Context, role enums.MemberRole, capability enums.Capability) error
	ListDefinitions(ctx context.Context) ([]models.RoleDefinition, error)
	UpdateDefinition(ctx context.Context, definition models.RoleDefinition) (*models.RoleDefinition, error)
}

type gate struct {
	repo Repository
}

// NewGate wires a permission gate with the provided repository.
func NewGate(repo Repository) (Gate, error) {
	if repo == nil {
		return nil, fmt.Errorf("permissions repository required")
	}
	return &gate{repo: repo}, nil
}

func (g *gate) Can(ctx context.Context, role enums.MemberRole, capability enums.Capability) (bool, error) {
	if !capability.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid capability %q", capability))
	}
	definition, err := g.repo.FindByRole(ctx, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// fail closed: an undefined role grants nothing
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load role definition")
	}
	return definition.Grants(capability), nil
}

func (g *gate) Require(ctx context.Context, role enums.MemberRole, capability enums.Capability) error {
	allowed, err := g.Can(ctx, role, capability)
	if err != nil {
		return err
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("role %q lacks %q", role, capability))
	}
	return nil
}

func (g *gate) ListDefinitions(ctx context.Context) ([]models.RoleDefinition, error) {
	definitions, err := g.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list role definitions")
	}
	return definitions, nil
}

func (g *gate) UpdateDefinition(ctx context.Context, definition models.RoleDefinition) (*models.RoleDefinition, error) {
	if !definition.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid member role %q", definition.Role))
	}
	if err := g.repo.Upsert(ctx, &definition); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert role definition")
	}
	return &definition, nil
}
