package permissions

import (
	"context"

	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository manages persistence for role definitions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByRole(ctx context.Context, role enums.MemberRole) (*models.RoleDefinition, error)
	List(ctx context.Context) ([]models.RoleDefinition, error)
	Upsert(ctx context.Context, definition *models.RoleDefinition) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a role definition repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByRole(ctx context.Context, role enums.MemberRole) (*models.RoleDefinition, error) {
	var definition models.RoleDefinition
	if err := r.db.WithContext(ctx).
		Where("role = ?", role).
		First(&definition).Error; err != nil {
		return nil, err
	}
	return &definition, nil
}

func (r *repository) List(ctx context.Context) ([]models.RoleDefinition, error) {
	var definitions []models.RoleDefinition
	if err := r.db.WithContext(ctx).
		Order("role ASC").
		Find(&definitions).Error; err != nil {
		return nil, err
	}
	return definitions, nil
}

func (r *repository) Upsert(ctx context.Context, definition *models.RoleDefinition) error {
	return r.db.WithContext(ctx).Save(definition).Error
}
