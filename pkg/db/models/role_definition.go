package models

import (
	"time"

	"github.com/irmandades/ghala-backend/pkg/enums"
)

// RoleDefinition grants a role its capability flags. Exactly one row per
// role value in use; a role without a row grants nothing.
type RoleDefinition struct {
	Role              enums.MemberRole `gorm:"column:role;primaryKey"`
	ManageEvents      bool             `gorm:"column:manage_events;not null;default:false"`
	ManageMembers     bool             `gorm:"column:manage_members;not null;default:false"`
	ManageInventory   bool             `gorm:"column:manage_inventory;not null;default:false"`
	ManageFinance     bool             `gorm:"column:manage_finance;not null;default:false"`
	ManageSettings    bool             `gorm:"column:manage_settings;not null;default:false"`
	ViewSensitiveData bool             `gorm:"column:view_sensitive_data;not null;default:false"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// Grants reports whether the definition carries the given capability.
func (r RoleDefinition) Grants(capability enums.Capability) bool {
	switch capability {
	case enums.CapabilityManageEvents:
		return r.ManageEvents
	case enums.CapabilityManageMembers:
		return r.ManageMembers
	case enums.CapabilityManageInventory:
		return r.ManageInventory
	case enums.CapabilityManageFinance:
		return r.ManageFinance
	case enums.CapabilityManageSettings:
		return r.ManageSettings
	case enums.CapabilityViewSensitiveData:
		return r.ViewSensitiveData
	default:
		return false
	}
}
