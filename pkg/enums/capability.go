package enums

import "fmt"

// Capability is one of the independent permission flags a role definition
// can grant.
type Capability string

const (
	CapabilityManageEvents      Capability = "manage_events"
	CapabilityManageMembers     Capability = "manage_members"
	CapabilityManageInventory   Capability = "manage_inventory"
	CapabilityManageFinance     Capability = "manage_finance"
	CapabilityManageSettings    Capability = "manage_settings"
	CapabilityViewSensitiveData Capability = "view_sensitive_data"
)

var validCapabilities = []Capability{
	CapabilityManageEvents,
	CapabilityManageMembers,
	CapabilityManageInventory,
	CapabilityManageFinance,
	CapabilityManageSettings,
	CapabilityViewSensitiveData,
}

// String implements fmt.Stringer.
func (c Capability) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Capability.
func (c Capability) IsValid() bool {
	for _, candidate := range validCapabilities {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCapability converts raw input into a Capability.
func ParseCapability(value string) (Capability, error) {
	for _, candidate := range validCapabilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid capability %q", value)
}
