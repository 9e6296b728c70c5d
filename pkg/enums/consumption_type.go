package enums

import "fmt"

// ConsumptionType distinguishes event consumption lines. Product lines move
// stock; custom and service lines never do.
type ConsumptionType string

const (
	ConsumptionTypeProduct ConsumptionType = "product"
	ConsumptionTypeCustom  ConsumptionType = "custom"
	ConsumptionTypeService ConsumptionType = "service"
)

var validConsumptionTypes = []ConsumptionType{
	ConsumptionTypeProduct,
	ConsumptionTypeCustom,
	ConsumptionTypeService,
}

// String implements fmt.Stringer.
func (c ConsumptionType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ConsumptionType.
func (c ConsumptionType) IsValid() bool {
	for _, candidate := range validConsumptionTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseConsumptionType converts raw input into a ConsumptionType.
func ParseConsumptionType(value string) (ConsumptionType, error) {
	for _, candidate := range validConsumptionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid consumption type %q", value)
}
