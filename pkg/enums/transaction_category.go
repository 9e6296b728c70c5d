package enums

import "fmt"

// TransactionCategory is the closed set of ledger entry categories.
type TransactionCategory string

const (
	TransactionCategoryMembershipFee    TransactionCategory = "membership_fee"
	TransactionCategoryEvent            TransactionCategory = "event"
	TransactionCategorySuppliesPurchase TransactionCategory = "supplies_purchase"
	TransactionCategoryDirectSale       TransactionCategory = "direct_sale"
	TransactionCategoryUtilities        TransactionCategory = "utilities"
	TransactionCategoryMaintenance      TransactionCategory = "maintenance"
	TransactionCategoryTaxes            TransactionCategory = "taxes"
	TransactionCategoryOther            TransactionCategory = "other"
)

var validTransactionCategories = []TransactionCategory{
	TransactionCategoryMembershipFee,
	TransactionCategoryEvent,
	TransactionCategorySuppliesPurchase,
	TransactionCategoryDirectSale,
	TransactionCategoryUtilities,
	TransactionCategoryMaintenance,
	TransactionCategoryTaxes,
	TransactionCategoryOther,
}

// String implements fmt.Stringer.
func (t TransactionCategory) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionCategory.
func (t TransactionCategory) IsValid() bool {
	for _, candidate := range validTransactionCategories {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionCategory converts raw input into a TransactionCategory.
func ParseTransactionCategory(value string) (TransactionCategory, error) {
	for _, candidate := range validTransactionCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction category %q", value)
}
