package enums

import "fmt"

// ProductCategory groups stockroom products for reporting.
type ProductCategory string

const (
	ProductCategoryBeverage ProductCategory = "beverage"
	ProductCategoryFood     ProductCategory = "food"
	ProductCategoryCleaning ProductCategory = "cleaning"
	ProductCategoryOther    ProductCategory = "other"
)

var validProductCategories = []ProductCategory{
	ProductCategoryBeverage,
	ProductCategoryFood,
	ProductCategoryCleaning,
	ProductCategoryOther,
}

// String implements fmt.Stringer.
func (p ProductCategory) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductCategory.
func (p ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
