package enums

import "fmt"

// ExtraCategory buckets the paid add-ons.
type ExtraCategory string

const (
	ExtraCategoryTopping ExtraCategory = "topping"
	ExtraCategoryCheese  ExtraCategory = "cheese"
	ExtraCategorySauce   ExtraCategory = "sauce"
	ExtraCategoryOther   ExtraCategory = "other"
)

var validExtraCategories = []ExtraCategory{
	ExtraCategoryTopping,
	ExtraCategoryCheese,
	ExtraCategorySauce,
	ExtraCategoryOther,
}

// String implements fmt.Stringer.
func (e ExtraCategory) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExtraCategory.
func (e ExtraCategory) IsValid() bool {
	for _, candidate := range validExtraCategories {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseExtraCategory converts raw input into an ExtraCategory.
func ParseExtraCategory(value string) (ExtraCategory, error) {
	for _, candidate := range validExtraCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid extra category %q", value)
}
