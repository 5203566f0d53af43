package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProductType is returned when a product type name is not recognised
var ErrInvalidProductType = errors.New("invalid product type")

// ProductType identifies which report a record came from.
type ProductType int

const (
	// ProductIELTS is the IELTS registration report
	ProductIELTS ProductType = iota
	// ProductSchool is the School registration report
	ProductSchool
)

// String returns the display name used by the front end.
func (p ProductType) String() string {
	switch p {
	case ProductIELTS:
		return "IELTS"
	case ProductSchool:
		return "School"
	default:
		return fmt.Sprintf("ProductType(%d)", int(p))
	}
}

// IsValid reports whether p is a known product type.
func (p ProductType) IsValid() bool {
	return p == ProductIELTS || p == ProductSchool
}

// ProductTypes returns every product type in dropdown order.
func ProductTypes() []ProductType {
	return []ProductType{ProductIELTS, ProductSchool}
}

// ParseProductType parses a display name. Matching ignores surrounding space and case.
func ParseProductType(s string) (ProductType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ielts":
		return ProductIELTS, nil
	case "school":
		return ProductSchool, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidProductType, s)
	}
}
