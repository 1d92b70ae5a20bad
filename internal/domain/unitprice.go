package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// packageSizeRegex extracts a numeric magnitude immediately followed by a unit
// token, anywhere in the package-size text. Accepts both "." and "," as the
// decimal separator and the Cyrillic unit spellings used by market listings.
// Longer tokens come first so "kg"/"кг" win over "g"/"г".
var packageSizeRegex = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(kg|кг|gr|гр|ml|мл|g|г|l|л)(?:[^\p{L}\d]|$)`)

var thousand = decimal.NewFromInt(1000)

// NormalizeUnitPrice converts a price and a raw package-size string into a
// canonical per-unit price (€/kg or €/l), rounded to 2 decimal places with
// half-up rounding.
//
// Returns (nil, UnitNone) when the text holds no parseable "number + unit"
// pattern, the normalized quantity is not positive, or the price is not
// positive. That outcome is expected, not an error: callers treat a nil unit
// price as "incomparable" and sort it after all comparable items.
func NormalizeUnitPrice(price decimal.Decimal, packageSize string) (*decimal.Decimal, Unit) {
	if !price.IsPositive() {
		return nil, UnitNone
	}

	m := packageSizeRegex.FindStringSubmatch(packageSize)
	if m == nil {
		return nil, UnitNone
	}

	qty, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "."))
	if err != nil {
		return nil, UnitNone
	}

	var unit Unit
	switch strings.ToLower(m[2]) {
	case "g", "gr", "г", "гр":
		qty = qty.Div(thousand)
		unit = UnitKilogram
	case "kg", "кг":
		unit = UnitKilogram
	case "ml", "мл":
		qty = qty.Div(thousand)
		unit = UnitLiter
	case "l", "л":
		unit = UnitLiter
	}

	if !qty.IsPositive() {
		return nil, UnitNone
	}

	unitPrice := price.DivRound(qty, 2)
	return &unitPrice, unit
}
