package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is the canonical comparison basis for a unit price.
type Unit string

const (
	UnitNone     Unit = ""
	UnitKilogram Unit = "kg"
	UnitLiter    Unit = "l"
)

// Listing is a single product offer observed at a store at a point in time.
// Listings are immutable once captured; the optimizer only reads them.
// All monetary values use shopspring/decimal — never float64 for money.
type Listing struct {
	Name        string           `json:"name"`
	Store       string           `json:"store"`
	Price       decimal.Decimal  `json:"price"`
	PackageSize string           `json:"packageSize,omitempty"` // raw text, e.g. "500 g", "1.5 л"
	UnitPrice   *decimal.Decimal `json:"unitPrice,omitempty"`   // nil when PackageSize is unparseable
	Unit        Unit             `json:"unit,omitempty"`
	CapturedAt  time.Time        `json:"capturedAt"`
}

// BasketLine is one requested product in a user's shopping list: a free-text
// query plus the price/store it previously resolved to, when known.
type BasketLine struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Store       string          `json:"store,omitempty"`
	PackageSize string          `json:"packageSize,omitempty"`
}
