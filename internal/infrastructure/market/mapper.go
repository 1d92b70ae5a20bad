package market

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/basketwise/backend/internal/domain"
)

// The upstream payload is loosely typed: prices arrive in two currencies,
// the package size lives under either "quantity" or "unit", and the store
// name is nested inside a supermarket object on some endpoints and flat on
// others. This mapper is the single place that folds those variants into a
// normalized Listing.

type searchResponse struct {
	Data []productPayload `json:"data"`
}

type supermarketPayload struct {
	Name string `json:"name"`
}

type productPayload struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	PriceEUR    decimal.Decimal     `json:"price_eur"`
	Price       decimal.Decimal     `json:"price"`
	Quantity    string              `json:"quantity"`
	Unit        string              `json:"unit"`
	Store       string              `json:"store"`
	Supermarket *supermarketPayload `json:"supermarket"`
}

// mapListings converts upstream payloads into normalized listings, deriving
// the unit price once at this boundary.
func mapListings(payloads []productPayload, capturedAt time.Time) []domain.Listing {
	listings := make([]domain.Listing, 0, len(payloads))
	for _, p := range payloads {
		listings = append(listings, mapListing(p, capturedAt))
	}
	return listings
}

func mapListing(p productPayload, capturedAt time.Time) domain.Listing {
	price := p.PriceEUR
	if !price.IsPositive() {
		price = p.Price
	}

	packageSize := p.Quantity
	if packageSize == "" {
		packageSize = p.Unit
	}

	store := p.Store
	if p.Supermarket != nil && p.Supermarket.Name != "" {
		store = p.Supermarket.Name
	}
	if store == "" {
		store = "Unknown"
	}

	unitPrice, unit := domain.NormalizeUnitPrice(price, packageSize)

	return domain.Listing{
		Name:        p.Name,
		Store:       store,
		Price:       price,
		PackageSize: packageSize,
		UnitPrice:   unitPrice,
		Unit:        unit,
		CapturedAt:  capturedAt,
	}
}
