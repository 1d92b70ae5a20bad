package domain

import "github.com/shopspring/decimal"

// PlanStrategy identifies which optimization strategy produced a Plan.
type PlanStrategy string

const (
	StrategyFullSplit     PlanStrategy = "full-split"
	StrategyLimitedStores PlanStrategy = "limited-k"
	StrategySingleStore   PlanStrategy = "single-store"
)

// PlanItem pairs a basket line with the listing chosen for it.
type PlanItem struct {
	Line      BasketLine       `json:"line"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	Store     string           `json:"store"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
	IsBetter  bool             `json:"isBetter"`
}

// Plan is the optimizer's output. Every basket line appears in exactly one of
// Stores or Unmatched — never both, never omitted.
type Plan struct {
	Strategy       PlanStrategy          `json:"strategy"`
	TotalOriginal  decimal.Decimal       `json:"totalOriginal"`
	TotalOptimized decimal.Decimal       `json:"totalOptimized"`
	Savings        decimal.Decimal       `json:"savings"`
	Stores         map[string][]PlanItem `json:"stores"`
	Unmatched      []BasketLine          `json:"unmatched,omitempty"`
}

// AssignedCount returns the number of lines placed at a store.
func (p *Plan) AssignedCount() int {
	n := 0
	for _, items := range p.Stores {
		n += len(items)
	}
	return n
}
