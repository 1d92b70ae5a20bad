package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/basketwise/backend/internal/domain"
)

// defaultBrandDiscountFactor is the material-savings override: a candidate
// that shares no protected brand token with the original must beat the current
// best unit price by more than 15% to qualify as a substitution.
var defaultBrandDiscountFactor = decimal.RequireFromString("0.85")

// OptimizerConfig holds configuration for the basket optimizer.
type OptimizerConfig struct {
	BrandDiscountFactor decimal.Decimal
}

// BasketOptimizer computes cost-minimizing purchase strategies for a basket
// over a flattened corpus of cached listings.
//
// The optimizer is pure, synchronous computation over its constructor-supplied
// snapshot; it holds no mutable state and is safe for concurrent use. The
// limited-stores search is brute force over store combinations and assumes a
// small, bounded store count (single digits in practice).
type BasketOptimizer struct {
	basket              []domain.BasketLine
	corpus              []domain.Listing
	matcher             *Matcher
	brandDiscountFactor decimal.Decimal
}

// NewBasketOptimizer creates an optimizer over the user's basket and the full
// listing corpus, typically drawn from ListingCache.GetAll.
func NewBasketOptimizer(
	basket []domain.BasketLine,
	marketData [][]domain.Listing,
	matcher *Matcher,
	config OptimizerConfig,
) *BasketOptimizer {
	var corpus []domain.Listing
	for _, results := range marketData {
		corpus = append(corpus, results...)
	}

	factor := config.BrandDiscountFactor
	if !factor.IsPositive() {
		factor = defaultBrandDiscountFactor
	}

	return &BasketOptimizer{
		basket:              basket,
		corpus:              corpus,
		matcher:             matcher,
		brandDiscountFactor: factor,
	}
}

// FullSplitPlan assigns every basket line to whichever store offers its best
// alternative, with no constraint on the number of stores visited. Maximum
// savings, any number of stops.
func (o *BasketOptimizer) FullSplitPlan() *domain.Plan {
	plan := newPlan(domain.StrategyFullSplit)

	if len(o.corpus) == 0 {
		plan.Unmatched = append(plan.Unmatched, o.basket...)
		return finalizePlan(plan, decimal.Zero, decimal.Zero)
	}

	totalOriginal := decimal.Zero
	totalOptimized := decimal.Zero

	for _, line := range o.basket {
		best := o.bestAlternative(line)
		if best.Store == "" {
			plan.Unmatched = append(plan.Unmatched, line)
			continue
		}
		totalOriginal = totalOriginal.Add(line.Price)
		totalOptimized = totalOptimized.Add(best.Price)
		plan.Stores[best.Store] = append(plan.Stores[best.Store], best)
	}

	return finalizePlan(plan, totalOriginal, totalOptimized)
}

// LimitedStoresPlan finds the best achievable assignment using at most k
// distinct stores. Combinations are ranked by fewest missing lines first,
// then by lowest total cost. With k or fewer stores in the corpus the search
// degrades to FullSplitPlan.
func (o *BasketOptimizer) LimitedStoresPlan(k int) *domain.Plan {
	if k <= 0 {
		k = 2
	}

	stores := o.distinctStores()
	if len(stores) == 0 {
		plan := newPlan(domain.StrategyLimitedStores)
		plan.Unmatched = append(plan.Unmatched, o.basket...)
		return finalizePlan(plan, decimal.Zero, decimal.Zero)
	}
	if len(stores) <= k {
		return o.FullSplitPlan()
	}

	type draft struct {
		assignments   map[string][]domain.PlanItem
		missing       []domain.BasketLine
		total         decimal.Decimal
		totalOriginal decimal.Decimal
	}

	var best *draft
	forEachCombination(len(stores), k, func(indexes []int) {
		combo := make([]string, len(indexes))
		for i, idx := range indexes {
			combo[i] = stores[idx]
		}

		current := &draft{
			assignments:   make(map[string][]domain.PlanItem),
			total:         decimal.Zero,
			totalOriginal: decimal.Zero,
		}

		for _, line := range o.basket {
			var found *domain.PlanItem
			for _, store := range combo {
				match, ok := o.bestInStore(line, store)
				if !ok {
					continue
				}
				if found == nil || match.Price.LessThan(found.Price) {
					m := match
					found = &m
				}
			}

			if found == nil {
				current.missing = append(current.missing, line)
				continue
			}
			current.total = current.total.Add(found.Price)
			current.totalOriginal = current.totalOriginal.Add(line.Price)
			current.assignments[found.Store] = append(current.assignments[found.Store], *found)
		}

		switch {
		case best == nil:
			best = current
		case len(current.missing) < len(best.missing):
			best = current
		case len(current.missing) == len(best.missing) && current.total.LessThan(best.total):
			best = current
		}
	})

	plan := newPlan(domain.StrategyLimitedStores)
	plan.Stores = best.assignments
	plan.Unmatched = best.missing
	return finalizePlan(plan, best.totalOriginal, best.total)
}

// SingleStorePlan picks the one store covering the most basket lines,
// breaking ties by the lowest total for the covered lines. Returns nil when
// the corpus has no stores at all.
func (o *BasketOptimizer) SingleStorePlan() *domain.Plan {
	stores := o.distinctStores()
	if len(stores) == 0 {
		return nil
	}

	var (
		winner        string
		winnerItems   []domain.PlanItem
		winnerMissing []domain.BasketLine
		winnerTotal   decimal.Decimal
		winnerOrig    decimal.Decimal
	)

	for _, store := range stores {
		total := decimal.Zero
		orig := decimal.Zero
		var found []domain.PlanItem
		var missing []domain.BasketLine

		for _, line := range o.basket {
			match, ok := o.bestInStore(line, store)
			if !ok {
				missing = append(missing, line)
				continue
			}
			total = total.Add(match.Price)
			orig = orig.Add(line.Price)
			found = append(found, match)
		}

		better := winner == "" ||
			len(found) > len(winnerItems) ||
			(len(found) == len(winnerItems) && total.LessThan(winnerTotal))
		if better {
			winner = store
			winnerItems = found
			winnerMissing = missing
			winnerTotal = total
			winnerOrig = orig
		}
	}

	plan := newPlan(domain.StrategySingleStore)
	if len(winnerItems) > 0 {
		plan.Stores[winner] = winnerItems
	}
	plan.Unmatched = winnerMissing
	return finalizePlan(plan, winnerOrig, winnerTotal)
}

// bestAlternative scans the corpus for an acceptable match with a strictly
// lower unit price than the line's own, honoring brand protection. A line
// with no resolvable unit price is returned unchanged: incomparable items are
// never optimized away.
func (o *BasketOptimizer) bestAlternative(line domain.BasketLine) domain.PlanItem {
	best := domain.PlanItem{
		Line:  line,
		Name:  line.Name,
		Price: line.Price,
		Store: line.Store,
	}

	currentUnitPrice, _ := domain.NormalizeUnitPrice(line.Price, line.PackageSize)
	best.UnitPrice = currentUnitPrice
	if currentUnitPrice == nil {
		return best
	}
	bestUnitPrice := *currentUnitPrice

	for _, listing := range o.corpus {
		if !o.matcher.IsAcceptableMatch(o.matcher.Score(line.Name, listing.Name)) {
			continue
		}

		unitPrice := listing.UnitPrice
		if unitPrice == nil {
			unitPrice, _ = domain.NormalizeUnitPrice(listing.Price, listing.PackageSize)
		}
		if unitPrice == nil {
			continue
		}

		// Brand protection: without a shared protected brand token a swap
		// must undercut the current best unit price by the discount factor.
		if !o.matcher.SharedProtectedBrand(line.Name, listing.Name) &&
			unitPrice.GreaterThanOrEqual(bestUnitPrice.Mul(o.brandDiscountFactor)) {
			continue
		}

		if unitPrice.LessThan(bestUnitPrice) {
			up := *unitPrice
			best = domain.PlanItem{
				Line:      line,
				Name:      listing.Name,
				Price:     listing.Price,
				Store:     listing.Store,
				UnitPrice: &up,
				IsBetter:  true,
			}
			bestUnitPrice = up
		}
	}

	return best
}

// bestInStore finds the cheapest acceptable match for a line within one store.
func (o *BasketOptimizer) bestInStore(line domain.BasketLine, store string) (domain.PlanItem, bool) {
	var best domain.PlanItem
	found := false

	for _, listing := range o.corpus {
		if listing.Store != store {
			continue
		}
		if !o.matcher.IsAcceptableMatch(o.matcher.Score(line.Name, listing.Name)) {
			continue
		}
		if !found || listing.Price.LessThan(best.Price) {
			best = domain.PlanItem{
				Line:      line,
				Name:      listing.Name,
				Price:     listing.Price,
				Store:     store,
				UnitPrice: listing.UnitPrice,
				IsBetter:  true,
			}
			found = true
		}
	}

	return best, found
}

// distinctStores returns the sorted set of stores present in the corpus.
// Sorting keeps combination enumeration and tie-breaking deterministic.
func (o *BasketOptimizer) distinctStores() []string {
	seen := make(map[string]bool)
	var stores []string
	for _, listing := range o.corpus {
		if listing.Store == "" || seen[listing.Store] {
			continue
		}
		seen[listing.Store] = true
		stores = append(stores, listing.Store)
	}
	sort.Strings(stores)
	return stores
}

func newPlan(strategy domain.PlanStrategy) *domain.Plan {
	return &domain.Plan{
		Strategy: strategy,
		Stores:   make(map[string][]domain.PlanItem),
	}
}

// finalizePlan rounds monetary totals at the output boundary. Intermediate
// sums stay unrounded to avoid compounding rounding error.
func finalizePlan(plan *domain.Plan, totalOriginal, totalOptimized decimal.Decimal) *domain.Plan {
	savings := totalOriginal.Sub(totalOptimized)
	if savings.IsNegative() {
		savings = decimal.Zero
	}
	plan.TotalOriginal = totalOriginal.Round(2)
	plan.TotalOptimized = totalOptimized.Round(2)
	plan.Savings = savings.Round(2)
	return plan
}

// forEachCombination invokes fn with every size-k index combination of [0, n).
func forEachCombination(n, k int, fn func(indexes []int)) {
	if k > n || k <= 0 {
		return
	}
	indexes := make([]int, k)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == k {
			fn(indexes)
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			indexes[depth] = i
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
}
