package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/basketwise/backend/internal/domain"
)

// BasketServiceConfig holds configuration for the basket service.
type BasketServiceConfig struct {
	FreshWindow     time.Duration // cache age accepted before a live search
	OptimizerConfig OptimizerConfig
}

// OptimizeRequest describes one basket optimization call.
type OptimizeRequest struct {
	Items     []string
	Strategy  domain.PlanStrategy
	MaxStores int
}

// BasketService resolves a free-text shopping list into priced basket lines
// and runs the optimizer over the cached listing corpus.
//
// Flow per line: fresh cache -> live search (filling the cache) -> stale
// cache fallback. Lines that resolve nowhere are carried through as
// unmatched, never dropped.
type BasketService struct {
	cache           domain.ListingCache
	market          domain.MarketClient
	matcher         *Matcher
	optimizerConfig OptimizerConfig
	freshWindow     time.Duration
}

// NewBasketService creates a basket service with dependencies.
func NewBasketService(
	cache domain.ListingCache,
	market domain.MarketClient,
	matcher *Matcher,
	config BasketServiceConfig,
) *BasketService {
	freshWindow := config.FreshWindow
	if freshWindow == 0 {
		freshWindow = 24 * time.Hour
	}

	return &BasketService{
		cache:           cache,
		market:          market,
		matcher:         matcher,
		optimizerConfig: config.OptimizerConfig,
		freshWindow:     freshWindow,
	}
}

// OptimizeBasket resolves the requested items and produces a plan for the
// chosen strategy.
func (s *BasketService) OptimizeBasket(ctx context.Context, request OptimizeRequest) (*domain.Plan, error) {
	if len(request.Items) == 0 {
		return nil, fmt.Errorf("%w: empty item list", domain.ErrInvalidRequest)
	}

	basket, unresolved := s.ResolveBasket(ctx, request.Items)

	corpus, err := s.cache.GetAll(ctx)
	if err != nil {
		// Cache trouble degrades to an empty corpus, never a failed request.
		log.Printf("[BASKET] corpus read failed: %v", err)
		corpus = nil
	}

	optimizer := NewBasketOptimizer(basket, corpus, s.matcher, s.optimizerConfig)

	var plan *domain.Plan
	switch request.Strategy {
	case domain.StrategyFullSplit, "":
		plan = optimizer.FullSplitPlan()
	case domain.StrategyLimitedStores:
		plan = optimizer.LimitedStoresPlan(request.MaxStores)
	case domain.StrategySingleStore:
		plan = optimizer.SingleStorePlan()
		if plan == nil {
			return nil, domain.ErrNoStores
		}
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidRequest, request.Strategy)
	}

	for _, query := range unresolved {
		plan.Unmatched = append(plan.Unmatched, domain.BasketLine{Name: query})
	}

	return plan, nil
}

// ResolveBasket resolves each free-text item to its cheapest available
// listing. Lookups run concurrently; results keep the input order. The
// second return value lists items that resolved to nothing.
func (s *BasketService) ResolveBasket(ctx context.Context, items []string) ([]domain.BasketLine, []string) {
	type resolution struct {
		line domain.BasketLine
		ok   bool
	}

	resolutions := make([]resolution, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item string) {
			defer wg.Done()
			line, ok := s.resolveLine(ctx, item)
			resolutions[i] = resolution{line: line, ok: ok}
		}(i, item)
	}
	wg.Wait()

	var basket []domain.BasketLine
	var unresolved []string
	for i, r := range resolutions {
		if r.ok {
			basket = append(basket, r.line)
		} else {
			unresolved = append(unresolved, items[i])
		}
	}
	return basket, unresolved
}

// resolveLine finds listings for one query and picks the cheapest offer with
// a positive price.
func (s *BasketService) resolveLine(ctx context.Context, query string) (domain.BasketLine, bool) {
	listings, err := s.cache.Get(ctx, query, s.freshWindow)
	if err != nil {
		listings, err = s.market.SearchProducts(ctx, query)
		if err != nil {
			if !errors.Is(err, domain.ErrProductNotFound) {
				log.Printf("[BASKET] live search failed for %q: %v", query, err)
			}
			// Emergency fallback: a stale cache entry beats nothing at all.
			listings, err = s.cache.Get(ctx, query, 0)
			if err != nil {
				return domain.BasketLine{Name: query}, false
			}
		} else if cacheErr := s.cache.Set(ctx, query, listings); cacheErr != nil {
			log.Printf("[BASKET] cache write failed for %q: %v", query, cacheErr)
		}
	}

	var best *domain.Listing
	for i := range listings {
		l := listings[i]
		if !l.Price.IsPositive() {
			continue
		}
		if best == nil || l.Price.LessThan(best.Price) {
			best = &listings[i]
		}
	}
	if best == nil {
		return domain.BasketLine{Name: query}, false
	}

	return domain.BasketLine{
		Name:        best.Name,
		Price:       best.Price,
		Store:       best.Store,
		PackageSize: best.PackageSize,
	}, true
}

// SplitItems extracts shopping-list items from free text. Items can be
// separated by commas or newlines.
func SplitItems(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\n", ","), ",")
	var items []string
	for _, item := range raw {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
