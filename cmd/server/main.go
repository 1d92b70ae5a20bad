package main

import (
	"fmt"
	"log"
	"os"

	"github.com/shopspring/decimal"

	"github.com/basketwise/backend/config"
	httpDelivery "github.com/basketwise/backend/internal/delivery/http"
	"github.com/basketwise/backend/internal/infrastructure/cache"
	"github.com/basketwise/backend/internal/infrastructure/market"
	"github.com/basketwise/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Basketwise Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache fresh window: %s", cfg.Cache.FreshWindow)

	// Initialize infrastructure dependencies
	listingCache := cache.NewMemoryListingCache()

	marketClient := market.NewClient(cfg.Market.APIKey, cfg.Market.BaseURL, cfg.Market.SearchLimit)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		marketClient.SetDebug(true)
		log.Printf("Market client debug mode enabled")
	}

	if cfg.Market.APIKey != "" {
		log.Printf("Market API configured: %s", cfg.Market.BaseURL)
	} else {
		log.Printf("WARNING: Market API configured: %s (key: NOT CONFIGURED - API calls will fail!)", cfg.Market.BaseURL)
	}

	// Initialize usecase layer
	matcher := usecase.NewMatcher(usecase.MatcherConfig{
		StopWords:         cfg.Matching.StopWords,
		ProtectedBrands:   cfg.Matching.ProtectedBrands,
		MinSharedKeywords: cfg.Matching.MinSharedKeywords,
	})

	basketService := usecase.NewBasketService(
		listingCache,
		marketClient,
		matcher,
		usecase.BasketServiceConfig{
			FreshWindow: cfg.Cache.FreshWindow,
			OptimizerConfig: usecase.OptimizerConfig{
				BrandDiscountFactor: decimal.NewFromFloat(cfg.Matching.BrandDiscountFactor),
			},
		},
	)

	log.Printf("Matching: shared keywords >= %d, brand discount factor %.2f",
		cfg.Matching.MinSharedKeywords, cfg.Matching.BrandDiscountFactor)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(basketService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
