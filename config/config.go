package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Market    MarketConfig
	Cache     CacheConfig
	Matching  MatchingConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MarketConfig holds supermarket price API configuration
type MarketConfig struct {
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	SearchLimit int    `mapstructure:"search_limit"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	FreshWindow time.Duration `mapstructure:"fresh_window"`
}

// MatchingConfig holds product-matching vocabulary and thresholds.
// Stop words and protected brands are per-market vocabulary; leaving them
// empty falls back to the built-in defaults.
type MatchingConfig struct {
	StopWords           []string `mapstructure:"stop_words"`
	ProtectedBrands     []string `mapstructure:"protected_brands"`
	MinSharedKeywords   int      `mapstructure:"min_shared_keywords"`
	BrandDiscountFactor float64  `mapstructure:"brand_discount_factor"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/basketwise/")

	// Environment variable settings
	v.SetEnvPrefix("BASKETWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Market API defaults
	v.SetDefault("market.api_key", "")
	v.SetDefault("market.base_url", "https://api.supermarketi.bg/v1")
	v.SetDefault("market.search_limit", 10)

	// Cache defaults
	v.SetDefault("cache.fresh_window", "24h")

	// Matching defaults
	v.SetDefault("matching.min_shared_keywords", 2)
	v.SetDefault("matching.brand_discount_factor", 0.85)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Market.APIKey == "" {
		return fmt.Errorf("market API key is required (set BASKETWISE_MARKET_API_KEY)")
	}

	if config.Cache.FreshWindow <= 0 {
		return fmt.Errorf("cache fresh window must be positive, got: %s", config.Cache.FreshWindow)
	}

	if config.Matching.MinSharedKeywords < 1 {
		return fmt.Errorf("min shared keywords must be at least 1, got: %d", config.Matching.MinSharedKeywords)
	}

	if config.Matching.BrandDiscountFactor <= 0 || config.Matching.BrandDiscountFactor > 1 {
		return fmt.Errorf("brand discount factor must be in (0, 1], got: %g", config.Matching.BrandDiscountFactor)
	}

	return nil
}
