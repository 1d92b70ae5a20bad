package domain

import "errors"

var (
	// ErrProductNotFound is returned when a search yields no listings
	ErrProductNotFound = errors.New("product not found in market data")

	// ErrNoStores is returned when the listing corpus contains no stores to plan against
	ErrNoStores = errors.New("no store data available")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrMarketAPIFailure is returned when the supermarket API request fails
	ErrMarketAPIFailure = errors.New("market API request failed")
)
