package domain

import "errors"

// Credential errors.
var (
	ErrMissingCredential = errors.New("missing or malformed bearer credential")
	ErrInvalidCredential = errors.New("expired or invalid bearer credential")
)

// Catalog and order errors.
var (
	ErrCatalogUnavailable  = errors.New("service catalog unavailable")
	ErrServiceNotFound     = errors.New("service not found in catalog")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOrderFailed         = errors.New("order creation failed")
)

var ErrRateLimited = errors.New("rate limit exceeded")

// Analysis errors.
var (
	ErrGeneratorUnavailable = errors.New("analysis generator is not configured")
	ErrEmptyAnalysis        = errors.New("generator returned an empty analysis")
)
