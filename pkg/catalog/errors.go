package catalog

import "errors"

var (
	// ErrProductNotFound is returned when the catalog has no product with the id
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrCatalogUnavailable covers network failures, timeouts, unexpected
	// statuses and undecodable bodies
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrInvalidConfig is returned by NewClient for an unusable configuration
	ErrInvalidConfig = errors.New("invalid catalog configuration")
)
