package account

import "errors"

var (
	// ErrEstimateUnavailable is returned when the node cannot supply a nonce,
	// chain id or fee estimate. The request fails as a whole.
	ErrEstimateUnavailable = errors.New("fee estimate unavailable")

	// ErrNoProvider is returned when a value must be fetched but no provider is configured.
	ErrNoProvider = errors.New("no provider configured")
)
