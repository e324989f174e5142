package txn

import "errors"

var (
	// ErrInvalidVersion is returned when a version is not one of the known transaction versions.
	ErrInvalidVersion = errors.New("invalid transaction version")

	// ErrUnsupportedTransactionVersion is returned when no hash domain exists for a kind/version pair.
	ErrUnsupportedTransactionVersion = errors.New("unsupported transaction version")

	// ErrMissingEstimateField is returned when a fee estimate lacks gas_consumed or gas_price.
	ErrMissingEstimateField = errors.New("fee estimate is missing a required field")

	// ErrResourceBoundOverflow is returned when a resource bound does not fit its packed slot.
	ErrResourceBoundOverflow = errors.New("resource bound overflows its encoding")
)
