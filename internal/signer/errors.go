package signer

import "errors"

var (
	// ErrNoPrivateKey is returned by private-key operations on a public-only signer.
	ErrNoPrivateKey = errors.New("signer has no private key")

	// ErrUnknownSignerType is returned for malformed or unrecognized signer representations.
	ErrUnknownSignerType = errors.New("unknown signer type")

	// ErrInvalidPrivateKey is returned when a private scalar is outside the curve order.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrKeyNotFound is returned when a key manager does not hold the requested public key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrMessageOutOfRange is returned when a hash is too large for the Stark curve signature scheme.
	ErrMessageOutOfRange = errors.New("message hash out of range")

	// ErrDuplicateSigner is returned when the same public key is requested twice for one multisig.
	ErrDuplicateSigner = errors.New("duplicate signer")
)
