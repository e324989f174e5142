package signer

import (
	"math/big"

	"github.com/NethermindEth/starknet.go/curve"
	starkcurve "github.com/consensys/gnark-crypto/ecc/stark-curve"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fr"
)

var (
	curveOrder = fr.Modulus()
	// Signature components and message hashes must be below 2^251.
	maxSignatureValue = new(big.Int).Lsh(big.NewInt(1), 251)

	generator = func() starkcurve.G1Affine {
		_, g := starkcurve.Generators()
		return g
	}()
)

// starkPublicKey returns the x coordinate of priv·G.
func starkPublicKey(priv *big.Int) *big.Int {
	var p starkcurve.G1Affine
	p.ScalarMultiplication(&generator, priv)
	return p.X.BigInt(new(big.Int))
}

// starkSign produces the deterministic RFC 6979 signature over msg that
// starknet.js and starknet.go produce for the same key.
func starkSign(priv, msg *big.Int) (r, s *big.Int, err error) {
	if msg.Sign() <= 0 || msg.Cmp(maxSignatureValue) >= 0 {
		return nil, nil, ErrMessageOutOfRange
	}
	return curve.Curve.Sign(msg, priv)
}
