package signer

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/NethermindEth/juno/core/felt"
)

// StarknetKey is a native Stark-curve key pair.
type StarknetKey struct {
	priv *big.Int
	pub  *felt.Felt
	id   Identity
}

// NewStarknetKey wraps a private scalar in [1, n).
func NewStarknetKey(priv *felt.Felt) (*StarknetKey, error) {
	if priv == nil {
		return nil, ErrInvalidPrivateKey
	}
	d := priv.BigInt(new(big.Int))
	if d.Sign() <= 0 || d.Cmp(curveOrder) >= 0 {
		return nil, ErrInvalidPrivateKey
	}
	return newStarknetKey(d)
}

// GenerateStarknetKey creates a key from a uniformly random scalar.
func GenerateStarknetKey() (*StarknetKey, error) {
	max := new(big.Int).Sub(curveOrder, big.NewInt(1))
	d, err := rand.Int(rand.Reader, max)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	return newStarknetKey(d.Add(d, big.NewInt(1)))
}

func newStarknetKey(d *big.Int) (*StarknetKey, error) {
	pub := new(felt.Felt).SetBytes(starkPublicKey(d).Bytes())
	id, err := starknetIdentity(pub)
	if err != nil {
		return nil, err
	}
	return &StarknetKey{priv: d, pub: pub, id: id}, nil
}

func starknetIdentity(pub *felt.Felt) (Identity, error) {
	rep, err := NewRepresentation(StarknetSignerType, StarknetSigner{PubKey: pub})
	if err != nil {
		return Identity{}, err
	}
	return NewIdentity(rep)
}

// PublicKey returns the x coordinate of the public point.
func (k *StarknetKey) PublicKey() *felt.Felt {
	return k.pub
}

// PrivateKey returns the private scalar.
func (k *StarknetKey) PrivateKey() (*felt.Felt, error) {
	return new(felt.Felt).SetBytes(k.priv.Bytes()), nil
}

func (k *StarknetKey) Identity() Identity {
	return k.id
}

// SignRaw signs hash and returns [0, pubkey, r, s].
func (k *StarknetKey) SignRaw(hash *felt.Felt) (Signature, error) {
	r, s, err := starkSign(k.priv, hash.BigInt(new(big.Int)))
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s: %w", hash, err)
	}
	return starknetShare(k.pub, new(felt.Felt).SetBytes(r.Bytes()), new(felt.Felt).SetBytes(s.Bytes())), nil
}

// starknetShare serializes the Starknet variant of the signature enum.
func starknetShare(pub, r, s *felt.Felt) Signature {
	return Signature{new(felt.Felt).SetUint64(uint64(StarknetSignerType)), pub, r, s}
}
