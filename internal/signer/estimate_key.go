package signer

import (
	"github.com/NethermindEth/juno/core/felt"
)

// Stand-in signature values. Fee estimation only checks the signature shape.
var (
	estimateR, _ = new(felt.Felt).SetString("0x6cefb49a1f4eb406e8112db9b8cdf247965852ddc5ca4d74b09e42471689495")
	estimateS, _ = new(felt.Felt).SetString("0x25760910405a052b7f08ec533939c54948bc530c662c5d79e8ff416579087f7")
)

// EstimateKey stands in for a Starknet key during fee estimation. It holds only
// the public key and returns a fixed, non-verifying signature.
type EstimateKey struct {
	pub *felt.Felt
	id  Identity
}

// NewEstimateKey creates a stand-in for the Starknet key with public key pub.
func NewEstimateKey(pub *felt.Felt) (*EstimateKey, error) {
	id, err := starknetIdentity(pub)
	if err != nil {
		return nil, err
	}
	return &EstimateKey{pub: pub, id: id}, nil
}

// EstimateSigners returns a multisig of stand-in keys for the given public keys.
func EstimateSigners(pubs ...*felt.Felt) (*Multisig, error) {
	keys := make([]Key, 0, len(pubs))
	for _, pub := range pubs {
		k, err := NewEstimateKey(pub)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return NewMultisig(keys...), nil
}

func (k *EstimateKey) PublicKey() *felt.Felt {
	return k.pub
}

// PrivateKey always fails with ErrNoPrivateKey.
func (k *EstimateKey) PrivateKey() (*felt.Felt, error) {
	return nil, ErrNoPrivateKey
}

func (k *EstimateKey) Identity() Identity {
	return k.id
}

// SignRaw ignores hash and returns [0, pubkey, r, s] with the stand-in r and s.
func (k *EstimateKey) SignRaw(_ *felt.Felt) (Signature, error) {
	r, s := *estimateR, *estimateS
	return starknetShare(k.pub, &r, &s), nil
}

// Estimator returns a copy of m in which every Starknet key is replaced by an
// estimate-only stand-in. Keys of other classes sign for real.
func (m *Multisig) Estimator() (*Multisig, error) {
	keys := make([]Key, 0, len(m.keys))
	for _, k := range m.keys {
		rep := k.Identity().Signer
		if rep.Starknet == nil {
			keys = append(keys, k)
			continue
		}
		est, err := NewEstimateKey(rep.Starknet.PubKey)
		if err != nil {
			return nil, err
		}
		keys = append(keys, est)
	}
	return NewMultisig(keys...), nil
}
