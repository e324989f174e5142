package signer

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Secp256k1Key signs the transaction hash directly with a secp256k1 key.
type Secp256k1Key struct {
	priv *ecdsa.PrivateKey
	id   Identity
}

// NewSecp256k1Key wraps priv. The account identifies it by its Ethereum address.
func NewSecp256k1Key(priv *ecdsa.PrivateKey) (*Secp256k1Key, error) {
	rep, err := NewRepresentation(Secp256k1SignerType, Secp256k1Signer{
		PubKeyHash: addressFelt(crypto.PubkeyToAddress(priv.PublicKey)),
	})
	if err != nil {
		return nil, err
	}
	id, err := NewIdentity(rep)
	if err != nil {
		return nil, err
	}
	return &Secp256k1Key{priv: priv, id: id}, nil
}

func (k *Secp256k1Key) Identity() Identity {
	return k.id
}

// SignRaw returns [1, pubkey_hash, r.low, r.high, s.low, s.high, y_parity].
func (k *Secp256k1Key) SignRaw(hash *felt.Felt) (Signature, error) {
	digest := hash.Bytes()
	sig, err := crypto.Sign(digest[:], k.priv)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s: %w", hash, err)
	}
	return secpShare(Secp256k1SignerType, k.id.Signer.Secp256k1.PubKeyHash, sig), nil
}

// Eip191Key signs the transaction hash as an EIP-191 personal message.
type Eip191Key struct {
	priv *ecdsa.PrivateKey
	id   Identity
}

// NewEip191Key wraps priv.
func NewEip191Key(priv *ecdsa.PrivateKey) (*Eip191Key, error) {
	rep, err := NewRepresentation(Eip191SignerType, Eip191Signer{
		EthAddress: addressFelt(crypto.PubkeyToAddress(priv.PublicKey)),
	})
	if err != nil {
		return nil, err
	}
	id, err := NewIdentity(rep)
	if err != nil {
		return nil, err
	}
	return &Eip191Key{priv: priv, id: id}, nil
}

func (k *Eip191Key) Identity() Identity {
	return k.id
}

// SignRaw returns [3, eth_address, r.low, r.high, s.low, s.high, y_parity].
func (k *Eip191Key) SignRaw(hash *felt.Felt) (Signature, error) {
	msg := hash.Bytes()
	// EIP-191: Signed Data Standard
	prefixed := append([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(msg))), msg[:]...)
	digest := crypto.Keccak256(prefixed)

	sig, err := crypto.Sign(digest, k.priv)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s: %w", hash, err)
	}
	return secpShare(Eip191SignerType, k.id.Signer.Eip191.EthAddress, sig), nil
}

// secpShare serializes a 65-byte [R || S || V] signature as u256 limbs.
func secpShare(t SignerType, signer *felt.Felt, sig []byte) Signature {
	r := new(uint256.Int).SetBytes(sig[:32])
	s := new(uint256.Int).SetBytes(sig[32:64])
	rLow, rHigh := splitU256(r)
	sLow, sHigh := splitU256(s)
	return Signature{
		new(felt.Felt).SetUint64(uint64(t)),
		signer,
		rLow, rHigh,
		sLow, sHigh,
		new(felt.Felt).SetUint64(uint64(sig[64])),
	}
}

func addressFelt(addr common.Address) *felt.Felt {
	return new(felt.Felt).SetBytes(addr.Bytes())
}
