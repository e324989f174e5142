package signer

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/xueqianLu/starksigner/internal/txn"
)

// Signature is a flattened sequence of field elements: a single key's share or
// a composite multisig signature.
type Signature []*felt.Felt

// RawSigner is the one signing primitive every backend implements.
type RawSigner interface {
	// SignRaw signs a message hash and returns the resulting share.
	SignRaw(hash *felt.Felt) (Signature, error)
}

// Key is a single signer that can take part in a multisig.
type Key interface {
	RawSigner

	// Identity returns the GUID, stored value and tagged representation of the key.
	Identity() Identity
}

// SignTransaction signs an invoke transaction over calls.
func SignTransaction(s RawSigner, calls []txn.Call, d *txn.Details) (Signature, error) {
	calldata := txn.ExecuteCalldata(calls, d.CairoVersion)
	return signHash(s, txn.Invoke, d, calldata)
}

// SignDeclareTransaction signs a declare transaction.
func SignDeclareTransaction(s RawSigner, d *txn.Details) (Signature, error) {
	return signHash(s, txn.Declare, d, nil)
}

// SignDeployAccountTransaction signs a deploy-account transaction. A missing
// SenderAddress is derived from the class hash, salt and constructor calldata.
func SignDeployAccountTransaction(s RawSigner, d *txn.Details) (Signature, error) {
	if d.SenderAddress == nil {
		d.SenderAddress = txn.ContractAddress(d.AddressSalt, d.ClassHash, d.ConstructorCalldata, nil)
	}
	return signHash(s, txn.DeployAccount, d, d.ConstructorCalldata)
}

func signHash(s RawSigner, kind txn.Kind, d *txn.Details, calldata []*felt.Felt) (Signature, error) {
	hash, err := txn.BuildHash(kind, d, calldata)
	if err != nil {
		return nil, err
	}
	sig, err := s.SignRaw(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s transaction: %w", kind, err)
	}
	return sig, nil
}

// Signer resolves keys held by a KeyManager into multisig signers.
type Signer struct {
	keyManager KeyManager
}

// NewSigner creates a new Signer with a given KeyManager.
func NewSigner(keyManager KeyManager) *Signer {
	return &Signer{
		keyManager: keyManager,
	}
}

// GetAccounts returns the public keys held by the underlying KeyManager.
func (s *Signer) GetAccounts() []*felt.Felt {
	return s.keyManager.GetAccounts()
}

// CreateKey creates a new key in the KeyManager and returns it.
func (s *Signer) CreateKey() (*StarknetKey, error) {
	return s.keyManager.CreateKey()
}

// Multisig returns a multisig over the managed keys with the given public keys.
func (s *Signer) Multisig(pubs []*felt.Felt) (*Multisig, error) {
	if len(pubs) == 0 {
		return nil, fmt.Errorf("%w: no signers requested", ErrKeyNotFound)
	}
	keys := make([]Key, 0, len(pubs))
	seen := make(map[felt.Felt]struct{}, len(pubs))
	for _, pub := range pubs {
		if pub != nil {
			if _, dup := seen[*pub]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateSigner, pub)
			}
			seen[*pub] = struct{}{}
		}
		k, err := s.keyManager.Key(pub)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return NewMultisig(keys...), nil
}

// SignHash signs hash with the managed keys with the given public keys.
func (s *Signer) SignHash(pubs []*felt.Felt, hash *felt.Felt) (Signature, error) {
	m, err := s.Multisig(pubs)
	if err != nil {
		return nil, err
	}
	return m.SignRaw(hash)
}
