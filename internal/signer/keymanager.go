package signer

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/hashicorp/vault/api"
)

// KeyManager defines the interface for storing Starknet keys.
// It abstracts the underlying key storage, which can be a local keystore or a remote service like Vault.
type KeyManager interface {
	// GetAccounts returns the public keys of all keys managed by the KeyManager.
	GetAccounts() []*felt.Felt

	// CreateKey generates a new key pair and stores it in the underlying storage backend.
	CreateKey() (*StarknetKey, error)

	// ImportKey stores an existing private key and returns the resulting key pair.
	ImportKey(priv *felt.Felt) (*StarknetKey, error)

	// Key returns the key with the given public key, or ErrKeyNotFound.
	Key(pub *felt.Felt) (*StarknetKey, error)
}

// Backend configuration for NewKeyManager.
type KeyManagerOptions struct {
	Type string // "local" or "vault"

	KeyDir   string
	Password string
	Light    bool // use light scrypt parameters

	VaultClient *api.Client
	VaultMount  string
	VaultPrefix string
}

// NewKeyManager creates the KeyManager selected by opts.Type.
func NewKeyManager(opts KeyManagerOptions) (KeyManager, error) {
	switch opts.Type {
	case "", "local":
		var extra []LocalOption
		if opts.Light {
			extra = append(extra, WithLightScrypt())
		}
		return NewLocalKeyManager(opts.KeyDir, opts.Password, extra...)
	case "vault":
		return NewVaultKeyManager(opts.VaultClient, opts.VaultMount, opts.VaultPrefix)
	default:
		return nil, fmt.Errorf("unknown key manager type %q", opts.Type)
	}
}
