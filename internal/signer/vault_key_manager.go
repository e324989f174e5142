package signer

import (
	"fmt"
	"sync"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/hashicorp/vault/api"
	"github.com/xueqianLu/starksigner/pkg/logger"
	"go.uber.org/zap"
)

// VaultKeyManager manages keys stored in a HashiCorp Vault KV v2 secrets engine.
// Vault's transit engine has no Stark curve, so private keys are kept as KV
// secrets and signing happens in-process.
type VaultKeyManager struct {
	vaultClient *api.Client
	mount       string
	prefix      string
	keys        map[string]*StarknetKey // keyed by public key hex
	mu          sync.RWMutex
}

// NewVaultKeyManager creates a new VaultKeyManager and loads the keys under mount/prefix.
func NewVaultKeyManager(vaultClient *api.Client, mount, prefix string) (*VaultKeyManager, error) {
	if vaultClient == nil {
		return nil, fmt.Errorf("vault client is required")
	}
	if mount == "" {
		mount = "secret"
	}
	if prefix == "" {
		prefix = "starknet"
	}
	km := &VaultKeyManager{
		vaultClient: vaultClient,
		mount:       mount,
		prefix:      prefix,
		keys:        make(map[string]*StarknetKey),
	}

	if err := km.loadExistingKeys(); err != nil {
		return nil, fmt.Errorf("failed to load existing keys from vault: %w", err)
	}
	return km, nil
}

func (km *VaultKeyManager) dataPath(name string) string {
	return fmt.Sprintf("%s/data/%s/%s", km.mount, km.prefix, name)
}

func (km *VaultKeyManager) loadExistingKeys() error {
	secret, err := km.vaultClient.Logical().List(fmt.Sprintf("%s/metadata/%s", km.mount, km.prefix))
	if err != nil {
		return err
	}

	if secret == nil || secret.Data["keys"] == nil {
		logger.Info("No existing keys found in Vault", zap.String("mount", km.mount), zap.String("prefix", km.prefix))
		return nil
	}

	names, ok := secret.Data["keys"].([]interface{})
	if !ok {
		return fmt.Errorf("unexpected format for keys from vault")
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	for _, n := range names {
		name, ok := n.(string)
		if !ok {
			continue
		}
		key, err := km.readKey(name)
		if err != nil {
			logger.Warn("Could not load key from Vault", zap.String("name", name), zap.Error(err))
			continue
		}
		km.keys[key.PublicKey().String()] = key
		logger.Info("Loaded Vault key", zap.String("name", name))
	}
	return nil
}

func (km *VaultKeyManager) readKey(name string) (*StarknetKey, error) {
	secret, err := km.vaultClient.Logical().Read(km.dataPath(name))
	if err != nil {
		return nil, err
	}
	if secret == nil || secret.Data["data"] == nil {
		return nil, fmt.Errorf("key '%s' not found in vault", name)
	}
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected format for key data")
	}
	privHex, ok := data["private_key"].(string)
	if !ok {
		return nil, fmt.Errorf("private key not found in key data")
	}
	priv, err := new(felt.Felt).SetString(privHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return NewStarknetKey(priv)
}

func (km *VaultKeyManager) writeKey(key *StarknetKey) error {
	priv, err := key.PrivateKey()
	if err != nil {
		return err
	}
	name := key.PublicKey().String()
	_, err = km.vaultClient.Logical().Write(km.dataPath(name), map[string]interface{}{
		"data": map[string]interface{}{
			"private_key": priv.String(),
			"public_key":  name,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write key to vault: %w", err)
	}

	km.mu.Lock()
	defer km.mu.Unlock()
	km.keys[name] = key
	return nil
}

// CreateKey generates a new key and stores it in Vault.
func (km *VaultKeyManager) CreateKey() (*StarknetKey, error) {
	key, err := GenerateStarknetKey()
	if err != nil {
		return nil, err
	}
	if err := km.writeKey(key); err != nil {
		return nil, err
	}
	logger.Info("Created Vault key", zap.Stringer("public_key", key.PublicKey()))
	return key, nil
}

// ImportKey stores an existing private key in Vault.
func (km *VaultKeyManager) ImportKey(priv *felt.Felt) (*StarknetKey, error) {
	key, err := NewStarknetKey(priv)
	if err != nil {
		return nil, err
	}
	if err := km.writeKey(key); err != nil {
		return nil, err
	}
	logger.Info("Imported Vault key", zap.Stringer("public_key", key.PublicKey()))
	return key, nil
}

// GetAccounts returns all managed public keys in ascending order.
func (km *VaultKeyManager) GetAccounts() []*felt.Felt {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return sortedPublicKeys(km.keys)
}

// Key returns the key with the given public key.
func (km *VaultKeyManager) Key(pub *felt.Felt) (*StarknetKey, error) {
	if pub == nil {
		return nil, fmt.Errorf("%w: <nil>", ErrKeyNotFound)
	}
	km.mu.RLock()
	defer km.mu.RUnlock()

	key, ok := km.keys[pub.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, pub)
	}
	return key, nil
}
