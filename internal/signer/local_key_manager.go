package signer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/xueqianLu/starksigner/pkg/logger"
	"go.uber.org/zap"
)

// LocalKeyManager manages keys stored locally on disk, encrypted with the
// keystore v3 scrypt/AES scheme.
type LocalKeyManager struct {
	keyDir   string
	password string
	scryptN  int
	scryptP  int
	keys     map[string]*StarknetKey // keyed by public key hex
	mu       sync.RWMutex
}

// LocalOption configures a LocalKeyManager.
type LocalOption func(*LocalKeyManager)

// WithLightScrypt uses the light scrypt parameters. Meant for tests and development.
func WithLightScrypt() LocalOption {
	return func(km *LocalKeyManager) {
		km.scryptN = keystore.LightScryptN
		km.scryptP = keystore.LightScryptP
	}
}

// keyFile is the on-disk representation of one key.
type keyFile struct {
	PublicKey *felt.Felt          `json:"public_key"`
	Crypto    keystore.CryptoJSON `json:"crypto"`
}

// NewLocalKeyManager creates a new LocalKeyManager and loads existing keys from disk.
func NewLocalKeyManager(keyDir, password string, opts ...LocalOption) (*LocalKeyManager, error) {
	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	km := &LocalKeyManager{
		keyDir:   keyDir,
		password: password,
		scryptN:  keystore.StandardScryptN,
		scryptP:  keystore.StandardScryptP,
		keys:     make(map[string]*StarknetKey),
	}
	for _, opt := range opts {
		opt(km)
	}

	files, err := os.ReadDir(keyDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read key directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		key, err := km.loadKey(filepath.Join(keyDir, file.Name()))
		if err != nil {
			logger.Warn("Skipping unreadable key file", zap.String("file", file.Name()), zap.Error(err))
			continue
		}
		km.keys[key.PublicKey().String()] = key
		logger.Info("Loaded local key", zap.Stringer("public_key", key.PublicKey()))
	}

	return km, nil
}

func (km *LocalKeyManager) loadKey(path string) (*StarknetKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("failed to parse key file: %w", err)
	}
	privBytes, err := keystore.DecryptDataV3(kf.Crypto, km.password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt key file: %w", err)
	}
	key, err := NewStarknetKey(new(felt.Felt).SetBytes(privBytes))
	if err != nil {
		return nil, err
	}
	if kf.PublicKey != nil && !kf.PublicKey.Equal(key.PublicKey()) {
		return nil, fmt.Errorf("public key mismatch: file has %s, key derives %s", kf.PublicKey, key.PublicKey())
	}
	return key, nil
}

// CreateKey generates a new key pair and saves it to disk (encrypted).
func (km *LocalKeyManager) CreateKey() (*StarknetKey, error) {
	key, err := GenerateStarknetKey()
	if err != nil {
		return nil, err
	}
	if err := km.store(key); err != nil {
		return nil, err
	}
	logger.Info("Created and saved encrypted local key", zap.Stringer("public_key", key.PublicKey()))
	return key, nil
}

// ImportKey saves an existing private key to disk (encrypted).
func (km *LocalKeyManager) ImportKey(priv *felt.Felt) (*StarknetKey, error) {
	key, err := NewStarknetKey(priv)
	if err != nil {
		return nil, err
	}
	if err := km.store(key); err != nil {
		return nil, err
	}
	logger.Info("Imported local key", zap.Stringer("public_key", key.PublicKey()))
	return key, nil
}

func (km *LocalKeyManager) store(key *StarknetKey) error {
	priv, err := key.PrivateKey()
	if err != nil {
		return err
	}
	privBytes := priv.Bytes()
	cryptoJSON, err := keystore.EncryptDataV3(privBytes[:], []byte(km.password), km.scryptN, km.scryptP)
	if err != nil {
		return fmt.Errorf("failed to encrypt private key: %w", err)
	}
	data, err := json.Marshal(keyFile{PublicKey: key.PublicKey(), Crypto: cryptoJSON})
	if err != nil {
		return fmt.Errorf("failed to encode key file: %w", err)
	}
	filePath := filepath.Join(km.keyDir, key.PublicKey().String()+".json")
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to save encrypted key: %w", err)
	}

	km.mu.Lock()
	defer km.mu.Unlock()
	km.keys[key.PublicKey().String()] = key
	return nil
}

// GetAccounts returns all managed public keys in ascending order.
func (km *LocalKeyManager) GetAccounts() []*felt.Felt {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return sortedPublicKeys(km.keys)
}

// Key returns the key with the given public key.
func (km *LocalKeyManager) Key(pub *felt.Felt) (*StarknetKey, error) {
	if pub == nil {
		return nil, fmt.Errorf("%w: <nil>", ErrKeyNotFound)
	}
	km.mu.RLock()
	key, ok := km.keys[pub.String()]
	km.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, pub)
	}
	return key, nil
}

func sortedPublicKeys(keys map[string]*StarknetKey) []*felt.Felt {
	out := make([]*felt.Felt, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.PublicKey())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Cmp(out[j]) < 0
	})
	return out
}
