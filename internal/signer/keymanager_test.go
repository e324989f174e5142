package signer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalKeyManager(t *testing.T) {
	dir := t.TempDir()
	km, err := NewLocalKeyManager(dir, "secret", WithLightScrypt())
	require.NoError(t, err)
	assert.Empty(t, km.GetAccounts())

	created, err := km.CreateKey()
	require.NoError(t, err)
	imported, err := km.ImportKey(new(felt.Felt).SetUint64(0x1111))
	require.NoError(t, err)

	accounts := km.GetAccounts()
	require.Len(t, accounts, 2)
	assert.Negative(t, accounts[0].Cmp(accounts[1]))

	_, err = os.Stat(filepath.Join(dir, created.PublicKey().String()+".json"))
	require.NoError(t, err)

	// reload from disk
	reloaded, err := NewLocalKeyManager(dir, "secret", WithLightScrypt())
	require.NoError(t, err)
	assert.Equal(t, accounts, reloaded.GetAccounts())

	k, err := reloaded.Key(imported.PublicKey())
	require.NoError(t, err)
	priv, err := k.PrivateKey()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1111), priv.Uint64())
}

func TestLocalKeyManagerWrongPassword(t *testing.T) {
	dir := t.TempDir()
	km, err := NewLocalKeyManager(dir, "right", WithLightScrypt())
	require.NoError(t, err)
	_, err = km.CreateKey()
	require.NoError(t, err)

	other, err := NewLocalKeyManager(dir, "wrong", WithLightScrypt())
	require.NoError(t, err)
	assert.Empty(t, other.GetAccounts())
}

func TestLocalKeyManagerKeyNotFound(t *testing.T) {
	km, err := NewLocalKeyManager(t.TempDir(), "pw", WithLightScrypt())
	require.NoError(t, err)
	_, err = km.Key(new(felt.Felt).SetUint64(1))
	assert.ErrorIs(t, err, ErrKeyNotFound)
	_, err = km.Key(nil)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

// fakeVault serves the subset of the KV v2 API the key manager uses.
type fakeVault struct {
	mu      sync.Mutex
	secrets map[string]map[string]interface{}
}

func newFakeVault(t *testing.T) (*api.Client, *fakeVault) {
	t.Helper()
	fv := &fakeVault{secrets: map[string]map[string]interface{}{}}
	srv := httptest.NewServer(fv)
	t.Cleanup(srv.Close)

	cfg := api.DefaultConfig()
	cfg.Address = srv.URL
	client, err := api.NewClient(cfg)
	require.NoError(t, err)
	client.SetToken("test-token")
	return client, fv
}

func (fv *fakeVault) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/v1/")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == "LIST" || (r.Method == http.MethodGet && r.URL.Query().Get("list") == "true"):
		prefix := strings.Replace(path, "/metadata/", "/data/", 1) + "/"
		var keys []string
		for p := range fv.secrets {
			if strings.HasPrefix(p, prefix) {
				keys = append(keys, strings.TrimPrefix(p, prefix))
			}
		}
		if len(keys) == 0 {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]interface{}{"keys": keys}})
	case r.Method == http.MethodGet:
		data, ok := fv.secrets[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]interface{}{"data": data}})
	case r.Method == http.MethodPut || r.Method == http.MethodPost:
		var body struct {
			Data map[string]interface{} `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fv.secrets[path] = body.Data
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestVaultKeyManager(t *testing.T) {
	client, fv := newFakeVault(t)

	km, err := NewVaultKeyManager(client, "", "")
	require.NoError(t, err)
	assert.Empty(t, km.GetAccounts())

	created, err := km.CreateKey()
	require.NoError(t, err)
	imported, err := km.ImportKey(new(felt.Felt).SetUint64(0x2222))
	require.NoError(t, err)

	stored, ok := fv.secrets["secret/data/starknet/"+imported.PublicKey().String()]
	require.True(t, ok)
	assert.Equal(t, "0x2222", stored["private_key"])

	reloaded, err := NewVaultKeyManager(client, "secret", "starknet")
	require.NoError(t, err)
	assert.Len(t, reloaded.GetAccounts(), 2)

	k, err := reloaded.Key(created.PublicKey())
	require.NoError(t, err)
	assert.True(t, k.PublicKey().Equal(created.PublicKey()))

	_, err = reloaded.Key(new(felt.Felt).SetUint64(5))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestNewVaultKeyManagerRequiresClient(t *testing.T) {
	_, err := NewVaultKeyManager(nil, "", "")
	assert.Error(t, err)
}

func TestNewKeyManager(t *testing.T) {
	km, err := NewKeyManager(KeyManagerOptions{Type: "local", KeyDir: t.TempDir(), Password: "pw", Light: true})
	require.NoError(t, err)
	assert.IsType(t, &LocalKeyManager{}, km)

	client, _ := newFakeVault(t)
	km, err = NewKeyManager(KeyManagerOptions{Type: "vault", VaultClient: client})
	require.NoError(t, err)
	assert.IsType(t, &VaultKeyManager{}, km)

	_, err = NewKeyManager(KeyManagerOptions{Type: "hsm"})
	assert.Error(t, err)
}
