package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xueqianLu/starksigner/internal/txn"
)

func TestLoadDefaults(t *testing.T) {
	// an explicit path that does not exist is an error
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	t.Chdir(t.TempDir())
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "2818", cfg.Server.Port)
	assert.Equal(t, "local", cfg.KeyManager.Type)
	assert.Equal(t, time.Minute, cfg.Auth.MaxTimeSkew)
	assert.Equal(t, txn.DefaultAmountMargin, cfg.Starknet.AmountMargin)
	assert.Equal(t, "production", cfg.Log.Env)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
key_manager:
  type: vault
  vault:
    mount: kv
starknet:
  chain_id: SN_SEPOLIA
  default_version: "0x1"
  amount_margin: 10
`), 0600))
	t.Setenv("STARKSIGNER_AUTH_API_KEY", "from-env")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "vault", cfg.KeyManager.Type)
	assert.Equal(t, "kv", cfg.KeyManager.Vault.Mount)
	assert.Equal(t, "starknet", cfg.KeyManager.Vault.PathPrefix)
	assert.Equal(t, "from-env", cfg.Auth.APIKey)

	acc, err := cfg.Starknet.AccountConfig()
	require.NoError(t, err)
	assert.Equal(t, txn.V1, acc.DefaultVersion)
	assert.Equal(t, uint64(10), acc.AmountMargin)
	assert.True(t, acc.ChainID.Equal(txn.ShortString("SN_SEPOLIA")))

	opts, err := cfg.KeyManager.Options()
	require.NoError(t, err)
	assert.NotNil(t, opts.VaultClient)
	assert.Equal(t, "kv", opts.VaultMount)
}

func TestAccountConfigErrors(t *testing.T) {
	_, err := StarknetConfig{DefaultVersion: "0x9"}.AccountConfig()
	assert.ErrorIs(t, err, txn.ErrInvalidVersion)

	_, err = StarknetConfig{DefaultVersion: "0x100000000000000000000000000000003"}.AccountConfig()
	assert.ErrorIs(t, err, txn.ErrInvalidVersion)

	_, err = StarknetConfig{DefaultVersion: "0x3", CairoVersion: "2"}.AccountConfig()
	assert.Error(t, err)

	cfg, err := StarknetConfig{DefaultVersion: "3", ChainID: "0x534e5f4d41494e"}.AccountConfig()
	require.NoError(t, err)
	assert.Equal(t, txn.V3, cfg.DefaultVersion)
	assert.Equal(t, txn.Cairo1, cfg.CairoVersion)
	assert.True(t, cfg.ChainID.Equal(txn.ShortString("SN_MAIN")))
}
