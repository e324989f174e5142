package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/hashicorp/vault/api"
	"github.com/spf13/viper"
	"github.com/xueqianLu/starksigner/internal/account"
	"github.com/xueqianLu/starksigner/internal/signer"
	"github.com/xueqianLu/starksigner/internal/txn"
)

// Config holds the application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	KeyManager KeyManagerConfig `mapstructure:"key_manager"`
	Starknet   StarknetConfig   `mapstructure:"starknet"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Address string `mapstructure:"address"`
}

// AuthConfig holds the HMAC credentials clients sign requests with.
type AuthConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	APISecret   string        `mapstructure:"api_secret"`
	MaxTimeSkew time.Duration `mapstructure:"max_time_skew"`
}

// KeyManagerConfig holds the configuration for the key manager.
type KeyManagerConfig struct {
	Type  string      `mapstructure:"type"` // "local" or "vault"
	Local LocalConfig `mapstructure:"local"`
	Vault VaultConfig `mapstructure:"vault"`
}

// LocalConfig holds the configuration for the local key manager.
type LocalConfig struct {
	KeyDir      string `mapstructure:"key_dir"`
	Password    string `mapstructure:"password"`
	LightScrypt bool   `mapstructure:"light_scrypt"`
}

// VaultConfig holds the Vault configuration.
type VaultConfig struct {
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	Mount      string `mapstructure:"mount"`
	PathPrefix string `mapstructure:"path_prefix"`
}

// StarknetConfig holds the node endpoint and the account signing defaults.
type StarknetConfig struct {
	RPCURL         string `mapstructure:"rpc_url"`
	ChainID        string `mapstructure:"chain_id"` // short string or hex, empty to ask the node
	DefaultVersion string `mapstructure:"default_version"`
	CairoVersion   string `mapstructure:"cairo_version"`
	AmountMargin   uint64 `mapstructure:"amount_margin"`
	PriceMargin    uint64 `mapstructure:"price_margin"`
	MaxFeeMargin   uint64 `mapstructure:"max_fee_margin"`
}

// LogConfig holds the logger configuration.
type LogConfig struct {
	Env string `mapstructure:"env"` // "production" or "development"
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "2818")
	v.SetDefault("server.address", "")
	v.SetDefault("auth.api_key", "")
	v.SetDefault("auth.api_secret", "")
	v.SetDefault("auth.max_time_skew", "60s")
	v.SetDefault("key_manager.type", "local")
	v.SetDefault("key_manager.local.key_dir", "./keys")
	v.SetDefault("key_manager.local.password", "")
	v.SetDefault("key_manager.local.light_scrypt", false)
	v.SetDefault("key_manager.vault.address", "http://127.0.0.1:8200")
	v.SetDefault("key_manager.vault.token", "")
	v.SetDefault("key_manager.vault.mount", "secret")
	v.SetDefault("key_manager.vault.path_prefix", "starknet")
	v.SetDefault("starknet.rpc_url", "")
	v.SetDefault("starknet.chain_id", "")
	v.SetDefault("starknet.default_version", "0x3")
	v.SetDefault("starknet.cairo_version", "1")
	v.SetDefault("starknet.amount_margin", txn.DefaultAmountMargin)
	v.SetDefault("starknet.price_margin", txn.DefaultPriceMargin)
	v.SetDefault("starknet.max_fee_margin", txn.DefaultMaxFeeMargin)
	v.SetDefault("log.env", "production")
}

// Load reads configuration into v from path (or ./config.yaml) and the
// environment. Environment keys are prefixed with STARKSIGNER_, dots become
// underscores.
func Load(v *viper.Viper, path string) (config Config, err error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("starksigner")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return config, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to decode config: %w", err)
	}
	return config, nil
}

// LoadConfig reads configuration with the global viper instance.
func LoadConfig(path string) (Config, error) {
	return Load(viper.GetViper(), path)
}

// Options converts the key manager section into backend options, connecting
// to Vault when that backend is selected.
func (c KeyManagerConfig) Options() (signer.KeyManagerOptions, error) {
	opts := signer.KeyManagerOptions{
		Type:        c.Type,
		KeyDir:      c.Local.KeyDir,
		Password:    c.Local.Password,
		Light:       c.Local.LightScrypt,
		VaultMount:  c.Vault.Mount,
		VaultPrefix: c.Vault.PathPrefix,
	}
	if c.Type != "vault" {
		return opts, nil
	}

	vaultConfig := api.DefaultConfig()
	if err := vaultConfig.ReadEnvironment(); err != nil {
		return opts, fmt.Errorf("could not read Vault environment variables: %w", err)
	}
	if c.Vault.Address != "" {
		vaultConfig.Address = c.Vault.Address
	}
	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return opts, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if c.Vault.Token != "" {
		client.SetToken(c.Vault.Token)
	}
	opts.VaultClient = client
	return opts, nil
}

// AccountConfig converts the starknet section into account signing defaults.
func (c StarknetConfig) AccountConfig() (account.Config, error) {
	cfg := account.Config{
		AmountMargin: c.AmountMargin,
		PriceMargin:  c.PriceMargin,
		MaxFeeMargin: c.MaxFeeMargin,
	}

	version, err := txn.ParseVersion(c.DefaultVersion)
	if err != nil {
		return cfg, fmt.Errorf("starknet.default_version: %w", err)
	}
	if version.IsQuery() {
		return cfg, fmt.Errorf("starknet.default_version: %w: %s is a query version", txn.ErrInvalidVersion, version)
	}
	cfg.DefaultVersion = version

	switch c.CairoVersion {
	case "", "1":
		cfg.CairoVersion = txn.Cairo1
	case "0":
		cfg.CairoVersion = txn.Cairo0
	default:
		return cfg, fmt.Errorf("starknet.cairo_version: invalid value %q", c.CairoVersion)
	}

	if c.ChainID != "" {
		cfg.ChainID, err = parseChainID(c.ChainID)
		if err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// parseChainID accepts a hex value or a short string such as SN_MAIN.
func parseChainID(s string) (*felt.Felt, error) {
	if strings.HasPrefix(s, "0x") {
		id, err := new(felt.Felt).SetString(s)
		if err != nil {
			return nil, fmt.Errorf("starknet.chain_id: %w", err)
		}
		return id, nil
	}
	if len(s) > 31 {
		return nil, fmt.Errorf("starknet.chain_id: %q is longer than a short string", s)
	}
	return txn.ShortString(s), nil
}
