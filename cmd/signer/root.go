package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xueqianLu/starksigner/internal/config"
	"github.com/xueqianLu/starksigner/internal/metrics"
	"github.com/xueqianLu/starksigner/internal/signer"
	"github.com/xueqianLu/starksigner/pkg/logger"
	"go.uber.org/zap"
)

var (
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:           "starksigner",
	Short:         "Starknet transaction signing service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := logger.Init(cfg.Log.Env); err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default ./config.yaml)")
	flags.String("key-dir", "", "directory of the local keystore")
	flags.String("key-manager", "", `key backend, "local" or "vault"`)
	flags.String("log-env", "", `"production" or "development"`)
	_ = viper.BindPFlag("key_manager.local.key_dir", flags.Lookup("key-dir"))
	_ = viper.BindPFlag("key_manager.type", flags.Lookup("key-manager"))
	_ = viper.BindPFlag("log.env", flags.Lookup("log-env"))

	rootCmd.AddCommand(serveCmd, keysCmd, signHashCmd)
}

// openKeyManager builds the configured key backend.
func openKeyManager() (signer.KeyManager, error) {
	opts, err := cfg.KeyManager.Options()
	if err != nil {
		return nil, err
	}
	km, err := signer.NewKeyManager(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create KeyManager: %w", err)
	}
	n := len(km.GetAccounts())
	metrics.Signing.KeysManaged.Set(float64(n))
	logger.Info("Key manager ready", zap.String("type", opts.Type), zap.Int("keys", n))
	return km, nil
}
