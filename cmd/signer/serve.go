package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xueqianLu/starksigner/internal/account"
	"github.com/xueqianLu/starksigner/internal/middleware"
	"github.com/xueqianLu/starksigner/internal/rpc"
	"github.com/xueqianLu/starksigner/internal/server"
	"github.com/xueqianLu/starksigner/pkg/logger"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP signing service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.String("port", "", "listen port")
	flags.String("rpc-url", "", "Starknet JSON-RPC endpoint used for nonces and fee estimates")
	_ = viper.BindPFlag("server.port", flags.Lookup("port"))
	_ = viper.BindPFlag("starknet.rpc_url", flags.Lookup("rpc-url"))
}

func serve(ctx context.Context) error {
	km, err := openKeyManager()
	if err != nil {
		return err
	}

	accountCfg, err := cfg.Starknet.AccountConfig()
	if err != nil {
		return err
	}

	routes := server.Routes{KeyManager: km, Account: accountCfg}
	if cfg.Starknet.RPCURL != "" {
		client, err := rpc.Dial(ctx, cfg.Starknet.RPCURL)
		if err != nil {
			return err
		}
		defer client.Close()
		routes.Provider = client
	} else {
		logger.Warn("No starknet.rpc_url configured; requests must carry nonce, fee fields and a configured chain id")
	}
	if cfg.Auth.APIKey != "" {
		routes.Auth = middleware.NewAuthMiddleware(cfg.Auth.APIKey, cfg.Auth.APISecret, cfg.Auth.MaxTimeSkew)
	} else {
		logger.Warn("Authentication disabled; set auth.api_key to enable it")
	}

	srv := server.NewServer(server.NewRouter(routes), cfg.Server.Address, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening",
			zap.String("addr", srv.Addr),
			zap.Stringer("default_version", accountCfg.DefaultVersion),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// compile-time check that the node client satisfies the account provider.
var _ account.Provider = (*rpc.Client)(nil)
