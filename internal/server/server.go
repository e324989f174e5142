package server

import (
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xueqianLu/starksigner/internal/account"
	"github.com/xueqianLu/starksigner/internal/handler"
	"github.com/xueqianLu/starksigner/internal/middleware"
	"github.com/xueqianLu/starksigner/internal/signer"
)

// Routes are the dependencies of the HTTP surface.
type Routes struct {
	KeyManager signer.KeyManager
	Provider   account.Provider
	Account    account.Config
	// Auth guards every route except /health and /metrics. Nil disables it.
	Auth *middleware.AuthMiddleware
}

// NewRouter registers every endpoint on a new mux.
func NewRouter(rt Routes) *http.ServeMux {
	s := signer.NewSigner(rt.KeyManager)
	protect := func(h http.Handler) http.Handler {
		if rt.Auth == nil {
			return h
		}
		return rt.Auth.Wrap(h)
	}

	mux := http.NewServeMux()
	mux.Handle("/health", handler.NewHealthHandler())
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/accounts", protect(handler.NewAccountsHandler(rt.KeyManager)))
	mux.Handle("/create-account", protect(handler.NewCreateAccountHandler(rt.KeyManager)))
	mux.Handle("/sign-hash", protect(handler.NewSignHashHandler(s)))
	mux.Handle("/sign-transaction", protect(handler.NewSignTxHandler(s, rt.Provider, rt.Account)))
	mux.Handle("/sign-declare", protect(handler.NewSignDeclareHandler(s, rt.Provider, rt.Account)))
	mux.Handle("/sign-deploy-account", protect(handler.NewSignDeployAccountHandler(s, rt.Provider, rt.Account)))
	return mux
}

// NewServer creates and configures an HTTP server.
func NewServer(handler http.Handler, address, port string) *http.Server {
	return &http.Server{
		Addr:         net.JoinHostPort(address, port),
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
