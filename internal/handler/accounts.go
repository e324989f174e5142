package handler

import (
	"net/http"

	"github.com/xueqianLu/starksigner/internal/signer"
)

// AccountsHandler handles requests for the list of managed public keys.
type AccountsHandler struct {
	km signer.KeyManager
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(km signer.KeyManager) *AccountsHandler {
	return &AccountsHandler{km: km}
}

// ServeHTTP implements the http.Handler interface.
func (h *AccountsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}

	accounts := h.km.GetAccounts()
	accStrs := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		accStrs = append(accStrs, acc.String())
	}
	writeJSON(w, http.StatusOK, accStrs)
}
