package handler

import (
	"net/http"

	"github.com/xueqianLu/starksigner/internal/metrics"
	"github.com/xueqianLu/starksigner/internal/signer"
)

// CreateAccountHandler handles requests to create a new key.
type CreateAccountHandler struct {
	km signer.KeyManager
}

// NewCreateAccountHandler creates a new CreateAccountHandler.
func NewCreateAccountHandler(km signer.KeyManager) *CreateAccountHandler {
	return &CreateAccountHandler{km: km}
}

// ServeHTTP implements the http.Handler interface.
func (h *CreateAccountHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}

	key, err := h.km.CreateKey()
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.Signing.KeysCreatedTotal.Inc()
	metrics.Signing.KeysManaged.Set(float64(len(h.km.GetAccounts())))

	writeJSON(w, http.StatusCreated, CreateAccountResponse{
		PublicKey: key.PublicKey(),
		GUID:      key.Identity().GUID,
	})
}
