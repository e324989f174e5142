package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xueqianLu/starksigner/internal/metrics"
	"github.com/xueqianLu/starksigner/internal/signer"
)

// SignHashHandler signs a precomputed hash with one or more managed keys.
type SignHashHandler struct {
	signer *signer.Signer
}

// NewSignHashHandler creates a new SignHashHandler.
func NewSignHashHandler(s *signer.Signer) *SignHashHandler {
	return &SignHashHandler{signer: s}
}

// ServeHTTP implements the http.Handler interface.
func (h *SignHashHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}

	start := time.Now()
	var req SignHashRequest
	sig, err := func() (signer.Signature, error) {
		if err := decodeRequest(r, &req); err != nil {
			return nil, err
		}
		if req.Hash == nil {
			return nil, fmt.Errorf("%w: hash is required", errBadRequest)
		}
		return h.signer.SignHash(req.Signers, req.Hash)
	}()
	metrics.Signing.ObserveSign("hash", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SignatureResponse{Signature: sig})
}
