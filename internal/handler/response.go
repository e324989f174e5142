package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xueqianLu/starksigner/internal/account"
	"github.com/xueqianLu/starksigner/internal/signer"
	"github.com/xueqianLu/starksigner/internal/txn"
	"github.com/xueqianLu/starksigner/pkg/logger"
	"go.uber.org/zap"
)

var errBadRequest = errors.New("bad request")

var callerErrors = []error{
	errBadRequest,
	txn.ErrInvalidVersion,
	txn.ErrUnsupportedTransactionVersion,
	txn.ErrResourceBoundOverflow,
	signer.ErrUnknownSignerType,
	signer.ErrKeyNotFound,
	signer.ErrMessageOutOfRange,
	signer.ErrDuplicateSigner,
}

// statusFor maps an error to the HTTP status returned to the caller.
func statusFor(err error) int {
	if errors.Is(err, account.ErrEstimateUnavailable) || errors.Is(err, txn.ErrMissingEstimateField) {
		return http.StatusBadGateway
	}
	for _, target := range callerErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func decodeRequest(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func methodAllowed(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
