package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/xueqianLu/starksigner/internal/account"
	"github.com/xueqianLu/starksigner/internal/metrics"
	"github.com/xueqianLu/starksigner/internal/signer"
	"github.com/xueqianLu/starksigner/internal/txn"
	"github.com/xueqianLu/starksigner/pkg/logger"
	"go.uber.org/zap"
)

// txAccounts builds a per-request account over the requested managed keys.
type txAccounts struct {
	signer   *signer.Signer
	provider account.Provider
	cfg      account.Config
}

func (t txAccounts) account(address *felt.Felt, pubs []*felt.Felt) (*account.Account, error) {
	m, err := t.signer.Multisig(pubs)
	if err != nil {
		return nil, err
	}
	est, err := m.Estimator()
	if err != nil {
		return nil, err
	}
	return account.New(address, t.provider, m, t.cfg, account.WithEstimator(est)), nil
}

func (t txAccounts) serve(w http.ResponseWriter, kind txn.Kind, sign func() (*account.Signed, error)) {
	start := time.Now()
	signed, err := sign()
	metrics.Signing.ObserveSign(kind.String(), start, err)
	if err != nil {
		if errors.Is(err, account.ErrEstimateUnavailable) {
			metrics.Signing.EstimateFailuresTotal.Inc()
		}
		writeError(w, err)
		return
	}

	logger.Info("Signed transaction",
		zap.Stringer("kind", kind),
		zap.Stringer("version", signed.Details.Version),
		zap.Stringer("hash", signed.Hash),
	)
	writeJSON(w, http.StatusOK, SignTxResponse{
		TransactionHash: signed.Hash,
		Signature:       signed.Signature,
		Transaction:     signed.Broadcasted(),
	})
}

// SignTxHandler handles invoke transaction signing requests.
type SignTxHandler struct {
	txAccounts
}

// NewSignTxHandler creates a new SignTxHandler.
func NewSignTxHandler(s *signer.Signer, provider account.Provider, cfg account.Config) *SignTxHandler {
	return &SignTxHandler{txAccounts{signer: s, provider: provider, cfg: cfg}}
}

// ServeHTTP implements the http.Handler interface.
func (h *SignTxHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}

	h.serve(w, txn.Invoke, func() (*account.Signed, error) {
		var req SignTxRequest
		if err := decodeRequest(r, &req); err != nil {
			return nil, err
		}
		if req.Address == nil {
			return nil, fmt.Errorf("%w: address is required", errBadRequest)
		}
		acc, err := h.account(req.Address, req.Signers)
		if err != nil {
			return nil, err
		}
		return acc.Execute(r.Context(), req.Calls, req.Details)
	})
}

// SignDeclareHandler handles declare transaction signing requests.
type SignDeclareHandler struct {
	txAccounts
}

// NewSignDeclareHandler creates a new SignDeclareHandler.
func NewSignDeclareHandler(s *signer.Signer, provider account.Provider, cfg account.Config) *SignDeclareHandler {
	return &SignDeclareHandler{txAccounts{signer: s, provider: provider, cfg: cfg}}
}

// ServeHTTP implements the http.Handler interface.
func (h *SignDeclareHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}

	h.serve(w, txn.Declare, func() (*account.Signed, error) {
		var req SignDeclareRequest
		if err := decodeRequest(r, &req); err != nil {
			return nil, err
		}
		if req.Address == nil || req.ClassHash == nil {
			return nil, fmt.Errorf("%w: address and class_hash are required", errBadRequest)
		}
		acc, err := h.account(req.Address, req.Signers)
		if err != nil {
			return nil, err
		}
		return acc.Declare(r.Context(), account.DeclarePayload{
			ClassHash:         req.ClassHash,
			CompiledClassHash: req.CompiledClassHash,
			ContractClass:     req.ContractClass,
		}, req.Details)
	})
}

// SignDeployAccountHandler handles deploy-account transaction signing requests.
type SignDeployAccountHandler struct {
	txAccounts
}

// NewSignDeployAccountHandler creates a new SignDeployAccountHandler.
func NewSignDeployAccountHandler(s *signer.Signer, provider account.Provider, cfg account.Config) *SignDeployAccountHandler {
	return &SignDeployAccountHandler{txAccounts{signer: s, provider: provider, cfg: cfg}}
}

// ServeHTTP implements the http.Handler interface.
func (h *SignDeployAccountHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}

	h.serve(w, txn.DeployAccount, func() (*account.Signed, error) {
		var req SignDeployAccountRequest
		if err := decodeRequest(r, &req); err != nil {
			return nil, err
		}
		if req.ClassHash == nil {
			return nil, fmt.Errorf("%w: class_hash is required", errBadRequest)
		}
		acc, err := h.account(req.ContractAddress, req.Signers)
		if err != nil {
			return nil, err
		}
		salt := req.AddressSalt
		if salt == nil {
			salt = new(felt.Felt)
		}
		return acc.DeployAccount(r.Context(), account.DeployAccountPayload{
			ClassHash:           req.ClassHash,
			AddressSalt:         salt,
			ConstructorCalldata: req.ConstructorCalldata,
			ContractAddress:     req.ContractAddress,
		}, req.Details)
	})
}
