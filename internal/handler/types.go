package handler

import (
	"encoding/json"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/xueqianLu/starksigner/internal/rpc"
	"github.com/xueqianLu/starksigner/internal/txn"
)

// CreateAccountResponse represents the response for a new key creation.
type CreateAccountResponse struct {
	PublicKey *felt.Felt `json:"public_key"`
	GUID      *felt.Felt `json:"guid"`
}

// SignHashRequest represents the request to sign a raw hash.
type SignHashRequest struct {
	Signers []*felt.Felt `json:"signers"`
	Hash    *felt.Felt   `json:"hash"`
}

// SignatureResponse represents a composite signature.
type SignatureResponse struct {
	Signature []*felt.Felt `json:"signature"`
}

// SignTxRequest represents the request to sign an invoke transaction.
type SignTxRequest struct {
	Signers []*felt.Felt         `json:"signers"`
	Address *felt.Felt           `json:"address"`
	Calls   []txn.Call           `json:"calls"`
	Details txn.UniversalDetails `json:"details"`
}

// SignDeclareRequest represents the request to sign a declare transaction.
type SignDeclareRequest struct {
	Signers           []*felt.Felt         `json:"signers"`
	Address           *felt.Felt           `json:"address"`
	ClassHash         *felt.Felt           `json:"class_hash"`
	CompiledClassHash *felt.Felt           `json:"compiled_class_hash"`
	ContractClass     json.RawMessage      `json:"contract_class"`
	Details           txn.UniversalDetails `json:"details"`
}

// SignDeployAccountRequest represents the request to sign a deploy-account transaction.
type SignDeployAccountRequest struct {
	Signers             []*felt.Felt         `json:"signers"`
	ClassHash           *felt.Felt           `json:"class_hash"`
	AddressSalt         *felt.Felt           `json:"contract_address_salt"`
	ConstructorCalldata []*felt.Felt         `json:"constructor_calldata"`
	ContractAddress     *felt.Felt           `json:"contract_address,omitempty"`
	Details             txn.UniversalDetails `json:"details"`
}

// SignTxResponse represents a signed transaction ready to broadcast.
type SignTxResponse struct {
	TransactionHash *felt.Felt                 `json:"transaction_hash"`
	Signature       []*felt.Felt               `json:"signature"`
	Transaction     rpc.BroadcastedTransaction `json:"transaction"`
}

// ErrorResponse represents a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
