package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/xueqianLu/starksigner/internal/txn"
)

var errMissingContractClass = errors.New("declare transaction requires a contract class")

var txTypes = map[txn.Kind]string{
	txn.Invoke:        "INVOKE",
	txn.Declare:       "DECLARE",
	txn.DeployAccount: "DEPLOY_ACCOUNT",
}

// BroadcastedTransaction is a signed transaction in the shape the node accepts
// for starknet_estimateFee and the add-transaction calls.
type BroadcastedTransaction struct {
	Kind    txn.Kind
	Details *txn.Details
	// Calldata is the compiled __execute__ calldata of an invoke.
	Calldata      []*felt.Felt
	Signature     []*felt.Felt
	ContractClass json.RawMessage
}

func (tx BroadcastedTransaction) MarshalJSON() ([]byte, error) {
	typ, ok := txTypes[tx.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown transaction kind %d", tx.Kind)
	}
	d := tx.Details
	if d == nil {
		return nil, fmt.Errorf("%s transaction has no details", tx.Kind)
	}
	family, ok := d.Version.Family()
	if !ok {
		return nil, fmt.Errorf("%w: %d", txn.ErrInvalidVersion, uint8(d.Version))
	}

	m := map[string]any{
		"type":      typ,
		"version":   d.Version,
		"nonce":     orZero(d.Nonce),
		"signature": nonNil(tx.Signature),
	}

	switch family {
	case txn.FamilyV2:
		m["max_fee"] = orZero(d.MaxFee)
	case txn.FamilyV3:
		m["resource_bounds"] = d.ResourceBounds
		m["tip"] = hexutil.Uint64(d.Tip)
		m["paymaster_data"] = nonNil(d.PaymasterData)
		m["nonce_data_availability_mode"] = d.NonceDataAvailabilityMode
		m["fee_data_availability_mode"] = d.FeeDataAvailabilityMode
		if tx.Kind != txn.DeployAccount {
			m["account_deployment_data"] = nonNil(d.AccountDeploymentData)
		}
	}

	switch tx.Kind {
	case txn.Invoke:
		m["sender_address"] = orZero(d.SenderAddress)
		m["calldata"] = nonNil(tx.Calldata)
	case txn.Declare:
		if len(tx.ContractClass) == 0 {
			return nil, errMissingContractClass
		}
		m["sender_address"] = orZero(d.SenderAddress)
		m["contract_class"] = tx.ContractClass
		if d.CompiledClassHash != nil {
			m["compiled_class_hash"] = d.CompiledClassHash
		}
	case txn.DeployAccount:
		m["class_hash"] = orZero(d.ClassHash)
		m["contract_address_salt"] = orZero(d.AddressSalt)
		m["constructor_calldata"] = nonNil(d.ConstructorCalldata)
	}
	return json.Marshal(m)
}

func orZero(f *felt.Felt) *felt.Felt {
	if f == nil {
		return new(felt.Felt)
	}
	return f
}

func nonNil(fs []*felt.Felt) []*felt.Felt {
	if fs == nil {
		return []*felt.Felt{}
	}
	return fs
}
