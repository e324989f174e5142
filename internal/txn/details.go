package txn

import (
	"encoding/json"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
)

// DataAvailabilityMode selects the layer a transaction's nonce or fee data is published to.
type DataAvailabilityMode uint8

const (
	DAModeL1 DataAvailabilityMode = iota
	DAModeL2
)

func (m DataAvailabilityMode) String() string {
	switch m {
	case DAModeL1:
		return "L1"
	case DAModeL2:
		return "L2"
	default:
		return fmt.Sprintf("da_mode(%d)", uint8(m))
	}
}

func (m DataAvailabilityMode) MarshalJSON() ([]byte, error) {
	if m > DAModeL2 {
		return nil, fmt.Errorf("unknown data availability mode %d", uint8(m))
	}
	return json.Marshal(m.String())
}

func (m *DataAvailabilityMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "L1":
		*m = DAModeL1
	case "L2":
		*m = DAModeL2
	default:
		return fmt.Errorf("unknown data availability mode %q", s)
	}
	return nil
}

// V3Fields are the fields only v3 transactions carry. After AssembleV3 every
// field is populated.
type V3Fields struct {
	Tip                       uint64
	PaymasterData             []*felt.Felt
	AccountDeploymentData     []*felt.Felt
	NonceDataAvailabilityMode DataAvailabilityMode
	FeeDataAvailabilityMode   DataAvailabilityMode
	ResourceBounds            ResourceBoundsMapping
}

// Details is the complete record hashed for a transaction. Kind-specific fields
// are ignored by kinds that do not use them.
type Details struct {
	Version Version
	Nonce   *felt.Felt
	ChainID *felt.Felt
	// MaxFee is the v2-family fee ceiling.
	MaxFee *felt.Felt
	V3Fields

	// SenderAddress is the wallet for invoke and declare, and the address being
	// deployed for deploy-account.
	SenderAddress *felt.Felt
	CairoVersion  CairoVersion

	ClassHash           *felt.Felt
	CompiledClassHash   *felt.Felt
	AddressSalt         *felt.Felt
	ConstructorCalldata []*felt.Felt
}

// UniversalDetails is the caller-supplied, partially filled set of options.
// Absent fields are nil.
type UniversalDetails struct {
	Nonce                     *felt.Felt             `json:"nonce,omitempty"`
	Version                   *felt.Felt             `json:"version,omitempty"`
	MaxFee                    *felt.Felt             `json:"max_fee,omitempty"`
	Tip                       *uint64                `json:"tip,omitempty"`
	PaymasterData             []*felt.Felt           `json:"paymaster_data,omitempty"`
	AccountDeploymentData     []*felt.Felt           `json:"account_deployment_data,omitempty"`
	NonceDataAvailabilityMode *DataAvailabilityMode  `json:"nonce_data_availability_mode,omitempty"`
	FeeDataAvailabilityMode   *DataAvailabilityMode  `json:"fee_data_availability_mode,omitempty"`
	ResourceBounds            *ResourceBoundsMapping `json:"resource_bounds,omitempty"`
}

// AssembleV3 fills every absent v3 field with its default: zero tip, empty
// paymaster and deployment data, L1 availability modes and zero bounds.
func AssembleV3(partial UniversalDetails) V3Fields {
	out := V3Fields{
		PaymasterData:             []*felt.Felt{},
		AccountDeploymentData:     []*felt.Felt{},
		NonceDataAvailabilityMode: DAModeL1,
		FeeDataAvailabilityMode:   DAModeL1,
		ResourceBounds:            ZeroBounds(),
	}
	if partial.Tip != nil {
		out.Tip = *partial.Tip
	}
	if partial.PaymasterData != nil {
		out.PaymasterData = append(out.PaymasterData, partial.PaymasterData...)
	}
	if partial.AccountDeploymentData != nil {
		out.AccountDeploymentData = append(out.AccountDeploymentData, partial.AccountDeploymentData...)
	}
	if partial.NonceDataAvailabilityMode != nil {
		out.NonceDataAvailabilityMode = *partial.NonceDataAvailabilityMode
	}
	if partial.FeeDataAvailabilityMode != nil {
		out.FeeDataAvailabilityMode = *partial.FeeDataAvailabilityMode
	}
	if partial.ResourceBounds != nil {
		out.ResourceBounds = *partial.ResourceBounds
	}
	return out
}
