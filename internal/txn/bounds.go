package txn

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/holiman/uint256"
)

// Default safety margins, in percent, applied on top of a fee estimate.
const (
	DefaultAmountMargin uint64 = 30
	DefaultPriceMargin  uint64 = 50
	DefaultMaxFeeMargin uint64 = 50
)

// FeeEstimate is the result of starknet_estimateFee. DataGasConsumed and
// DataGasPrice are only reported by RPC 0.7 and later.
type FeeEstimate struct {
	GasConsumed     *felt.Felt `json:"gas_consumed"`
	GasPrice        *felt.Felt `json:"gas_price"`
	DataGasConsumed *felt.Felt `json:"data_gas_consumed,omitempty"`
	DataGasPrice    *felt.Felt `json:"data_gas_price,omitempty"`
	OverallFee      *felt.Felt `json:"overall_fee"`
	Unit            string     `json:"unit,omitempty"`
}

// ResourceBounds is the ceiling for a single resource.
type ResourceBounds struct {
	MaxAmount       uint256.Int
	MaxPricePerUnit uint256.Int
}

// ResourceBoundsMapping holds both resource channels. It is a value type and
// both channels are always present, zeroed when not priced.
type ResourceBoundsMapping struct {
	L1Gas ResourceBounds `json:"l1_gas"`
	L2Gas ResourceBounds `json:"l2_gas"`
}

// IsZero reports whether every bound in the mapping is zero.
func (m ResourceBoundsMapping) IsZero() bool {
	return m.L1Gas.MaxAmount.IsZero() && m.L1Gas.MaxPricePerUnit.IsZero() &&
		m.L2Gas.MaxAmount.IsZero() && m.L2Gas.MaxPricePerUnit.IsZero()
}

// ZeroBounds is the placeholder used before any estimate exists.
func ZeroBounds() ResourceBoundsMapping {
	return ResourceBoundsMapping{}
}

// ComputeBounds converts an estimate into resource bounds, adding amountMargin
// percent to the L1 amount and priceMargin percent to the L1 unit price.
// A nil estimate yields ZeroBounds. L2 is not priced and stays zero.
func ComputeBounds(est *FeeEstimate, amountMargin, priceMargin uint64) (ResourceBoundsMapping, error) {
	if est == nil {
		return ZeroBounds(), nil
	}
	if est.GasConsumed == nil {
		return ResourceBoundsMapping{}, fmt.Errorf("%w: gas_consumed", ErrMissingEstimateField)
	}
	if est.GasPrice == nil {
		return ResourceBoundsMapping{}, fmt.Errorf("%w: gas_price", ErrMissingEstimateField)
	}

	gasPrice := toBig(est.GasPrice)
	var amount *big.Int
	if est.DataGasConsumed != nil && est.DataGasPrice != nil {
		// Data gas is folded into the consumed/price pair.
		if est.OverallFee == nil {
			return ResourceBoundsMapping{}, fmt.Errorf("%w: overall_fee", ErrMissingEstimateField)
		}
		if gasPrice.Sign() == 0 {
			return ResourceBoundsMapping{}, fmt.Errorf("%w: gas_price is zero", ErrMissingEstimateField)
		}
		amount = new(big.Int).Quo(toBig(est.OverallFee), gasPrice)
	} else {
		amount = toBig(est.GasConsumed)
	}

	var m ResourceBoundsMapping
	if err := setBig(&m.L1Gas.MaxAmount, addPercent(amount, amountMargin)); err != nil {
		return ResourceBoundsMapping{}, fmt.Errorf("l1_gas max_amount: %w", err)
	}
	if err := setBig(&m.L1Gas.MaxPricePerUnit, addPercent(gasPrice, priceMargin)); err != nil {
		return ResourceBoundsMapping{}, fmt.Errorf("l1_gas max_price_per_unit: %w", err)
	}
	return m, nil
}

// MaxFee derives the legacy max_fee ceiling from an estimate's overall fee.
func MaxFee(est *FeeEstimate, margin uint64) (*felt.Felt, error) {
	if est == nil {
		return new(felt.Felt), nil
	}
	if est.OverallFee == nil {
		return nil, fmt.Errorf("%w: overall_fee", ErrMissingEstimateField)
	}
	fee := addPercent(toBig(est.OverallFee), margin)
	return new(felt.Felt).SetBytes(fee.Bytes()), nil
}

// addPercent returns n * (100 + pct) / 100, truncated.
func addPercent(n *big.Int, pct uint64) *big.Int {
	res := new(big.Int).Mul(n, new(big.Int).SetUint64(100+pct))
	return res.Quo(res, big.NewInt(100))
}

func toBig(f *felt.Felt) *big.Int {
	return f.BigInt(new(big.Int))
}

func setBig(dst *uint256.Int, b *big.Int) error {
	if dst.SetFromBig(b) {
		return ErrResourceBoundOverflow
	}
	return nil
}

type resourceBoundsJSON struct {
	MaxAmount       string `json:"max_amount"`
	MaxPricePerUnit string `json:"max_price_per_unit"`
}

func (b ResourceBounds) MarshalJSON() ([]byte, error) {
	return json.Marshal(resourceBoundsJSON{
		MaxAmount:       b.MaxAmount.Hex(),
		MaxPricePerUnit: b.MaxPricePerUnit.Hex(),
	})
}

func (b *ResourceBounds) UnmarshalJSON(data []byte) error {
	var raw resourceBoundsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := parseQuantity(&b.MaxAmount, raw.MaxAmount); err != nil {
		return fmt.Errorf("max_amount: %w", err)
	}
	if err := parseQuantity(&b.MaxPricePerUnit, raw.MaxPricePerUnit); err != nil {
		return fmt.Errorf("max_price_per_unit: %w", err)
	}
	return nil
}

// parseQuantity accepts 0x-prefixed hex or decimal, leading zeros allowed.
func parseQuantity(dst *uint256.Int, s string) error {
	if s == "" {
		dst.Clear()
		return nil
	}
	base, digits := 10, s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base, digits = 16, s[2:]
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok || n.Sign() < 0 {
		return fmt.Errorf("invalid quantity %q", s)
	}
	return setBig(dst, n)
}
