package txn

import (
	"encoding/json"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/ethereum/go-ethereum/crypto"
)

// CairoVersion selects the __execute__ calldata layout of the account contract.
type CairoVersion uint8

const (
	Cairo0 CairoVersion = 0
	Cairo1 CairoVersion = 1
)

func (c *CairoVersion) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n uint8
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid cairo version %s", data)
		}
		s = fmt.Sprint(n)
	}
	switch s {
	case "0":
		*c = Cairo0
	case "1":
		*c = Cairo1
	default:
		return fmt.Errorf("invalid cairo version %q", s)
	}
	return nil
}

// Call is a single contract invocation inside a multicall.
type Call struct {
	ContractAddress *felt.Felt   `json:"contract_address"`
	EntryPoint      string       `json:"entry_point"`
	Calldata        []*felt.Felt `json:"calldata"`
}

var defaultEntryPoints = map[string]bool{
	"__default__":    true,
	"__l1_default__": true,
}

// Selector returns the entry point selector for name: starknet_keccak of the
// ASCII name, or zero for the default entry points.
func Selector(name string) *felt.Felt {
	if defaultEntryPoints[name] {
		return new(felt.Felt)
	}
	return StarknetKeccak([]byte(name))
}

// StarknetKeccak is Keccak256 truncated to its low 250 bits.
func StarknetKeccak(data []byte) *felt.Felt {
	h := crypto.Keccak256(data)
	h[0] &= 0x03
	return new(felt.Felt).SetBytes(h)
}

// ExecuteCalldata compiles calls into the __execute__ calldata of the account.
//
// Cairo 1: [len, (to, selector, data_len, ...data)*]
// Cairo 0: [len, (to, selector, offset, data_len)*, total_len, ...all data]
func ExecuteCalldata(calls []Call, version CairoVersion) []*felt.Felt {
	out := []*felt.Felt{feltFromUint(uint64(len(calls)))}
	if version == Cairo1 {
		for _, c := range calls {
			out = append(out, orZero(c.ContractAddress), Selector(c.EntryPoint), feltFromUint(uint64(len(c.Calldata))))
			out = append(out, c.Calldata...)
		}
		return out
	}

	var data []*felt.Felt
	for _, c := range calls {
		out = append(out,
			orZero(c.ContractAddress),
			Selector(c.EntryPoint),
			feltFromUint(uint64(len(data))),
			feltFromUint(uint64(len(c.Calldata))),
		)
		data = append(data, c.Calldata...)
	}
	out = append(out, feltFromUint(uint64(len(data))))
	return append(out, data...)
}

func feltFromUint(n uint64) *felt.Felt {
	return new(felt.Felt).SetUint64(n)
}

func orZero(f *felt.Felt) *felt.Felt {
	if f == nil {
		return new(felt.Felt)
	}
	return f
}

// ShortString encodes s (at most 31 ASCII bytes) as a field element.
func ShortString(s string) *felt.Felt {
	return new(felt.Felt).SetBytes([]byte(s))
}
