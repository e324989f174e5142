package txn

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/NethermindEth/juno/core/felt"
)

// Version is a transaction version drawn from the closed set the network accepts.
// F0..F3 are the query variants of V0..V3, offset by 2^128. They produce
// well-formed signatures for fee estimation and are never broadcast.
type Version uint8

const (
	V0 Version = iota
	V1
	V2
	V3
	F0
	F1
	F2
	F3
)

// Family groups versions that share a hash domain.
type Family uint8

const (
	// FamilyV2 covers the legacy max-fee versions 0, 1 and 2.
	FamilyV2 Family = iota + 1
	// FamilyV3 covers the resource-bounds version 3.
	FamilyV3
)

func (f Family) String() string {
	switch f {
	case FamilyV2:
		return "v2"
	case FamilyV3:
		return "v3"
	default:
		return fmt.Sprintf("family(%d)", uint8(f))
	}
}

var (
	queryOffset = new(big.Int).Lsh(big.NewInt(1), 128)

	versionFamily = map[Version]Family{
		V0: FamilyV2, V1: FamilyV2, V2: FamilyV2, F0: FamilyV2, F1: FamilyV2, F2: FamilyV2,
		V3: FamilyV3, F3: FamilyV3,
	}

	// versionByValue maps the canonical hex value to its version.
	versionByValue = func() map[string]Version {
		m := make(map[string]Version, len(versionFamily))
		for v := range versionFamily {
			m[v.Felt().String()] = v
		}
		return m
	}()
)

// Valid reports whether v is one of the eight known versions.
func (v Version) Valid() bool {
	_, ok := versionFamily[v]
	return ok
}

// Family returns the hash family of v. The boolean is false for unknown versions.
func (v Version) Family() (Family, bool) {
	f, ok := versionFamily[v]
	return f, ok
}

// IsQuery reports whether v is a fee-estimation variant.
func (v Version) IsQuery() bool {
	return v >= F0 && v <= F3
}

// Query returns the fee-estimation counterpart of v. Query versions map to themselves.
func (v Version) Query() Version {
	if v <= V3 {
		return v + F0
	}
	return v
}

// Base returns the broadcastable counterpart of a query version.
func (v Version) Base() Version {
	if v.IsQuery() {
		return v - F0
	}
	return v
}

// Felt returns the numeric value of v as it appears in hash preimages.
func (v Version) Felt() *felt.Felt {
	n := new(big.Int).SetUint64(uint64(v.Base()))
	if v.IsQuery() {
		n.Add(n, queryOffset)
	}
	return new(felt.Felt).SetBytes(n.Bytes())
}

func (v Version) String() string {
	if !v.Valid() {
		return fmt.Sprintf("version(%d)", uint8(v))
	}
	return v.Felt().String()
}

// VersionFromFelt validates a numeric version against the closed set.
func VersionFromFelt(f *felt.Felt) (Version, error) {
	if f == nil {
		return 0, fmt.Errorf("%w: <nil>", ErrInvalidVersion)
	}
	v, ok := versionByValue[f.String()]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidVersion, f)
	}
	return v, nil
}

// ParseVersion parses a hex or decimal version string.
func ParseVersion(s string) (Version, error) {
	f, err := new(felt.Felt).SetString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	return VersionFromFelt(f)
}

// ResolveVersion returns provided when it is non-nil, otherwise def. Both must be
// members of the closed version set; there is no other fallback rule.
func ResolveVersion(def, provided *felt.Felt) (Version, error) {
	var (
		resolved Version
		err      error
	)
	if provided != nil {
		if resolved, err = VersionFromFelt(provided); err != nil {
			return 0, fmt.Errorf("provided version: %w", err)
		}
	}
	defVersion, err := VersionFromFelt(def)
	if err != nil {
		return 0, fmt.Errorf("default version: %w", err)
	}
	if provided != nil {
		return resolved, nil
	}
	return defVersion, nil
}

func (v Version) MarshalJSON() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, uint8(v))
	}
	return json.Marshal(v.String())
}

func (v *Version) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseVersion(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
