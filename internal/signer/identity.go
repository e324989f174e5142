package signer

import (
	"fmt"

	"github.com/NethermindEth/juno/core/crypto"
	"github.com/NethermindEth/juno/core/felt"
	"github.com/holiman/uint256"
	"github.com/xueqianLu/starksigner/internal/txn"
)

// SignerType enumerates the signer classes of the account's tagged signer enum.
// The numeric value is the enum variant index on the wire.
type SignerType uint8

const (
	StarknetSignerType SignerType = iota
	Secp256k1SignerType
	Secp256r1SignerType
	Eip191SignerType
	WebauthnSignerType
)

var signerTypeNames = map[SignerType]string{
	StarknetSignerType:  "Starknet",
	Secp256k1SignerType: "Secp256k1",
	Secp256r1SignerType: "Secp256r1",
	Eip191SignerType:    "Eip191",
	WebauthnSignerType:  "Webauthn",
}

// guidTags are the per-class domain tags hashed into a GUID.
var guidTags = map[SignerType]*felt.Felt{
	StarknetSignerType:  txn.ShortString("Starknet Signer"),
	Secp256k1SignerType: txn.ShortString("Secp256k1 Signer"),
	Secp256r1SignerType: txn.ShortString("Secp256r1 Signer"),
	Eip191SignerType:    txn.ShortString("Eip191 Signer"),
	WebauthnSignerType:  txn.ShortString("Webauthn Signer"),
}

func (t SignerType) String() string {
	if name, ok := signerTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("SignerType(%d)", uint8(t))
}

// StarknetSigner is a native Stark-curve public key.
type StarknetSigner struct {
	PubKey *felt.Felt
}

// Secp256k1Signer identifies a secp256k1 key by the Ethereum address of its public key.
type Secp256k1Signer struct {
	PubKeyHash *felt.Felt
}

// Secp256r1Signer is the x coordinate of a P-256 public key.
type Secp256r1Signer struct {
	PubKey *uint256.Int
}

// Eip191Signer is an Ethereum address signing EIP-191 personal messages.
type Eip191Signer struct {
	EthAddress *felt.Felt
}

// WebauthnSigner is a passkey bound to an origin and relying party.
type WebauthnSigner struct {
	Origin   []byte
	RPIDHash *uint256.Int
	PubKey   *uint256.Int
}

// Representation is the tagged signer enum. Exactly one variant is non-nil.
type Representation struct {
	Starknet  *StarknetSigner
	Secp256k1 *Secp256k1Signer
	Secp256r1 *Secp256r1Signer
	Eip191    *Eip191Signer
	Webauthn  *WebauthnSigner
}

// NewRepresentation builds the tagged enum for t. value must be the variant
// struct (or a pointer to it) that matches t.
func NewRepresentation(t SignerType, value any) (Representation, error) {
	var r Representation
	ok := false
	switch t {
	case StarknetSignerType:
		r.Starknet, ok = variant[StarknetSigner](value)
	case Secp256k1SignerType:
		r.Secp256k1, ok = variant[Secp256k1Signer](value)
	case Secp256r1SignerType:
		r.Secp256r1, ok = variant[Secp256r1Signer](value)
	case Eip191SignerType:
		r.Eip191, ok = variant[Eip191Signer](value)
	case WebauthnSignerType:
		r.Webauthn, ok = variant[WebauthnSigner](value)
	default:
		return Representation{}, fmt.Errorf("%w: %s", ErrUnknownSignerType, t)
	}
	if !ok {
		return Representation{}, fmt.Errorf("%w: %T is not a %s signer", ErrUnknownSignerType, value, t)
	}
	return r, nil
}

func variant[T any](value any) (*T, bool) {
	switch v := value.(type) {
	case T:
		return &v, true
	case *T:
		return v, v != nil
	default:
		return nil, false
	}
}

// Type returns the populated variant, or ErrUnknownSignerType unless exactly one is set.
func (r Representation) Type() (SignerType, error) {
	var found []SignerType
	if r.Starknet != nil {
		found = append(found, StarknetSignerType)
	}
	if r.Secp256k1 != nil {
		found = append(found, Secp256k1SignerType)
	}
	if r.Secp256r1 != nil {
		found = append(found, Secp256r1SignerType)
	}
	if r.Eip191 != nil {
		found = append(found, Eip191SignerType)
	}
	if r.Webauthn != nil {
		found = append(found, WebauthnSignerType)
	}
	if len(found) != 1 {
		return 0, fmt.Errorf("%w: %d variants populated", ErrUnknownSignerType, len(found))
	}
	return found[0], nil
}

// Payload serializes the populated variant without its tag.
func (r Representation) Payload() ([]*felt.Felt, error) {
	t, err := r.Type()
	if err != nil {
		return nil, err
	}
	switch t {
	case StarknetSignerType:
		return []*felt.Felt{orZero(r.Starknet.PubKey)}, nil
	case Secp256k1SignerType:
		return []*felt.Felt{orZero(r.Secp256k1.PubKeyHash)}, nil
	case Secp256r1SignerType:
		low, high := splitU256(r.Secp256r1.PubKey)
		return []*felt.Felt{low, high}, nil
	case Eip191SignerType:
		return []*felt.Felt{orZero(r.Eip191.EthAddress)}, nil
	case WebauthnSignerType:
		w := r.Webauthn
		out := make([]*felt.Felt, 0, len(w.Origin)+5)
		out = append(out, new(felt.Felt).SetUint64(uint64(len(w.Origin))))
		for _, b := range w.Origin {
			out = append(out, new(felt.Felt).SetUint64(uint64(b)))
		}
		rpLow, rpHigh := splitU256(w.RPIDHash)
		pkLow, pkHigh := splitU256(w.PubKey)
		return append(out, rpLow, rpHigh, pkLow, pkHigh), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSignerType, t)
}

// Compile serializes the enum as [variant index, payload...].
func (r Representation) Compile() ([]*felt.Felt, error) {
	t, err := r.Type()
	if err != nil {
		return nil, err
	}
	payload, err := r.Payload()
	if err != nil {
		return nil, err
	}
	return append([]*felt.Felt{new(felt.Felt).SetUint64(uint64(t))}, payload...), nil
}

// GUID is Poseidon(class domain tag, payload...).
func (r Representation) GUID() (*felt.Felt, error) {
	t, err := r.Type()
	if err != nil {
		return nil, err
	}
	payload, err := r.Payload()
	if err != nil {
		return nil, err
	}
	return crypto.PoseidonArray(append([]*felt.Felt{guidTags[t]}, payload...)...), nil
}

// Identity is the derived identification of a key: its GUID (the multisig sort
// key), the value the account stores for it, and its tagged representation.
type Identity struct {
	GUID        *felt.Felt
	StoredValue *felt.Felt
	Signer      Representation
}

// NewIdentity derives the identity of a representation.
func NewIdentity(r Representation) (Identity, error) {
	guid, err := r.GUID()
	if err != nil {
		return Identity{}, err
	}
	id := Identity{GUID: guid, Signer: r}
	switch {
	case r.Starknet != nil:
		id.StoredValue = r.Starknet.PubKey
	case r.Secp256k1 != nil:
		id.StoredValue = r.Secp256k1.PubKeyHash
	case r.Eip191 != nil:
		id.StoredValue = r.Eip191.EthAddress
	default:
		id.StoredValue = guid
	}
	return id, nil
}

func orZero(f *felt.Felt) *felt.Felt {
	if f == nil {
		return new(felt.Felt)
	}
	return f
}

var mask128 = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)

// splitU256 returns the (low, high) 128-bit limbs of v.
func splitU256(v *uint256.Int) (*felt.Felt, *felt.Felt) {
	if v == nil {
		return new(felt.Felt), new(felt.Felt)
	}
	low := new(uint256.Int).And(v, mask128)
	high := new(uint256.Int).Rsh(v, 128)
	lb, hb := low.Bytes32(), high.Bytes32()
	return new(felt.Felt).SetBytes(lb[:]), new(felt.Felt).SetBytes(hb[:])
}
