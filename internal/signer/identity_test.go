package signer

import (
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepresentation(t *testing.T) {
	pub := new(felt.Felt).SetUint64(0xabc)

	rep, err := NewRepresentation(StarknetSignerType, StarknetSigner{PubKey: pub})
	require.NoError(t, err)
	typ, err := rep.Type()
	require.NoError(t, err)
	assert.Equal(t, StarknetSignerType, typ)

	rep, err = NewRepresentation(Eip191SignerType, &Eip191Signer{EthAddress: pub})
	require.NoError(t, err)
	typ, err = rep.Type()
	require.NoError(t, err)
	assert.Equal(t, Eip191SignerType, typ)
}

func TestNewRepresentationRejectsMismatch(t *testing.T) {
	_, err := NewRepresentation(Secp256k1SignerType, StarknetSigner{})
	assert.ErrorIs(t, err, ErrUnknownSignerType)

	_, err = NewRepresentation(SignerType(9), StarknetSigner{})
	assert.ErrorIs(t, err, ErrUnknownSignerType)

	_, err = NewRepresentation(StarknetSignerType, (*StarknetSigner)(nil))
	assert.ErrorIs(t, err, ErrUnknownSignerType)
}

func TestRepresentationRequiresExactlyOneVariant(t *testing.T) {
	_, err := Representation{}.Type()
	assert.ErrorIs(t, err, ErrUnknownSignerType)

	two := Representation{
		Starknet: &StarknetSigner{PubKey: new(felt.Felt).SetUint64(1)},
		Eip191:   &Eip191Signer{EthAddress: new(felt.Felt).SetUint64(1)},
	}
	_, err = two.Type()
	assert.ErrorIs(t, err, ErrUnknownSignerType)
	_, err = two.GUID()
	assert.ErrorIs(t, err, ErrUnknownSignerType)
	_, err = two.Compile()
	assert.ErrorIs(t, err, ErrUnknownSignerType)
	_, err = NewIdentity(two)
	assert.ErrorIs(t, err, ErrUnknownSignerType)
}

func TestRepresentationCompile(t *testing.T) {
	v := new(uint256.Int).Lsh(uint256.NewInt(3), 128)
	v.AddUint64(v, 5)

	rep, err := NewRepresentation(Secp256r1SignerType, Secp256r1Signer{PubKey: v})
	require.NoError(t, err)
	out, err := rep.Compile()
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, uint64(2), out[0].Uint64())
	assert.Equal(t, uint64(5), out[1].Uint64())
	assert.Equal(t, uint64(3), out[2].Uint64())

	rep, err = NewRepresentation(WebauthnSignerType, WebauthnSigner{
		Origin:   []byte("ab"),
		RPIDHash: uint256.NewInt(7),
		PubKey:   uint256.NewInt(8),
	})
	require.NoError(t, err)
	out, err = rep.Compile()
	require.NoError(t, err)
	require.Len(t, out, 8)
	assert.Equal(t, uint64(4), out[0].Uint64())
	assert.Equal(t, uint64(2), out[1].Uint64())
	assert.Equal(t, uint64('a'), out[2].Uint64())
	assert.Equal(t, uint64('b'), out[3].Uint64())
	assert.Equal(t, uint64(7), out[4].Uint64())
	assert.Equal(t, uint64(8), out[6].Uint64())
}

func TestGUIDDistinctPerClass(t *testing.T) {
	value := new(felt.Felt).SetUint64(0x1234)
	reps := []Representation{
		{Starknet: &StarknetSigner{PubKey: value}},
		{Secp256k1: &Secp256k1Signer{PubKeyHash: value}},
		{Eip191: &Eip191Signer{EthAddress: value}},
		{Secp256r1: &Secp256r1Signer{PubKey: uint256.NewInt(0x1234)}},
	}

	seen := map[string]SignerType{}
	for _, rep := range reps {
		typ, err := rep.Type()
		require.NoError(t, err)
		guid, err := rep.GUID()
		require.NoError(t, err)
		prev, dup := seen[guid.String()]
		assert.False(t, dup, "%s collides with %s", typ, prev)
		seen[guid.String()] = typ
	}
}

func TestNewIdentityStoredValue(t *testing.T) {
	pub := new(felt.Felt).SetUint64(77)
	id, err := NewIdentity(Representation{Starknet: &StarknetSigner{PubKey: pub}})
	require.NoError(t, err)
	assert.True(t, id.StoredValue.Equal(pub))
	assert.False(t, id.GUID.Equal(pub))

	id, err = NewIdentity(Representation{Secp256r1: &Secp256r1Signer{PubKey: uint256.NewInt(77)}})
	require.NoError(t, err)
	assert.True(t, id.StoredValue.Equal(id.GUID))
}

func TestSignerTypeString(t *testing.T) {
	assert.Equal(t, "Webauthn", WebauthnSignerType.String())
	assert.Equal(t, "SignerType(9)", SignerType(9).String())
}
