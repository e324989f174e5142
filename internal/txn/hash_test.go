package txn

import (
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDetails(t *testing.T, v Version) *Details {
	t.Helper()
	bounds := ResourceBoundsMapping{}
	bounds.L1Gas.MaxAmount.SetUint64(0x1000)
	bounds.L1Gas.MaxPricePerUnit.SetUint64(0x5af3107a4000)
	return &Details{
		Version:             v,
		Nonce:               feltU(7),
		ChainID:             ShortString("SN_SEPOLIA"),
		MaxFee:              feltU(1e15),
		V3Fields:            AssembleV3(UniversalDetails{ResourceBounds: &bounds}),
		SenderAddress:       mustFelt(t, "0x4b3f4ba8c00a02b66142a4b1dd41a4dfab4f92650922a3280977b0f03c75ee1"),
		CairoVersion:        Cairo1,
		ClassHash:           mustFelt(t, "0x36078334509b514626504edc9fb252328d1a240e4e948bef8d0c08dff45927f"),
		CompiledClassHash:   mustFelt(t, "0x1e1fd4ff5d0b4ac3b4a4e25b7d3e0e64f1b3d0bb2e2a5a1c9c7bb2d3e3b4c5d"),
		AddressSalt:         feltU(99),
		ConstructorCalldata: []*felt.Felt{feltU(1), feltU(2)},
	}
}

func sampleCalldata() []*felt.Felt {
	return ExecuteCalldata([]Call{{
		ContractAddress: feltU(0x49d3),
		EntryPoint:      "transfer",
		Calldata:        []*felt.Felt{feltU(1), feltU(100), feltU(0)},
	}}, Cairo1)
}

func TestBuildHashDeterministic(t *testing.T) {
	for _, kind := range []Kind{Invoke, Declare, DeployAccount} {
		for _, v := range []Version{V0, V1, V2, V3, F0, F1, F2, F3} {
			h1, err := BuildHash(kind, sampleDetails(t, v), sampleCalldata())
			require.NoError(t, err, "%s %s", kind, v)
			h2, err := BuildHash(kind, sampleDetails(t, v), sampleCalldata())
			require.NoError(t, err)
			assert.True(t, h1.Equal(h2), "%s %s", kind, v)
		}
	}
}

func TestBuildHashSensitivity(t *testing.T) {
	for _, kind := range []Kind{Invoke, Declare, DeployAccount} {
		for _, v := range []Version{V1, V3} {
			base, err := BuildHash(kind, sampleDetails(t, v), sampleCalldata())
			require.NoError(t, err)

			d := sampleDetails(t, v)
			d.Nonce = feltU(8)
			changed, err := BuildHash(kind, d, sampleCalldata())
			require.NoError(t, err)
			assert.False(t, base.Equal(changed), "nonce change must alter %s %s hash", kind, v)

			d = sampleDetails(t, v)
			d.ChainID = ShortString("SN_MAIN")
			changed, err = BuildHash(kind, d, sampleCalldata())
			require.NoError(t, err)
			assert.False(t, base.Equal(changed), "chain id change must alter %s %s hash", kind, v)

			query, err := BuildHash(kind, sampleDetails(t, v.Query()), sampleCalldata())
			require.NoError(t, err)
			assert.False(t, base.Equal(query), "query version must alter %s %s hash", kind, v)
		}
	}
}

func TestBuildHashV3FieldsOnlyAffectV3(t *testing.T) {
	tip := uint64(5)
	l2 := DAModeL2

	v1 := sampleDetails(t, V1)
	baseV1, err := BuildHash(Invoke, v1, sampleCalldata())
	require.NoError(t, err)
	v1.V3Fields = AssembleV3(UniversalDetails{Tip: &tip, FeeDataAvailabilityMode: &l2})
	changedV1, err := BuildHash(Invoke, v1, sampleCalldata())
	require.NoError(t, err)
	assert.True(t, baseV1.Equal(changedV1))

	v3 := sampleDetails(t, V3)
	baseV3, err := BuildHash(Invoke, v3, sampleCalldata())
	require.NoError(t, err)
	v3.Tip = tip
	tipped, err := BuildHash(Invoke, v3, sampleCalldata())
	require.NoError(t, err)
	assert.False(t, baseV3.Equal(tipped))

	v3.FeeDataAvailabilityMode = l2
	moded, err := BuildHash(Invoke, v3, sampleCalldata())
	require.NoError(t, err)
	assert.False(t, tipped.Equal(moded))

	v3.ResourceBounds = ZeroBounds()
	unbounded, err := BuildHash(Invoke, v3, sampleCalldata())
	require.NoError(t, err)
	assert.False(t, moded.Equal(unbounded))
}

func TestBuildHashDeclareCompiledClassHash(t *testing.T) {
	d := sampleDetails(t, V2)
	withCompiled, err := BuildHash(Declare, d, nil)
	require.NoError(t, err)

	d.CompiledClassHash = nil
	without, err := BuildHash(Declare, d, nil)
	require.NoError(t, err)
	assert.False(t, withCompiled.Equal(without))
}

func TestBuildHashUnsupportedVersion(t *testing.T) {
	for _, kind := range []Kind{Invoke, Declare, DeployAccount} {
		_, err := BuildHash(kind, sampleDetails(t, Version(42)), sampleCalldata())
		require.ErrorIs(t, err, ErrUnsupportedTransactionVersion)
		assert.Contains(t, err.Error(), kind.String())
	}

	_, err := BuildHash(Kind(9), sampleDetails(t, V3), nil)
	assert.ErrorIs(t, err, ErrUnsupportedTransactionVersion)
}

func TestBuildHashBoundOverflow(t *testing.T) {
	d := sampleDetails(t, V3)
	d.ResourceBounds.L1Gas.MaxAmount.Lsh(&d.ResourceBounds.L1Gas.MaxAmount, 64)
	_, err := BuildHash(Invoke, d, sampleCalldata())
	assert.ErrorIs(t, err, ErrResourceBoundOverflow)
}

func TestEncodeBoundLayout(t *testing.T) {
	var b ResourceBounds
	b.MaxAmount.SetUint64(1)
	b.MaxPricePerUnit.SetUint64(2)
	packed, err := encodeBound(l1GasName, b)
	require.NoError(t, err)

	// "L1_GAS" = 0x4c315f474153
	want := mustFelt(t, "0x4c315f474153000000000000000100000000000000000000000000000002")
	assert.True(t, want.Equal(packed), "got %s", packed)
}

func TestDAModeHash(t *testing.T) {
	assert.Equal(t, feltU(0), daModeHash(DAModeL1, DAModeL1))
	assert.Equal(t, feltU(1), daModeHash(DAModeL1, DAModeL2))
	assert.Equal(t, feltU(1<<32), daModeHash(DAModeL2, DAModeL1))
}
