package signer

import (
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xueqianLu/starksigner/internal/txn"
)

func testDetails(t *testing.T, v txn.Version) *txn.Details {
	t.Helper()
	return &txn.Details{
		Version:       v,
		Nonce:         new(felt.Felt).SetUint64(1),
		ChainID:       txn.ShortString("SN_SEPOLIA"),
		MaxFee:        new(felt.Felt).SetUint64(1e15),
		V3Fields:      txn.AssembleV3(txn.UniversalDetails{}),
		SenderAddress: mustFelt(t, "0x4b3f4ba8c00a02b66142a4b1dd41a4dfab4f92650922a3280977b0f03c75ee1"),
		CairoVersion:  txn.Cairo1,
		ClassHash:     mustFelt(t, "0x36078334509b514626504edc9fb252328d1a240e4e948bef8d0c08dff45927f"),
		AddressSalt:   new(felt.Felt).SetUint64(3),
	}
}

func TestSignTransaction(t *testing.T) {
	key := testKeys(t, 101)[0]
	calls := []txn.Call{{
		ContractAddress: new(felt.Felt).SetUint64(0x49d3),
		EntryPoint:      "transfer",
		Calldata:        []*felt.Felt{new(felt.Felt).SetUint64(1)},
	}}

	for _, v := range []txn.Version{txn.V1, txn.V3} {
		d := testDetails(t, v)
		sig, err := SignTransaction(key, calls, d)
		require.NoError(t, err)

		hash, err := txn.BuildHash(txn.Invoke, d, txn.ExecuteCalldata(calls, d.CairoVersion))
		require.NoError(t, err)
		want, err := key.SignRaw(hash)
		require.NoError(t, err)
		assert.Equal(t, want, sig, "version %s", v)
	}
}

func TestSignTransactionUnsupportedVersion(t *testing.T) {
	key := testKeys(t, 101)[0]
	d := testDetails(t, txn.Version(42))
	_, err := SignTransaction(key, nil, d)
	assert.ErrorIs(t, err, txn.ErrUnsupportedTransactionVersion)
}

func TestSignDeclareTransaction(t *testing.T) {
	key := testKeys(t, 202)[0]
	d := testDetails(t, txn.V2)
	d.CompiledClassHash = new(felt.Felt).SetUint64(9)

	sig, err := SignDeclareTransaction(key, d)
	require.NoError(t, err)
	hash, err := txn.BuildHash(txn.Declare, d, nil)
	require.NoError(t, err)
	want, err := key.SignRaw(hash)
	require.NoError(t, err)
	assert.Equal(t, want, sig)
}

func TestSignDeployAccountFillsAddress(t *testing.T) {
	key := testKeys(t, 303)[0]
	d := testDetails(t, txn.V3)
	d.SenderAddress = nil
	d.ConstructorCalldata = []*felt.Felt{key.PublicKey()}

	_, err := SignDeployAccountTransaction(key, d)
	require.NoError(t, err)
	want := txn.ContractAddress(d.AddressSalt, d.ClassHash, d.ConstructorCalldata, nil)
	assert.True(t, want.Equal(d.SenderAddress))
}

func TestSignerFacade(t *testing.T) {
	km, err := NewLocalKeyManager(t.TempDir(), "pw", WithLightScrypt())
	require.NoError(t, err)
	s := NewSigner(km)

	a, err := s.CreateKey()
	require.NoError(t, err)
	b, err := s.CreateKey()
	require.NoError(t, err)
	assert.Len(t, s.GetAccounts(), 2)

	hash := new(felt.Felt).SetUint64(0x77)
	sig1, err := s.SignHash([]*felt.Felt{a.PublicKey(), b.PublicKey()}, hash)
	require.NoError(t, err)
	sig2, err := s.SignHash([]*felt.Felt{b.PublicKey(), a.PublicKey()}, hash)
	require.NoError(t, err)
	assert.Equal(t, sig1, sig2)
	assert.Equal(t, uint64(2), sig1[0].Uint64())

	_, err = s.SignHash(nil, hash)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	_, err = s.SignHash([]*felt.Felt{new(felt.Felt).SetUint64(1)}, hash)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSignerMultisigRejectsDuplicateKeys(t *testing.T) {
	km, err := NewLocalKeyManager(t.TempDir(), "pw", WithLightScrypt())
	require.NoError(t, err)
	s := NewSigner(km)

	a, err := s.CreateKey()
	require.NoError(t, err)
	b, err := s.CreateKey()
	require.NoError(t, err)

	dup := new(felt.Felt).Set(a.PublicKey())
	_, err = s.Multisig([]*felt.Felt{a.PublicKey(), b.PublicKey(), dup})
	assert.ErrorIs(t, err, ErrDuplicateSigner)

	_, err = s.SignHash([]*felt.Felt{a.PublicKey(), a.PublicKey()}, new(felt.Felt).SetUint64(0x77))
	assert.ErrorIs(t, err, ErrDuplicateSigner)

	m, err := s.Multisig([]*felt.Felt{a.PublicKey(), b.PublicKey()})
	require.NoError(t, err)
	assert.Len(t, m.Keys(), 2)
}
