package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xueqianLu/starksigner/internal/account"
	"github.com/xueqianLu/starksigner/internal/rpc"
	"github.com/xueqianLu/starksigner/internal/signer"
	"github.com/xueqianLu/starksigner/internal/txn"
)

type fakeProvider struct {
	err error
}

func (p *fakeProvider) ChainID(context.Context) (*felt.Felt, error) {
	return txn.ShortString("SN_SEPOLIA"), nil
}

func (p *fakeProvider) Nonce(context.Context, *felt.Felt) (*felt.Felt, error) {
	return new(felt.Felt).SetUint64(2), nil
}

func (p *fakeProvider) EstimateFee(context.Context, rpc.BroadcastedTransaction, bool) (*txn.FeeEstimate, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &txn.FeeEstimate{
		GasConsumed: new(felt.Felt).SetUint64(100),
		GasPrice:    new(felt.Felt).SetUint64(10),
		OverallFee:  new(felt.Felt).SetUint64(1000),
	}, nil
}

type fixture struct {
	km       *signer.LocalKeyManager
	signer   *signer.Signer
	provider *fakeProvider
	keys     []*signer.StarknetKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	km, err := signer.NewLocalKeyManager(t.TempDir(), "pw", signer.WithLightScrypt())
	require.NoError(t, err)
	f := &fixture{km: km, signer: signer.NewSigner(km), provider: &fakeProvider{}}
	for i := 0; i < 2; i++ {
		k, err := km.CreateKey()
		require.NoError(t, err)
		f.keys = append(f.keys, k)
	}
	return f
}

func (f *fixture) pubs() []*felt.Felt {
	out := make([]*felt.Felt, 0, len(f.keys))
	for _, k := range f.keys {
		out = append(out, k.PublicKey())
	}
	return out
}

func do(t *testing.T, h http.Handler, method string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, "/", &buf))
	return rec
}

func TestHealthHandler(t *testing.T) {
	rec := do(t, NewHealthHandler(), http.MethodGet, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAccountsAndCreate(t *testing.T) {
	f := newFixture(t)

	rec := do(t, NewCreateAccountHandler(f.km), http.MethodPost, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created CreateAccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.PublicKey)
	require.NotNil(t, created.GUID)

	rec = do(t, NewAccountsHandler(f.km), http.MethodGet, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var accounts []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accounts))
	assert.Len(t, accounts, 3)
	assert.Contains(t, accounts, created.PublicKey.String())

	rec = do(t, NewAccountsHandler(f.km), http.MethodPost, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSignHashHandler(t *testing.T) {
	f := newFixture(t)
	h := NewSignHashHandler(f.signer)
	hash := new(felt.Felt).SetUint64(0x1234)

	rec := do(t, h, http.MethodPost, SignHashRequest{Signers: f.pubs(), Hash: hash})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SignatureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Signature, 1+2*4)

	want, err := f.signer.SignHash(f.pubs(), hash)
	require.NoError(t, err)
	assert.Equal(t, []*felt.Felt(want), resp.Signature)

	rec = do(t, h, http.MethodPost, SignHashRequest{Signers: f.pubs()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, SignHashRequest{Signers: []*felt.Felt{new(felt.Felt).SetUint64(1)}, Hash: hash})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	pubs := f.pubs()
	rec = do(t, h, http.MethodPost, SignHashRequest{Signers: append(pubs, pubs[0]), Hash: hash})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "duplicate signer")
}

func TestSignTxHandler(t *testing.T) {
	f := newFixture(t)
	h := NewSignTxHandler(f.signer, f.provider, account.DefaultConfig())
	req := SignTxRequest{
		Signers: f.pubs(),
		Address: new(felt.Felt).SetUint64(0xacc),
		Calls: []txn.Call{{
			ContractAddress: new(felt.Felt).SetUint64(0x49d3),
			EntryPoint:      "transfer",
			Calldata:        []*felt.Felt{new(felt.Felt).SetUint64(1)},
		}},
	}

	rec := do(t, h, http.MethodPost, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		TransactionHash *felt.Felt     `json:"transaction_hash"`
		Signature       []*felt.Felt   `json:"signature"`
		Transaction     map[string]any `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.TransactionHash)
	assert.Len(t, resp.Signature, 1+2*4)
	assert.Equal(t, "INVOKE", resp.Transaction["type"])
	assert.Equal(t, "0x3", resp.Transaction["version"])
	assert.Equal(t, "0x2", resp.Transaction["nonce"])

	want, err := f.signer.SignHash(f.pubs(), resp.TransactionHash)
	require.NoError(t, err)
	assert.Equal(t, []*felt.Felt(want), resp.Signature)
}

func TestSignTxHandlerErrors(t *testing.T) {
	f := newFixture(t)
	h := NewSignTxHandler(f.signer, f.provider, account.DefaultConfig())
	addr := new(felt.Felt).SetUint64(0xacc)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, SignTxRequest{Signers: f.pubs()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, SignTxRequest{
		Signers: f.pubs(),
		Address: addr,
		Details: txn.UniversalDetails{Version: new(felt.Felt).SetUint64(5)},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.provider.err = errors.New("node unavailable")
	rec = do(t, h, http.MethodPost, SignTxRequest{Signers: f.pubs(), Address: addr})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "node unavailable")

	rec = do(t, h, http.MethodGet, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSignDeclareHandler(t *testing.T) {
	f := newFixture(t)
	h := NewSignDeclareHandler(f.signer, f.provider, account.DefaultConfig())

	rec := do(t, h, http.MethodPost, SignDeclareRequest{
		Signers:           f.pubs()[:1],
		Address:           new(felt.Felt).SetUint64(0xacc),
		ClassHash:         new(felt.Felt).SetUint64(0x77),
		CompiledClassHash: new(felt.Felt).SetUint64(0x88),
		ContractClass:     json.RawMessage(`{"sierra_program":[]}`),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp SignatureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Signature, 1+4)

	rec = do(t, h, http.MethodPost, SignDeclareRequest{Signers: f.pubs(), Address: new(felt.Felt).SetUint64(1)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignDeployAccountHandler(t *testing.T) {
	f := newFixture(t)
	h := NewSignDeployAccountHandler(f.signer, f.provider, account.DefaultConfig())
	pub := f.keys[0].PublicKey()
	classHash := new(felt.Felt).SetUint64(0x77)

	rec := do(t, h, http.MethodPost, SignDeployAccountRequest{
		Signers:             []*felt.Felt{pub},
		ClassHash:           classHash,
		AddressSalt:         pub,
		ConstructorCalldata: []*felt.Felt{pub},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Transaction map[string]any `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "DEPLOY_ACCOUNT", resp.Transaction["type"])
	assert.Equal(t, "0x0", resp.Transaction["nonce"])
	assert.Equal(t, pub.String(), resp.Transaction["contract_address_salt"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", txn.ErrInvalidVersion), http.StatusBadRequest},
		{fmt.Errorf("x: %w", signer.ErrKeyNotFound), http.StatusBadRequest},
		{fmt.Errorf("x: %w", signer.ErrUnknownSignerType), http.StatusBadRequest},
		{fmt.Errorf("x: %w", signer.ErrDuplicateSigner), http.StatusBadRequest},
		{fmt.Errorf("x: %w", account.ErrEstimateUnavailable), http.StatusBadGateway},
		{txn.ErrMissingEstimateField, http.StatusBadGateway},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
