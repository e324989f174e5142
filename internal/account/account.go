package account

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/xueqianLu/starksigner/internal/rpc"
	"github.com/xueqianLu/starksigner/internal/signer"
	"github.com/xueqianLu/starksigner/internal/txn"
	"github.com/xueqianLu/starksigner/pkg/logger"
	"go.uber.org/zap"
)

// Provider is the node the account reads chain state and fee estimates from.
type Provider interface {
	ChainID(ctx context.Context) (*felt.Felt, error)
	Nonce(ctx context.Context, address *felt.Felt) (*felt.Felt, error)
	EstimateFee(ctx context.Context, tx rpc.BroadcastedTransaction, skipValidate bool) (*txn.FeeEstimate, error)
}

// Config is the per-account signing configuration.
type Config struct {
	// DefaultVersion is used when the caller does not pick a version.
	DefaultVersion txn.Version
	// ChainID skips the starknet_chainId lookup when set.
	ChainID      *felt.Felt
	CairoVersion txn.CairoVersion

	AmountMargin uint64
	PriceMargin  uint64
	MaxFeeMargin uint64
}

// DefaultConfig returns a v3, Cairo 1 configuration with the standard margins.
func DefaultConfig() Config {
	return Config{
		DefaultVersion: txn.V3,
		CairoVersion:   txn.Cairo1,
		AmountMargin:   txn.DefaultAmountMargin,
		PriceMargin:    txn.DefaultPriceMargin,
		MaxFeeMargin:   txn.DefaultMaxFeeMargin,
	}
}

// Account signs transactions on behalf of one account contract.
type Account struct {
	address   *felt.Felt
	provider  Provider
	signer    signer.RawSigner
	estimator signer.RawSigner
	cfg       Config
}

// Option configures an Account.
type Option func(*Account)

// WithEstimator signs fee-estimation requests with s instead of the account
// signer. Validation is skipped for such requests.
func WithEstimator(s signer.RawSigner) Option {
	return func(a *Account) {
		a.estimator = s
	}
}

// New returns an account at address. provider may be nil when every request
// carries its own nonce and fee fields and cfg.ChainID is set.
func New(address *felt.Felt, provider Provider, s signer.RawSigner, cfg Config, opts ...Option) *Account {
	a := &Account{
		address:  address,
		provider: provider,
		signer:   s,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Address returns the account contract address.
func (a *Account) Address() *felt.Felt {
	return a.address
}

// Signed is a signed transaction ready to be broadcast.
type Signed struct {
	Kind          txn.Kind
	Details       *txn.Details
	Calldata      []*felt.Felt
	ContractClass json.RawMessage
	Hash          *felt.Felt
	Signature     signer.Signature
}

// Broadcasted returns the signed transaction in node request shape.
func (s *Signed) Broadcasted() rpc.BroadcastedTransaction {
	return rpc.BroadcastedTransaction{
		Kind:          s.Kind,
		Details:       s.Details,
		Calldata:      s.Calldata,
		Signature:     s.Signature,
		ContractClass: s.ContractClass,
	}
}

// DeclarePayload is the class being declared.
type DeclarePayload struct {
	ClassHash         *felt.Felt
	CompiledClassHash *felt.Felt
	ContractClass     json.RawMessage
}

// DeployAccountPayload describes the account contract being deployed.
// ContractAddress is derived when nil.
type DeployAccountPayload struct {
	ClassHash           *felt.Felt
	AddressSalt         *felt.Felt
	ConstructorCalldata []*felt.Felt
	ContractAddress     *felt.Felt
}

// Execute signs an invoke of calls.
func (a *Account) Execute(ctx context.Context, calls []txn.Call, details txn.UniversalDetails) (*Signed, error) {
	d, err := a.assemble(ctx, details, true)
	if err != nil {
		return nil, err
	}
	d.SenderAddress = a.address
	calldata := txn.ExecuteCalldata(calls, d.CairoVersion)
	return a.sign(ctx, txn.Invoke, d, calldata, nil, details)
}

// Declare signs a declare of payload's class.
func (a *Account) Declare(ctx context.Context, payload DeclarePayload, details txn.UniversalDetails) (*Signed, error) {
	d, err := a.assemble(ctx, details, true)
	if err != nil {
		return nil, err
	}
	d.SenderAddress = a.address
	d.ClassHash = payload.ClassHash
	d.CompiledClassHash = payload.CompiledClassHash
	return a.sign(ctx, txn.Declare, d, nil, payload.ContractClass, details)
}

// DeployAccount signs the deployment of a new account contract. The nonce
// defaults to zero since the contract does not exist yet.
func (a *Account) DeployAccount(ctx context.Context, payload DeployAccountPayload, details txn.UniversalDetails) (*Signed, error) {
	d, err := a.assemble(ctx, details, false)
	if err != nil {
		return nil, err
	}
	d.ClassHash = payload.ClassHash
	d.AddressSalt = payload.AddressSalt
	d.ConstructorCalldata = payload.ConstructorCalldata
	d.SenderAddress = payload.ContractAddress
	if d.SenderAddress == nil {
		d.SenderAddress = txn.ContractAddress(payload.AddressSalt, payload.ClassHash, payload.ConstructorCalldata, nil)
	}
	return a.sign(ctx, txn.DeployAccount, d, d.ConstructorCalldata, nil, details)
}

// assemble resolves version, nonce and chain id and fills the v3 fields.
func (a *Account) assemble(ctx context.Context, details txn.UniversalDetails, fetchNonce bool) (*txn.Details, error) {
	version, err := txn.ResolveVersion(a.cfg.DefaultVersion.Felt(), details.Version)
	if err != nil {
		return nil, err
	}

	nonce := details.Nonce
	if nonce == nil {
		if fetchNonce {
			if nonce, err = a.fetchNonce(ctx); err != nil {
				return nil, err
			}
		} else {
			nonce = new(felt.Felt)
		}
	}

	chainID, err := a.chainID(ctx)
	if err != nil {
		return nil, err
	}

	return &txn.Details{
		Version:      version,
		Nonce:        nonce,
		ChainID:      chainID,
		MaxFee:       details.MaxFee,
		V3Fields:     txn.AssembleV3(details),
		CairoVersion: a.cfg.CairoVersion,
	}, nil
}

// sign fills any missing fee fields from an estimate, then hashes and signs.
func (a *Account) sign(ctx context.Context, kind txn.Kind, d *txn.Details, calldata []*felt.Felt, class json.RawMessage, details txn.UniversalDetails) (*Signed, error) {
	if err := a.applyFees(ctx, kind, d, calldata, class, details); err != nil {
		return nil, err
	}

	hash, err := txn.BuildHash(kind, d, calldata)
	if err != nil {
		return nil, err
	}
	sig, err := a.signer.SignRaw(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s transaction: %w", kind, err)
	}

	out := &Signed{
		Kind:          kind,
		Details:       d,
		ContractClass: class,
		Hash:          hash,
		Signature:     sig,
	}
	if kind == txn.Invoke {
		out.Calldata = calldata
	}
	return out, nil
}

func (a *Account) applyFees(ctx context.Context, kind txn.Kind, d *txn.Details, calldata []*felt.Felt, class json.RawMessage, details txn.UniversalDetails) error {
	family, ok := d.Version.Family()
	if !ok {
		return fmt.Errorf("%w: %s", txn.ErrInvalidVersion, d.Version)
	}
	if d.Version.IsQuery() {
		return nil
	}

	switch family {
	case txn.FamilyV3:
		if details.ResourceBounds != nil {
			return nil
		}
		est, err := a.estimate(ctx, kind, d, calldata, class)
		if err != nil {
			return err
		}
		bounds, err := txn.ComputeBounds(est, a.cfg.AmountMargin, a.cfg.PriceMargin)
		if err != nil {
			return err
		}
		d.ResourceBounds = bounds
	case txn.FamilyV2:
		if details.MaxFee != nil {
			return nil
		}
		est, err := a.estimate(ctx, kind, d, calldata, class)
		if err != nil {
			return err
		}
		maxFee, err := txn.MaxFee(est, a.cfg.MaxFeeMargin)
		if err != nil {
			return err
		}
		d.MaxFee = maxFee
	}
	return nil
}

// estimate signs the query-version counterpart of d and asks the node for its fee.
func (a *Account) estimate(ctx context.Context, kind txn.Kind, d *txn.Details, calldata []*felt.Felt, class json.RawMessage) (*txn.FeeEstimate, error) {
	if a.provider == nil {
		return nil, fmt.Errorf("%w: %w", ErrEstimateUnavailable, ErrNoProvider)
	}

	query := *d
	query.Version = d.Version.Query()

	s, skipValidate := a.signer, false
	if a.estimator != nil {
		s, skipValidate = a.estimator, true
	}

	hash, err := txn.BuildHash(kind, &query, calldata)
	if err != nil {
		return nil, err
	}
	sig, err := s.SignRaw(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s fee estimate: %w", kind, err)
	}

	tx := rpc.BroadcastedTransaction{
		Kind:          kind,
		Details:       &query,
		Signature:     sig,
		ContractClass: class,
	}
	if kind == txn.Invoke {
		tx.Calldata = calldata
	}

	est, err := a.provider.EstimateFee(ctx, tx, skipValidate)
	if err != nil {
		logger.Warn("Fee estimation failed", zap.Stringer("kind", kind), zap.Stringer("version", query.Version), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrEstimateUnavailable, err)
	}
	if est == nil {
		return nil, fmt.Errorf("%w: empty response", ErrEstimateUnavailable)
	}
	logger.Debug("Fee estimated",
		zap.Stringer("kind", kind),
		zap.Stringer("overall_fee", est.OverallFee),
		zap.Stringer("gas_consumed", est.GasConsumed),
	)
	return est, nil
}

func (a *Account) fetchNonce(ctx context.Context) (*felt.Felt, error) {
	if a.provider == nil {
		return nil, fmt.Errorf("%w: nonce: %w", ErrEstimateUnavailable, ErrNoProvider)
	}
	nonce, err := a.provider.Nonce(ctx, a.address)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %w", ErrEstimateUnavailable, err)
	}
	return nonce, nil
}

func (a *Account) chainID(ctx context.Context) (*felt.Felt, error) {
	if a.cfg.ChainID != nil {
		return a.cfg.ChainID, nil
	}
	if a.provider == nil {
		return nil, fmt.Errorf("%w: chain id: %w", ErrEstimateUnavailable, ErrNoProvider)
	}
	id, err := a.provider.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: chain id: %w", ErrEstimateUnavailable, err)
	}
	return id, nil
}
