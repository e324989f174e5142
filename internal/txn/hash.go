package txn

import (
	"fmt"

	"github.com/NethermindEth/juno/core/crypto"
	"github.com/NethermindEth/juno/core/felt"
	"github.com/holiman/uint256"
)

// Kind is the transaction type being hashed.
type Kind uint8

const (
	Invoke Kind = iota + 1
	Declare
	DeployAccount
)

func (k Kind) String() string {
	switch k {
	case Invoke:
		return "invoke"
	case Declare:
		return "declare"
	case DeployAccount:
		return "deploy-account"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

var (
	invokePrefix        = ShortString("invoke")
	declarePrefix       = ShortString("declare")
	deployAccountPrefix = ShortString("deploy_account")

	l1GasName = ShortString("L1_GAS")
	l2GasName = ShortString("L2_GAS")
)

type hashKey struct {
	kind   Kind
	family Family
}

type hashFunc func(d *Details, calldata []*felt.Felt) (*felt.Felt, error)

var hashers = map[hashKey]hashFunc{
	{Invoke, FamilyV2}:        invokeHashV2,
	{Invoke, FamilyV3}:        invokeHashV3,
	{Declare, FamilyV2}:       declareHashV2,
	{Declare, FamilyV3}:       declareHashV3,
	{DeployAccount, FamilyV2}: deployAccountHashV2,
	{DeployAccount, FamilyV3}: deployAccountHashV3,
}

// BuildHash computes the transaction hash every signer signs. calldata is the
// compiled __execute__ calldata for invoke and the constructor calldata for
// deploy-account; declare ignores it.
func BuildHash(kind Kind, d *Details, calldata []*felt.Felt) (*felt.Felt, error) {
	family, ok := d.Version.Family()
	if !ok {
		return nil, fmt.Errorf("%w: cannot hash %s transaction with %s", ErrUnsupportedTransactionVersion, kind, d.Version)
	}
	fn, ok := hashers[hashKey{kind, family}]
	if !ok {
		return nil, fmt.Errorf("%w: cannot hash %s transaction with %s", ErrUnsupportedTransactionVersion, kind, d.Version)
	}
	return fn(d, calldata)
}

// commonHashV2 is the Pedersen preimage shared by all v2-family transactions.
func commonHashV2(prefix *felt.Felt, d *Details, address *felt.Felt, calldata []*felt.Felt, additional ...*felt.Felt) *felt.Felt {
	elems := []*felt.Felt{
		prefix,
		d.Version.Felt(),
		orZero(address),
		new(felt.Felt), // entry point selector
		crypto.PedersenArray(calldata...),
		orZero(d.MaxFee),
		orZero(d.ChainID),
	}
	return crypto.PedersenArray(append(elems, additional...)...)
}

func invokeHashV2(d *Details, calldata []*felt.Felt) (*felt.Felt, error) {
	return commonHashV2(invokePrefix, d, d.SenderAddress, calldata, orZero(d.Nonce)), nil
}

func declareHashV2(d *Details, _ []*felt.Felt) (*felt.Felt, error) {
	additional := []*felt.Felt{orZero(d.Nonce)}
	if d.CompiledClassHash != nil {
		additional = append(additional, d.CompiledClassHash)
	}
	return commonHashV2(declarePrefix, d, d.SenderAddress, []*felt.Felt{orZero(d.ClassHash)}, additional...), nil
}

func deployAccountHashV2(d *Details, calldata []*felt.Felt) (*felt.Felt, error) {
	data := append([]*felt.Felt{orZero(d.ClassHash), orZero(d.AddressSalt)}, calldata...)
	return commonHashV2(deployAccountPrefix, d, d.SenderAddress, data, orZero(d.Nonce)), nil
}

// commonFieldsV3 returns the Poseidon preimage prefix shared by v3 transactions:
// prefix, version, address, fee field hash, paymaster data hash, chain id,
// nonce, data availability modes.
func commonFieldsV3(prefix *felt.Felt, d *Details, address *felt.Felt) ([]*felt.Felt, error) {
	feeHash, err := feeFieldHash(d.Tip, d.ResourceBounds)
	if err != nil {
		return nil, err
	}
	return []*felt.Felt{
		prefix,
		d.Version.Felt(),
		orZero(address),
		feeHash,
		crypto.PoseidonArray(d.PaymasterData...),
		orZero(d.ChainID),
		orZero(d.Nonce),
		daModeHash(d.NonceDataAvailabilityMode, d.FeeDataAvailabilityMode),
	}, nil
}

func invokeHashV3(d *Details, calldata []*felt.Felt) (*felt.Felt, error) {
	elems, err := commonFieldsV3(invokePrefix, d, d.SenderAddress)
	if err != nil {
		return nil, err
	}
	elems = append(elems,
		crypto.PoseidonArray(d.AccountDeploymentData...),
		crypto.PoseidonArray(calldata...),
	)
	return crypto.PoseidonArray(elems...), nil
}

func declareHashV3(d *Details, _ []*felt.Felt) (*felt.Felt, error) {
	elems, err := commonFieldsV3(declarePrefix, d, d.SenderAddress)
	if err != nil {
		return nil, err
	}
	elems = append(elems,
		crypto.PoseidonArray(d.AccountDeploymentData...),
		orZero(d.ClassHash),
		orZero(d.CompiledClassHash),
	)
	return crypto.PoseidonArray(elems...), nil
}

func deployAccountHashV3(d *Details, calldata []*felt.Felt) (*felt.Felt, error) {
	elems, err := commonFieldsV3(deployAccountPrefix, d, d.SenderAddress)
	if err != nil {
		return nil, err
	}
	elems = append(elems,
		crypto.PoseidonArray(calldata...),
		orZero(d.ClassHash),
		orZero(d.AddressSalt),
	)
	return crypto.PoseidonArray(elems...), nil
}

// feeFieldHash is Poseidon(tip, L1 bound, L2 bound).
func feeFieldHash(tip uint64, bounds ResourceBoundsMapping) (*felt.Felt, error) {
	l1, err := encodeBound(l1GasName, bounds.L1Gas)
	if err != nil {
		return nil, fmt.Errorf("l1_gas: %w", err)
	}
	l2, err := encodeBound(l2GasName, bounds.L2Gas)
	if err != nil {
		return nil, fmt.Errorf("l2_gas: %w", err)
	}
	return crypto.PoseidonArray(feltFromUint(tip), l1, l2), nil
}

// encodeBound packs a bound as name(60 bits) | max_amount(64 bits) | max_price_per_unit(128 bits).
func encodeBound(name *felt.Felt, b ResourceBounds) (*felt.Felt, error) {
	if b.MaxAmount.BitLen() > 64 {
		return nil, fmt.Errorf("%w: max_amount %s", ErrResourceBoundOverflow, b.MaxAmount.Hex())
	}
	if b.MaxPricePerUnit.BitLen() > 128 {
		return nil, fmt.Errorf("%w: max_price_per_unit %s", ErrResourceBoundOverflow, b.MaxPricePerUnit.Hex())
	}
	nameBytes := name.Bytes()
	packed := new(uint256.Int).SetBytes(nameBytes[:])
	packed.Lsh(packed, 192)
	amount := new(uint256.Int).Lsh(&b.MaxAmount, 128)
	packed.Or(packed, amount)
	packed.Or(packed, &b.MaxPricePerUnit)

	out := packed.Bytes32()
	return new(felt.Felt).SetBytes(out[:]), nil
}

// daModeHash is nonce_mode << 32 | fee_mode.
func daModeHash(nonceMode, feeMode DataAvailabilityMode) *felt.Felt {
	return feltFromUint(uint64(nonceMode)<<32 | uint64(feeMode))
}
