package txn

import (
	"math/big"

	"github.com/NethermindEth/juno/core/crypto"
	"github.com/NethermindEth/juno/core/felt"
)

var (
	contractAddressPrefix = ShortString("STARKNET_CONTRACT_ADDRESS")

	// addressBound is 2^251 - 256.
	addressBound = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 251), big.NewInt(256))
)

// ContractAddress derives the address a class deploys to. deployer is zero for
// deploy-account transactions.
func ContractAddress(salt, classHash *felt.Felt, constructorCalldata []*felt.Felt, deployer *felt.Felt) *felt.Felt {
	h := crypto.PedersenArray(
		contractAddressPrefix,
		orZero(deployer),
		orZero(salt),
		orZero(classHash),
		crypto.PedersenArray(constructorCalldata...),
	)
	addr := toBig(h)
	addr.Mod(addr, addressBound)
	return new(felt.Felt).SetBytes(addr.Bytes())
}
