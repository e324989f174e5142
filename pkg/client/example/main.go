package main

import (
	"fmt"
	"log"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/xueqianLu/starksigner/pkg/client"
)

const (
	baseURL   = "http://localhost:2818"
	apiKey    = ""
	apiSecret = ""
)

func main() {
	// Create a new client
	c := client.NewClient(baseURL, apiKey, apiSecret)

	// 1. Health Check
	fmt.Println("1. Performing Health Check...")
	health, err := c.Health()
	if err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	fmt.Printf("   Health status: %s\n\n", health)

	// 2. Get All Keys
	fmt.Println("2. Getting All Keys...")
	accounts, err := c.GetAccounts()
	if err != nil {
		log.Fatalf("Failed to get accounts: %v", err)
	}
	fmt.Printf("   Available keys: %v\n\n", accounts)

	// 3. Create two new keys for a 2-of-2 multisig
	fmt.Println("3. Creating two new keys...")
	var signers []*felt.Felt
	for i := 0; i < 2; i++ {
		createResp, err := c.CreateAccount()
		if err != nil {
			log.Fatalf("Failed to create key: %v", err)
		}
		fmt.Printf("   Created key %s (guid %s)\n", createResp.PublicKey, createResp.GUID)
		signers = append(signers, createResp.PublicKey)
	}
	fmt.Println()

	// 4. Sign a raw hash with both keys
	fmt.Println("4. Signing a hash...")
	hash, _ := new(felt.Felt).SetString("0x2d6479c0758efbb5aa07d35ed5454d728637fceab7ba544d3ea95403a5630a8")
	sigResp, err := c.SignHash(client.SignHashRequest{Signers: signers, Hash: hash})
	if err != nil {
		log.Fatalf("Failed to sign hash: %v", err)
	}
	fmt.Printf("   Signature: %v\n\n", sigResp.Signature)

	// 5. Sign a v3 invoke; nonce and resource bounds come from the node
	fmt.Println("5. Signing an invoke transaction...")
	account, _ := new(felt.Felt).SetString("0x4b3f4ba8c00a02b66142a4b1dd41a4dfab4f92650922a3280977b0f03c75ee1")
	token, _ := new(felt.Felt).SetString("0x4718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d")
	txResp, err := c.SignTransaction(client.SignTxRequest{
		Signers: signers,
		Address: account,
		Calls: []client.Call{{
			ContractAddress: token,
			EntryPoint:      "transfer",
			Calldata:        []*felt.Felt{account, new(felt.Felt).SetUint64(1000), new(felt.Felt)},
		}},
		Details: client.Details{Version: new(felt.Felt).SetUint64(3)},
	})
	if err != nil {
		log.Fatalf("Failed to sign transaction: %v", err)
	}
	fmt.Printf("   Transaction hash: %s\n", txResp.TransactionHash)
	fmt.Printf("   Signature: %v\n", txResp.Signature)
	fmt.Printf("   Broadcast body: %s\n", txResp.Transaction)
}
