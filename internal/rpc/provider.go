package rpc

import (
	"context"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/xueqianLu/starksigner/internal/txn"
)

// Block tag every query is evaluated against.
const pendingBlock = "pending"

const skipValidateFlag = "SKIP_VALIDATE"

// Client talks to a Starknet node over JSON-RPC.
type Client struct {
	c *gethrpc.Client
}

// Dial connects to the node at rawurl.
func Dial(ctx context.Context, rawurl string) (*Client, error) {
	c, err := gethrpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("failed to dial starknet node: %w", err)
	}
	return NewClient(c), nil
}

// NewClient wraps an existing JSON-RPC client.
func NewClient(c *gethrpc.Client) *Client {
	return &Client{c: c}
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.c.Close()
}

// ChainID returns the chain id of the node.
func (c *Client) ChainID(ctx context.Context) (*felt.Felt, error) {
	var id felt.Felt
	if err := c.c.CallContext(ctx, &id, "starknet_chainId"); err != nil {
		return nil, fmt.Errorf("starknet_chainId: %w", err)
	}
	return &id, nil
}

// Nonce returns the pending nonce of the contract at address.
func (c *Client) Nonce(ctx context.Context, address *felt.Felt) (*felt.Felt, error) {
	var nonce felt.Felt
	if err := c.c.CallContext(ctx, &nonce, "starknet_getNonce", pendingBlock, address); err != nil {
		return nil, fmt.Errorf("starknet_getNonce: %w", err)
	}
	return &nonce, nil
}

// EstimateFee estimates the fee of a single transaction against the pending block.
func (c *Client) EstimateFee(ctx context.Context, tx BroadcastedTransaction, skipValidate bool) (*txn.FeeEstimate, error) {
	flags := []string{}
	if skipValidate {
		flags = append(flags, skipValidateFlag)
	}
	var estimates []txn.FeeEstimate
	err := c.c.CallContext(ctx, &estimates, "starknet_estimateFee", []BroadcastedTransaction{tx}, flags, pendingBlock)
	if err != nil {
		return nil, fmt.Errorf("starknet_estimateFee: %w", err)
	}
	if len(estimates) != 1 {
		return nil, fmt.Errorf("starknet_estimateFee: expected 1 estimate, got %d", len(estimates))
	}
	return &estimates[0], nil
}
