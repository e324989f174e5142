package client

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/NethermindEth/juno/core/felt"
)

// CreateAccountResponse represents the response for a new key creation.
type CreateAccountResponse struct {
	PublicKey *felt.Felt `json:"public_key"`
	GUID      *felt.Felt `json:"guid"`
}

// Call is a single contract invocation.
type Call struct {
	ContractAddress *felt.Felt   `json:"contract_address"`
	EntryPoint      string       `json:"entry_point"`
	Calldata        []*felt.Felt `json:"calldata"`
}

// ResourceBound is the ceiling for a single resource, as hex quantities.
type ResourceBound struct {
	MaxAmount       string `json:"max_amount"`
	MaxPricePerUnit string `json:"max_price_per_unit"`
}

// ResourceBounds holds both resource channels.
type ResourceBounds struct {
	L1Gas ResourceBound `json:"l1_gas"`
	L2Gas ResourceBound `json:"l2_gas"`
}

// Details are the optional transaction fields. Unset fields are filled by the
// service from the node.
type Details struct {
	Nonce                     *felt.Felt      `json:"nonce,omitempty"`
	Version                   *felt.Felt      `json:"version,omitempty"`
	MaxFee                    *felt.Felt      `json:"max_fee,omitempty"`
	Tip                       *uint64         `json:"tip,omitempty"`
	PaymasterData             []*felt.Felt    `json:"paymaster_data,omitempty"`
	AccountDeploymentData     []*felt.Felt    `json:"account_deployment_data,omitempty"`
	NonceDataAvailabilityMode string          `json:"nonce_data_availability_mode,omitempty"`
	FeeDataAvailabilityMode   string          `json:"fee_data_availability_mode,omitempty"`
	ResourceBounds            *ResourceBounds `json:"resource_bounds,omitempty"`
}

// SignHashRequest represents the request to sign a raw hash.
type SignHashRequest struct {
	Signers []*felt.Felt `json:"signers"`
	Hash    *felt.Felt   `json:"hash"`
}

// SignatureResponse represents a composite signature.
type SignatureResponse struct {
	Signature []*felt.Felt `json:"signature"`
}

// SignTxRequest represents the request to sign an invoke transaction.
type SignTxRequest struct {
	Signers []*felt.Felt `json:"signers"`
	Address *felt.Felt   `json:"address"`
	Calls   []Call       `json:"calls"`
	Details Details      `json:"details"`
}

// SignDeclareRequest represents the request to sign a declare transaction.
type SignDeclareRequest struct {
	Signers           []*felt.Felt    `json:"signers"`
	Address           *felt.Felt      `json:"address"`
	ClassHash         *felt.Felt      `json:"class_hash"`
	CompiledClassHash *felt.Felt      `json:"compiled_class_hash"`
	ContractClass     json.RawMessage `json:"contract_class"`
	Details           Details         `json:"details"`
}

// SignDeployAccountRequest represents the request to sign a deploy-account transaction.
type SignDeployAccountRequest struct {
	Signers             []*felt.Felt `json:"signers"`
	ClassHash           *felt.Felt   `json:"class_hash"`
	AddressSalt         *felt.Felt   `json:"contract_address_salt"`
	ConstructorCalldata []*felt.Felt `json:"constructor_calldata"`
	ContractAddress     *felt.Felt   `json:"contract_address,omitempty"`
	Details             Details      `json:"details"`
}

// SignTxResponse represents a signed transaction. Transaction is the
// broadcast-ready request body for the node.
type SignTxResponse struct {
	TransactionHash *felt.Felt      `json:"transaction_hash"`
	Signature       []*felt.Felt    `json:"signature"`
	Transaction     json.RawMessage `json:"transaction"`
}

const (
	apiKeyHeader    = "X-API-Key"
	signatureHeader = "X-Signature"
	timestampHeader = "X-Timestamp"
)

// Client is a client for the starksigner service.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

// NewClient creates a new starksigner client.
func NewClient(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Health checks the health of the signer service.
func (c *Client) Health() (string, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("service returned non-OK status: %s, body: %s", resp.Status, string(body))
	}

	return string(body), nil
}

// GetAccounts retrieves the public keys managed by the signer.
func (c *Client) GetAccounts() ([]string, error) {
	var accounts []string
	err := c.doRequest(http.MethodGet, "/accounts", nil, &accounts)
	return accounts, err
}

// CreateAccount requests the creation of a new key in the signer.
func (c *Client) CreateAccount() (*CreateAccountResponse, error) {
	var resp CreateAccountResponse
	err := c.doRequest(http.MethodPost, "/create-account", nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignHash signs a precomputed hash with the given keys.
func (c *Client) SignHash(req SignHashRequest) (*SignatureResponse, error) {
	var resp SignatureResponse
	err := c.doRequest(http.MethodPost, "/sign-hash", req, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignTransaction sends an invoke transaction to the signer service to be signed.
func (c *Client) SignTransaction(req SignTxRequest) (*SignTxResponse, error) {
	var resp SignTxResponse
	err := c.doRequest(http.MethodPost, "/sign-transaction", req, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignDeclare sends a declare transaction to the signer service to be signed.
func (c *Client) SignDeclare(req SignDeclareRequest) (*SignTxResponse, error) {
	var resp SignTxResponse
	err := c.doRequest(http.MethodPost, "/sign-declare", req, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignDeployAccount sends a deploy-account transaction to the signer service to be signed.
func (c *Client) SignDeployAccount(req SignDeployAccountRequest) (*SignTxResponse, error) {
	var resp SignTxResponse
	err := c.doRequest(http.MethodPost, "/sign-deploy-account", req, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doRequest(method, path string, data, result interface{}) error {
	var reqBody []byte
	var err error

	if data != nil {
		reqBody, err = json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := c.calculateSignature(timestamp, reqBody)

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set(timestampHeader, timestamp)
	req.Header.Set(signatureHeader, signature)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(respBody))}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func (c *Client) calculateSignature(timestamp string, body []byte) string {
	payload := timestamp + string(body)
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// StatusError is returned when the service answers with a non-success status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Code, e.Body)
}
