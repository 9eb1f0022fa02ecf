// Package chain provides Stellar Horizon interaction for the platform.
// Horizon is treated as an opaque boundary: the platform only needs
// transaction submission and lookups.
package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrTransactionNotFound is returned when Horizon does not know the hash.
var ErrTransactionNotFound = errors.New("transaction not found")

// Config holds client configuration.
type Config struct {
	HorizonURL string
	Timeout    time.Duration
}

// Client talks to a Stellar Horizon server.
type Client struct {
	horizonURL string
	httpClient *http.Client
}

// Transaction is the subset of Horizon's transaction record the platform
// consumes.
type Transaction struct {
	ID          string    `json:"id"`
	Hash        string    `json:"hash"`
	Successful  bool      `json:"successful"`
	Ledger      int64     `json:"ledger"`
	CreatedAt   time.Time `json:"created_at"`
	EnvelopeXDR string    `json:"envelope_xdr"`
}

// Balance is a single asset balance line on an account.
type Balance struct {
	Balance   string `json:"balance"`
	AssetType string `json:"asset_type"`
}

// Account is the subset of Horizon's account record the platform consumes.
type Account struct {
	AccountID string    `json:"account_id"`
	Sequence  string    `json:"sequence"`
	Balances  []Balance `json:"balances"`
}

// NewClient creates a Horizon client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.HorizonURL == "" {
		return nil, fmt.Errorf("horizon URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		horizonURL: strings.TrimRight(cfg.HorizonURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) get(ctx context.Context, path string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.horizonURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrTransactionNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("horizon %s: status %d: %s", path, resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

// GetTransaction fetches a transaction record by hash.
func (c *Client) GetTransaction(ctx context.Context, hash string) (Transaction, error) {
	var tx Transaction
	if err := c.get(ctx, "/transactions/"+url.PathEscape(hash), &tx); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// GetAccount fetches an account record by address.
func (c *Client) GetAccount(ctx context.Context, address string) (Account, error) {
	var acct Account
	if err := c.get(ctx, "/accounts/"+url.PathEscape(address), &acct); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// SubmitTransaction posts a signed transaction envelope to the network.
func (c *Client) SubmitTransaction(ctx context.Context, signedXDR string) (Transaction, error) {
	form := url.Values{"tx": {signedXDR}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.horizonURL+"/transactions", strings.NewReader(form.Encode()))
	if err != nil {
		return Transaction{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Transaction{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transaction{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Transaction{}, fmt.Errorf("submit transaction: status %d: %s", resp.StatusCode, string(body))
	}

	var tx Transaction
	if err := json.Unmarshal(body, &tx); err != nil {
		return Transaction{}, fmt.Errorf("unmarshal response: %w", err)
	}
	return tx, nil
}

// VerifyPayment confirms the hash refers to a successfully applied
// transaction. It satisfies the points service's TxVerifier contract.
func (c *Client) VerifyPayment(ctx context.Context, txHash string) error {
	tx, err := c.GetTransaction(ctx, txHash)
	if err != nil {
		return err
	}
	if !tx.Successful {
		return fmt.Errorf("transaction %s was not successful", txHash)
	}
	return nil
}
