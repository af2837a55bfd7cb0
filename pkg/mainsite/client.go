package mainsite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout applies when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// SyncCoinsRequest is the body accepted by the main site's sync-coins endpoint
type SyncCoinsRequest struct {
	UserID     string `json:"userId"`
	CoinAmount int64  `json:"coinAmount"`
	Reason     string `json:"reason"`
	Source     string `json:"source"`
}

// Client represents a main site admin API client
type Client struct {
	SyncURL  string
	AdminKey string
	client   *http.Client
}

// NewClient creates a new main site client
func NewClient(syncURL, adminKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		SyncURL:  syncURL,
		AdminKey: adminKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// SyncCoins posts one coin mutation. idempotencyKey lets the main site drop redeliveries.
// Any 2xx response is success.
func (c *Client) SyncCoins(ctx context.Context, idempotencyKey string, body SyncCoinsRequest) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.SyncURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.AdminKey != "" {
		req.Header.Set("X-Admin-Key", c.AdminKey)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
