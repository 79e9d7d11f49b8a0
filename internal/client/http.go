// Package client talks to a running relay: HTTPClient publishes events the
// way the storefront backend does and WSClient subscribes to the admin
// channel for the console.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Order is the body of POST /notify/new-order. OrderID is sent as-is, so
// it may be a number or a string.
type Order struct {
	OrderID       any      `json:"orderId"`
	ContactPhone  string   `json:"contactPhone,omitempty"`
	CustomerName  string   `json:"customerName,omitempty"`
	CustomerEmail string   `json:"customerEmail,omitempty"`
	OrderTotal    *float64 `json:"orderTotal,omitempty"`
	Status        string   `json:"status,omitempty"`
}

// Promotion is one entry of POST /notify/expiring-promotions.
type Promotion struct {
	ID            any     `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Code          string  `json:"code" yaml:"code"`
	ExpiryDate    string  `json:"expiryDate" yaml:"expiryDate"`
	DaysRemaining int     `json:"daysRemaining" yaml:"daysRemaining"`
	DiscountValue float64 `json:"discountValue" yaml:"discountValue"`
}

// Result is the relay's acknowledgement.
type Result struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	AdminCount *int   `json:"adminCount,omitempty"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("relay returned %d: %s", e.Status, e.Message)
}

// HTTPClient makes ingestion calls against a relay.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a client targeting the given base URL (e.g. "http://127.0.0.1:3003").
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// PublishOrder sends POST /notify/new-order.
func (c *HTTPClient) PublishOrder(ctx context.Context, o Order) (*Result, error) {
	var out Result
	if err := c.post(ctx, "/notify/new-order", o, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PublishPromotions sends POST /notify/expiring-promotions.
func (c *HTTPClient) PublishPromotions(ctx context.Context, promos []Promotion) (*Result, error) {
	body := map[string][]Promotion{"promotions": promos}
	var out Result
	if err := c.post(ctx, "/notify/expiring-promotions", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var r Result
	if json.Unmarshal(raw, &r) == nil && r.Message != "" {
		return &APIError{Status: resp.StatusCode, Message: r.Message}
	}
	return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
}

func (c *HTTPClient) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
