package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/opdbook/booking-api/pkg/gateway"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

type Config struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
	logger    *zerolog.Logger
}

func New(cfg Config, logger *zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   cfg.BaseURL,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    logger,
	}
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// CreateOrder registers an order with the gateway. Amount comes in whole
// currency units and goes over the wire in minor units.
func (c *Client) CreateOrder(ctx context.Context, receipt string, amount int64, currency string) (*gateway.Order, error) {
	payload, err := json.Marshal(orderRequest{
		Amount:   amount * 100,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Str("receipt", receipt).Msg("gateway rejected order creation")
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var out orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	return &gateway.Order{
		ID:          out.ID,
		AmountMinor: out.Amount,
		Currency:    out.Currency,
		Key:         c.keyID,
	}, nil
}

// VerifySignature recomputes the checkout signature: HMAC-SHA256 over
// "<order_id>|<payment_id>" keyed with the secret, hex encoded. Comparison is
// constant time.
func (c *Client) VerifySignature(res gateway.CheckoutResult) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	fmt.Fprintf(mac, "%s|%s", res.OrderID, res.PaymentID)
	expected := hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(res.Signature)) == 1
}
