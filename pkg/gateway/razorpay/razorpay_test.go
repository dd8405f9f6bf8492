package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opdbook/booking-api/pkg/gateway"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestClient(baseURL string) *Client {
	logger := zerolog.Nop()
	return New(Config{KeyID: "rzp_test_key", KeySecret: "test_secret", BaseURL: baseURL}, &logger)
}

func TestVerifySignature(t *testing.T) {
	c := newTestClient("")

	res := gateway.CheckoutResult{
		OrderID:   "order_abc123",
		PaymentID: "pay_def456",
		Signature: sign("test_secret", "order_abc123", "pay_def456"),
	}
	assert.True(t, c.VerifySignature(res))
}

func TestVerifySignatureRejectsForgery(t *testing.T) {
	c := newTestClient("")

	cases := []gateway.CheckoutResult{
		{OrderID: "order_abc123", PaymentID: "pay_def456", Signature: "deadbeef"},
		{OrderID: "order_abc123", PaymentID: "pay_def456", Signature: ""},
		// valid signature but for a different order
		{OrderID: "order_other", PaymentID: "pay_def456", Signature: sign("test_secret", "order_abc123", "pay_def456")},
		// signed with the wrong secret
		{OrderID: "order_abc123", PaymentID: "pay_def456", Signature: sign("wrong_secret", "order_abc123", "pay_def456")},
	}
	for _, res := range cases {
		assert.False(t, c.VerifySignature(res))
	}
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "rzp_test_key", user)
		require.Equal(t, "test_secret", pass)

		var req orderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(70800), req.Amount)
		assert.Equal(t, "INR", req.Currency)

		json.NewEncoder(w).Encode(orderResponse{
			ID:       "order_xyz",
			Amount:   req.Amount,
			Currency: req.Currency,
			Status:   "created",
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	order, err := c.CreateOrder(context.Background(), "appt-1", 708, "INR")
	require.NoError(t, err)
	assert.Equal(t, "order_xyz", order.ID)
	assert.Equal(t, int64(70800), order.AmountMinor)
	assert.Equal(t, "rzp_test_key", order.Key)
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CreateOrder(context.Background(), "appt-1", 708, "INR")
	assert.Error(t, err)
}
