package gateway

import "context"

// Order is a payment order created with the external gateway. AmountMinor is
// in the currency's minor units (paise, cents), as checkout widgets expect.
type Order struct {
	ID          string
	AmountMinor int64
	Currency    string
	// Key is the public key the client hands to the checkout widget.
	Key string
}

// CheckoutResult is what the gateway's widget reports back on success. The
// signature must be verified server-side before anything is trusted.
type CheckoutResult struct {
	OrderID   string
	PaymentID string
	Signature string
}

// Gateway is the payment collaborator contract. Implementations talk to the
// real processor; the wizard depends on this interface only.
type Gateway interface {
	// CreateOrder registers a new order for the given amount in whole
	// currency units. Every payment attempt gets a fresh order.
	CreateOrder(ctx context.Context, receipt string, amount int64, currency string) (*Order, error)
	// VerifySignature checks the checkout result against the order it claims
	// to pay. A false return means the success report is not to be trusted.
	VerifySignature(res CheckoutResult) bool
}
