// Package gateway isolates the payment provider behind a narrow interface
// so checkout logic can be exercised against a fake.
package gateway

import "context"

// Webhook event types the checkout flow reacts to.
const (
	EventPaymentSucceeded  = "payment_intent.succeeded"
	EventPaymentFailed     = "payment_intent.payment_failed"
	EventPaymentCanceled   = "payment_intent.canceled"
	EventCheckoutCompleted = "checkout.session.completed"
)

// PaymentIntentStatusSucceeded is the terminal success status reported by
// the provider for a confirmed payment intent.
const PaymentIntentStatusSucceeded = "succeeded"

// MaxMetadataValueLength is the provider's hard cap on the length of a
// single metadata value. Larger payloads must be chunked.
const MaxMetadataValueLength = 500

// LineItem is one priced line of a checkout session. UnitAmount is in
// minor currency units (cents).
type LineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
	Currency    string
}

// CheckoutSessionParams describes a hosted checkout session request.
type CheckoutSessionParams struct {
	LineItems          []LineItem
	PaymentMethodTypes []string
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// CheckoutSession is the created session reference and hosted payment URL.
type CheckoutSession struct {
	ID  string
	URL string
}

// ShippingDetails is the optional shipping block on a payment intent.
type ShippingDetails struct {
	Name       string
	Line1      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// PaymentIntentParams describes a direct payment request. Amount is in
// minor currency units.
type PaymentIntentParams struct {
	Amount        int64
	Currency      string
	PaymentMethod string
	Confirm       bool
	Metadata      map[string]string
	Shipping      *ShippingDetails
}

// PaymentIntent is the provider's view of a payment attempt.
type PaymentIntent struct {
	ID           string
	Status       string
	ClientSecret string
}

// RefundParams describes a refund; Amount is in minor units, zero meaning
// a full refund.
type RefundParams struct {
	PaymentIntentID string
	Amount          int64
}

// Refund is the created refund reference.
type Refund struct {
	ID string
}

// Event is a verified, parsed webhook notification.
type Event struct {
	Type            string
	PaymentIntentID string
	SessionID       string
	Metadata        map[string]string
}

// Gateway is the payment-provider surface the checkout flow consumes. The
// implementation is constructed once at startup and injected; there is no
// package-level client.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, params PaymentIntentParams) (*PaymentIntent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
	CreateRefund(ctx context.Context, params RefundParams) (*Refund, error)
	VerifyWebhook(payload []byte, signature string) (*Event, error)
}
