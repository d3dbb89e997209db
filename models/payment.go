package models

// Result is the tagged outcome business services return instead of
// propagating errors across service boundaries. The handler layer maps
// Status to an HTTP code deterministically.
type Result struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Ok builds a successful result.
func Ok(message string, data interface{}) Result {
	return Result{Status: true, Message: message, Data: data}
}

// Fail builds a failed result.
func Fail(message string) Result {
	return Result{Status: false, Message: message}
}

// Metadata tags distinguishing checkout flavors on webhook delivery.
const (
	MetadataTypeCartPayment   = "cart_payment"
	MetadataTypeDirectPayment = "direct_payment"
)

// MetadataItem mirrors OrderItem with a string product id so the envelope
// survives a JSON round trip through the gateway's metadata store.
type MetadataItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name,omitempty"`
	Image     string  `json:"image,omitempty"`
}

// CheckoutMetadata is the envelope attached to a checkout session or
// payment intent, reconstructed on webhook delivery to create the order.
type CheckoutMetadata struct {
	CustomerID      string         `json:"customerId"`
	Items           []MetadataItem `json:"items"`
	TotalAmount     float64        `json:"totalAmount"`
	ShippingAddress Address        `json:"shippingAddress"`
	BillingAddress  *Address       `json:"billingAddress,omitempty"`
	Currency        string         `json:"currency,omitempty"`
	Notes           string         `json:"notes,omitempty"`
}

// CartPaymentRequest is the payload for checkout session creation and
// direct payment.
type CartPaymentRequest struct {
	ShippingAddress Address  `json:"shippingAddress" validate:"required"`
	BillingAddress  *Address `json:"billingAddress,omitempty"`
	Currency        string   `json:"currency,omitempty" validate:"omitempty,oneof=usd eur gbp"`
	Notes           string   `json:"notes,omitempty"`
	PaymentMethodID string   `json:"paymentMethodId,omitempty"`
}

// PaymentMethodInfo describes one checkout flavor exposed to clients.
type PaymentMethodInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Enabled     bool   `json:"enabled"`
	Popular     bool   `json:"popular,omitempty"`
}

// RefundRequest is the payload for refunds; Amount is in major units and
// optional (absent means full refund).
type RefundRequest struct {
	PaymentIntentID string  `json:"paymentIntentId" validate:"required"`
	Amount          float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

// ConfirmPaymentRequest is the payload for synchronous confirmation checks.
type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
}
