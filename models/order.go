package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// DefaultCurrency is applied when a request omits the currency.
const DefaultCurrency = "usd"

// orderStatusNext maps each status to its legal successors.
// pending may also be cancelled; every other transition walks the
// fulfilment chain one step at a time.
var orderStatusNext = map[string][]string{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
}

var paymentStatusNext = map[string][]string{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusPaid:    {PaymentStatusRefunded},
	PaymentStatusFailed:  {PaymentStatusRefunded},
}

// CanTransitionStatus reports whether an order status change is legal.
func CanTransitionStatus(from, to string) bool {
	for _, next := range orderStatusNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionPaymentStatus reports whether a payment status change is legal.
func CanTransitionPaymentStatus(from, to string) bool {
	for _, next := range paymentStatusNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanCancel reports whether an order may still be cancelled.
// Cancellation is only legal while the order is pending.
func CanCancel(status string) bool {
	return status == OrderStatusPending
}

// Address is a shipping or billing address.
type Address struct {
	Street     string `json:"street" bson:"street" validate:"required"`
	City       string `json:"city" bson:"city" validate:"required"`
	State      string `json:"state" bson:"state" validate:"required"`
	PostalCode string `json:"postalCode" bson:"postalCode" validate:"required"`
	Country    string `json:"country" bson:"country" validate:"required"`
	Phone      string `json:"phone,omitempty" bson:"phone,omitempty"`
	Email      string `json:"email,omitempty" bson:"email,omitempty"`
}

// OrderItem is one line of an order; price is the unit price captured from
// the cart at checkout time.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Quantity  int                `json:"quantity" bson:"quantity" validate:"required,gte=1"`
	Price     float64            `json:"price" bson:"price" validate:"required,gte=0"`
	Name      string             `json:"name,omitempty" bson:"name,omitempty"`
	Image     string             `json:"image,omitempty" bson:"image,omitempty"`
}

// Order is the order document. Stock is decremented exactly once per order,
// on the pending→paid payment transition, never on creation.
type Order struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderNumber     string             `json:"orderNumber" bson:"orderNumber"`
	CustomerID      primitive.ObjectID `json:"customerId" bson:"customerId"`
	Items           []OrderItem        `json:"items" bson:"items"`
	TotalAmount     float64            `json:"totalAmount" bson:"totalAmount"`
	ShippingAddress Address            `json:"shippingAddress" bson:"shippingAddress"`
	BillingAddress  Address            `json:"billingAddress" bson:"billingAddress"`
	Status          string             `json:"status" bson:"status"`
	PaymentStatus   string             `json:"paymentStatus" bson:"paymentStatus"`
	PaymentIntentID string             `json:"paymentIntentId,omitempty" bson:"paymentIntentId,omitempty"`
	Notes           string             `json:"notes,omitempty" bson:"notes,omitempty"`
	Currency        string             `json:"currency" bson:"currency"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// CreateOrderRequest is the payload for direct order creation and the shape
// reconstructed from checkout metadata.
type CreateOrderRequest struct {
	CustomerID      string      `json:"customerId" validate:"required"`
	Items           []OrderItem `json:"items" validate:"required,min=1,dive"`
	TotalAmount     float64     `json:"totalAmount" validate:"required,gt=0"`
	ShippingAddress Address     `json:"shippingAddress" validate:"required"`
	BillingAddress  *Address    `json:"billingAddress,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	Currency        string      `json:"currency,omitempty"`
}
