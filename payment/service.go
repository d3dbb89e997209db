// Package payment drives checkout: session creation against the payment
// gateway, direct payment intents, and the webhook reconciliation that
// turns a paid cart into an order.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parvesmosarof35/new-ecommerce-api/gateway"
	"github.com/parvesmosarof35/new-ecommerce-api/models"
	"github.com/parvesmosarof35/new-ecommerce-api/order"
)

// CartReader is the slice of the cart service checkout needs.
type CartReader interface {
	ItemsForCheckout(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, models.CartSummary, error)
	Clear(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// OrderStore is the slice of the order service checkout needs.
type OrderStore interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID primitive.ObjectID, paymentStatus, paymentIntentID string) (*models.Order, error)
	OrderByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error)
}

// Service coordinates the gateway, the cart and the order store. All
// outcomes are tagged results; the handler layer maps them to HTTP codes.
type Service struct {
	gw         gateway.Gateway
	carts      CartReader
	orders     OrderStore
	successURL string
	cancelURL  string
}

func NewService(gw gateway.Gateway, carts CartReader, orders OrderStore, successURL, cancelURL string) *Service {
	return &Service{
		gw:         gw,
		carts:      carts,
		orders:     orders,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// gatewayFailurePrefix marks results whose failure came from the provider
// being unreachable or rejecting the call, so the handler layer can report
// 503 instead of a client error.
const gatewayFailurePrefix = "Payment gateway unavailable: "

// IsGatewayFailure reports whether a failed result came from the provider.
func IsGatewayFailure(result models.Result) bool {
	return !result.Status && strings.HasPrefix(result.Message, gatewayFailurePrefix)
}

// methodTypes maps the client-facing payment method kind to the gateway's
// payment method types. Wallet kinds ride on card rails.
var methodTypes = map[string][]string{
	"card":       {"card"},
	"google_pay": {"card"},
	"apple_pay":  {"card"},
	"link":       {"card", "link"},
	"multiple":   {"card", "link"},
}

var methodCatalog = []models.PaymentMethodInfo{
	{ID: "card", Name: "Credit / Debit Card", Description: "Visa, Mastercard, American Express", Icon: "credit-card", Enabled: true, Popular: true},
	{ID: "google_pay", Name: "Google Pay", Description: "Pay with your Google account", Icon: "google", Enabled: true},
	{ID: "apple_pay", Name: "Apple Pay", Description: "Pay with your Apple device", Icon: "apple", Enabled: true},
	{ID: "link", Name: "Link", Description: "One-click checkout with saved details", Icon: "link", Enabled: true},
	{ID: "multiple", Name: "All Methods", Description: "Choose on the payment page", Icon: "wallet", Enabled: true},
}

// AvailablePaymentMethods lists the checkout flavors clients may request.
func (s *Service) AvailablePaymentMethods() models.Result {
	return models.Ok("Payment methods retrieved successfully", methodCatalog)
}

// CreateCartCheckoutSession creates a hosted checkout session for the
// user's entire cart. The cart content travels in the session metadata so
// webhook delivery can rebuild the order without trusting the client.
func (s *Service) CreateCartCheckoutSession(ctx context.Context, userID string, req models.CartPaymentRequest, methodKind string) models.Result {
	_, items, summary, failed := s.loadCart(ctx, userID)
	if failed != nil {
		return *failed
	}

	currency := req.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}

	envelope := s.buildEnvelope(userID, items, summary, req, currency)
	metadata, err := CompressMetadata(envelope, gateway.MaxMetadataValueLength)
	if err != nil {
		return models.Fail("Failed to encode checkout metadata: " + err.Error())
	}
	metadata["type"] = models.MetadataTypeCartPayment

	session, err := s.gw.CreateCheckoutSession(ctx, gateway.CheckoutSessionParams{
		LineItems:          buildLineItems(items, currency),
		PaymentMethodTypes: checkoutMethodTypes(methodKind),
		SuccessURL:         s.successURL,
		CancelURL:          s.cancelURL,
		Metadata:           metadata,
	})
	if err != nil {
		return models.Fail(gatewayFailurePrefix + "failed to create checkout session: " + err.Error())
	}

	return models.Ok("Checkout session created successfully", map[string]interface{}{
		"sessionId": session.ID,
		"url":       session.URL,
		"amount":    summary.Subtotal,
		"currency":  currency,
	})
}

// CreateDirectPayment confirms a payment intent for the cart synchronously.
// When the gateway reports immediate success the order is created inline;
// otherwise the client secret goes back to the client to finish the flow,
// and the webhook completes the order.
func (s *Service) CreateDirectPayment(ctx context.Context, userID string, req models.CartPaymentRequest) models.Result {
	if req.PaymentMethodID == "" {
		return models.Fail("Payment method is required")
	}

	_, items, summary, failed := s.loadCart(ctx, userID)
	if failed != nil {
		return *failed
	}

	currency := req.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}

	envelope := s.buildEnvelope(userID, items, summary, req, currency)
	metadata, err := CompressMetadata(envelope, gateway.MaxMetadataValueLength)
	if err != nil {
		return models.Fail("Failed to encode checkout metadata: " + err.Error())
	}
	metadata["type"] = models.MetadataTypeDirectPayment

	intent, err := s.gw.CreatePaymentIntent(ctx, gateway.PaymentIntentParams{
		Amount:        toCents(summary.Subtotal),
		Currency:      currency,
		PaymentMethod: req.PaymentMethodID,
		Confirm:       true,
		Metadata:      metadata,
		Shipping: &gateway.ShippingDetails{
			Name:       req.ShippingAddress.Email,
			Line1:      req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			State:      req.ShippingAddress.State,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
	})
	if err != nil {
		return models.Fail(gatewayFailurePrefix + "failed to create payment: " + err.Error())
	}

	if intent.Status == gateway.PaymentIntentStatusSucceeded {
		return s.completeCartPayment(ctx, envelope, intent.ID)
	}
	return models.Ok("Payment requires further action", map[string]interface{}{
		"paymentIntentId": intent.ID,
		"clientSecret":    intent.ClientSecret,
		"status":          intent.Status,
	})
}

// ProcessWebhook verifies a raw webhook delivery and dispatches it.
func (s *Service) ProcessWebhook(ctx context.Context, payload []byte, signature string) models.Result {
	event, err := s.gw.VerifyWebhook(payload, signature)
	if err != nil {
		return models.Fail("Webhook signature verification failed: " + err.Error())
	}
	return s.HandleEvent(ctx, event)
}

// HandleEvent reacts to a verified gateway event. Both the checkout-session
// and payment-intent success events funnel into the same completion path;
// unrecognized event types, and payments not tagged as originating from
// this checkout, are acknowledged and ignored. Only tagged events get the
// hard metadata failure, so the gateway retries those and nothing else.
func (s *Service) HandleEvent(ctx context.Context, event *gateway.Event) models.Result {
	switch event.Type {
	case gateway.EventCheckoutCompleted, gateway.EventPaymentSucceeded:
		if !isCheckoutTagged(event.Metadata) {
			return models.Ok("Ignored: payment did not originate from checkout", nil)
		}
		var envelope models.CheckoutMetadata
		if err := DecompressMetadata(event.Metadata, &envelope); err != nil {
			return models.Fail("Invalid checkout metadata: " + err.Error())
		}
		if event.PaymentIntentID == "" {
			return models.Fail("Event carries no payment intent reference")
		}
		return s.completeCartPayment(ctx, envelope, event.PaymentIntentID)

	case gateway.EventPaymentFailed, gateway.EventPaymentCanceled:
		return s.failPayment(ctx, event.PaymentIntentID)

	default:
		return models.Ok("Ignored event type "+event.Type, nil)
	}
}

// ConfirmPayment reports the gateway's current view of a payment intent.
func (s *Service) ConfirmPayment(ctx context.Context, paymentIntentID string) models.Result {
	intent, err := s.gw.RetrievePaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return models.Fail(gatewayFailurePrefix + "failed to retrieve payment: " + err.Error())
	}

	data := map[string]interface{}{
		"paymentIntentId": intent.ID,
		"status":          intent.Status,
	}
	if existing, err := s.orders.OrderByPaymentIntent(ctx, intent.ID); err == nil {
		data["orderId"] = existing.ID.Hex()
		data["orderNumber"] = existing.OrderNumber
	}

	if intent.Status == gateway.PaymentIntentStatusSucceeded {
		return models.Ok("Payment confirmed", data)
	}
	return models.Ok("Payment not completed", data)
}

// Refund refunds a payment intent, fully when no amount is given, and
// marks the associated order refunded when one exists.
func (s *Service) Refund(ctx context.Context, req models.RefundRequest) models.Result {
	refund, err := s.gw.CreateRefund(ctx, gateway.RefundParams{
		PaymentIntentID: req.PaymentIntentID,
		Amount:          toCents(req.Amount),
	})
	if err != nil {
		return models.Fail(gatewayFailurePrefix + "failed to create refund: " + err.Error())
	}

	if existing, err := s.orders.OrderByPaymentIntent(ctx, req.PaymentIntentID); err == nil {
		if _, err := s.orders.UpdatePaymentStatus(ctx, existing.ID, models.PaymentStatusRefunded, req.PaymentIntentID); err != nil {
			log.Printf("refund recorded at gateway but order %s not updated: %v", existing.ID.Hex(), err)
		}
	}

	return models.Ok("Refund created successfully", map[string]interface{}{
		"refundId":        refund.ID,
		"paymentIntentId": req.PaymentIntentID,
	})
}

// completeCartPayment turns a paid envelope into a confirmed order. The
// payment intent id is the idempotency key: a replayed delivery finds the
// existing order and succeeds without side effects. Cart clearing is best
// effort; the paid order is already durable.
func (s *Service) completeCartPayment(ctx context.Context, envelope models.CheckoutMetadata, paymentIntentID string) models.Result {
	existing, err := s.orders.OrderByPaymentIntent(ctx, paymentIntentID)
	switch {
	case err == nil:
		return models.Ok("Payment already processed", map[string]interface{}{
			"orderId":         existing.ID.Hex(),
			"orderNumber":     existing.OrderNumber,
			"paymentIntentId": paymentIntentID,
		})
	case !errors.Is(err, order.ErrNotFound):
		return models.Fail("Failed to check for existing order: " + err.Error())
	}

	req, err := orderRequestFromEnvelope(envelope)
	if err != nil {
		return models.Fail("Invalid checkout metadata: " + err.Error())
	}

	created, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		return models.Fail("Payment succeeded but order creation failed: " + err.Error())
	}
	if _, err := s.orders.UpdatePaymentStatus(ctx, created.ID, models.PaymentStatusPaid, paymentIntentID); err != nil {
		return models.Fail("Payment succeeded but order creation failed: " + err.Error())
	}

	if uid, err := primitive.ObjectIDFromHex(envelope.CustomerID); err == nil {
		if _, err := s.carts.Clear(ctx, uid); err != nil {
			log.Printf("order %s created but cart not cleared for user %s: %v", created.ID.Hex(), envelope.CustomerID, err)
		}
	}

	return models.Ok("Payment processed and order created", map[string]interface{}{
		"orderId":         created.ID.Hex(),
		"orderNumber":     created.OrderNumber,
		"paymentIntentId": paymentIntentID,
	})
}

// failPayment marks the order behind a failed or cancelled intent. In the
// cart flow the order does not exist yet, so finding nothing is fine.
func (s *Service) failPayment(ctx context.Context, paymentIntentID string) models.Result {
	if paymentIntentID == "" {
		return models.Ok("Payment failed; no order to update", nil)
	}

	existing, err := s.orders.OrderByPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return models.Ok("Payment failed; no order to update", nil)
		}
		return models.Fail("Failed to look up order: " + err.Error())
	}

	if _, err := s.orders.UpdatePaymentStatus(ctx, existing.ID, models.PaymentStatusFailed, paymentIntentID); err != nil {
		return models.Fail("Failed to mark order payment failed: " + err.Error())
	}
	return models.Ok("Order payment marked failed", map[string]interface{}{
		"orderId": existing.ID.Hex(),
	})
}

func (s *Service) loadCart(ctx context.Context, userID string) (primitive.ObjectID, []models.CartItem, models.CartSummary, *models.Result) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		fail := models.Fail("Invalid user id")
		return primitive.NilObjectID, nil, models.CartSummary{}, &fail
	}

	items, summary, err := s.carts.ItemsForCheckout(ctx, uid)
	if err != nil {
		fail := models.Fail("Failed to load cart: " + err.Error())
		return primitive.NilObjectID, nil, models.CartSummary{}, &fail
	}
	if len(items) == 0 {
		fail := models.Fail("Cart is empty")
		return primitive.NilObjectID, nil, models.CartSummary{}, &fail
	}
	if summary.Subtotal <= 0 {
		fail := models.Fail("Invalid cart total")
		return primitive.NilObjectID, nil, models.CartSummary{}, &fail
	}
	return uid, items, summary, nil
}

func (s *Service) buildEnvelope(userID string, items []models.CartItem, summary models.CartSummary, req models.CartPaymentRequest, currency string) models.CheckoutMetadata {
	metaItems := make([]models.MetadataItem, 0, len(items))
	for _, item := range items {
		mi := models.MetadataItem{
			ProductID: item.ProductID.Hex(),
			Quantity:  item.Quantity,
			Price:     item.PriceAtAddition,
		}
		if item.Product != nil {
			mi.Name = item.Product.Name
			if len(item.Product.ImagesURLs) > 0 {
				mi.Image = item.Product.ImagesURLs[0]
			}
		}
		metaItems = append(metaItems, mi)
	}

	return models.CheckoutMetadata{
		CustomerID:      userID,
		Items:           metaItems,
		TotalAmount:     summary.Subtotal,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Currency:        currency,
		Notes:           req.Notes,
	}
}

func buildLineItems(items []models.CartItem, currency string) []gateway.LineItem {
	lines := make([]gateway.LineItem, 0, len(items))
	for _, item := range items {
		name := "Product " + item.ProductID.Hex()
		description := ""
		if item.Product != nil {
			name = item.Product.Name
			description = item.Product.Description
		}
		lines = append(lines, gateway.LineItem{
			Name:        name,
			Description: description,
			UnitAmount:  toCents(item.PriceAtAddition),
			Quantity:    int64(item.Quantity),
			Currency:    currency,
		})
	}
	return lines
}

func orderRequestFromEnvelope(envelope models.CheckoutMetadata) (models.CreateOrderRequest, error) {
	items := make([]models.OrderItem, 0, len(envelope.Items))
	for _, mi := range envelope.Items {
		pid, err := primitive.ObjectIDFromHex(mi.ProductID)
		if err != nil {
			return models.CreateOrderRequest{}, fmt.Errorf("invalid product id %q", mi.ProductID)
		}
		items = append(items, models.OrderItem{
			ProductID: pid,
			Quantity:  mi.Quantity,
			Price:     mi.Price,
			Name:      mi.Name,
			Image:     mi.Image,
		})
	}

	return models.CreateOrderRequest{
		CustomerID:      envelope.CustomerID,
		Items:           items,
		TotalAmount:     envelope.TotalAmount,
		ShippingAddress: envelope.ShippingAddress,
		BillingAddress:  envelope.BillingAddress,
		Notes:           envelope.Notes,
		Currency:        envelope.Currency,
	}, nil
}

// isCheckoutTagged reports whether webhook metadata carries the tag this
// service attaches at session or intent creation.
func isCheckoutTagged(metadata map[string]string) bool {
	tag := metadata["type"]
	return tag == models.MetadataTypeCartPayment || tag == models.MetadataTypeDirectPayment
}

func checkoutMethodTypes(kind string) []string {
	if types, ok := methodTypes[kind]; ok {
		return types
	}
	return []string{"card"}
}

// toCents converts a major-unit amount to the gateway's minor units.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
