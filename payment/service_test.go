package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parvesmosarof35/new-ecommerce-api/gateway"
	"github.com/parvesmosarof35/new-ecommerce-api/models"
	"github.com/parvesmosarof35/new-ecommerce-api/order"
)

type fakeGateway struct {
	sessionParams *gateway.CheckoutSessionParams
	intentParams  *gateway.PaymentIntentParams
	intentStatus  string
	retrieved     *gateway.PaymentIntent
	event         *gateway.Event
	verifyErr     error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, p gateway.CheckoutSessionParams) (*gateway.CheckoutSession, error) {
	g.sessionParams = &p
	return &gateway.CheckoutSession{ID: "cs_test_1", URL: "https://pay.example.com/cs_test_1"}, nil
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, p gateway.PaymentIntentParams) (*gateway.PaymentIntent, error) {
	g.intentParams = &p
	status := g.intentStatus
	if status == "" {
		status = "requires_action"
	}
	return &gateway.PaymentIntent{ID: "pi_direct_1", Status: status, ClientSecret: "secret_1"}, nil
}

func (g *fakeGateway) RetrievePaymentIntent(_ context.Context, id string) (*gateway.PaymentIntent, error) {
	if g.retrieved == nil {
		return nil, errors.New("no such intent")
	}
	return g.retrieved, nil
}

func (g *fakeGateway) CreateRefund(_ context.Context, p gateway.RefundParams) (*gateway.Refund, error) {
	return &gateway.Refund{ID: "re_test_1"}, nil
}

func (g *fakeGateway) VerifyWebhook(payload []byte, signature string) (*gateway.Event, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.event, nil
}

type fakeCarts struct {
	items      []models.CartItem
	summary    models.CartSummary
	clearCalls int
	clearErr   error
}

func (c *fakeCarts) ItemsForCheckout(_ context.Context, _ primitive.ObjectID) ([]models.CartItem, models.CartSummary, error) {
	return c.items, c.summary, nil
}

func (c *fakeCarts) Clear(_ context.Context, _ primitive.ObjectID) (int64, error) {
	c.clearCalls++
	if c.clearErr != nil {
		return 0, c.clearErr
	}
	return int64(len(c.items)), nil
}

type fakeOrders struct {
	created   []models.CreateOrderRequest
	byIntent  map[string]*models.Order
	payCalls  []string
	createErr error
	payErr    error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byIntent: map[string]*models.Order{}}
}

func (o *fakeOrders) CreateOrder(_ context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	if o.createErr != nil {
		return nil, o.createErr
	}
	o.created = append(o.created, req)
	customerID, _ := primitive.ObjectIDFromHex(req.CustomerID)
	return &models.Order{
		ID:            primitive.NewObjectID(),
		OrderNumber:   "ORD-TEST0001",
		CustomerID:    customerID,
		Items:         req.Items,
		TotalAmount:   req.TotalAmount,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}, nil
}

func (o *fakeOrders) UpdatePaymentStatus(_ context.Context, orderID primitive.ObjectID, paymentStatus, paymentIntentID string) (*models.Order, error) {
	if o.payErr != nil {
		return nil, o.payErr
	}
	o.payCalls = append(o.payCalls, paymentStatus)
	updated := &models.Order{
		ID:              orderID,
		OrderNumber:     "ORD-TEST0001",
		PaymentStatus:   paymentStatus,
		PaymentIntentID: paymentIntentID,
		Status:          models.OrderStatusConfirmed,
	}
	if paymentIntentID != "" {
		o.byIntent[paymentIntentID] = updated
	}
	return updated, nil
}

func (o *fakeOrders) OrderByPaymentIntent(_ context.Context, paymentIntentID string) (*models.Order, error) {
	if found, ok := o.byIntent[paymentIntentID]; ok {
		return found, nil
	}
	return nil, order.ErrNotFound
}

func twoUnitCart() ([]models.CartItem, models.CartSummary, primitive.ObjectID) {
	userID := primitive.NewObjectID()
	items := []models.CartItem{{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		ProductID:       primitive.NewObjectID(),
		Quantity:        2,
		PriceAtAddition: 25.00,
		Product: &models.Product{
			Name:        "Vitamin C Serum",
			Description: "Brightening serum with 15% vitamin C",
			ImagesURLs:  []string{"https://cdn.example.com/serum.jpg"},
		},
	}}
	return items, cartSummaryFor(items), userID
}

func cartSummaryFor(items []models.CartItem) models.CartSummary {
	var subtotal float64
	var total int
	for _, item := range items {
		subtotal += item.PriceAtAddition * float64(item.Quantity)
		total += item.Quantity
	}
	return models.CartSummary{Subtotal: subtotal, TotalItems: total, ItemCount: len(items)}
}

func shippingAddress() models.Address {
	return models.Address{
		Street:     "1 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
	}
}

func TestCheckoutSessionBuildsCentLineItemsAndMetadata(t *testing.T) {
	items, summary, userID := twoUnitCart()
	gw := &fakeGateway{}
	svc := NewService(gw, &fakeCarts{items: items, summary: summary}, newFakeOrders(),
		"https://shop.example.com/success", "https://shop.example.com/cancel")

	result := svc.CreateCartCheckoutSession(context.Background(), userID.Hex(),
		models.CartPaymentRequest{ShippingAddress: shippingAddress()}, "card")

	require.True(t, result.Status, result.Message)
	require.NotNil(t, gw.sessionParams)
	require.Len(t, gw.sessionParams.LineItems, 1)

	line := gw.sessionParams.LineItems[0]
	assert.Equal(t, int64(2500), line.UnitAmount)
	assert.Equal(t, int64(2), line.Quantity)
	assert.Equal(t, "usd", line.Currency)
	assert.Equal(t, "Vitamin C Serum", line.Name)

	assert.Equal(t, models.MetadataTypeCartPayment, gw.sessionParams.Metadata["type"])

	var envelope models.CheckoutMetadata
	require.NoError(t, DecompressMetadata(gw.sessionParams.Metadata, &envelope))
	assert.Equal(t, userID.Hex(), envelope.CustomerID)
	assert.Equal(t, 50.00, envelope.TotalAmount)
	require.Len(t, envelope.Items, 1)
	assert.Equal(t, items[0].ProductID.Hex(), envelope.Items[0].ProductID)
}

func TestCheckoutSessionRejectsEmptyCart(t *testing.T) {
	svc := NewService(&fakeGateway{}, &fakeCarts{}, newFakeOrders(), "", "")

	result := svc.CreateCartCheckoutSession(context.Background(), primitive.NewObjectID().Hex(),
		models.CartPaymentRequest{ShippingAddress: shippingAddress()}, "card")

	assert.False(t, result.Status)
	assert.Equal(t, "Cart is empty", result.Message)
}

func TestCheckoutSessionRejectsZeroTotal(t *testing.T) {
	items := []models.CartItem{{
		ProductID: primitive.NewObjectID(),
		Quantity:  1,
	}}
	svc := NewService(&fakeGateway{}, &fakeCarts{items: items, summary: cartSummaryFor(items)}, newFakeOrders(), "", "")

	result := svc.CreateCartCheckoutSession(context.Background(), primitive.NewObjectID().Hex(),
		models.CartPaymentRequest{ShippingAddress: shippingAddress()}, "card")

	assert.False(t, result.Status)
	assert.Equal(t, "Invalid cart total", result.Message)
}

func checkoutCompletedEvent(t *testing.T, userID primitive.ObjectID, items []models.CartItem, intentID string) *gateway.Event {
	t.Helper()

	metaItems := make([]models.MetadataItem, 0, len(items))
	for _, item := range items {
		metaItems = append(metaItems, models.MetadataItem{
			ProductID: item.ProductID.Hex(),
			Quantity:  item.Quantity,
			Price:     item.PriceAtAddition,
		})
	}
	envelope := models.CheckoutMetadata{
		CustomerID:      userID.Hex(),
		Items:           metaItems,
		TotalAmount:     cartSummaryFor(items).Subtotal,
		ShippingAddress: shippingAddress(),
		Currency:        "usd",
	}
	metadata, err := CompressMetadata(envelope, gateway.MaxMetadataValueLength)
	require.NoError(t, err)
	metadata["type"] = models.MetadataTypeCartPayment

	return &gateway.Event{
		Type:            gateway.EventCheckoutCompleted,
		SessionID:       "cs_test_1",
		PaymentIntentID: intentID,
		Metadata:        metadata,
	}
}

func TestWebhookCompletionCreatesPaidOrderAndClearsCart(t *testing.T) {
	items, summary, userID := twoUnitCart()
	carts := &fakeCarts{items: items, summary: summary}
	orders := newFakeOrders()
	svc := NewService(&fakeGateway{}, carts, orders, "", "")

	event := checkoutCompletedEvent(t, userID, items, "pi_123")
	result := svc.HandleEvent(context.Background(), event)

	require.True(t, result.Status, result.Message)
	require.Len(t, orders.created, 1)
	assert.Equal(t, userID.Hex(), orders.created[0].CustomerID)
	assert.Equal(t, 50.00, orders.created[0].TotalAmount)
	require.Len(t, orders.created[0].Items, 1)
	assert.Equal(t, 2, orders.created[0].Items[0].Quantity)

	assert.Equal(t, []string{models.PaymentStatusPaid}, orders.payCalls)
	assert.Equal(t, 1, carts.clearCalls)
}

func TestWebhookCompletionIsIdempotent(t *testing.T) {
	items, summary, userID := twoUnitCart()
	carts := &fakeCarts{items: items, summary: summary}
	orders := newFakeOrders()
	svc := NewService(&fakeGateway{}, carts, orders, "", "")

	event := checkoutCompletedEvent(t, userID, items, "pi_123")
	first := svc.HandleEvent(context.Background(), event)
	second := svc.HandleEvent(context.Background(), event)

	require.True(t, first.Status)
	require.True(t, second.Status)
	assert.Equal(t, "Payment already processed", second.Message)
	assert.Len(t, orders.created, 1)
	assert.Equal(t, 1, carts.clearCalls)
}

func TestWebhookOrderCreationFailureIsReported(t *testing.T) {
	items, summary, userID := twoUnitCart()
	orders := newFakeOrders()
	orders.createErr = errors.New("mongo unavailable")
	svc := NewService(&fakeGateway{}, &fakeCarts{items: items, summary: summary}, orders, "", "")

	result := svc.HandleEvent(context.Background(), checkoutCompletedEvent(t, userID, items, "pi_123"))

	assert.False(t, result.Status)
	assert.Contains(t, result.Message, "Payment succeeded but order creation failed")
}

func TestWebhookCartClearFailureStillSucceeds(t *testing.T) {
	items, summary, userID := twoUnitCart()
	carts := &fakeCarts{items: items, summary: summary, clearErr: errors.New("redis down")}
	orders := newFakeOrders()
	svc := NewService(&fakeGateway{}, carts, orders, "", "")

	result := svc.HandleEvent(context.Background(), checkoutCompletedEvent(t, userID, items, "pi_123"))

	assert.True(t, result.Status, result.Message)
	assert.Len(t, orders.created, 1)
}

func TestWebhookMissingChunkFails(t *testing.T) {
	items, summary, userID := twoUnitCart()
	// pad the cart so the envelope has to chunk
	for i := 0; i < 30; i++ {
		items = append(items, models.CartItem{
			ProductID:       primitive.NewObjectID(),
			Quantity:        1,
			PriceAtAddition: 10,
		})
	}
	summary = cartSummaryFor(items)
	svc := NewService(&fakeGateway{}, &fakeCarts{items: items, summary: summary}, newFakeOrders(), "", "")

	event := checkoutCompletedEvent(t, userID, items, "pi_123")
	require.Contains(t, event.Metadata, "cartData_chunks")
	delete(event.Metadata, "cartData_00")

	result := svc.HandleEvent(context.Background(), event)
	assert.False(t, result.Status)
	assert.Contains(t, result.Message, "Invalid checkout metadata")
}

func TestWebhookPaymentFailedMarksExistingOrder(t *testing.T) {
	orders := newFakeOrders()
	orders.byIntent["pi_123"] = &models.Order{
		ID:            primitive.NewObjectID(),
		PaymentStatus: models.PaymentStatusPending,
	}
	svc := NewService(&fakeGateway{}, &fakeCarts{}, orders, "", "")

	result := svc.HandleEvent(context.Background(), &gateway.Event{
		Type:            gateway.EventPaymentFailed,
		PaymentIntentID: "pi_123",
	})

	require.True(t, result.Status, result.Message)
	assert.Equal(t, []string{models.PaymentStatusFailed}, orders.payCalls)
}

func TestWebhookPaymentFailedWithoutOrderIsAcknowledged(t *testing.T) {
	svc := NewService(&fakeGateway{}, &fakeCarts{}, newFakeOrders(), "", "")

	result := svc.HandleEvent(context.Background(), &gateway.Event{
		Type:            gateway.EventPaymentFailed,
		PaymentIntentID: "pi_unknown",
	})

	assert.True(t, result.Status)
}

func TestWebhookIgnoresPaymentsFromOutsideCheckout(t *testing.T) {
	orders := newFakeOrders()
	carts := &fakeCarts{}
	svc := NewService(&fakeGateway{}, carts, orders, "", "")

	// a success event for a payment this app never created: no type tag,
	// no cart data in the metadata
	for _, eventType := range []string{gateway.EventPaymentSucceeded, gateway.EventCheckoutCompleted} {
		result := svc.HandleEvent(context.Background(), &gateway.Event{
			Type:            eventType,
			PaymentIntentID: "pi_foreign",
			Metadata:        map[string]string{"invoice": "in_123"},
		})

		assert.True(t, result.Status, "%s: %s", eventType, result.Message)
	}
	assert.Empty(t, orders.created)
	assert.Equal(t, 0, carts.clearCalls)
}

func TestWebhookIgnoresUnknownEventType(t *testing.T) {
	svc := NewService(&fakeGateway{}, &fakeCarts{}, newFakeOrders(), "", "")

	result := svc.HandleEvent(context.Background(), &gateway.Event{Type: "customer.created"})

	assert.True(t, result.Status)
	assert.Contains(t, result.Message, "Ignored")
}

func TestDirectPaymentImmediateSuccessCreatesOrder(t *testing.T) {
	items, summary, userID := twoUnitCart()
	gw := &fakeGateway{intentStatus: gateway.PaymentIntentStatusSucceeded}
	carts := &fakeCarts{items: items, summary: summary}
	orders := newFakeOrders()
	svc := NewService(gw, carts, orders, "", "")

	result := svc.CreateDirectPayment(context.Background(), userID.Hex(), models.CartPaymentRequest{
		ShippingAddress: shippingAddress(),
		PaymentMethodID: "pm_card_visa",
	})

	require.True(t, result.Status, result.Message)
	require.NotNil(t, gw.intentParams)
	assert.Equal(t, int64(5000), gw.intentParams.Amount)
	assert.True(t, gw.intentParams.Confirm)
	assert.Equal(t, models.MetadataTypeDirectPayment, gw.intentParams.Metadata["type"])
	assert.Len(t, orders.created, 1)
	assert.Equal(t, 1, carts.clearCalls)
}

func TestDirectPaymentPendingReturnsClientSecret(t *testing.T) {
	items, summary, userID := twoUnitCart()
	svc := NewService(&fakeGateway{}, &fakeCarts{items: items, summary: summary}, newFakeOrders(), "", "")

	result := svc.CreateDirectPayment(context.Background(), userID.Hex(), models.CartPaymentRequest{
		ShippingAddress: shippingAddress(),
		PaymentMethodID: "pm_card_visa",
	})

	require.True(t, result.Status)
	data, ok := result.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "secret_1", data["clientSecret"])
}

func TestDirectPaymentRequiresPaymentMethod(t *testing.T) {
	svc := NewService(&fakeGateway{}, &fakeCarts{}, newFakeOrders(), "", "")

	result := svc.CreateDirectPayment(context.Background(), primitive.NewObjectID().Hex(), models.CartPaymentRequest{
		ShippingAddress: shippingAddress(),
	})

	assert.False(t, result.Status)
}

func TestCheckoutMethodTypeMapping(t *testing.T) {
	assert.Equal(t, []string{"card"}, checkoutMethodTypes("card"))
	assert.Equal(t, []string{"card"}, checkoutMethodTypes("google_pay"))
	assert.Equal(t, []string{"card"}, checkoutMethodTypes("apple_pay"))
	assert.Equal(t, []string{"card", "link"}, checkoutMethodTypes("multiple"))
	assert.Equal(t, []string{"card"}, checkoutMethodTypes("something-else"))
}
