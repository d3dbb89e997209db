// Package order owns the order lifecycle: creation, listing, status and
// payment-status transitions, cancellation, and the stock reconciliation
// that runs when an order becomes paid.
package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/parvesmosarof35/new-ecommerce-api/builder"
	"github.com/parvesmosarof35/new-ecommerce-api/models"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrCannotCancel      = errors.New("order can no longer be cancelled")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Event names published when the order lifecycle advances.
const (
	EventCreated   = "created"
	EventPaid      = "paid"
	EventCancelled = "cancelled"
)

// EventPublisher pushes lifecycle notifications to the message broker.
// A nil publisher disables publishing.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, orderID, event string) error
}

// Service provides order operations backed by MongoDB.
type Service struct {
	db     *mongo.Database
	events EventPublisher
}

func NewService(db *mongo.Database, events EventPublisher) *Service {
	return &Service{db: db, events: events}
}

func (s *Service) orders() *mongo.Collection   { return s.db.Collection("orders") }
func (s *Service) products() *mongo.Collection { return s.db.Collection("products") }

// CreateOrder inserts a new order in pending/pending state. Billing address
// defaults to the shipping address and the currency defaults to USD.
func (s *Service) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	customerID, err := primitive.ObjectIDFromHex(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}
	if len(req.Items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}
	currency := req.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}

	now := time.Now()
	order := models.Order{
		ID:              primitive.NewObjectID(),
		OrderNumber:     newOrderNumber(),
		CustomerID:      customerID,
		Items:           req.Items,
		TotalAmount:     req.TotalAmount,
		Currency:        currency,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := s.orders().InsertOne(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, order.ID.Hex(), EventCreated)
	return &order, nil
}

// OrderByID fetches one order.
func (s *Service) OrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, ErrNotFound
	}

	var order models.Order
	if err := s.orders().FindOne(ctx, bson.M{"_id": oid}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// OrderByPaymentIntent finds the order already reconciled against a payment
// intent. Webhook handling uses it to detect duplicate deliveries.
func (s *Service) OrderByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	var order models.Order
	err := s.orders().FindOne(ctx, bson.M{"paymentIntentId": paymentIntentID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// List returns orders through the generic query layer, conjoined with an
// explicit scope (ownership for customers, empty for admins).
func (s *Service) List(ctx context.Context, params url.Values, scope bson.M) ([]models.Order, models.Meta, error) {
	qb := builder.New(s.orders(), params).
		Where(scope).
		Search("orderNumber", "_id").
		Filter().
		Sort().
		Paginate().
		Fields()

	var orders []models.Order
	if err := qb.Find(ctx, &orders); err != nil {
		return nil, models.Meta{}, err
	}
	meta, err := qb.CountTotal(ctx)
	if err != nil {
		return nil, models.Meta{}, err
	}
	return orders, meta, nil
}

// UpdateStatus advances the fulfilment status along the legal transition
// graph.
func (s *Service) UpdateStatus(ctx context.Context, orderID, status, notes string) (*models.Order, error) {
	order, err := s.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransitionStatus(order.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, order.Status, status)
	}

	update := bson.M{"status": status, "updatedAt": time.Now()}
	if notes != "" {
		update["notes"] = notes
	}
	if _, err := s.orders().UpdateOne(ctx, bson.M{"_id": order.ID}, bson.M{"$set": update}); err != nil {
		return nil, err
	}

	order.Status = status
	if notes != "" {
		order.Notes = notes
	}
	return order, nil
}

// UpdatePaymentStatus advances the payment status. The pending→paid edge is
// the reconciliation point: stock is decremented exactly once there, the
// fulfilment status auto-confirms, and a paid event is published. A failed
// payment cancels the order. Marking an already-paid order paid again is a
// no-op so webhook retries stay harmless.
func (s *Service) UpdatePaymentStatus(ctx context.Context, orderID primitive.ObjectID, paymentStatus, paymentIntentID string) (*models.Order, error) {
	var order models.Order
	if err := s.orders().FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if order.PaymentStatus == paymentStatus {
		return &order, nil
	}
	if !models.CanTransitionPaymentStatus(order.PaymentStatus, paymentStatus) {
		return nil, fmt.Errorf("%w: payment %s -> %s", ErrIllegalTransition, order.PaymentStatus, paymentStatus)
	}

	becomesPaid := order.PaymentStatus != models.PaymentStatusPaid && paymentStatus == models.PaymentStatusPaid
	if becomesPaid {
		// Decrement before persisting the new status: if stock runs out the
		// order stays pending and the failure surfaces to the caller.
		if err := s.decrementStock(ctx, order.Items); err != nil {
			return nil, err
		}
	}

	update := bson.M{"paymentStatus": paymentStatus, "updatedAt": time.Now()}
	if paymentIntentID != "" {
		update["paymentIntentId"] = paymentIntentID
	}
	switch {
	case becomesPaid && order.Status == models.OrderStatusPending:
		update["status"] = models.OrderStatusConfirmed
	case paymentStatus == models.PaymentStatusFailed:
		update["status"] = models.OrderStatusCancelled
	}

	if _, err := s.orders().UpdateOne(ctx, bson.M{"_id": order.ID}, bson.M{"$set": update}); err != nil {
		return nil, err
	}

	order.PaymentStatus = paymentStatus
	if paymentIntentID != "" {
		order.PaymentIntentID = paymentIntentID
	}
	if v, ok := update["status"].(string); ok {
		order.Status = v
	}
	if becomesPaid {
		s.publish(ctx, order.ID.Hex(), EventPaid)
	}
	return &order, nil
}

// Cancel cancels a pending order. Anything past pending is already being
// fulfilled and must go through the status flow instead.
func (s *Service) Cancel(ctx context.Context, orderID, reason string) (*models.Order, error) {
	order, err := s.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !models.CanCancel(order.Status) {
		return nil, fmt.Errorf("%w: status is %s", ErrCannotCancel, order.Status)
	}

	update := bson.M{"status": models.OrderStatusCancelled, "updatedAt": time.Now()}
	if reason != "" {
		update["notes"] = reason
	}
	if _, err := s.orders().UpdateOne(ctx, bson.M{"_id": order.ID}, bson.M{"$set": update}); err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusCancelled
	if reason != "" {
		order.Notes = reason
	}
	s.publish(ctx, order.ID.Hex(), EventCancelled)
	return order, nil
}

// decrementStock applies each item's quantity with a guarded conditional
// update, so stock never goes negative under concurrent payments. Items are
// processed in sequence; a failure reports the offending product and leaves
// earlier decrements in place.
func (s *Service) decrementStock(ctx context.Context, items []models.OrderItem) error {
	for _, item := range items {
		result, err := s.products().UpdateOne(ctx,
			bson.M{
				"_id":            item.ProductID,
				"stock_quantity": bson.M{"$gte": item.Quantity},
			},
			bson.M{"$inc": bson.M{"stock_quantity": -item.Quantity}},
		)
		if err != nil {
			return err
		}
		if result.ModifiedCount != 1 {
			return fmt.Errorf("%w for product %s", ErrInsufficientStock, item.ProductID.Hex())
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, orderID, event string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, orderID, event); err != nil {
		log.Printf("order event publish failed (order=%s event=%s): %v", orderID, event, err)
	}
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
