package gateway

import (
	"context"
	"encoding/json"
	"strings"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// Stripe implements Gateway against the Stripe API.
type Stripe struct {
	api           *client.API
	webhookSecret string
}

// NewStripe builds a Stripe gateway with its own API client.
func NewStripe(secretKey, webhookSecret string) *Stripe {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Stripe{api: api, webhookSecret: webhookSecret}
}

func (g *Stripe) CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(p.SuccessURL),
		CancelURL:          stripe.String(p.CancelURL),
		PaymentMethodTypes: stripe.StringSlice(p.PaymentMethodTypes),
	}
	params.Context = ctx

	for _, item := range p.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(item.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(item.Name),
					Description: stripe.String(item.Description),
				},
				UnitAmount: stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	for key, value := range p.Metadata {
		params.AddMetadata(key, value)
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (g *Stripe) CreatePaymentIntent(ctx context.Context, p PaymentIntentParams) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
	}
	params.Context = ctx

	if p.PaymentMethod != "" {
		params.PaymentMethod = stripe.String(p.PaymentMethod)
	}
	if p.Confirm {
		params.Confirm = stripe.Bool(true)
		params.ConfirmationMethod = stripe.String(string(stripe.PaymentIntentConfirmationMethodManual))
	}
	if p.Shipping != nil {
		params.Shipping = &stripe.ShippingDetailsParams{
			Name: stripe.String(p.Shipping.Name),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(p.Shipping.Line1),
				City:       stripe.String(p.Shipping.City),
				State:      stripe.String(p.Shipping.State),
				PostalCode: stripe.String(p.Shipping.PostalCode),
				Country:    stripe.String(p.Shipping.Country),
			},
		}
	}
	for key, value := range p.Metadata {
		params.AddMetadata(key, value)
	}

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return &PaymentIntent{
		ID:           intent.ID,
		Status:       string(intent.Status),
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (g *Stripe) RetrievePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, err
	}
	return &PaymentIntent{
		ID:           intent.ID,
		Status:       string(intent.Status),
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (g *Stripe) CreateRefund(ctx context.Context, p RefundParams) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(p.PaymentIntentID),
	}
	params.Context = ctx
	if p.Amount > 0 {
		params.Amount = stripe.Int64(p.Amount)
	}

	refund, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, err
	}
	return &Refund{ID: refund.ID}, nil
}

// VerifyWebhook checks the signature and flattens the event into the fields
// the checkout flow needs.
func (g *Stripe) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, err
	}

	var object struct {
		ID            string            `json:"id"`
		PaymentIntent string            `json:"payment_intent"`
		Metadata      map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(stripeEvent.Data.Raw, &object); err != nil {
		return nil, err
	}

	event := &Event{
		Type:     string(stripeEvent.Type),
		Metadata: object.Metadata,
	}
	if strings.HasPrefix(event.Type, "checkout.session.") {
		event.SessionID = object.ID
		event.PaymentIntentID = object.PaymentIntent
	} else {
		event.PaymentIntentID = object.ID
	}
	return event, nil
}
