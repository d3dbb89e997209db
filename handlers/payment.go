package handlers

import (
	"io"
	"net/http"

	"github.com/parvesmosarof35/new-ecommerce-api/middleware"
	"github.com/parvesmosarof35/new-ecommerce-api/models"
	"github.com/parvesmosarof35/new-ecommerce-api/payment"
	"github.com/parvesmosarof35/new-ecommerce-api/utils"
)

// webhookBodyLimit caps webhook payloads well above anything the gateway
// sends.
const webhookBodyLimit = 1 << 20

// CheckoutSession returns the handler for one checkout flavor. Each flavor
// route (card, google pay, apple pay, multiple) binds its own kind.
func (h *Handler) CheckoutSession(methodKind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		var req models.CartPaymentRequest
		if !h.decodeAndValidate(w, r, &req) {
			return
		}

		writeResult(w, h.Payments.CreateCartCheckoutSession(r.Context(), userID, req, methodKind), http.StatusOK)
	}
}

// CreateDirectPayment confirms a payment intent for the cart synchronously.
func (h *Handler) CreateDirectPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.CartPaymentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	writeResult(w, h.Payments.CreateDirectPayment(r.Context(), userID, req), http.StatusOK)
}

// ConfirmPayment reports the current status of a payment intent.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req models.ConfirmPaymentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	writeResult(w, h.Payments.ConfirmPayment(r.Context(), req.PaymentIntentID), http.StatusOK)
}

// RefundPayment refunds a payment intent. Admin only.
func (h *Handler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	var req models.RefundRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	writeResult(w, h.Payments.Refund(r.Context(), req), http.StatusOK)
}

// GetPaymentMethods lists the supported checkout flavors. Public.
func (h *Handler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.Payments.AvailablePaymentMethods(), http.StatusOK)
}

// StripeWebhook receives gateway events. The raw body is read unmodified
// because signature verification hashes the exact bytes sent.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Failed to read webhook body")
		return
	}

	writeResult(w, h.Payments.ProcessWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")), http.StatusOK)
}

// writeResult maps a tagged service result onto the response envelope:
// success to the given code, provider outages to 503, everything else 400.
func writeResult(w http.ResponseWriter, result models.Result, successStatus int) {
	if result.Status {
		utils.WriteSuccess(w, successStatus, result.Message, result.Data)
		return
	}
	if payment.IsGatewayFailure(result) {
		utils.WriteError(w, http.StatusServiceUnavailable, result.Message)
		return
	}
	utils.WriteError(w, http.StatusBadRequest, result.Message)
}
