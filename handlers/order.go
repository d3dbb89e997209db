package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parvesmosarof35/new-ecommerce-api/middleware"
	"github.com/parvesmosarof35/new-ecommerce-api/models"
	"github.com/parvesmosarof35/new-ecommerce-api/order"
	"github.com/parvesmosarof35/new-ecommerce-api/utils"
)

// CreateOrder creates an order directly, without going through checkout.
// The customer is always the authenticated user.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.CustomerID = userID
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Validation failed", utils.FormatValidationErrors(err)...)
		return
	}

	created, err := h.Orders.CreateOrder(r.Context(), req)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Failed to create order: "+err.Error())
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Order created successfully", created)
}

// GetOrders lists all orders. Admin only; status and paymentStatus are
// plain filter parameters handled by the query layer.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, meta, err := h.Orders.List(r.Context(), r.URL.Query(), nil)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	utils.WriteSuccessWithMeta(w, http.StatusOK, "Orders retrieved successfully", orders, meta)
}

// GetMyOrders lists the authenticated user's own orders.
func (h *Handler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedObjectID(w, r)
	if !ok {
		return
	}

	orders, meta, err := h.Orders.List(r.Context(), r.URL.Query(), bson.M{"customerId": userID})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	utils.WriteSuccessWithMeta(w, http.StatusOK, "Orders retrieved successfully", orders, meta)
}

// GetOrderByID fetches one order; customers may only see their own.
func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	found, ok := h.loadOwnedOrder(w, r)
	if !ok {
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Order retrieved successfully", found)
}

// UpdateOrderStatus advances the fulfilment status. Admin only.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled"`
		Notes  string `json:"notes,omitempty"`
	}
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.Orders.UpdateStatus(r.Context(), mux.Vars(r)["id"], req.Status, req.Notes)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Order status updated", updated)
}

// UpdateOrderPaymentStatus advances the payment status. Admin only; the
// pending→paid edge runs the stock reconciliation.
func (h *Handler) UpdateOrderPaymentStatus(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var req struct {
		PaymentStatus   string `json:"paymentStatus" validate:"required,oneof=pending paid failed refunded"`
		PaymentIntentID string `json:"paymentIntentId,omitempty"`
	}
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.Orders.UpdatePaymentStatus(r.Context(), oid, req.PaymentStatus, req.PaymentIntentID)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Order payment status updated", updated)
}

// CancelOrder cancels a pending order; customers may only cancel their own.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.loadOwnedOrder(w, r); !ok {
		return
	}

	var req struct {
		Reason string `json:"reason,omitempty"`
	}
	// body is optional
	json.NewDecoder(r.Body).Decode(&req)

	cancelled, err := h.Orders.Cancel(r.Context(), mux.Vars(r)["id"], req.Reason)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Order cancelled", cancelled)
}

// loadOwnedOrder fetches the order in the route and enforces ownership for
// non-admin callers.
func (h *Handler) loadOwnedOrder(w http.ResponseWriter, r *http.Request) (*models.Order, bool) {
	found, err := h.Orders.OrderByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeOrderError(w, err)
		return nil, false
	}

	role := middleware.Role(r)
	if role == models.RoleAdmin || role == models.RoleSuperAdmin {
		return found, true
	}

	userID, ok := middleware.UserID(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil || found.CustomerID != uid {
		utils.WriteError(w, http.StatusForbidden, "You do not have permission to access this order")
		return nil, false
	}
	return found, true
}

func writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, order.ErrIllegalTransition):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrCannotCancel):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrInsufficientStock):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		utils.WriteError(w, http.StatusInternalServerError, "Order operation failed")
	}
}
