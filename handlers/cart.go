package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parvesmosarof35/new-ecommerce-api/cart"
	"github.com/parvesmosarof35/new-ecommerce-api/middleware"
	"github.com/parvesmosarof35/new-ecommerce-api/models"
	"github.com/parvesmosarof35/new-ecommerce-api/utils"
)

// AddToCart adds a product to the authenticated user's cart.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedObjectID(w, r)
	if !ok {
		return
	}

	var req models.AddToCartRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.Carts.Add(r.Context(), userID, req)
	if err != nil {
		writeCartError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Item added to cart", item)
}

// GetCart returns the user's cart with pagination and a summary.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedObjectID(w, r)
	if !ok {
		return
	}

	items, meta, summary, err := h.Carts.Get(r.Context(), userID, r.URL.Query())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	utils.WriteSuccessWithMeta(w, http.StatusOK, "Cart retrieved successfully", map[string]interface{}{
		"items":   items,
		"summary": summary,
	}, meta)
}

// UpdateCartItem sets a line's quantity; zero removes the line.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedObjectID(w, r)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["productId"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req models.UpdateCartQuantityRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.Carts.UpdateQuantity(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		writeCartError(w, err)
		return
	}
	if req.Quantity <= 0 {
		utils.WriteSuccess(w, http.StatusOK, "Item removed from cart", item)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Cart item updated", item)
}

// RemoveCartItem deletes one product's line.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedObjectID(w, r)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["productId"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	item, err := h.Carts.Remove(r.Context(), userID, productID)
	if err != nil {
		writeCartError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Item removed from cart", item)
}

// ClearCart empties the user's cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedObjectID(w, r)
	if !ok {
		return
	}

	removed, err := h.Carts.Clear(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Cart cleared", map[string]interface{}{"removed": removed})
}

func (h *Handler) authedObjectID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	userID, ok := middleware.UserID(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid user identity")
		return primitive.NilObjectID, false
	}
	return oid, true
}

func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrProductNotFound):
		utils.WriteError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, cart.ErrInsufficientStock):
		utils.WriteError(w, http.StatusBadRequest, "Insufficient stock for the requested quantity")
	case errors.Is(err, cart.ErrItemNotFound):
		utils.WriteError(w, http.StatusNotFound, "Cart item not found")
	default:
		utils.WriteError(w, http.StatusInternalServerError, "Cart operation failed")
	}
}
