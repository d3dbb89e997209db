package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one cart line. The (user_id, product_id) pair is unique per
// user; price_at_addition captures the unit price when the line was created
// and is re-synced to the current product price only when the quantity is
// incremented through add-to-cart, never on read.
type CartItem struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"user_id" bson:"user_id"`
	ProductID       primitive.ObjectID `json:"product_id" bson:"product_id"`
	Quantity        int                `json:"quantity" bson:"quantity"`
	PriceAtAddition float64            `json:"price_at_addition" bson:"price_at_addition"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`

	// Product is attached by the service layer for responses; it is not
	// stored on the cart document.
	Product *Product `json:"product,omitempty" bson:"-"`
}

// CartSummary aggregates a user's cart for responses and checkout.
type CartSummary struct {
	Subtotal   float64 `json:"subtotal"`
	TotalItems int     `json:"totalItems"`
	ItemCount  int     `json:"itemCount"`
}

// AddToCartRequest is the payload for adding a product to the cart.
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateCartQuantityRequest is the payload for setting a line's quantity.
// A quantity of zero or less removes the line, so no validation floor.
type UpdateCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}
