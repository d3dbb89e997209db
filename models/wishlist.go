package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WishlistItem marks a product saved by a user.
type WishlistItem struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`

	Product *Product `json:"product,omitempty" bson:"-"`
}

// AddToWishlistRequest is the payload for wishlist additions.
type AddToWishlistRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}
