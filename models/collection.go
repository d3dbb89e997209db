package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection groups products for merchandising.
type Collection struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	ImageURL    string             `json:"image_url,omitempty" bson:"image_url,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// CreateCollectionRequest is the payload for collection creation.
type CreateCollectionRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
}
