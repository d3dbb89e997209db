package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalog item.
type Product struct {
	ID             primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name           string               `json:"name" bson:"name"`
	Description    string               `json:"description" bson:"description"`
	Price          float64              `json:"price" bson:"price"`
	StockQuantity  int                  `json:"stock_quantity" bson:"stock_quantity"`
	SKU            string               `json:"sku" bson:"sku"`
	IsFeatured     bool                 `json:"isFeatured" bson:"isFeatured"`
	ImagesURLs     []string             `json:"images_urls,omitempty" bson:"images_urls,omitempty"`
	Categories     []string             `json:"categories,omitempty" bson:"categories,omitempty"`
	SkinType       string               `json:"skintype,omitempty" bson:"skintype,omitempty"`
	Ingredients    []string             `json:"ingredients,omitempty" bson:"ingredients,omitempty"`
	Collections    []primitive.ObjectID `json:"collections,omitempty" bson:"collections,omitempty"`
	AverageRating  float64              `json:"averageRating,omitempty" bson:"-"`
	TotalReviews   int64                `json:"totalReviews,omitempty" bson:"-"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// CreateProductRequest is the payload for product creation.
type CreateProductRequest struct {
	Name          string   `json:"name" validate:"required,min=2,max=100"`
	Description   string   `json:"description" validate:"required,min=10,max=2000"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	StockQuantity int      `json:"stock_quantity" validate:"gte=0"`
	SKU           string   `json:"sku" validate:"required"`
	IsFeatured    bool     `json:"isFeatured"`
	ImagesURLs    []string `json:"images_urls,omitempty" validate:"omitempty,max=8"`
	Categories    []string `json:"categories,omitempty"`
	SkinType      string   `json:"skintype,omitempty" validate:"omitempty,oneof=Dry Oily Combination Sensitive Normal"`
	Ingredients   []string `json:"ingredients,omitempty"`
	Collections   []string `json:"collections,omitempty"`
}

// UpdateProductRequest is the payload for product updates; zero values are
// left untouched.
type UpdateProductRequest struct {
	Name          string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description   string   `json:"description,omitempty" validate:"omitempty,min=10,max=2000"`
	Price         float64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	StockQuantity *int     `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	IsFeatured    *bool    `json:"isFeatured,omitempty"`
	ImagesURLs    []string `json:"images_urls,omitempty" validate:"omitempty,max=8"`
	Categories    []string `json:"categories,omitempty"`
	SkinType      string   `json:"skintype,omitempty" validate:"omitempty,oneof=Dry Oily Combination Sensitive Normal"`
	Ingredients   []string `json:"ingredients,omitempty"`
}
