package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/parvesmosarof35/new-ecommerce-api/builder"
	"github.com/parvesmosarof35/new-ecommerce-api/cache"
	"github.com/parvesmosarof35/new-ecommerce-api/models"
	"github.com/parvesmosarof35/new-ecommerce-api/utils"
)

const (
	productListTTL   = 5 * time.Minute
	productDetailTTL = 10 * time.Minute
)

type productListPage struct {
	Products []models.Product `json:"products"`
	Meta     models.Meta      `json:"meta"`
}

// CreateProduct inserts a catalog item. Seller or admin only.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	collections := make([]primitive.ObjectID, 0, len(req.Collections))
	for _, hex := range req.Collections {
		oid, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid collection id: "+hex)
			return
		}
		collections = append(collections, oid)
	}

	now := time.Now()
	product := models.Product{
		ID:            primitive.NewObjectID(),
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		SKU:           req.SKU,
		IsFeatured:    req.IsFeatured,
		ImagesURLs:    req.ImagesURLs,
		Categories:    req.Categories,
		SkinType:      req.SkinType,
		Ingredients:   req.Ingredients,
		Collections:   collections,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := h.db().Collection("products").InsertOne(r.Context(), product); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	h.invalidateProductCache(r, product.ID.Hex())
	utils.WriteSuccess(w, http.StatusCreated, "Product created successfully", product)
}

// GetProducts lists the catalog through the query layer, with a
// read-through cache keyed by the raw query string.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	cacheKey := "products:" + r.URL.RawQuery
	if h.Cache != nil {
		var cached productListPage
		// a miss or a cache error both fall through to the database
		if err := h.Cache.Get(r.Context(), cacheKey, &cached); err == nil {
			w.Header().Set("X-Cache", "HIT")
			utils.WriteSuccessWithMeta(w, http.StatusOK, "Products retrieved successfully", cached.Products, cached.Meta)
			return
		}
	}
	w.Header().Set("X-Cache", "MISS")

	qb := builder.New(h.db().Collection("products"), r.URL.Query()).
		Search("name", "description", "sku", "_id").
		Filter().
		Sort().
		Paginate().
		Fields()

	var products []models.Product
	if err := qb.Find(r.Context(), &products); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	meta, err := qb.CountTotal(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to count products")
		return
	}

	if h.Cache != nil {
		h.Cache.Set(r.Context(), cacheKey, productListPage{Products: products, Meta: meta}, productListTTL)
	}
	utils.WriteSuccessWithMeta(w, http.StatusOK, "Products retrieved successfully", products, meta)
}

// GetProductByID fetches one product with its aggregate rating, cached.
func (h *Handler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	cacheKey := fmt.Sprintf(cache.ProductDetailPattern, id)
	if h.Cache != nil {
		var cached models.Product
		if err := h.Cache.Get(r.Context(), cacheKey, &cached); err == nil {
			w.Header().Set("X-Cache", "HIT")
			utils.WriteSuccess(w, http.StatusOK, "Product retrieved successfully", cached)
			return
		}
	}
	w.Header().Set("X-Cache", "MISS")

	var product models.Product
	err = h.db().Collection("products").FindOne(r.Context(), bson.M{"_id": oid}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.WriteError(w, http.StatusNotFound, "Product not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}

	if summary, err := h.ratingSummary(r, oid); err == nil {
		product.AverageRating = summary.AverageRating
		product.TotalReviews = summary.TotalReviews
	}

	if h.Cache != nil {
		h.Cache.Set(r.Context(), cacheKey, product, productDetailTTL)
	}
	utils.WriteSuccess(w, http.StatusOK, "Product retrieved successfully", product)
}

// UpdateProduct applies partial updates. Seller or admin only.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req models.UpdateProductRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Price > 0 {
		update["price"] = req.Price
	}
	if req.StockQuantity != nil {
		update["stock_quantity"] = *req.StockQuantity
	}
	if req.IsFeatured != nil {
		update["isFeatured"] = *req.IsFeatured
	}
	if len(req.ImagesURLs) > 0 {
		update["images_urls"] = req.ImagesURLs
	}
	if len(req.Categories) > 0 {
		update["categories"] = req.Categories
	}
	if req.SkinType != "" {
		update["skintype"] = req.SkinType
	}
	if len(req.Ingredients) > 0 {
		update["ingredients"] = req.Ingredients
	}

	result, err := h.db().Collection("products").UpdateOne(r.Context(),
		bson.M{"_id": oid}, bson.M{"$set": update})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	if result.MatchedCount == 0 {
		utils.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	h.invalidateProductCache(r, id)

	var product models.Product
	if err := h.db().Collection("products").FindOne(r.Context(), bson.M{"_id": oid}).Decode(&product); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch updated product")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Product updated successfully", product)
}

// DeleteProduct removes a catalog item. Admin only.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	result, err := h.db().Collection("products").DeleteOne(r.Context(), bson.M{"_id": oid})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	if result.DeletedCount == 0 {
		utils.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	h.invalidateProductCache(r, id)
	utils.WriteSuccess(w, http.StatusOK, "Product deleted successfully", nil)
}

func (h *Handler) ratingSummary(r *http.Request, productID primitive.ObjectID) (models.RatingSummary, error) {
	cursor, err := h.db().Collection("reviews").Aggregate(r.Context(), mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product_id": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"averageRating": bson.M{"$avg": "$rating"},
			"totalReviews":  bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return models.RatingSummary{}, err
	}
	defer cursor.Close(r.Context())

	var results []models.RatingSummary
	if err := cursor.All(r.Context(), &results); err != nil {
		return models.RatingSummary{}, err
	}
	if len(results) == 0 {
		return models.RatingSummary{}, nil
	}
	return results[0], nil
}

// invalidateProductCache drops every cached listing page and the detail
// entry for one product after a write.
func (h *Handler) invalidateProductCache(r *http.Request, productID string) {
	if h.Cache == nil {
		return
	}
	h.Cache.DeleteByPattern(r.Context(), cache.ProductListPattern)
	h.Cache.Delete(r.Context(), fmt.Sprintf(cache.ProductDetailPattern, productID))
}
