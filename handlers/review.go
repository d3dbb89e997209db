package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parvesmosarof35/new-ecommerce-api/builder"
	"github.com/parvesmosarof35/new-ecommerce-api/models"
	"github.com/parvesmosarof35/new-ecommerce-api/utils"
)

// CreateReview creates or replaces the user's review for a product. One
// review per user per product; posting again overwrites the previous one.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedObjectID(w, r)
	if !ok {
		return
	}

	var req models.CreateReviewRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	count, err := h.db().Collection("products").CountDocuments(r.Context(), bson.M{"_id": productID})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to verify product")
		return
	}
	if count == 0 {
		utils.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	now := time.Now()
	_, err = h.db().Collection("reviews").UpdateOne(r.Context(),
		bson.M{"product_id": productID, "user_id": userID},
		bson.M{
			"$set": bson.M{
				"rating":    req.Rating,
				"comment":   req.Comment,
				"updatedAt": now,
			},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to save review")
		return
	}

	// the product detail cache holds a stale rating now
	h.invalidateProductCache(r, req.ProductID)
	utils.WriteSuccess(w, http.StatusCreated, "Review saved successfully", nil)
}

// GetProductReviews lists reviews for one product through the query layer.
func (h *Handler) GetProductReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["productId"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	qb := builder.New(h.db().Collection("reviews"), r.URL.Query()).
		Where(bson.M{"product_id": productID}).
		Filter().
		Sort().
		Paginate().
		Fields()

	var reviews []models.Review
	if err := qb.Find(r.Context(), &reviews); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}
	meta, err := qb.CountTotal(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to count reviews")
		return
	}

	summary, _ := h.ratingSummary(r, productID)
	utils.WriteSuccessWithMeta(w, http.StatusOK, "Reviews retrieved successfully", map[string]interface{}{
		"reviews": reviews,
		"summary": summary,
	}, meta)
}

// DeleteReview removes the authenticated user's review for a product.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedObjectID(w, r)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["productId"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	result, err := h.db().Collection("reviews").DeleteOne(r.Context(),
		bson.M{"product_id": productID, "user_id": userID})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete review")
		return
	}
	if result.DeletedCount == 0 {
		utils.WriteError(w, http.StatusNotFound, "Review not found")
		return
	}

	h.invalidateProductCache(r, productID.Hex())
	utils.WriteSuccess(w, http.StatusOK, "Review deleted successfully", nil)
}
