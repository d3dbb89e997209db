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

// AddToWishlist saves a product for the authenticated user. Adding the same
// product twice is a no-op.
func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedObjectID(w, r)
	if !ok {
		return
	}

	var req models.AddToWishlistRequest
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

	_, err = h.db().Collection("wishlists").UpdateOne(r.Context(),
		bson.M{"user_id": userID, "product_id": productID},
		bson.M{"$setOnInsert": bson.M{"createdAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update wishlist")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "Product added to wishlist", nil)
}

// GetWishlist lists the user's saved products with attached product
// documents.
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedObjectID(w, r)
	if !ok {
		return
	}

	qb := builder.New(h.db().Collection("wishlists"), r.URL.Query()).
		Where(bson.M{"user_id": userID}).
		Filter().
		Sort().
		Paginate().
		Fields()

	var items []models.WishlistItem
	if err := qb.Find(r.Context(), &items); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch wishlist")
		return
	}
	meta, err := qb.CountTotal(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to count wishlist")
		return
	}

	if len(items) > 0 {
		ids := make([]primitive.ObjectID, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ProductID)
		}
		cursor, err := h.db().Collection("products").Find(r.Context(), bson.M{"_id": bson.M{"$in": ids}})
		if err == nil {
			var products []models.Product
			if err := cursor.All(r.Context(), &products); err == nil {
				byID := make(map[primitive.ObjectID]*models.Product, len(products))
				for i := range products {
					byID[products[i].ID] = &products[i]
				}
				for i := range items {
					items[i].Product = byID[items[i].ProductID]
				}
			}
		}
	}

	utils.WriteSuccessWithMeta(w, http.StatusOK, "Wishlist retrieved successfully", items, meta)
}

// RemoveFromWishlist deletes one saved product.
func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedObjectID(w, r)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["productId"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	result, err := h.db().Collection("wishlists").DeleteOne(r.Context(),
		bson.M{"user_id": userID, "product_id": productID})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update wishlist")
		return
	}
	if result.DeletedCount == 0 {
		utils.WriteError(w, http.StatusNotFound, "Product not in wishlist")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "Product removed from wishlist", nil)
}
