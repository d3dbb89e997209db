package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/parvesmosarof35/new-ecommerce-api/builder"
	"github.com/parvesmosarof35/new-ecommerce-api/models"
	"github.com/parvesmosarof35/new-ecommerce-api/utils"
)

// CreateCollection creates a merchandising collection. Admin only.
func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCollectionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	now := time.Now()
	collection := models.Collection{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := h.db().Collection("collections").InsertOne(r.Context(), collection); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create collection")
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Collection created successfully", collection)
}

// GetCollections lists collections through the query layer.
func (h *Handler) GetCollections(w http.ResponseWriter, r *http.Request) {
	qb := builder.New(h.db().Collection("collections"), r.URL.Query()).
		Search("name", "description", "_id").
		Filter().
		Sort().
		Paginate().
		Fields()

	var collections []models.Collection
	if err := qb.Find(r.Context(), &collections); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch collections")
		return
	}
	meta, err := qb.CountTotal(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to count collections")
		return
	}
	utils.WriteSuccessWithMeta(w, http.StatusOK, "Collections retrieved successfully", collections, meta)
}

// GetCollectionByID fetches one collection and its products.
func (h *Handler) GetCollectionByID(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid collection id")
		return
	}

	var collection models.Collection
	err = h.db().Collection("collections").FindOne(r.Context(), bson.M{"_id": oid}).Decode(&collection)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.WriteError(w, http.StatusNotFound, "Collection not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch collection")
		return
	}

	qb := builder.New(h.db().Collection("products"), r.URL.Query()).
		Where(bson.M{"collections": oid}).
		Sort().
		Paginate().
		Fields()

	var products []models.Product
	if err := qb.Find(r.Context(), &products); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch collection products")
		return
	}
	meta, err := qb.CountTotal(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to count collection products")
		return
	}

	utils.WriteSuccessWithMeta(w, http.StatusOK, "Collection retrieved successfully", map[string]interface{}{
		"collection": collection,
		"products":   products,
	}, meta)
}

// DeleteCollection removes a collection and detaches it from products.
// Admin only.
func (h *Handler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid collection id")
		return
	}

	result, err := h.db().Collection("collections").DeleteOne(r.Context(), bson.M{"_id": oid})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete collection")
		return
	}
	if result.DeletedCount == 0 {
		utils.WriteError(w, http.StatusNotFound, "Collection not found")
		return
	}

	// detach from products referencing it
	h.db().Collection("products").UpdateMany(r.Context(),
		bson.M{"collections": oid},
		bson.M{"$pull": bson.M{"collections": oid}},
	)

	h.invalidateProductCache(r, "")
	utils.WriteSuccess(w, http.StatusOK, "Collection deleted successfully", nil)
}
