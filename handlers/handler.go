// Package handlers implements the HTTP layer. Handlers parse and validate
// requests, call into the services or query MongoDB through the query
// builder, and write the response envelope.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/parvesmosarof35/new-ecommerce-api/cache"
	"github.com/parvesmosarof35/new-ecommerce-api/cart"
	"github.com/parvesmosarof35/new-ecommerce-api/config"
	"github.com/parvesmosarof35/new-ecommerce-api/order"
	"github.com/parvesmosarof35/new-ecommerce-api/payment"
	"github.com/parvesmosarof35/new-ecommerce-api/utils"
)

// Handler carries the shared dependencies for all HTTP handlers.
type Handler struct {
	DB       *mongo.Client
	Database string
	Cache    *cache.Cache
	Validate *validator.Validate

	Carts    *cart.Service
	Orders   *order.Service
	Payments *payment.Service

	Cfg *config.Config
}

func New(db *mongo.Client, cfg *config.Config, cacheClient *cache.Cache, carts *cart.Service, orders *order.Service, payments *payment.Service) *Handler {
	return &Handler{
		DB:       db,
		Database: cfg.Database,
		Cache:    cacheClient,
		Validate: validator.New(),
		Carts:    carts,
		Orders:   orders,
		Payments: payments,
		Cfg:      cfg,
	}
}

func (h *Handler) db() *mongo.Database {
	return h.DB.Database(h.Database)
}

// decodeAndValidate decodes the JSON body into dest and runs validation,
// writing the error envelope itself on failure.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.Validate.Struct(dest); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Validation failed", utils.FormatValidationErrors(err)...)
		return false
	}
	return true
}
