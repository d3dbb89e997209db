// Package router wires the HTTP surface: public catalog routes, the
// authenticated storefront, and the admin surface, all under /api/v1.
package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parvesmosarof35/new-ecommerce-api/config"
	"github.com/parvesmosarof35/new-ecommerce-api/handlers"
	"github.com/parvesmosarof35/new-ecommerce-api/middleware"
	"github.com/parvesmosarof35/new-ecommerce-api/models"
	"github.com/parvesmosarof35/new-ecommerce-api/utils"
)

func New(h *handlers.Handler, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Monitoring)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w, http.StatusOK, "ok", nil)
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// public
	api.HandleFunc("/auth/signup", h.SignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/products", h.GetProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.GetProductByID).Methods(http.MethodGet)
	api.HandleFunc("/products/{productId}/reviews", h.GetProductReviews).Methods(http.MethodGet)
	api.HandleFunc("/collections", h.GetCollections).Methods(http.MethodGet)
	api.HandleFunc("/collections/{id}", h.GetCollectionByID).Methods(http.MethodGet)
	api.HandleFunc("/payments/available-payment-methods", h.GetPaymentMethods).Methods(http.MethodGet)
	// the webhook authenticates by signature, not by session
	api.HandleFunc("/payments/webhook", h.StripeWebhook).Methods(http.MethodPost)

	// authenticated storefront
	auth := api.NewRoute().Subrouter()
	auth.Use(middleware.Auth(cfg.JWTSecret))
	auth.HandleFunc("/users/me", h.GetMe).Methods(http.MethodGet)
	auth.HandleFunc("/users/{id}", h.GetUserByID).Methods(http.MethodGet)
	auth.HandleFunc("/users/{id}", h.UpdateUser).Methods(http.MethodPut)

	auth.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	auth.HandleFunc("/cart", h.AddToCart).Methods(http.MethodPost)
	auth.HandleFunc("/cart/clear", h.ClearCart).Methods(http.MethodDelete)
	auth.HandleFunc("/cart/product/{productId}", h.UpdateCartItem).Methods(http.MethodPut)
	auth.HandleFunc("/cart/product/{productId}", h.RemoveCartItem).Methods(http.MethodDelete)

	auth.HandleFunc("/wishlist", h.GetWishlist).Methods(http.MethodGet)
	auth.HandleFunc("/wishlist", h.AddToWishlist).Methods(http.MethodPost)
	auth.HandleFunc("/wishlist/{productId}", h.RemoveFromWishlist).Methods(http.MethodDelete)

	auth.HandleFunc("/reviews", h.CreateReview).Methods(http.MethodPost)
	auth.HandleFunc("/reviews/{productId}", h.DeleteReview).Methods(http.MethodDelete)

	auth.HandleFunc("/orders/create", h.CreateOrder).Methods(http.MethodPost)
	auth.HandleFunc("/orders/my-orders", h.GetMyOrders).Methods(http.MethodGet)
	auth.HandleFunc("/orders/{id}", h.GetOrderByID).Methods(http.MethodGet)
	auth.HandleFunc("/orders/{id}/cancel", h.CancelOrder).Methods(http.MethodPatch)

	auth.HandleFunc("/payments/cart/create-checkout-session", h.CheckoutSession("card")).Methods(http.MethodPost)
	auth.HandleFunc("/payments/cart/create-checkout-session/google-pay", h.CheckoutSession("google_pay")).Methods(http.MethodPost)
	auth.HandleFunc("/payments/cart/create-checkout-session/apple-pay", h.CheckoutSession("apple_pay")).Methods(http.MethodPost)
	auth.HandleFunc("/payments/cart/create-checkout-session/multiple", h.CheckoutSession("multiple")).Methods(http.MethodPost)
	auth.HandleFunc("/payments/direct-payment", h.CreateDirectPayment).Methods(http.MethodPost)
	auth.HandleFunc("/payments/confirm-payment", h.ConfirmPayment).Methods(http.MethodPost)

	// seller surface
	seller := api.NewRoute().Subrouter()
	seller.Use(middleware.Auth(cfg.JWTSecret),
		middleware.RequireRole(models.RoleSeller, models.RoleAdmin, models.RoleSuperAdmin))
	seller.HandleFunc("/products", h.CreateProduct).Methods(http.MethodPost)
	seller.HandleFunc("/products/{id}", h.UpdateProduct).Methods(http.MethodPut)

	// admin surface
	admin := api.NewRoute().Subrouter()
	admin.Use(middleware.Auth(cfg.JWTSecret),
		middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
	admin.HandleFunc("/users", h.GetUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", h.DeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/products/{id}", h.DeleteProduct).Methods(http.MethodDelete)
	admin.HandleFunc("/collections", h.CreateCollection).Methods(http.MethodPost)
	admin.HandleFunc("/collections/{id}", h.DeleteCollection).Methods(http.MethodDelete)
	admin.HandleFunc("/orders", h.GetOrders).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}/status", h.UpdateOrderStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/orders/{id}/payment-status", h.UpdateOrderPaymentStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/payments/refund", h.RefundPayment).Methods(http.MethodPost)
	admin.HandleFunc("/dashboard/stats", h.GetDashboardStats).Methods(http.MethodGet)

	return r
}
