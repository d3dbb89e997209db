package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/parvesmosarof35/new-ecommerce-api/cache"
	"github.com/parvesmosarof35/new-ecommerce-api/cart"
	"github.com/parvesmosarof35/new-ecommerce-api/config"
	"github.com/parvesmosarof35/new-ecommerce-api/database"
	"github.com/parvesmosarof35/new-ecommerce-api/events"
	"github.com/parvesmosarof35/new-ecommerce-api/gateway"
	"github.com/parvesmosarof35/new-ecommerce-api/handlers"
	"github.com/parvesmosarof35/new-ecommerce-api/order"
	"github.com/parvesmosarof35/new-ecommerce-api/payment"
	"github.com/parvesmosarof35/new-ecommerce-api/router"
)

func main() {
	cfg := config.LoadConfig()

	client, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer client.Disconnect(context.Background())
	log.Println("Connected to MongoDB")

	db := client.Database(cfg.Database)
	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatal("Failed to create indexes:", err)
	}

	cacheClient, err := cache.New(cfg)
	if err != nil {
		// product endpoints degrade to uncached reads
		log.Println("Redis unavailable, running without cache:", err)
		cacheClient = nil
	} else {
		defer cacheClient.Close()
		log.Println("Connected to Redis")
	}

	var publisher order.EventPublisher
	if cfg.RabbitMQURL != "" {
		p, err := events.NewPublisher(cfg.RabbitMQURL, cfg.OrderExchange)
		if err != nil {
			log.Println("RabbitMQ unavailable, order events disabled:", err)
		} else {
			defer p.Close()
			publisher = p
			log.Println("Connected to RabbitMQ")
		}
	}

	carts := cart.NewService(db)
	orders := order.NewService(db, publisher)
	payments := payment.NewService(
		gateway.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret),
		carts,
		orders,
		cfg.CheckoutSuccessURL,
		cfg.CheckoutCancelURL,
	)

	h := handlers.New(client, cfg, cacheClient, carts, orders, payments)

	server := &http.Server{
		Addr:         cfg.Port,
		Handler:      router.New(h, cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Println("Server listening on", cfg.Port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
