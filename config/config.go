package config

import (
	"os"
	"strconv"
)

// Config holds all runtime configuration, loaded once at startup.
type Config struct {
	Port     string
	Env      string
	MongoURI string
	Database string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	StripeSecretKey     string
	StripeWebhookSecret string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	RabbitMQURL   string
	OrderExchange string
}

func LoadConfig() *Config {
	return &Config{
		Port:     getEnv("PORT", ":8080"),
		Env:      getEnv("APP_ENV", "development"),
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/"),
		Database: getEnv("MONGO_DATABASE", "ecommerce"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_ACCESS_SECRET", "change-me"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		CheckoutSuccessURL:  getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success"),
		CheckoutCancelURL:   getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/checkout/cancel"),

		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		OrderExchange: getEnv("ORDER_EXCHANGE", "order_events"),
	}
}

// IsProduction reports whether the process runs in production mode.
// Error responses include stack details only outside production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
