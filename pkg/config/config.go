package config

import (
	"os"
	"strconv"
)

// Config carries every knob the api and worker binaries read from the
// environment. Shipping fallback prices and the free-shipping threshold are
// configuration, not constants, so operations can tune them without a deploy.
type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort int

	PostgresDSN string

	OrdersTable  string
	CartTable    string
	OrdersQueue  string
	MetricsNS    string
	RateQuoteURL string

	FreeShippingThreshold float64
	WhatsAppNumber        string

	FallbackSlowPrice    float64
	FallbackSlowDays     int
	FallbackExpressPrice float64
	FallbackExpressDays  int
}

func Load() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),

		PostgresDSN: getEnv("POSTGRES_DSN", "postgres://localhost:5432/storefront?sslmode=disable"),

		OrdersTable:  getEnv("ORDERS_TABLE", "orders"),
		CartTable:    getEnv("CART_TABLE", "carts"),
		OrdersQueue:  getEnv("ORDERS_QUEUE_URL", ""),
		MetricsNS:    getEnv("METRICS_NAMESPACE", "Storefront"),
		RateQuoteURL: getEnv("RATE_QUOTE_URL", ""),

		FreeShippingThreshold: getEnvFloat("FREE_SHIPPING_THRESHOLD", 299.00),
		WhatsAppNumber:        getEnv("WHATSAPP_NUMBER", "5562999999999"),

		FallbackSlowPrice:    getEnvFloat("SHIPPING_FALLBACK_SLOW_PRICE", 18.50),
		FallbackSlowDays:     getEnvInt("SHIPPING_FALLBACK_SLOW_DAYS", 7),
		FallbackExpressPrice: getEnvFloat("SHIPPING_FALLBACK_EXPRESS_PRICE", 32.90),
		FallbackExpressDays:  getEnvInt("SHIPPING_FALLBACK_EXPRESS_DAYS", 3),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
