package config

import "os"

// Config holds the process-wide settings for the storefront.
// It is built once in main and injected into the handlers, so nothing
// reads the environment after startup.
type Config struct {
	DSN  string // MySQL data source name
	Addr string // HTTP listen address

	// --- Stripe ---
	StripePublicKey string
	StripeSecretKey string
	StripeCurrency  string // fixed settlement currency, e.g. "usd"

	SessionSecret string // cookie session signing key
	AllowedOrigin string // CORS origin for the storefront frontend
}

// Load reads the configuration from environment variables.
// godotenv is expected to have populated the environment already (see main).
func Load() Config {
	return Config{
		DSN:             getEnv("DB_DSN", "root:root@tcp(127.0.0.1:3306)/madarame_studio?parseTime=true"),
		Addr:            getEnv("LISTEN_ADDR", ":8080"),
		StripePublicKey: os.Getenv("STRIPE_PUBLIC_KEY"),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		StripeCurrency:  getEnv("STRIPE_CURRENCY", "usd"),
		SessionSecret:   getEnv("SESSION_SECRET", "CHANGE_ME_IN_PRODUCTION"),
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
