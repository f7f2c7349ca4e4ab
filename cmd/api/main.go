package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/madarame/studio-api/internal/config"
	"github.com/madarame/studio-api/internal/database"
	"github.com/madarame/studio-api/internal/handlers"
	"github.com/madarame/studio-api/internal/payments"
	"github.com/madarame/studio-api/internal/routes"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	cfg := config.Load()

	// 1. --- Database Connection ---
	db, err := database.OpenDB(cfg.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 2. --- Payment Gateway ---
	// A missing public key is tolerated (checkout warns the user); a missing
	// secret key only fails once the gateway is actually called.
	if cfg.StripeSecretKey == "" {
		log.Println("WARNING: STRIPE_SECRET_KEY is not set. Payment intent calls will fail.")
	}
	gateway := payments.New(cfg.StripeSecretKey, cfg.StripePublicKey, cfg.StripeCurrency)

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:       db,
		Payments: gateway,
		Cfg:      cfg,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	log.Printf("Starting madarame studio API server on %s...", cfg.Addr)
	if err := router.Run(cfg.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
