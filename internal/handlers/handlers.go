package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/madarame/studio-api/internal/config"
	stripe "github.com/stripe/stripe-go/v76"
)

// PaymentGateway is the slice of the payment provider the checkout flow
// needs. Satisfied by payments.Gateway; stubbed in tests.
type PaymentGateway interface {
	CreateIntent(amountMinor int64) (*stripe.PaymentIntent, error)
	ModifyIntent(intentID string, metadata map[string]string) (*stripe.PaymentIntent, error)
	PublicKey() string
	Currency() string
}

// Handlers holds all dependencies for the HTTP handlers.
type Handlers struct {
	DB       *sql.DB
	Payments PaymentGateway
	Cfg      config.Config
}

// redirectWithError sends a 303 redirect carrying the user-visible message
// in the body, so API clients can show it without flash-message plumbing.
func redirectWithError(c *gin.Context, location, message string) {
	c.Header("Location", location)
	c.JSON(http.StatusSeeOther, gin.H{"error": message, "redirect": location})
}
