// Package payments wraps the Stripe payment-intent API used by checkout.
package payments

import (
	"errors"
	"strings"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// secretMarker separates the intent ID from the secret part of a Stripe
// client secret ("pi_123_secret_abc"). External contract, do not change.
const secretMarker = "_secret"

// Gateway is a thin call-through to the payment-intent API.
type Gateway struct {
	api       *client.API
	currency  string
	publicKey string
}

// New builds a Gateway against the live Stripe backend.
func New(secretKey, publicKey, currency string) *Gateway {
	return &Gateway{
		api:       client.New(secretKey, nil),
		currency:  currency,
		publicKey: publicKey,
	}
}

// NewWithBackends builds a Gateway against custom backends. Used by tests to
// point the client at a local stub server.
func NewWithBackends(secretKey, publicKey, currency string, backends *stripe.Backends) *Gateway {
	return &Gateway{
		api:       client.New(secretKey, backends),
		currency:  currency,
		publicKey: publicKey,
	}
}

// PublicKey returns the publishable key handed to the payment form.
// Empty when the key is not configured.
func (g *Gateway) PublicKey() string {
	return g.publicKey
}

// Currency returns the fixed settlement currency.
func (g *Gateway) Currency() string {
	return g.currency
}

// CreateIntent creates a payment intent for the given amount in the
// smallest currency unit.
func (g *Gateway) CreateIntent(amountMinor int64) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(g.currency),
	}
	return g.api.PaymentIntents.New(params)
}

// ModifyIntent attaches opaque metadata to an existing intent, used by the
// pre-submission callback to record the basket snapshot for reconciliation.
func (g *Gateway) ModifyIntent(intentID string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}
	return g.api.PaymentIntents.Update(intentID, params)
}

// IntentIDFromClientSecret extracts the payment-intent ID by truncating the
// client-supplied secret at its "_secret" suffix marker.
func IntentIDFromClientSecret(clientSecret string) (string, error) {
	id, _, found := strings.Cut(clientSecret, secretMarker)
	if !found || id == "" {
		return "", errors.New("malformed client secret")
	}
	return id, nil
}
