package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/madarame/studio-api/internal/config"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v76"
)

// stubGateway records calls instead of talking to Stripe.
type stubGateway struct {
	publicKey string
	intent    *stripe.PaymentIntent
	createErr error
	modifyErr error

	createdAmounts []int64
	modifiedID     string
	modifiedMeta   map[string]string
}

func (s *stubGateway) CreateIntent(amountMinor int64) (*stripe.PaymentIntent, error) {
	s.createdAmounts = append(s.createdAmounts, amountMinor)
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.intent, nil
}

func (s *stubGateway) ModifyIntent(intentID string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	s.modifiedID = intentID
	s.modifiedMeta = metadata
	if s.modifyErr != nil {
		return nil, s.modifyErr
	}
	return &stripe.PaymentIntent{ID: intentID}, nil
}

func (s *stubGateway) PublicKey() string { return s.publicKey }
func (s *stubGateway) Currency() string  { return "usd" }

func newTestApp(t *testing.T) (*Handlers, sqlmock.Sqlmock, *stubGateway) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gateway := &stubGateway{
		publicKey: "pk_test_123",
		intent:    &stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret_abc"},
	}

	h := &Handlers{
		DB:       db,
		Payments: gateway,
		Cfg:      config.Config{StripeCurrency: "usd"},
	}
	return h, mock, gateway
}

// testSession pre-populates the request session and identity before a
// handler runs.
type testSession struct {
	values map[string]interface{}
	userID *int64
}

func newTestRouter(h *Handlers, ts testSession) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("secret"))))
	router.Use(func(c *gin.Context) {
		if ts.userID != nil {
			c.Set("userID", *ts.userID)
		}
		if len(ts.values) > 0 {
			session := sessions.Default(c)
			for key, value := range ts.values {
				session.Set(key, value)
			}
		}
		c.Next()
	})

	router.GET("/products/", h.AllProducts)
	router.GET("/products/:id", h.ProductDetail)
	router.POST("/products/add", h.AddProduct)
	router.GET("/products/edit/:id", h.EditProductPage)
	router.POST("/products/edit/:id", h.EditProduct)

	router.GET("/basket/", h.ViewBasket)
	router.POST("/basket/add/:id", h.AddToBasket)
	router.POST("/basket/update/:id", h.UpdateBasket)
	router.POST("/basket/remove/:id", h.RemoveFromBasket)

	router.GET("/checkout/", h.CheckoutPage)
	router.POST("/checkout/", h.CheckoutSubmit)
	router.GET("/checkout/success/:order_number", h.CheckoutSuccess)
	router.GET("/checkout/check-order", h.CheckOrderPage)
	router.POST("/checkout/check-order", h.CheckOrder)
	router.POST("/checkout/cache-checkout-data", h.CacheCheckoutData)

	return router
}

func doGET(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func doForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	return w
}

func doJSON(router *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// productRows builds the column set returned by the catalog select.
func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "artist_id", "sku", "base_price", "rating", "image_url",
		"created_at", "updated_at", "name",
	})
}

// orderRows builds the column set returned by the order select.
func orderRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "order_number", "user_profile_id", "full_name", "email", "phone_number",
		"address_line_1", "address_line_2", "town_city", "county_state", "zip_code", "country",
		"stripe_pid", "original_basket", "created_at", "updated_at",
	})
}
