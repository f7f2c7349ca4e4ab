package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/madarame/studio-api/internal/basket"
	"github.com/madarame/studio-api/internal/models"
	"github.com/madarame/studio-api/internal/payments"
	"github.com/shopspring/decimal"
)

//
// --- Checkout Handlers ---
//

const orderSelect = `
	SELECT id, order_number, user_profile_id, full_name, email, phone_number,
	       address_line_1, address_line_2, town_city, county_state, zip_code, country,
	       stripe_pid, original_basket, created_at, updated_at
	FROM orders
`

func scanOrder(row interface{ Scan(...any) error }) (models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserProfileID,
		&o.FullName,
		&o.Email,
		&o.PhoneNumber,
		&o.AddressLine1,
		&o.AddressLine2,
		&o.TownCity,
		&o.CountyState,
		&o.ZipCode,
		&o.Country,
		&o.StripePID,
		&o.OriginalBasket,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

// generateOrderNumber creates the human-facing order number: 32 uppercase
// hex characters, unique for all practical purposes.
func generateOrderNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
}

// CheckoutFormPrefill mirrors the shipping form fields, prefilled from the
// requester's stored profile when available.
type CheckoutFormPrefill struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2"`
	TownCity     string `json:"town_city"`
	CountyState  string `json:"county_state"`
	ZipCode      string `json:"zip_code"`
	Country      string `json:"country"`
}

// prefillFromProfile loads the requester's profile defaults into the form.
// Anonymous requesters and users without a profile get an empty form.
func (h *Handlers) prefillFromProfile(c *gin.Context) CheckoutFormPrefill {
	var form CheckoutFormPrefill

	userIDRaw, authenticated := c.Get("userID")
	if !authenticated {
		return form
	}

	var phone, addr1, addr2, town, county, zip, country *string
	err := h.DB.QueryRow(`
		SELECT u.full_name, u.email,
		       up.default_phone_number, up.default_address_line_1, up.default_address_line_2,
		       up.default_town_city, up.default_county_state, up.default_zip_code, up.default_country
		FROM users u
		LEFT JOIN user_profiles up ON up.user_id = u.id
		WHERE u.id = ?`, userIDRaw.(int64),
	).Scan(&form.FullName, &form.Email, &phone, &addr1, &addr2, &town, &county, &zip, &country)
	if err != nil {
		return CheckoutFormPrefill{}
	}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&form.PhoneNumber, phone)
	assign(&form.AddressLine1, addr1)
	assign(&form.AddressLine2, addr2)
	assign(&form.TownCity, town)
	assign(&form.CountyState, county)
	assign(&form.ZipCode, zip)
	assign(&form.Country, country)
	return form
}

// CheckoutPage is the handler for GET /checkout/
// Totals the basket, creates a payment intent for the amount, and returns
// the prefilled shipping form alongside the intent's client secret.
func (h *Handlers) CheckoutPage(c *gin.Context) {
	session := sessions.Default(c)

	// 1. --- Basket must be non-empty ---
	b := basket.FromSession(session)
	if b.IsEmpty() {
		redirectWithError(c, "/products/", "There's nothing in your basket at the moment")
		return
	}

	// 2. --- Grand total, in the smallest currency unit ---
	contents, err := h.basketContents(b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to total your basket"})
		return
	}
	stripeTotal := contents.GrandTotal.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	// 3. --- Create the payment intent ---
	// A gateway failure here surfaces as a server error carrying the
	// provider message; there is no retry.
	intent, err := h.Payments.CreateIntent(stripeTotal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// 4. --- Prefill + response ---
	response := gin.H{
		"orderForm":       h.prefillFromProfile(c),
		"stripePublicKey": h.Payments.PublicKey(),
		"clientSecret":    intent.ClientSecret,
	}
	if h.Payments.PublicKey() == "" {
		response["warning"] = "Stripe public key is missing. Did you forget to set it in your environment?"
	}

	c.JSON(http.StatusOK, response)
}

// CheckoutInput defines the shipping/contact form submitted with the
// payment. Field names are shared with the payment form on the frontend.
type CheckoutInput struct {
	FullName     string `form:"full_name" json:"full_name" binding:"required"`
	Email        string `form:"email" json:"email" binding:"required,email"`
	PhoneNumber  string `form:"phone_number" json:"phone_number" binding:"required"`
	AddressLine1 string `form:"address_line_1" json:"address_line_1" binding:"required"`
	AddressLine2 string `form:"address_line_2" json:"address_line_2"`
	TownCity     string `form:"town_city" json:"town_city" binding:"required"`
	CountyState  string `form:"county_state" json:"county_state" binding:"required"`
	ZipCode      string `form:"zip_code" json:"zip_code" binding:"required"`
	Country      string `form:"country" json:"country" binding:"required"`
	ClientSecret string `form:"client_secret" json:"client_secret" binding:"required"`
	SaveInfo     bool   `form:"save-info" json:"save-info"`
}

// CheckoutSubmit is the handler for POST /checkout/
// Persists the order and its line items in one transaction; a basket entry
// referencing a deleted product aborts the whole order.
func (h *Handlers) CheckoutSubmit(c *gin.Context) {
	session := sessions.Default(c)

	// 1. --- Validate the form ---
	var input CheckoutInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "There was an error with your form. Please double check your information.",
			"form":    input,
			"details": err.Error(),
		})
		return
	}

	// 2. --- Payment reference from the client secret ---
	pid, err := payments.IntentIDFromClientSecret(input.ClientSecret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "There was an error with your form. Please double check your information."})
		return
	}

	b := basket.FromSession(session)
	snapshot, err := b.Serialize()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record your basket"})
		return
	}

	// 3. --- Order + line items, atomically ---
	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback() // safety net

	orderNumber := generateOrderNumber()
	result, err := tx.Exec(`
		INSERT INTO orders
		(order_number, full_name, email, phone_number, address_line_1, address_line_2,
		 town_city, county_state, zip_code, country, stripe_pid, original_basket,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		orderNumber, input.FullName, input.Email, input.PhoneNumber,
		input.AddressLine1, nullIfEmpty(input.AddressLine2),
		input.TownCity, input.CountyState, input.ZipCode, input.Country,
		pid, snapshot,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get new order ID"})
		return
	}

	lineItemQuery := `
		INSERT INTO order_line_items (order_id, product_id, quantity, product_size, created_at)
		VALUES (?, ?, ?, ?, NOW())`

	for _, id := range b.SortedIDs() {
		entry := b[id]

		// Resolve the product; it may have been deleted after being
		// basketed. The rollback discards the order and every line item
		// written so far.
		var productID int64
		err := tx.QueryRow("SELECT id FROM products WHERE id = ?", id).Scan(&productID)
		if err != nil {
			if err == sql.ErrNoRows {
				redirectWithError(c, "/basket/", "One of the products in your basket wasn't found in our database. Please call us for assistance!")
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify basket contents"})
			return
		}

		if entry.IsBySize() {
			for _, size := range entry.Sizes() {
				if _, err := tx.Exec(lineItemQuery, orderID, productID, entry.BySize[size], size); err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order item"})
					return
				}
			}
		} else {
			if _, err := tx.Exec(lineItemQuery, orderID, productID, entry.Quantity, nil); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order item"})
				return
			}
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit order"})
		return
	}

	// 4. --- Remember the save-info choice for the success phase ---
	session.Set(basket.SessionKeySaveInfo, input.SaveInfo)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	// 5. --- Redirect to the success view ---
	location := "/checkout/success/" + orderNumber
	c.Header("Location", location)
	c.JSON(http.StatusSeeOther, gin.H{"redirect": location, "orderNumber": orderNumber})
}

// CheckoutSuccess is the handler for GET /checkout/success/:order_number
// Attaches the requester's profile to the order, optionally saves the
// shipping defaults back to the profile, and clears the basket.
func (h *Handlers) CheckoutSuccess(c *gin.Context) {
	session := sessions.Default(c)
	orderNumber := c.Param("order_number")
	saveInfo, _ := session.Get(basket.SessionKeySaveInfo).(bool)

	order, err := scanOrder(h.DB.QueryRow(orderSelect+" WHERE order_number = ?", orderNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	if userIDRaw, authenticated := c.Get("userID"); authenticated {
		var profileID int64
		err := h.DB.QueryRow("SELECT id FROM user_profiles WHERE user_id = ?", userIDRaw.(int64)).Scan(&profileID)
		switch {
		case err == sql.ErrNoRows:
			// No profile to attach; the order stays anonymous.
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
			return
		default:
			if _, err := h.DB.Exec(
				"UPDATE orders SET user_profile_id = ?, updated_at = NOW() WHERE id = ?",
				profileID, order.ID,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach order to profile"})
				return
			}
			order.UserProfileID = &profileID

			if saveInfo {
				// Failures saving the defaults are deliberately silent;
				// the order itself already succeeded.
				_, _ = h.DB.Exec(`
					UPDATE user_profiles
					SET default_phone_number = ?, default_address_line_1 = ?, default_address_line_2 = ?,
					    default_town_city = ?, default_county_state = ?, default_zip_code = ?,
					    default_country = ?, updated_at = NOW()
					WHERE id = ?`,
					order.PhoneNumber, order.AddressLine1, order.AddressLine2,
					order.TownCity, order.CountyState, order.ZipCode, order.Country,
					profileID,
				)
			}
		}
	}

	// The basket is cleared no matter who is asking.
	basket.Clear(session)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"message": fmt.Sprintf(
			"Order successfully processed! Your order number is %s. A confirmation email will be sent to %s.",
			orderNumber, order.Email,
		),
	})
}

//
// --- Anonymous Order Lookup ---
//

// CheckOrderPage is the handler for GET /checkout/check-order
func (h *Handlers) CheckOrderPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"form": gin.H{"fields": []string{"order_number"}},
	})
}

const orderNotFoundMessage = "That order number is not in our database. Please check that the number matches the order number in your email."

// CheckOrderInput carries the user-supplied order number.
type CheckOrderInput struct {
	OrderNumber string `form:"order_number" json:"order_number" binding:"required"`
}

// CheckOrder is the handler for POST /checkout/check-order
// Only a genuinely missing order maps to the generic not-found message;
// other failures are surfaced as server errors.
func (h *Handlers) CheckOrder(c *gin.Context) {
	var input CheckOrderInput
	if err := c.ShouldBind(&input); err != nil {
		// A malformed submission reads the same as an unknown number.
		redirectWithError(c, "/checkout/check-order", orderNotFoundMessage)
		return
	}

	order, err := scanOrder(h.DB.QueryRow(orderSelect+" WHERE order_number = ?", input.OrderNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			redirectWithError(c, "/checkout/check-order", orderNotFoundMessage)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"anon":  true,
		"info": fmt.Sprintf(
			"This is a past confirmation for order number %s. A confirmation email was sent on the order date.",
			input.OrderNumber,
		),
	})
}

//
// --- Pre-submission Metadata Callback ---
//

// CacheCheckoutDataInput carries the fields the payment form posts before
// confirming the payment.
type CacheCheckoutDataInput struct {
	ClientSecret string `form:"client_secret" json:"client_secret" binding:"required"`
	SaveInfo     string `form:"save_info" json:"save_info"`
}

// CacheCheckoutData is the handler for POST /checkout/cache-checkout-data
// Attaches the basket snapshot, save-info flag, and requester identity to
// the already-created intent as opaque metadata for later reconciliation.
func (h *Handlers) CacheCheckoutData(c *gin.Context) {
	var input CacheCheckoutDataInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Sorry, your payment cannot be processed right now. Please try again later.",
			"details": err.Error(),
		})
		return
	}

	pid, err := payments.IntentIDFromClientSecret(input.ClientSecret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Sorry, your payment cannot be processed right now. Please try again later.",
			"details": err.Error(),
		})
		return
	}

	session := sessions.Default(c)
	rawBasket, ok := session.Get(basket.SessionKey).(string)
	if !ok {
		rawBasket = "{}"
	}

	username := "AnonymousUser"
	if userIDRaw, authenticated := c.Get("userID"); authenticated {
		var email string
		if err := h.DB.QueryRow("SELECT email FROM users WHERE id = ?", userIDRaw.(int64)).Scan(&email); err == nil {
			username = email
		}
	}

	_, err = h.Payments.ModifyIntent(pid, map[string]string{
		"basket":    rawBasket,
		"save_info": input.SaveInfo,
		"username":  username,
	})
	if err != nil {
		// The provider's error text is echoed back to the caller.
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Sorry, your payment cannot be processed right now. Please try again later.",
			"details": err.Error(),
		})
		return
	}

	c.Status(http.StatusOK)
}
