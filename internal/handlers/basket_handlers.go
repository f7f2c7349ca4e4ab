package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/madarame/studio-api/internal/basket"
	"github.com/shopspring/decimal"
)

//
// --- Basket Handlers (session-scoped) ---
//

// BasketLine is one priced row of the basket view.
type BasketLine struct {
	ProductID   int64           `json:"productId"`
	SKU         string          `json:"sku"`
	ArtistName  string          `json:"artistName"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	ProductSize *string         `json:"productSize,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// BasketContents is the priced rendering of a basket snapshot.
type BasketContents struct {
	Lines        []BasketLine    `json:"items"`
	GrandTotal   decimal.Decimal `json:"grandTotal"`
	ProductCount int             `json:"productCount"`
}

// basketContents resolves every basket entry against the catalog and totals
// it up. Checkout initiation uses the same computation for the intent amount.
func (h *Handlers) basketContents(b basket.Basket) (*BasketContents, error) {
	contents := &BasketContents{
		Lines:      []BasketLine{},
		GrandTotal: decimal.Zero,
	}

	for _, id := range b.SortedIDs() {
		entry := b[id]

		product, err := scanProduct(h.DB.QueryRow(productSelect+" WHERE p.id = ?", id))
		if err != nil {
			return nil, err
		}

		sku := ""
		if product.SKU != nil {
			sku = *product.SKU
		}

		appendLine := func(quantity int, size *string) {
			lineTotal := product.BasePrice.Mul(decimal.NewFromInt(int64(quantity)))
			contents.Lines = append(contents.Lines, BasketLine{
				ProductID:   product.ID,
				SKU:         sku,
				ArtistName:  product.ArtistName,
				ImageURL:    product.ImageURL,
				ProductSize: size,
				Quantity:    quantity,
				UnitPrice:   product.BasePrice,
				LineTotal:   lineTotal,
			})
			contents.GrandTotal = contents.GrandTotal.Add(lineTotal)
			contents.ProductCount += quantity
		}

		if entry.IsBySize() {
			for _, size := range entry.Sizes() {
				s := size
				appendLine(entry.BySize[size], &s)
			}
		} else {
			appendLine(entry.Quantity, nil)
		}
	}

	return contents, nil
}

// ViewBasket is the handler for GET /basket/
func (h *Handlers) ViewBasket(c *gin.Context) {
	session := sessions.Default(c)
	contents, err := h.basketContents(basket.FromSession(session))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusConflict, gin.H{"error": "One of the products in your basket wasn't found in our database. Please call us for assistance!"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load basket"})
		return
	}

	c.JSON(http.StatusOK, contents)
}

// BasketItemInput defines the form body for basket mutations.
type BasketItemInput struct {
	Quantity    int    `form:"quantity" json:"quantity" binding:"required,gt=0"`
	ProductSize string `form:"product_size" json:"product_size"`
}

// AddToBasket is the handler for POST /basket/add/:id
func (h *Handlers) AddToBasket(c *gin.Context) {
	productID := c.Param("id")

	var input BasketItemInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	// The product must exist before it can be basketed.
	var exists int64
	if err := h.DB.QueryRow("SELECT id FROM products WHERE id = ?", productID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	session := sessions.Default(c)
	b := basket.FromSession(session)
	entry := b[productID]

	if input.ProductSize != "" {
		if entry.BySize == nil {
			entry = basket.Entry{BySize: map[string]int{}}
		}
		entry.BySize[input.ProductSize] += input.Quantity
	} else {
		entry = basket.Entry{Quantity: entry.Quantity + input.Quantity}
	}
	b[productID] = entry

	if err := b.Save(session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update basket"})
		return
	}
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item added to basket", "basketCount": totalQuantity(b)})
}

// UpdateBasketInput allows quantity 0, which removes the line.
type UpdateBasketInput struct {
	Quantity    *int   `form:"quantity" json:"quantity" binding:"required,gte=0"`
	ProductSize string `form:"product_size" json:"product_size"`
}

// UpdateBasket is the handler for POST /basket/update/:id
func (h *Handlers) UpdateBasket(c *gin.Context) {
	productID := c.Param("id")

	var input UpdateBasketInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	session := sessions.Default(c)
	b := basket.FromSession(session)
	entry, found := b[productID]
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in basket"})
		return
	}

	quantity := *input.Quantity
	switch {
	case input.ProductSize != "":
		if entry.BySize == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in basket"})
			return
		}
		if quantity == 0 {
			delete(entry.BySize, input.ProductSize)
			if len(entry.BySize) == 0 {
				delete(b, productID)
			}
		} else {
			entry.BySize[input.ProductSize] = quantity
			b[productID] = entry
		}
	case quantity == 0:
		delete(b, productID)
	default:
		b[productID] = basket.Entry{Quantity: quantity}
	}

	if err := b.Save(session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update basket"})
		return
	}
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Basket updated", "basketCount": totalQuantity(b)})
}

// RemoveFromBasketInput carries the optional size of the line to drop.
type RemoveFromBasketInput struct {
	ProductSize string `form:"product_size" json:"product_size"`
}

// RemoveFromBasket is the handler for POST /basket/remove/:id
func (h *Handlers) RemoveFromBasket(c *gin.Context) {
	productID := c.Param("id")

	var input RemoveFromBasketInput
	_ = c.ShouldBind(&input)

	session := sessions.Default(c)
	b := basket.FromSession(session)
	entry, found := b[productID]
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in basket"})
		return
	}

	if input.ProductSize != "" && entry.BySize != nil {
		delete(entry.BySize, input.ProductSize)
		if len(entry.BySize) == 0 {
			delete(b, productID)
		}
	} else {
		delete(b, productID)
	}

	if err := b.Save(session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update basket"})
		return
	}
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from basket", "basketCount": totalQuantity(b)})
}

func totalQuantity(b basket.Basket) int {
	total := 0
	for _, entry := range b {
		total += entry.TotalQuantity()
	}
	return total
}
