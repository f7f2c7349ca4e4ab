package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/madarame/studio-api/internal/models"
	"github.com/shopspring/decimal"
)

//
// --- Catalog Handlers ---
//

// sortColumns whitelists the sortable fields. "price" is an alias for the
// monetary column.
var sortColumns = map[string]string{
	"price":   "p.base_price",
	"sku":     "p.sku",
	"rating":  "p.rating",
	"artist":  "a.name",
	"created": "p.created_at",
}

const productSelect = `
	SELECT p.id, p.artist_id, p.sku, p.base_price, p.rating, p.image_url,
	       p.created_at, p.updated_at, a.name
	FROM products p
	JOIN artists a ON p.artist_id = a.id
`

func scanProduct(row interface{ Scan(...any) error }) (models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID,
		&p.ArtistID,
		&p.SKU,
		&p.BasePrice,
		&p.Rating,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.ArtistName,
	)
	return p, err
}

// AllProducts is the handler for GET /products/
// Supports sorting (sort, direction) and free-text search (query) against
// the image reference and artist name.
func (h *Handlers) AllProducts(c *gin.Context) {
	params := c.Request.URL.Query()

	var queryBuilder strings.Builder
	var args []interface{}
	queryBuilder.WriteString(productSelect)

	// 1. --- Search Filter ---
	query := ""
	if values, present := params["query"]; present {
		query = values[0]
		if query == "" {
			redirectWithError(c, "/products/", "You didn't enter any search criteria!")
			return
		}
		queryBuilder.WriteString(" WHERE (LOWER(p.image_url) LIKE ? OR LOWER(a.name) LIKE ?)")
		searchTerm := "%" + strings.ToLower(query) + "%"
		args = append(args, searchTerm, searchTerm)
	}

	// 2. --- Sorting ---
	sortKey := c.Query("sort")
	direction := c.Query("direction")
	if sortKey != "" {
		column, ok := sortColumns[sortKey]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Cannot sort by %q", sortKey)})
			return
		}
		queryBuilder.WriteString(" ORDER BY " + column)
		if direction == "desc" {
			queryBuilder.WriteString(" DESC")
		}
	}

	// 3. --- Query & Scan ---
	rows, err := h.DB.Query(queryBuilder.String(), args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product row"})
			return
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"query":    query,
		"sorting":  fmt.Sprintf("%s_%s", sortKey, direction),
	})
}

// ProductDetail is the handler for GET /products/:id
func (h *Handlers) ProductDetail(c *gin.Context) {
	row := h.DB.QueryRow(productSelect+" WHERE p.id = ?", c.Param("id"))
	product, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

//
// --- Admin Product Handlers ---
//

// ProductInput defines the JSON body for creating or updating a product.
type ProductInput struct {
	SKU       string           `json:"sku"`
	BasePrice *decimal.Decimal `json:"basePrice"`
	Rating    *float64         `json:"rating" binding:"omitempty,gte=0,lte=5"`
	ImageURL  string           `json:"imageUrl"`
	ArtistID  int64            `json:"artistId" binding:"required"`
}

// validate applies the rules gin bindings can't express.
func (in *ProductInput) validate() error {
	if in.BasePrice == nil {
		return fmt.Errorf("basePrice is required")
	}
	if in.BasePrice.IsNegative() {
		return fmt.Errorf("basePrice must not be negative")
	}
	return nil
}

// artistName resolves the artist or reports a referential error.
func (h *Handlers) artistName(artistID int64) (string, error) {
	var name string
	err := h.DB.QueryRow("SELECT name FROM artists WHERE id = ?", artistID).Scan(&name)
	return name, err
}

// generateSKU derives a SKU from the artist name when none was supplied.
// Unique in practice via the UUID fragment, though not enforced by the DB.
func generateSKU(artistName string) string {
	fragment := strings.ToUpper(uuid.New().String()[:8])
	return slug.Make(artistName) + "-" + fragment
}

// AddProduct is the handler for POST /products/add (administrators only).
func (h *Handlers) AddProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to add product. Please ensure the form is valid.", "details": err.Error()})
		return
	}
	if err := input.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to add product. Please ensure the form is valid.", "details": err.Error()})
		return
	}

	name, err := h.artistName(input.ArtistID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Artist not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify artist"})
		return
	}

	sku := input.SKU
	if sku == "" {
		sku = generateSKU(name)
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO products (artist_id, sku, base_price, rating, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		input.ArtistID, sku, input.BasePrice, input.Rating, nullIfEmpty(input.ImageURL), now, now,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert product"})
		return
	}
	productID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get new product ID"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Successfully added product!",
		"productId": productID,
		"sku":       sku,
	})
}

// EditProductPage is the handler for GET /products/edit/:id
// Returns the record being edited so the admin form can prefill.
func (h *Handlers) EditProductPage(c *gin.Context) {
	row := h.DB.QueryRow(productSelect+" WHERE p.id = ?", c.Param("id"))
	product, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	sku := ""
	if product.SKU != nil {
		sku = *product.SKU
	}
	c.JSON(http.StatusOK, gin.H{
		"product": product,
		"info":    fmt.Sprintf("You are editing %s", sku),
	})
}

// EditProduct is the handler for POST /products/edit/:id (administrators only).
func (h *Handlers) EditProduct(c *gin.Context) {
	productID := c.Param("id")

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to update product. Please ensure the form is valid.", "details": err.Error()})
		return
	}
	if err := input.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to update product. Please ensure the form is valid.", "details": err.Error()})
		return
	}

	if _, err := h.artistName(input.ArtistID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Artist not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify artist"})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE products
		SET artist_id = ?, sku = ?, base_price = ?, rating = ?, image_url = ?, updated_at = ?
		WHERE id = ?`,
		input.ArtistID, nullIfEmpty(input.SKU), input.BasePrice, input.Rating, nullIfEmpty(input.ImageURL), time.Now(), productID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		// Either the product does not exist or nothing changed; disambiguate.
		var exists int64
		if err := h.DB.QueryRow("SELECT id FROM products WHERE id = ?", productID).Scan(&exists); err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully updated product!"})
}

// nullIfEmpty maps "" to a SQL NULL for optional string columns.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
