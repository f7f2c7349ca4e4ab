package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Artist is the model for the 'artists' table.
type Artist struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Product is the model for the 'products' table.
// Nullable columns use pointers for clean JSON serialization.
type Product struct {
	ID        int64           `json:"id" db:"id"`
	ArtistID  int64           `json:"artistId" db:"artist_id"`
	SKU       *string         `json:"sku,omitempty" db:"sku"`
	BasePrice decimal.Decimal `json:"basePrice" db:"base_price"`
	Rating    *float64        `json:"rating,omitempty" db:"rating"`
	ImageURL  *string         `json:"imageUrl,omitempty" db:"image_url"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`

	// Joined from 'artists', not a column on this table.
	ArtistName string `json:"artistName,omitempty" db:"-"`
}
