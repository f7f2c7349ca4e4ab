package models

import "time"

// Order is the model for the 'orders' table.
// OrderNumber is the human-facing identifier generated at creation time;
// OriginalBasket holds the verbatim session snapshot for audit.
type Order struct {
	ID            int64   `json:"id" db:"id"`
	OrderNumber   string  `json:"orderNumber" db:"order_number"`
	UserProfileID *int64  `json:"userProfileId,omitempty" db:"user_profile_id"` // attached at success time, nil until then
	FullName      string  `json:"fullName" db:"full_name"`
	Email         string  `json:"email" db:"email"`
	PhoneNumber   string  `json:"phoneNumber" db:"phone_number"`
	AddressLine1  string  `json:"addressLine1" db:"address_line_1"`
	AddressLine2  *string `json:"addressLine2,omitempty" db:"address_line_2"`
	TownCity      string  `json:"townCity" db:"town_city"`
	CountyState   string  `json:"countyState" db:"county_state"`
	ZipCode       string  `json:"zipCode" db:"zip_code"`
	Country       string  `json:"country" db:"country"`

	StripePID      string `json:"-" db:"stripe_pid"`
	OriginalBasket string `json:"-" db:"original_basket"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderLineItem is the model for the 'order_line_items' table.
// ProductSize is nil for products without size variants.
type OrderLineItem struct {
	ID          int64     `json:"id" db:"id"`
	OrderID     int64     `json:"orderId" db:"order_id"`
	ProductID   int64     `json:"productId" db:"product_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	ProductSize *string   `json:"productSize,omitempty" db:"product_size"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
