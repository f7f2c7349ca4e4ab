package models

import "time"

// User is the model for the 'users' table. Login and registration live
// outside this service; the API only consumes the identity via JWT.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Role      string    `json:"role" db:"role"` // "customer" or "administrator"
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"fullName" db:"full_name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// UserProfile is the model for the 'user_profiles' table, one row per user.
// The default_* fields prefill the checkout form and can be overwritten
// from a completed order when the user ticks "save info".
type UserProfile struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"userId" db:"user_id"`

	DefaultPhoneNumber  *string `json:"defaultPhoneNumber,omitempty" db:"default_phone_number"`
	DefaultAddressLine1 *string `json:"defaultAddressLine1,omitempty" db:"default_address_line_1"`
	DefaultAddressLine2 *string `json:"defaultAddressLine2,omitempty" db:"default_address_line_2"`
	DefaultTownCity     *string `json:"defaultTownCity,omitempty" db:"default_town_city"`
	DefaultCountyState  *string `json:"defaultCountyState,omitempty" db:"default_county_state"`
	DefaultZipCode      *string `json:"defaultZipCode,omitempty" db:"default_zip_code"`
	DefaultCountry      *string `json:"defaultCountry,omitempty" db:"default_country"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
