package domain

import "time"

// Address is a shipping address owned by exactly one Account.
type Address struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	AddressLine  string    `json:"address_line"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	TownCity     string    `json:"town_city"`
	Postcode     string    `json:"postcode"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
