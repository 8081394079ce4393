package ports

import (
	"context"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

// AddressInput carries the raw address form fields.
type AddressInput struct {
	FullName     string
	Phone        string
	AddressLine  string
	AddressLine2 string // optional
	TownCity     string
	Postcode     string
}

// AddressService manages the shipping addresses of one account.
type AddressService interface {
	AddAddress(ctx context.Context, accountID string, in AddressInput) (*domain.Address, error)
	UpdateAddress(ctx context.Context, accountID, addressID string, in AddressInput) (*domain.Address, error)
	ListAddresses(ctx context.Context, accountID string) ([]*domain.Address, error)
	DeleteAddress(ctx context.Context, accountID, addressID string) error
}
