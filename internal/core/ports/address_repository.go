package ports

import (
	"context"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

// AddressRepository persists shipping addresses. Every lookup is scoped to
// the owning account; an address owned by someone else is reported as
// domain.ErrAddressNotFound.
type AddressRepository interface {
	Create(ctx context.Context, a *domain.Address) (*domain.Address, error)
	Update(ctx context.Context, a *domain.Address) (*domain.Address, error)
	FindByID(ctx context.Context, accountID, id string) (*domain.Address, error)
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Address, error)
	Delete(ctx context.Context, accountID, id string) error
}
