package ports

import (
	"context"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

// AccountLookup is the read side of the account store used by the
// validation workflow.
type AccountLookup interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// FindByEmail returns domain.ErrAccountNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	AccountLookup

	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// Create returns a *domain.ValidationError carrying ErrDuplicateUsername
	// or ErrDuplicateEmail when a uniqueness constraint is violated.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	UpdateDisplayName(ctx context.Context, id, name string) (*domain.Account, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	SetActive(ctx context.Context, id string, active bool) error
	// List returns a page of accounts ordered by username and the total count.
	List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, int64, error)
}
