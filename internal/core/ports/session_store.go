package ports

import (
	"context"
	"time"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

// SessionStore keeps issued sessions until they expire or are revoked.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session) error
	// Get returns domain.ErrSessionNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteByAccount revokes every session of an account.
	DeleteByAccount(ctx context.Context, accountID string) error
}

// ResetTokenStore holds single-use password reset tickets.
type ResetTokenStore interface {
	Save(ctx context.Context, token, accountID string, ttl time.Duration) error
	// Consume returns the account ID and removes the ticket. Unknown or
	// expired tickets yield domain.ErrInvalidResetToken.
	Consume(ctx context.Context, token string) (string, error)
}

// Locker serializes check-then-write sequences across requests. Acquire
// either takes every key or none and returns domain.ErrLocked when one of
// them is held elsewhere.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}
