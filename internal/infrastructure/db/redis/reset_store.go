package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

// ResetTokenStore keeps single-use password reset tickets.
// Key format: pwreset:<token> → account ID
type ResetTokenStore struct {
	client redis.UniversalClient
}

// NewResetTokenStore creates a ResetTokenStore wrapping the given Redis client.
func NewResetTokenStore(client redis.UniversalClient) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

// Save records the ticket; it expires after ttl.
func (s *ResetTokenStore) Save(ctx context.Context, token, accountID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(token), accountID, ttl).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// Consume atomically reads and deletes the ticket.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrInvalidResetToken
	}
	accountID, err := s.client.GetDel(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrInvalidResetToken
	}
	if err != nil {
		return "", fmt.Errorf("consume reset token: %w", err)
	}
	return accountID, nil
}

func (s *ResetTokenStore) key(token string) string {
	return "pwreset:" + token
}
