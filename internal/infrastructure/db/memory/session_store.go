package memory

import (
	"context"
	"sync"
	"time"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

// sweepInterval bounds how often writes scan for expired entries.
const sweepInterval = time.Minute

// SessionStore keeps sessions until they expire or are deleted. Expired
// sessions are dropped on read and swept periodically on write.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]domain.Session
	now       func() time.Time
	lastSweep time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *sess
	stored.Token = ""
	s.sessions[sess.ID] = stored
	s.sweep()
	return nil
}

// sweep drops expired sessions. Callers hold s.mu.
func (s *SessionStore) sweep() {
	now := s.now()
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
		}
	}
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) DeleteByAccount(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.AccountID == accountID {
			delete(s.sessions, id)
		}
	}
	return nil
}

// ResetTokenStore keeps password reset tickets until consumed or expired.
type ResetTokenStore struct {
	mu        sync.Mutex
	tickets   map[string]resetTicket
	now       func() time.Time
	lastSweep time.Time
}

type resetTicket struct {
	accountID string
	expiresAt time.Time
}

func NewResetTokenStore() *ResetTokenStore {
	return &ResetTokenStore{
		tickets: make(map[string]resetTicket),
		now:     time.Now,
	}
}

func (s *ResetTokenStore) Save(_ context.Context, token, accountID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.tickets[token] = resetTicket{accountID: accountID, expiresAt: now.Add(ttl)}
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.lastSweep = now
		for tok, t := range s.tickets {
			if !now.Before(t.expiresAt) {
				delete(s.tickets, tok)
			}
		}
	}
	return nil
}

func (s *ResetTokenStore) Consume(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[token]
	if !ok {
		return "", domain.ErrInvalidResetToken
	}
	delete(s.tickets, token)
	if !s.now().Before(t.expiresAt) {
		return "", domain.ErrInvalidResetToken
	}
	return t.accountID, nil
}
