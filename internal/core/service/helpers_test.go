package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
	"github.com/99minutos/storefront-accounts/internal/core/ports"
	"github.com/99minutos/storefront-accounts/internal/infrastructure/db/memory"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubNotifier struct {
	mu      sync.Mutex
	notices []ports.PasswordResetNotice
}

func (n *stubNotifier) Enqueue(notice ports.PasswordResetNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *stubNotifier) last(t *testing.T) ports.PasswordResetNotice {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) == 0 {
		t.Fatalf("expected a queued notice")
	}
	return n.notices[len(n.notices)-1]
}

type failingLocker struct{ err error }

func (l failingLocker) Acquire(context.Context, ...string) (func(), error) {
	return nil, l.err
}

// brokenSessions fails every write; reads report not found.
type brokenSessions struct{}

var errSessionsDown = errors.New("session store down")

func (brokenSessions) Save(context.Context, *domain.Session) error { return errSessionsDown }
func (brokenSessions) Get(context.Context, string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}
func (brokenSessions) Delete(context.Context, string) error          { return errSessionsDown }
func (brokenSessions) DeleteByAccount(context.Context, string) error { return errSessionsDown }

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	accounts  *memory.AccountRepository
	addresses *memory.AddressRepository
	sessions  *memory.SessionStore
	resets    *memory.ResetTokenStore
	notifier  *stubNotifier

	accountSvc *AccountService
	authSvc    *AuthService
	addressSvc *AddressService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		accounts:  memory.NewAccountRepository(),
		addresses: memory.NewAddressRepository(),
		sessions:  memory.NewSessionStore(),
		resets:    memory.NewResetTokenStore(),
		notifier:  &stubNotifier{},
	}
	f.accountSvc = NewAccountService(AccountDeps{
		Repo:       f.accounts,
		Sessions:   f.sessions,
		Resets:     f.resets,
		Locker:     memory.NewLocker(),
		Notifier:   f.notifier,
		BcryptCost: bcrypt.MinCost,
	}, zerolog.Nop())

	auth, err := NewAuthService(f.accounts, f.sessions, AuthConfig{
		JWTSecret:  "test-secret",
		BcryptCost: bcrypt.MinCost,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	f.authSvc = auth
	f.addressSvc = NewAddressService(f.addresses, zerolog.Nop())
	return f
}

const strongPassword = "abcdefgh1234"

func (f *fixture) register(t *testing.T, username, email string) *domain.Account {
	t.Helper()
	acc, err := f.accountSvc.Register(context.Background(), ports.RegistrationInput{
		Username:        username,
		Email:           email,
		Password:        strongPassword,
		PasswordConfirm: strongPassword,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return acc
}
