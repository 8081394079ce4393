package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
	"github.com/99minutos/storefront-accounts/internal/core/ports"
	"github.com/99minutos/storefront-accounts/internal/infrastructure/db/memory"
)

func TestAccountService_Register_Success(t *testing.T) {
	f := newFixture(t)

	acc := f.register(t, "ABCD", "a@b.com")

	if acc.Username != "abcd" {
		t.Fatalf("expected normalized username abcd, got %q", acc.Username)
	}
	if !acc.IsActive || acc.IsStaff || acc.IsSuperuser {
		t.Fatalf("unexpected flags: %+v", acc)
	}
	if acc.PasswordHash == strongPassword {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(strongPassword)); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAccountService_Register_DuplicateUsernameAnyCase(t *testing.T) {
	f := newFixture(t)
	f.register(t, "carol", "carol@example.com")

	_, err := f.accountSvc.Register(context.Background(), ports.RegistrationInput{
		Username:        "CaRoL",
		Email:           "other@example.com",
		Password:        strongPassword,
		PasswordConfirm: strongPassword,
	})
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestAccountService_Register_RejectsWeakPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.accountSvc.Register(context.Background(), ports.RegistrationInput{
		Username:        "dave",
		Email:           "dave@example.com",
		Password:        "short",
		PasswordConfirm: "short",
	})
	if !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if ok, _ := f.accounts.ExistsByUsername(context.Background(), "dave"); ok {
		t.Fatalf("rejected registration must not create an account")
	}
}

func TestAccountService_Register_PasswordTooLongForBcrypt(t *testing.T) {
	f := newFixture(t)
	long := strings.Repeat("a1", 40)

	_, err := f.accountSvc.Register(context.Background(), ports.RegistrationInput{
		Username: "longpw", Email: "long@example.com", Password: long, PasswordConfirm: long,
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || !verr.Has("password", domain.ErrInvalidValue) {
		t.Fatalf("expected password field error, got %v", err)
	}
}

func TestAccountService_Register_ConcurrentSameUsername(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.accountSvc.Register(context.Background(), ports.RegistrationInput{
				Username:        "race",
				Email:           "race@example.com",
				Password:        strongPassword,
				PasswordConfirm: strongPassword,
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicateUsername):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one registration to win, got %d", created)
	}
}

func TestAccountService_Register_LockUnavailable(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(AccountDeps{
		Repo:       f.accounts,
		Sessions:   f.sessions,
		Resets:     f.resets,
		Locker:     failingLocker{err: domain.ErrLocked},
		Notifier:   f.notifier,
		BcryptCost: bcrypt.MinCost,
	}, zerolog.Nop())

	_, err := svc.Register(context.Background(), ports.RegistrationInput{
		Username: "erin", Email: "erin@example.com", Password: strongPassword, PasswordConfirm: strongPassword,
	})
	if !errors.Is(err, domain.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestAccountService_PasswordReset_FullFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.register(t, "frank", "frank@example.com")

	sess, err := f.authSvc.Login(ctx, ports.LoginInput{Username: "frank", Password: strongPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := f.accountSvc.RequestPasswordReset(ctx, "frank@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	notice := f.notifier.last(t)
	if notice.AccountID != acc.ID || notice.Token == "" {
		t.Fatalf("unexpected notice: %+v", notice)
	}

	newPassword := "zyxwvuts9876"
	err = f.accountSvc.ConfirmPasswordReset(ctx, notice.Token, ports.PasswordResetConfirmInput{
		NewPassword: newPassword, NewPasswordConfirm: newPassword,
	})
	if err != nil {
		t.Fatalf("confirm reset: %v", err)
	}

	if _, err := f.authSvc.Login(ctx, ports.LoginInput{Username: "frank", Password: strongPassword}); !errors.Is(err, domain.ErrAuthFailure) {
		t.Fatalf("old password should no longer work, got %v", err)
	}
	if _, err := f.authSvc.Login(ctx, ports.LoginInput{Username: "frank", Password: newPassword}); err != nil {
		t.Fatalf("new password should work: %v", err)
	}
	if _, err := f.authSvc.Authenticate(ctx, sess.Token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("sessions opened before the reset must be revoked, got %v", err)
	}

	// Tickets are single use.
	err = f.accountSvc.ConfirmPasswordReset(ctx, notice.Token, ports.PasswordResetConfirmInput{
		NewPassword: newPassword, NewPasswordConfirm: newPassword,
	})
	if !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
}

func TestAccountService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.accountSvc.RequestPasswordReset(context.Background(), "ghost@example.com")
	if !errors.Is(err, domain.ErrUnknownEmail) {
		t.Fatalf("expected ErrUnknownEmail, got %v", err)
	}
	if len(f.notifier.notices) != 0 {
		t.Fatalf("no notice should be queued")
	}
}

func TestAccountService_RequestPasswordReset_InactiveAccountIsSilent(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "gina", "gina@example.com")
	if err := f.accountSvc.SetActive(context.Background(), acc.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if err := f.accountSvc.RequestPasswordReset(context.Background(), "gina@example.com"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if len(f.notifier.notices) != 0 {
		t.Fatalf("no notice should be queued for inactive accounts")
	}
}

func TestAccountService_ConfirmPasswordReset_WeakPasswordKeepsTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "hank", "hank@example.com")
	if err := f.accountSvc.RequestPasswordReset(ctx, "hank@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	token := f.notifier.last(t).Token

	err := f.accountSvc.ConfirmPasswordReset(ctx, token, ports.PasswordResetConfirmInput{
		NewPassword: "weak", NewPasswordConfirm: "weaker",
	})
	if !errors.Is(err, domain.ErrWeakPassword) || !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected weak + mismatch errors, got %v", err)
	}

	err = f.accountSvc.ConfirmPasswordReset(ctx, token, ports.PasswordResetConfirmInput{
		NewPassword: "goodpassword99", NewPasswordConfirm: "goodpassword99",
	})
	if err != nil {
		t.Fatalf("ticket should still be usable: %v", err)
	}
}

func TestAccountService_ConfirmPasswordReset_StoreFailureKeepsTicket(t *testing.T) {
	repo := &flakyPasswordRepo{AccountRepository: memory.NewAccountRepository(), failures: 1}
	notifier := &stubNotifier{}
	svc := NewAccountService(AccountDeps{
		Repo:       repo,
		Sessions:   memory.NewSessionStore(),
		Resets:     memory.NewResetTokenStore(),
		Locker:     memory.NewLocker(),
		Notifier:   notifier,
		BcryptCost: bcrypt.MinCost,
	}, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Register(ctx, ports.RegistrationInput{
		Username: "hugo", Email: "hugo@example.com", Password: strongPassword, PasswordConfirm: strongPassword,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.RequestPasswordReset(ctx, "hugo@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	token := notifier.last(t).Token
	in := ports.PasswordResetConfirmInput{NewPassword: "goodpassword99", NewPasswordConfirm: "goodpassword99"}

	if err := svc.ConfirmPasswordReset(ctx, token, in); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
	if err := svc.ConfirmPasswordReset(ctx, token, in); err != nil {
		t.Fatalf("retry with the same ticket should succeed: %v", err)
	}
}

func TestAccountService_ConfirmPasswordReset_InactiveAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.register(t, "iris", "iris@example.com")
	if err := f.accountSvc.RequestPasswordReset(ctx, "iris@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	token := f.notifier.last(t).Token
	if err := f.accountSvc.SetActive(ctx, acc.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	err := f.accountSvc.ConfirmPasswordReset(ctx, token, ports.PasswordResetConfirmInput{
		NewPassword: "goodpassword99", NewPasswordConfirm: "goodpassword99",
	})
	if !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
	if err := f.accountSvc.SetActive(ctx, acc.ID, true); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if _, err := f.authSvc.Login(ctx, ports.LoginInput{Username: "iris", Password: strongPassword}); err != nil {
		t.Fatalf("password must be unchanged: %v", err)
	}
}

func TestAccountService_EditProfile_OnlyNameChanges(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "ivan", "ivan@example.com")

	updated, err := f.accountSvc.EditProfile(context.Background(), acc.ID, ports.ProfileEditInput{
		Name:     "Ivan Petrov",
		Email:    "hijack@example.com",
		Username: "root",
	})
	if err != nil {
		t.Fatalf("edit profile: %v", err)
	}
	if updated.Name != "Ivan Petrov" {
		t.Fatalf("expected name update, got %q", updated.Name)
	}
	if updated.Email != "ivan@example.com" || updated.Username != "ivan" {
		t.Fatalf("username and email must stay unchanged: %+v", updated)
	}

	stored, _ := f.accountSvc.Profile(context.Background(), acc.ID)
	if stored.Email != "ivan@example.com" {
		t.Fatalf("stored email changed: %q", stored.Email)
	}
}

func TestAccountService_EditProfile_Errors(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane", "jane@example.com")

	if _, err := f.accountSvc.EditProfile(context.Background(), acc.ID, ports.ProfileEditInput{Name: " "}); !errors.Is(err, domain.ErrRequired) {
		t.Fatalf("expected ErrRequired, got %v", err)
	}
	if _, err := f.accountSvc.EditProfile(context.Background(), "missing", ports.ProfileEditInput{Name: "x"}); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_ListAccounts_ClampsPaging(t *testing.T) {
	f := newFixture(t)
	for _, u := range []string{"kate", "liam", "mona"} {
		f.register(t, u, u+"@example.com")
	}

	res, err := f.accountSvc.ListAccounts(context.Background(), domain.AccountFilter{Page: 0, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Page != 1 || res.Limit != 2 || res.Total != 3 || res.TotalPages != 2 {
		t.Fatalf("unexpected paging: %+v", res)
	}
	if res.Items[0].Username != "kate" {
		t.Fatalf("expected ordering by username, got %s", res.Items[0].Username)
	}

	res, err = f.accountSvc.ListAccounts(context.Background(), domain.AccountFilter{Limit: 1000})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Limit != maxPageLimit {
		t.Fatalf("expected limit capped at %d, got %d", maxPageLimit, res.Limit)
	}
}

func TestAccountService_ListAccounts_HugePageIsEmpty(t *testing.T) {
	f := newFixture(t)
	for _, u := range []string{"kate", "liam", "mona"} {
		f.register(t, u, u+"@example.com")
	}

	for _, page := range []int{math.MaxInt/defaultPageLimit + 2, math.MaxInt} {
		res, err := f.accountSvc.ListAccounts(context.Background(), domain.AccountFilter{Page: page})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if len(res.Items) != 0 {
			t.Fatalf("page %d: expected no items, got %d", page, len(res.Items))
		}
		if res.Total != 3 || res.Page != maxPage {
			t.Fatalf("page %d: unexpected paging: total=%d page=%d", page, res.Total, res.Page)
		}
	}
}

func TestAccountService_SetActive_RevokesSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.register(t, "nina", "nina@example.com")

	sess, err := f.authSvc.Login(ctx, ports.LoginInput{Username: "nina", Password: strongPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := f.accountSvc.SetActive(ctx, acc.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := f.authSvc.Authenticate(ctx, sess.Token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected revoked session, got %v", err)
	}
	if err := f.accountSvc.SetActive(ctx, "missing", true); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_SetActive_ReportsRevokeFailure(t *testing.T) {
	repo := memory.NewAccountRepository()
	repo.Put(&domain.Account{ID: "acc-1", Username: "nora", Email: "nora@example.com", IsActive: true})
	svc := NewAccountService(AccountDeps{
		Repo:       repo,
		Sessions:   brokenSessions{},
		Resets:     memory.NewResetTokenStore(),
		Locker:     memory.NewLocker(),
		Notifier:   &stubNotifier{},
		BcryptCost: bcrypt.MinCost,
	}, zerolog.Nop())

	err := svc.SetActive(context.Background(), "acc-1", false)
	if !errors.Is(err, errSessionsDown) {
		t.Fatalf("expected session store error, got %v", err)
	}
}

func TestAccountService_Register_StoreRaceReportsDuplicate(t *testing.T) {
	// The store, not the pre-check, catches a duplicate inserted between
	// validation and create.
	repo := &racingRepo{AccountRepository: memory.NewAccountRepository()}
	svc := NewAccountService(AccountDeps{
		Repo:       repo,
		Sessions:   memory.NewSessionStore(),
		Resets:     memory.NewResetTokenStore(),
		Locker:     memory.NewLocker(),
		Notifier:   &stubNotifier{},
		BcryptCost: bcrypt.MinCost,
	}, zerolog.Nop())

	_, err := svc.Register(context.Background(), ports.RegistrationInput{
		Username: "olga", Email: "olga@example.com", Password: strongPassword, PasswordConfirm: strongPassword,
	})
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

// racingRepo inserts a conflicting account right before Create runs.
type racingRepo struct {
	*memory.AccountRepository
}

func (r *racingRepo) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	r.Put(&domain.Account{Username: a.Username, Email: "first@example.com"})
	return r.AccountRepository.Create(ctx, a)
}

var errStoreDown = errors.New("account store down")

// flakyPasswordRepo fails the first password updates.
type flakyPasswordRepo struct {
	*memory.AccountRepository
	mu       sync.Mutex
	failures int
}

func (r *flakyPasswordRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	r.mu.Lock()
	if r.failures > 0 {
		r.failures--
		r.mu.Unlock()
		return errStoreDown
	}
	r.mu.Unlock()
	return r.AccountRepository.UpdatePasswordHash(ctx, id, hash)
}
