package ports

import (
	"context"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

// RegistrationInput carries the raw registration form fields.
type RegistrationInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// PasswordResetConfirmInput carries the new password pair of a reset.
type PasswordResetConfirmInput struct {
	NewPassword        string
	NewPasswordConfirm string
}

// ProfileEditInput carries the profile form. Username and Email are
// read-only and never applied.
type ProfileEditInput struct {
	Name     string
	Username string
	Email    string
}

// ListAccountsResult is a page of accounts for the admin listing.
type ListAccountsResult struct {
	Items      []*domain.Account
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// AccountService defines account use cases.
type AccountService interface {
	Register(ctx context.Context, in RegistrationInput) (*domain.Account, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token string, in PasswordResetConfirmInput) error
	Profile(ctx context.Context, accountID string) (*domain.Account, error)
	EditProfile(ctx context.Context, accountID string, in ProfileEditInput) (*domain.Account, error)
	ListAccounts(ctx context.Context, filter domain.AccountFilter) (*ListAccountsResult, error)
	SetActive(ctx context.Context, accountID string, active bool) error
}
