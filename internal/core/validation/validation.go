// Package validation holds the account validation workflow: pure rule
// checks over raw form input and the current state of the account store.
//
// Every function collects all applicable field errors and returns them
// together as a *domain.ValidationError; nothing short-circuits after the
// first failure except lookups that would be meaningless on invalid input.
package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
	"github.com/99minutos/storefront-accounts/internal/core/ports"
)

const (
	UsernameMinLength = 4
	UsernameMaxLength = 50
	EmailMaxLength    = 100
)

// Field names used in reported errors.
const (
	FieldUsername           = "username"
	FieldEmail              = "email"
	FieldPassword           = "password"
	FieldPasswordConfirm    = "password_confirm"
	FieldNewPassword        = "new_password"
	FieldNewPasswordConfirm = "new_password_confirm"
	FieldName               = "name"
	FieldFullName           = "full_name"
	FieldPhone              = "phone"
	FieldAddressLine        = "address_line"
	FieldTownCity           = "town_city"
	FieldPostcode           = "postcode"
)

var validate = validator.New()

// Registration is the normalized output of a successful registration check.
type Registration struct {
	Username string
	Email    string
	Password string
}

// ValidateRegistration validates a registration request against the account store.
func ValidateRegistration(ctx context.Context, lookup ports.AccountLookup, in ports.RegistrationInput) (*Registration, error) {
	verr := &domain.ValidationError{}
	username := NormalizeUsername(in.Username)
	email := strings.TrimSpace(in.Email)

	if checkUsername(verr, username) {
		exists, err := lookup.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if exists {
			verr.Add(FieldUsername, domain.ErrDuplicateUsername, "this username is already taken, please choose another one")
		}
	}

	if checkEmail(verr, email) {
		exists, err := lookup.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			verr.Add(FieldEmail, domain.ErrDuplicateEmail, "an account with this email already exists")
		}
	}

	checkPasswordPair(verr, FieldPassword, FieldPasswordConfirm, in.Password, in.PasswordConfirm)

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return &Registration{Username: username, Email: email, Password: in.Password}, nil
}

// ValidateLogin only checks presence; identity is confirmed by the
// authentication gate.
func ValidateLogin(in ports.LoginInput) (ports.LoginInput, error) {
	verr := &domain.ValidationError{}
	out := ports.LoginInput{Username: NormalizeUsername(in.Username), Password: in.Password}
	if out.Username == "" {
		verr.Add(FieldUsername, domain.ErrRequired, "username is required")
	}
	if out.Password == "" {
		verr.Add(FieldPassword, domain.ErrRequired, "password is required")
	}
	return out, verr.Err()
}

// ValidatePasswordResetRequest resolves the account a reset may be started for.
func ValidatePasswordResetRequest(ctx context.Context, lookup ports.AccountLookup, email string) (*domain.Account, error) {
	verr := &domain.ValidationError{}
	email = strings.TrimSpace(email)
	if email == "" {
		verr.Add(FieldEmail, domain.ErrRequired, "email is required")
		return nil, verr
	}

	account, err := lookup.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		verr.Add(FieldEmail, domain.ErrUnknownEmail, "no account was found with this email")
		return nil, verr
	}
	if err != nil {
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return account, nil
}

// ValidatePasswordResetConfirm checks the new password pair of a reset.
func ValidatePasswordResetConfirm(in ports.PasswordResetConfirmInput) (string, error) {
	verr := &domain.ValidationError{}
	checkPasswordPair(verr, FieldNewPassword, FieldNewPasswordConfirm, in.NewPassword, in.NewPasswordConfirm)
	if err := verr.Err(); err != nil {
		return "", err
	}
	return in.NewPassword, nil
}

// ValidateProfileEdit returns the display name to store. Username and email
// are immutable here and whatever was submitted for them is ignored.
func ValidateProfileEdit(account *domain.Account, in ports.ProfileEditInput) (string, error) {
	verr := &domain.ValidationError{}
	if account == nil {
		return "", domain.ErrAccountNotFound
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		verr.Add(FieldName, domain.ErrRequired, "name is required")
	}
	return name, verr.Err()
}

// ValidateAddress checks presence of every address field but the second line.
func ValidateAddress(in ports.AddressInput) (ports.AddressInput, error) {
	verr := &domain.ValidationError{}
	out := ports.AddressInput{
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		AddressLine:  strings.TrimSpace(in.AddressLine),
		AddressLine2: strings.TrimSpace(in.AddressLine2),
		TownCity:     strings.TrimSpace(in.TownCity),
		Postcode:     strings.TrimSpace(in.Postcode),
	}

	required := []struct{ field, value string }{
		{FieldFullName, out.FullName},
		{FieldPhone, out.Phone},
		{FieldAddressLine, out.AddressLine},
		{FieldTownCity, out.TownCity},
		{FieldPostcode, out.Postcode},
	}
	for _, r := range required {
		if r.value == "" {
			verr.Add(r.field, domain.ErrRequired, strings.ReplaceAll(r.field, "_", " ")+" is required")
		}
	}
	return out, verr.Err()
}

// NormalizeUsername trims and lower-cases a username.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// checkUsername reports whether the username is well-formed enough to be
// looked up.
func checkUsername(verr *domain.ValidationError, username string) bool {
	if username == "" {
		verr.Add(FieldUsername, domain.ErrRequired, "username is required")
		return false
	}
	if validate.Var(username, fmt.Sprintf("min=%d,max=%d", UsernameMinLength, UsernameMaxLength)) != nil {
		verr.Add(FieldUsername, domain.ErrInvalidValue,
			fmt.Sprintf("username must be between %d and %d characters", UsernameMinLength, UsernameMaxLength))
		return false
	}
	return true
}

func checkEmail(verr *domain.ValidationError, email string) bool {
	if email == "" {
		verr.Add(FieldEmail, domain.ErrRequired, "email is required")
		return false
	}
	ok := true
	if validate.Var(email, "email") != nil {
		verr.Add(FieldEmail, domain.ErrInvalidValue, "enter a valid email address")
		ok = false
	}
	if validate.Var(email, fmt.Sprintf("max=%d", EmailMaxLength)) != nil {
		verr.Add(FieldEmail, domain.ErrInvalidValue, fmt.Sprintf("email must be at most %d characters", EmailMaxLength))
		ok = false
	}
	return ok
}

// checkPasswordPair runs the strength rules on password and then the
// confirmation rule.
func checkPasswordPair(verr *domain.ValidationError, field, confirmField, password, confirm string) {
	for _, msg := range PasswordProblems(password) {
		verr.Add(field, domain.ErrWeakPassword, msg)
	}
	if password != confirm {
		verr.Add(confirmField, domain.ErrPasswordMismatch, "passwords do not match")
	}
}
