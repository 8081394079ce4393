package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-accounts/internal/api/middleware"
	"github.com/99minutos/storefront-accounts/internal/core/domain"
	"github.com/99minutos/storefront-accounts/internal/core/ports"
)

type stubAuthService struct {
	loginFn  func(ctx context.Context, in ports.LoginInput) (*domain.Session, error)
	logoutFn func(ctx context.Context, sessionID string) error
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.Session, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.Session, error) {
	return nil, domain.ErrUnauthorized
}

func (s *stubAuthService) Logout(ctx context.Context, sessionID string) error {
	return s.logoutFn(ctx, sessionID)
}

type stubAccountService struct {
	registerFn     func(ctx context.Context, in ports.RegistrationInput) (*domain.Account, error)
	requestResetFn func(ctx context.Context, email string) error
	confirmResetFn func(ctx context.Context, token string, in ports.PasswordResetConfirmInput) error
	profileFn      func(ctx context.Context, accountID string) (*domain.Account, error)
	editProfileFn  func(ctx context.Context, accountID string, in ports.ProfileEditInput) (*domain.Account, error)
	listAccountsFn func(ctx context.Context, filter domain.AccountFilter) (*ports.ListAccountsResult, error)
	setActiveFn    func(ctx context.Context, accountID string, active bool) error
}

func (s *stubAccountService) Register(ctx context.Context, in ports.RegistrationInput) (*domain.Account, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) RequestPasswordReset(ctx context.Context, email string) error {
	return s.requestResetFn(ctx, email)
}

func (s *stubAccountService) ConfirmPasswordReset(ctx context.Context, token string, in ports.PasswordResetConfirmInput) error {
	return s.confirmResetFn(ctx, token, in)
}

func (s *stubAccountService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.profileFn(ctx, accountID)
}

func (s *stubAccountService) EditProfile(ctx context.Context, accountID string, in ports.ProfileEditInput) (*domain.Account, error) {
	return s.editProfileFn(ctx, accountID, in)
}

func (s *stubAccountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) (*ports.ListAccountsResult, error) {
	return s.listAccountsFn(ctx, filter)
}

func (s *stubAccountService) SetActive(ctx context.Context, accountID string, active bool) error {
	return s.setActiveFn(ctx, accountID, active)
}

type stubAddressService struct {
	addFn    func(ctx context.Context, accountID string, in ports.AddressInput) (*domain.Address, error)
	updateFn func(ctx context.Context, accountID, addressID string, in ports.AddressInput) (*domain.Address, error)
	listFn   func(ctx context.Context, accountID string) ([]*domain.Address, error)
	deleteFn func(ctx context.Context, accountID, addressID string) error
}

func (s *stubAddressService) AddAddress(ctx context.Context, accountID string, in ports.AddressInput) (*domain.Address, error) {
	return s.addFn(ctx, accountID, in)
}

func (s *stubAddressService) UpdateAddress(ctx context.Context, accountID, addressID string, in ports.AddressInput) (*domain.Address, error) {
	return s.updateFn(ctx, accountID, addressID, in)
}

func (s *stubAddressService) ListAddresses(ctx context.Context, accountID string) ([]*domain.Address, error) {
	return s.listFn(ctx, accountID)
}

func (s *stubAddressService) DeleteAddress(ctx context.Context, accountID, addressID string) error {
	return s.deleteFn(ctx, accountID, addressID)
}

// newContext builds an echo context for a JSON request. A non-nil sess is
// injected the way the Auth middleware does it.
func newContext(method, target, body string, sess *domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		c.Set(middleware.SessionKey, sess)
	}
	return c, rec
}
