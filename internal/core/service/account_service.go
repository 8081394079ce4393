package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/storefront-accounts/internal/pkg/metrics"
	"github.com/99minutos/storefront-accounts/internal/core/domain"
	"github.com/99minutos/storefront-accounts/internal/core/ports"
	"github.com/99minutos/storefront-accounts/internal/core/validation"
)

const (
	defaultResetTTL  = time.Hour
	defaultPageLimit = 20
	maxPageLimit     = 100
	maxPage          = math.MaxInt32
)

// AccountDeps groups the collaborators of AccountService.
type AccountDeps struct {
	Repo     ports.AccountRepository
	Sessions ports.SessionStore
	Resets   ports.ResetTokenStore
	Locker   ports.Locker
	Notifier ports.Notifier

	BcryptCost int
	ResetTTL   time.Duration
}

// AccountService implements registration, password reset, profile and
// admin use cases.
type AccountService struct {
	repo       ports.AccountRepository
	sessions   ports.SessionStore
	resets     ports.ResetTokenStore
	locker     ports.Locker
	notifier   ports.Notifier
	bcryptCost int
	resetTTL   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

func NewAccountService(deps AccountDeps, logger zerolog.Logger) *AccountService {
	if deps.BcryptCost == 0 {
		deps.BcryptCost = bcrypt.DefaultCost
	}
	if deps.ResetTTL <= 0 {
		deps.ResetTTL = defaultResetTTL
	}
	return &AccountService{
		repo:       deps.Repo,
		sessions:   deps.Sessions,
		resets:     deps.Resets,
		locker:     deps.Locker,
		notifier:   deps.Notifier,
		bcryptCost: deps.BcryptCost,
		resetTTL:   deps.ResetTTL,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register validates and creates a new account. The username and email are
// locked for the whole check-then-insert sequence.
func (s *AccountService) Register(ctx context.Context, in ports.RegistrationInput) (*domain.Account, error) {
	release, err := s.locker.Acquire(ctx,
		"register:username:"+validation.NormalizeUsername(in.Username),
		"register:email:"+strings.ToLower(strings.TrimSpace(in.Email)),
	)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}
	defer release()

	reg, err := validation.ValidateRegistration(ctx, s.repo, in)
	if err != nil {
		return nil, s.rejectRegistration(err)
	}

	hash, err := s.hashPassword(validation.FieldPassword, reg.Password)
	if err != nil {
		return nil, s.rejectRegistration(err)
	}

	now := s.now()
	created, err := s.repo.Create(ctx, &domain.Account{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, s.rejectRegistration(err)
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	s.logger.Info().Str("account_id", created.ID).Str("username", created.Username).Msg("account registered")
	return created, nil
}

func (s *AccountService) rejectRegistration(err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		observeValidation(verr)
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("error").Inc()
	s.logger.Error().Err(err).Msg("registration failed")
	return fmt.Errorf("register: %w", err)
}

// RequestPasswordReset issues a single-use reset ticket for the account
// owning email and queues its delivery.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := validation.ValidatePasswordResetRequest(ctx, s.repo, email)
	if err != nil {
		return s.resetOutcome("request", err)
	}

	if !account.IsActive {
		// Nothing is sent to deactivated accounts; the caller sees the same
		// outcome as for an active one.
		s.logger.Info().Str("account_id", account.ID).Msg("password reset skipped for inactive account")
		metrics.PasswordResetsTotal.WithLabelValues("request", "ok").Inc()
		return nil
	}

	token := uuid.NewString()
	if err := s.resets.Save(ctx, token, account.ID, s.resetTTL); err != nil {
		return s.resetOutcome("request", fmt.Errorf("save reset token: %w", err))
	}

	s.notifier.Enqueue(ports.PasswordResetNotice{
		AccountID: account.ID,
		Email:     account.Email,
		Username:  account.Username,
		Token:     token,
	})

	s.logger.Info().Str("account_id", account.ID).Msg("password reset requested")
	metrics.PasswordResetsTotal.WithLabelValues("request", "ok").Inc()
	return nil
}

// ConfirmPasswordReset consumes a reset ticket, stores the new password and
// revokes every open session of the account.
func (s *AccountService) ConfirmPasswordReset(ctx context.Context, token string, in ports.PasswordResetConfirmInput) error {
	password, err := validation.ValidatePasswordResetConfirm(in)
	if err != nil {
		return s.resetOutcome("confirm", err)
	}

	hash, err := s.hashPassword(validation.FieldNewPassword, password)
	if err != nil {
		return s.resetOutcome("confirm", err)
	}

	token = strings.TrimSpace(token)
	accountID, err := s.resets.Consume(ctx, token)
	if err != nil {
		return s.resetOutcome("confirm", err)
	}

	account, err := s.repo.FindByID(ctx, accountID)
	if errors.Is(err, domain.ErrAccountNotFound) || (err == nil && !account.IsActive) {
		return s.resetOutcome("confirm", domain.ErrInvalidResetToken)
	}
	if err != nil {
		s.restoreTicket(ctx, token, accountID)
		return s.resetOutcome("confirm", fmt.Errorf("load account: %w", err))
	}

	if err := s.repo.UpdatePasswordHash(ctx, accountID, hash); err != nil {
		s.restoreTicket(ctx, token, accountID)
		return s.resetOutcome("confirm", fmt.Errorf("update password: %w", err))
	}
	if err := s.sessions.DeleteByAccount(ctx, accountID); err != nil {
		s.logger.Warn().Err(err).Str("account_id", accountID).Msg("failed to revoke sessions after password reset")
	}

	s.logger.Info().Str("account_id", accountID).Msg("password reset completed")
	metrics.PasswordResetsTotal.WithLabelValues("confirm", "ok").Inc()
	return nil
}

// restoreTicket puts back a consumed ticket when the reset could not be
// applied, so the user can retry with the same link.
func (s *AccountService) restoreTicket(ctx context.Context, token, accountID string) {
	if err := s.resets.Save(ctx, token, accountID, s.resetTTL); err != nil {
		s.logger.Warn().Err(err).Str("account_id", accountID).Msg("failed to restore password reset ticket")
	}
}

func (s *AccountService) resetOutcome(step string, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		observeValidation(verr)
		metrics.PasswordResetsTotal.WithLabelValues(step, "rejected").Inc()
	case errors.Is(err, domain.ErrInvalidResetToken):
		metrics.PasswordResetsTotal.WithLabelValues(step, "rejected").Inc()
	default:
		metrics.PasswordResetsTotal.WithLabelValues(step, "error").Inc()
		s.logger.Error().Err(err).Str("step", step).Msg("password reset failed")
	}
	return err
}

// Profile returns the account of the current session.
func (s *AccountService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, accountID)
}

// EditProfile overwrites the display name. Username and email are never
// changed here.
func (s *AccountService) EditProfile(ctx context.Context, accountID string, in ports.ProfileEditInput) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	name, err := validation.ValidateProfileEdit(account, in)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			observeValidation(verr)
		}
		return nil, err
	}

	updated, err := s.repo.UpdateDisplayName(ctx, account.ID, name)
	if err != nil {
		return nil, fmt.Errorf("edit profile: %w", err)
	}
	s.logger.Info().Str("account_id", account.ID).Msg("profile updated")
	return updated, nil
}

// ListAccounts returns a page of accounts ordered by username.
func (s *AccountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) (*ports.ListAccountsResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	// Pages past maxPage are empty anyway; the clamp keeps the skip offset in range.
	if filter.Page > maxPage {
		filter.Page = maxPage
	}
	filter.Search = strings.TrimSpace(filter.Search)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.ListAccountsResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// SetActive toggles the active flag. Deactivation revokes open sessions.
func (s *AccountService) SetActive(ctx context.Context, accountID string, active bool) error {
	if _, err := s.repo.FindByID(ctx, accountID); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, accountID, active); err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if !active {
		if err := s.sessions.DeleteByAccount(ctx, accountID); err != nil {
			s.logger.Error().Err(err).Str("account_id", accountID).Msg("failed to revoke sessions of deactivated account")
			return fmt.Errorf("revoke sessions: %w", err)
		}
	}
	s.logger.Info().Str("account_id", accountID).Bool("active", active).Msg("account activation changed")
	return nil
}

// hashPassword reports bcrypt's 72 byte input limit as a field error.
func (s *AccountService) hashPassword(field, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		verr := &domain.ValidationError{}
		verr.Add(field, domain.ErrInvalidValue, "password must be at most 72 bytes long")
		return "", verr
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func observeValidation(verr *domain.ValidationError) {
	for _, fe := range verr.Errors {
		metrics.ValidationErrorsTotal.WithLabelValues(fe.Field, fe.Kind.Error()).Inc()
	}
}
