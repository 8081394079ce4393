package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
	"github.com/99minutos/storefront-accounts/internal/core/ports"
	"github.com/99minutos/storefront-accounts/internal/core/validation"
	"github.com/99minutos/storefront-accounts/internal/pkg/metrics"
)

const defaultSessionTTL = 24 * time.Hour

// AuthConfig carries the authentication gate settings.
type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
	BcryptCost int
}

// sessionClaims is the payload of a session bearer token. The registered ID
// claim holds the session ID and Subject the account ID.
type sessionClaims struct {
	Username string `json:"username"`
	Staff    bool   `json:"staff"`
	jwt.RegisteredClaims
}

// AuthService is the authentication gate: it confirms credentials and
// opens sessions.
type AuthService struct {
	repo       ports.AccountRepository
	sessions   ports.SessionStore
	jwtSecret  []byte
	sessionTTL time.Duration
	dummyHash  []byte
	logger     zerolog.Logger
	now        func() time.Time
}

func NewAuthService(repo ports.AccountRepository, sessions ports.SessionStore, cfg AuthConfig, logger zerolog.Logger) (*AuthService, error) {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth: empty jwt secret")
	}

	// Compared against when the username is unknown so that both failure
	// paths spend the same bcrypt work.
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth: dummy hash: %w", err)
	}

	return &AuthService{
		repo:       repo,
		sessions:   sessions,
		jwtSecret:  []byte(cfg.JWTSecret),
		sessionTTL: cfg.SessionTTL,
		dummyHash:  dummy,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Login confirms the username/password pair, requires an active account and
// opens a new session. Unknown users, wrong passwords and inactive accounts
// all yield domain.ErrAuthFailure.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.Session, error) {
	start := time.Now()
	defer func() { metrics.LoginDuration.Observe(time.Since(start).Seconds()) }()

	creds, err := validation.ValidateLogin(in)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	account, err := s.repo.FindByUsername(ctx, creds.Username)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(creds.Password))
		return nil, s.fail(creds.Username, "unknown_user")
	case err != nil:
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(creds.Password)) != nil {
		return nil, s.fail(creds.Username, "bad_password")
	}
	if !account.IsActive {
		return nil, s.fail(creds.Username, "inactive")
	}

	session, err := s.openSession(ctx, account)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Str("account_id", account.ID).Str("session_id", session.ID).Msg("login succeeded")
	return session, nil
}

// fail records the real reason internally and returns the uniform error.
func (s *AuthService) fail(username, reason string) error {
	metrics.LoginsTotal.WithLabelValues("failure").Inc()
	s.logger.Info().Str("username", username).Str("reason", reason).Msg("login rejected")
	return domain.ErrAuthFailure
}

func (s *AuthService) openSession(ctx context.Context, account *domain.Account) (*domain.Session, error) {
	now := s.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Username:  account.Username,
		IsStaff:   account.IsStaff || account.IsSuperuser,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	claims := sessionClaims{
		Username: session.Username,
		Staff:    session.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   session.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	session.Token = token
	return session, nil
}

// Authenticate verifies a bearer token and returns its session when it has
// neither expired nor been revoked.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, domain.ErrUnauthorized
	}

	session, err := s.sessions.Get(ctx, claims.ID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if session.AccountID != claims.Subject || session.Expired(s.now()) {
		return nil, domain.ErrUnauthorized
	}

	// A deactivated account loses access even if revoking its sessions failed.
	account, err := s.repo.FindByID(ctx, session.AccountID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !account.IsActive {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

// Logout revokes one session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info().Str("session_id", sessionID).Msg("logged out")
	return nil
}
