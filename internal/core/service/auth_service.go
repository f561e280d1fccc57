package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lemon/task-api/internal/core/domain"
	"github.com/lemon/task-api/internal/core/ports"
	"github.com/lemon/task-api/internal/pkg/metrics"
)

// AuthService implements registration and login.
type AuthService struct {
	accounts ports.AccountRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
	guard    ports.RegistrationGuard
	audit    auditor
	log      zerolog.Logger
}

// NewAuthService wires the account lifecycle. guard and audit may be nil.
func NewAuthService(
	accounts ports.AccountRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	guard ports.RegistrationGuard,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		guard:    guard,
		audit:    newAuditor(audit),
		log:      log,
	}
}

// Register creates a USER account and returns a token for it. The existence
// check runs before any write and before the password rules, so a taken
// username is always reported as a duplicate. The store's unique index is the
// backstop for concurrent registrations that slip past the check, including
// those that find the guard held.
func (s *AuthService) Register(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	if s.guard != nil {
		token, acquired, err := s.guard.Acquire(ctx, username)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("username", username).Msg("registration guard unavailable, relying on unique index")
		case !acquired:
			// The holder may still fail, so only the store can say the name is taken.
			s.log.Debug().Str("username", username).Msg("registration guard held, relying on unique index")
		default:
			defer func() {
				if err := s.guard.Release(context.WithoutCancel(ctx), username, token); err != nil {
					s.log.Warn().Err(err).Str("username", username).Msg("failed to release registration guard")
				}
			}()
		}
	}

	exists, err := s.accounts.ExistsByUsername(ctx, username)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: check username: %w", err)
	}
	if exists {
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return nil, domain.ErrDuplicateUsername
	}
	if err := domain.ValidatePassword(password); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	account, err := s.createAccount(ctx, username, password, domain.RoleUser)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return nil, err
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	result, err := s.issue(account)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.audit.record(ports.AuditAccountRegistered, account.Username, account.ID, "")
	s.log.Info().Int64("account_id", account.ID).Str("username", account.Username).Msg("account registered")

	return result, nil
}

// Login checks credentials and issues a fresh token. Unknown usernames, wrong
// passwords and disabled accounts all yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("login: find account: %w", err)
		}
		s.hasher.VerifyDummy(password)
		return nil, s.loginFailed(username, 0, "unknown_username")
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, s.loginFailed(username, account.ID, "wrong_password")
	}
	if !account.Enabled {
		return nil, s.loginFailed(username, account.ID, "account_disabled")
	}

	result, err := s.issue(account)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.audit.record(ports.AuditLoginSucceeded, account.Username, account.ID, "")

	return result, nil
}

// EnsureAdmin creates an ADMIN account for username unless one with that
// username already exists. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	exists, err := s.accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	if exists {
		return false, nil
	}
	if err := domain.ValidatePassword(password); err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}

	account, err := s.createAccount(ctx, username, password, domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return false, nil
		}
		return false, fmt.Errorf("ensure admin: %w", err)
	}

	s.log.Info().Int64("account_id", account.ID).Str("username", account.Username).Msg("admin account bootstrapped")
	return true, nil
}

func (s *AuthService) createAccount(ctx context.Context, username, password string, role domain.Role) (*domain.Account, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := timestamp()
	return s.accounts.Save(ctx, &domain.Account{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *AuthService) issue(account *domain.Account) (*ports.AuthResult, error) {
	issued, err := s.tokens.Issue(account.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.AuthResult{
		Token:     issued.Token,
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
	}, nil
}

func (s *AuthService) loginFailed(username string, accountID int64, reason string) error {
	metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
	s.audit.record(ports.AuditLoginFailed, username, accountID, reason)
	s.log.Debug().Str("username", username).Str("reason", reason).Msg("login rejected")
	return domain.ErrInvalidCredentials
}
