package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/lemon/task-api/internal/core/domain"
	"github.com/lemon/task-api/internal/core/policy"
	"github.com/lemon/task-api/internal/core/ports"
)

// AccountService implements account administration. Unlike tasks, the
// authorization check runs before the lookup: a USER probing another id
// gets 403 whether or not that account exists.
type AccountService struct {
	accounts ports.AccountRepository
	hasher   ports.PasswordHasher
	audit    auditor
	log      zerolog.Logger
}

func NewAccountService(accounts ports.AccountRepository, hasher ports.PasswordHasher, audit ports.AuditRecorder, log zerolog.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		hasher:   hasher,
		audit:    newAuditor(audit),
		log:      log,
	}
}

// List is restricted to admins.
func (s *AccountService) List(ctx context.Context, p *domain.Principal) ([]*domain.Account, error) {
	if err := s.enforce(p, policy.RequireRole(domain.RoleAdmin), "accounts"); err != nil {
		return nil, err
	}
	accounts, err := s.accounts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) Get(ctx context.Context, p *domain.Principal, id int64) (*domain.Account, error) {
	if err := s.enforceSelf(p, id); err != nil {
		return nil, err
	}
	return s.accounts.FindByID(ctx, id)
}

// Update renames the account and, when in.Password is set, replaces its
// password hash.
func (s *AccountService) Update(ctx context.Context, p *domain.Principal, id int64, in ports.AccountUpdate) (*domain.Account, error) {
	if err := s.enforceSelf(p, id); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != account.Username {
		taken, err := s.accounts.ExistsByUsername(ctx, in.Username)
		if err != nil {
			return nil, fmt.Errorf("update account: check username: %w", err)
		}
		if taken {
			return nil, domain.ErrDuplicateUsername
		}
		account.Username = in.Username
	}
	if in.Password != "" {
		if err := domain.ValidatePassword(in.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("update account: hash password: %w", err)
		}
		account.PasswordHash = hash
	}
	account.UpdatedAt = timestamp()

	updated, err := s.accounts.Save(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	s.log.Info().Int64("account_id", updated.ID).Int64("actor_id", p.ID).Msg("account updated")
	return updated, nil
}

func (s *AccountService) Delete(ctx context.Context, p *domain.Principal, id int64) error {
	if err := s.enforceSelf(p, id); err != nil {
		return err
	}
	if _, err := s.accounts.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.accounts.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	s.log.Info().Int64("account_id", id).Int64("actor_id", p.ID).Msg("account deleted")
	return nil
}

func (s *AccountService) enforceSelf(p *domain.Principal, id int64) error {
	return s.enforce(p, policy.RequireSelfOrRole(id, domain.RoleAdmin), "account:"+strconv.FormatInt(id, 10))
}

func (s *AccountService) enforce(p *domain.Principal, req policy.Requirement, resource string) error {
	err := policy.Enforce(p, req)
	if err != nil && p != nil {
		s.audit.record(ports.AuditAccessDenied, p.Username, p.ID, resource)
	}
	return err
}
