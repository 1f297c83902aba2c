// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service orchestrates account lifecycle: registration, login, lookup, and
// token-based authentication. It is stateless and safe for concurrent use.
type Service struct {
	accounts AccountRepository
	roles    RoleRepository
	hasher   PasswordHasher
	tokens   *TokenService
	logger   *slog.Logger
}

// NewService creates a new account Service.
func NewService(accounts AccountRepository, roles RoleRepository, hasher PasswordHasher, tokens *TokenService) (*Service, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if roles == nil {
		return nil, oops.Errorf("roles repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token service is required")
	}
	return &Service{
		accounts: accounts,
		roles:    roles,
		hasher:   hasher,
		tokens:   tokens,
		logger:   slog.Default(),
	}, nil
}

// NewServiceWithLogger creates a new account Service with a custom logger.
func NewServiceWithLogger(accounts AccountRepository, roles RoleRepository, hasher PasswordHasher, tokens *TokenService, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	svc, err := NewService(accounts, roles, hasher, tokens)
	if err != nil {
		return nil, err
	}
	svc.logger = logger
	return svc, nil
}

// Register creates a new account. Username and password shape are validated
// before any store access; the username uniqueness pre-check is a fast path
// only - the store's unique index is the authoritative guard, and an insert
// conflict surfaces as ErrUsernameExists as well. roleID nil defaults to the
// baseline role.
func (s *Service) Register(ctx context.Context, username, password string, roleID *int32) (*Account, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check username").
			Wrap(err)
	}
	if exists {
		return nil, oops.Code("AUTH_USERNAME_EXISTS").
			With("username", username).
			Wrap(ErrUsernameExists)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	role := DefaultRoleID
	if roleID != nil {
		role = *roleID
	}

	account := NewAccount(username, hash, role)
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrUsernameExists) {
			// Lost the check-then-insert race; the unique index decided.
			return nil, oops.Code("AUTH_USERNAME_EXISTS").
				With("username", username).
				Wrap(ErrUsernameExists)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "account registered",
		"account_id", account.ID.String(),
		"role_id", account.RoleID)
	return account, nil
}

// Login verifies credentials and issues a session token. An unknown
// username and a wrong password collapse into the same ErrInvalidCredentials
// so the response carries no enumeration signal. Deactivated accounts are
// rejected distinctly, before the expensive hash verification.
func (s *Service) Login(ctx context.Context, username, password string) (*Account, string, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
		}
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get account by username").
			Wrap(err)
	}

	if !account.Active {
		return nil, "", oops.Code("AUTH_DEACTIVATED").Wrap(ErrDeactivated)
	}

	valid, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}
	if !valid {
		return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(account.ID, account.RoleID)
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "account logged in", "account_id", account.ID.String())
	return account, token, nil
}

// GetAccountInfo returns the account joined with its role name for display.
func (s *Service) GetAccountInfo(ctx context.Context, id ulid.ULID) (*AccountInfo, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_USER_NOT_FOUND").
				With("account_id", id.String()).
				Wrap(ErrNotFound)
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get account by id").
			Wrap(err)
	}

	role, err := s.roles.GetByID(ctx, account.RoleID)
	if err != nil {
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get role by id").
			With("role_id", account.RoleID).
			Wrap(err)
	}

	return &AccountInfo{
		ID:        account.ID,
		Username:  account.Username,
		RoleID:    account.RoleID,
		RoleName:  role.Name,
		Active:    account.Active,
		CreatedAt: account.CreatedAt,
	}, nil
}

// Authenticate resolves a bearer token to an account identifier and role.
// Thin pass-through to the token service, used by the transport boundary to
// establish caller identity per request.
func (s *Service) Authenticate(token string) (ulid.ULID, int32, error) {
	return s.tokens.Verify(token)
}

// ListRoles returns the role catalogue.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "list roles").
			Wrap(err)
	}
	return roles, nil
}

// UpdateRole changes an account's role.
func (s *Service) UpdateRole(ctx context.Context, id ulid.ULID, roleID int32) error {
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_ROLE_NOT_FOUND").
				With("role_id", roleID).
				Wrap(ErrNotFound)
		}
		return oops.Code("AUTH_UPDATE_ROLE_FAILED").
			With("operation", "get role by id").
			Wrap(err)
	}

	if err := s.accounts.UpdateRole(ctx, id, roleID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_USER_NOT_FOUND").
				With("account_id", id.String()).
				Wrap(ErrNotFound)
		}
		return oops.Code("AUTH_UPDATE_ROLE_FAILED").
			With("operation", "update account role").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "account role updated",
		"account_id", id.String(),
		"role_id", roleID)
	return nil
}

// Deactivate clears an account's active flag. Outstanding tokens remain
// valid until expiry; login is rejected from the next attempt on.
func (s *Service) Deactivate(ctx context.Context, id ulid.ULID) error {
	if err := s.accounts.Deactivate(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_USER_NOT_FOUND").
				With("account_id", id.String()).
				Wrap(ErrNotFound)
		}
		return oops.Code("AUTH_DEACTIVATE_FAILED").
			With("operation", "deactivate account").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "account deactivated", "account_id", id.String())
	return nil
}
