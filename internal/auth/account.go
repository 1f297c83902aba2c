// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username and password validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 100
	MinPasswordLength = 8
)

// AdminRoleID identifies the seeded administrator role. Holders may change
// other accounts' roles and deactivate accounts.
const AdminRoleID int32 = 2

// DefaultRoleID is the baseline role assigned when registration does not
// specify one. Roles are seeded by migration and read-only from this core.
const DefaultRoleID int32 = 1

// usernameRegex matches usernames containing only letters, digits,
// underscores, and hyphens.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Account is a registered identity with credentials and a role.
// The password is stored only as a one-way salted hash.
type Account struct {
	ID           ulid.ULID
	Username     string
	PasswordHash string
	RoleID       int32
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role is a named authorization tier attached to accounts.
type Role struct {
	ID          int32
	Name        string
	Description *string
	CreatedAt   time.Time
}

// AccountInfo is the display projection of an account joined with its role
// name. It never carries the password hash.
type AccountInfo struct {
	ID        ulid.ULID
	Username  string
	RoleID    int32
	RoleName  string
	Active    bool
	CreatedAt time.Time
}

// NewAccount creates an account record with a fresh ID and timestamps.
// The caller is responsible for having validated username and hash.
func NewAccount(username, passwordHash string, roleID int32) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		RoleID:       roleID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ValidateUsername checks username shape: length 3-100, charset
// [A-Za-z0-9_-]. Uniqueness is a separate, store-backed concern.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Wrapf(ErrInvalidUsername, "username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Wrapf(ErrInvalidUsername, "username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").
			Wrapf(ErrInvalidUsername, "username may only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

// ValidatePassword checks password shape before any hashing work.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return oops.Code("AUTH_INVALID_PASSWORD").
			With("min", MinPasswordLength).
			Wrapf(ErrInvalidPassword, "password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// AccountRepository manages account persistence.
type AccountRepository interface {
	// Create stores a new account. A username conflict surfaces as
	// ErrUsernameExists.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByUsername retrieves an account by exact username match.
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// ExistsByUsername reports whether an account with the exact username
	// exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// UpdateRole changes an account's role.
	UpdateRole(ctx context.Context, id ulid.ULID, roleID int32) error

	// Deactivate clears the active flag. Accounts are never hard-deleted.
	Deactivate(ctx context.Context, id ulid.ULID) error
}

// RoleRepository reads the role catalogue.
type RoleRepository interface {
	// GetByID retrieves a role by ID.
	GetByID(ctx context.Context, id int32) (*Role, error)

	// List returns all roles.
	List(ctx context.Context) ([]Role, error)
}
