// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAccountRepository is a testify mock for AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) UpdateRole(ctx context.Context, id ulid.ULID, roleID int32) error {
	args := m.Called(ctx, id, roleID)
	return args.Error(0)
}

func (m *MockAccountRepository) Deactivate(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRoleRepository is a testify mock for RoleRepository.
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) GetByID(ctx context.Context, id int32) (*Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Role), args.Error(1)
}

func (m *MockRoleRepository) List(ctx context.Context) ([]Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Role), args.Error(1)
}

// MockPasswordHasher is a testify mock for PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

// newTestService wires a Service over fresh mocks and a real token service.
func newTestService(t *testing.T) (*Service, *MockAccountRepository, *MockRoleRepository, *MockPasswordHasher) {
	t.Helper()

	accounts := new(MockAccountRepository)
	roles := new(MockRoleRepository)
	hasher := new(MockPasswordHasher)

	tokens, err := NewTokenService([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	svc, err := NewService(accounts, roles, hasher, tokens)
	require.NoError(t, err)

	return svc, accounts, roles, hasher
}

// activeAccount builds a ready-to-use account fixture.
func activeAccount(username string) *Account {
	return NewAccount(username, "$argon2id$stored", DefaultRoleID)
}
