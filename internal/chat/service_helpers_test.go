// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package chat

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/malinatrash/msg/internal/auth"
)

// MockRepository is a testify mock for Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateChat(ctx context.Context, c *Chat, creator *Member) error {
	args := m.Called(ctx, c, creator)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id ulid.ULID) (*Chat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Chat), args.Error(1)
}

func (m *MockRepository) ListForAccount(ctx context.Context, accountID ulid.ULID) ([]Chat, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Chat), args.Error(1)
}

func (m *MockRepository) AddMember(ctx context.Context, member *Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockRepository) MemberExists(ctx context.Context, chatID, accountID ulid.ULID) (bool, error) {
	args := m.Called(ctx, chatID, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListMembers(ctx context.Context, chatID ulid.ULID) ([]Member, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Member), args.Error(1)
}

func (m *MockRepository) AddMessage(ctx context.Context, message *Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockRepository) ListMessages(ctx context.Context, chatID ulid.ULID, limit, offset int) ([]Message, error) {
	args := m.Called(ctx, chatID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Message), args.Error(1)
}

func (m *MockRepository) GetMessageByID(ctx context.Context, id ulid.ULID) (*Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Message), args.Error(1)
}

// MockAccountDirectory is a testify mock for AccountDirectory.
type MockAccountDirectory struct {
	mock.Mock
}

func (m *MockAccountDirectory) GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Account), args.Error(1)
}

func (m *MockAccountDirectory) GetByUsername(ctx context.Context, username string) (*auth.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Account), args.Error(1)
}

// newTestService wires a Service over fresh mocks.
func newTestService(t *testing.T) (*Service, *MockRepository, *MockAccountDirectory) {
	t.Helper()

	chats := new(MockRepository)
	accounts := new(MockAccountDirectory)

	svc, err := NewService(chats, accounts)
	require.NoError(t, err)

	return svc, chats, accounts
}
