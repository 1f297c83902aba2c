// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

// Package chat provides membership-gated chat, invite, and message
// operations. Every read or write on a chat requires the caller to be a
// current member; chat existence is never revealed to non-members.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MaxChatNameLength bounds chat names.
const MaxChatNameLength = 255

// Message pagination bounds. Callers control limit and offset; the limit is
// defaulted when absent and clamped server-side so a caller cannot demand an
// unbounded page.
const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
)

// Chat is a named group conversation container.
type Chat struct {
	ID        ulid.ULID
	Name      string
	CreatedBy ulid.ULID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member is a membership edge granting an account access to a chat.
// InvitedBy is nil for the chat creator.
type Member struct {
	ID        ulid.ULID
	ChatID    ulid.ULID
	AccountID ulid.ULID
	InvitedBy *ulid.ULID
	JoinedAt  time.Time
}

// MemberInfo is the display projection of a membership row.
type MemberInfo struct {
	AccountID ulid.ULID
	Username  string
	JoinedAt  time.Time
}

// Message is an opaque ciphertext unit authored by a member. The plaintext
// is never seen by this service.
type Message struct {
	ID         ulid.ULID
	ChatID     ulid.ULID
	SenderID   ulid.ULID
	Ciphertext string
	CreatedAt  time.Time
}

// NewChat creates a chat record with a fresh ID and timestamps.
func NewChat(name string, createdBy ulid.ULID) *Chat {
	now := time.Now().UTC()
	return &Chat{
		ID:        ulid.Make(),
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewMember creates a membership edge. invitedBy is nil for creators.
func NewMember(chatID, accountID ulid.ULID, invitedBy *ulid.ULID) *Member {
	return &Member{
		ID:        ulid.Make(),
		ChatID:    chatID,
		AccountID: accountID,
		InvitedBy: invitedBy,
		JoinedAt:  time.Now().UTC(),
	}
}

// ValidateChatName requires a name that is non-blank after trimming and at
// most MaxChatNameLength characters. The name is stored as given.
func ValidateChatName(name string) error {
	if strings.TrimSpace(name) == "" {
		return oops.Code("CHAT_INVALID_NAME").
			Wrapf(ErrInvalidChatName, "chat name cannot be empty")
	}
	if len(name) > MaxChatNameLength {
		return oops.Code("CHAT_INVALID_NAME").
			With("max", MaxChatNameLength).
			Wrapf(ErrInvalidChatName, "chat name must be at most %d characters", MaxChatNameLength)
	}
	return nil
}

// Repository manages chat, membership, and message persistence.
type Repository interface {
	// CreateChat stores a chat and its creator membership atomically.
	CreateChat(ctx context.Context, chat *Chat, creator *Member) error

	// GetByID retrieves a chat by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Chat, error)

	// ListForAccount returns the chats the account is a member of.
	ListForAccount(ctx context.Context, accountID ulid.ULID) ([]Chat, error)

	// AddMember inserts a membership edge. A duplicate (chat, account) pair
	// surfaces as ErrAlreadyMember.
	AddMember(ctx context.Context, member *Member) error

	// MemberExists reports whether the account is a current member.
	MemberExists(ctx context.Context, chatID, accountID ulid.ULID) (bool, error)

	// ListMembers returns all membership rows for a chat.
	ListMembers(ctx context.Context, chatID ulid.ULID) ([]Member, error)

	// AddMessage stores a message.
	AddMessage(ctx context.Context, message *Message) error

	// ListMessages returns messages for a chat, newest first.
	ListMessages(ctx context.Context, chatID ulid.ULID, limit, offset int) ([]Message, error)

	// GetMessageByID retrieves a single message.
	GetMessageByID(ctx context.Context, id ulid.ULID) (*Message, error)
}
