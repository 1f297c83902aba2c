// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/malinatrash/msg/internal/auth"
)

// AccountDirectory is the read-only slice of the account store the chat
// service needs: resolving invite targets by username and member display
// names by ID.
type AccountDirectory interface {
	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error)

	// GetByUsername retrieves an account by exact username match.
	GetByUsername(ctx context.Context, username string) (*auth.Account, error)
}

// Service enforces chat-membership authorization ahead of every chat,
// invite, and message operation. Stateless and safe for concurrent use.
type Service struct {
	chats    Repository
	accounts AccountDirectory
	logger   *slog.Logger
}

// NewService creates a new chat Service.
func NewService(chats Repository, accounts AccountDirectory) (*Service, error) {
	if chats == nil {
		return nil, oops.Errorf("chat repository is required")
	}
	if accounts == nil {
		return nil, oops.Errorf("account directory is required")
	}
	return &Service{
		chats:    chats,
		accounts: accounts,
		logger:   slog.Default(),
	}, nil
}

// NewServiceWithLogger creates a new chat Service with a custom logger.
func NewServiceWithLogger(chats Repository, accounts AccountDirectory, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	svc, err := NewService(chats, accounts)
	if err != nil {
		return nil, err
	}
	svc.logger = logger
	return svc, nil
}

// requireMember runs the membership point read that gates every chat
// operation. An unknown chat and a known chat without the caller both fail
// as ErrNotMember, keeping chat existence invisible to outsiders.
func (s *Service) requireMember(ctx context.Context, chatID, accountID ulid.ULID) error {
	member, err := s.chats.MemberExists(ctx, chatID, accountID)
	if err != nil {
		return oops.Code("CHAT_MEMBERSHIP_CHECK_FAILED").
			With("operation", "check membership").
			With("chat_id", chatID.String()).
			Wrap(err)
	}
	if !member {
		return oops.Code("CHAT_NOT_MEMBER").
			With("chat_id", chatID.String()).
			Wrap(ErrNotMember)
	}
	return nil
}

// CreateChat creates a chat and adds the creator as its first member in a
// single transaction; creator membership has no inviter.
func (s *Service) CreateChat(ctx context.Context, name string, creatorID ulid.ULID) (*Chat, error) {
	if err := ValidateChatName(name); err != nil {
		return nil, err
	}

	c := NewChat(name, creatorID)
	creator := NewMember(c.ID, creatorID, nil)
	if err := s.chats.CreateChat(ctx, c, creator); err != nil {
		return nil, oops.Code("CHAT_CREATE_FAILED").
			With("operation", "create chat").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "chat created",
		"chat_id", c.ID.String(),
		"creator_id", creatorID.String())
	return c, nil
}

// ListMyChats returns the chats the caller belongs to. No membership check
// is needed: the query itself is scoped to the caller.
func (s *Service) ListMyChats(ctx context.Context, accountID ulid.ULID) ([]Chat, error) {
	chats, err := s.chats.ListForAccount(ctx, accountID)
	if err != nil {
		return nil, oops.Code("CHAT_LIST_FAILED").
			With("operation", "list chats for account").
			Wrap(err)
	}
	return chats, nil
}

// GetChat returns a chat, membership-gated. Membership is checked before
// existence: ErrChatNotFound is reachable only for a dangling membership
// row, never for outsiders.
func (s *Service) GetChat(ctx context.Context, chatID, callerID ulid.ULID) (*Chat, error) {
	if err := s.requireMember(ctx, chatID, callerID); err != nil {
		return nil, err
	}

	c, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrChatNotFound) {
			return nil, oops.Code("CHAT_NOT_FOUND").
				With("chat_id", chatID.String()).
				Wrap(ErrChatNotFound)
		}
		return nil, oops.Code("CHAT_GET_FAILED").
			With("operation", "get chat by id").
			Wrap(err)
	}
	return c, nil
}

// Invite adds the account with the given username to a chat, recording the
// inviter. The inviter must already be a member. The already-member
// pre-check gives a precise error; the unique index on (chat, account) is
// the authoritative guard, so losing the race also reports ErrAlreadyMember.
func (s *Service) Invite(ctx context.Context, chatID ulid.ULID, username string, inviterID ulid.ULID) error {
	if err := s.requireMember(ctx, chatID, inviterID); err != nil {
		return err
	}

	target, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return oops.Code("CHAT_USER_NOT_FOUND").
				With("username", username).
				Wrap(ErrUserNotFound)
		}
		return oops.Code("CHAT_INVITE_FAILED").
			With("operation", "resolve invitee").
			Wrap(err)
	}

	already, err := s.chats.MemberExists(ctx, chatID, target.ID)
	if err != nil {
		return oops.Code("CHAT_INVITE_FAILED").
			With("operation", "check invitee membership").
			Wrap(err)
	}
	if already {
		return oops.Code("CHAT_ALREADY_MEMBER").
			With("chat_id", chatID.String()).
			Wrap(ErrAlreadyMember)
	}

	member := NewMember(chatID, target.ID, &inviterID)
	if err := s.chats.AddMember(ctx, member); err != nil {
		if errors.Is(err, ErrAlreadyMember) {
			return oops.Code("CHAT_ALREADY_MEMBER").
				With("chat_id", chatID.String()).
				Wrap(ErrAlreadyMember)
		}
		return oops.Code("CHAT_INVITE_FAILED").
			With("operation", "insert member").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "member invited",
		"chat_id", chatID.String(),
		"account_id", target.ID.String(),
		"inviter_id", inviterID.String())
	return nil
}

// ListMembers returns the chat's members with usernames, membership-gated.
// Rows whose account lookup fails are skipped rather than failing the whole
// listing.
func (s *Service) ListMembers(ctx context.Context, chatID, callerID ulid.ULID) ([]MemberInfo, error) {
	if err := s.requireMember(ctx, chatID, callerID); err != nil {
		return nil, err
	}

	members, err := s.chats.ListMembers(ctx, chatID)
	if err != nil {
		return nil, oops.Code("CHAT_LIST_MEMBERS_FAILED").
			With("operation", "list members for chat").
			Wrap(err)
	}

	infos := make([]MemberInfo, 0, len(members))
	for _, m := range members {
		account, err := s.accounts.GetByID(ctx, m.AccountID)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping member with unresolvable account",
				"chat_id", chatID.String(),
				"account_id", m.AccountID.String())
			continue
		}
		infos = append(infos, MemberInfo{
			AccountID: m.AccountID,
			Username:  account.Username,
			JoinedAt:  m.JoinedAt,
		})
	}
	return infos, nil
}

// SendMessage stores an opaque ciphertext message, membership-gated. The
// content is never interpreted.
func (s *Service) SendMessage(ctx context.Context, chatID, senderID ulid.ULID, ciphertext string) (*Message, error) {
	if err := s.requireMember(ctx, chatID, senderID); err != nil {
		return nil, err
	}

	msg := &Message{
		ID:         ulid.Make(),
		ChatID:     chatID,
		SenderID:   senderID,
		Ciphertext: ciphertext,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.chats.AddMessage(ctx, msg); err != nil {
		return nil, oops.Code("CHAT_SEND_FAILED").
			With("operation", "insert message").
			Wrap(err)
	}
	return msg, nil
}

// ListMessages returns a newest-first page of messages, membership-gated.
// A non-positive limit defaults to DefaultMessageLimit and any limit is
// clamped to MaxMessageLimit; a negative offset is treated as zero.
func (s *Service) ListMessages(ctx context.Context, chatID, callerID ulid.ULID, limit, offset int) ([]Message, error) {
	if err := s.requireMember(ctx, chatID, callerID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		limit = MaxMessageLimit
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.chats.ListMessages(ctx, chatID, limit, offset)
	if err != nil {
		return nil, oops.Code("CHAT_LIST_MESSAGES_FAILED").
			With("operation", "list messages for chat").
			Wrap(err)
	}
	return messages, nil
}
