// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

// Package postgres implements the chat repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/malinatrash/msg/internal/chat"
)

// pool is the subset of pgxpool.Pool the repository uses. pgxmock's pool
// satisfies it, which keeps repository tests database-free.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// ChatRepository implements chat.Repository using PostgreSQL.
type ChatRepository struct {
	pool pool
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(pool pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

// CreateChat stores a chat and its creator membership in one transaction so
// a half-created chat can never be observed.
func (r *ChatRepository) CreateChat(ctx context.Context, c *chat.Chat, creator *chat.Member) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.Code("CHAT_CREATE_FAILED").
			With("operation", "begin transaction").
			Wrap(err)
	}
	defer func() { _ = tx.Rollback(ctx) }() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx, `
		INSERT INTO chats (id, name, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID.String(), c.Name, c.CreatedBy.String(), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return oops.Code("CHAT_CREATE_FAILED").
			With("operation", "insert chat").
			With("chat_id", c.ID.String()).
			Wrap(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO chat_members (id, chat_id, account_id, invited_by, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`, creator.ID.String(), creator.ChatID.String(), creator.AccountID.String(), nil, creator.JoinedAt)
	if err != nil {
		return oops.Code("CHAT_CREATE_FAILED").
			With("operation", "insert creator membership").
			With("chat_id", c.ID.String()).
			Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("CHAT_CREATE_FAILED").
			With("operation", "commit transaction").
			With("chat_id", c.ID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a chat by ID.
func (r *ChatRepository) GetByID(ctx context.Context, id ulid.ULID) (*chat.Chat, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, created_by, created_at, updated_at
		FROM chats
		WHERE id = $1
	`, id.String())

	c, err := scanChat(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CHAT_NOT_FOUND").
			With("id", id.String()).
			Wrap(chat.ErrChatNotFound)
	}
	if err != nil {
		return nil, oops.Code("CHAT_GET_BY_ID_FAILED").
			With("operation", "get chat by id").
			With("id", id.String()).
			Wrap(err)
	}
	return c, nil
}

// ListForAccount returns the chats the account is a member of, joined
// through the membership table.
func (r *ChatRepository) ListForAccount(ctx context.Context, accountID ulid.ULID) ([]chat.Chat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.created_by, c.created_at, c.updated_at
		FROM chats c
		JOIN chat_members m ON m.chat_id = c.id
		WHERE m.account_id = $1
		ORDER BY c.created_at
	`, accountID.String())
	if err != nil {
		return nil, oops.Code("CHAT_LIST_FAILED").
			With("operation", "list chats for account").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var chats []chat.Chat
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("CHAT_LIST_FAILED").
			With("operation", "iterate chats").
			Wrap(err)
	}
	return chats, nil
}

// AddMember inserts a membership edge. A conflict with the unique
// (chat_id, account_id) index surfaces as chat.ErrAlreadyMember.
func (r *ChatRepository) AddMember(ctx context.Context, member *chat.Member) error {
	var invitedBy *string
	if member.InvitedBy != nil {
		s := member.InvitedBy.String()
		invitedBy = &s
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat_members (id, chat_id, account_id, invited_by, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`, member.ID.String(), member.ChatID.String(), member.AccountID.String(), invitedBy, member.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("CHAT_MEMBER_EXISTS").
				With("chat_id", member.ChatID.String()).
				With("account_id", member.AccountID.String()).
				Wrap(chat.ErrAlreadyMember)
		}
		return oops.Code("CHAT_ADD_MEMBER_FAILED").
			With("operation", "insert member").
			With("chat_id", member.ChatID.String()).
			Wrap(err)
	}
	return nil
}

// MemberExists reports whether the account is a current member of the chat.
// This is the point read gating every chat operation.
func (r *ChatRepository) MemberExists(ctx context.Context, chatID, accountID ulid.ULID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM chat_members WHERE chat_id = $1 AND account_id = $2)
	`, chatID.String(), accountID.String()).Scan(&exists)
	if err != nil {
		return false, oops.Code("CHAT_MEMBER_CHECK_FAILED").
			With("operation", "check member exists").
			With("chat_id", chatID.String()).
			Wrap(err)
	}
	return exists, nil
}

// ListMembers returns all membership rows for a chat in join order.
func (r *ChatRepository) ListMembers(ctx context.Context, chatID ulid.ULID) ([]chat.Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, chat_id, account_id, invited_by, joined_at
		FROM chat_members
		WHERE chat_id = $1
		ORDER BY joined_at
	`, chatID.String())
	if err != nil {
		return nil, oops.Code("CHAT_LIST_MEMBERS_FAILED").
			With("operation", "list members for chat").
			With("chat_id", chatID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var members []chat.Member
	for rows.Next() {
		var (
			idStr        string
			chatIDStr    string
			accountIDStr string
			invitedByStr *string
			joinedAt     time.Time
		)
		if err := rows.Scan(&idStr, &chatIDStr, &accountIDStr, &invitedByStr, &joinedAt); err != nil {
			return nil, oops.Code("CHAT_MEMBER_SCAN_FAILED").
				With("operation", "scan member").
				Wrap(err)
		}

		member := chat.Member{JoinedAt: joinedAt}
		if member.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.Code("CHAT_MEMBER_INVALID_ID").
				With("id", idStr).
				Wrap(err)
		}
		if member.ChatID, err = ulid.Parse(chatIDStr); err != nil {
			return nil, oops.Code("CHAT_MEMBER_INVALID_ID").
				With("chat_id", chatIDStr).
				Wrap(err)
		}
		if member.AccountID, err = ulid.Parse(accountIDStr); err != nil {
			return nil, oops.Code("CHAT_MEMBER_INVALID_ID").
				With("account_id", accountIDStr).
				Wrap(err)
		}
		if invitedByStr != nil {
			parsed, err := ulid.Parse(*invitedByStr)
			if err != nil {
				return nil, oops.Code("CHAT_MEMBER_INVALID_ID").
					With("invited_by", *invitedByStr).
					Wrap(err)
			}
			member.InvitedBy = &parsed
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("CHAT_LIST_MEMBERS_FAILED").
			With("operation", "iterate members").
			Wrap(err)
	}
	return members, nil
}

// AddMessage stores a message.
func (r *ChatRepository) AddMessage(ctx context.Context, message *chat.Message) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (id, chat_id, sender_id, encrypted_content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, message.ID.String(), message.ChatID.String(), message.SenderID.String(), message.Ciphertext, message.CreatedAt)
	if err != nil {
		return oops.Code("MESSAGE_CREATE_FAILED").
			With("operation", "insert message").
			With("chat_id", message.ChatID.String()).
			Wrap(err)
	}
	return nil
}

// ListMessages returns a page of messages for a chat, newest first.
func (r *ChatRepository) ListMessages(ctx context.Context, chatID ulid.ULID, limit, offset int) ([]chat.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, chat_id, sender_id, encrypted_content, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, chatID.String(), limit, offset)
	if err != nil {
		return nil, oops.Code("MESSAGE_LIST_FAILED").
			With("operation", "list messages for chat").
			With("chat_id", chatID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("MESSAGE_LIST_FAILED").
			With("operation", "iterate messages").
			Wrap(err)
	}
	return messages, nil
}

// GetMessageByID retrieves a single message.
func (r *ChatRepository) GetMessageByID(ctx context.Context, id ulid.ULID) (*chat.Message, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, chat_id, sender_id, encrypted_content, created_at
		FROM messages
		WHERE id = $1
	`, id.String())

	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MESSAGE_NOT_FOUND").
			With("id", id.String()).
			Wrap(chat.ErrMessageNotFound)
	}
	if err != nil {
		return nil, oops.Code("MESSAGE_GET_BY_ID_FAILED").
			With("operation", "get message by id").
			With("id", id.String()).
			Wrap(err)
	}
	return msg, nil
}

func scanChat(row pgx.Row) (*chat.Chat, error) {
	var (
		idStr        string
		name         string
		createdByStr string
		createdAt    time.Time
		updatedAt    time.Time
	)
	err := row.Scan(&idStr, &name, &createdByStr, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("CHAT_SCAN_FAILED").
			With("operation", "scan chat").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("CHAT_INVALID_ID").With("id", idStr).Wrap(err)
	}
	createdBy, err := ulid.Parse(createdByStr)
	if err != nil {
		return nil, oops.Code("CHAT_INVALID_ID").With("created_by", createdByStr).Wrap(err)
	}

	return &chat.Chat{
		ID:        id,
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func scanMessage(row pgx.Row) (*chat.Message, error) {
	var (
		idStr      string
		chatIDStr  string
		senderStr  string
		ciphertext string
		createdAt  time.Time
	)
	err := row.Scan(&idStr, &chatIDStr, &senderStr, &ciphertext, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("MESSAGE_SCAN_FAILED").
			With("operation", "scan message").
			Wrap(err)
	}

	msg := &chat.Message{Ciphertext: ciphertext, CreatedAt: createdAt}
	if msg.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("MESSAGE_INVALID_ID").With("id", idStr).Wrap(err)
	}
	if msg.ChatID, err = ulid.Parse(chatIDStr); err != nil {
		return nil, oops.Code("MESSAGE_INVALID_ID").With("chat_id", chatIDStr).Wrap(err)
	}
	if msg.SenderID, err = ulid.Parse(senderStr); err != nil {
		return nil, oops.Code("MESSAGE_INVALID_ID").With("sender_id", senderStr).Wrap(err)
	}
	return msg, nil
}

// Compile-time interface check.
var _ chat.Repository = (*ChatRepository)(nil)
