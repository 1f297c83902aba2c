// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package chat

import "errors"

// Sentinel errors for the messaging access service.
var (
	// ErrNotMember is the uniform denial for callers who are not current
	// members. It deliberately does not distinguish a nonexistent chat from
	// one the caller lacks access to.
	ErrNotMember = errors.New("not a member of this chat")

	// ErrChatNotFound is returned when a chat does not exist. Because the
	// membership check runs first, only members can observe it.
	ErrChatNotFound = errors.New("chat not found")

	// ErrUserNotFound is returned when an invite target does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyMember is returned when inviting an existing member.
	ErrAlreadyMember = errors.New("user is already a member")

	// ErrInvalidChatName is returned when a chat name fails validation.
	ErrInvalidChatName = errors.New("invalid chat name")

	// ErrMessageNotFound is returned when a message does not exist.
	ErrMessageNotFound = errors.New("message not found")
)
