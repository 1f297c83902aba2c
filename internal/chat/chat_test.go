// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package chat

import (
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateChatName(t *testing.T) {
	tests := []struct {
		name     string
		chatName string
		wantErr  bool
	}{
		{name: "simple name", chatName: "general", wantErr: false},
		{name: "name with spaces", chatName: "project planning", wantErr: false},
		{name: "maximum length", chatName: strings.Repeat("a", 255), wantErr: false},
		{name: "empty", chatName: "", wantErr: true},
		{name: "whitespace only", chatName: "   ", wantErr: true},
		{name: "too long", chatName: strings.Repeat("a", 256), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChatName(tt.chatName)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidChatName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewChat(t *testing.T) {
	creator := ulid.Make()
	c := NewChat("general", creator)

	assert.NotZero(t, c.ID)
	assert.Equal(t, "general", c.Name)
	assert.Equal(t, creator, c.CreatedBy)
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)
}

func TestNewMember(t *testing.T) {
	chatID := ulid.Make()
	accountID := ulid.Make()

	t.Run("creator has no inviter", func(t *testing.T) {
		m := NewMember(chatID, accountID, nil)
		assert.Equal(t, chatID, m.ChatID)
		assert.Equal(t, accountID, m.AccountID)
		assert.Nil(t, m.InvitedBy)
	})

	t.Run("invitee records the inviter", func(t *testing.T) {
		inviter := ulid.Make()
		m := NewMember(chatID, accountID, &inviter)
		require.NotNil(t, m.InvitedBy)
		assert.Equal(t, inviter, *m.InvitedBy)
	})
}
