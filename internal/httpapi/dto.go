// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/malinatrash/msg/internal/auth"
	"github.com/malinatrash/msg/internal/chat"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	RoleID   *int32 `json:"role_id,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  accountResponse `json:"user"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	RoleID    int32     `json:"role_id"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type accountInfoResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	RoleID    int32     `json:"role_id"`
	RoleName  string    `json:"role_name"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type roleResponse struct {
	ID          int32   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type updateRoleRequest struct {
	RoleID int32 `json:"role_id"`
}

type createChatRequest struct {
	Name string `json:"name"`
}

type chatResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type inviteRequest struct {
	Username string `json:"username"`
}

type memberResponse struct {
	AccountID string    `json:"account_id"`
	Username  string    `json:"username"`
	JoinedAt  time.Time `json:"joined_at"`
}

type sendMessageRequest struct {
	EncryptedContent string `json:"encrypted_content"`
}

type messageResponse struct {
	ID               string    `json:"id"`
	ChatID           string    `json:"chat_id"`
	SenderID         string    `json:"sender_id"`
	EncryptedContent string    `json:"encrypted_content"`
	CreatedAt        time.Time `json:"created_at"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toAccountResponse(a *auth.Account) accountResponse {
	return accountResponse{
		ID:        a.ID.String(),
		Username:  a.Username,
		RoleID:    a.RoleID,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}

func toAccountInfoResponse(info *auth.AccountInfo) accountInfoResponse {
	return accountInfoResponse{
		ID:        info.ID.String(),
		Username:  info.Username,
		RoleID:    info.RoleID,
		RoleName:  info.RoleName,
		Active:    info.Active,
		CreatedAt: info.CreatedAt,
	}
}

func toChatResponse(c *chat.Chat) chatResponse {
	return chatResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		CreatedBy: c.CreatedBy.String(),
		CreatedAt: c.CreatedAt,
	}
}

func toMessageResponse(m *chat.Message) messageResponse {
	return messageResponse{
		ID:               m.ID.String(),
		ChatID:           m.ChatID.String(),
		SenderID:         m.SenderID.String(),
		EncryptedContent: m.Ciphertext,
		CreatedAt:        m.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error means the client went away
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v) //nolint:wrapcheck // handlers report a uniform bad-request error
}
