// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/malinatrash/msg/internal/auth"
	"github.com/malinatrash/msg/internal/chat"
)

// fakeAccounts is an in-memory account store backing end-to-end handler
// tests. It implements both the auth repository and the chat account
// directory.
type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[ulid.ULID]*auth.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: make(map[ulid.ULID]*auth.Account)}
}

func (f *fakeAccounts) Create(_ context.Context, account *auth.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Username == account.Username {
			return auth.ErrUsernameExists
		}
	}
	cp := *account
	f.accounts[account.ID] = &cp
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id ulid.ULID) (*auth.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (*auth.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (f *fakeAccounts) ExistsByUsername(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccounts) UpdateRole(_ context.Context, id ulid.ULID, roleID int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return auth.ErrNotFound
	}
	a.RoleID = roleID
	return nil
}

func (f *fakeAccounts) Deactivate(_ context.Context, id ulid.ULID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return auth.ErrNotFound
	}
	a.Active = false
	return nil
}

// fakeRoles serves a fixed role catalogue.
type fakeRoles struct {
	roles map[int32]auth.Role
}

func newFakeRoles() *fakeRoles {
	desc := "baseline access"
	return &fakeRoles{roles: map[int32]auth.Role{
		auth.DefaultRoleID: {ID: auth.DefaultRoleID, Name: "user", Description: &desc},
		auth.AdminRoleID:   {ID: auth.AdminRoleID, Name: "admin"},
	}}
}

func (f *fakeRoles) GetByID(_ context.Context, id int32) (*auth.Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &r, nil
}

func (f *fakeRoles) List(_ context.Context) ([]auth.Role, error) {
	out := make([]auth.Role, 0, len(f.roles))
	for _, r := range f.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeChats is an in-memory chat store.
type fakeChats struct {
	mu       sync.Mutex
	chats    map[ulid.ULID]*chat.Chat
	members  []chat.Member
	messages []chat.Message
}

func newFakeChats() *fakeChats {
	return &fakeChats{chats: make(map[ulid.ULID]*chat.Chat)}
}

func (f *fakeChats) CreateChat(_ context.Context, c *chat.Chat, creator *chat.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.chats[c.ID] = &cp
	f.members = append(f.members, *creator)
	return nil
}

func (f *fakeChats) GetByID(_ context.Context, id ulid.ULID) (*chat.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.chats[id]
	if !ok {
		return nil, chat.ErrChatNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeChats) ListForAccount(_ context.Context, accountID ulid.ULID) ([]chat.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Chat
	for _, m := range f.members {
		if m.AccountID == accountID {
			if c, ok := f.chats[m.ChatID]; ok {
				out = append(out, *c)
			}
		}
	}
	return out, nil
}

func (f *fakeChats) AddMember(_ context.Context, member *chat.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.ChatID == member.ChatID && m.AccountID == member.AccountID {
			return chat.ErrAlreadyMember
		}
	}
	f.members = append(f.members, *member)
	return nil
}

func (f *fakeChats) MemberExists(_ context.Context, chatID, accountID ulid.ULID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.ChatID == chatID && m.AccountID == accountID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChats) ListMembers(_ context.Context, chatID ulid.ULID) ([]chat.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Member
	for _, m := range f.members {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeChats) AddMessage(_ context.Context, message *chat.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeChats) ListMessages(_ context.Context, chatID ulid.ULID, limit, offset int) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []chat.Message
	for _, m := range f.messages {
		if m.ChatID == chatID {
			all = append(all, m)
		}
	}
	// Newest first, insertion order as the tiebreaker.
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeChats) GetMessageByID(_ context.Context, id ulid.ULID) (*chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, chat.ErrMessageNotFound
}

// testAPI bundles a server handler with direct access to the underlying
// services for fixture setup.
type testAPI struct {
	handler  http.Handler
	auth     *auth.Service
	chat     *chat.Service
	accounts *fakeAccounts
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	accounts := newFakeAccounts()
	tokens, err := auth.NewTokenService([]byte("test-secret"), time.Hour)
	require.NoError(t, err)
	authSvc, err := auth.NewService(accounts, newFakeRoles(), auth.NewArgon2idHasher(), tokens)
	require.NoError(t, err)
	chatSvc, err := chat.NewService(newFakeChats(), accounts)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := NewServer("127.0.0.1:0", authSvc, chatSvc, nil, logger)
	require.NoError(t, err)

	return &testAPI{
		handler:  srv.Handler(),
		auth:     authSvc,
		chat:     chatSvc,
		accounts: accounts,
	}
}

// do issues a request against the handler, JSON-encoding body when non-nil
// and attaching token as a bearer credential when non-empty.
func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// register creates an account through the service directly and returns it
// with a valid token.
func (a *testAPI) register(t *testing.T, username string, roleID *int32) (*auth.Account, string) {
	t.Helper()

	account, err := a.auth.Register(context.Background(), username, "sw0rdfish-pass", roleID)
	require.NoError(t, err)
	_, token, err := a.auth.Login(context.Background(), username, "sw0rdfish-pass")
	require.NoError(t, err)
	return account, token
}

// decodeBody decodes a recorded JSON response into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
