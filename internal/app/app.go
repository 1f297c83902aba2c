// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

// Package app is the composition root: it wires the store, repositories,
// and both use-case services behind a single facade consumed by the
// transport layer.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/malinatrash/msg/internal/auth"
	authpg "github.com/malinatrash/msg/internal/auth/postgres"
	"github.com/malinatrash/msg/internal/chat"
	chatpg "github.com/malinatrash/msg/internal/chat/postgres"
	"github.com/malinatrash/msg/internal/config"
	"github.com/malinatrash/msg/internal/store"
)

// App owns the shared process state: the connection pool and one immutable
// instance of each service. Everything is constructed once at startup and
// never mutated afterwards, so it is safe to share across request workers.
type App struct {
	pool *pgxpool.Pool
	auth *auth.Service
	chat *chat.Service
}

// New connects to the store and builds the service facade.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, oops.Errorf("config is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}

	pool, err := store.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, err
	}

	accounts := authpg.NewAccountRepository(pool)
	roles := authpg.NewRoleRepository(pool)
	chats := chatpg.NewChatRepository(pool)

	tokens, err := auth.NewTokenService([]byte(cfg.Token.Secret), cfg.Token.TTL)
	if err != nil {
		pool.Close()
		return nil, err
	}

	authSvc, err := auth.NewServiceWithLogger(accounts, roles, auth.NewArgon2idHasher(), tokens, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	chatSvc, err := chat.NewServiceWithLogger(chats, accounts, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &App{
		pool: pool,
		auth: authSvc,
		chat: chatSvc,
	}, nil
}

// Auth returns the account service.
func (a *App) Auth() *auth.Service {
	return a.auth
}

// Chat returns the messaging access service.
func (a *App) Chat() *chat.Service {
	return a.chat
}

// Ready reports whether the store answers a ping; used by the readiness
// probe.
func (a *App) Ready() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return a.pool.Ping(ctx) == nil
}

// Close releases the connection pool.
func (a *App) Close() {
	a.pool.Close()
}
