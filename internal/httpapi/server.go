// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

// Package httpapi exposes the service facade over HTTP. It owns request
// decoding, bearer-token authentication, and the mapping from error codes
// to wire statuses; all business rules live in the services it fronts.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/malinatrash/msg/internal/auth"
	"github.com/malinatrash/msg/internal/chat"
	"github.com/malinatrash/msg/internal/observability"
)

// Server is the HTTP API server.
type Server struct {
	addr       string
	auth       *auth.Service
	chat       *chat.Service
	metrics    *observability.Metrics
	logger     *slog.Logger
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates an API server. metrics may be nil, in which case no
// metrics are recorded.
func NewServer(addr string, authSvc *auth.Service, chatSvc *chat.Service, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if authSvc == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if chatSvc == nil {
		return nil, oops.Errorf("chat service is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Server{
		addr:    addr,
		auth:    authSvc,
		chat:    chatSvc,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/register", s.instrument("register", s.handleRegister))
	mux.HandleFunc("POST /auth/login", s.instrument("login", s.handleLogin))

	mux.HandleFunc("GET /auth/me", s.instrument("me", s.authenticated(s.handleMe)))
	mux.HandleFunc("GET /users/{user_id}", s.instrument("get_user", s.authenticated(s.handleGetUser)))
	mux.HandleFunc("GET /roles", s.instrument("list_roles", s.authenticated(s.handleListRoles)))
	mux.HandleFunc("PUT /users/{user_id}/role", s.instrument("update_role", s.authenticated(s.handleUpdateRole)))
	mux.HandleFunc("POST /users/{user_id}/deactivate", s.instrument("deactivate", s.authenticated(s.handleDeactivate)))

	mux.HandleFunc("POST /chats", s.instrument("create_chat", s.authenticated(s.handleCreateChat)))
	mux.HandleFunc("GET /chats", s.instrument("list_chats", s.authenticated(s.handleListChats)))
	mux.HandleFunc("GET /chats/{chat_id}", s.instrument("get_chat", s.authenticated(s.handleGetChat)))
	mux.HandleFunc("POST /chats/{chat_id}/invite", s.instrument("invite", s.authenticated(s.handleInvite)))
	mux.HandleFunc("GET /chats/{chat_id}/members", s.instrument("list_members", s.authenticated(s.handleListMembers)))
	mux.HandleFunc("POST /chats/{chat_id}/messages", s.instrument("send_message", s.authenticated(s.handleSendMessage)))
	mux.HandleFunc("GET /chats/{chat_id}/messages", s.instrument("list_messages", s.authenticated(s.handleListMessages)))

	return mux
}

// Start begins serving the API. The returned channel receives asynchronous
// server errors and is closed on graceful stop.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown api server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the bound listen address, or empty if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
