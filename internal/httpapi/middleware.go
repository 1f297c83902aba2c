// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Caller is the authenticated identity resolved from the bearer token.
type Caller struct {
	AccountID ulid.ULID
	RoleID    int32
}

// authedHandler is a handler that requires an authenticated caller.
type authedHandler func(w http.ResponseWriter, r *http.Request, caller Caller)

// authenticated extracts the bearer token, resolves the caller through the
// account service, and rejects the request when the token is absent or
// invalid.
func (s *Server) authenticated(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "AUTH_TOKEN_INVALID", "missing bearer token")
			return
		}

		accountID, roleID, err := s.auth.Authenticate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "AUTH_TOKEN_INVALID", "invalid token")
			return
		}

		next(w, r, Caller{AccountID: accountID, RoleID: roleID})
	}
}

// statusRecorder captures the response status for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request latency by route and status.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next(rec, r)
		s.metrics.RequestDuration.
			WithLabelValues(route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	}
}
