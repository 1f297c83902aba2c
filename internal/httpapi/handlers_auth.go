// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package httpapi

import (
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/malinatrash/msg/internal/auth"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		return
	}

	account, err := s.auth.Register(r.Context(), req.Username, req.Password, req.RoleID)
	if err != nil {
		s.recordRegistration("failure")
		s.respondError(w, err)
		return
	}

	s.recordRegistration("success")
	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		return
	}

	account, token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.recordLogin("failure")
		s.respondError(w, err)
		return
	}

	s.recordLogin("success")
	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		User:  toAccountResponse(account),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, caller Caller) {
	info, err := s.auth.GetAccountInfo(r.Context(), caller.AccountID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountInfoResponse(info))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, _ Caller) {
	userID, ok := pathULID(w, r, "user_id")
	if !ok {
		return
	}

	info, err := s.auth.GetAccountInfo(r.Context(), userID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountInfoResponse(info))
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request, _ Caller) {
	roles, err := s.auth.ListRoles(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleResponse{ID: role.ID, Name: role.Name, Description: role.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request, caller Caller) {
	if !requireAdmin(w, caller) {
		return
	}
	userID, ok := pathULID(w, r, "user_id")
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		return
	}

	if err := s.auth.UpdateRole(r.Context(), userID, req.RoleID); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request, caller Caller) {
	if !requireAdmin(w, caller) {
		return
	}
	userID, ok := pathULID(w, r, "user_id")
	if !ok {
		return
	}

	if err := s.auth.Deactivate(r.Context(), userID); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireAdmin rejects callers that do not hold the administrator role.
func requireAdmin(w http.ResponseWriter, caller Caller) bool {
	if caller.RoleID != auth.AdminRoleID {
		writeError(w, http.StatusForbidden, "AUTH_FORBIDDEN", "administrator role required")
		return false
	}
	return true
}

// pathULID parses a ULID path segment, writing a not-found response when the
// value is not a valid identifier. Invalid IDs are indistinguishable from
// absent resources on purpose.
func pathULID(w http.ResponseWriter, r *http.Request, name string) (ulid.ULID, bool) {
	id, err := ulid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
		return ulid.ULID{}, false
	}
	return id, true
}

func (s *Server) recordRegistration(outcome string) {
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}
