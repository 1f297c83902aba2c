// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package httpapi

import (
	"errors"
	"net/http"

	"github.com/samber/oops"

	"github.com/malinatrash/msg/internal/auth"
	"github.com/malinatrash/msg/internal/chat"
	"github.com/malinatrash/msg/pkg/errutil"
)

// statusFor classifies a service error into a wire status. Internal errors
// (the default) never expose their underlying message.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidUsername),
		errors.Is(err, auth.ErrInvalidPassword),
		errors.Is(err, chat.ErrInvalidChatName):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrDeactivated),
		errors.Is(err, chat.ErrNotMember):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrNotFound),
		errors.Is(err, chat.ErrChatNotFound),
		errors.Is(err, chat.ErrUserNotFound),
		errors.Is(err, chat.ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrUsernameExists),
		errors.Is(err, chat.ErrAlreadyMember):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorCode extracts the stable machine-readable code attached at the
// failure site.
func errorCode(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code := oopsErr.Code(); code != "" {
			return code
		}
	}
	return "INTERNAL"
}

// respondError maps a service error onto the wire. Client errors carry the
// service's code and message; internal errors surface only a generic code
// so storage and crypto details never leak.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		errutil.LogError(s.logger, "internal error", err)
		writeError(w, status, "INTERNAL", "internal error")
		return
	}

	if s.metrics != nil && errors.Is(err, chat.ErrNotMember) {
		s.metrics.MembershipDenials.Inc()
	}
	writeError(w, status, errorCode(err), err.Error())
}
