// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package auth

import "errors"

// Sentinel errors for the account and token services. Callers classify with
// errors.Is; the oops codes attached at the failure site carry the stable
// machine-readable code exposed at the boundary.
var (
	// ErrNotFound is returned when a requested account or role does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUsernameExists is returned when registering a username that is taken.
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidUsername is returned when a username fails shape validation.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidPassword is returned when a password fails shape validation.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidCredentials is returned on login when the username is unknown
	// or the password does not match. The two cases are deliberately
	// indistinguishable to avoid username enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDeactivated is returned on login for a deactivated account.
	ErrDeactivated = errors.New("account is deactivated")

	// ErrTokenInvalid is returned for malformed, forged, or expired tokens.
	ErrTokenInvalid = errors.New("invalid token")
)
