// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the token lifetime used when configuration does not
// override it.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the payload embedded in a session token.
type Claims struct {
	AccountID string `json:"account_id"`
	RoleID    int32  `json:"role_id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, stateless session tokens.
// Tokens are self-contained: validity is determined purely by signature and
// the embedded expiry, with no server-side session store. The tradeoff is
// that a token cannot be revoked before it expires.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService signing with the given shared
// secret. The secret is immutable after construction and shared by every
// service instance in the process.
func NewTokenService(secret []byte, ttl time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, oops.Code("AUTH_TOKEN_CONFIG").Errorf("signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured token lifetime.
func (t *TokenService) TTL() time.Duration {
	return t.ttl
}

// Issue mints a token embedding the account identifier and role, valid from
// now until now plus the configured lifetime. HS256 keyed-hash signature.
func (t *TokenService) Issue(accountID ulid.ULID, roleID int32) (string, error) {
	now := time.Now()
	claims := &Claims{
		AccountID: accountID.String(),
		RoleID:    roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_ISSUE_FAILED").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return signed, nil
}

// Verify checks signature integrity and expiry and returns the embedded
// account identifier and role. Malformed, forged, and expired tokens all
// fail as ErrTokenInvalid; expiry is judged against the server clock, never
// a client-supplied one.
func (t *TokenService) Verify(token string) (ulid.ULID, int32, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ulid.ULID{}, 0, oops.Code("AUTH_TOKEN_INVALID").
			With("reason", err.Error()).
			Wrap(ErrTokenInvalid)
	}
	if !parsed.Valid {
		return ulid.ULID{}, 0, oops.Code("AUTH_TOKEN_INVALID").Wrap(ErrTokenInvalid)
	}

	accountID, err := ulid.Parse(claims.AccountID)
	if err != nil {
		return ulid.ULID{}, 0, oops.Code("AUTH_TOKEN_INVALID").
			With("reason", "malformed account id").
			Wrap(ErrTokenInvalid)
	}
	return accountID, claims.RoleID, nil
}
