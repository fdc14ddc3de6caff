// Copyright (c) 2026 Keygate. All rights reserved.
// Author: dang.hoanq.dev@gmail.com

/*
Package auth implements the user identity and token lifecycle layer.

It defines the core domain entity (User) and the logic for registration,
credential verification, token issuance, and refresh-token rotation.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
external dependencies and encapsulates all business rules related to user
identity.
*/
package auth

import (
	"time"
)

// # Domain Entities

// User represents a registered account.
//
// # Session State
//
// RefreshToken holds the single currently valid refresh token for this
// account, or nil when no session is active. Rotation overwrites it; logout
// clears it. A presented refresh token is honored only when it is byte-equal
// to this stored value, which is what revokes every previously issued copy
// without a revocation list.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	RefreshToken *string   `json:"-"` // Current refresh token. Omitted for security.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldLogin           = "login"
	FieldCode            = "code"
	FieldOldPassword     = "old_password"
	FieldNewPassword     = "new_password"
	FieldRefreshToken    = "refresh_token"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldUser            = "user"
	FieldMessage         = "message"
)
