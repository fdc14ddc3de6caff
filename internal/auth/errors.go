// Copyright (c) 2026 Keygate. All rights reserved.
// Author: dang.hoanq.dev@gmail.com

package auth

import (
	"net/http"

	"github.com/danghoanq/keygate/internal/platform/apperr"
)

// # Outcome Taxonomy
//
// Every negative outcome of the authentication flows has exactly one machine
// code. None of these are used for internal control flow — they are the
// values a transport maps onto status codes and client behavior.

var (
	// ErrInvalidCredentials covers both "unknown user" and "wrong password".
	// The two cases are deliberately indistinguishable to the caller so the
	// login endpoint cannot be used to enumerate accounts.
	ErrInvalidCredentials = apperr.New("INVALID_CREDENTIALS", "Invalid login credentials", http.StatusUnauthorized)

	// ErrTokenRejected is returned when a presented refresh token fails any
	// part of validation: bad signature, expired, unknown subject, or not
	// byte-equal to the stored value (already rotated or logged out). The
	// client must re-authenticate.
	ErrTokenRejected = apperr.New("TOKEN_REJECTED", "Refresh token is invalid, expired, or already used", http.StatusUnauthorized)

	// ErrSamePassword rejects a password change where the new password equals
	// the old one.
	ErrSamePassword = apperr.New("SAME_PASSWORD", "New password must be different from the current password", http.StatusConflict)

	// ErrCodeRejected is returned when a password-reset code is absent,
	// expired, or does not match.
	ErrCodeRejected = apperr.New("CODE_REJECTED", "Reset code is invalid or expired", http.StatusUnauthorized)
)

// deliveryFailed wraps an email relay failure as a client-visible 502.
func deliveryFailed(cause error) *apperr.AppError {
	return apperr.BadGateway("DELIVERY_FAILED", "Could not deliver the one-time code", cause)
}
