// Copyright (c) 2026 Keygate. All rights reserved.
// Author: dang.hoanq.dev@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// # Uniqueness
//
// Implementations must enforce username and email uniqueness at the storage
// layer; Create surfaces violations as a CONFLICT error.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsernameOrEmail returns the account matching either identifier.

		Parameters:
		  - context: context.Context
		  - username: string (already lowercased)
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByUsernameOrEmail(context context.Context, username, email string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Uniqueness conflicts or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		UpdateRefreshToken overwrites the stored refresh token unconditionally.
		A nil token clears the field (logout).

		Parameters:
		  - context: context.Context
		  - userID: string
		  - token: *string (nil to clear)

		Returns:
		  - error: Persistence failures
	*/
	UpdateRefreshToken(context context.Context, userID string, token *string) error

	/*
		RotateRefreshToken swaps the stored refresh token from current to next
		as a single conditional write: the update applies only where the stored
		value still equals current. Of two concurrent refresh calls presenting
		the same token, exactly one wins.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - current: string (the presented token)
		  - next: string (the replacement token)

		Returns:
		  - error: ErrTokenRejected if the stored value no longer matches,
		    otherwise persistence failures
	*/
	RotateRefreshToken(context context.Context, userID, current, next string) error
}

// # Volatile Data Access

// OTPRepository defines the contract for storing volatile password-reset codes.
//
// Codes are keyed by email, expire after a short TTL, and are consumed
// (deleted) on first successful use.
type OTPRepository interface {

	/*
		Set stores a reset code for an email address for a limited duration.

		Parameters:
		  - context: context.Context
		  - email: string
		  - code: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, email, code string, ttl time.Duration) error

	/*
		Get retrieves the reset code stored for an email address.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - string: The stored code
		  - error: Retrieval failures, including absent/expired codes
	*/
	Get(context context.Context, email string) (string, error)

	/*
		Delete removes a reset code after successful use.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, email string) error
}

// # External Collaborators

// EmailSender is the narrow contract for outbound mail delivery.
//
// A delivery failure is an error result, never a crash.
type EmailSender interface {
	Send(context context.Context, to, subject, htmlBody string) error
}
