// Copyright (c) 2026 Keygate. All rights reserved.
// Author: dang.hoanq.dev@gmail.com

/*
Package auth implements the core identity and token authority.

It handles everything from user registration and secure password hashing to
session lifecycle management via paired access/refresh JWTs.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Refresh, rotation).
  - Repository: Abstracted interfaces for Postgres (Users) and Redis (OTP codes).
  - Security: Leverages bcrypt hashing and dual-secret HMAC-signed JWTs.

The package ensures that identity data remains consistent and secure
throughout the platform's lifecycle.
*/
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/danghoanq/keygate/internal/platform/apperr"
	"github.com/danghoanq/keygate/internal/platform/sec"
	"github.com/danghoanq/keygate/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and verifying token pairs.
//
// # Key Separation
//
// The provider signs access and refresh tokens with independent secrets and
// expiry policies, so a refresh token can never pass access verification.
type TokenProvider interface {
	// IssuePair creates a signed access/refresh token pair for the given user.
	IssuePair(userID, username, email string) (*sec.TokenPair, error)

	// VerifyRefreshToken checks signature and expiry of a refresh token and
	// returns its subject (the user ID).
	VerifyRefreshToken(token string) (string, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, rotation,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	otpRepository  OTPRepository
	tokenProvider  TokenProvider
	emailSender    EmailSender
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	otpRepo OTPRepository,
	tokenProv TokenProvider,
	sender EmailSender,
) *Service {
	return &Service{
		userRepository: userRepo,
		otpRepository:  otpRepo,
		tokenProvider:  tokenProv,
		emailSender:    sender,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Usernames and emails are case-normalized to lowercase before any
lookup or persistence. The plaintext password is hashed before first
persistence and never stored.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity (password hash and refresh token never serialized)
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// Verify identifier uniqueness up front for a client-safe Conflict err.
	// The unique indexes in the store remain the authority under races.
	_, err := service.userRepository.FindByUsernameOrEmail(context, username, email)
	if err == nil {
		return nil, apperr.Conflict("User with this email or username already exists")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Can be Username or Email
	Password string
}

/*
Login validates user credentials and issues a fresh token pair.

Description: Verifies identity, performs constant-time password comparison,
issues the pair, and persists the refresh token on the user record —
overwriting any prior value, so a second login silently invalidates the
first session's refresh token.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *sec.TokenPair: Transport-ready session credentials
  - *User: The authenticated account
  - err: ErrInvalidCredentials or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*sec.TokenPair, *User, error) {

	// Flexible login: a single identifier matches by username OR email.
	// Both are stored lowercased, so one normalized value covers both columns.
	login := strings.ToLower(strings.TrimSpace(input.Login))
	user, err := service.userRepository.FindByUsernameOrEmail(context, login, login)

	// Unknown user and wrong password share one outcome to prevent enumeration.
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	// Issue the paired access + refresh tokens
	pair, err := service.tokenProvider.IssuePair(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Persist the refresh token on the identity: NO_SESSION/ACTIVE -> ACTIVE.
	if err := service.userRepository.UpdateRefreshToken(context, user.ID, &pair.RefreshToken); err != nil {
		return nil, nil, fmt.Errorf("auth_service_session_persist_failed: %w", err)
	}

	return pair, user, nil
}

/*
Logout clears the stored refresh token for the authenticated identity.

Description: Transitions the account to NO_SESSION. Every previously issued
refresh token is rejected from this point on. The operation is idempotent —
logging out twice succeeds both times.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Persistence failures only
*/
func (service *Service) Logout(context context.Context, userID string) error {
	if err := service.userRepository.UpdateRefreshToken(context, userID, nil); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Session Rotation

/*
Refresh implements the refresh-token rotation mechanism.

Description: A presented refresh token is honored only if it is (a)
cryptographically valid and unexpired, and (b) byte-equal to the token
currently stored for its subject. On success a new pair is issued and the
stored token is replaced in a single conditional write, so of two concurrent
refresh calls presenting the same token exactly one wins; the loser — like
any rotated, logged-out, or forged token — gets ErrTokenRejected with no
state change.

Parameters:
  - context: context.Context
  - presented: string (candidate refresh token from cookie or body)

Returns:
  - *sec.TokenPair: New session credentials
  - err: ErrTokenRejected or storage failures
*/
func (service *Service) Refresh(context context.Context, presented string) (*sec.TokenPair, error) {

	// 1. Cryptographic half: signature + expiry, resolved to a subject.
	userID, err := service.tokenProvider.VerifyRefreshToken(presented)
	if err != nil {
		return nil, ErrTokenRejected
	}

	// 2. The subject must still exist.
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, ErrTokenRejected
	}

	// Cheap pre-check; the conditional write below is the authority.
	if user.RefreshToken == nil || *user.RefreshToken != presented {
		return nil, ErrTokenRejected
	}

	// 3. Issue the replacement pair.
	pair, err := service.tokenProvider.IssuePair(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_issue_failed: %w", err)
	}

	// 4. Rotate: replace the stored token only where it still equals the
	// presented one. A concurrent rotation or logout makes this fail.
	if err := service.userRepository.RotateRefreshToken(context, user.ID, presented, pair.RefreshToken); err != nil {
		return nil, err
	}

	return pair, nil
}

// # Password Management

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Rejects a no-op change before touching the store, verifies the
old password, and re-hashes the new one. The stored refresh token is left
untouched — an existing session survives a password change.

Parameters:
  - context: context.Context
  - userID: string
  - oldPassword: string
  - newPassword: string

Returns:
  - err: ErrSamePassword, ErrInvalidCredentials, or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, oldPassword, newPassword string) error {

	// Reject the no-op first; no store access needed for this outcome.
	if oldPassword == newPassword {
		return ErrSamePassword
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !sec.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	return nil
}

// # Password Recovery

/*
ForgotPassword initiates the reset flow by emailing a one-time code.

Description: Generates a 6-digit code, stores it in the volatile OTP store
keyed by email (5-minute TTL, replacing any prior code), and delivers it via
the email collaborator. An unknown email produces a silent success so the
endpoint cannot be used to probe for accounts.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: DELIVERY_FAILED or storage failures
*/
func (service *Service) ForgotPassword(context context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	// NOTE: An unknown address returns success without sending anything, to
	// prevent user enumeration.
	if _, err := service.userRepository.FindByEmail(context, email); err != nil {
		return nil
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("auth_service_otp_generation_failed: %w", err)
	}

	// Persist before delivery: a code the user receives must be redeemable.
	if err := service.otpRepository.Set(context, email, code, OTPTTL); err != nil {
		return fmt.Errorf("auth_service_otp_store_failed: %w", err)
	}

	if err := service.emailSender.Send(context, email, otpEmailSubject, buildOTPEmail(code)); err != nil {
		return deliveryFailed(err)
	}

	return nil
}

/*
ResetPassword completes the recovery flow.

Description: Verifies the presented code against the stored one, consumes it
(single use), re-hashes the new password, and clears the stored refresh
token so every existing session must log in again with the new credentials.

Parameters:
  - context: context.Context
  - email: string
  - code: string
  - newPassword: string

Returns:
  - err: ErrCodeRejected or storage failures
*/
func (service *Service) ResetPassword(context context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	stored, err := service.otpRepository.Get(context, email)
	if err != nil || stored != code {
		return ErrCodeRejected
	}

	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return ErrCodeRejected
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, user.ID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security cleanup: consume the code and revoke the active session.
	_ = service.otpRepository.Delete(context, email)
	_ = service.userRepository.UpdateRefreshToken(context, user.ID, nil)

	return nil
}
