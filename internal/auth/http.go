// Copyright (c) 2026 Keygate. All rights reserved.
// Author: dang.hoanq.dev@gmail.com

/*
HTTP delivery layer for the authentication lifecycle.

The handler translates between the wire and the domain [Service]:
  - Decodes and validates JSON payloads before any business logic runs.
  - Injects and clears the access/refresh token cookies.
  - Maps domain errors to HTTP responses via the respond package.

No business rule lives here; everything below a status code belongs to [Service].
*/
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/danghoanq/keygate/internal/platform/apperr"
	"github.com/danghoanq/keygate/internal/platform/constants"
	"github.com/danghoanq/keygate/internal/platform/middleware"
	requestutil "github.com/danghoanq/keygate/internal/platform/request"
	"github.com/danghoanq/keygate/internal/platform/respond"
	"github.com/danghoanq/keygate/internal/platform/sec"
	"github.com/danghoanq/keygate/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the user lifecycle entry points
// (Registration, Login, Rotation, Password Recovery).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register        : Creates a new account.
//   - POST /login           : Authenticates and sets the token cookies.
//   - POST /refresh         : Rotates the refresh token.
//   - POST /forgot-password : Emails a one-time reset code.
//   - POST /reset-password  : Redeems a reset code for a new password.
//   - POST /logout          : Clears the active session (authenticated).
//   - POST /change-password : Updates the password (authenticated).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Post("/change-password", handler.changePassword)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// identifier resolves the login identifier from the accepted aliases.
func (r loginRequest) identifier() string {
	if r.Login != "" {
		return r.Login
	}
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input, checks for identity conflicts, and persists
a new user profile to the database. The response never carries the password
hash or any token field.

Request:
  - Body: registerRequest (Username, Email, Password)

Response:
  - 201: User: Created user profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, UsernameMinLength).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		Custom(FieldPassword, strings.EqualFold(input.Password, input.Username), "Must not match the username")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, issues the access/refresh pair, and
injects both as secure cookies. The tokens are additionally echoed in the
JSON payload for non-browser clients.

Request:
  - Body: loginRequest (Login|Username|Email, Password)

Response:
  - 200: Tokens and user profile (password hash never serialized)
  - 401: INVALID_CREDENTIALS
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	login := input.identifier()
	if login == "" || input.Password == "" {
		respond.Error(writer, request, validate.RequiredError(FieldLogin, "Login and password are required"))
		return
	}

	pair, user, err := handler.authService.Login(request.Context(), LoginInput{
		Login:    login,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setTokenCookies(writer, pair)

	respond.OK(writer, map[string]any{
		FieldUser:         user,
		FieldAccessToken:  pair.AccessToken,
		FieldRefreshToken: pair.RefreshToken,
	})
}

/*
Refresh issues a new token pair using a valid refresh token.

POST /api/v1/auth/refresh

Description: Reads the candidate refresh token from the cookie, with a JSON
body fallback, and rotates the session. On success the previous refresh
token is permanently rejected.

Response:
  - 200: New access/refresh credentials
  - 401: UNAUTHORIZED (no candidate token) or TOKEN_REJECTED
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	presented := ""

	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		presented = cookie.Value
	}

	// Body fallback for clients that do not hold cookies.
	if presented == "" {
		var input refreshRequest
		if err := requestutil.DecodeJSON(request, &input); err == nil {
			presented = input.RefreshToken
		}
	}

	if presented == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token"))
		return
	}

	pair, err := handler.authService.Refresh(request.Context(), presented)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setTokenCookies(writer, pair)

	respond.OK(writer, map[string]any{
		FieldAccessToken:  pair.AccessToken,
		FieldRefreshToken: pair.RefreshToken,
		FieldTokenType:    "Bearer",
		FieldExpiresIn:    int64(time.Until(pair.AccessTokenExpiresAt) / time.Second),
	})
}

/*
Logout terminates the current user session.

POST /api/v1/auth/logout

Description: Clears the stored refresh token for the authenticated identity
and expires both cookies. Safe to call repeatedly.

Response:
  - 204: No Content: Session terminated
  - 401: UNAUTHORIZED: Authentication required
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearTokenCookies(writer)
	respond.NoContent(writer)
}

/*
ChangePassword updates the authenticated user's password.

POST /api/v1/auth/change-password

Description: Verifies the current password before applying a new one. The
active session is not revoked by this operation.

Request:
  - Body: changePasswordRequest (OldPassword, NewPassword)

Response:
  - 200: Success: Password changed
  - 401: UNAUTHORIZED or INVALID_CREDENTIALS
  - 409: SAME_PASSWORD
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldOldPassword, input.OldPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, PasswordMinLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(
		request.Context(),
		claims.UserID,
		input.OldPassword,
		input.NewPassword,
	)

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password changed successfully",
	})
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/auth/forgot-password

Description: Emails a 6-digit one-time code to the address if an account
exists. The response is identical either way.

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: Success: Generic delivery message
  - 400: ErrInvalidJSON: Invalid email format
  - 502: DELIVERY_FAILED: Mail relay failure
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ForgotPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this email is registered, a one-time code has been sent.",
	})
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/auth/reset-password

Description: Validates the one-time code and updates the user's password.
The code is single-use and any active session is revoked.

Request:
  - Body: resetPasswordRequest (Email, Code, Password)

Response:
  - 200: Success: Password updated
  - 401: CODE_REJECTED: Bad or expired code
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldCode, input.Code).
		OTP(FieldCode, input.Code).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Email, input.Code, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

// # Cookie Helpers

// setTokenCookies injects both tokens as Secure, HttpOnly cookies.
func setTokenCookies(writer http.ResponseWriter, pair *sec.TokenPair) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    pair.AccessToken,
		Path:     constants.AccessTokenCookiePath,
		Expires:  pair.AccessTokenExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    pair.RefreshToken,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  pair.RefreshTokenExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearTokenCookies expires both token cookies on the client.
func clearTokenCookies(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    "",
		Path:     constants.AccessTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
