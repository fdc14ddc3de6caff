// Copyright (c) 2026 Keygate. All rights reserved.
// Author: dang.hoanq.dev@gmail.com

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/danghoanq/keygate/internal/platform/middleware"
	"github.com/danghoanq/keygate/internal/platform/sec"
)

// # Harness
//
// The handler is mounted behind the real Authenticate middleware, backed by
// the in-memory user store from the service tests and a miniredis OTP store,
// so requests exercise the full decode-validate-execute-respond path.

type httpFixture struct {
	server *httptest.Server
	mailer *capturingSender
}

type capturingSender struct {
	lastBody string
}

func (s *capturingSender) Send(_ context.Context, _ string, _ string, htmlBody string) error {
	s.lastBody = htmlBody
	return nil
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()

	tokens, err := sec.NewTokenService(
		"test-access-secret", "test-refresh-secret", "keygate.test",
		15*time.Minute, 720*time.Hour,
	)
	require.NoError(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mailer := &capturingSender{}
	service := NewService(
		newMemoryUserRepository(),
		NewOTPRepository(client),
		tokens,
		mailer,
	)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokens))
	router.Mount("/api/v1/auth", NewHandler(service).Routes())

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &httpFixture{server: server, mailer: mailer}
}

// postJSON issues a POST with a JSON body plus optional bearer token.
func (f *httpFixture) postJSON(t *testing.T, path, bearer string, body any) (*http.Response, map[string]any) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, f.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

// registerAndLogin provisions an account over HTTP and returns the token pair.
func (f *httpFixture) registerAndLogin(t *testing.T, username, email, password string) (access, refresh string) {
	t.Helper()

	resp, _ := f.postJSON(t, "/api/v1/auth/register", "", map[string]string{
		"username": username, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := f.postJSON(t, "/api/v1/auth/login", "", map[string]string{
		"login": username, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	return data["access_token"].(string), data["refresh_token"].(string)
}

// # Tests

/*
TestHTTP_RegisterValidation verifies field-level rejection before the service runs.
*/
func TestHTTP_RegisterValidation(t *testing.T) {
	f := newHTTPFixture(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing_everything", map[string]string{}},
		{"short_username", map[string]string{"username": "al", "email": "a@example.com", "password": "password-123"}},
		{"bad_email", map[string]string{"username": "alice", "email": "nope", "password": "password-123"}},
		{"short_password", map[string]string{"username": "alice", "email": "a@example.com", "password": "short"}},
		{"password_matches_username", map[string]string{"username": "alexandria", "email": "a@example.com", "password": "Alexandria"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.postJSON(t, "/api/v1/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION_ERROR", body["code"])
		})
	}
}

/*
TestHTTP_RegisterAndLogin verifies the happy path and payload hygiene.
*/
func TestHTTP_RegisterAndLogin(t *testing.T) {
	f := newHTTPFixture(t)

	resp, body := f.postJSON(t, "/api/v1/auth/register", "", map[string]string{
		"username": "Alice", "email": "alice@example.com", "password": "password-123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := body["data"].(map[string]any)
	assert.Equal(t, "alice", created["username"])
	assert.Equal(t, "alice@example.com", created["email"])

	// Secrets never appear in any serialized form of the account.
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "hash")

	resp, body = f.postJSON(t, "/api/v1/auth/login", "", map[string]string{
		"login": "alice", "password": "password-123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["refresh_token"])
	assert.NotNil(t, data["user"])

	// Both token cookies are set.
	cookies := resp.Cookies()
	names := make([]string, 0, len(cookies))
	for _, c := range cookies {
		names = append(names, c.Name)
		assert.True(t, c.HttpOnly, "cookie %s must be HttpOnly", c.Name)
	}
	assert.Contains(t, names, "access_token")
	assert.Contains(t, names, "refresh_token")
}

/*
TestHTTP_LoginFailureIsOpaque verifies bad credentials yield one uniform 401.
*/
func TestHTTP_LoginFailureIsOpaque(t *testing.T) {
	f := newHTTPFixture(t)
	f.registerAndLogin(t, "alice", "alice@example.com", "password-123")

	for _, body := range []map[string]string{
		{"login": "alice", "password": "wrong-password"},
		{"login": "ghost", "password": "password-123"},
	} {
		resp, decoded := f.postJSON(t, "/api/v1/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "INVALID_CREDENTIALS", decoded["code"])
	}
}

/*
TestHTTP_LoginMissingCredentials verifies the pre-service guard on empty input.
*/
func TestHTTP_LoginMissingCredentials(t *testing.T) {
	f := newHTTPFixture(t)

	for _, body := range []map[string]string{
		{},
		{"login": "alice"},
		{"password": "password-123"},
	} {
		resp, decoded := f.postJSON(t, "/api/v1/auth/login", "", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decoded["code"])
	}
}

/*
TestHTTP_RefreshRotation verifies rotation over the wire, including body fallback
and replay rejection.
*/
func TestHTTP_RefreshRotation(t *testing.T) {
	f := newHTTPFixture(t)
	_, refresh := f.registerAndLogin(t, "alice", "alice@example.com", "password-123")

	// No cookie jar on the test client, so the body fallback carries the token.
	resp, body := f.postJSON(t, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	rotated := data["refresh_token"].(string)
	assert.NotEqual(t, refresh, rotated)
	assert.Equal(t, "Bearer", data["token_type"])

	// Replaying the consumed token is rejected.
	resp, body = f.postJSON(t, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": refresh,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TOKEN_REJECTED", body["code"])

	// The rotated token works.
	resp, _ = f.postJSON(t, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": rotated,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

/*
TestHTTP_RefreshWithoutToken verifies the 401 outcome when nothing is presented.
*/
func TestHTTP_RefreshWithoutToken(t *testing.T) {
	f := newHTTPFixture(t)

	resp, body := f.postJSON(t, "/api/v1/auth/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

/*
TestHTTP_LogoutFlow verifies authentication gating and session finality.
*/
func TestHTTP_LogoutFlow(t *testing.T) {
	f := newHTTPFixture(t)
	access, refresh := f.registerAndLogin(t, "alice", "alice@example.com", "password-123")

	// Unauthenticated logout is blocked by the middleware.
	resp, _ := f.postJSON(t, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Authenticated logout succeeds.
	resp, _ = f.postJSON(t, "/api/v1/auth/logout", access, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The outstanding refresh token is dead.
	resp, _ = f.postJSON(t, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": refresh,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Logout is idempotent; the access token itself remains valid until expiry.
	resp, _ = f.postJSON(t, "/api/v1/auth/logout", access, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

/*
TestHTTP_ChangePassword verifies the authenticated change flow and its guards.
*/
func TestHTTP_ChangePassword(t *testing.T) {
	f := newHTTPFixture(t)
	access, _ := f.registerAndLogin(t, "alice", "alice@example.com", "password-123")

	t.Run("requires_auth", func(t *testing.T) {
		resp, _ := f.postJSON(t, "/api/v1/auth/change-password", "", map[string]string{
			"old_password": "password-123", "new_password": "new-password-456",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("same_password_conflict", func(t *testing.T) {
		resp, body := f.postJSON(t, "/api/v1/auth/change-password", access, map[string]string{
			"old_password": "password-123", "new_password": "password-123",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "SAME_PASSWORD", body["code"])
	})

	t.Run("success", func(t *testing.T) {
		resp, _ := f.postJSON(t, "/api/v1/auth/change-password", access, map[string]string{
			"old_password": "password-123", "new_password": "new-password-456",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = f.postJSON(t, "/api/v1/auth/login", "", map[string]string{
			"login": "alice", "password": "new-password-456",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

/*
TestHTTP_PasswordRecovery walks the full forgot/reset loop over the wire.
*/
func TestHTTP_PasswordRecovery(t *testing.T) {
	f := newHTTPFixture(t)
	_, refresh := f.registerAndLogin(t, "alice", "alice@example.com", "password-123")

	resp, _ := f.postJSON(t, "/api/v1/auth/forgot-password", "", map[string]string{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	code := extractCode(t, f.mailer.lastBody)

	t.Run("wrong_code", func(t *testing.T) {
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		resp, body := f.postJSON(t, "/api/v1/auth/reset-password", "", map[string]string{
			"email": "alice@example.com", "code": wrong, "password": "new-password-456",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "CODE_REJECTED", body["code"])
	})

	t.Run("success_and_revocation", func(t *testing.T) {
		resp, _ := f.postJSON(t, "/api/v1/auth/reset-password", "", map[string]string{
			"email": "alice@example.com", "code": code, "password": "new-password-456",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// New credential works.
		resp, _ = f.postJSON(t, "/api/v1/auth/login", "", map[string]string{
			"login": "alice", "password": "new-password-456",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// The pre-reset session was revoked.
		resp, _ = f.postJSON(t, "/api/v1/auth/refresh", "", map[string]string{
			"refresh_token": refresh,
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown_email_silent", func(t *testing.T) {
		resp, _ := f.postJSON(t, "/api/v1/auth/forgot-password", "", map[string]string{
			"email": "ghost@example.com",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

// otpCodePattern matches the code text node in the delivered email. Anchoring
// on the element boundaries keeps digit runs inside CSS color values (such as
// #434343) from being mistaken for the code.
var otpCodePattern = regexp.MustCompile(`>(\d{6})</`)

// extractCode pulls the 6-digit code out of the delivered email body.
func extractCode(t *testing.T, body string) string {
	t.Helper()

	match := otpCodePattern.FindStringSubmatch(body)
	require.Len(t, match, 2, "no 6-digit code found in email body")
	return match[1]
}
