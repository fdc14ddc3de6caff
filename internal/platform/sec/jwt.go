// Copyright (c) 2026 Keygate. All rights reserved.
// Author: dang.hoanq.dev@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via narrow interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danghoanq/keygate/pkg/uuid"
)

// AuthClaims represents the payload embedded inside a JWT Access Token.
//
// # Why custom claims?
//
// By embedding the UserID, Username, and Email directly inside the JWT,
// the authentication middleware can reconstruct the active user context
// WITHOUT querying the database on every single API request. This provides
// massive read-scalability.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID   string `json:"uid"`
	Username string `json:"unm"`
	Email    string `json:"eml"`
}

// TokenPair bundles the two credentials issued by a successful authentication.
//
// The access token is stateless and self-verifying. The refresh token is
// additionally checked against the value stored on the user record, which is
// what makes rotation and logout effective before its expiry.
type TokenPair struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

// TokenService handles generation and verification of JWT tokens using HS256.
//
// # Key Separation
//
// Access and refresh tokens are signed with two independent secrets and two
// independent expiry policies. A refresh token can never pass access-token
// verification, and vice versa.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

// NewTokenService creates a new TokenService.
//
// A missing secret is a process misconfiguration, surfaced at startup, never
// as a per-request failure.
func NewTokenService(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if accessSecret == "" {
		return nil, errors.New("sec: access token secret is not configured")
	}
	if refreshSecret == "" {
		return nil, errors.New("sec: refresh token secret is not configured")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("sec: access and refresh token secrets must differ")
	}

	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        issuer,
	}, nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (service *TokenService) AccessTokenTTL() time.Duration { return service.accessTTL }

// RefreshTokenTTL returns the configured refresh token lifetime.
func (service *TokenService) RefreshTokenTTL() time.Duration { return service.refreshTTL }

/*
IssuePair creates a new access/refresh token pair for a user.

Description: Every call produces a distinct pair; both tokens carry a fresh
token ID (jti) alongside the identity claims. Persisting the refresh token on
the user record is the caller's responsibility.

Parameters:
  - userID: Subject identifier embedded in both tokens.
  - username: Embedded in the access token only.
  - email: Embedded in the access token only.

Returns:
  - *TokenPair: Both signed tokens and the refresh expiry instant.
  - error: Signing failures only.
*/
func (service *TokenService) IssuePair(userID, username, email string) (*TokenPair, error) {
	currentTime := time.Now()
	accessExpiry := currentTime.Add(service.accessTTL)

	accessClaims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
		},
		UserID:   userID,
		Username: username,
		Email:    email,
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(service.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to sign access token: %w", err)
	}

	// The refresh token carries the subject only. Everything else is resolved
	// from the user record when the token is presented.
	//
	// The token ID makes every issued token distinct even when two pairs are
	// minted within the same second (timestamps truncate to whole seconds).
	// Rotation compares tokens byte-for-byte, so identical tokens would make
	// a consumed token indistinguishable from its replacement.
	refreshExpiry := currentTime.Add(service.refreshTTL)
	refreshClaims := jwt.RegisteredClaims{
		ID:        uuid.New(),
		Subject:   userID,
		Issuer:    service.issuer,
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(refreshExpiry),
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(service.refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiry,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshExpiry,
	}, nil
}

// VerifyToken checks the signature and validity of an access token string.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.accessSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid access token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid access token claims")
	}

	return claims, nil
}

// VerifyRefreshToken checks the signature and expiry of a refresh token and
// returns its subject (the user ID).
//
// This is only the cryptographic half of refresh validation. The caller must
// still compare the presented token against the value stored for the subject.
func (service *TokenService) VerifyRefreshToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.refreshSecret, nil
	})

	if err != nil {
		return "", fmt.Errorf("sec: invalid refresh token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", errors.New("sec: invalid refresh token claims")
	}

	return claims.Subject, nil
}
