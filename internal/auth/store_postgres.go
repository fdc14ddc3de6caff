// Copyright (c) 2026 Keygate. All rights reserved.
// Author: dang.hoanq.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danghoanq/keygate/internal/platform/dberr"
)

// # User Repository
//
// Storage-specific errors (like pgx.ErrNoRows or unique violations) are
// mapped to domain-friendly [apperr.AppError] types via dberr to avoid
// leaking storage implementation details.

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = "id, username, email, passwordhash, refreshtoken, createdat, updatedat"

// scanUser hydrates a User from a pgx row.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
Create persists a new user record into the users.account table.

Description: The unique indexes on username and email are the final
authority on identifier uniqueness; violations surface as CONFLICT.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Conflict on duplicate identifiers, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, refreshtoken, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.RefreshToken,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return dberr.Wrap(err, "User with this email or username already exists")
}

/*
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE email = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByUsernameOrEmail retrieves a user matching either identifier.

Description: Single round-trip lookup used by login and by the registration
duplicate pre-check.

Parameters:
  - context: context.Context
  - username: string (lowercased)
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsernameOrEmail(context context.Context, username, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE username = $1 OR email = $2
		LIMIT 1`

	user, err := scanUser(repository.pool.QueryRow(context, query, username, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_identifier_failed: %w", err)
	}

	return user, nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: apperr.NotFound when the user does not exist, or execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
UpdateRefreshToken overwrites the stored refresh token unconditionally.

Description: Used by login (overwrite any prior session) and logout (clear).
NULL clears the field, which is why the column is nullable.

Parameters:
  - context: context.Context
  - userID: string
  - token: *string (nil to clear)

Returns:
  - error: apperr.NotFound when the user does not exist, or execution errors
*/
func (repository *PostgresUserRepository) UpdateRefreshToken(context context.Context, userID string, token *string) error {
	const query = `
		UPDATE users.account
		SET refreshtoken = $2, updatedat = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, userID, token, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_refresh_token_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
RotateRefreshToken conditionally swaps the stored refresh token.

Description: The WHERE clause pins the swap to the presented value, making
the read-compare-write of a refresh effectively atomic per identity: a
concurrent rotation or logout leaves zero rows matched and the caller gets
ErrTokenRejected.

Parameters:
  - context: context.Context
  - userID: string
  - current: string
  - next: string

Returns:
  - error: ErrTokenRejected when the stored value changed, or execution errors
*/
func (repository *PostgresUserRepository) RotateRefreshToken(context context.Context, userID, current, next string) error {
	const query = `
		UPDATE users.account
		SET refreshtoken = $3, updatedat = $4
		WHERE id = $1 AND refreshtoken = $2`

	tag, err := repository.pool.Exec(context, query, userID, current, next, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_rotate_refresh_token_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrTokenRejected
	}

	return nil
}
