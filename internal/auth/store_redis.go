// Copyright (c) 2026 Keygate. All rights reserved.
// Author: dang.hoanq.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danghoanq/keygate/internal/platform/apperr"
	"github.com/danghoanq/keygate/internal/platform/constants"
)

// RedisOTPRepository implements OTPRepository using Redis.
//
// Expiry is delegated to Redis key TTLs, so an expired code simply vanishes.
type RedisOTPRepository struct {
	client *redis.Client
}

// NewOTPRepository creates a new Redis-backed OTPRepository.
func NewOTPRepository(client *redis.Client) *RedisOTPRepository {
	return &RedisOTPRepository{client: client}
}

/*
Set stores a reset code for an email with the given TTL.

Description: A second request for the same email replaces the previous code —
only the most recently issued code is redeemable.

Parameters:
  - context: context.Context
  - email: string
  - code: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisOTPRepository) Set(context context.Context, email, code string, ttl time.Duration) error {
	key := constants.RedisPrefixPasswordOTP + email

	if err := repository.client.Set(context, key, code, ttl).Err(); err != nil {
		return fmt.Errorf("redis_otp_set_failed: %w", err)
	}

	return nil
}

/*
Get retrieves the reset code stored for an email.

Description: Returns apperr.NotFound if no code is present or it has expired.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: The stored code
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisOTPRepository) Get(context context.Context, email string) (string, error) {
	key := constants.RedisPrefixPasswordOTP + email

	code, err := repository.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Reset code")
		}
		return "", fmt.Errorf("redis_otp_get_failed: %w", err)
	}

	return code, nil
}

/*
Delete removes the reset code after successful use.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisOTPRepository) Delete(context context.Context, email string) error {
	key := constants.RedisPrefixPasswordOTP + email

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_otp_delete_failed: %w", err)
	}

	return nil
}
