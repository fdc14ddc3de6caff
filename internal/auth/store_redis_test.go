// Copyright (c) 2026 Keygate. All rights reserved.
// Author: dang.hoanq.dev@gmail.com

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danghoanq/keygate/internal/platform/apperr"
)

func newTestOTPRepository(t *testing.T) (*miniredis.Miniredis, *RedisOTPRepository) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewOTPRepository(client)
}

/*
TestRedisOTPRepository_RoundTrip verifies set, get, and delete against a live
protocol-compatible Redis.
*/
func TestRedisOTPRepository_RoundTrip(t *testing.T) {
	_, repo := newTestOTPRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "alice@example.com", "042731", 5*time.Minute))

	code, err := repo.Get(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "042731", code)

	require.NoError(t, repo.Delete(ctx, "alice@example.com"))

	_, err = repo.Get(ctx, "alice@example.com")
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

/*
TestRedisOTPRepository_Expiry verifies codes vanish after their TTL.
*/
func TestRedisOTPRepository_Expiry(t *testing.T) {
	mr, repo := newTestOTPRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "alice@example.com", "042731", 5*time.Minute))

	// Just before the deadline the code is alive.
	mr.FastForward(4 * time.Minute)
	_, err := repo.Get(ctx, "alice@example.com")
	assert.NoError(t, err)

	// Past the deadline it is gone.
	mr.FastForward(2 * time.Minute)
	_, err = repo.Get(ctx, "alice@example.com")
	assert.Error(t, err)
}

/*
TestRedisOTPRepository_Replace verifies a newer code supersedes the old one.
*/
func TestRedisOTPRepository_Replace(t *testing.T) {
	_, repo := newTestOTPRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "alice@example.com", "111111", 5*time.Minute))
	require.NoError(t, repo.Set(ctx, "alice@example.com", "222222", 5*time.Minute))

	code, err := repo.Get(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", code)
}

/*
TestRedisOTPRepository_DeleteIdempotent verifies deleting an absent code is not an error.
*/
func TestRedisOTPRepository_DeleteIdempotent(t *testing.T) {
	_, repo := newTestOTPRepository(t)

	assert.NoError(t, repo.Delete(context.Background(), "nobody@example.com"))
}
