// Copyright (c) 2026 Keygate. All rights reserved.
// Author: dang.hoanq.dev@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danghoanq/keygate/internal/platform/sec"
)

/*
TestHashPassword_Opacity verifies hashes never contain the plaintext and are salted.
*/
func TestHashPassword_Opacity(t *testing.T) {
	const password = "correct horse battery staple"

	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.NotEqual(t, password, hash)
	assert.NotContains(t, hash, password)

	// Salted: hashing the same input twice yields different digests.
	second, err := sec.HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, hash, second)
}

/*
TestCheckPasswordHash verifies match and mismatch outcomes.
*/
func TestCheckPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("s3cret-password")
	require.NoError(t, err)

	assert.True(t, sec.CheckPasswordHash("s3cret-password", hash))
	assert.False(t, sec.CheckPasswordHash("wrong-password", hash))
	assert.False(t, sec.CheckPasswordHash("", hash))
	assert.False(t, sec.CheckPasswordHash("s3cret-password", "not-a-bcrypt-hash"))
}
