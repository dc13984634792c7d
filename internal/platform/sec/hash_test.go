// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/pinboard/internal/platform/sec"
)

// Low cost keeps the bcrypt work in tests cheap.
const testCost = 4

/*
TestPasswordHasher_RoundTrip verifies that a password verifies against its own hash.
*/
func TestPasswordHasher_RoundTrip(t *testing.T) {
	hasher := sec.NewPasswordHasher(testCost)

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, hasher.Verify("correct horse battery staple", hash))
}

/*
TestPasswordHasher_WrongPassword verifies that a different password fails verification.
*/
func TestPasswordHasher_WrongPassword(t *testing.T) {
	hasher := sec.NewPasswordHasher(testCost)

	hash, err := hasher.Hash("original-password")
	require.NoError(t, err)

	assert.False(t, hasher.Verify("different-password", hash))
	assert.False(t, hasher.Verify("", hash))
}

/*
TestPasswordHasher_SaltedHashes verifies that two hashes of the same password
differ (fresh salt per call) but both verify.
*/
func TestPasswordHasher_SaltedHashes(t *testing.T) {
	hasher := sec.NewPasswordHasher(testCost)

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("same-password", first))
	assert.True(t, hasher.Verify("same-password", second))
}

/*
TestNewPasswordHasher_CostClamping verifies that out-of-range costs fall back
to the bcrypt default instead of failing at hash time.
*/
func TestNewPasswordHasher_CostClamping(t *testing.T) {
	tests := []struct {
		name string
		cost int
	}{
		{"negative_cost", -1},
		{"zero_cost", 0},
		{"excessive_cost", 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher := sec.NewPasswordHasher(tt.cost)

			hash, err := hasher.Hash("any-password")
			require.NoError(t, err)
			assert.True(t, hasher.Verify("any-password", hash))
		})
	}
}
