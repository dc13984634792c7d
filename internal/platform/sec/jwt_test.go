// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/pinboard/internal/platform/sec"
)

const (
	testSecret = "unit-test-signing-secret"
	testIssuer = "pinboard.app"
	testTTL    = 7 * 24 * time.Hour
)

func newTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(testSecret, testIssuer, testTTL)
	require.NoError(t, err)
	return service
}

/*
TestTokenService_IssueAndVerify verifies the happy path: a freshly issued
token verifies and carries the embedded identity claims.
*/
func TestTokenService_IssueAndVerify(t *testing.T) {
	service := newTokenService(t)

	token, err := service.Issue("user-123", "tai@pinboard.app", "member")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "tai@pinboard.app", claims.Email)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, testIssuer, claims.Issuer)
}

/*
TestTokenService_Expiry verifies that a token becomes invalid once the clock
advances past its TTL, and that the failure is the dedicated expiry error.
*/
func TestTokenService_Expiry(t *testing.T) {
	service := newTokenService(t)

	issuedAt := time.Now()
	token, err := service.WithClock(func() time.Time { return issuedAt }).Issue("user-123", "tai@pinboard.app", "member")
	require.NoError(t, err)

	// Still valid just before expiry.
	almostExpired := service.WithClock(func() time.Time { return issuedAt.Add(testTTL - time.Minute) })
	_, err = almostExpired.VerifyToken(token)
	assert.NoError(t, err)

	// Invalid once past expiry.
	expired := service.WithClock(func() time.Time { return issuedAt.Add(testTTL + time.Minute) })
	_, err = expired.VerifyToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
	assert.NotErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenService_WrongSecret verifies that a token signed with a different
secret is rejected as invalid, not expired.
*/
func TestTokenService_WrongSecret(t *testing.T) {
	service := newTokenService(t)

	other, err := sec.NewTokenService("a-completely-different-secret", testIssuer, testTTL)
	require.NoError(t, err)

	token, err := other.Issue("user-123", "tai@pinboard.app", "member")
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
	assert.NotErrorIs(t, err, sec.ErrTokenExpired)
}

/*
TestTokenService_Garbage verifies that malformed strings are rejected as invalid.
*/
func TestTokenService_Garbage(t *testing.T) {
	service := newTokenService(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not_a_jwt", "hello-world"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.VerifyToken(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, sec.ErrTokenInvalid)
		})
	}
}

/*
TestNewTokenService_Validation verifies constructor guards.
*/
func TestNewTokenService_Validation(t *testing.T) {
	_, err := sec.NewTokenService("", testIssuer, testTTL)
	assert.Error(t, err)

	_, err = sec.NewTokenService(testSecret, testIssuer, 0)
	assert.Error(t, err)
}
