// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces ([TokenProvider] in the account domain).
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Verification Failures

var (
	// ErrTokenInvalid means the token is malformed or its signature does not
	// verify against the server secret.
	ErrTokenInvalid = errors.New("sec: token invalid")

	// ErrTokenExpired means the signature verified but the token is past its
	// embedded expiry. There is no revocation list; expiry is the only
	// invalidation mechanism.
	ErrTokenExpired = errors.New("sec: token expired")
)

// AuthClaims represents the payload embedded inside a session JWT.
//
// # Why custom claims?
//
// By embedding the UserID and Email directly inside the JWT, the session
// guard can reconstruct the active user context WITHOUT querying the
// database on every single API request.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID string `json:"uid"`
	Email  string `json:"eml"`
	Role   string `json:"rol"`
}

// TokenService handles generation and verification of JWT tokens using HS256.
//
// The signing secret is process-wide configuration loaded once at startup;
// it is never mutated at runtime and never read from the environment here.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration

	// now is the clock used for issuance and expiry validation.
	// Overridable in tests to simulate clock advance.
	now func() time.Time
}

// NewTokenService creates a new TokenService with the given signing secret,
// issuer, and token validity window.
func NewTokenService(secret, issuer string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("sec: signing secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("sec: token ttl must be positive, got %s", ttl)
	}

	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of the service using the provided clock.
// Intended for tests that need to simulate token expiry.
func (service *TokenService) WithClock(now func() time.Time) *TokenService {
	clone := *service
	clone.now = now
	return &clone
}

// Issue creates a new signed session token for a user.
func (service *TokenService) Issue(userID, email, role string) (string, error) {
	currentTime := service.now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.ttl)),
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of a JWT string.
//
// # Failure Modes
//
// Returns [ErrTokenExpired] when the signature verifies but the token is past
// its expiry, and [ErrTokenInvalid] for every other failure. Callers map both
// to the same external 401 but log them distinctly.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	}, jwt.WithTimeFunc(service.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		// A forged token can be both unverifiable and expired; the signature
		// failure takes precedence.
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, fmt.Errorf("%w: %s", ErrTokenInvalid, err)
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %s", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
