// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher wraps bcrypt with a configurable work factor.
//
// # Why a struct?
//
// The cost factor is operational configuration (CPU budget per login), so it
// is injected once at startup instead of being hard-coded at call sites.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher constructs a [PasswordHasher] with the given bcrypt cost.
// Costs outside bcrypt's supported range fall back to [bcrypt.DefaultCost].
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash hashes a plain-text password using the bcrypt algorithm.
//
// bcrypt generates a fresh salt per call, so two hashes of the same password
// differ; [PasswordHasher.Verify] succeeds against either.
func (hasher *PasswordHasher) Hash(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify compares a plain-text password with its hashed version.
// A mismatch is a normal false result, never an error.
func (hasher *PasswordHasher) Verify(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
