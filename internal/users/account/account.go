// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account implements the user account directory.

It defines the core domain entity (User) and the logic for registration,
login, session-token issuance, and account lifecycle.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
external dependencies and encapsulates all business rules related to user
identity.
*/
package account

import (
	"time"

	"github.com/taibuivan/pinboard/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Pinboard platform.
type User struct {
	ID          string       `json:"id"`
	FullName    string       `json:"full_name"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	DateOfBirth time.Time    `json:"date_of_birth"`
	// PasswordHash holds the bcrypt digest. The raw password is never stored.
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	ImagePath    string       `json:"image_path,omitempty"`
	Role         sec.UserRole `json:"role"`

	// SavedPosts is the user's bookmark set, embedded in the account record.
	// Ordered by insertion; duplicates are forbidden by the storage layer.
	SavedPosts []string `json:"saved_posts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicProfile is the safety-mapped projection of a [User] returned by the
// profile endpoint. It never carries the password hash.
type PublicProfile struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	ImagePath string `json:"image_path,omitempty"`
}

// Profile returns the public projection of the user.
func (user *User) Profile() *PublicProfile {
	return &PublicProfile{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Phone:     user.Phone,
		ImagePath: user.ImagePath,
	}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the account domain.
const (
	FieldFullName    = "full_name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldPassword    = "password"
	FieldDateOfBirth = "date_of_birth"
)
