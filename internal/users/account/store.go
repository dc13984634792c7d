// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// The storage layer owns email uniqueness via a unique index; callers treat
// their own existence checks as best-effort only.
type UserRepository interface {

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on a duplicate email, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.
		The comparison is case-insensitive.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindAll returns every registered account.

		Parameters:
		  - context: context.Context

		Returns:
		  - []*User: Hydrated entities
		  - error: Database retrieval failures
	*/
	FindAll(context context.Context) ([]*User, error)

	/*
		Update persists changes to mutable profile fields.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on a duplicate email, or persistence failures
	*/
	Update(context context.Context, user *User) error

	/*
		Delete permanently removes the account row. The embedded saved-posts
		set disappears with it.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Delete(context context.Context, id string) error
}
