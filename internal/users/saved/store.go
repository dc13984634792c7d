// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package saved implements the saved-posts relation manager.

Each user carries an embedded set of saved post ids. The set lives inside the
user's account row (a TEXT[] column), so membership changes are single-row,
single-statement operations with no cross-table coordination, and every
operation can hand back the owning account record directly.

# Concurrency

Additions are atomic at the storage level: the append is guarded by a
NOT (... = ANY (...)) predicate inside one UPDATE, so two concurrent saves of
the same post produce exactly one entry. There is no read-modify-write window.
*/
package saved

import (
	"context"

	"github.com/taibuivan/pinboard/internal/users/account"
)

// # Relation Data Access

// Store defines the persistence contract for the saved-posts relation.
type Store interface {

	/*
		AddPost adds a post to a user's saved set and returns the updated
		account record.

		The operation is idempotent: adding an already-saved post succeeds
		without duplicating the entry and still returns the record.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - postID: string

		Returns:
		  - *account.User: The account record after the mutation
		  - error: apperr.NotFound when the user does not exist, or persistence failures
	*/
	AddPost(context context.Context, userID, postID string) (*account.User, error)

	/*
		RemovePost removes a post from a user's saved set.

		Removing a post that is not in the set, or targeting a user that does
		not exist, is a successful no-op.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - postID: string

		Returns:
		  - error: persistence failures only
	*/
	RemovePost(context context.Context, userID, postID string) error

	/*
		FindSavers returns the account records matching both the user id and
		the saved post, mirroring a find-by-id-and-membership query.

		The slice is empty when the user does not exist or has not saved the
		post; a single id can match at most one record.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - postID: string

		Returns:
		  - []*account.User: Matching account records (zero or one)
		  - error: retrieval failures
	*/
	FindSavers(context context.Context, userID, postID string) ([]*account.User, error)
}
