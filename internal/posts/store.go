// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts

import (
	"context"

	"github.com/taibuivan/pinboard/pkg/pagination"
)

// # Post Data Access

// Repository defines the data access contract for posts.
type Repository interface {

	/*
		Create persists a new post.

		Parameters:
		  - context: context.Context
		  - post: *Post

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, post *Post) error

	/*
		FindByID returns the post with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Post: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Post, error)

	/*
		FindPage returns one page of posts, newest first, with the total count.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []*Post: Hydrated entities
		  - int: Total number of posts
		  - error: Database retrieval failures
	*/
	FindPage(context context.Context, params pagination.Params) ([]*Post, int, error)

	/*
		Delete permanently removes a post.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Delete(context context.Context, id string) error
}
