// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package posts implements the post catalog: time-windowed listings with images
that users can browse and save.

Posts are the objects the saved-posts relation points at, but the relation
itself lives in the users domain; this package never reads savedposts.
*/
package posts

import (
	"time"
)

// # Domain Entities

// Post represents a single listing on the Pinboard platform.
type Post struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`

	// TimeStart and TimeEnd bound the window during which the listing is active.
	TimeStart time.Time `json:"time_start"`
	TimeEnd   time.Time `json:"time_end"`

	// Images holds the public addresses of uploaded listing photos.
	Images []string `json:"images"`

	// CreatedBy is the account ID of the author.
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation in the posts domain.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldTimeStart   = "time_start"
	FieldTimeEnd     = "time_end"
)
