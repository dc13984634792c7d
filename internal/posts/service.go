// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/pinboard/internal/platform/apperr"
	"github.com/taibuivan/pinboard/internal/platform/blob"
	"github.com/taibuivan/pinboard/internal/platform/validate"
	"github.com/taibuivan/pinboard/pkg/pagination"
	"github.com/taibuivan/pinboard/pkg/slug"
	"github.com/taibuivan/pinboard/pkg/uuid"
)

// # Service

// Service implements the post catalog use cases.
type Service struct {
	repository Repository
	images     blob.ObjectStore
	logger     *slog.Logger
}

// NewService wires up the post service.
//
// images may be nil when object storage is not configured; posts are then
// created without photos.
func NewService(repository Repository, images blob.ObjectStore, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		images:     images,
		logger:     logger,
	}
}

// # Inputs

// ImageUpload carries one uploaded listing photo through the service layer.
type ImageUpload struct {
	Reader      io.Reader
	ContentType string
	Extension   string
}

// CreateInput is the payload for publishing a new post.
type CreateInput struct {
	Title       string
	Description string
	TimeStart   time.Time
	TimeEnd     time.Time
	Images      []*ImageUpload
	CreatedBy   string
}

// # Use Cases

/*
Create publishes a new post. The slug is derived from the title; photos are
uploaded first and any upload failure aborts the creation.

Parameters:
  - requestContext: context.Context
  - input: CreateInput

Returns:
  - *Post: The created post
  - error: apperr.ValidationError or infrastructure failures
*/
func (service *Service) Create(requestContext context.Context, input CreateInput) (*Post, error) {

	// ── 1. Validate ──────────────────────────────────────────────────────
	validator := &validate.Validator{}
	err := validator.
		Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, 200).
		Required(FieldDescription, input.Description).
		MaxLen(FieldDescription, input.Description, 5000).
		Custom(FieldTimeStart, input.TimeStart.IsZero(), "This field is required").
		Custom(FieldTimeEnd, input.TimeEnd.IsZero(), "This field is required").
		Custom(FieldTimeEnd, !input.TimeEnd.IsZero() && !input.TimeEnd.After(input.TimeStart), "Must be after time_start").
		Err()
	if err != nil {
		return nil, err
	}

	// ── 2. Upload photos (aborts on first failure) ───────────────────────
	imageAddresses := make([]string, 0, len(input.Images))
	for _, upload := range input.Images {
		if service.images == nil {
			return nil, apperr.ServiceUnavailable("Image uploads are not configured")
		}

		key := blob.NewObjectKey("posts", upload.Extension)
		address, uploadErr := service.images.Store(requestContext, key, upload.ContentType, upload.Reader)
		if uploadErr != nil {
			service.logger.Error("post_image_upload_failed", slog.String("error", uploadErr.Error()))
			return nil, apperr.Internal(uploadErr)
		}
		imageAddresses = append(imageAddresses, address)
	}

	// ── 3. Persist ───────────────────────────────────────────────────────
	post := &Post{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(input.Title),
		Slug:        slug.From(input.Title),
		Description: strings.TrimSpace(input.Description),
		TimeStart:   input.TimeStart,
		TimeEnd:     input.TimeEnd,
		Images:      imageAddresses,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}

	if err := service.repository.Create(requestContext, post); err != nil {
		return nil, err
	}

	service.logger.Info("post_created",
		slog.String("post_id", post.ID),
		slog.String("created_by", post.CreatedBy),
	)

	return post, nil
}

// GetByID returns a single post by its ID.
func (service *Service) GetByID(requestContext context.Context, postID string) (*Post, error) {
	return service.repository.FindByID(requestContext, postID)
}

// List returns one page of posts, newest first, with pagination metadata.
func (service *Service) List(requestContext context.Context, params pagination.Params) ([]*Post, pagination.Meta, error) {
	page, total, err := service.repository.FindPage(requestContext, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return page, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// Delete permanently removes a post. Authorization (admin only) is enforced
// at the routing layer.
func (service *Service) Delete(requestContext context.Context, postID string) error {
	if err := service.repository.Delete(requestContext, postID); err != nil {
		return err
	}

	service.logger.Info("post_deleted", slog.String("post_id", postID))

	return nil
}
