// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package saved

import (
	"context"
	"log/slog"

	"github.com/taibuivan/pinboard/internal/users/account"
)

// # Service

// Service implements the saved-posts use cases with a cache-aside membership
// lookup on top of the PostgreSQL store.
type Service struct {
	store  Store
	cache  *MembershipCache
	logger *slog.Logger
}

// NewService wires up the saved-posts service.
//
// cache may be nil; membership lookups then always hit PostgreSQL.
func NewService(store Store, cache *MembershipCache, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

/*
AddPost adds a post to a user's saved set, invalidates the cached membership
answer, and returns the updated account record.

Idempotent: a double add leaves exactly one entry and still succeeds.

Parameters:
  - requestContext: context.Context
  - userID: string
  - postID: string

Returns:
  - *account.User: The account record after the mutation
  - error: apperr.NotFound when the user does not exist, or persistence failures
*/
func (service *Service) AddPost(requestContext context.Context, userID, postID string) (*account.User, error) {
	user, err := service.store.AddPost(requestContext, userID, postID)
	if err != nil {
		return nil, err
	}

	service.invalidate(requestContext, userID, postID)

	service.logger.Info("saved_post_added",
		slog.String("user_id", userID),
		slog.String("post_id", postID),
	)

	return user, nil
}

/*
RemovePost removes a post from a user's saved set and invalidates the cached
membership answer. Removing an absent post, or targeting an unknown user, is
a successful no-op.

Parameters:
  - requestContext: context.Context
  - userID: string
  - postID: string

Returns:
  - error: persistence failures only
*/
func (service *Service) RemovePost(requestContext context.Context, userID, postID string) error {
	if err := service.store.RemovePost(requestContext, userID, postID); err != nil {
		return err
	}

	service.invalidate(requestContext, userID, postID)

	service.logger.Info("saved_post_removed",
		slog.String("user_id", userID),
		slog.String("post_id", postID),
	)

	return nil
}

/*
FindSavers returns the account records matching the user id and the saved
post — empty when the user is unknown or has not saved the post.

The membership answer is cache-aside: a cached negative short-circuits the
lookup; everything else falls through to PostgreSQL and repopulates the
cache. A record hit always comes from PostgreSQL so the payload is current.

Parameters:
  - requestContext: context.Context
  - userID: string
  - postID: string

Returns:
  - []*account.User: Matching account records (zero or one)
  - error: retrieval failures
*/
func (service *Service) FindSavers(requestContext context.Context, userID, postID string) ([]*account.User, error) {

	// ── 1. Cached negative ───────────────────────────────────────────────
	if service.cache != nil {
		contains, hit, err := service.cache.Get(requestContext, userID, postID)
		if err != nil {
			service.logger.Warn("saved_posts_cache_read_failed", slog.String("error", err.Error()))
		} else if hit && !contains {
			return []*account.User{}, nil
		}
	}

	// ── 2. Authoritative lookup ──────────────────────────────────────────
	savers, err := service.store.FindSavers(requestContext, userID, postID)
	if err != nil {
		return nil, err
	}

	// ── 3. Repopulate ────────────────────────────────────────────────────
	if service.cache != nil {
		if err := service.cache.Set(requestContext, userID, postID, len(savers) > 0); err != nil {
			service.logger.Warn("saved_posts_cache_write_failed", slog.String("error", err.Error()))
		}
	}

	return savers, nil
}

// invalidate drops the cached membership answer, tolerating cache failures.
func (service *Service) invalidate(requestContext context.Context, userID, postID string) {
	if service.cache == nil {
		return
	}
	if err := service.cache.Invalidate(requestContext, userID, postID); err != nil {
		service.logger.Warn("saved_posts_cache_invalidate_failed", slog.String("error", err.Error()))
	}
}
