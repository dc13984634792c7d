// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package saved

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/pinboard/internal/platform/constants"
)

// membershipTTL bounds staleness of cached membership answers. Mutations
// delete the key eagerly, so the TTL only covers missed invalidations.
const membershipTTL = 5 * time.Minute

// # Membership Cache

// MembershipCache caches contains-lookups in Redis.
//
// The cache is strictly best-effort: every failure is reported to the caller,
// which logs it and falls through to PostgreSQL. A broken Redis never breaks
// the saved-posts API.
type MembershipCache struct {
	client *redis.Client
}

// NewMembershipCache creates the Redis-backed membership cache.
func NewMembershipCache(client *redis.Client) *MembershipCache {
	return &MembershipCache{client: client}
}

// key builds the cache key for a (user, post) membership pair.
func (cache *MembershipCache) key(userID, postID string) string {
	return constants.RedisPrefixSavedPosts + userID + ":" + postID
}

// Get returns the cached membership answer.
// The second return value reports whether the cache held an answer at all.
func (cache *MembershipCache) Get(context context.Context, userID, postID string) (bool, bool, error) {
	value, err := cache.client.Get(context, cache.key(userID, postID)).Result()
	if err != nil {
		if err == redis.Nil {
			return false, false, nil
		}
		return false, false, err
	}

	return value == "1", true, nil
}

// Set stores a membership answer with the standard TTL.
func (cache *MembershipCache) Set(context context.Context, userID, postID string, contains bool) error {
	value := "0"
	if contains {
		value = "1"
	}

	return cache.client.Set(context, cache.key(userID, postID), value, membershipTTL).Err()
}

// Invalidate drops the cached answer for a (user, post) pair.
// Called on every add/remove so the next lookup hits PostgreSQL.
func (cache *MembershipCache) Invalidate(context context.Context, userID, postID string) error {
	return cache.client.Del(context, cache.key(userID, postID)).Err()
}
