package repository

import (
	"context"
	"time"

	"lingo_learn_client/internal/model"
	"lingo_learn_client/pkg/kvstore"
)

const profileKey = "profile"

// ProfileCache 用户profile缓存，单键，默认TTL 15分钟
type ProfileCache struct {
	cache *Cache[model.UserProfile]
}

func NewProfileCache(store kvstore.Store, ttl time.Duration) *ProfileCache {
	return &ProfileCache{cache: NewCache[model.UserProfile](store, "profile", ttl)}
}

func (c *ProfileCache) SetTTL(ttl time.Duration) {
	c.cache.SetTTL(ttl)
}

func (c *ProfileCache) Fetch(ctx context.Context, force bool, refresh RefreshFunc[model.UserProfile], onRevalidated RevalidatedFunc[model.UserProfile]) (*model.UserProfile, bool, error) {
	return c.cache.Fetch(ctx, profileKey, force, refresh, onRevalidated)
}

func (c *ProfileCache) Read(ctx context.Context) (*model.UserProfile, bool, error) {
	return c.cache.Read(ctx, profileKey)
}

func (c *ProfileCache) Write(ctx context.Context, profile *model.UserProfile) error {
	return c.cache.Write(ctx, profileKey, profile)
}

func (c *ProfileCache) Clear(ctx context.Context) error {
	return c.cache.Clear(ctx, profileKey)
}
