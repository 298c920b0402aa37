package repository

import (
	"context"
	"time"

	"lingo_learn_client/internal/model"
	"lingo_learn_client/pkg/kvstore"
)

// CourseCache 课程文档缓存，按课程ID分键，默认TTL 24小时
type CourseCache struct {
	cache *Cache[model.Course]
}

func NewCourseCache(store kvstore.Store, ttl time.Duration) *CourseCache {
	return &CourseCache{cache: NewCache[model.Course](store, "course", ttl)}
}

func (c *CourseCache) SetTTL(ttl time.Duration) {
	c.cache.SetTTL(ttl)
}

func key(courseID string) string {
	return "course:" + courseID
}

func (c *CourseCache) Fetch(ctx context.Context, courseID string, force bool, refresh RefreshFunc[model.Course], onRevalidated RevalidatedFunc[model.Course]) (*model.Course, bool, error) {
	return c.cache.Fetch(ctx, key(courseID), force, refresh, onRevalidated)
}

func (c *CourseCache) Read(ctx context.Context, courseID string) (*model.Course, bool, error) {
	return c.cache.Read(ctx, key(courseID))
}

func (c *CourseCache) Write(ctx context.Context, courseID string, course *model.Course) error {
	return c.cache.Write(ctx, key(courseID), course)
}
