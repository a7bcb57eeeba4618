// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"

	courseadapters "course_api/internal/feature/courses/adapters"
	courseusecase "course_api/internal/feature/courses/usecase"
	"course_api/internal/platform/cache"
	"course_api/internal/platform/storage"
)

// NewCourseRepository creates a CourseRepository implementation.
// If Redis is available, reads go through the Redis cache.
// Otherwise, the SQL repository is used directly.
func NewCourseRepository(rdb *redis.Client, store *storage.Context, ttl time.Duration) courseusecase.CourseRepository {
	repo := courseadapters.NewCourseRepository(store)
	if rdb != nil {
		return cache.NewCachingCourseRepository(rdb, ttl, repo, "courses")
	}
	return repo
}
