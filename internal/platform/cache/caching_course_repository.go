// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"course_api/internal/feature/courses/domain/entity"
	"course_api/internal/feature/courses/usecase"
)

// CachingCourseRepository decorates a CourseRepository with Redis caching.
// Reads of the course listing and of single summaries are served from Redis
// when present; every write invalidates the whole namespace.
// Find always reads through, since ownership checks need the current row.
type CachingCourseRepository struct {
	inner     usecase.CourseRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.CourseRepository = (*CachingCourseRepository)(nil)

// NewCachingCourseRepository decorates a CourseRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "courses".
func NewCachingCourseRepository(rdb *redis.Client, ttl time.Duration, inner usecase.CourseRepository, namespace string) *CachingCourseRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "courses"
	}
	return &CachingCourseRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// List returns the course listing, checking the cache first.
func (c *CachingCourseRepository) List(ctx context.Context) ([]entity.CourseSummary, error) {
	if c.rdb == nil {
		return c.inner.List(ctx)
	}

	key := c.listKey()
	var out []entity.CourseSummary
	if c.load(ctx, key, &out) {
		return out, nil
	}

	out, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

// Get returns one course summary, checking the cache first.
// Absent courses are not cached.
func (c *CachingCourseRepository) Get(ctx context.Context, id uint) (*entity.CourseSummary, error) {
	if c.rdb == nil {
		return c.inner.Get(ctx, id)
	}

	key := c.courseKey(id)
	var cached entity.CourseSummary
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	out, err := c.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

// Find reads through to the underlying repository.
func (c *CachingCourseRepository) Find(ctx context.Context, id uint) (*entity.Course, error) {
	return c.inner.Find(ctx, id)
}

// Create inserts the course and invalidates the namespace.
func (c *CachingCourseRepository) Create(ctx context.Context, course *entity.Course) (uint, error) {
	id, err := c.inner.Create(ctx, course)
	if err != nil {
		return 0, err
	}
	c.invalidate(ctx)
	return id, nil
}

// Update writes the course and invalidates the namespace.
func (c *CachingCourseRepository) Update(ctx context.Context, course *entity.Course) error {
	if err := c.inner.Update(ctx, course); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Delete removes the course and invalidates the namespace.
func (c *CachingCourseRepository) Delete(ctx context.Context, id uint) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// load decodes the cached value at key into dst and reports a hit.
func (c *CachingCourseRepository) load(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// store writes v at key (best effort).
func (c *CachingCourseRepository) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}

// invalidate drops every key of the namespace (best effort).
func (c *CachingCourseRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.deleteByPattern(ctx, c.namespace+":*"); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", "namespace", c.namespace, "error", err)
	}
}

func (c *CachingCourseRepository) listKey() string {
	return c.namespace + ":list"
}

func (c *CachingCourseRepository) courseKey(id uint) string {
	return fmt.Sprintf("%s:course:%d", c.namespace, id)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingCourseRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
