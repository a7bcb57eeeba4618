// Package adapters はcoursesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"course_api/internal/feature/courses/domain/entity"
	"course_api/internal/feature/courses/usecase"
	"course_api/internal/platform/storage"
)

const (
	courseColumns = `"id", "userId", "title", "description", "estimatedTime", "materialsNeeded", "createdAt", "updatedAt"`

	// summarySelect joins each course to its owner; courses without an owner drop out.
	summarySelect = `SELECT c."id", c."title", u."firstName" || ' ' || u."lastName" AS "owner"
		FROM "Courses" c
		INNER JOIN "Users" u ON u."id" = c."userId"`
)

// courseRepository is the SQL implementation of usecase.CourseRepository.
type courseRepository struct {
	store *storage.Context
	now   func() time.Time
}

var _ usecase.CourseRepository = (*courseRepository)(nil)

// NewCourseRepository creates a courseRepository over store.
func NewCourseRepository(store *storage.Context) *courseRepository {
	return &courseRepository{store: store, now: time.Now}
}

// List returns every course with its owner's full name, ordered by id.
func (r *courseRepository) List(ctx context.Context) ([]entity.CourseSummary, error) {
	courses := []entity.CourseSummary{}
	if err := r.store.Retrieve(ctx, &courses, summarySelect+` ORDER BY c."id"`); err != nil {
		return nil, err
	}
	return courses, nil
}

// Get returns the summary of one course.
func (r *courseRepository) Get(ctx context.Context, id uint) (*entity.CourseSummary, error) {
	var c entity.CourseSummary
	found, err := r.store.RetrieveSingle(ctx, &c, summarySelect+` WHERE c."id" = ?`, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, usecase.ErrCourseNotFound
	}
	return &c, nil
}

// Find returns the full course row.
func (r *courseRepository) Find(ctx context.Context, id uint) (*entity.Course, error) {
	var c entity.Course
	found, err := r.store.RetrieveSingle(ctx, &c, `SELECT `+courseColumns+` FROM "Courses" WHERE "id" = ?`, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, usecase.ErrCourseNotFound
	}
	return &c, nil
}

// Create inserts c with server-set timestamps and returns the id generated by the insert itself.
func (r *courseRepository) Create(ctx context.Context, c *entity.Course) (uint, error) {
	now := r.now().UTC()
	q := `INSERT INTO "Courses" ("userId", "title", "description", "estimatedTime", "materialsNeeded", "createdAt", "updatedAt")
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING "id"`

	var id uint
	if err := r.store.RetrieveValue(ctx, &id, q, c.UserID, c.Title, c.Description, c.EstimatedTime, c.MaterialsNeeded, now, now); err != nil {
		return 0, err
	}
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	return id, nil
}

// Update overwrites every mutable field and refreshes updatedAt.
// userId and createdAt are never changed.
func (r *courseRepository) Update(ctx context.Context, c *entity.Course) error {
	now := r.now().UTC()
	q := `UPDATE "Courses"
		SET "title" = ?, "description" = ?, "estimatedTime" = ?, "materialsNeeded" = ?, "updatedAt" = ?
		WHERE "id" = ?`

	res, err := r.store.Execute(ctx, q, c.Title, c.Description, c.EstimatedTime, c.MaterialsNeeded, now, c.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return usecase.ErrCourseNotFound
	}
	c.UpdatedAt = now
	return nil
}

// Delete removes the course; deleting a missing id succeeds.
func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	_, err := r.store.Execute(ctx, `DELETE FROM "Courses" WHERE "id" = ?`, id)
	return err
}
