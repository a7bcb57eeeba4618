// Package usecase implements the business logic for course operations.
package usecase

import (
	"context"
	"errors"
	"log/slog"

	"course_api/internal/feature/courses/domain/entity"
)

// CourseRepository abstracts the persistence layer for courses.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type CourseRepository interface {
	// List returns a summary of every course with an existing owner, ordered by id.
	List(ctx context.Context) ([]entity.CourseSummary, error)
	// Get returns the summary for id, or ErrCourseNotFound.
	Get(ctx context.Context, id uint) (*entity.CourseSummary, error)
	// Find returns the full course row for id, or ErrCourseNotFound.
	Find(ctx context.Context, id uint) (*entity.Course, error)
	// Create inserts c and returns the generated id.
	Create(ctx context.Context, c *entity.Course) (uint, error)
	// Update overwrites every mutable field of the course with c.ID.
	Update(ctx context.Context, c *entity.Course) error
	// Delete removes the course. A missing id is not an error.
	Delete(ctx context.Context, id uint) error
}

// CourseInput carries the writable fields of a course.
type CourseInput struct {
	Title           string
	Description     string
	EstimatedTime   *string
	MaterialsNeeded *string
}

// CourseUsecase provides business logic for course operations.
type CourseUsecase struct {
	repo CourseRepository
}

// NewCourseUsecase creates a new CourseUsecase with the given repository.
func NewCourseUsecase(r CourseRepository) *CourseUsecase {
	return &CourseUsecase{repo: r}
}

// List returns every course summary.
func (u *CourseUsecase) List(ctx context.Context) ([]entity.CourseSummary, error) {
	return u.repo.List(ctx)
}

// Get returns one course summary.
func (u *CourseUsecase) Get(ctx context.Context, id uint) (*entity.CourseSummary, error) {
	return u.repo.Get(ctx, id)
}

// Create stores a course owned by ownerID and returns its id.
func (u *CourseUsecase) Create(ctx context.Context, ownerID uint, in CourseInput) (uint, error) {
	c := &entity.Course{
		UserID:          ownerID,
		Title:           in.Title,
		Description:     in.Description,
		EstimatedTime:   in.EstimatedTime,
		MaterialsNeeded: in.MaterialsNeeded,
	}
	return u.repo.Create(ctx, c)
}

// Update replaces the course's fields. Only the owner may update.
func (u *CourseUsecase) Update(ctx context.Context, actorID, id uint, in CourseInput) error {
	current, err := u.repo.Find(ctx, id)
	if err != nil {
		return err
	}
	if !current.OwnedBy(actorID) {
		slog.WarnContext(ctx, "course update rejected: not owner", "course_id", id, "user_id", actorID)
		return ErrForbidden
	}

	current.Title = in.Title
	current.Description = in.Description
	current.EstimatedTime = in.EstimatedTime
	current.MaterialsNeeded = in.MaterialsNeeded
	return u.repo.Update(ctx, current)
}

// Delete removes the course. Only the owner may delete; a missing course is a no-op.
func (u *CourseUsecase) Delete(ctx context.Context, actorID, id uint) error {
	current, err := u.repo.Find(ctx, id)
	if errors.Is(err, ErrCourseNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !current.OwnedBy(actorID) {
		slog.WarnContext(ctx, "course delete rejected: not owner", "course_id", id, "user_id", actorID)
		return ErrForbidden
	}
	return u.repo.Delete(ctx, id)
}
