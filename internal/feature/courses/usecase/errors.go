package usecase

import "errors"

var (
	// ErrCourseNotFound is returned when no course has the requested id.
	ErrCourseNotFound = errors.New("course not found")
	// ErrForbidden is returned when the caller does not own the course.
	ErrForbidden = errors.New("course is owned by another user")
)
