// Package handler provides the HTTP handlers for the courses feature.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"course_api/internal/feature/auth/transport/middleware"
	"course_api/internal/feature/courses/domain/entity"
	"course_api/internal/feature/courses/transport/http/dto"
	"course_api/internal/feature/courses/usecase"
	platformmw "course_api/internal/platform/http/middleware"
)

const (
	// CourseNotFoundMessage is returned for lookups of absent courses.
	CourseNotFoundMessage = "Course not found."
	// ForbiddenMessage is returned when a user mutates another user's course.
	ForbiddenMessage = "You can only modify your own courses."
)

// CourseUsecase は講座に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type CourseUsecase interface {
	List(ctx context.Context) ([]entity.CourseSummary, error)
	Get(ctx context.Context, id uint) (*entity.CourseSummary, error)
	Create(ctx context.Context, ownerID uint, in usecase.CourseInput) (uint, error)
	Update(ctx context.Context, actorID, id uint, in usecase.CourseInput) error
	Delete(ctx context.Context, actorID, id uint) error
}

// CourseHandler handles the /courses endpoints.
type CourseHandler struct {
	uc CourseUsecase
}

// NewCourseHandler creates a CourseHandler.
func NewCourseHandler(uc CourseUsecase) *CourseHandler {
	return &CourseHandler{uc: uc}
}

// List returns every course as {title, owner}.
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.uc.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := make([]dto.CourseItem, 0, len(courses))
	for _, course := range courses {
		out = append(out, dto.CourseItem{Title: course.Title, Owner: course.Owner})
	}
	c.JSON(http.StatusOK, out)
}

// Get returns one course. Unknown and non-numeric ids both answer 404.
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		notFound(c)
		return
	}
	course, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CourseItem{Title: course.Title, Owner: course.Owner})
}

// Create stores a course owned by the caller and points Location at it.
func (h *CourseHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, platformmw.MessageResponse{Message: middleware.AccessDenied})
		return
	}
	in, ok := bindCourse(c)
	if !ok {
		return
	}

	id, err := h.uc.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		_ = c.Error(err)
		return
	}

	slog.Info("course created", "course_id", id, "user_id", user.ID)
	c.Header("Location", fmt.Sprintf("/courses/%d", id))
	c.Status(http.StatusCreated)
}

// Update replaces a course owned by the caller.
func (h *CourseHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, platformmw.MessageResponse{Message: middleware.AccessDenied})
		return
	}
	id, ok := courseID(c)
	if !ok {
		notFound(c)
		return
	}
	in, ok := bindCourse(c)
	if !ok {
		return
	}

	if err := h.uc.Update(c.Request.Context(), user.ID, id, in); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes a course owned by the caller. Missing courses answer 204.
func (h *CourseHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, platformmw.MessageResponse{Message: middleware.AccessDenied})
		return
	}
	id, ok := courseID(c)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.uc.Delete(c.Request.Context(), user.ID, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps usecase errors to responses; anything unknown goes to the error middleware.
func (h *CourseHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrCourseNotFound):
		notFound(c)
	case errors.Is(err, usecase.ErrForbidden):
		c.JSON(http.StatusForbidden, platformmw.MessageResponse{Message: ForbiddenMessage})
	default:
		_ = c.Error(err)
	}
}

func courseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func bindCourse(c *gin.Context) (usecase.CourseInput, bool) {
	var req dto.CourseRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		slog.Warn("course request binding failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Request body must be a valid JSON object"}})
		return usecase.CourseInput{}, false
	}
	return usecase.CourseInput{
		Title:           req.Title,
		Description:     req.Description,
		EstimatedTime:   req.EstimatedTime,
		MaterialsNeeded: req.MaterialsNeeded,
	}, true
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, platformmw.MessageResponse{Message: CourseNotFoundMessage})
}
