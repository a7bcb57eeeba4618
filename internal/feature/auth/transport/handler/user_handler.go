// Package handler provides the HTTP handlers for the auth feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"course_api/internal/feature/auth/transport/http/dto"
	"course_api/internal/feature/auth/transport/middleware"
	"course_api/internal/feature/auth/usecase"
	platformmw "course_api/internal/platform/http/middleware"
)

// UserUsecase defines the user operations the handler needs.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type UserUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (uint, error)
}

// UserHandler handles the /users endpoints.
type UserHandler struct {
	users UserUsecase
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users UserUsecase) *UserHandler {
	return &UserHandler{users: users}
}

// Current returns the authenticated user's email address and password hash.
// It must run behind the basic auth middleware.
func (h *UserHandler) Current(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, platformmw.MessageResponse{Message: middleware.AccessDenied})
		return
	}
	c.JSON(http.StatusOK, dto.CurrentUserResponse{
		EmailAddress: user.EmailAddress,
		Password:     user.Password,
	})
}

// Register creates a user account.
// - 201 with an empty body on success
// - 400 when the email was taken between validation and insert
// - other errors are handed to the error middleware
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		slog.Warn("register request binding failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Request body must be a valid JSON object"}})
		return
	}

	id, err := h.users.Register(c.Request.Context(), usecase.RegisterInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmailAddress: req.EmailAddress,
		Password:     req.Password,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrEmailAlreadyExists) {
			slog.Info("register rejected: email already in use", "email", req.EmailAddress, "remote_addr", c.ClientIP())
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{EmailInUseMessage}})
			return
		}
		_ = c.Error(err)
		return
	}

	slog.Info("user registered", "user_id", id, "remote_addr", c.ClientIP())
	c.Status(http.StatusCreated)
}

// EmailInUseMessage is reported when registration hits an existing email.
const EmailInUseMessage = "Email address is already in use"
