// Package middleware provides the HTTP basic authentication middleware.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"course_api/internal/feature/auth/domain/entity"
	"course_api/internal/feature/auth/usecase"
	platformmw "course_api/internal/platform/http/middleware"
)

// AccessDenied is the only message a rejected request receives.
const AccessDenied = "Access Denied"

// ContextUserKey is the gin context key holding the authenticated *entity.User.
const ContextUserKey = "currentUser"

// Authenticator resolves credentials to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*entity.User, error)
}

// BasicAuth returns a Gin middleware that authenticates the request with
// HTTP basic credentials (email address as the user name).
// On success the user is stored under ContextUserKey.
func BasicAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, password, ok := c.Request.BasicAuth()
		if !ok {
			slog.Warn("authentication failed: no credentials", "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
			deny(c)
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), email, password)
		if err != nil {
			if errors.Is(err, usecase.ErrInvalidCredentials) {
				slog.Warn("authentication failed", "email", email, "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
				deny(c)
				return
			}
			// ストレージエラーはエラーハンドラーに委譲
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user attached by BasicAuth.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entity.User)
	return user, ok && user != nil
}

func deny(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, platformmw.MessageResponse{Message: AccessDenied})
}
