// Package router wires HTTP routes to their handler chains.
package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "course_api/internal/feature/auth/transport/handler"
	authmw "course_api/internal/feature/auth/transport/middleware"
	coursehandler "course_api/internal/feature/courses/transport/handler"
	platformhandler "course_api/internal/platform/http/handler"
	"course_api/internal/platform/http/middleware"
	"course_api/internal/platform/http/validation"
	"course_api/internal/platform/password"
)

// Deps holds everything the routes need.
type Deps struct {
	Users         *authhandler.UserHandler
	Courses       *coursehandler.CourseHandler
	Authenticator authmw.Authenticator
	// EmailInUse backs the uniqueness rule of user registration.
	EmailInUse   func(ctx context.Context, email string) (bool, error)
	HealthChecks []platformhandler.Check
	// CORSOrigins limits cross-origin callers; empty allows any origin.
	CORSOrigins []string
}

// PasswordTooLongMessage is reported for passwords bcrypt cannot hash.
const PasswordTooLongMessage = "Password must be at most 72 bytes"

// RegisterUserRules are the body rules of POST /users.
func RegisterUserRules(emailInUse func(ctx context.Context, email string) (bool, error)) []*validation.Chain {
	return []*validation.Chain{
		validation.Field("firstName").Exists(),
		validation.Field("lastName").Exists(),
		validation.Field("emailAddress").Exists().IsEmail().
			Check(validation.Unique(emailInUse), authhandler.EmailInUseMessage),
		validation.Field("password").Exists().
			Check(validation.MaxBytes(password.MaxBytes), PasswordTooLongMessage),
	}
}

// CourseRules are the body rules of POST and PUT /courses.
func CourseRules() []*validation.Chain {
	return []*validation.Chain{
		validation.Field("title").Exists(),
		validation.Field("description").Exists(),
	}
}

// corsConfig lets browser clients send basic credentials and read Location.
func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	cfg.ExposeHeaders = []string{"Location"}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), middleware.Recovery(), cors.New(corsConfig(d.CORSOrigins)), middleware.ErrorHandler())

	// 導通確認用
	r.Any("/healthz", platformhandler.Health(d.HealthChecks...))

	api := r.Group("/api")
	requireUser := authmw.BasicAuth(d.Authenticator)
	validCourse := validation.Validate(CourseRules()...)

	// 認証不要
	api.POST("/users", validation.Validate(RegisterUserRules(d.EmailInUse)...), d.Users.Register)
	api.GET("/courses", d.Courses.List)
	api.GET("/courses/:id", d.Courses.Get)

	// 認証必須のルート
	// 認証を先に行い、未認証のリクエストには本文の検証結果を返さない
	api.GET("/users", requireUser, d.Users.Current)
	api.POST("/courses", requireUser, validCourse, d.Courses.Create)
	api.PUT("/courses/:id", requireUser, validCourse, d.Courses.Update)
	api.DELETE("/courses/:id", requireUser, d.Courses.Delete)

	r.NoRoute(middleware.NotFound)
	return r
}
