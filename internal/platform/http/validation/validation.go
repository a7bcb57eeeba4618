// Package validation declares per-route body rules and enforces them as gin middleware.
//
// A route declares an ordered list of field chains. Each chain checks one
// body field against predicates in order and stops at its first failure.
// Chains are evaluated concurrently since predicates may perform I/O, and
// failure messages are reported in declaration order.
package validation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// Body is the decoded JSON request body.
type Body map[string]any

// Predicate decides whether a field value is acceptable.
// value is nil when the field is missing from the body.
type Predicate interface {
	Satisfied(ctx context.Context, value any) (bool, error)
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc func(ctx context.Context, value any) (bool, error)

// Satisfied calls f.
func (f PredicateFunc) Satisfied(ctx context.Context, value any) (bool, error) {
	return f(ctx, value)
}

// check pairs a predicate with the message reported when it fails.
type check struct {
	predicate Predicate
	message   string
}

// Chain is the ordered list of checks applied to one field.
type Chain struct {
	field  string
	checks []check
}

// Field starts a chain for the named body field.
func Field(name string) *Chain {
	return &Chain{field: name}
}

// Check appends a predicate with its failure message.
func (c *Chain) Check(p Predicate, message string) *Chain {
	c.checks = append(c.checks, check{predicate: p, message: message})
	return c
}

// Exists appends the "present and non-empty" check with the standard message.
func (c *Chain) Exists() *Chain {
	return c.Check(Exists(), fmt.Sprintf("Please provide a value for %q", c.field))
}

// IsEmail appends the email format check with the standard message.
func (c *Chain) IsEmail() *Chain {
	return c.Check(Email(), fmt.Sprintf("Please provide a valid email address for %q", c.field))
}

// run returns the first failing message, or "" when every check passes.
func (c *Chain) run(ctx context.Context, body Body) (string, error) {
	value := body[c.field]
	for _, chk := range c.checks {
		ok, err := chk.predicate.Satisfied(ctx, value)
		if err != nil {
			return "", fmt.Errorf("validate %s: %w", c.field, err)
		}
		if !ok {
			return chk.message, nil
		}
	}
	return "", nil
}

// Evaluate runs every chain against body and returns failure messages in chain order.
func Evaluate(ctx context.Context, body Body, chains ...*Chain) ([]string, error) {
	results := make([]string, len(chains))

	g, gctx := errgroup.WithContext(ctx)
	for i, chain := range chains {
		i, chain := i, chain
		g.Go(func() error {
			msg, err := chain.run(gctx, body)
			if err != nil {
				return err
			}
			results[i] = msg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	messages := make([]string, 0, len(results))
	for _, msg := range results {
		if msg != "" {
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

// ErrorsResponse is the body returned for validation failures.
type ErrorsResponse struct {
	Errors []string `json:"errors"`
}

// Validate returns middleware that enforces chains against the JSON body.
// On failure it aborts with 400 and the full ordered message list.
// Predicate errors are handed to the error middleware via c.Error.
func Validate(chains ...*Chain) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := Body{}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil && !errors.Is(err, io.EOF) {
			slog.Warn("request body is not valid JSON", "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorsResponse{Errors: []string{"Request body must be a valid JSON object"}})
			return
		}

		messages, err := Evaluate(c.Request.Context(), body, chains...)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if len(messages) > 0 {
			slog.Info("request validation failed", "path", c.FullPath(), "errors", messages)
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorsResponse{Errors: messages})
			return
		}
		c.Next()
	}
}

var validate = validator.New()

// Exists is satisfied by strings that are not empty or whitespace-only.
// Missing fields and non-string values fail.
func Exists() Predicate {
	return PredicateFunc(func(_ context.Context, value any) (bool, error) {
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		return strings.TrimSpace(s) != "", nil
	})
}

// MaxBytes is satisfied by strings at most n bytes long.
func MaxBytes(n int) Predicate {
	return PredicateFunc(func(_ context.Context, value any) (bool, error) {
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		return len(s) <= n, nil
	})
}

// Email is satisfied by strings that are syntactically valid email addresses.
func Email() Predicate {
	return PredicateFunc(func(_ context.Context, value any) (bool, error) {
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		return validate.Var(s, "required,email") == nil, nil
	})
}

// Unique is satisfied when exists reports that no record holds the value.
// exists usually performs a repository lookup.
func Unique(exists func(ctx context.Context, value string) (bool, error)) Predicate {
	return PredicateFunc(func(ctx context.Context, value any) (bool, error) {
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		taken, err := exists(ctx, s)
		if err != nil {
			return false, err
		}
		return !taken, nil
	})
}
