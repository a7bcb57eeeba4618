// Package seed loads the fixed initial dataset into a freshly reset schema.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	authusecase "course_api/internal/feature/auth/usecase"
	"course_api/internal/feature/courses/domain/entity"
)

//go:embed data.json
var defaultData []byte

// User is a seed account with a plaintext password.
type User struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
}

// Course is a seed course. UserID is the 1-based position of its owner in Data.Users.
type Course struct {
	UserID          uint    `json:"userId"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	EstimatedTime   *string `json:"estimatedTime"`
	MaterialsNeeded *string `json:"materialsNeeded"`
}

// Data is the whole seed dataset.
type Data struct {
	Users   []User   `json:"users"`
	Courses []Course `json:"courses"`
}

// Registerer stores a user, hashing the password.
type Registerer interface {
	Register(ctx context.Context, in authusecase.RegisterInput) (uint, error)
}

// CourseCreator stores a course as is.
type CourseCreator interface {
	Create(ctx context.Context, c *entity.Course) (uint, error)
}

// Default returns the embedded dataset.
func Default() (Data, error) {
	return Parse(defaultData)
}

// Parse decodes a dataset.
func Parse(b []byte) (Data, error) {
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return Data{}, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return d, nil
}

// Load inserts users, then courses. Course owners are remapped from dataset
// positions to the ids the store generated.
func Load(ctx context.Context, data Data, users Registerer, courses CourseCreator) error {
	ids := make([]uint, len(data.Users))
	for i, u := range data.Users {
		id, err := users.Register(ctx, authusecase.RegisterInput{
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			EmailAddress: u.EmailAddress,
			Password:     u.Password,
		})
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.EmailAddress, err)
		}
		ids[i] = id
	}

	for _, c := range data.Courses {
		if c.UserID == 0 || int(c.UserID) > len(ids) {
			return fmt.Errorf("seed course %q references unknown user %d", c.Title, c.UserID)
		}
		course := &entity.Course{
			UserID:          ids[c.UserID-1],
			Title:           c.Title,
			Description:     c.Description,
			EstimatedTime:   c.EstimatedTime,
			MaterialsNeeded: c.MaterialsNeeded,
		}
		if _, err := courses.Create(ctx, course); err != nil {
			return fmt.Errorf("failed to seed course %q: %w", c.Title, err)
		}
	}

	slog.Info("seed data loaded", "users", len(data.Users), "courses", len(data.Courses))
	return nil
}
