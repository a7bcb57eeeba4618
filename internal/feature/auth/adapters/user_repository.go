// Package adapters provides the repository implementations for the auth feature.
package adapters

import (
	"context"
	"time"

	"course_api/internal/feature/auth/domain/entity"
	"course_api/internal/feature/auth/usecase"
	"course_api/internal/platform/storage"
)

const userColumns = `"id", "firstName", "lastName", "emailAddress", "password", "createdAt", "updatedAt"`

// userRepository is the SQL implementation of usecase.UserRepository.
type userRepository struct {
	store *storage.Context
	now   func() time.Time
}

// userRepositoryがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userRepository)(nil)

// NewUserRepository creates a userRepository over store.
func NewUserRepository(store *storage.Context) *userRepository {
	return &userRepository{store: store, now: time.Now}
}

// ListUsers returns every user, password hashes included, ordered by id.
func (r *userRepository) ListUsers(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	q := `SELECT ` + userColumns + ` FROM "Users" ORDER BY "id"`
	if err := r.store.Retrieve(ctx, &users, q); err != nil {
		return nil, err
	}
	return users, nil
}

// FindByEmail returns the user whose email matches exactly.
// It returns usecase.ErrUserNotFound when no such user exists.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	q := `SELECT ` + userColumns + ` FROM "Users" WHERE "emailAddress" = ?`
	found, err := r.store.RetrieveSingle(ctx, &u, q, email)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, usecase.ErrUserNotFound
	}
	return &u, nil
}

// Create inserts u with server-set timestamps and returns the generated id.
// A duplicate email is reported as usecase.ErrEmailAlreadyExists.
func (r *userRepository) Create(ctx context.Context, u *entity.User) (uint, error) {
	now := r.now().UTC()
	q := `INSERT INTO "Users" ("firstName", "lastName", "emailAddress", "password", "createdAt", "updatedAt")
		VALUES (?, ?, ?, ?, ?, ?) RETURNING "id"`

	var id uint
	if err := r.store.RetrieveValue(ctx, &id, q, u.FirstName, u.LastName, u.EmailAddress, u.Password, now, now); err != nil {
		if storage.IsUniqueViolation(err) {
			return 0, usecase.ErrEmailAlreadyExists
		}
		return 0, err
	}
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	return id, nil
}
