package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"course_api/internal/feature/auth/domain/entity"
)

// dummyHash is compared against when no user matches, so unknown emails
// cost the same as wrong passwords.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository abstracts the persistence layer for users.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// ListUsers returns every user including the password hash.
	ListUsers(ctx context.Context) ([]entity.User, error)

	// FindByEmail returns the user with exactly this email, or ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create inserts u and returns the generated id.
	// It returns ErrEmailAlreadyExists if the email is taken.
	Create(ctx context.Context, u *entity.User) (uint, error)
}

// PasswordHasher is the one-way hashing capability.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	FirstName    string
	LastName     string
	EmailAddress string
	Password     string
}

// AuthUsecase implements registration and credential checks.
type AuthUsecase struct {
	users  UserRepository
	hasher PasswordHasher
}

// NewAuthUsecase creates an AuthUsecase.
func NewAuthUsecase(users UserRepository, hasher PasswordHasher) *AuthUsecase {
	return &AuthUsecase{users: users, hasher: hasher}
}

// Register hashes the password and stores a new user.
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (uint, error) {
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		EmailAddress: in.EmailAddress,
		Password:     hashed,
	}
	return u.users.Create(ctx, user)
}

// EmailInUse reports whether a user already holds email.
func (u *AuthUsecase) EmailInUse(ctx context.Context, email string) (bool, error) {
	_, err := u.users.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	return false, err
}

// Authenticate resolves the user whose email exactly matches and whose
// password hash matches password.
// Unknown email and wrong password both return ErrInvalidCredentials; the
// distinction is only logged. Storage errors are returned as is.
func (u *AuthUsecase) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	users, err := u.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	var found *entity.User
	for i := range users {
		if users[i].EmailAddress == email {
			found = &users[i]
			break
		}
	}

	hash := dummyHash
	if found != nil {
		hash = found.Password
	}
	compareErr := u.hasher.Compare(hash, password)

	if found == nil {
		slog.WarnContext(ctx, "authentication failed: user not found", "email", email)
		return nil, ErrInvalidCredentials
	}
	if compareErr != nil {
		slog.WarnContext(ctx, "authentication failed: password mismatch", "email", email)
		return nil, ErrInvalidCredentials
	}
	return found, nil
}
