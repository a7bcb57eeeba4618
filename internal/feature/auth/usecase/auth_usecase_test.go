package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"course_api/internal/feature/auth/domain/entity"
)

// mockUserRepository is a mock implementation of UserRepository.
type mockUserRepository struct {
	ListUsersFunc   func(ctx context.Context) ([]entity.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
	CreateFunc      func(ctx context.Context, u *entity.User) (uint, error)
}

func (m *mockUserRepository) ListUsers(ctx context.Context) ([]entity.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return nil, nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) Create(ctx context.Context, u *entity.User) (uint, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return 1, nil
}

// bcryptHasher is a low-cost hasher for tests.
type bcryptHasher struct{}

func (bcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	return string(b), err
}

func (bcryptHasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// failingHasher always fails to hash.
type failingHasher struct{ bcryptHasher }

func (failingHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }

func TestAuthUsecase_Register(t *testing.T) {
	in := RegisterInput{FirstName: "Joe", LastName: "Smith", EmailAddress: "joe@smith.com", Password: "joepassword"}

	t.Run("successful registration hashes the password", func(t *testing.T) {
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, u *entity.User) (uint, error) {
				assert.Equal(t, "Joe", u.FirstName)
				assert.Equal(t, "Smith", u.LastName)
				assert.Equal(t, "joe@smith.com", u.EmailAddress)
				assert.NotEqual(t, "joepassword", u.Password, "password is not hashed")
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("joepassword")))
				return 7, nil
			},
		}

		id, err := NewAuthUsecase(repo, bcryptHasher{}).Register(context.Background(), in)
		require.NoError(t, err)
		assert.EqualValues(t, 7, id)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, u *entity.User) (uint, error) {
				return 0, ErrEmailAlreadyExists
			},
		}

		_, err := NewAuthUsecase(repo, bcryptHasher{}).Register(context.Background(), in)
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("hash failure", func(t *testing.T) {
		called := false
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, u *entity.User) (uint, error) {
				called = true
				return 1, nil
			},
		}

		_, err := NewAuthUsecase(repo, failingHasher{}).Register(context.Background(), in)
		assert.ErrorContains(t, err, "failed to hash password")
		assert.False(t, called, "repository must not be called")
	})
}

func TestAuthUsecase_EmailInUse(t *testing.T) {
	tests := []struct {
		name        string
		findFunc    func(ctx context.Context, email string) (*entity.User, error)
		expected    bool
		expectedErr bool
	}{
		{
			name: "email taken",
			findFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return &entity.User{ID: 1, EmailAddress: email}, nil
			},
			expected: true,
		},
		{
			name: "email free",
			findFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return nil, ErrUserNotFound
			},
			expected: false,
		},
		{
			name: "storage error",
			findFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return nil, errors.New("database is locked")
			},
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewAuthUsecase(&mockUserRepository{FindByEmailFunc: tt.findFunc}, bcryptHasher{})
			inUse, err := uc.EmailInUse(context.Background(), "joe@smith.com")
			if tt.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, inUse)
		})
	}
}

func TestAuthUsecase_Authenticate(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("joepassword"), bcrypt.MinCost)
	require.NoError(t, err)
	users := []entity.User{
		{ID: 1, FirstName: "Joe", LastName: "Smith", EmailAddress: "joe@smith.com", Password: string(hashed)},
		{ID: 2, FirstName: "Sally", LastName: "Jones", EmailAddress: "sally@jones.com", Password: string(hashed)},
	}
	repo := &mockUserRepository{
		ListUsersFunc: func(ctx context.Context) ([]entity.User, error) { return users, nil },
	}

	tests := []struct {
		name       string
		email      string
		password   string
		expectedID uint
		expectErr  error
	}{
		{"match", "joe@smith.com", "joepassword", 1, nil},
		{"second user", "sally@jones.com", "joepassword", 2, nil},
		{"wrong password", "joe@smith.com", "nope", 0, ErrInvalidCredentials},
		{"unknown email", "nobody@example.com", "joepassword", 0, ErrInvalidCredentials},
		{"email match is case-sensitive", "JOE@smith.com", "joepassword", 0, ErrInvalidCredentials},
		{"empty credentials", "", "", 0, ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewAuthUsecase(repo, bcryptHasher{})
			user, err := uc.Authenticate(context.Background(), tt.email, tt.password)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, user.ID)
		})
	}

	t.Run("storage error propagates", func(t *testing.T) {
		dbErr := errors.New("database is locked")
		failing := &mockUserRepository{
			ListUsersFunc: func(ctx context.Context) ([]entity.User, error) { return nil, dbErr },
		}

		_, err := NewAuthUsecase(failing, bcryptHasher{}).Authenticate(context.Background(), "joe@smith.com", "joepassword")
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}
