package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewuplift/backend/internal/application/services"
	"github.com/reviewuplift/backend/internal/domain/entities"
	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

type stubUserRepo struct {
	users map[string]*entities.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*entities.User)}
}

func (s *stubUserRepo) Create(ctx context.Context, user *entities.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (s *stubUserRepo) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	users := make([]*entities.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	return users, nil
}

func TestUserService_Register_DefaultsToBusinessRole(t *testing.T) {
	repo := newStubUserRepo()
	service := services.NewUserService(repo, "sekrit")

	user := &entities.User{ID: "uid-1", Username: "ada", Email: "Ada@Example.COM"}
	require.NoError(t, service.Register(context.Background(), user, ""))

	assert.Equal(t, entities.RoleBusiness, user.Role)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.CreatedAt.IsZero())

	stored, err := service.GetByID(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "ada", stored.Username)
}

func TestUserService_Register_Validation(t *testing.T) {
	service := services.NewUserService(newStubUserRepo(), "sekrit")
	ctx := context.Background()

	cases := []struct {
		name string
		user entities.User
	}{
		{"missing id", entities.User{Username: "ada", Email: "a@b.com"}},
		{"missing username", entities.User{ID: "uid-1", Email: "a@b.com"}},
		{"missing email", entities.User{ID: "uid-1", Username: "ada"}},
		{"bad email", entities.User{ID: "uid-1", Username: "ada", Email: "nope"}},
		{"unknown role", entities.User{ID: "uid-1", Username: "ada", Email: "a@b.com", Role: "WIZARD"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := tc.user
			err := service.Register(ctx, &user, "")
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		})
	}
}

func TestUserService_Register_AdminCodeGate(t *testing.T) {
	ctx := context.Background()
	service := services.NewUserService(newStubUserRepo(), "sekrit")

	admin := &entities.User{ID: "uid-1", Username: "root", Email: "root@b.com", Role: entities.RoleAdmin}
	err := service.Register(ctx, admin, "wrong")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))

	err = service.Register(ctx, admin, "sekrit")
	assert.NoError(t, err)
}

func TestUserService_Register_AdminRefusedWhenNoCodeConfigured(t *testing.T) {
	service := services.NewUserService(newStubUserRepo(), "")

	admin := &entities.User{ID: "uid-1", Username: "root", Email: "root@b.com", Role: entities.RoleAdmin}
	err := service.Register(context.Background(), admin, "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
}

func TestUserService_Register_Conflicts(t *testing.T) {
	ctx := context.Background()
	repo := newStubUserRepo()
	service := services.NewUserService(repo, "sekrit")

	first := &entities.User{ID: "uid-1", Username: "ada", Email: "ada@b.com"}
	require.NoError(t, service.Register(ctx, first, ""))

	sameEmail := &entities.User{ID: "uid-2", Username: "other", Email: "ADA@b.com"}
	err := service.Register(ctx, sameEmail, "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))

	sameUsername := &entities.User{ID: "uid-3", Username: "ada", Email: "new@b.com"}
	err = service.Register(ctx, sameUsername, "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
}
