package services

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/repositories"
	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

// UserService handles registration of principals. Authentication itself is
// delegated to the identity provider; this service only records who exists
// and in what role.
type UserService struct {
	repo          repositories.UserRepository
	adminAuthCode string
}

// NewUserService creates a new user service.
func NewUserService(repo repositories.UserRepository, adminAuthCode string) *UserService {
	return &UserService{repo: repo, adminAuthCode: adminAuthCode}
}

// Register creates a user row for an authenticated principal. Email and
// username must be unique; registering as ADMIN requires the admin
// authorization code.
func (s *UserService) Register(ctx context.Context, user *entities.User, adminCode string) error {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))

	if user.ID == "" {
		return apperrors.NewValidationError("user id is required")
	}
	if user.Username == "" {
		return apperrors.NewValidationError("username is required")
	}
	if user.Email == "" || !strings.Contains(user.Email, "@") {
		return apperrors.NewValidationError("a valid email is required")
	}
	if user.Role == "" {
		user.Role = entities.RoleBusiness
	}
	if user.Role != entities.RoleBusiness && user.Role != entities.RoleAdmin {
		return apperrors.NewValidationError("unknown role: " + string(user.Role))
	}
	if user.Role == entities.RoleAdmin {
		if s.adminAuthCode == "" || subtle.ConstantTimeCompare([]byte(adminCode), []byte(s.adminAuthCode)) != 1 {
			return apperrors.NewForbiddenError("invalid admin authorization code")
		}
	}

	if existing, err := s.repo.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return apperrors.NewConflictError("email already registered")
	}
	if existing, err := s.repo.GetByUsername(ctx, user.Username); err == nil && existing != nil {
		return apperrors.NewConflictError("username already taken")
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	return s.repo.Create(ctx, user)
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return s.repo.GetByID(ctx, id)
}
