package services

import (
	"context"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/repositories"
	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

// AdminService is the platform-operator view over tenants and principals.
type AdminService struct {
	businessRepo repositories.BusinessRepository
	userRepo     repositories.UserRepository
}

// NewAdminService creates a new admin service.
func NewAdminService(businessRepo repositories.BusinessRepository, userRepo repositories.UserRepository) *AdminService {
	return &AdminService{
		businessRepo: businessRepo,
		userRepo:     userRepo,
	}
}

// ListBusinesses returns tenants with their review activity.
func (s *AdminService) ListBusinesses(ctx context.Context, limit, offset int) ([]*entities.BusinessOverview, error) {
	return s.businessRepo.ListOverviews(ctx, limit, offset)
}

// UpdateBusinessStatus moves a tenant between active, pending, and suspended.
func (s *AdminService) UpdateBusinessStatus(ctx context.Context, businessID string, status entities.BusinessStatus) error {
	if !entities.ValidBusinessStatus(status) {
		return apperrors.NewValidationError("invalid business status: " + string(status))
	}
	return s.businessRepo.UpdateStatus(ctx, businessID, status)
}

// ListUsers returns registered principals, newest first.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}
