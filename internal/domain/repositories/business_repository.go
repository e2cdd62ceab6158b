package repositories

import (
	"context"

	"github.com/reviewuplift/backend/internal/domain/entities"
)

// BusinessRepository defines tenant persistence. The business row is also the
// remote mirror of the review-link configuration.
type BusinessRepository interface {
	// Create creates a new business
	Create(ctx context.Context, business *entities.Business) error

	// GetByID retrieves a business by ID
	GetByID(ctx context.Context, id string) (*entities.Business, error)

	// Update replaces the business row
	Update(ctx context.Context, business *entities.Business) error

	// UpdateConfig merges a review-link configuration onto the row. This is
	// the mirror write: best-effort callers must tolerate its failure.
	UpdateConfig(ctx context.Context, id string, cfg entities.ReviewLinkConfig) error

	// UpdateBranches replaces the branch document
	UpdateBranches(ctx context.Context, id string, branches []entities.Branch) error

	// UpdateStatus changes the tenant lifecycle status
	UpdateStatus(ctx context.Context, id string, status entities.BusinessStatus) error

	// IncrementLinkClicks bumps the public-redirect counter
	IncrementLinkClicks(ctx context.Context, id string) error

	// ListOverviews returns tenants with their review activity, for admins
	ListOverviews(ctx context.Context, limit, offset int) ([]*entities.BusinessOverview, error)
}

// UserRepository defines principal persistence.
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*entities.User, error)

	// List returns users, newest first
	List(ctx context.Context, limit, offset int) ([]*entities.User, error)
}
