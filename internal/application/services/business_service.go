package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/repositories"
	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

// BusinessService handles tenant profiles, their branches, and review-link
// generation.
type BusinessService struct {
	repo     repositories.BusinessRepository
	linkBase string
}

// NewBusinessService creates a new business service. linkBase is the public
// origin review links are minted under.
func NewBusinessService(repo repositories.BusinessRepository, linkBase string) *BusinessService {
	return &BusinessService{
		repo:     repo,
		linkBase: strings.TrimRight(linkBase, "/"),
	}
}

// Create registers a new tenant. The ID is the owner's identity-provider uid.
func (s *BusinessService) Create(ctx context.Context, business *entities.Business) error {
	if business.ID == "" {
		return apperrors.NewValidationError("business id is required")
	}
	if strings.TrimSpace(business.BusinessName) == "" {
		return apperrors.NewValidationError("business name is required")
	}
	now := time.Now().UTC()
	business.CreatedAt = now
	business.UpdatedAt = now
	if business.Status == "" {
		business.Status = entities.BusinessStatusPending
	}
	if business.ReviewLinkURL == "" {
		business.ReviewLinkURL = s.GenerateReviewLink(business.BusinessName)
	}
	if business.Branches == nil {
		business.Branches = []entities.Branch{}
	}
	return s.repo.Create(ctx, business)
}

// GetByID retrieves a business by ID.
func (s *BusinessService) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces the business profile.
func (s *BusinessService) Update(ctx context.Context, business *entities.Business) error {
	if strings.TrimSpace(business.BusinessName) == "" {
		return apperrors.NewValidationError("business name is required")
	}
	return s.repo.Update(ctx, business)
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateReviewLink suggests a review link from the business name: the name
// lowercased and slugified under the public link origin.
func (s *BusinessService) GenerateReviewLink(businessName string) string {
	slug := strings.ToLower(strings.TrimSpace(businessName))
	slug = slugCleaner.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "your-business"
	}
	return s.linkBase + "/" + slug
}

// Branches returns the business's branch list.
func (s *BusinessService) Branches(ctx context.Context, businessID string) ([]entities.Branch, error) {
	business, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return business.Branches, nil
}

// AddBranch appends a branch and returns it with its assigned ID.
func (s *BusinessService) AddBranch(ctx context.Context, businessID string, branch entities.Branch) (*entities.Branch, error) {
	if strings.TrimSpace(branch.Name) == "" {
		return nil, apperrors.NewValidationError("branch name is required")
	}

	business, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	branch.ID = uuid.New().String()
	branch.IsActive = true
	branch.CreatedAt = time.Now().UTC()
	branches := append(business.Branches, branch)

	if err := s.repo.UpdateBranches(ctx, businessID, branches); err != nil {
		return nil, err
	}
	return &branch, nil
}

// UpdateBranch replaces a branch in place, keeping its ID and creation time.
func (s *BusinessService) UpdateBranch(ctx context.Context, businessID string, branch entities.Branch) error {
	if strings.TrimSpace(branch.Name) == "" {
		return apperrors.NewValidationError("branch name is required")
	}

	business, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		return err
	}

	for i, existing := range business.Branches {
		if existing.ID == branch.ID {
			branch.CreatedAt = existing.CreatedAt
			business.Branches[i] = branch
			return s.repo.UpdateBranches(ctx, businessID, business.Branches)
		}
	}
	return apperrors.NewNotFoundError("branch " + branch.ID + " not found")
}

// RemoveBranch deletes a branch from the list.
func (s *BusinessService) RemoveBranch(ctx context.Context, businessID, branchID string) error {
	business, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		return err
	}

	branches := make([]entities.Branch, 0, len(business.Branches))
	found := false
	for _, branch := range business.Branches {
		if branch.ID == branchID {
			found = true
			continue
		}
		branches = append(branches, branch)
	}
	if !found {
		return apperrors.NewNotFoundError("branch " + branchID + " not found")
	}
	return s.repo.UpdateBranches(ctx, businessID, branches)
}
