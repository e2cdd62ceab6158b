package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/repositories"
	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

// SubmissionService handles feedback submissions and their moderation
// lifecycle.
type SubmissionService struct {
	repo       repositories.SubmissionRepository
	searchRepo repositories.SubmissionSearchRepository
}

// NewSubmissionService creates a new submission service. searchRepo may be
// nil when no search engine is configured.
func NewSubmissionService(repo repositories.SubmissionRepository, searchRepo repositories.SubmissionSearchRepository) *SubmissionService {
	return &SubmissionService{
		repo:       repo,
		searchRepo: searchRepo,
	}
}

// Create stores a submission and indexes it.
func (s *SubmissionService) Create(ctx context.Context, submission *entities.FeedbackSubmission) error {
	if submission.ID == "" {
		submission.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = now
	}
	submission.UpdatedAt = now
	if submission.Status == "" {
		submission.Status = entities.SubmissionStatusPending
	}

	// 1. Save to database
	if err := s.repo.Create(ctx, submission); err != nil {
		return err
	}

	// 2. Index in search engine
	if s.searchRepo != nil {
		if err := s.searchRepo.Index(ctx, submission); err != nil {
			// Log error but don't fail the request (eventual consistency)
			log.Printf("Warning: Failed to index submission %s: %v", submission.ID, err)
		}
	}

	return nil
}

// GetByID retrieves one of a business's submissions.
func (s *SubmissionService) GetByID(ctx context.Context, businessID, id string) (*entities.FeedbackSubmission, error) {
	return s.repo.GetByID(ctx, businessID, id)
}

// List returns a tenant's submissions. Free-text search goes through the
// search engine when one is configured; everything else, and the fallback
// when it is not, is answered by the database.
func (s *SubmissionService) List(ctx context.Context, businessID string, filter repositories.SubmissionFilter) ([]*entities.FeedbackSubmission, error) {
	query := strings.TrimSpace(filter.Search)
	if query != "" && s.searchRepo != nil && filter.Status == "" && filter.MinRating == 0 && filter.MaxRating == 0 {
		results, err := s.searchRepo.Search(ctx, businessID, query, filter.Limit)
		if err == nil {
			return results, nil
		}
		log.Printf("Warning: Submission search failed for business %s, falling back to database: %v", businessID, err)
	}
	return s.repo.ListByBusiness(ctx, businessID, filter)
}

// UpdateStatus moves a submission through its moderation lifecycle.
func (s *SubmissionService) UpdateStatus(ctx context.Context, businessID, id string, status entities.SubmissionStatus) error {
	if !entities.ValidSubmissionStatus(status) {
		return apperrors.NewValidationError("invalid submission status: " + string(status))
	}
	if err := s.repo.UpdateStatus(ctx, businessID, id, status); err != nil {
		return err
	}
	s.reindex(ctx, businessID, id)
	return nil
}

// Reply records the business's reply to a submission.
func (s *SubmissionService) Reply(ctx context.Context, businessID, id, reply string) error {
	if strings.TrimSpace(reply) == "" {
		return apperrors.NewValidationError("reply must not be empty")
	}
	return s.repo.Reply(ctx, businessID, id, reply, time.Now().UTC())
}

// SetReplied toggles the replied flag.
func (s *SubmissionService) SetReplied(ctx context.Context, businessID, id string, replied bool) error {
	return s.repo.SetReplied(ctx, businessID, id, replied)
}

// Delete removes a submission everywhere.
func (s *SubmissionService) Delete(ctx context.Context, businessID, id string) error {
	if err := s.repo.Delete(ctx, businessID, id); err != nil {
		return err
	}
	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			log.Printf("Warning: Failed to delete submission %s from index: %v", id, err)
		}
	}
	return nil
}

func (s *SubmissionService) reindex(ctx context.Context, businessID, id string) {
	if s.searchRepo == nil {
		return
	}
	submission, err := s.repo.GetByID(ctx, businessID, id)
	if err != nil {
		log.Printf("Warning: Failed to reload submission %s for reindex: %v", id, err)
		return
	}
	if err := s.searchRepo.Index(ctx, submission); err != nil {
		log.Printf("Warning: Failed to reindex submission %s: %v", id, err)
	}
}
