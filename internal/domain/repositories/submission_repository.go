package repositories

import (
	"context"
	"time"

	"github.com/reviewuplift/backend/internal/domain/entities"
)

// SubmissionFilter narrows moderation listings.
type SubmissionFilter struct {
	Status    entities.SubmissionStatus // empty = any
	MinRating int                       // 0 = any
	MaxRating int                       // 0 = any
	Search    string                    // matches name, review text, branch
	Limit     int
	Offset    int
}

// SubmissionRepository defines feedback-submission persistence.
//
// A submission lives in two locations: the global collection and the
// tenant-scoped read model the moderation screens query. Create must commit
// both or neither.
type SubmissionRepository interface {
	// Create inserts the submission into both locations atomically.
	Create(ctx context.Context, submission *entities.FeedbackSubmission) error

	// GetByID retrieves one of a business's submissions.
	GetByID(ctx context.Context, businessID, id string) (*entities.FeedbackSubmission, error)

	// ListByBusiness lists a tenant's submissions, newest first.
	ListByBusiness(ctx context.Context, businessID string, filter SubmissionFilter) ([]*entities.FeedbackSubmission, error)

	// UpdateStatus moves a submission through its moderation lifecycle.
	UpdateStatus(ctx context.Context, businessID, id string, status entities.SubmissionStatus) error

	// Reply records the business's reply.
	Reply(ctx context.Context, businessID, id, reply string, repliedAt time.Time) error

	// SetReplied toggles the replied flag without touching the reply text.
	SetReplied(ctx context.Context, businessID, id string, replied bool) error

	// Delete removes the submission from both locations.
	Delete(ctx context.Context, businessID, id string) error
}

// SubmissionSearchRepository is the optional full-text index over submissions.
type SubmissionSearchRepository interface {
	// Index upserts a submission document.
	Index(ctx context.Context, submission *entities.FeedbackSubmission) error

	// Search returns a tenant's submissions matching the query.
	Search(ctx context.Context, businessID, query string, limit int) ([]*entities.FeedbackSubmission, error)

	// Delete removes a submission document from the index.
	Delete(ctx context.Context, id string) error
}
