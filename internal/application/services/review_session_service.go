package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/providers"
	"github.com/reviewuplift/backend/internal/domain/repositories"
	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

// ThankYouMessage acknowledges a recorded feedback submission.
const ThankYouMessage = "Thank you for your feedback! We appreciate your input."

// submissionRecorder is the slice of SubmissionService the state machine needs.
type submissionRecorder interface {
	Create(ctx context.Context, submission *entities.FeedbackSubmission) error
}

// ReviewSessionService drives a visitor's pass through the review-gating
// flow. All routing decisions live in one place: a rating at or above the
// threshold, or any rating with gating disabled, sends the visitor to the
// public review site and records nothing; a low rating with gating enabled
// collects private feedback instead.
type ReviewSessionService struct {
	sessions     providers.SessionStore
	configs      *ConfigService
	submissions  submissionRecorder
	businessRepo repositories.BusinessRepository
	ttlSeconds   int
}

// NewReviewSessionService creates a new review session service.
// businessRepo may be nil when link-click accounting is not wired.
func NewReviewSessionService(
	sessions providers.SessionStore,
	configs *ConfigService,
	submissions submissionRecorder,
	businessRepo repositories.BusinessRepository,
	ttlSeconds int,
) *ReviewSessionService {
	if ttlSeconds <= 0 {
		ttlSeconds = 1800
	}
	return &ReviewSessionService{
		sessions:     sessions,
		configs:      configs,
		submissions:  submissions,
		businessRepo: businessRepo,
		ttlSeconds:   ttlSeconds,
	}
}

// Start opens a session for the review page identified by the share token
// and/or business ID. Config resolution never fails, so neither does Start
// short of a session store outage.
func (s *ReviewSessionService) Start(ctx context.Context, businessID, token string) (*entities.ReviewSession, error) {
	now := time.Now().UTC()
	session := &entities.ReviewSession{
		ID:         uuid.New().String(),
		BusinessID: businessID,
		Config:     s.configs.Load(ctx, businessID, token),
		State:      entities.StateUnrated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.sessions.Save(ctx, session, s.ttlSeconds); err != nil {
		return nil, err
	}
	return session, nil
}

// Get retrieves a session by ID.
func (s *ReviewSessionService) Get(ctx context.Context, id string) (*entities.ReviewSession, error) {
	return s.sessions.Get(ctx, id)
}

// SelectRating records a star value. Any prior progress downstream of the
// rating (revealed form, field errors, acknowledgement, submitted flag) is
// reset, so a visitor can always change their mind and go around again.
func (s *ReviewSessionService) SelectRating(ctx context.Context, id string, rating int) (*entities.ReviewSession, *entities.ActionOutcome, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if rating < 1 || rating > 5 {
		return session, &entities.ActionOutcome{
			Effect:  entities.EffectInvalid,
			Message: "rating must be between 1 and 5",
		}, nil
	}

	session.Rating = rating
	session.State = entities.StateRated
	session.FieldErrors = nil
	session.Message = ""
	session.UpdatedAt = time.Now().UTC()

	if err := s.sessions.Save(ctx, session, s.ttlSeconds); err != nil {
		return nil, nil, err
	}
	return session, &entities.ActionOutcome{Effect: entities.EffectNone}, nil
}

// LeaveReview advances the flow from the "Leave us a review" action. The
// outcome tells the caller what happened: a redirect to the public review
// site, the private form being revealed, validation flags, a recorded
// submission, or a retryable write failure.
func (s *ReviewSessionService) LeaveReview(ctx context.Context, id string, form entities.FeedbackForm) (*entities.ReviewSession, *entities.ActionOutcome, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	switch session.State {
	case entities.StateUnrated:
		return session, &entities.ActionOutcome{
			Effect:  entities.EffectInvalid,
			Message: "please select a rating first",
		}, nil
	case entities.StateSubmitted:
		// Resubmission is refused until a new rating resets the flow.
		return session, &entities.ActionOutcome{
			Effect:  entities.EffectInvalid,
			Message: "feedback already submitted",
		}, nil
	}

	// High ratings, and every rating when gating is off, route to the public
	// review site. Nothing is recorded beyond the click counter.
	if !session.Config.IsReviewGatingEnabled || session.Rating >= entities.PositiveRatingThreshold {
		s.countLinkClick(ctx, session.BusinessID)
		return session, &entities.ActionOutcome{
			Effect:      entities.EffectRedirect,
			RedirectURL: session.Config.ReviewLinkURL,
		}, nil
	}

	if session.State == entities.StateRated {
		// First click reveals the form; nothing is written yet.
		session.State = entities.StateCollectingFeedback
		session.Form = form
		session.FieldErrors = nil
		session.UpdatedAt = time.Now().UTC()
		if err := s.sessions.Save(ctx, session, s.ttlSeconds); err != nil {
			return nil, nil, err
		}
		return session, &entities.ActionOutcome{Effect: entities.EffectShowForm}, nil
	}

	// Second click: validate and submit.
	session.Form = form
	if fieldErrors := form.Validate(); fieldErrors != nil {
		session.FieldErrors = fieldErrors
		session.UpdatedAt = time.Now().UTC()
		if err := s.sessions.Save(ctx, session, s.ttlSeconds); err != nil {
			return nil, nil, err
		}
		return session, &entities.ActionOutcome{
			Effect:      entities.EffectInvalid,
			FieldErrors: fieldErrors,
		}, nil
	}

	session.State = entities.StateSubmitting
	session.FieldErrors = nil
	submission := &entities.FeedbackSubmission{
		BusinessID:   session.BusinessID,
		BusinessName: session.Config.BusinessName,
		Name:         form.Name,
		Phone:        form.Phone,
		Email:        form.Email,
		BranchName:   form.BranchName,
		Review:       form.Review,
		Rating:       session.Rating,
	}

	if err := s.submissions.Create(ctx, submission); err != nil {
		// The typed form survives the failure so the visitor need not retype.
		session.State = entities.StateCollectingFeedback
		session.UpdatedAt = time.Now().UTC()
		if saveErr := s.sessions.Save(ctx, session, s.ttlSeconds); saveErr != nil {
			return nil, nil, saveErr
		}
		log.Printf("Warning: Failed to record feedback submission for session %s: %v", session.ID, err)
		return session, &entities.ActionOutcome{
			Effect:  entities.EffectRetry,
			Message: "failed to submit review, please try again",
		}, nil
	}

	session.State = entities.StateSubmitted
	session.Message = ThankYouMessage
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Save(ctx, session, s.ttlSeconds); err != nil {
		return nil, nil, err
	}
	return session, &entities.ActionOutcome{
		Effect:  entities.EffectSubmitted,
		Message: ThankYouMessage,
	}, nil
}

// countLinkClick bumps the redirect counter. Analytics only; never fails the
// redirect.
func (s *ReviewSessionService) countLinkClick(ctx context.Context, businessID string) {
	if s.businessRepo == nil || businessID == "" {
		return
	}
	if err := s.businessRepo.IncrementLinkClicks(ctx, businessID); err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			log.Printf("Warning: Failed to count link click for business %s: %v", businessID, err)
		}
	}
}
