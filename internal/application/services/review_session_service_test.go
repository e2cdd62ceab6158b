package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewuplift/backend/internal/adapters/cache"
	"github.com/reviewuplift/backend/internal/application/services"
	"github.com/reviewuplift/backend/internal/domain/entities"
	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

type stubRecorder struct {
	created []*entities.FeedbackSubmission
	err     error
}

func (s *stubRecorder) Create(ctx context.Context, submission *entities.FeedbackSubmission) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, submission)
	return nil
}

type sessionFixture struct {
	service  *services.ReviewSessionService
	recorder *stubRecorder
	repo     *stubBusinessRepo
	configs  *services.ConfigService
}

func newSessionFixture(t *testing.T, gating bool) *sessionFixture {
	t.Helper()
	repo := newStubBusinessRepo()
	configs := newConfigService(repo)

	cfg := entities.DefaultReviewLinkConfig()
	cfg.BusinessName = "Demo Coffee"
	cfg.ReviewLinkURL = "https://g.page/r/demo/review"
	cfg.IsReviewGatingEnabled = gating
	_, err := configs.Persist(context.Background(), "biz-1", cfg)
	require.NoError(t, err)

	recorder := &stubRecorder{}
	service := services.NewReviewSessionService(
		cache.NewLocalSessionStore(), configs, recorder, repo, 60)
	return &sessionFixture{service: service, recorder: recorder, repo: repo, configs: configs}
}

func (f *sessionFixture) startRated(t *testing.T, rating int) *entities.ReviewSession {
	t.Helper()
	ctx := context.Background()
	session, err := f.service.Start(ctx, "biz-1", "")
	require.NoError(t, err)
	session, outcome, err := f.service.SelectRating(ctx, session.ID, rating)
	require.NoError(t, err)
	require.Equal(t, entities.EffectNone, outcome.Effect)
	return session
}

func validForm() entities.FeedbackForm {
	return entities.FeedbackForm{
		Name:       "Ada Obi",
		Phone:      "+2348000000001",
		Email:      "ada@example.com",
		BranchName: "Downtown",
		Review:     "Waited twenty minutes.",
	}
}

func TestReviewSessionService_Start(t *testing.T) {
	fixture := newSessionFixture(t, true)

	session, err := fixture.service.Start(context.Background(), "biz-1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, entities.StateUnrated, session.State)
	assert.Equal(t, "Demo Coffee", session.Config.BusinessName)

	loaded, err := fixture.service.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
}

func TestReviewSessionService_SelectRating_RejectsOutOfRange(t *testing.T) {
	fixture := newSessionFixture(t, true)
	ctx := context.Background()
	session, err := fixture.service.Start(ctx, "biz-1", "")
	require.NoError(t, err)

	for _, rating := range []int{0, 6, -1} {
		updated, outcome, err := fixture.service.SelectRating(ctx, session.ID, rating)
		require.NoError(t, err)
		assert.Equal(t, entities.EffectInvalid, outcome.Effect)
		assert.Equal(t, entities.StateUnrated, updated.State)
	}
}

func TestReviewSessionService_LeaveReview_BeforeRating(t *testing.T) {
	fixture := newSessionFixture(t, true)
	ctx := context.Background()
	session, err := fixture.service.Start(ctx, "biz-1", "")
	require.NoError(t, err)

	_, outcome, err := fixture.service.LeaveReview(ctx, session.ID, entities.FeedbackForm{})
	require.NoError(t, err)
	assert.Equal(t, entities.EffectInvalid, outcome.Effect)
	assert.Equal(t, "please select a rating first", outcome.Message)
}

func TestReviewSessionService_Routing(t *testing.T) {
	cases := []struct {
		name   string
		gating bool
		rating int
		effect entities.ActionEffect
	}{
		{"gating on, 1 star collects feedback", true, 1, entities.EffectShowForm},
		{"gating on, 3 stars collects feedback", true, 3, entities.EffectShowForm},
		{"gating on, 4 stars redirects", true, 4, entities.EffectRedirect},
		{"gating on, 5 stars redirects", true, 5, entities.EffectRedirect},
		{"gating off, 1 star redirects", false, 1, entities.EffectRedirect},
		{"gating off, 3 stars redirects", false, 3, entities.EffectRedirect},
		{"gating off, 5 stars redirects", false, 5, entities.EffectRedirect},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := newSessionFixture(t, tc.gating)
			session := fixture.startRated(t, tc.rating)

			_, outcome, err := fixture.service.LeaveReview(context.Background(), session.ID, entities.FeedbackForm{})
			require.NoError(t, err)
			assert.Equal(t, tc.effect, outcome.Effect)
			if tc.effect == entities.EffectRedirect {
				assert.Equal(t, "https://g.page/r/demo/review", outcome.RedirectURL)
			}
		})
	}
}

func TestReviewSessionService_Redirect_CountsClickAndRecordsNothing(t *testing.T) {
	fixture := newSessionFixture(t, true)
	session := fixture.startRated(t, 5)

	updated, outcome, err := fixture.service.LeaveReview(context.Background(), session.ID, entities.FeedbackForm{})
	require.NoError(t, err)
	assert.Equal(t, entities.EffectRedirect, outcome.Effect)
	assert.Empty(t, fixture.recorder.created)
	// Session state is untouched so the visitor can come back and re-rate.
	assert.Equal(t, entities.StateRated, updated.State)

	fixture.repo.mu.Lock()
	defer fixture.repo.mu.Unlock()
	assert.Equal(t, 1, fixture.repo.clicks)
}

func TestReviewSessionService_TwoClickSubmitFlow(t *testing.T) {
	fixture := newSessionFixture(t, true)
	ctx := context.Background()
	session := fixture.startRated(t, 2)

	// First click reveals the form.
	updated, outcome, err := fixture.service.LeaveReview(ctx, session.ID, entities.FeedbackForm{})
	require.NoError(t, err)
	assert.Equal(t, entities.EffectShowForm, outcome.Effect)
	assert.Equal(t, entities.StateCollectingFeedback, updated.State)
	assert.Empty(t, fixture.recorder.created)

	// Second click submits the completed form.
	updated, outcome, err = fixture.service.LeaveReview(ctx, session.ID, validForm())
	require.NoError(t, err)
	assert.Equal(t, entities.EffectSubmitted, outcome.Effect)
	assert.Equal(t, services.ThankYouMessage, outcome.Message)
	assert.Equal(t, entities.StateSubmitted, updated.State)

	require.Len(t, fixture.recorder.created, 1)
	created := fixture.recorder.created[0]
	assert.Equal(t, "biz-1", created.BusinessID)
	assert.Equal(t, "Demo Coffee", created.BusinessName)
	assert.Equal(t, 2, created.Rating)
	assert.Equal(t, "Ada Obi", created.Name)
}

func TestReviewSessionService_Validation_FlagsFieldsAndStaysPut(t *testing.T) {
	fixture := newSessionFixture(t, true)
	ctx := context.Background()
	session := fixture.startRated(t, 1)

	_, _, err := fixture.service.LeaveReview(ctx, session.ID, entities.FeedbackForm{})
	require.NoError(t, err)

	partial := validForm()
	partial.Email = ""
	partial.Review = "   "
	updated, outcome, err := fixture.service.LeaveReview(ctx, session.ID, partial)
	require.NoError(t, err)

	assert.Equal(t, entities.EffectInvalid, outcome.Effect)
	assert.Equal(t, entities.FieldErrors{"email": true, "review": true}, outcome.FieldErrors)
	assert.Equal(t, entities.StateCollectingFeedback, updated.State)
	assert.Empty(t, fixture.recorder.created)

	// Fixing the flagged fields completes the flow.
	_, outcome, err = fixture.service.LeaveReview(ctx, session.ID, validForm())
	require.NoError(t, err)
	assert.Equal(t, entities.EffectSubmitted, outcome.Effect)
}

func TestReviewSessionService_SubmitFailure_KeepsFormForRetry(t *testing.T) {
	fixture := newSessionFixture(t, true)
	ctx := context.Background()
	session := fixture.startRated(t, 2)

	_, _, err := fixture.service.LeaveReview(ctx, session.ID, entities.FeedbackForm{})
	require.NoError(t, err)

	fixture.recorder.err = apperrors.NewInternalError("db down", nil)
	updated, outcome, err := fixture.service.LeaveReview(ctx, session.ID, validForm())
	require.NoError(t, err)
	assert.Equal(t, entities.EffectRetry, outcome.Effect)
	assert.Equal(t, entities.StateCollectingFeedback, updated.State)
	assert.Equal(t, validForm(), updated.Form)

	fixture.recorder.err = nil
	_, outcome, err = fixture.service.LeaveReview(ctx, session.ID, validForm())
	require.NoError(t, err)
	assert.Equal(t, entities.EffectSubmitted, outcome.Effect)
	assert.Len(t, fixture.recorder.created, 1)
}

func TestReviewSessionService_ResubmissionRefused(t *testing.T) {
	fixture := newSessionFixture(t, true)
	ctx := context.Background()
	session := fixture.startRated(t, 2)

	_, _, err := fixture.service.LeaveReview(ctx, session.ID, entities.FeedbackForm{})
	require.NoError(t, err)
	_, _, err = fixture.service.LeaveReview(ctx, session.ID, validForm())
	require.NoError(t, err)

	_, outcome, err := fixture.service.LeaveReview(ctx, session.ID, validForm())
	require.NoError(t, err)
	assert.Equal(t, entities.EffectInvalid, outcome.Effect)
	assert.Equal(t, "feedback already submitted", outcome.Message)
	assert.Len(t, fixture.recorder.created, 1)
}

func TestReviewSessionService_NewRatingResetsFlow(t *testing.T) {
	fixture := newSessionFixture(t, true)
	ctx := context.Background()
	session := fixture.startRated(t, 2)

	_, _, err := fixture.service.LeaveReview(ctx, session.ID, entities.FeedbackForm{})
	require.NoError(t, err)
	_, _, err = fixture.service.LeaveReview(ctx, session.ID, validForm())
	require.NoError(t, err)

	updated, outcome, err := fixture.service.SelectRating(ctx, session.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, entities.EffectNone, outcome.Effect)
	assert.Equal(t, entities.StateRated, updated.State)
	assert.Empty(t, updated.Message)

	// The high rating now routes to the public site.
	_, outcome, err = fixture.service.LeaveReview(ctx, session.ID, entities.FeedbackForm{})
	require.NoError(t, err)
	assert.Equal(t, entities.EffectRedirect, outcome.Effect)
}

func TestReviewSessionService_UnknownSession(t *testing.T) {
	fixture := newSessionFixture(t, true)

	_, err := fixture.service.Get(context.Background(), "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
