package entities

import (
	"strings"
	"time"
)

// SessionState is the explicit review-flow state. The flow is a straight line
// with one loop: picking a new rating from any state returns to StateRated and
// clears everything downstream.
type SessionState string

const (
	// StateUnrated means the customer has not picked a star value yet.
	StateUnrated SessionState = "unrated"

	// StateRated means a star value 1-5 is selected.
	StateRated SessionState = "rated"

	// StateCollectingFeedback means the private feedback form is visible.
	StateCollectingFeedback SessionState = "collecting_feedback"

	// StateSubmitting means a submission write is in flight.
	StateSubmitting SessionState = "submitting"

	// StateSubmitted means feedback was recorded; resubmission is refused
	// until a new rating resets the flow.
	StateSubmitted SessionState = "submitted"
)

// PositiveRatingThreshold splits public-review routing from private feedback
// collection. Ratings at or above it always route to the public review site.
// This is a fixed business rule, not a per-tenant setting.
const PositiveRatingThreshold = 4

// FeedbackForm carries the five required private-feedback fields.
type FeedbackForm struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	BranchName string `json:"branchname"`
	Review     string `json:"review"`
}

// FieldErrors flags each invalid form field for inline display. Validation
// failures are state, not errors: the machine stays in place and the renderer
// marks the flagged fields.
type FieldErrors map[string]bool

// Validate flags every field that is empty after trimming. Email format is
// deliberately not checked beyond presence.
func (f *FeedbackForm) Validate() FieldErrors {
	errs := FieldErrors{}
	for field, value := range map[string]string{
		"name":       f.Name,
		"phone":      f.Phone,
		"email":      f.Email,
		"branchname": f.BranchName,
		"review":     f.Review,
	} {
		if strings.TrimSpace(value) == "" {
			errs[field] = true
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ReviewSession is one customer's pass through the review-gating flow,
// resumable across requests by ID.
type ReviewSession struct {
	ID          string           `json:"id"`
	BusinessID  string           `json:"business_id"`
	Config      ReviewLinkConfig `json:"config"`
	State       SessionState     `json:"state"`
	Rating      int              `json:"rating"`
	Form        FeedbackForm     `json:"form"`
	FieldErrors FieldErrors      `json:"field_errors,omitempty"`
	Message     string           `json:"message,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ActionEffect tells the caller what to do after a transition.
type ActionEffect string

const (
	// EffectNone means the state changed with nothing for the caller to do.
	EffectNone ActionEffect = "none"

	// EffectRedirect means the customer should be sent to the public review
	// site in a new browsing context. Nothing is recorded.
	EffectRedirect ActionEffect = "redirect"

	// EffectShowForm means the private feedback form was revealed.
	EffectShowForm ActionEffect = "show_form"

	// EffectInvalid means validation refused the action; FieldErrors or
	// Message carries the detail.
	EffectInvalid ActionEffect = "invalid"

	// EffectSubmitted means a feedback submission was recorded.
	EffectSubmitted ActionEffect = "submitted"

	// EffectRetry means the submission write failed; the typed form is kept
	// so the customer need not retype.
	EffectRetry ActionEffect = "retry"
)

// ActionOutcome is the result of advancing the state machine.
type ActionOutcome struct {
	Effect      ActionEffect `json:"effect"`
	RedirectURL string       `json:"redirect_url,omitempty"`
	Message     string       `json:"message,omitempty"`
	FieldErrors FieldErrors  `json:"field_errors,omitempty"`
}
