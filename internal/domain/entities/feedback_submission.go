package entities

import "time"

// SubmissionStatus is the moderation lifecycle of a feedback submission.
type SubmissionStatus string

const (
	SubmissionStatusPending   SubmissionStatus = "pending"
	SubmissionStatusPublished SubmissionStatus = "published"
	SubmissionStatusRejected  SubmissionStatus = "rejected"
)

// ValidSubmissionStatus reports whether s is a known lifecycle state.
func ValidSubmissionStatus(s SubmissionStatus) bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusPublished, SubmissionStatusRejected:
		return true
	}
	return false
}

// FeedbackSubmission is the private feedback captured from a gated low-rating
// customer. It is created exactly once on submit; positive ratings route to
// the public review site and never produce one. Later mutation happens only
// through business-side moderation.
type FeedbackSubmission struct {
	ID           string           `json:"id" db:"id"`
	BusinessID   string           `json:"business_id" db:"business_id"`
	UserID       string           `json:"user_id" db:"user_id"`
	BusinessName string           `json:"business_name" db:"business_name"`
	Name         string           `json:"name" db:"name"`
	Phone        string           `json:"phone" db:"phone"`
	Email        string           `json:"email" db:"email"`
	BranchName   string           `json:"branchname" db:"branchname"`
	Review       string           `json:"review" db:"review"`
	Rating       int              `json:"rating" db:"rating"` // 1-5
	Status       SubmissionStatus `json:"status" db:"status"`
	Replied      bool             `json:"replied" db:"replied"`
	Reply        string           `json:"reply,omitempty" db:"reply"`
	RepliedAt    *time.Time       `json:"replied_at,omitempty" db:"replied_at"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}
