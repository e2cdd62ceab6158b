package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/repositories"
	"github.com/reviewuplift/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

// SubmissionAdapter implements feedback-submission persistence in Postgres.
//
// Every submission is written to two locations: the global submissions table
// and the per-tenant business_submissions read model. The original product
// issued these as two independent document writes and could leave them
// half-applied; here both inserts share one transaction.
type SubmissionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSubmissionAdapter creates a new submission adapter.
func NewSubmissionAdapter(client *postgres.Client) repositories.SubmissionRepository {
	return &SubmissionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func submissionRecord(s *entities.FeedbackSubmission) goqu.Record {
	return goqu.Record{
		"id":            s.ID,
		"business_id":   s.BusinessID,
		"user_id":       s.UserID,
		"business_name": s.BusinessName,
		"name":          s.Name,
		"phone":         s.Phone,
		"email":         s.Email,
		"branchname":    s.BranchName,
		"review":        s.Review,
		"rating":        s.Rating,
		"status":        string(s.Status),
		"replied":       s.Replied,
		"reply":         sql.NullString{String: s.Reply, Valid: s.Reply != ""},
		"replied_at":    s.RepliedAt,
		"created_at":    s.CreatedAt,
		"updated_at":    s.UpdatedAt,
	}
}

// Create inserts the submission into both locations atomically.
func (a *SubmissionAdapter) Create(ctx context.Context, submission *entities.FeedbackSubmission) error {
	if submission == nil {
		return apperrors.NewInternalError("submission is nil", fmt.Errorf("submission is nil"))
	}

	record := submissionRecord(submission)

	globalSQL, globalArgs, err := a.db.Insert("submissions").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build submission insert query", err)
	}

	tenantSQL, tenantArgs, err := a.db.Insert("business_submissions").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build tenant submission insert query", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin submission transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, globalSQL, globalArgs...); err != nil {
		return apperrors.NewInternalError("failed to create submission", err)
	}
	if _, err := tx.ExecContext(ctx, tenantSQL, tenantArgs...); err != nil {
		return apperrors.NewInternalError("failed to create tenant submission", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit submission", err)
	}
	return nil
}

const submissionColumns = `id, business_id, user_id, business_name, name, phone, email,
	branchname, review, rating, status, replied, COALESCE(reply, ''), replied_at,
	created_at, updated_at`

func scanSubmission(row interface{ Scan(...any) error }) (*entities.FeedbackSubmission, error) {
	s := &entities.FeedbackSubmission{}
	err := row.Scan(
		&s.ID,
		&s.BusinessID,
		&s.UserID,
		&s.BusinessName,
		&s.Name,
		&s.Phone,
		&s.Email,
		&s.BranchName,
		&s.Review,
		&s.Rating,
		&s.Status,
		&s.Replied,
		&s.Reply,
		&s.RepliedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves one of a business's submissions.
func (a *SubmissionAdapter) GetByID(ctx context.Context, businessID, id string) (*entities.FeedbackSubmission, error) {
	query := fmt.Sprintf(`SELECT %s FROM business_submissions WHERE business_id = $1 AND id = $2`, submissionColumns)

	submission, err := scanSubmission(a.client.DB().QueryRowContext(ctx, query, businessID, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("submission %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get submission", err)
	}
	return submission, nil
}

// ListByBusiness lists a tenant's submissions, newest first.
func (a *SubmissionAdapter) ListByBusiness(ctx context.Context, businessID string, filter repositories.SubmissionFilter) ([]*entities.FeedbackSubmission, error) {
	ds := a.db.From("business_submissions").
		Select(goqu.L(submissionColumns)).
		Where(goqu.C("business_id").Eq(businessID)).
		Order(goqu.C("created_at").Desc())

	if filter.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(filter.Status)))
	}
	if filter.MinRating > 0 {
		ds = ds.Where(goqu.C("rating").Gte(filter.MinRating))
	}
	if filter.MaxRating > 0 {
		ds = ds.Where(goqu.C("rating").Lte(filter.MaxRating))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("name").ILike(pattern),
			goqu.C("review").ILike(pattern),
			goqu.C("branchname").ILike(pattern),
		))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	ds = ds.Limit(uint(limit)).Offset(uint(filter.Offset))

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build submission list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list submissions", err)
	}
	defer rows.Close()

	submissions := []*entities.FeedbackSubmission{}
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan submission", err)
		}
		submissions = append(submissions, submission)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate submissions", err)
	}
	return submissions, nil
}

// updateBoth applies the same record update to the global table and the
// tenant read model inside one transaction.
func (a *SubmissionAdapter) updateBoth(ctx context.Context, businessID, id string, record goqu.Record) error {
	record["updated_at"] = time.Now().UTC()

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin submission update", err)
	}
	defer tx.Rollback()

	var updated int64
	for _, table := range []string{"submissions", "business_submissions"} {
		query, args, err := a.db.Update(table).
			Set(record).
			Where(goqu.C("business_id").Eq(businessID), goqu.C("id").Eq(id)).
			ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build submission update query", err)
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return apperrors.NewInternalError("failed to update submission", err)
		}
		if n, err := result.RowsAffected(); err == nil {
			updated += n
		}
	}

	if updated == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("submission %s not found", id))
	}
	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit submission update", err)
	}
	return nil
}

// UpdateStatus moves a submission through its moderation lifecycle.
func (a *SubmissionAdapter) UpdateStatus(ctx context.Context, businessID, id string, status entities.SubmissionStatus) error {
	return a.updateBoth(ctx, businessID, id, goqu.Record{"status": string(status)})
}

// Reply records the business's reply.
func (a *SubmissionAdapter) Reply(ctx context.Context, businessID, id, reply string, repliedAt time.Time) error {
	return a.updateBoth(ctx, businessID, id, goqu.Record{
		"replied":    true,
		"reply":      reply,
		"replied_at": repliedAt,
	})
}

// SetReplied toggles the replied flag without touching the reply text.
func (a *SubmissionAdapter) SetReplied(ctx context.Context, businessID, id string, replied bool) error {
	return a.updateBoth(ctx, businessID, id, goqu.Record{"replied": replied})
}

// Delete removes the submission from both locations.
func (a *SubmissionAdapter) Delete(ctx context.Context, businessID, id string) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin submission delete", err)
	}
	defer tx.Rollback()

	var deleted int64
	for _, table := range []string{"submissions", "business_submissions"} {
		query, args, err := a.db.Delete(table).
			Where(goqu.C("business_id").Eq(businessID), goqu.C("id").Eq(id)).
			ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build submission delete query", err)
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return apperrors.NewInternalError("failed to delete submission", err)
		}
		if n, err := result.RowsAffected(); err == nil {
			deleted += n
		}
	}

	if deleted == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("submission %s not found", id))
	}
	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit submission delete", err)
	}
	return nil
}
