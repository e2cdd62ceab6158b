package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/repositories"
	"github.com/reviewuplift/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

// BusinessAdapter implements the BusinessRepository interface using PostgreSQL.
// Branches are stored as a JSON document on the row, preserving the original
// nested-document shape.
type BusinessAdapter struct {
	client *postgres.Client
}

// NewBusinessAdapter creates a new business adapter.
func NewBusinessAdapter(client *postgres.Client) repositories.BusinessRepository {
	return &BusinessAdapter{client: client}
}

func marshalBranches(branches []entities.Branch) ([]byte, error) {
	if branches == nil {
		branches = []entities.Branch{}
	}
	return json.Marshal(branches)
}

// Create creates a new business row.
func (a *BusinessAdapter) Create(ctx context.Context, business *entities.Business) error {
	if business == nil {
		return apperrors.NewInternalError("business is nil", fmt.Errorf("business is nil"))
	}

	branchesJSON, err := marshalBranches(business.Branches)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal branches", err)
	}

	query := `
		INSERT INTO businesses (
			id, owner_email, business_name, category, preview_text, preview_image,
			social_preview_title, review_link_url, is_review_gating_enabled,
			status, link_clicks, branches, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = a.client.DB().ExecContext(ctx, query,
		business.ID,
		business.OwnerEmail,
		business.BusinessName,
		business.Category,
		business.PreviewText,
		business.PreviewImage,
		business.SocialPreviewTitle,
		business.ReviewLinkURL,
		business.IsReviewGatingEnabled,
		string(business.Status),
		business.LinkClicks,
		branchesJSON,
		business.CreatedAt,
		business.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewInternalError("failed to create business", err)
	}
	return nil
}

const businessColumns = `id, owner_email, business_name, category, preview_text, preview_image,
	social_preview_title, review_link_url, is_review_gating_enabled,
	status, link_clicks, branches, created_at, updated_at`

func scanBusiness(row interface{ Scan(...any) error }) (*entities.Business, error) {
	b := &entities.Business{}
	var branchesJSON []byte
	err := row.Scan(
		&b.ID,
		&b.OwnerEmail,
		&b.BusinessName,
		&b.Category,
		&b.PreviewText,
		&b.PreviewImage,
		&b.SocialPreviewTitle,
		&b.ReviewLinkURL,
		&b.IsReviewGatingEnabled,
		&b.Status,
		&b.LinkClicks,
		&branchesJSON,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(branchesJSON) > 0 {
		if err := json.Unmarshal(branchesJSON, &b.Branches); err != nil {
			return nil, fmt.Errorf("unmarshal branches: %w", err)
		}
	}
	if b.Branches == nil {
		b.Branches = []entities.Branch{}
	}
	return b, nil
}

// GetByID retrieves a business by ID.
func (a *BusinessAdapter) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	query := fmt.Sprintf(`SELECT %s FROM businesses WHERE id = $1`, businessColumns)

	business, err := scanBusiness(a.client.DB().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("business %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get business", err)
	}
	return business, nil
}

// Update replaces the business row.
func (a *BusinessAdapter) Update(ctx context.Context, business *entities.Business) error {
	if business == nil {
		return apperrors.NewInternalError("business is nil", fmt.Errorf("business is nil"))
	}

	branchesJSON, err := marshalBranches(business.Branches)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal branches", err)
	}

	query := `
		UPDATE businesses SET
			owner_email = $2, business_name = $3, category = $4, preview_text = $5,
			preview_image = $6, social_preview_title = $7, review_link_url = $8,
			is_review_gating_enabled = $9, status = $10, link_clicks = $11,
			branches = $12, updated_at = $13
		WHERE id = $1
	`

	result, err := a.client.DB().ExecContext(ctx, query,
		business.ID,
		business.OwnerEmail,
		business.BusinessName,
		business.Category,
		business.PreviewText,
		business.PreviewImage,
		business.SocialPreviewTitle,
		business.ReviewLinkURL,
		business.IsReviewGatingEnabled,
		string(business.Status),
		business.LinkClicks,
		branchesJSON,
		time.Now().UTC(),
	)
	if err != nil {
		return apperrors.NewInternalError("failed to update business", err)
	}
	return requireRow(result, fmt.Sprintf("business %s not found", business.ID))
}

// UpdateConfig merges a review-link configuration onto the row.
func (a *BusinessAdapter) UpdateConfig(ctx context.Context, id string, cfg entities.ReviewLinkConfig) error {
	query := `
		UPDATE businesses SET
			business_name = CASE WHEN $2 = '' THEN business_name ELSE $2 END,
			preview_text = $3, preview_image = $4, social_preview_title = $5,
			review_link_url = $6, is_review_gating_enabled = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := a.client.DB().ExecContext(ctx, query,
		id,
		cfg.BusinessName,
		cfg.PreviewText,
		cfg.PreviewImage,
		cfg.SocialPreviewTitle,
		cfg.ReviewLinkURL,
		cfg.IsReviewGatingEnabled,
		time.Now().UTC(),
	)
	if err != nil {
		return apperrors.NewInternalError("failed to update business config", err)
	}
	return requireRow(result, fmt.Sprintf("business %s not found", id))
}

// UpdateBranches replaces the branch document.
func (a *BusinessAdapter) UpdateBranches(ctx context.Context, id string, branches []entities.Branch) error {
	branchesJSON, err := marshalBranches(branches)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal branches", err)
	}

	query := `UPDATE businesses SET branches = $2, updated_at = $3 WHERE id = $1`

	result, err := a.client.DB().ExecContext(ctx, query, id, branchesJSON, time.Now().UTC())
	if err != nil {
		return apperrors.NewInternalError("failed to update branches", err)
	}
	return requireRow(result, fmt.Sprintf("business %s not found", id))
}

// UpdateStatus changes the tenant lifecycle status.
func (a *BusinessAdapter) UpdateStatus(ctx context.Context, id string, status entities.BusinessStatus) error {
	query := `UPDATE businesses SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := a.client.DB().ExecContext(ctx, query, id, string(status), time.Now().UTC())
	if err != nil {
		return apperrors.NewInternalError("failed to update business status", err)
	}
	return requireRow(result, fmt.Sprintf("business %s not found", id))
}

// IncrementLinkClicks bumps the public-redirect counter.
func (a *BusinessAdapter) IncrementLinkClicks(ctx context.Context, id string) error {
	query := `UPDATE businesses SET link_clicks = link_clicks + 1, updated_at = $2 WHERE id = $1`

	result, err := a.client.DB().ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return apperrors.NewInternalError("failed to increment link clicks", err)
	}
	return requireRow(result, fmt.Sprintf("business %s not found", id))
}

// ListOverviews returns tenants with their review activity, newest first.
func (a *BusinessAdapter) ListOverviews(ctx context.Context, limit, offset int) ([]*entities.BusinessOverview, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT %s, COALESCE(s.review_count, 0), COALESCE(s.average_rating, 0)
		FROM businesses b
		LEFT JOIN (
			SELECT business_id, COUNT(*) AS review_count, AVG(rating) AS average_rating
			FROM business_submissions
			GROUP BY business_id
		) s ON s.business_id = b.id
		ORDER BY b.created_at DESC
		LIMIT $1 OFFSET $2
	`, prefixColumns("b", businessColumns))

	rows, err := a.client.DB().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list businesses", err)
	}
	defer rows.Close()

	overviews := []*entities.BusinessOverview{}
	for rows.Next() {
		o := &entities.BusinessOverview{}
		var branchesJSON []byte
		err := rows.Scan(
			&o.Business.ID,
			&o.Business.OwnerEmail,
			&o.Business.BusinessName,
			&o.Business.Category,
			&o.Business.PreviewText,
			&o.Business.PreviewImage,
			&o.Business.SocialPreviewTitle,
			&o.Business.ReviewLinkURL,
			&o.Business.IsReviewGatingEnabled,
			&o.Business.Status,
			&o.Business.LinkClicks,
			&branchesJSON,
			&o.Business.CreatedAt,
			&o.Business.UpdatedAt,
			&o.ReviewCount,
			&o.AverageRating,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan business overview", err)
		}
		if len(branchesJSON) > 0 {
			if err := json.Unmarshal(branchesJSON, &o.Business.Branches); err != nil {
				return nil, apperrors.NewInternalError("failed to unmarshal branches", err)
			}
		}
		if o.Business.Branches == nil {
			o.Business.Branches = []entities.Branch{}
		}
		overviews = append(overviews, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate businesses", err)
	}
	return overviews, nil
}
