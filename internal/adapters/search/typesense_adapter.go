package search

import (
	"context"
	"fmt"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/repositories"
	tsclient "github.com/reviewuplift/backend/internal/infrastructure/clients/typesense"
)

const collectionName = tsclient.SubmissionsCollection

// TypesenseAdapter implements submission search using Typesense.
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements SubmissionSearchRepository
var _ repositories.SubmissionSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter.
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	// Check if collection exists
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "business_id", Type: "string", Facet: pointer.True()},
			{Name: "name", Type: "string"},
			{Name: "email", Type: "string"},
			{Name: "branchname", Type: "string"},
			{Name: "review", Type: "string"},
			{Name: "rating", Type: "int32"},
			{Name: "status", Type: "string", Facet: pointer.True()},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index upserts a submission document.
func (a *TypesenseAdapter) Index(ctx context.Context, submission *entities.FeedbackSubmission) error {
	document := map[string]interface{}{
		"id":          submission.ID,
		"business_id": submission.BusinessID,
		"name":        submission.Name,
		"email":       submission.Email,
		"branchname":  submission.BranchName,
		"review":      submission.Review,
		"rating":      submission.Rating,
		"status":      string(submission.Status),
		"created_at":  submission.CreatedAt.Unix(),
	}

	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index submission: %w", err)
	}

	return nil
}

// Delete removes a submission document from the index.
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(collectionName).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete submission from index: %w", err)
	}
	return nil
}

// Search returns a tenant's submissions matching the query.
func (a *TypesenseAdapter) Search(ctx context.Context, businessID, query string, limit int) ([]*entities.FeedbackSubmission, error) {
	if limit <= 0 {
		limit = 50
	}
	if query == "" {
		query = "*"
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(query),
		QueryBy:  pointer.String("name,email,branchname,review"),
		FilterBy: pointer.String(fmt.Sprintf("business_id:=%s", businessID)),
		SortBy:   pointer.String("created_at:desc"),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search submissions: %w", err)
	}

	submissions := []*entities.FeedbackSubmission{}
	if result.Hits == nil {
		return submissions, nil
	}
	for _, hit := range *result.Hits {
		doc := *hit.Document

		// Typesense returns map[string]interface{}, so cast safely. The index
		// holds the searchable projection; callers wanting the full record
		// fetch it from the database by ID.
		submission := &entities.FeedbackSubmission{}
		if val, ok := doc["id"].(string); ok {
			submission.ID = val
		}
		if val, ok := doc["business_id"].(string); ok {
			submission.BusinessID = val
		}
		if val, ok := doc["name"].(string); ok {
			submission.Name = val
		}
		if val, ok := doc["email"].(string); ok {
			submission.Email = val
		}
		if val, ok := doc["branchname"].(string); ok {
			submission.BranchName = val
		}
		if val, ok := doc["review"].(string); ok {
			submission.Review = val
		}
		if val, ok := doc["rating"].(float64); ok {
			submission.Rating = int(val)
		}
		if val, ok := doc["status"].(string); ok {
			submission.Status = entities.SubmissionStatus(val)
		}
		if val, ok := doc["created_at"].(float64); ok {
			submission.CreatedAt = time.Unix(int64(val), 0).UTC()
		}

		submissions = append(submissions, submission)
	}

	return submissions, nil
}
