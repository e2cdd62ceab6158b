package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/reviewuplift/backend/internal/adapters/database"
	"github.com/reviewuplift/backend/internal/adapters/search"
	"github.com/reviewuplift/backend/internal/application/services"
	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/repositories"
	"github.com/reviewuplift/backend/internal/infrastructure/clients/postgres"
	"github.com/reviewuplift/backend/internal/infrastructure/clients/typesense"
	"github.com/reviewuplift/backend/pkg/config"
)

// Seeds a development database with a demo business, its owner, and a spread
// of feedback submissions across ratings and moderation states.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	var searchRepo repositories.SubmissionSearchRepository
	if tsClient, err := typesense.NewClient(&cfg.Typesense); err == nil {
		adapter := search.NewTypesenseAdapter(tsClient)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: failed to init search schema: %v", err)
		}
		searchRepo = adapter
	}

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				business_submissions,
				submissions,
				businesses,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to truncate tables: %v", err)
		}
	}

	userRepo := database.NewUserAdapter(pgClient)
	businessRepo := database.NewBusinessAdapter(pgClient)
	submissionRepo := database.NewSubmissionAdapter(pgClient)
	submissionService := services.NewSubmissionService(submissionRepo, searchRepo)

	ownerUID := "demo-owner-uid"
	now := time.Now().UTC()

	owner := &entities.User{
		ID:        ownerUID,
		Username:  "demo-owner",
		Email:     "owner@demo.reviewuplift.com",
		Role:      entities.RoleBusiness,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := userRepo.Create(ctx, owner); err != nil {
		log.Printf("Warning: failed to seed owner (may already exist): %v", err)
	}

	business := &entities.Business{
		ID:                    ownerUID,
		OwnerEmail:            owner.Email,
		BusinessName:          "Demo Coffee Roasters",
		Category:              "Cafe",
		PreviewText:           "How was your experience with us?",
		SocialPreviewTitle:    "Do you want to leave us a review?",
		ReviewLinkURL:         cfg.App.ReviewLinkBase + "/demo-coffee-roasters",
		IsReviewGatingEnabled: true,
		Status:                entities.BusinessStatusActive,
		Branches: []entities.Branch{
			{
				ID:               uuid.New().String(),
				Name:             "Downtown",
				Location:         "12 Main Street",
				GoogleReviewLink: "https://g.page/r/demo-downtown/review",
				IsActive:         true,
				CreatedAt:        now,
			},
			{
				ID:               uuid.New().String(),
				Name:             "Riverside",
				Location:         "88 Quay Road",
				GoogleReviewLink: "https://g.page/r/demo-riverside/review",
				IsActive:         true,
				CreatedAt:        now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := businessRepo.Create(ctx, business); err != nil {
		log.Printf("Warning: failed to seed business (may already exist): %v", err)
	}

	seedSubmissions := []struct {
		name   string
		rating int
		review string
		status entities.SubmissionStatus
	}{
		{"Ada Obi", 1, "Waited twenty minutes and my order was still wrong.", entities.SubmissionStatusPending},
		{"Ben Carter", 2, "Coffee was cold by the time it arrived.", entities.SubmissionStatusPublished},
		{"Chioma Eze", 3, "Decent coffee but the seating area was cramped.", entities.SubmissionStatusPublished},
		{"Dan Musa", 2, "Staff seemed overwhelmed during the morning rush.", entities.SubmissionStatusRejected},
		{"Efe Ojo", 3, "Pastries were stale, coffee was fine.", entities.SubmissionStatusPending},
	}

	for i, seed := range seedSubmissions {
		submission := &entities.FeedbackSubmission{
			BusinessID:   business.ID,
			BusinessName: business.BusinessName,
			Name:         seed.name,
			Phone:        fmt.Sprintf("+23480000000%02d", i),
			Email:        fmt.Sprintf("customer%d@example.com", i),
			BranchName:   business.Branches[i%len(business.Branches)].Name,
			Review:       seed.review,
			Rating:       seed.rating,
			Status:       seed.status,
		}
		if err := submissionService.Create(ctx, submission); err != nil {
			log.Printf("Warning: failed to seed submission for %s: %v", seed.name, err)
		}
	}

	log.Println("Seeding complete")
}
