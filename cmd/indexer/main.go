package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/reviewuplift/backend/internal/adapters/search"
	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/infrastructure/clients/postgres"
	"github.com/reviewuplift/backend/internal/infrastructure/clients/typesense"
	"github.com/reviewuplift/backend/pkg/config"
)

// The indexer rebuilds the submissions search collection from the database.
// Run it once after a search outage, or on an interval as a safety net for
// missed best-effort index writes.
func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Println("Deleting submissions collection before reindex")
		if _, err := tsClient.Client().Collection(typesense.SubmissionsCollection).Delete(ctx); err != nil {
			log.Printf("Warning: failed to delete collection: %v", err)
		}
	}

	adapter := search.NewTypesenseAdapter(tsClient)
	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	rows, err := pgClient.SQLx().QueryxContext(ctx, `
		SELECT id, business_id, user_id, business_name, name, phone, email,
			branchname, review, rating, status, replied, COALESCE(reply, '') AS reply,
			replied_at, created_at, updated_at
		FROM business_submissions
		ORDER BY created_at
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	indexed, failed := 0, 0
	for rows.Next() {
		var submission entities.FeedbackSubmission
		if err := rows.StructScan(&submission); err != nil {
			log.Printf("Warning: failed to scan submission: %v", err)
			failed++
			continue
		}
		if err := adapter.Index(ctx, &submission); err != nil {
			log.Printf("Warning: failed to index submission %s: %v", submission.ID, err)
			failed++
			continue
		}
		indexed++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	log.Printf("Indexed %d submissions (%d failures)", indexed, failed)
	return nil
}
