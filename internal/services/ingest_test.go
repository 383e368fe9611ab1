package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/contentforge/moderation-backend/internal/clients/contentstore"
	"github.com/contentforge/moderation-backend/internal/logger"
	apperrors "github.com/contentforge/moderation-backend/internal/pkg/errors"
	"github.com/contentforge/moderation-backend/internal/types"
)

func TestIngestAutoApprovalBoundary(t *testing.T) {
	cases := []struct {
		name       string
		score      float64
		wantStatus types.ApprovalStatus
	}{
		{name: "at_threshold_auto_approves", score: 0.8, wantStatus: types.StatusAutoApproved},
		{name: "just_below_threshold_queues", score: 0.7999, wantStatus: types.StatusPendingReview},
		{name: "well_above_threshold_auto_approves", score: 0.95, wantStatus: types.StatusAutoApproved},
		{name: "zero_queues", score: 0, wantStatus: types.StatusPendingReview},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, db := newTestRepo(t)
			store := contentstore.NewMemoryStore()
			svc, err := NewIngestService(db, logger.NewNop(), repo, store, nil, 0.8)
			if err != nil {
				t.Fatalf("NewIngestService: %v", err)
			}

			record, err := svc.Ingest(context.Background(), types.Candidate{
				SearchQuery:    "how to prune roses",
				ContentPayload: datatypes.JSON(`{"title":"Pruning"}`),
				QualityScore:   tc.score,
			})
			if err != nil {
				t.Fatalf("Ingest: %v", err)
			}
			if record.Status != tc.wantStatus {
				t.Fatalf("status=%s, want %s", record.Status, tc.wantStatus)
			}
			if tc.wantStatus == types.StatusAutoApproved {
				if record.PublishedReference == nil {
					t.Fatalf("auto-approved record has nil published reference")
				}
				if !store.Has(*record.PublishedReference) {
					t.Fatalf("reference %s not live in content store", *record.PublishedReference)
				}
			} else {
				if record.PublishedReference != nil {
					t.Fatalf("pending record has published reference %s", *record.PublishedReference)
				}
				if store.Len() != 0 {
					t.Fatalf("content store has %d entries, want 0", store.Len())
				}
			}
		})
	}
}

func TestIngestValidation(t *testing.T) {
	repo, db := newTestRepo(t)
	store := contentstore.NewMemoryStore()
	svc, err := NewIngestService(db, logger.NewNop(), repo, store, nil, 0.8)
	if err != nil {
		t.Fatalf("NewIngestService: %v", err)
	}

	cases := []struct {
		name      string
		candidate types.Candidate
	}{
		{name: "empty_search_query", candidate: types.Candidate{SearchQuery: "  ", QualityScore: 0.5}},
		{name: "score_above_one", candidate: types.Candidate{SearchQuery: "q", QualityScore: 1.2}},
		{name: "negative_score", candidate: types.Candidate{SearchQuery: "q", QualityScore: -0.1}},
		{name: "unknown_priority", candidate: types.Candidate{SearchQuery: "q", QualityScore: 0.5, Priority: "urgent"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Ingest(context.Background(), tc.candidate); !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("Ingest=%v, want ErrValidation", err)
			}
		})
	}
}

func TestIngestDefaultsPriorityToNormal(t *testing.T) {
	repo, db := newTestRepo(t)
	svc, err := NewIngestService(db, logger.NewNop(), repo, contentstore.NewMemoryStore(), nil, 0.8)
	if err != nil {
		t.Fatalf("NewIngestService: %v", err)
	}
	record, err := svc.Ingest(context.Background(), types.Candidate{SearchQuery: "q", QualityScore: 0.5})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if record.Priority != types.PriorityNormal {
		t.Fatalf("priority=%s, want normal", record.Priority)
	}
}

func TestIngestPublishFailureFallsBackToManualReview(t *testing.T) {
	repo, db := newTestRepo(t)
	svc, err := NewIngestService(db, logger.NewNop(), repo, &failingStore{retryable: true}, nil, 0.8)
	if err != nil {
		t.Fatalf("NewIngestService: %v", err)
	}
	record, err := svc.Ingest(context.Background(), types.Candidate{SearchQuery: "q", QualityScore: 0.99})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if record.Status != types.StatusPendingReview {
		t.Fatalf("status=%s, want pending_review after failed auto-approval publish", record.Status)
	}
	if record.PublishedReference != nil {
		t.Fatalf("record has published reference after failed publish")
	}
}

func TestNewIngestServiceRejectsBadThreshold(t *testing.T) {
	repo, db := newTestRepo(t)
	for _, threshold := range []float64{-0.1, 1.1} {
		if _, err := NewIngestService(db, logger.NewNop(), repo, contentstore.NewMemoryStore(), nil, threshold); err == nil {
			t.Fatalf("NewIngestService(threshold=%v) err=nil, want error", threshold)
		}
	}
}
