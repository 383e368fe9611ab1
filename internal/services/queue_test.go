package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/contentforge/moderation-backend/internal/clients/contentstore"
	"github.com/contentforge/moderation-backend/internal/logger"
	apperrors "github.com/contentforge/moderation-backend/internal/pkg/errors"
	"github.com/contentforge/moderation-backend/internal/realtime/bus"
	"github.com/contentforge/moderation-backend/internal/repos"
	"github.com/contentforge/moderation-backend/internal/types"
)

func seedAgedRecord(t *testing.T, repo repos.ApprovalRecordRepo, status types.ApprovalStatus, age time.Duration) *types.ApprovalRecord {
	t.Helper()
	record := &types.ApprovalRecord{
		SearchQuery:    "aged query",
		ContentPayload: datatypes.JSON(`{"title":"aged"}`),
		QualityScore:   0.5,
		Status:         status,
		Priority:       types.PriorityNormal,
		CreatedAt:      time.Now().Add(-age),
	}
	if err := repo.Create(context.Background(), nil, record); err != nil {
		t.Fatalf("seed aged record: %v", err)
	}
	return record
}

func TestStatisticsCountsByStatus(t *testing.T) {
	repo, db := newTestRepo(t)
	store := contentstore.NewMemoryStore()
	seedRecord(t, repo, store, types.StatusPendingReview, 0.5)
	seedRecord(t, repo, store, types.StatusPendingReview, 0.6)
	seedRecord(t, repo, store, types.StatusUnderReview, 0.7)
	seedRecord(t, repo, store, types.StatusApproved, 0.8)
	seedRecord(t, repo, store, types.StatusAutoApproved, 0.9)
	seedRecord(t, repo, store, types.StatusRejected, 0.3)

	qs := NewQueueService(db, logger.NewNop(), repo, 24*time.Hour)
	stats, err := qs.Statistics(context.Background())
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Pending != 2 || stats.UnderReview != 1 || stats.Approved != 1 || stats.AutoApproved != 1 || stats.Rejected != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
}

func TestStatisticsOverdue(t *testing.T) {
	repo, db := newTestRepo(t)
	seedAgedRecord(t, repo, types.StatusPendingReview, 25*time.Hour)
	seedAgedRecord(t, repo, types.StatusUnderReview, 30*time.Hour)
	seedAgedRecord(t, repo, types.StatusPendingReview, 23*time.Hour)
	// Terminal records never count as overdue no matter their age.
	seedAgedRecord(t, repo, types.StatusRejected, 48*time.Hour)

	qs := NewQueueService(db, logger.NewNop(), repo, 24*time.Hour)
	stats, err := qs.Statistics(context.Background())
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Overdue != 2 {
		t.Fatalf("overdue = %d, want 2", stats.Overdue)
	}
}

func TestStatisticsOverdueTracksSLA(t *testing.T) {
	repo, db := newTestRepo(t)
	seedAgedRecord(t, repo, types.StatusPendingReview, 2*time.Hour)

	qs := NewQueueService(db, logger.NewNop(), repo, 1*time.Hour)
	stats, err := qs.Statistics(context.Background())
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Overdue != 1 {
		t.Fatalf("overdue = %d, want 1", stats.Overdue)
	}
}

func TestQueryValidation(t *testing.T) {
	repo, db := newTestRepo(t)
	qs := NewQueueService(db, logger.NewNop(), repo, 24*time.Hour)

	badStatus := types.ApprovalStatus("archived")
	badPriority := types.QueuePriority("urgent")
	tests := []struct {
		name   string
		filter repos.ApprovalRecordFilter
	}{
		{"unknown status", repos.ApprovalRecordFilter{Status: &badStatus}},
		{"unknown priority", repos.ApprovalRecordFilter{Priority: &badPriority}},
		{"unknown sort", repos.ApprovalRecordFilter{Sort: "oldest"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := qs.Query(context.Background(), tc.filter, 1, 20); !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestQueryPageSizeClamped(t *testing.T) {
	repo, db := newTestRepo(t)
	store := contentstore.NewMemoryStore()
	for i := 0; i < 3; i++ {
		seedRecord(t, repo, store, types.StatusPendingReview, 0.5)
	}
	qs := NewQueueService(db, logger.NewNop(), repo, 24*time.Hour)

	records, total, err := qs.Query(context.Background(), repos.ApprovalRecordFilter{}, 1, 5000)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if total != 3 || len(records) != 3 {
		t.Fatalf("total = %d, len = %d, want 3/3", total, len(records))
	}
}

// TestModerationLifecycle runs candidates through ingestion, a manual
// rejection, and a bulk approve of already-terminal records, checking the
// dashboard after each step.
func TestModerationLifecycle(t *testing.T) {
	repo, db := newTestRepo(t)
	store := contentstore.NewMemoryStore()
	eventBus := bus.NewNoopBus()
	log := logger.NewNop()

	ingest, err := NewIngestService(db, log, repo, store, eventBus, 0.8)
	if err != nil {
		t.Fatalf("ingest service: %v", err)
	}
	transitions := NewTransitionService(db, log, repo, store, eventBus)
	bulk := NewBulkService(log, transitions, 4)
	qs := NewQueueService(db, log, repo, 24*time.Hour)

	var records []*types.ApprovalRecord
	for _, score := range []float64{0.9, 0.5, 0.95} {
		record, err := ingest.Ingest(context.Background(), types.Candidate{
			SearchQuery:    "lifecycle",
			ContentPayload: datatypes.JSON(`{"title":"lifecycle"}`),
			QualityScore:   score,
		})
		if err != nil {
			t.Fatalf("ingest %v: %v", score, err)
		}
		records = append(records, record)
	}

	stats, err := qs.Statistics(context.Background())
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.AutoApproved != 2 || stats.Pending != 1 {
		t.Fatalf("after ingest: %+v, want auto_approved 2 pending 1", stats)
	}
	if store.Len() != 2 {
		t.Fatalf("store has %d entries, want 2", store.Len())
	}

	if _, err := transitions.Reject(context.Background(), records[1].ID, "dara", types.ReasonQuality, ""); err != nil {
		t.Fatalf("reject: %v", err)
	}
	stats, err = qs.Statistics(context.Background())
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Pending != 0 || stats.Rejected != 1 {
		t.Fatalf("after reject: %+v, want pending 0 rejected 1", stats)
	}

	// Both remaining records are auto_approved; bulk approve must fail each
	// one individually without disturbing them.
	result, err := bulk.BulkApprove(context.Background(), []uuid.UUID{records[0].ID, records[2].ID}, "dara", "")
	if err != nil {
		t.Fatalf("bulk approve: %v", err)
	}
	if len(result.Succeeded) != 0 || len(result.Failed) != 2 {
		t.Fatalf("bulk result: %d succeeded, %d failed, want 0/2", len(result.Succeeded), len(result.Failed))
	}
	for _, failure := range result.Failed {
		if failure.Code != "invalid_transition" {
			t.Fatalf("failure code = %q, want invalid_transition", failure.Code)
		}
	}
	if store.Len() != 2 {
		t.Fatalf("store has %d entries after failed bulk, want 2", store.Len())
	}
}
