package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/contentforge/moderation-backend/internal/logger"
	apperrors "github.com/contentforge/moderation-backend/internal/pkg/errors"
	"github.com/contentforge/moderation-backend/internal/types"
)

type bulkFixture struct {
	*transitionFixture
	bulk BulkService
}

func newBulkFixture(t *testing.T) *bulkFixture {
	t.Helper()
	fx := newTransitionFixture(t)
	return &bulkFixture{
		transitionFixture: fx,
		bulk:              NewBulkService(logger.NewNop(), fx.svc, 2),
	}
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func TestBulkApprovePartitionLaw(t *testing.T) {
	fx := newBulkFixture(t)
	pendingA := seedRecord(t, fx.repo, fx.store, types.StatusPendingReview, 0.5)
	pendingB := seedRecord(t, fx.repo, fx.store, types.StatusUnderReview, 0.6)
	alreadyDone := seedRecord(t, fx.repo, fx.store, types.StatusApproved, 0.7)
	missing := uuid.New()

	ids := []uuid.UUID{pendingA.ID, pendingB.ID, alreadyDone.ID, missing}
	result, err := fx.bulk.BulkApprove(context.Background(), ids, "alice", "batch")
	if err != nil {
		t.Fatalf("BulkApprove: %v", err)
	}

	if got := len(result.Succeeded) + len(result.Failed); got != len(ids) {
		t.Fatalf("partition covers %d ids, want %d", got, len(ids))
	}
	succeeded := idSet(result.Succeeded)
	if _, ok := succeeded[pendingA.ID]; !ok {
		t.Fatalf("pending record %s not in succeeded", pendingA.ID)
	}
	if _, ok := succeeded[pendingB.ID]; !ok {
		t.Fatalf("under_review record %s not in succeeded", pendingB.ID)
	}
	for _, failure := range result.Failed {
		switch failure.ID {
		case alreadyDone.ID:
			if failure.Code != "invalid_transition" {
				t.Fatalf("already-approved failure code=%s, want invalid_transition", failure.Code)
			}
		case missing:
			if failure.Code != "not_found" {
				t.Fatalf("missing-id failure code=%s, want not_found", failure.Code)
			}
		default:
			t.Fatalf("unexpected failed id %s", failure.ID)
		}
		if _, ok := succeeded[failure.ID]; ok {
			t.Fatalf("id %s appears in both partitions", failure.ID)
		}
	}
	if !result.PartialFailure() {
		t.Fatalf("expected a partial-failure result")
	}
}

func TestBulkApproveAppliesEventOncePerDuplicatedID(t *testing.T) {
	fx := newBulkFixture(t)
	record := seedRecord(t, fx.repo, fx.store, types.StatusPendingReview, 0.5)

	ids := []uuid.UUID{record.ID, record.ID, record.ID}
	result, err := fx.bulk.BulkApprove(context.Background(), ids, "alice", "")
	if err != nil {
		t.Fatalf("BulkApprove: %v", err)
	}
	if len(result.Succeeded) != 1 || len(result.Failed) != 0 {
		t.Fatalf("succeeded=%d failed=%d, want 1 and 0", len(result.Succeeded), len(result.Failed))
	}
	if fx.calls.PublishCalls() != 1 {
		t.Fatalf("publish called %d times for duplicated id, want 1", fx.calls.PublishCalls())
	}
}

func TestBulkRejectPartition(t *testing.T) {
	fx := newBulkFixture(t)
	auto := seedRecord(t, fx.repo, fx.store, types.StatusAutoApproved, 0.9)
	pending := seedRecord(t, fx.repo, fx.store, types.StatusPendingReview, 0.3)
	rejected := seedRecord(t, fx.repo, fx.store, types.StatusRejected, 0.2)

	result, err := fx.bulk.BulkReject(context.Background(), []uuid.UUID{auto.ID, pending.ID, rejected.ID}, "alice", types.ReasonQuality, "")
	if err != nil {
		t.Fatalf("BulkReject: %v", err)
	}
	if len(result.Succeeded) != 2 || len(result.Failed) != 1 {
		t.Fatalf("succeeded=%d failed=%d, want 2 and 1", len(result.Succeeded), len(result.Failed))
	}
	if result.Failed[0].ID != rejected.ID {
		t.Fatalf("failed id=%s, want %s", result.Failed[0].ID, rejected.ID)
	}
	if fx.store.Len() != 0 {
		t.Fatalf("content store has %d entries after bulk reject, want 0", fx.store.Len())
	}
}

func TestBulkValidation(t *testing.T) {
	fx := newBulkFixture(t)
	someID := uuid.New()

	if _, err := fx.bulk.BulkApprove(context.Background(), nil, "alice", ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("BulkApprove(empty)=%v, want ErrValidation", err)
	}
	if _, err := fx.bulk.BulkApprove(context.Background(), []uuid.UUID{someID}, "", ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("BulkApprove(no reviewer)=%v, want ErrValidation", err)
	}
	if _, err := fx.bulk.BulkReject(context.Background(), []uuid.UUID{someID}, "alice", "spam", ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("BulkReject(bad reason)=%v, want ErrValidation", err)
	}
}

func TestBulkCancelledContextReportsUndispatched(t *testing.T) {
	fx := newBulkFixture(t)
	a := seedRecord(t, fx.repo, fx.store, types.StatusPendingReview, 0.5)
	b := seedRecord(t, fx.repo, fx.store, types.StatusPendingReview, 0.5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := fx.bulk.BulkApprove(ctx, []uuid.UUID{a.ID, b.ID}, "alice", "")
	if err != nil {
		t.Fatalf("BulkApprove: %v", err)
	}
	if got := len(result.Succeeded) + len(result.Failed); got != 2 {
		t.Fatalf("partition covers %d ids, want 2", got)
	}
	if len(result.Failed) != 2 {
		t.Fatalf("failed=%d on cancelled context, want 2", len(result.Failed))
	}
	for _, failure := range result.Failed {
		if failure.Code != "canceled" {
			t.Fatalf("failure code=%s, want canceled", failure.Code)
		}
	}
}

// Bulk fan-out shares nothing but the store, so a worker pool larger than the
// batch is fine.
func TestBulkWorkerPoolLargerThanBatch(t *testing.T) {
	fx := newTransitionFixture(t)
	bulk := NewBulkService(logger.NewNop(), fx.svc, 16)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		ids = append(ids, seedRecord(t, fx.repo, fx.store, types.StatusPendingReview, 0.5).ID)
	}
	result, err := bulk.BulkApprove(context.Background(), ids, "alice", "")
	if err != nil {
		t.Fatalf("BulkApprove: %v", err)
	}
	if len(result.Succeeded) != 5 || len(result.Failed) != 0 {
		t.Fatalf("succeeded=%d failed=%d, want 5 and 0", len(result.Succeeded), len(result.Failed))
	}
	if fx.store.Len() != 5 {
		t.Fatalf("content store has %d entries, want 5", fx.store.Len())
	}
}
