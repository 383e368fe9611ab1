package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/contentforge/moderation-backend/internal/clients/contentstore"
	"github.com/contentforge/moderation-backend/internal/logger"
	apperrors "github.com/contentforge/moderation-backend/internal/pkg/errors"
	"github.com/contentforge/moderation-backend/internal/realtime"
	"github.com/contentforge/moderation-backend/internal/realtime/bus"
	"github.com/contentforge/moderation-backend/internal/repos"
	"github.com/contentforge/moderation-backend/internal/types"
)

// TransitionService is the only component that mutates a record's status.
// Every operation enforces the approval state machine: pending_review can
// begin review, pending_review/under_review can be approved or rejected,
// auto_approved can be rejected (reverting its published content), and
// terminal records accept nothing.
type TransitionService interface {
	BeginReview(ctx context.Context, id uuid.UUID, reviewer string) (*types.ApprovalRecord, error)
	Approve(ctx context.Context, id uuid.UUID, reviewer, notes string) (*types.ApprovalRecord, error)
	Reject(ctx context.Context, id uuid.UUID, reviewer string, reason types.RejectionReason, notes string) (*types.ApprovalRecord, error)
}

type transitionService struct {
	db         *gorm.DB
	log        *logger.Logger
	recordRepo repos.ApprovalRecordRepo
	store      contentstore.Store
	eventBus   bus.Bus
}

func NewTransitionService(db *gorm.DB, log *logger.Logger, recordRepo repos.ApprovalRecordRepo, store contentstore.Store, eventBus bus.Bus) TransitionService {
	serviceLog := log.With("service", "TransitionService")
	if eventBus == nil {
		eventBus = bus.NewNoopBus()
	}
	return &transitionService{
		db:         db,
		log:        serviceLog,
		recordRepo: recordRepo,
		store:      store,
		eventBus:   eventBus,
	}
}

func reviewable(status types.ApprovalStatus) bool {
	return status == types.StatusPendingReview || status == types.StatusUnderReview
}

func (ts *transitionService) BeginReview(ctx context.Context, id uuid.UUID, reviewer string) (*types.ApprovalRecord, error) {
	if reviewer == "" {
		return nil, fmt.Errorf("reviewer is required: %w", apperrors.ErrValidation)
	}
	record, err := ts.recordRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if record.Status != types.StatusPendingReview {
		return nil, fmt.Errorf("begin_review from %s: %w", record.Status, apperrors.ErrInvalidTransition)
	}
	updates := map[string]interface{}{"status": types.StatusUnderReview}
	err = ts.recordRepo.UpdateWithStatusCheck(ctx, nil, id, types.StatusPendingReview, updates)
	if errors.Is(err, apperrors.ErrConflict) {
		// Someone else moved the record first; a fresh read decides whether
		// that someone was another begin_review or a terminal transition.
		fresh, getErr := ts.recordRepo.GetByID(ctx, nil, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("begin_review from %s: %w", fresh.Status, apperrors.ErrInvalidTransition)
	}
	if err != nil {
		return nil, err
	}
	record.Status = types.StatusUnderReview
	ts.publishEvent(ctx, record.ID, record.Status, reviewer)
	return record, nil
}

func (ts *transitionService) Approve(ctx context.Context, id uuid.UUID, reviewer, notes string) (*types.ApprovalRecord, error) {
	if reviewer == "" {
		return nil, fmt.Errorf("reviewer is required: %w", apperrors.ErrValidation)
	}
	record, err := ts.recordRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if !reviewable(record.Status) {
		return nil, fmt.Errorf("approve from %s: %w", record.Status, apperrors.ErrInvalidTransition)
	}

	// Publish before the status write so a failed publish leaves the record
	// untouched in its prior status.
	reference, err := ts.store.Publish(ctx, record.ContentPayload)
	if err != nil {
		ts.log.Warn("Publish failed during approve", "record_id", id, "error", err)
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":              types.StatusApproved,
		"reviewed_at":         now,
		"reviewed_by":         reviewer,
		"notes":               notes,
		"published_reference": reference,
	}
	expected := record.Status
	err = ts.recordRepo.UpdateWithStatusCheck(ctx, nil, id, expected, updates)
	if errors.Is(err, apperrors.ErrConflict) {
		err = ts.retryApproveAfterConflict(ctx, id, updates)
	}
	if err != nil {
		// The status write did not land, so the publish has to be reverted.
		if unpubErr := ts.store.Unpublish(ctx, reference); unpubErr != nil {
			ts.log.Error("Failed to revert publish after lost approve race", "record_id", id, "reference", reference, "error", unpubErr)
		}
		return nil, err
	}

	record.Status = types.StatusApproved
	record.ReviewedAt = &now
	record.ReviewedBy = reviewer
	record.Notes = notes
	record.PublishedReference = &reference
	ts.publishEvent(ctx, record.ID, record.Status, reviewer)
	return record, nil
}

// retryApproveAfterConflict re-reads once after a lost optimistic race. The
// usual benign race is a concurrent begin_review moving pending_review to
// under_review, which is still approvable.
func (ts *transitionService) retryApproveAfterConflict(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	fresh, err := ts.recordRepo.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if !reviewable(fresh.Status) {
		return fmt.Errorf("approve from %s: %w", fresh.Status, apperrors.ErrInvalidTransition)
	}
	return ts.recordRepo.UpdateWithStatusCheck(ctx, nil, id, fresh.Status, updates)
}

func (ts *transitionService) Reject(ctx context.Context, id uuid.UUID, reviewer string, reason types.RejectionReason, notes string) (*types.ApprovalRecord, error) {
	if reviewer == "" {
		return nil, fmt.Errorf("reviewer is required: %w", apperrors.ErrValidation)
	}
	if !reason.Valid() {
		return nil, fmt.Errorf("rejection reason %q: %w", string(reason), apperrors.ErrValidation)
	}
	record, err := ts.recordRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if !reviewable(record.Status) && record.Status != types.StatusAutoApproved {
		return nil, fmt.Errorf("reject from %s: %w", record.Status, apperrors.ErrInvalidTransition)
	}

	// An auto-approved record is already live; take its content down before
	// the status write. A failed unpublish fails the whole transition with
	// the record still auto_approved.
	if record.Status == types.StatusAutoApproved && record.PublishedReference != nil {
		if err := ts.store.Unpublish(ctx, *record.PublishedReference); err != nil {
			ts.log.Warn("Unpublish failed during reject", "record_id", id, "error", err)
			return nil, err
		}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":              types.StatusRejected,
		"reviewed_at":         now,
		"reviewed_by":         reviewer,
		"rejection_reason":    reason,
		"notes":               notes,
		"published_reference": nil,
	}
	expected := record.Status
	err = ts.recordRepo.UpdateWithStatusCheck(ctx, nil, id, expected, updates)
	if errors.Is(err, apperrors.ErrConflict) {
		err = ts.retryRejectAfterConflict(ctx, id, updates)
	}
	if err != nil {
		return nil, err
	}

	record.Status = types.StatusRejected
	record.ReviewedAt = &now
	record.ReviewedBy = reviewer
	record.RejectionReason = &reason
	record.Notes = notes
	record.PublishedReference = nil
	ts.publishEvent(ctx, record.ID, record.Status, reviewer)
	return record, nil
}

func (ts *transitionService) retryRejectAfterConflict(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	fresh, err := ts.recordRepo.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	// Only the manual review states are still rejectable here; a record that
	// raced into auto_approved territory cannot exist (auto_approved is an
	// ingestion-time status), and terminal states are final.
	if !reviewable(fresh.Status) {
		return fmt.Errorf("reject from %s: %w", fresh.Status, apperrors.ErrInvalidTransition)
	}
	return ts.recordRepo.UpdateWithStatusCheck(ctx, nil, id, fresh.Status, updates)
}

func (ts *transitionService) publishEvent(ctx context.Context, id uuid.UUID, status types.ApprovalStatus, reviewer string) {
	event := realtime.QueueEvent{
		RecordID: id,
		Status:   status,
		Reviewer: reviewer,
		At:       time.Now(),
	}
	if err := ts.eventBus.Publish(ctx, event); err != nil {
		ts.log.Warn("Failed to publish queue event", "record_id", id, "error", err)
	}
}
