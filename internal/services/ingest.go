package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/contentforge/moderation-backend/internal/clients/contentstore"
	"github.com/contentforge/moderation-backend/internal/logger"
	apperrors "github.com/contentforge/moderation-backend/internal/pkg/errors"
	"github.com/contentforge/moderation-backend/internal/realtime"
	"github.com/contentforge/moderation-backend/internal/realtime/bus"
	"github.com/contentforge/moderation-backend/internal/repos"
	"github.com/contentforge/moderation-backend/internal/types"
)

// IngestService is the workflow's entry point for generated candidates. A
// candidate scoring at or above the auto-approval threshold is published
// immediately and recorded as auto_approved; everything else lands in
// pending_review for a human.
type IngestService interface {
	Ingest(ctx context.Context, candidate types.Candidate) (*types.ApprovalRecord, error)
	Threshold() float64
}

type ingestService struct {
	db         *gorm.DB
	log        *logger.Logger
	recordRepo repos.ApprovalRecordRepo
	store      contentstore.Store
	eventBus   bus.Bus
	threshold  float64
}

func NewIngestService(db *gorm.DB, log *logger.Logger, recordRepo repos.ApprovalRecordRepo, store contentstore.Store, eventBus bus.Bus, threshold float64) (IngestService, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("auto-approval threshold %v outside [0,1]", threshold)
	}
	if eventBus == nil {
		eventBus = bus.NewNoopBus()
	}
	serviceLog := log.With("service", "IngestService")
	return &ingestService{
		db:         db,
		log:        serviceLog,
		recordRepo: recordRepo,
		store:      store,
		eventBus:   eventBus,
		threshold:  threshold,
	}, nil
}

func (is *ingestService) Threshold() float64 {
	return is.threshold
}

func (is *ingestService) Ingest(ctx context.Context, candidate types.Candidate) (*types.ApprovalRecord, error) {
	if strings.TrimSpace(candidate.SearchQuery) == "" {
		return nil, fmt.Errorf("candidate search query is required: %w", apperrors.ErrValidation)
	}
	if candidate.QualityScore < 0 || candidate.QualityScore > 1 {
		return nil, fmt.Errorf("quality score %v outside [0,1]: %w", candidate.QualityScore, apperrors.ErrValidation)
	}
	priority := candidate.Priority
	if priority == "" {
		priority = types.PriorityNormal
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("priority %q: %w", string(priority), apperrors.ErrValidation)
	}

	record := &types.ApprovalRecord{
		SearchQuery:    candidate.SearchQuery,
		ContentPayload: candidate.ContentPayload,
		QualityScore:   candidate.QualityScore,
		Status:         types.StatusPendingReview,
		Priority:       priority,
	}

	if candidate.QualityScore >= is.threshold {
		reference, err := is.store.Publish(ctx, candidate.ContentPayload)
		if err != nil {
			// The candidate cleared the bar but the store would not take it;
			// keep it for manual review instead of dropping it.
			is.log.Warn("Auto-approval publish failed, queueing for manual review", "error", err)
		} else {
			record.Status = types.StatusAutoApproved
			record.PublishedReference = &reference
		}
	}

	if err := is.recordRepo.Create(ctx, nil, record); err != nil {
		if record.PublishedReference != nil {
			if unpubErr := is.store.Unpublish(ctx, *record.PublishedReference); unpubErr != nil {
				is.log.Error("Failed to revert publish after create failure", "reference", *record.PublishedReference, "error", unpubErr)
			}
		}
		return nil, fmt.Errorf("create approval record: %w", err)
	}

	event := realtime.QueueEvent{
		RecordID: record.ID,
		Status:   record.Status,
		At:       time.Now(),
	}
	if err := is.eventBus.Publish(ctx, event); err != nil {
		is.log.Warn("Failed to publish queue event", "record_id", record.ID, "error", err)
	}
	return record, nil
}
