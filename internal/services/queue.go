package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/contentforge/moderation-backend/internal/logger"
	apperrors "github.com/contentforge/moderation-backend/internal/pkg/errors"
	"github.com/contentforge/moderation-backend/internal/repos"
	"github.com/contentforge/moderation-backend/internal/types"
)

const maxPageSize = 100

// QueueService is the read side of the moderation queue: filtered pages for
// the review screen and aggregate statistics for the dashboard.
type QueueService interface {
	Query(ctx context.Context, filter repos.ApprovalRecordFilter, page, pageSize int) ([]*types.ApprovalRecord, int64, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*types.ApprovalRecord, error)
	Statistics(ctx context.Context) (*types.QueueStatistics, error)
}

type queueService struct {
	db         *gorm.DB
	log        *logger.Logger
	recordRepo repos.ApprovalRecordRepo
	reviewSLA  time.Duration
}

func NewQueueService(db *gorm.DB, log *logger.Logger, recordRepo repos.ApprovalRecordRepo, reviewSLA time.Duration) QueueService {
	serviceLog := log.With("service", "QueueService")
	if reviewSLA <= 0 {
		reviewSLA = 24 * time.Hour
	}
	return &queueService{
		db:         db,
		log:        serviceLog,
		recordRepo: recordRepo,
		reviewSLA:  reviewSLA,
	}
}

func (qs *queueService) Query(ctx context.Context, filter repos.ApprovalRecordFilter, page, pageSize int) ([]*types.ApprovalRecord, int64, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("status %q: %w", string(*filter.Status), apperrors.ErrValidation)
	}
	if filter.Priority != nil && !filter.Priority.Valid() {
		return nil, 0, fmt.Errorf("priority %q: %w", string(*filter.Priority), apperrors.ErrValidation)
	}
	if filter.Sort != "" && filter.Sort != repos.SortByScore && filter.Sort != repos.SortByNewest {
		return nil, 0, fmt.Errorf("sort %q: %w", filter.Sort, apperrors.ErrValidation)
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return qs.recordRepo.List(ctx, nil, filter, page, pageSize)
}

func (qs *queueService) GetRecord(ctx context.Context, id uuid.UUID) (*types.ApprovalRecord, error) {
	return qs.recordRepo.GetByID(ctx, nil, id)
}

// Statistics recomputes the overdue count against the current time on every
// call; it is never cached or stored.
func (qs *queueService) Statistics(ctx context.Context) (*types.QueueStatistics, error) {
	counts, err := qs.recordRepo.CountByStatus(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	cutoff := time.Now().Add(-qs.reviewSLA)
	overdue, err := qs.recordRepo.CountOverdue(ctx, nil, cutoff)
	if err != nil {
		return nil, fmt.Errorf("count overdue: %w", err)
	}
	return &types.QueueStatistics{
		Pending:      counts[types.StatusPendingReview],
		UnderReview:  counts[types.StatusUnderReview],
		Approved:     counts[types.StatusApproved],
		AutoApproved: counts[types.StatusAutoApproved],
		Rejected:     counts[types.StatusRejected],
		Overdue:      overdue,
	}, nil
}
