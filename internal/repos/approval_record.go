package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/contentforge/moderation-backend/internal/pkg/errors"
	"github.com/contentforge/moderation-backend/internal/logger"
	"github.com/contentforge/moderation-backend/internal/types"
)

// ApprovalRecordFilter narrows List to a status and/or priority. Sort selects
// the ordering: SortByScore (default) orders quality_score DESC, created_at
// DESC, id ASC; SortByNewest orders created_at DESC, id ASC.
type ApprovalRecordFilter struct {
	Status   *types.ApprovalStatus
	Priority *types.QueuePriority
	Sort     string
}

const (
	SortByScore  = "score"
	SortByNewest = "newest"
)

type ApprovalRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.ApprovalRecord) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ApprovalRecord, error)
	// UpdateWithStatusCheck applies updates only while the record still has
	// the expected status. A record that exists but moved on returns
	// ErrConflict; a missing record returns ErrNotFound. The guarded UPDATE
	// is a single statement, so concurrent callers can never interleave
	// partial field writes.
	UpdateWithStatusCheck(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected types.ApprovalStatus, updates map[string]interface{}) error
	List(ctx context.Context, tx *gorm.DB, filter ApprovalRecordFilter, page, pageSize int) ([]*types.ApprovalRecord, int64, error)
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[types.ApprovalStatus]int64, error)
	CountOverdue(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type approvalRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApprovalRecordRepo(db *gorm.DB, baseLog *logger.Logger) ApprovalRecordRepo {
	return &approvalRecordRepo{
		db:  db,
		log: baseLog.With("repo", "ApprovalRecordRepo"),
	}
}

func (r *approvalRecordRepo) Create(ctx context.Context, tx *gorm.DB, record *types.ApprovalRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if record == nil {
		return nil
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(record).Error
}

func (r *approvalRecordRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ApprovalRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, apperrors.ErrNotFound
	}
	var record types.ApprovalRecord
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *approvalRecordRepo) UpdateWithStatusCheck(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected types.ApprovalStatus, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return apperrors.ErrNotFound
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	result := transaction.WithContext(ctx).
		Model(&types.ApprovalRecord{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ApprovalRecord{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.ErrNotFound
	}
	return apperrors.ErrConflict
}

func (r *approvalRecordRepo) List(ctx context.Context, tx *gorm.DB, filter ApprovalRecordFilter, page, pageSize int) ([]*types.ApprovalRecord, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	q := transaction.WithContext(ctx).Model(&types.ApprovalRecord{})
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		q = q.Where("priority = ?", *filter.Priority)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	switch filter.Sort {
	case SortByNewest:
		q = q.Order("created_at DESC").Order("id ASC")
	default:
		q = q.Order("quality_score DESC").Order("created_at DESC").Order("id ASC")
	}
	var out []*types.ApprovalRecord
	if err := q.
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *approvalRecordRepo) CountByStatus(ctx context.Context, tx *gorm.DB) (map[types.ApprovalStatus]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	type statusCount struct {
		Status types.ApprovalStatus
		Total  int64
	}
	var rows []statusCount
	if err := transaction.WithContext(ctx).
		Model(&types.ApprovalRecord{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	counts := map[types.ApprovalStatus]int64{}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *approvalRecordRepo) CountOverdue(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.ApprovalRecord{}).
		Where("status IN ?", []types.ApprovalStatus{types.StatusPendingReview, types.StatusUnderReview}).
		Where("created_at < ?", cutoff).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
