package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/contentforge/moderation-backend/internal/logger"
	apperrors "github.com/contentforge/moderation-backend/internal/pkg/errors"
	"github.com/contentforge/moderation-backend/internal/types"
)

type ReviewerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, reviewer *types.Reviewer) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Reviewer, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Reviewer, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type reviewerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewerRepo(db *gorm.DB, baseLog *logger.Logger) ReviewerRepo {
	return &reviewerRepo{
		db:  db,
		log: baseLog.With("repo", "ReviewerRepo"),
	}
}

func (r *reviewerRepo) Create(ctx context.Context, tx *gorm.DB, reviewer *types.Reviewer) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if reviewer == nil {
		return nil
	}
	if reviewer.ID == uuid.Nil {
		reviewer.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(reviewer).Error
}

func (r *reviewerRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Reviewer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, apperrors.ErrNotFound
	}
	var reviewer types.Reviewer
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&reviewer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reviewer, nil
}

func (r *reviewerRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Reviewer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if email == "" {
		return nil, apperrors.ErrNotFound
	}
	var reviewer types.Reviewer
	err := transaction.WithContext(ctx).
		Where("email = ?", email).
		First(&reviewer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reviewer, nil
}

func (r *reviewerRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if email == "" {
		return false, nil
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Reviewer{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
