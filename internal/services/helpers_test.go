package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/contentforge/moderation-backend/internal/clients/contentstore"
	"github.com/contentforge/moderation-backend/internal/logger"
	apperrors "github.com/contentforge/moderation-backend/internal/pkg/errors"
	"github.com/contentforge/moderation-backend/internal/repos"
	"github.com/contentforge/moderation-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&types.ApprovalRecord{}, &types.Reviewer{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestRepo(t *testing.T) (repos.ApprovalRecordRepo, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return repos.NewApprovalRecordRepo(db, logger.NewNop()), db
}

func seedRecord(t *testing.T, repo repos.ApprovalRecordRepo, store *contentstore.MemoryStore, status types.ApprovalStatus, score float64) *types.ApprovalRecord {
	t.Helper()
	record := &types.ApprovalRecord{
		SearchQuery:    "seed query",
		ContentPayload: datatypes.JSON(`{"title":"seed"}`),
		QualityScore:   score,
		Status:         status,
		Priority:       types.PriorityNormal,
		CreatedAt:      time.Now(),
	}
	if status.Published() {
		ref, err := store.Publish(context.Background(), record.ContentPayload)
		if err != nil {
			t.Fatalf("seed publish: %v", err)
		}
		record.PublishedReference = &ref
	}
	if err := repo.Create(context.Background(), nil, record); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return record
}

// countingStore wraps a content store and counts publish/unpublish calls.
type countingStore struct {
	inner      contentstore.Store
	mu         sync.Mutex
	publishes  int
	unpublishs int
}

func newCountingStore(inner contentstore.Store) *countingStore {
	return &countingStore{inner: inner}
}

func (s *countingStore) Publish(ctx context.Context, payload datatypes.JSON) (string, error) {
	s.mu.Lock()
	s.publishes++
	s.mu.Unlock()
	return s.inner.Publish(ctx, payload)
}

func (s *countingStore) Unpublish(ctx context.Context, reference string) error {
	s.mu.Lock()
	s.unpublishs++
	s.mu.Unlock()
	return s.inner.Unpublish(ctx, reference)
}

func (s *countingStore) PublishCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publishes
}

func (s *countingStore) UnpublishCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unpublishs
}

// failingStore refuses every call, optionally as a retryable failure.
type failingStore struct {
	retryable bool
}

func (s *failingStore) Publish(ctx context.Context, payload datatypes.JSON) (string, error) {
	return "", apperrors.NewPublishError("publish", s.retryable, fmt.Errorf("store down"))
}

func (s *failingStore) Unpublish(ctx context.Context, reference string) error {
	return apperrors.NewPublishError("unpublish", s.retryable, fmt.Errorf("store down"))
}
