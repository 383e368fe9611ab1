package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/contentforge/moderation-backend/internal/logger"
	apperrors "github.com/contentforge/moderation-backend/internal/pkg/errors"
	"github.com/contentforge/moderation-backend/internal/types"
)

// BulkService fans a single event out across many records. Every unique id
// goes through the Transition Engine exactly once; per-id failures are
// collected, never raised, so one bad id can't sink the batch. Only a
// malformed request shape is an error.
type BulkService interface {
	BulkApprove(ctx context.Context, ids []uuid.UUID, reviewer, notes string) (types.BulkResult, error)
	BulkReject(ctx context.Context, ids []uuid.UUID, reviewer string, reason types.RejectionReason, notes string) (types.BulkResult, error)
}

type bulkService struct {
	log         *logger.Logger
	transitions TransitionService
	workers     int
}

func NewBulkService(log *logger.Logger, transitions TransitionService, workers int) BulkService {
	if workers < 1 {
		workers = 4
	}
	serviceLog := log.With("service", "BulkService")
	return &bulkService{
		log:         serviceLog,
		transitions: transitions,
		workers:     workers,
	}
}

func (bs *bulkService) BulkApprove(ctx context.Context, ids []uuid.UUID, reviewer, notes string) (types.BulkResult, error) {
	if len(ids) == 0 {
		return types.BulkResult{}, fmt.Errorf("bulk approve with empty id list: %w", apperrors.ErrValidation)
	}
	if reviewer == "" {
		return types.BulkResult{}, fmt.Errorf("reviewer is required: %w", apperrors.ErrValidation)
	}
	return bs.apply(ctx, ids, func(ctx context.Context, id uuid.UUID) error {
		_, err := bs.transitions.Approve(ctx, id, reviewer, notes)
		return err
	})
}

func (bs *bulkService) BulkReject(ctx context.Context, ids []uuid.UUID, reviewer string, reason types.RejectionReason, notes string) (types.BulkResult, error) {
	if len(ids) == 0 {
		return types.BulkResult{}, fmt.Errorf("bulk reject with empty id list: %w", apperrors.ErrValidation)
	}
	if reviewer == "" {
		return types.BulkResult{}, fmt.Errorf("reviewer is required: %w", apperrors.ErrValidation)
	}
	if !reason.Valid() {
		return types.BulkResult{}, fmt.Errorf("rejection reason %q: %w", string(reason), apperrors.ErrValidation)
	}
	return bs.apply(ctx, ids, func(ctx context.Context, id uuid.UUID) error {
		_, err := bs.transitions.Reject(ctx, id, reviewer, reason, notes)
		return err
	})
}

// apply dispatches each unique id on a bounded worker pool. A cancelled
// context stops further dispatch but never aborts an operation already in
// flight; undispatched ids are reported as failed so the partition always
// covers the full input.
func (bs *bulkService) apply(ctx context.Context, ids []uuid.UUID, op func(ctx context.Context, id uuid.UUID) error) (types.BulkResult, error) {
	unique := dedupeIDs(ids)

	var mu sync.Mutex
	result := types.BulkResult{
		Succeeded: []uuid.UUID{},
		Failed:    []types.BulkFailure{},
	}

	var group errgroup.Group
	group.SetLimit(bs.workers)
	for _, id := range unique {
		if ctxErr := ctx.Err(); ctxErr != nil {
			mu.Lock()
			result.Failed = append(result.Failed, types.BulkFailure{
				ID:      id,
				Code:    "canceled",
				Message: ctxErr.Error(),
			})
			mu.Unlock()
			continue
		}
		id := id
		group.Go(func() error {
			err := op(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, types.BulkFailure{
					ID:      id,
					Code:    apperrors.Code(err),
					Message: err.Error(),
				})
				return nil
			}
			result.Succeeded = append(result.Succeeded, id)
			return nil
		})
	}
	_ = group.Wait()

	bs.log.Debug("Bulk operation finished", "total", len(unique), "succeeded", len(result.Succeeded), "failed", len(result.Failed))
	return result, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
