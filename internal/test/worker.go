package test

import (
	"context"
	"sync"

	"github.com/buyside/procure/internal/domain/model"
)

// ReversalFacadeStub feeds the reversal worker canned batches, one per poll.
type ReversalFacadeStub struct {
	sync.Mutex

	Batches [][]model.PendingReversal
	RetryFn func(ctx context.Context, item model.PendingReversal) error

	Retried     []model.PendingReversal
	Completed   []int64
	Rescheduled []model.PendingReversal
}

func (s *ReversalFacadeStub) PendingReversals(ctx context.Context, limit int) ([]model.PendingReversal, error) {
	s.Lock()
	defer s.Unlock()
	if len(s.Batches) == 0 {
		return nil, nil
	}
	batch := s.Batches[0]
	s.Batches = s.Batches[1:]
	if limit < len(batch) {
		batch = batch[:limit]
	}
	return batch, nil
}

func (s *ReversalFacadeStub) RetryReversal(ctx context.Context, item model.PendingReversal) error {
	s.Lock()
	s.Retried = append(s.Retried, item)
	s.Unlock()
	if s.RetryFn != nil {
		return s.RetryFn(ctx, item)
	}
	return nil
}

func (s *ReversalFacadeStub) CompleteReversal(ctx context.Context, id int64) error {
	s.Lock()
	defer s.Unlock()
	s.Completed = append(s.Completed, id)
	return nil
}

func (s *ReversalFacadeStub) RescheduleReversal(ctx context.Context, item model.PendingReversal, retryErr error) error {
	s.Lock()
	defer s.Unlock()
	s.Rescheduled = append(s.Rescheduled, item)
	return nil
}
