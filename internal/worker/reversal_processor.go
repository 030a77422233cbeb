package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/buyside/procure/internal/adapter/orderservice"
	"github.com/buyside/procure/internal/domain/model"
)

// ReversalFacade exposes the subset of application functionality required by the worker.
type ReversalFacade interface {
	PendingReversals(ctx context.Context, limit int) ([]model.PendingReversal, error)
	RetryReversal(ctx context.Context, item model.PendingReversal) error
	CompleteReversal(ctx context.Context, id int64) error
	RescheduleReversal(ctx context.Context, item model.PendingReversal, retryErr error) error
}

// ReversalProcessor drains the payable reversal queue concurrently. Each poll
// claims a batch and fans it out to workers.
type ReversalProcessor struct {
	facade       ReversalFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.PendingReversal
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewReversalProcessor constructs the reversal worker pool.
func NewReversalProcessor(facade ReversalFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *ReversalProcessor {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &ReversalProcessor{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.PendingReversal, batchSize*workers),
	}
}

// Start launches background processing.
func (p *ReversalProcessor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *ReversalProcessor) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *ReversalProcessor) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *ReversalProcessor) fetchAndDispatch(ctx context.Context) {
	reversals, err := p.facade.PendingReversals(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("fetch pending reversals failed", slog.String("error", err.Error()))
		return
	}
	for _, item := range reversals {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- item:
		}
	}
}

func (p *ReversalProcessor) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleReversal(ctx, item)
		}
	}
}

func (p *ReversalProcessor) handleReversal(ctx context.Context, item model.PendingReversal) {
	err := p.facade.RetryReversal(ctx, item)
	if err == nil {
		if err := p.facade.CompleteReversal(ctx, item.ID); err != nil {
			p.logger.Error("mark reversal done failed",
				slog.Int64("reversal", item.ID),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	var rateLimited orderservice.TooManyRequestsError
	if errors.As(err, &rateLimited) {
		p.logger.Warn("order service rate limited", slog.Duration("retry_after", rateLimited.RetryAfter))
		time.Sleep(rateLimited.RetryAfter)
	} else {
		p.logger.Error("payable reversal failed",
			slog.Int64("reversal", item.ID),
			slog.Int64("external_id", item.ExternalID),
			slog.String("error", err.Error()),
		)
	}

	if err := p.facade.RescheduleReversal(ctx, item, err); err != nil {
		p.logger.Error("reschedule reversal failed",
			slog.Int64("reversal", item.ID),
			slog.String("error", err.Error()),
		)
	}
}
