package usecase

import (
	"context"
	"log/slog"

	"github.com/buyside/procure/internal/adapter/orderservice"
	"github.com/buyside/procure/internal/domain/model"
	"github.com/buyside/procure/internal/domain/repository"
)

// Reversals retries queued payable reversals that failed during submission.
type Reversals struct {
	tokens      *TokenProvider
	client      orderservice.Client
	queue       repository.ReversalRepository
	maxAttempts int
	logger      *slog.Logger
}

// NewReversals constructs the reversal retry service.
func NewReversals(tokens *TokenProvider, client orderservice.Client, queue repository.ReversalRepository, maxAttempts int, logger *slog.Logger) *Reversals {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Reversals{tokens: tokens, client: client, queue: queue, maxAttempts: maxAttempts, logger: logger}
}

// PendingBatch claims up to limit queued reversals for processing.
func (r *Reversals) PendingBatch(ctx context.Context, limit int) ([]model.PendingReversal, error) {
	return r.queue.SelectBatch(ctx, limit)
}

// Retry performs one reversal attempt against the external service.
func (r *Reversals) Retry(ctx context.Context, item model.PendingReversal) error {
	token, err := r.tokens.Valid(ctx, item.TenantID)
	if err != nil {
		return err
	}
	return r.client.ReversePayables(ctx, token, item.ExternalID)
}

// Complete marks a queued reversal as done.
func (r *Reversals) Complete(ctx context.Context, id int64) error {
	return r.queue.MarkDone(ctx, id)
}

// Reschedule records a failed attempt; once the cap is reached the reversal
// stays marked failed for manual follow-up.
func (r *Reversals) Reschedule(ctx context.Context, item model.PendingReversal, retryErr error) error {
	message := ""
	if retryErr != nil {
		message = retryErr.Error()
	}
	return r.queue.Reschedule(ctx, item.ID, item.Attempts+1, r.maxAttempts, message)
}
