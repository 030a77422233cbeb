package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "github.com/buyside/procure/internal/domain/errors"
	"github.com/buyside/procure/internal/domain/model"
	"github.com/buyside/procure/internal/test"
)

func newReversalsFixture(client *test.OrderServiceStub, queue *test.ReversalRepositoryStub) *Reversals {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	credentials := &test.CredentialRepositoryStub{
		Credentials: map[int64]*model.Credential{
			1: {TenantID: 1, AccessToken: "token", RefreshToken: "r", ExpiresAt: now.Add(time.Hour)},
		},
	}
	tokens := NewTokenProvider(credentials, client, 5*time.Minute, testLogger())
	tokens.now = fixedClock(now)
	return NewReversals(tokens, client, queue, 3, testLogger())
}

func TestReversalRetrySuccess(t *testing.T) {
	client := &test.OrderServiceStub{}
	queue := &test.ReversalRepositoryStub{}
	reversals := newReversalsFixture(client, queue)

	item := model.PendingReversal{ID: 11, TenantID: 1, ExternalID: 333}
	if err := reversals.Retry(context.Background(), item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.Reversed) != 1 || client.Reversed[0] != 333 {
		t.Fatalf("expected reversal of order 333, got %v", client.Reversed)
	}

	if err := reversals.Complete(context.Background(), item.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queue.Done) != 1 || queue.Done[0] != 11 {
		t.Fatalf("expected reversal 11 marked done, got %v", queue.Done)
	}
}

func TestReversalRetryWithoutCredentials(t *testing.T) {
	client := &test.OrderServiceStub{}
	reversals := newReversalsFixture(client, &test.ReversalRepositoryStub{})

	item := model.PendingReversal{ID: 11, TenantID: 99, ExternalID: 333}
	if err := reversals.Retry(context.Background(), item); !errors.Is(err, domainErrors.ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
	if len(client.Reversed) != 0 {
		t.Fatal("no reversal call without a token")
	}
}

func TestRescheduleIncrementsAttempts(t *testing.T) {
	queue := &test.ReversalRepositoryStub{}
	reversals := newReversalsFixture(&test.OrderServiceStub{}, queue)

	item := model.PendingReversal{ID: 11, TenantID: 1, ExternalID: 333, Attempts: 1}
	if err := reversals.Reschedule(context.Background(), item, errors.New("gateway timeout")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(queue.Rescheduled) != 1 {
		t.Fatalf("expected one reschedule, got %d", len(queue.Rescheduled))
	}
	call := queue.Rescheduled[0]
	if call.Attempts != 2 || call.MaxAttempts != 3 {
		t.Fatalf("unexpected attempt bookkeeping %+v", call)
	}
	if call.LastError != "gateway timeout" {
		t.Fatalf("expected last error recorded, got %q", call.LastError)
	}
}

func TestPendingBatchDelegates(t *testing.T) {
	queue := &test.ReversalRepositoryStub{
		Batch: []model.PendingReversal{{ID: 1}, {ID: 2}, {ID: 3}},
	}
	reversals := newReversalsFixture(&test.OrderServiceStub{}, queue)

	batch, err := reversals.PendingBatch(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected batch of 2, got %d", len(batch))
	}
}
