package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/buyside/procure/internal/domain/model"
	testhelpers "github.com/buyside/procure/internal/test"
	"github.com/buyside/procure/internal/usecase"
)

type facadeFixture struct {
	facade      *ProcurementFacade
	client      *testhelpers.OrderServiceStub
	orders      *testhelpers.OrderRepositoryStub
	suggestions *testhelpers.SuggestionRepositoryStub
	credentials *testhelpers.CredentialRepositoryStub
	reversals   *testhelpers.ReversalRepositoryStub
}

func newTestFacade() *facadeFixture {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	orders := &testhelpers.OrderRepositoryStub{}
	f := &facadeFixture{
		client:      &testhelpers.OrderServiceStub{},
		orders:      orders,
		suggestions: &testhelpers.SuggestionRepositoryStub{Orders: orders},
		credentials: &testhelpers.CredentialRepositoryStub{
			Credentials: map[int64]*model.Credential{
				1: {TenantID: 1, AccessToken: "token", RefreshToken: "r", ExpiresAt: now.Add(time.Hour)},
			},
		},
		reversals: &testhelpers.ReversalRepositoryStub{},
	}

	tokens := usecase.NewTokenProvider(f.credentials, f.client, 5*time.Minute, logger)
	numbers := usecase.NewNumberResolver(f.orders, f.client)
	submitter := usecase.NewSubmitter(tokens, numbers, f.client, f.orders,
		&testhelpers.SupplierProductRepositoryStub{}, f.reversals, 10, logger)
	negotiation := usecase.NewNegotiation(f.orders, f.suggestions, logger)
	reversals := usecase.NewReversals(tokens, f.client, f.reversals, 3, logger)

	f.facade = NewProcurementFacade(submitter, negotiation, reversals, f.orders, f.credentials)
	return f
}

func TestFacadeSubmitOrder(t *testing.T) {
	f := newTestFacade()

	order := &model.PurchaseOrder{SupplierExternalID: 9001, IssueDate: time.Now()}
	lines := []model.OrderLine{{Description: "Widget", UnitPrice: 9.9, Quantity: 4}}

	result, err := f.facade.SubmitOrder(context.Background(), 1, order, lines, nil)
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if result.ExternalID != 1 || result.Number != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(f.orders.Mirrored) != 1 {
		t.Fatalf("expected order mirrored locally, got %d", len(f.orders.Mirrored))
	}
}

func TestFacadeNegotiationRound(t *testing.T) {
	f := newTestFacade()
	f.orders.Order = &model.PurchaseOrder{ID: 5, TenantID: 1, Status: model.StatusDraft}

	ctx := context.Background()
	if err := f.facade.SendToSupplier(ctx, 1, 5); err != nil {
		t.Fatalf("send returned error: %v", err)
	}

	id, err := f.facade.SubmitSuggestion(ctx, 1, 5, &model.SupplierSuggestion{GeneralDiscountPct: 5})
	if err != nil {
		t.Fatalf("suggestion returned error: %v", err)
	}
	if id == 0 {
		t.Fatal("expected suggestion id")
	}

	recalc, err := f.facade.AcceptSuggestion(ctx, 1, 5)
	if err != nil {
		t.Fatalf("accept returned error: %v", err)
	}
	if recalc == nil {
		t.Fatal("expected recalculation result")
	}
	if f.orders.Order.Status != model.StatusAccepted {
		t.Fatalf("expected accepted order, got %s", f.orders.Order.Status)
	}

	if err := f.facade.FinalizeOrder(ctx, 1, 5); err != nil {
		t.Fatalf("finalize returned error: %v", err)
	}
}

func TestFacadeConnectTenant(t *testing.T) {
	f := newTestFacade()

	expiresAt := time.Now().Add(time.Hour)
	if err := f.facade.ConnectTenant(context.Background(), 7, "a", "r", expiresAt); err != nil {
		t.Fatalf("connect returned error: %v", err)
	}

	stored, err := f.credentials.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("credentials not stored: %v", err)
	}
	if stored.AccessToken != "a" || stored.RefreshToken != "r" {
		t.Fatalf("unexpected credential %+v", stored)
	}
}

func TestFacadeReversalDelegation(t *testing.T) {
	f := newTestFacade()
	f.reversals.Batch = []model.PendingReversal{{ID: 11, TenantID: 1, ExternalID: 333}}

	ctx := context.Background()
	batch, err := f.facade.PendingReversals(ctx, 10)
	if err != nil {
		t.Fatalf("pending returned error: %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("expected one pending reversal, got %d", len(batch))
	}

	if err := f.facade.RetryReversal(ctx, batch[0]); err != nil {
		t.Fatalf("retry returned error: %v", err)
	}
	if err := f.facade.CompleteReversal(ctx, batch[0].ID); err != nil {
		t.Fatalf("complete returned error: %v", err)
	}
	if len(f.reversals.Done) != 1 {
		t.Fatalf("expected reversal marked done, got %v", f.reversals.Done)
	}
}
