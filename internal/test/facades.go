package test

import (
	"context"
	"time"

	"github.com/buyside/procure/internal/domain/model"
)

// CredentialFacadeStub provides controllable behaviour for credential endpoints.
type CredentialFacadeStub struct {
	ConnectFn func(context.Context, int64, string, string, time.Time) error
}

// ConnectTenant delegates to the provided function or succeeds.
func (s CredentialFacadeStub) ConnectTenant(ctx context.Context, tenantID int64, accessToken, refreshToken string, expiresAt time.Time) error {
	if s.ConnectFn != nil {
		return s.ConnectFn(ctx, tenantID, accessToken, refreshToken, expiresAt)
	}
	return nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	SubmitFn func(context.Context, int64, *model.PurchaseOrder, []model.OrderLine, []model.Installment) (*model.SubmitResult, error)
	OrderFn  func(context.Context, int64, int64) (*model.PurchaseOrder, error)
	OrdersFn func(context.Context, int64) ([]model.PurchaseOrder, error)
	LinesFn  func(context.Context, int64) ([]model.OrderLine, error)
}

// SubmitOrder delegates to the provided function or returns a default result.
func (s OrderFacadeStub) SubmitOrder(ctx context.Context, tenantID int64, order *model.PurchaseOrder, lines []model.OrderLine, installments []model.Installment) (*model.SubmitResult, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, tenantID, order, lines, installments)
	}
	return &model.SubmitResult{LocalID: 1, ExternalID: 100, Number: 42}, nil
}

// Order returns the configured order or a minimal draft.
func (s OrderFacadeStub) Order(ctx context.Context, tenantID, orderID int64) (*model.PurchaseOrder, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, tenantID, orderID)
	}
	return &model.PurchaseOrder{ID: orderID, TenantID: tenantID, Status: model.StatusDraft}, nil
}

// Orders returns predefined orders for the given tenant.
func (s OrderFacadeStub) Orders(ctx context.Context, tenantID int64) ([]model.PurchaseOrder, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, tenantID)
	}
	return []model.PurchaseOrder{{ID: 1, TenantID: tenantID, Status: model.StatusDraft}}, nil
}

// OrderLines returns predefined lines for the given order.
func (s OrderFacadeStub) OrderLines(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	if s.LinesFn != nil {
		return s.LinesFn(ctx, orderID)
	}
	return []model.OrderLine{{ID: 1, OrderID: orderID, Description: "item", UnitPrice: 10, Quantity: 1}}, nil
}

// NegotiationFacadeStub simulates the supplier negotiation lifecycle.
type NegotiationFacadeStub struct {
	SendFn     func(context.Context, int64, int64) error
	SuggestFn  func(context.Context, int64, int64, *model.SupplierSuggestion) (int64, error)
	AcceptFn   func(context.Context, int64, int64) (*model.Recalculation, error)
	RejectFn   func(context.Context, int64, int64, string) error
	CounterFn  func(context.Context, int64, int64, map[int64]model.CounterProposalLine, string) (*model.CounterProposal, error)
	CancelFn   func(context.Context, int64, int64) error
	FinalizeFn func(context.Context, int64, int64) error
}

// SendToSupplier executes the configured handler.
func (s NegotiationFacadeStub) SendToSupplier(ctx context.Context, tenantID, orderID int64) error {
	if s.SendFn != nil {
		return s.SendFn(ctx, tenantID, orderID)
	}
	return nil
}

// SubmitSuggestion executes the configured handler or returns a default id.
func (s NegotiationFacadeStub) SubmitSuggestion(ctx context.Context, tenantID, orderID int64, suggestion *model.SupplierSuggestion) (int64, error) {
	if s.SuggestFn != nil {
		return s.SuggestFn(ctx, tenantID, orderID, suggestion)
	}
	return 1, nil
}

// AcceptSuggestion returns the configured recalculation or a default one.
func (s NegotiationFacadeStub) AcceptSuggestion(ctx context.Context, tenantID, orderID int64) (*model.Recalculation, error) {
	if s.AcceptFn != nil {
		return s.AcceptFn(ctx, tenantID, orderID)
	}
	return &model.Recalculation{OriginalSubtotal: 100, FinalTotal: 90, Savings: 10, SavingsPct: 10}, nil
}

// RejectSuggestion executes the configured handler.
func (s NegotiationFacadeStub) RejectSuggestion(ctx context.Context, tenantID, orderID int64, buyerNote string) error {
	if s.RejectFn != nil {
		return s.RejectFn(ctx, tenantID, orderID, buyerNote)
	}
	return nil
}

// CounterPropose returns the configured proposal or an empty one.
func (s NegotiationFacadeStub) CounterPropose(ctx context.Context, tenantID, orderID int64, overrides map[int64]model.CounterProposalLine, note string) (*model.CounterProposal, error) {
	if s.CounterFn != nil {
		return s.CounterFn(ctx, tenantID, orderID, overrides, note)
	}
	return &model.CounterProposal{OrderID: orderID, Note: note}, nil
}

// CancelOrder executes the configured handler.
func (s NegotiationFacadeStub) CancelOrder(ctx context.Context, tenantID, orderID int64) error {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, tenantID, orderID)
	}
	return nil
}

// FinalizeOrder executes the configured handler.
func (s NegotiationFacadeStub) FinalizeOrder(ctx context.Context, tenantID, orderID int64) error {
	if s.FinalizeFn != nil {
		return s.FinalizeFn(ctx, tenantID, orderID)
	}
	return nil
}

// ProcurementFacadeStub aggregates the facade stubs into a single handler dependency.
type ProcurementFacadeStub struct {
	CredentialFacadeStub
	OrderFacadeStub
	NegotiationFacadeStub
}
