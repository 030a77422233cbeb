package handlers

import (
	"context"
	"time"

	"github.com/buyside/procure/internal/domain/model"
)

// CredentialFacade manages external service credentials per tenant.
type CredentialFacade interface {
	ConnectTenant(ctx context.Context, tenantID int64, accessToken, refreshToken string, expiresAt time.Time) error
}

// OrderFacade encapsulates order submission and reads exposed via HTTP.
type OrderFacade interface {
	SubmitOrder(ctx context.Context, tenantID int64, order *model.PurchaseOrder, lines []model.OrderLine, installments []model.Installment) (*model.SubmitResult, error)
	Order(ctx context.Context, tenantID, orderID int64) (*model.PurchaseOrder, error)
	Orders(ctx context.Context, tenantID int64) ([]model.PurchaseOrder, error)
	OrderLines(ctx context.Context, orderID int64) ([]model.OrderLine, error)
}

// NegotiationFacade drives the supplier negotiation lifecycle.
type NegotiationFacade interface {
	SendToSupplier(ctx context.Context, tenantID, orderID int64) error
	SubmitSuggestion(ctx context.Context, tenantID, orderID int64, suggestion *model.SupplierSuggestion) (int64, error)
	AcceptSuggestion(ctx context.Context, tenantID, orderID int64) (*model.Recalculation, error)
	RejectSuggestion(ctx context.Context, tenantID, orderID int64, buyerNote string) error
	CounterPropose(ctx context.Context, tenantID, orderID int64, overrides map[int64]model.CounterProposalLine, note string) (*model.CounterProposal, error)
	CancelOrder(ctx context.Context, tenantID, orderID int64) error
	FinalizeOrder(ctx context.Context, tenantID, orderID int64) error
}

// ProcurementFacade aggregates the full set of operations used across handlers.
type ProcurementFacade interface {
	CredentialFacade
	OrderFacade
	NegotiationFacade
}
