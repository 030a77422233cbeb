package app

import (
	"context"
	"time"

	"github.com/buyside/procure/internal/domain/model"
	"github.com/buyside/procure/internal/domain/repository"
	"github.com/buyside/procure/internal/usecase"
)

// ProcurementFacade aggregates the application use cases behind one surface
// consumed by the HTTP handlers and the reversal worker.
type ProcurementFacade struct {
	submitter   *usecase.Submitter
	negotiation *usecase.Negotiation
	reversals   *usecase.Reversals
	orders      repository.OrderRepository
	credentials repository.CredentialRepository
}

func NewProcurementFacade(
	submitter *usecase.Submitter,
	negotiation *usecase.Negotiation,
	reversals *usecase.Reversals,
	orders repository.OrderRepository,
	credentials repository.CredentialRepository,
) *ProcurementFacade {
	return &ProcurementFacade{
		submitter:   submitter,
		negotiation: negotiation,
		reversals:   reversals,
		orders:      orders,
		credentials: credentials,
	}
}

// ConnectTenant stores external service credentials for a tenant.
func (f *ProcurementFacade) ConnectTenant(ctx context.Context, tenantID int64, accessToken, refreshToken string, expiresAt time.Time) error {
	return f.credentials.Save(ctx, &model.Credential{
		TenantID:     tenantID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	})
}

func (f *ProcurementFacade) SubmitOrder(ctx context.Context, tenantID int64, order *model.PurchaseOrder, lines []model.OrderLine, installments []model.Installment) (*model.SubmitResult, error) {
	return f.submitter.Submit(ctx, tenantID, order, lines, installments)
}

func (f *ProcurementFacade) Order(ctx context.Context, tenantID, orderID int64) (*model.PurchaseOrder, error) {
	return f.orders.GetByID(ctx, tenantID, orderID)
}

func (f *ProcurementFacade) Orders(ctx context.Context, tenantID int64) ([]model.PurchaseOrder, error) {
	return f.orders.ListByTenant(ctx, tenantID)
}

func (f *ProcurementFacade) OrderLines(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	return f.orders.Lines(ctx, orderID)
}

func (f *ProcurementFacade) SendToSupplier(ctx context.Context, tenantID, orderID int64) error {
	return f.negotiation.Send(ctx, tenantID, orderID)
}

func (f *ProcurementFacade) SubmitSuggestion(ctx context.Context, tenantID, orderID int64, suggestion *model.SupplierSuggestion) (int64, error) {
	return f.negotiation.SupplierProposes(ctx, tenantID, orderID, suggestion)
}

func (f *ProcurementFacade) AcceptSuggestion(ctx context.Context, tenantID, orderID int64) (*model.Recalculation, error) {
	return f.negotiation.Accept(ctx, tenantID, orderID)
}

func (f *ProcurementFacade) RejectSuggestion(ctx context.Context, tenantID, orderID int64, buyerNote string) error {
	return f.negotiation.Reject(ctx, tenantID, orderID, buyerNote)
}

func (f *ProcurementFacade) CounterPropose(ctx context.Context, tenantID, orderID int64, overrides map[int64]model.CounterProposalLine, note string) (*model.CounterProposal, error) {
	return f.negotiation.CounterPropose(ctx, tenantID, orderID, overrides, note)
}

func (f *ProcurementFacade) CancelOrder(ctx context.Context, tenantID, orderID int64) error {
	return f.negotiation.Cancel(ctx, tenantID, orderID)
}

func (f *ProcurementFacade) FinalizeOrder(ctx context.Context, tenantID, orderID int64) error {
	return f.negotiation.Finalize(ctx, tenantID, orderID)
}

func (f *ProcurementFacade) PendingReversals(ctx context.Context, limit int) ([]model.PendingReversal, error) {
	return f.reversals.PendingBatch(ctx, limit)
}

func (f *ProcurementFacade) RetryReversal(ctx context.Context, item model.PendingReversal) error {
	return f.reversals.Retry(ctx, item)
}

func (f *ProcurementFacade) CompleteReversal(ctx context.Context, id int64) error {
	return f.reversals.Complete(ctx, id)
}

func (f *ProcurementFacade) RescheduleReversal(ctx context.Context, item model.PendingReversal, retryErr error) error {
	return f.reversals.Reschedule(ctx, item, retryErr)
}
