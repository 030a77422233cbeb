package usecase

import (
	"context"
	"fmt"
	"log/slog"

	domainErrors "github.com/buyside/procure/internal/domain/errors"
	"github.com/buyside/procure/internal/domain/model"
	"github.com/buyside/procure/internal/domain/repository"
)

// InvalidTransitionError reports a negotiation event attempted from a status
// that does not allow it.
type InvalidTransitionError struct {
	Event string
	From  model.NegotiationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s order in status %s", e.Event, e.From)
}

func (e *InvalidTransitionError) Unwrap() error {
	return domainErrors.ErrInvalidTransition
}

// cancelable are the statuses from which a buyer may cancel, subject to the
// external status guard.
var cancelable = map[model.NegotiationStatus]bool{
	model.StatusDraft:             true,
	model.StatusSentToSupplier:    true,
	model.StatusSuggestionPending: true,
	model.StatusRejected:          true,
}

// Negotiation runs the purchase order lifecycle: sending to the supplier,
// suggestion rounds, acceptance, rejection, cancelation and finalization.
// Every transition re-checks the persisted status at write time.
type Negotiation struct {
	orders      repository.OrderRepository
	suggestions repository.SuggestionRepository
	logger      *slog.Logger
}

// NewNegotiation constructs the negotiation lifecycle service.
func NewNegotiation(orders repository.OrderRepository, suggestions repository.SuggestionRepository, logger *slog.Logger) *Negotiation {
	return &Negotiation{orders: orders, suggestions: suggestions, logger: logger}
}

// Send moves a draft order to the supplier.
func (n *Negotiation) Send(ctx context.Context, tenantID, orderID int64) error {
	order, err := n.orders.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if order.Status != model.StatusDraft {
		return &InvalidTransitionError{Event: "send", From: order.Status}
	}
	return n.orders.UpdateStatus(ctx, tenantID, orderID, model.StatusDraft, model.StatusSentToSupplier)
}

// SupplierProposes registers a supplier suggestion for an order that is with
// the supplier (first round or after a rejection). At most one pending
// suggestion may exist per order.
func (n *Negotiation) SupplierProposes(ctx context.Context, tenantID, orderID int64, suggestion *model.SupplierSuggestion) (int64, error) {
	order, err := n.orders.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return 0, err
	}
	if order.Status != model.StatusSentToSupplier && order.Status != model.StatusRejected {
		return 0, &InvalidTransitionError{Event: "propose", From: order.Status}
	}

	suggestion.OrderID = orderID
	suggestion.Status = model.SuggestionPending

	return n.suggestions.Create(ctx, tenantID, suggestion, order.Status)
}

// Accept applies the pending suggestion: line quantities and prices are
// recomputed and overwritten together with the status change, atomically.
func (n *Negotiation) Accept(ctx context.Context, tenantID, orderID int64) (*model.Recalculation, error) {
	order, err := n.orders.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.StatusSuggestionPending {
		return nil, &InvalidTransitionError{Event: "accept", From: order.Status}
	}

	suggestion, err := n.suggestions.GetPending(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines, err := n.orders.Lines(ctx, orderID)
	if err != nil {
		return nil, err
	}

	recalc := Recalculate(lines, suggestion)

	if err := n.orders.ApplyAcceptance(ctx, tenantID, orderID, suggestion.ID, recalc.Revisions(), recalc.Totals()); err != nil {
		return nil, err
	}

	n.logger.Info("suggestion accepted",
		slog.Int64("order", orderID),
		slog.Int64("suggestion", suggestion.ID),
		slog.Float64("final_total", recalc.FinalTotal),
	)
	return &recalc, nil
}

// Reject declines the pending suggestion. Lines stay unchanged; the supplier
// may answer with a new proposal.
func (n *Negotiation) Reject(ctx context.Context, tenantID, orderID int64, buyerNote string) error {
	order, err := n.orders.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if order.Status != model.StatusSuggestionPending {
		return &InvalidTransitionError{Event: "reject", From: order.Status}
	}

	suggestion, err := n.suggestions.GetPending(ctx, orderID)
	if err != nil {
		return err
	}

	return n.suggestions.Resolve(ctx, tenantID, orderID, suggestion.ID,
		model.SuggestionRejected, buyerNote, model.StatusRejected)
}

// CounterPropose builds a buyer revision of the pending suggestion and sends
// the order back to the supplier for another round. The counter-proposal is
// a transient value, not a persisted entity.
func (n *Negotiation) CounterPropose(ctx context.Context, tenantID, orderID int64, overrides map[int64]model.CounterProposalLine, note string) (*model.CounterProposal, error) {
	order, err := n.orders.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.StatusSuggestionPending {
		return nil, &InvalidTransitionError{Event: "counter-propose", From: order.Status}
	}

	suggestion, err := n.suggestions.GetPending(ctx, orderID)
	if err != nil {
		return nil, err
	}

	proposal := model.BuildCounterProposal(suggestion, overrides, note)

	if err := n.suggestions.Resolve(ctx, tenantID, orderID, suggestion.ID,
		model.SuggestionRejected, note, model.StatusSentToSupplier); err != nil {
		return nil, err
	}
	return &proposal, nil
}

// Cancel closes the negotiation, permitted only while the external service
// does not already show the order finalized or canceled.
func (n *Negotiation) Cancel(ctx context.Context, tenantID, orderID int64) error {
	order, err := n.orders.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if !cancelable[order.Status] {
		return &InvalidTransitionError{Event: "cancel", From: order.Status}
	}
	if err := externalStatusGuard("cancel", order); err != nil {
		return err
	}
	return n.orders.UpdateStatus(ctx, tenantID, orderID, order.Status, model.StatusCanceled)
}

// Finalize completes an accepted order under the same external status guard.
func (n *Negotiation) Finalize(ctx context.Context, tenantID, orderID int64) error {
	order, err := n.orders.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if order.Status != model.StatusAccepted {
		return &InvalidTransitionError{Event: "finalize", From: order.Status}
	}
	if err := externalStatusGuard("finalize", order); err != nil {
		return err
	}
	return n.orders.UpdateStatus(ctx, tenantID, orderID, model.StatusAccepted, model.StatusFinalized)
}

func externalStatusGuard(event string, order *model.PurchaseOrder) error {
	if order.ExternalStatus == model.ExternalStatusFinalized || order.ExternalStatus == model.ExternalStatusCanceled {
		return &InvalidTransitionError{Event: event, From: order.Status}
	}
	return nil
}
