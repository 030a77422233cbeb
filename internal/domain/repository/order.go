package repository

import (
	"context"

	"github.com/buyside/procure/internal/domain/model"
)

// OrderRepository describes persistence operations on the local purchase
// order mirror.
type OrderRepository interface {
	// CreateMirror writes the order, its lines and its installments in one
	// transaction and returns the local order id.
	CreateMirror(ctx context.Context, order *model.PurchaseOrder, lines []model.OrderLine, installments []model.Installment) (int64, error)
	GetByID(ctx context.Context, tenantID, orderID int64) (*model.PurchaseOrder, error)
	ListByTenant(ctx context.Context, tenantID int64) ([]model.PurchaseOrder, error)
	Lines(ctx context.Context, orderID int64) ([]model.OrderLine, error)
	// MaxNumber returns the highest assigned order number mirrored for the
	// tenant, or 0 when none exist.
	MaxNumber(ctx context.Context, tenantID int64) (int64, error)
	// UpdateStatus moves the order from one negotiation status to another.
	// The expected status is re-checked at write time; a stale expectation
	// fails with ErrInvalidTransition.
	UpdateStatus(ctx context.Context, tenantID, orderID int64, from, to model.NegotiationStatus) error
	// ApplyAcceptance transitions the order to accepted, overwrites line
	// quantities/prices and order totals from the accepted suggestion, and
	// marks the suggestion accepted, all in one transaction.
	ApplyAcceptance(ctx context.Context, tenantID, orderID, suggestionID int64, revisions []model.LineRevision, totals model.OrderTotals) error
}

// SuggestionRepository stores supplier suggestions and their lines.
type SuggestionRepository interface {
	// Create persists a pending suggestion and moves the order from orderFrom
	// to SUGGESTION_PENDING in the same transaction. ErrSuggestionPending is
	// returned when the order already has a pending suggestion.
	Create(ctx context.Context, tenantID int64, suggestion *model.SupplierSuggestion, orderFrom model.NegotiationStatus) (int64, error)
	GetPending(ctx context.Context, orderID int64) (*model.SupplierSuggestion, error)
	// Resolve closes the pending suggestion and moves the order out of
	// SUGGESTION_PENDING in the same transaction, so a failed order write
	// never leaves the suggestion resolved. The expected statuses are
	// re-checked at write time; a stale expectation fails with
	// ErrInvalidTransition.
	Resolve(ctx context.Context, tenantID, orderID, suggestionID int64, to model.SuggestionStatus, buyerNote string, orderTo model.NegotiationStatus) error
}

// CredentialRepository stores external service tokens per tenant.
type CredentialRepository interface {
	Get(ctx context.Context, tenantID int64) (*model.Credential, error)
	Save(ctx context.Context, credential *model.Credential) error
}

// SupplierProductRepository resolves supplier-specific product codes.
type SupplierProductRepository interface {
	// Codes returns supplier codes keyed by product id. Missing products are
	// simply absent from the map.
	Codes(ctx context.Context, supplierID int64, productIDs []int64) (map[int64]string, error)
}

// ReversalRepository queues payable reversals for asynchronous retry.
type ReversalRepository interface {
	Enqueue(ctx context.Context, tenantID, externalID int64, lastError string) error
	// SelectBatch claims up to limit pending reversals for processing.
	SelectBatch(ctx context.Context, limit int) ([]model.PendingReversal, error)
	MarkDone(ctx context.Context, id int64) error
	// Reschedule records a failed attempt; once attempts reach maxAttempts
	// the reversal is marked failed instead of requeued.
	Reschedule(ctx context.Context, id int64, attempts, maxAttempts int, lastError string) error
}

// Factory describes access to the domain repositories.
type Factory interface {
	Orders() OrderRepository
	Suggestions() SuggestionRepository
	Credentials() CredentialRepository
	SupplierProducts() SupplierProductRepository
	Reversals() ReversalRepository
}
