package test

import (
	"context"

	domainErrors "github.com/buyside/procure/internal/domain/errors"
	"github.com/buyside/procure/internal/domain/model"
)

// OrderRepositoryStub allows tests to customize mirror behaviour.
type OrderRepositoryStub struct {
	CreateMirrorFn    func(context.Context, *model.PurchaseOrder, []model.OrderLine, []model.Installment) (int64, error)
	GetByIDFn         func(context.Context, int64, int64) (*model.PurchaseOrder, error)
	ListByTenantFn    func(context.Context, int64) ([]model.PurchaseOrder, error)
	LinesFn           func(context.Context, int64) ([]model.OrderLine, error)
	MaxNumberFn       func(context.Context, int64) (int64, error)
	UpdateStatusFn    func(context.Context, int64, int64, model.NegotiationStatus, model.NegotiationStatus) error
	ApplyAcceptanceFn func(context.Context, int64, int64, int64, []model.LineRevision, model.OrderTotals) error

	Order       *model.PurchaseOrder
	OrderLines  []model.OrderLine
	Max         int64
	Mirrored    []MirrorCall
	StatusCalls []StatusCall
	Acceptances []AcceptanceCall
}

// MirrorCall records one CreateMirror invocation.
type MirrorCall struct {
	Order        *model.PurchaseOrder
	Lines        []model.OrderLine
	Installments []model.Installment
}

// StatusCall records one UpdateStatus invocation.
type StatusCall struct {
	TenantID int64
	OrderID  int64
	From     model.NegotiationStatus
	To       model.NegotiationStatus
}

// AcceptanceCall records one ApplyAcceptance invocation.
type AcceptanceCall struct {
	TenantID     int64
	OrderID      int64
	SuggestionID int64
	Revisions    []model.LineRevision
	Totals       model.OrderTotals
}

func (s *OrderRepositoryStub) CreateMirror(ctx context.Context, order *model.PurchaseOrder, lines []model.OrderLine, installments []model.Installment) (int64, error) {
	s.Mirrored = append(s.Mirrored, MirrorCall{Order: order, Lines: lines, Installments: installments})
	if s.CreateMirrorFn != nil {
		return s.CreateMirrorFn(ctx, order, lines, installments)
	}
	return 1, nil
}

func (s *OrderRepositoryStub) GetByID(ctx context.Context, tenantID, orderID int64) (*model.PurchaseOrder, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, tenantID, orderID)
	}
	if s.Order == nil {
		return nil, domainErrors.ErrNotFound
	}
	return s.Order, nil
}

func (s *OrderRepositoryStub) ListByTenant(ctx context.Context, tenantID int64) ([]model.PurchaseOrder, error) {
	if s.ListByTenantFn != nil {
		return s.ListByTenantFn(ctx, tenantID)
	}
	if s.Order == nil {
		return nil, nil
	}
	return []model.PurchaseOrder{*s.Order}, nil
}

func (s *OrderRepositoryStub) Lines(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	if s.LinesFn != nil {
		return s.LinesFn(ctx, orderID)
	}
	return s.OrderLines, nil
}

func (s *OrderRepositoryStub) MaxNumber(ctx context.Context, tenantID int64) (int64, error) {
	if s.MaxNumberFn != nil {
		return s.MaxNumberFn(ctx, tenantID)
	}
	return s.Max, nil
}

func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, tenantID, orderID int64, from, to model.NegotiationStatus) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, tenantID, orderID, from, to)
	}
	s.StatusCalls = append(s.StatusCalls, StatusCall{TenantID: tenantID, OrderID: orderID, From: from, To: to})
	if s.Order != nil {
		s.Order.Status = to
	}
	return nil
}

func (s *OrderRepositoryStub) ApplyAcceptance(ctx context.Context, tenantID, orderID, suggestionID int64, revisions []model.LineRevision, totals model.OrderTotals) error {
	if s.ApplyAcceptanceFn != nil {
		return s.ApplyAcceptanceFn(ctx, tenantID, orderID, suggestionID, revisions, totals)
	}
	s.Acceptances = append(s.Acceptances, AcceptanceCall{TenantID: tenantID, OrderID: orderID, SuggestionID: suggestionID, Revisions: revisions, Totals: totals})
	if s.Order != nil {
		s.Order.Status = model.StatusAccepted
	}
	return nil
}

// SuggestionRepositoryStub stores suggestions in-memory for tests. When
// Orders is set, the order transitions bundled into Create and Resolve are
// replayed against it, mimicking the shared transaction of the real
// repository.
type SuggestionRepositoryStub struct {
	CreateFn     func(context.Context, int64, *model.SupplierSuggestion, model.NegotiationStatus) (int64, error)
	GetPendingFn func(context.Context, int64) (*model.SupplierSuggestion, error)
	ResolveFn    func(context.Context, int64, int64, int64, model.SuggestionStatus, string, model.NegotiationStatus) error

	Orders      *OrderRepositoryStub
	Pending     *model.SupplierSuggestion
	Created     []*model.SupplierSuggestion
	Resolutions []SuggestionResolution
	Next        int64
}

// SuggestionResolution records one Resolve invocation.
type SuggestionResolution struct {
	TenantID     int64
	OrderID      int64
	SuggestionID int64
	To           model.SuggestionStatus
	BuyerNote    string
	OrderTo      model.NegotiationStatus
}

func (s *SuggestionRepositoryStub) Create(ctx context.Context, tenantID int64, suggestion *model.SupplierSuggestion, orderFrom model.NegotiationStatus) (int64, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, tenantID, suggestion, orderFrom)
	}
	if s.Pending != nil {
		return 0, domainErrors.ErrSuggestionPending
	}
	if s.Next == 0 {
		s.Next = 1
	}
	suggestion.ID = s.Next
	s.Next++
	s.Pending = suggestion
	s.Created = append(s.Created, suggestion)
	s.transitionOrder(tenantID, suggestion.OrderID, orderFrom, model.StatusSuggestionPending)
	return suggestion.ID, nil
}

func (s *SuggestionRepositoryStub) GetPending(ctx context.Context, orderID int64) (*model.SupplierSuggestion, error) {
	if s.GetPendingFn != nil {
		return s.GetPendingFn(ctx, orderID)
	}
	if s.Pending == nil {
		return nil, domainErrors.ErrNotFound
	}
	return s.Pending, nil
}

func (s *SuggestionRepositoryStub) Resolve(ctx context.Context, tenantID, orderID, suggestionID int64, to model.SuggestionStatus, buyerNote string, orderTo model.NegotiationStatus) error {
	if s.ResolveFn != nil {
		return s.ResolveFn(ctx, tenantID, orderID, suggestionID, to, buyerNote, orderTo)
	}
	s.Resolutions = append(s.Resolutions, SuggestionResolution{
		TenantID: tenantID, OrderID: orderID, SuggestionID: suggestionID,
		To: to, BuyerNote: buyerNote, OrderTo: orderTo,
	})
	if s.Pending != nil && s.Pending.ID == suggestionID {
		s.Pending.Status = to
		if to != model.SuggestionPending {
			s.Pending = nil
		}
	}
	s.transitionOrder(tenantID, orderID, model.StatusSuggestionPending, orderTo)
	return nil
}

func (s *SuggestionRepositoryStub) transitionOrder(tenantID, orderID int64, from, to model.NegotiationStatus) {
	if s.Orders == nil {
		return
	}
	s.Orders.StatusCalls = append(s.Orders.StatusCalls, StatusCall{TenantID: tenantID, OrderID: orderID, From: from, To: to})
	if s.Orders.Order != nil {
		s.Orders.Order.Status = to
	}
}

// CredentialRepositoryStub stores one credential per tenant.
type CredentialRepositoryStub struct {
	GetFn  func(context.Context, int64) (*model.Credential, error)
	SaveFn func(context.Context, *model.Credential) error

	Credentials map[int64]*model.Credential
	Saved       []*model.Credential
}

func (s *CredentialRepositoryStub) Get(ctx context.Context, tenantID int64) (*model.Credential, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, tenantID)
	}
	if credential, ok := s.Credentials[tenantID]; ok {
		return credential, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *CredentialRepositoryStub) Save(ctx context.Context, credential *model.Credential) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, credential)
	}
	if s.Credentials == nil {
		s.Credentials = make(map[int64]*model.Credential)
	}
	s.Credentials[credential.TenantID] = credential
	s.Saved = append(s.Saved, credential)
	return nil
}

// SupplierProductRepositoryStub answers supplier code lookups from a map.
type SupplierProductRepositoryStub struct {
	CodesFn func(context.Context, int64, []int64) (map[int64]string, error)
	CodeMap map[int64]string
	Err     error
}

func (s *SupplierProductRepositoryStub) Codes(ctx context.Context, supplierID int64, productIDs []int64) (map[int64]string, error) {
	if s.CodesFn != nil {
		return s.CodesFn(ctx, supplierID, productIDs)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.CodeMap, nil
}

// ReversalRepositoryStub tracks queued reversals.
type ReversalRepositoryStub struct {
	EnqueueFn     func(context.Context, int64, int64, string) error
	SelectBatchFn func(context.Context, int) ([]model.PendingReversal, error)

	Queued      []model.PendingReversal
	Batch       []model.PendingReversal
	Done        []int64
	Rescheduled []RescheduleCall
}

// RescheduleCall records one Reschedule invocation.
type RescheduleCall struct {
	ID          int64
	Attempts    int
	MaxAttempts int
	LastError   string
}

func (s *ReversalRepositoryStub) Enqueue(ctx context.Context, tenantID, externalID int64, lastError string) error {
	if s.EnqueueFn != nil {
		return s.EnqueueFn(ctx, tenantID, externalID, lastError)
	}
	s.Queued = append(s.Queued, model.PendingReversal{TenantID: tenantID, ExternalID: externalID, LastError: lastError, Status: model.ReversalPending})
	return nil
}

func (s *ReversalRepositoryStub) SelectBatch(ctx context.Context, limit int) ([]model.PendingReversal, error) {
	if s.SelectBatchFn != nil {
		return s.SelectBatchFn(ctx, limit)
	}
	if limit < len(s.Batch) {
		return s.Batch[:limit], nil
	}
	return s.Batch, nil
}

func (s *ReversalRepositoryStub) MarkDone(ctx context.Context, id int64) error {
	s.Done = append(s.Done, id)
	return nil
}

func (s *ReversalRepositoryStub) Reschedule(ctx context.Context, id int64, attempts, maxAttempts int, lastError string) error {
	s.Rescheduled = append(s.Rescheduled, RescheduleCall{ID: id, Attempts: attempts, MaxAttempts: maxAttempts, LastError: lastError})
	return nil
}
