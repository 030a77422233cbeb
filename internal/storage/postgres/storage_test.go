package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"go.uber.org/fx/fxtest"

	domainErrors "github.com/buyside/procure/internal/domain/errors"
	"github.com/buyside/procure/internal/domain/model"
)

func newMockStorage(t *testing.T) (*Storage, pgxmockv3.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmockv3.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	storage := &Storage{pool: mock, logger: logger}
	return storage, mock
}

func expectSchema(mock pgxmockv3.PgxPoolIface) {
	tableStatements := []string{
		"CREATE TABLE IF NOT EXISTS purchase_orders",
		"CREATE TABLE IF NOT EXISTS order_lines",
		"CREATE TABLE IF NOT EXISTS installments",
		"CREATE TABLE IF NOT EXISTS supplier_suggestions",
		"CREATE TABLE IF NOT EXISTS suggestion_lines",
		"CREATE TABLE IF NOT EXISTS credentials",
		"CREATE TABLE IF NOT EXISTS supplier_products",
		"CREATE TABLE IF NOT EXISTS pending_reversals",
	}
	for _, stmt := range tableStatements {
		mock.ExpectExec(stmt).WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
	}
	indexStatements := []string{
		"CREATE INDEX IF NOT EXISTS idx_purchase_orders_tenant",
		"CREATE INDEX IF NOT EXISTS idx_order_lines_order",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_suggestions_one_pending",
		"CREATE INDEX IF NOT EXISTS idx_pending_reversals_status",
	}
	for _, stmt := range indexStatements {
		mock.ExpectExec(stmt).WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
	}
}

func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmockv3.AnyArg()
	}
	return args
}

func orderRowColumns() []string {
	return []string{
		"id", "tenant_id", "external_id", "number", "supplier_id", "supplier_external_id",
		"status", "external_status", "products_subtotal", "discount", "freight", "icms_tax", "total",
		"freight_responsibility", "carrier", "gross_weight", "volumes", "issue_date", "expected_date",
		"reference", "notes", "internal_notes", "created_by", "origin", "created_at", "updated_at",
	}
}

func addOrderRow(rows *pgxmockv3.Rows, id, tenantID int64, status model.NegotiationStatus, externalStatus int, at time.Time) *pgxmockv3.Rows {
	return rows.AddRow(
		id, tenantID, nil, nil, int64(10), int64(9001),
		status, externalStatus, float64(0), float64(0), float64(0), float64(0), float64(0),
		model.FreightCIF, "", nil, nil, at, nil,
		"", "", "", int64(0), "", at, at,
	)
}

func TestNewInvalidDSN(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if _, err := New(context.Background(), "://not-a-dsn", logger); err == nil {
		t.Fatal("expected dsn parse error")
	}
}

func TestInitSchema(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	expectSchema(mock)
	if err := storage.initSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS purchase_orders").WillReturnError(errors.New("permission denied"))
	if err := storage.initSchema(context.Background()); err == nil {
		t.Fatal("expected schema error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestWithinTransaction(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	t.Run("commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit()
		if err := storage.WithinTransaction(context.Background(), func(pgx.Tx) error { return nil }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rollback", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()
		if err := storage.WithinTransaction(context.Background(), func(pgx.Tx) error { return context.Canceled }); err != context.Canceled {
			t.Fatalf("expected canceled, got %v", err)
		}
	})

	t.Run("begin error", func(t *testing.T) {
		mock.ExpectBegin().WillReturnError(errors.New("begin"))
		if err := storage.WithinTransaction(context.Background(), func(pgx.Tx) error { return nil }); err == nil {
			t.Fatal("expected begin error")
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryCreateMirror(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	externalID := int64(333)
	number := int64(42)
	productID := int64(77)
	order := &model.PurchaseOrder{
		TenantID:           1,
		ExternalID:         &externalID,
		Number:             &number,
		SupplierID:         10,
		SupplierExternalID: 9001,
		Status:             model.StatusDraft,
		IssueDate:          time.Now(),
	}
	lines := []model.OrderLine{{ProductID: &productID, UnitPrice: 9.9, Quantity: 4}}
	installments := []model.Installment{{Amount: 150, DueDate: time.Now()}}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO purchase_orders").WithArgs(anyArgs(23)...).WillReturnRows(
		pgxmockv3.NewRows([]string{"id"}).AddRow(int64(15)))
	mock.ExpectExec("INSERT INTO order_lines").WithArgs(anyArgs(9)...).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO installments").WithArgs(anyArgs(5)...).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	mock.ExpectCommit()

	id, err := repo.CreateMirror(context.Background(), order, lines, installments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 15 {
		t.Fatalf("expected local id 15, got %d", id)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO purchase_orders").WithArgs(anyArgs(23)...).WillReturnRows(
		pgxmockv3.NewRows([]string{"id"}).AddRow(int64(16)))
	mock.ExpectExec("INSERT INTO order_lines").WithArgs(anyArgs(9)...).WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	if _, err := repo.CreateMirror(context.Background(), order, lines, nil); err == nil {
		t.Fatal("expected line insert error to roll back")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGetByID(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	now := time.Now()
	mock.ExpectQuery("SELECT id, tenant_id, external_id").WithArgs(int64(1), int64(5)).WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderRowColumns()), 5, 1, model.StatusDraft, 0, now))
	order, err := repo.GetByID(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 5 || order.Status != model.StatusDraft {
		t.Fatalf("unexpected order %+v", order)
	}

	mock.ExpectQuery("SELECT id, tenant_id, external_id").WithArgs(int64(1), int64(99)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 1, 99); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListByTenant(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	now := time.Now()
	rows := pgxmockv3.NewRows(orderRowColumns())
	addOrderRow(rows, 5, 1, model.StatusDraft, 0, now)
	addOrderRow(rows, 6, 1, model.StatusSentToSupplier, 0, now)
	mock.ExpectQuery("SELECT id, tenant_id, external_id").WithArgs(int64(1)).WillReturnRows(rows)

	orders, err := repo.ListByTenant(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryMaxNumber(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	mock.ExpectQuery("SELECT COALESCE").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows([]string{"coalesce"}).AddRow(int64(0)))
	max, err := repo.MaxNumber(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if max != 0 {
		t.Fatalf("expected 0 for empty mirror, got %d", max)
	}

	mock.ExpectQuery("SELECT COALESCE").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows([]string{"coalesce"}).AddRow(int64(142)))
	max, err = repo.MaxNumber(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if max != 142 {
		t.Fatalf("expected 142, got %d", max)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryUpdateStatus(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	mock.ExpectExec("UPDATE purchase_orders SET status=").
		WithArgs(model.StatusSentToSupplier, int64(1), int64(5), model.StatusDraft).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdateStatus(context.Background(), 1, 5, model.StatusDraft, model.StatusSentToSupplier); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE purchase_orders SET status=").
		WithArgs(model.StatusSentToSupplier, int64(1), int64(5), model.StatusDraft).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	err := repo.UpdateStatus(context.Background(), 1, 5, model.StatusDraft, model.StatusSentToSupplier)
	if !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition on stale status, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryApplyAcceptance(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	revisions := []model.LineRevision{{LineID: 1, Quantity: 100, UnitPrice: 10.8}}
	totals := model.OrderTotals{ProductsSubtotal: 1200, Discount: 120, Total: 1080}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE purchase_orders").WithArgs(anyArgs(7)...).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE order_lines SET quantity=").
		WithArgs(float64(100), 10.8, int64(1), int64(5)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE supplier_suggestions SET status=").
		WithArgs(model.SuggestionAccepted, int64(9), model.SuggestionPending).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	if err := repo.ApplyAcceptance(context.Background(), 1, 5, 9, revisions, totals); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE purchase_orders").WithArgs(anyArgs(7)...).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.ApplyAcceptance(context.Background(), 1, 5, 9, revisions, totals)
	if !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition on stale order, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestSuggestionRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &suggestionRepository{storage: storage}

	suggestion := &model.SupplierSuggestion{
		OrderID: 5,
		Status:  model.SuggestionPending,
		Lines:   []model.SuggestionLine{{OrderLineID: 1, Quantity: 10, DiscountPct: 5}},
	}

	createdAt := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO supplier_suggestions").WithArgs(anyArgs(10)...).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(9), createdAt))
	mock.ExpectQuery("INSERT INTO suggestion_lines").WithArgs(anyArgs(5)...).WillReturnRows(
		pgxmockv3.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectExec("UPDATE purchase_orders SET status=").
		WithArgs(model.StatusSuggestionPending, int64(1), int64(5), model.StatusSentToSupplier).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	id, err := repo.Create(context.Background(), 1, suggestion, model.StatusSentToSupplier)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 9 || suggestion.Lines[0].SuggestionID != 9 || suggestion.Lines[0].ID != 21 {
		t.Fatalf("suggestion not bound: %+v", suggestion)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO supplier_suggestions").WithArgs(anyArgs(10)...).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	if _, err := repo.Create(context.Background(), 1, suggestion, model.StatusSentToSupplier); !errors.Is(err, domainErrors.ErrSuggestionPending) {
		t.Fatalf("expected suggestion pending error, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO supplier_suggestions").WithArgs(anyArgs(10)...).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(10), createdAt))
	mock.ExpectQuery("INSERT INTO suggestion_lines").WithArgs(anyArgs(5)...).WillReturnRows(
		pgxmockv3.NewRows([]string{"id"}).AddRow(int64(22)))
	mock.ExpectExec("UPDATE purchase_orders SET status=").
		WithArgs(model.StatusSuggestionPending, int64(1), int64(5), model.StatusSentToSupplier).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	if _, err := repo.Create(context.Background(), 1, suggestion, model.StatusSentToSupplier); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected stale order to roll the insert back, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestSuggestionRepositoryGetPending(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &suggestionRepository{storage: storage}

	createdAt := time.Now()
	suggestionColumns := []string{"id", "order_id", "status", "submitted_by", "general_discount_pct",
		"general_bonus_pct", "minimum_order_value", "delivery_lead_days", "valid_until",
		"supplier_note", "buyer_note", "created_at"}

	mock.ExpectQuery("SELECT id, order_id, status").WithArgs(int64(5), model.SuggestionPending).WillReturnRows(
		pgxmockv3.NewRows(suggestionColumns).AddRow(
			int64(9), int64(5), model.SuggestionPending, "supplier", 10.0, 0.0, 1000.0, 7, nil, "note", "", createdAt))
	mock.ExpectQuery("SELECT id, suggestion_id, order_line_id").WithArgs(int64(9)).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "suggestion_id", "order_line_id", "quantity", "discount_pct", "bonus_pct"}).
			AddRow(int64(21), int64(9), int64(1), 10.0, 5.0, 0.0))

	suggestion, err := repo.GetPending(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if suggestion.ID != 9 || len(suggestion.Lines) != 1 || suggestion.Lines[0].OrderLineID != 1 {
		t.Fatalf("unexpected suggestion %+v", suggestion)
	}

	mock.ExpectQuery("SELECT id, order_id, status").WithArgs(int64(6), model.SuggestionPending).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetPending(context.Background(), 6); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestSuggestionRepositoryResolve(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &suggestionRepository{storage: storage}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE supplier_suggestions SET status=").
		WithArgs(model.SuggestionRejected, "too expensive", int64(9), model.SuggestionPending).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE purchase_orders SET status=").
		WithArgs(model.StatusRejected, int64(1), int64(5), model.StatusSuggestionPending).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	if err := repo.Resolve(context.Background(), 1, 5, 9, model.SuggestionRejected, "too expensive", model.StatusRejected); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE supplier_suggestions SET status=").
		WithArgs(model.SuggestionRejected, "", int64(9), model.SuggestionPending).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.Resolve(context.Background(), 1, 5, 9, model.SuggestionRejected, "", model.StatusRejected)
	if !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE supplier_suggestions SET status=").
		WithArgs(model.SuggestionRejected, "", int64(9), model.SuggestionPending).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE purchase_orders SET status=").
		WithArgs(model.StatusSentToSupplier, int64(1), int64(5), model.StatusSuggestionPending).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	// A stale order rolls the suggestion update back as well; the pending
	// round survives for the next attempt.
	err = repo.Resolve(context.Background(), 1, 5, 9, model.SuggestionRejected, "", model.StatusSentToSupplier)
	if !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition on stale order, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestCredentialRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &credentialRepository{storage: storage}

	expiresAt := time.Now().Add(time.Hour)
	updatedAt := time.Now()
	mock.ExpectQuery("SELECT tenant_id, access_token").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows([]string{"tenant_id", "access_token", "refresh_token", "expires_at", "updated_at"}).
			AddRow(int64(1), "access", "refresh", expiresAt, updatedAt))
	credential, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credential.AccessToken != "access" {
		t.Fatalf("unexpected credential %+v", credential)
	}

	mock.ExpectQuery("SELECT tenant_id, access_token").WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Get(context.Background(), 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("INSERT INTO credentials").
		WithArgs(int64(1), "access", "refresh", expiresAt).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.Save(context.Background(), &model.Credential{
		TenantID: 1, AccessToken: "access", RefreshToken: "refresh", ExpiresAt: expiresAt,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestSupplierProductRepositoryCodes(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &supplierProductRepository{storage: storage}

	mock.ExpectQuery("SELECT product_id, supplier_code FROM supplier_products").
		WithArgs(int64(10), []int64{77, 78}).
		WillReturnRows(pgxmockv3.NewRows([]string{"product_id", "supplier_code"}).
			AddRow(int64(77), "SUP-77"))

	codes, err := repo.Codes(context.Background(), 10, []int64{77, 78})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(codes) != 1 || codes[77] != "SUP-77" {
		t.Fatalf("unexpected codes %v", codes)
	}
	if _, ok := codes[78]; ok {
		t.Fatal("unmapped product must be absent from the result")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestReversalRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &reversalRepository{storage: storage}

	mock.ExpectExec("INSERT INTO pending_reversals").
		WithArgs(int64(1), int64(333), model.ReversalPending, "timeout").
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.Enqueue(context.Background(), 1, 333, "timeout"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The claim updates follow only after the whole result set is read; a
	// second query while rows are open would fail on a live connection.
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, tenant_id, external_id").WithArgs(4).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "tenant_id", "external_id", "attempts", "status", "last_error", "created_at", "updated_at"}).
			AddRow(int64(11), int64(1), int64(333), 0, model.ReversalPending, "timeout", now, now).
			AddRow(int64(12), int64(1), int64(334), 1, model.ReversalPending, "timeout", now, now))
	mock.ExpectExec("UPDATE pending_reversals SET status='PROCESSING'").
		WithArgs(int64(11)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE pending_reversals SET status='PROCESSING'").
		WithArgs(int64(12)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	batch, err := repo.SelectBatch(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 2 || batch[0].Status != model.ReversalProcessing || batch[1].Status != model.ReversalProcessing {
		t.Fatalf("unexpected batch %+v", batch)
	}

	mock.ExpectExec("UPDATE pending_reversals SET status=").
		WithArgs(model.ReversalDone, int64(11)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.MarkDone(context.Background(), 11); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE pending_reversals SET status=").
		WithArgs(model.ReversalPending, 1, "gateway timeout", int64(11)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.Reschedule(context.Background(), 11, 1, 3, "gateway timeout"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE pending_reversals SET status=").
		WithArgs(model.ReversalFailed, 3, "gateway timeout", int64(11)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.Reschedule(context.Background(), 11, 3, 3, "gateway timeout"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	mock.ExpectPing()
	if err := storage.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectPing().WillReturnError(errors.New("ping"))
	if err := storage.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestRegisterLifecycle(t *testing.T) {
	storage, mock := newMockStorage(t)

	lc := fxtest.NewLifecycle(t)
	registerLifecycle(lc, storage)
	lc.RequireStart()
	lc.RequireStop()
	_ = mock
}
