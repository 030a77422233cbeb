package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/buyside/procure/internal/domain/errors"
	"github.com/buyside/procure/internal/domain/model"
	"github.com/buyside/procure/internal/domain/repository"
)

// dbPool is the subset of pgxpool.Pool the storage layer uses. Tests plug in
// a pgxmock pool through it.
type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   dbPool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type suggestionRepository struct {
	storage *Storage
}

type credentialRepository struct {
	storage *Storage
}

type supplierProductRepository struct {
	storage *Storage
}

type reversalRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Suggestions() repository.SuggestionRepository {
	return &suggestionRepository{storage: s}
}

func (s *Storage) Credentials() repository.CredentialRepository {
	return &credentialRepository{storage: s}
}

func (s *Storage) SupplierProducts() repository.SupplierProductRepository {
	return &supplierProductRepository{storage: s}
}

func (s *Storage) Reversals() repository.ReversalRepository {
	return &reversalRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS purchase_orders (
            id BIGSERIAL PRIMARY KEY,
            tenant_id BIGINT NOT NULL,
            external_id BIGINT,
            number BIGINT,
            supplier_id BIGINT NOT NULL,
            supplier_external_id BIGINT NOT NULL,
            status TEXT NOT NULL,
            external_status INT NOT NULL DEFAULT 0,
            products_subtotal DOUBLE PRECISION NOT NULL DEFAULT 0,
            discount DOUBLE PRECISION NOT NULL DEFAULT 0,
            freight DOUBLE PRECISION NOT NULL DEFAULT 0,
            icms_tax DOUBLE PRECISION NOT NULL DEFAULT 0,
            total DOUBLE PRECISION NOT NULL DEFAULT 0,
            freight_responsibility TEXT NOT NULL DEFAULT '',
            carrier TEXT NOT NULL DEFAULT '',
            gross_weight DOUBLE PRECISION,
            volumes INT,
            issue_date TIMESTAMPTZ NOT NULL,
            expected_date TIMESTAMPTZ,
            reference TEXT NOT NULL DEFAULT '',
            notes TEXT NOT NULL DEFAULT '',
            internal_notes TEXT NOT NULL DEFAULT '',
            created_by BIGINT NOT NULL DEFAULT 0,
            origin TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_lines (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES purchase_orders(id),
            product_id BIGINT,
            external_product_id BIGINT,
            supplier_code TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            unit TEXT NOT NULL DEFAULT '',
            unit_price DOUBLE PRECISION NOT NULL,
            quantity DOUBLE PRECISION NOT NULL,
            ipi_rate DOUBLE PRECISION NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS installments (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES purchase_orders(id),
            amount DOUBLE PRECISION NOT NULL,
            due_date TIMESTAMPTZ NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            payment_method_id BIGINT
        )`,
		`CREATE TABLE IF NOT EXISTS supplier_suggestions (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES purchase_orders(id),
            status TEXT NOT NULL,
            submitted_by TEXT NOT NULL DEFAULT '',
            general_discount_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
            general_bonus_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
            minimum_order_value DOUBLE PRECISION NOT NULL DEFAULT 0,
            delivery_lead_days INT NOT NULL DEFAULT 0,
            valid_until TIMESTAMPTZ,
            supplier_note TEXT NOT NULL DEFAULT '',
            buyer_note TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS suggestion_lines (
            id BIGSERIAL PRIMARY KEY,
            suggestion_id BIGINT NOT NULL REFERENCES supplier_suggestions(id),
            order_line_id BIGINT NOT NULL,
            quantity DOUBLE PRECISION NOT NULL,
            discount_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
            bonus_pct DOUBLE PRECISION NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS credentials (
            tenant_id BIGINT PRIMARY KEY,
            access_token TEXT NOT NULL,
            refresh_token TEXT NOT NULL,
            expires_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS supplier_products (
            supplier_id BIGINT NOT NULL,
            product_id BIGINT NOT NULL,
            supplier_code TEXT NOT NULL,
            PRIMARY KEY (supplier_id, product_id)
        )`,
		`CREATE TABLE IF NOT EXISTS pending_reversals (
            id BIGSERIAL PRIMARY KEY,
            tenant_id BIGINT NOT NULL,
            external_id BIGINT NOT NULL,
            attempts INT NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'PENDING',
            last_error TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_purchase_orders_tenant ON purchase_orders(tenant_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines(order_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_suggestions_one_pending ON supplier_suggestions(order_id) WHERE status = 'PENDING'`,
		`CREATE INDEX IF NOT EXISTS idx_pending_reversals_status ON pending_reversals(status, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- OrderRepository implementation ---

const orderColumns = `id, tenant_id, external_id, number, supplier_id, supplier_external_id,
                      status, external_status, products_subtotal, discount, freight, icms_tax, total,
                      freight_responsibility, carrier, gross_weight, volumes, issue_date, expected_date,
                      reference, notes, internal_notes, created_by, origin, created_at, updated_at`

func scanOrder(row pgx.Row, o *model.PurchaseOrder) error {
	return row.Scan(
		&o.ID, &o.TenantID, &o.ExternalID, &o.Number, &o.SupplierID, &o.SupplierExternalID,
		&o.Status, &o.ExternalStatus, &o.ProductsSubtotal, &o.Discount, &o.Freight, &o.ICMSTax, &o.Total,
		&o.FreightResponsibility, &o.Carrier, &o.GrossWeight, &o.Volumes, &o.IssueDate, &o.ExpectedDate,
		&o.Reference, &o.Notes, &o.InternalNotes, &o.CreatedBy, &o.Origin, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *orderRepository) CreateMirror(ctx context.Context, order *model.PurchaseOrder, lines []model.OrderLine, installments []model.Installment) (int64, error) {
	const insertOrder = `INSERT INTO purchase_orders (
            tenant_id, external_id, number, supplier_id, supplier_external_id, status, external_status,
            products_subtotal, discount, freight, icms_tax, total, freight_responsibility, carrier,
            gross_weight, volumes, issue_date, expected_date, reference, notes, internal_notes, created_by, origin)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
        RETURNING id`
	const insertLine = `INSERT INTO order_lines (order_id, product_id, external_product_id, supplier_code,
            description, unit, unit_price, quantity, ipi_rate)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	const insertInstallment = `INSERT INTO installments (order_id, amount, due_date, note, payment_method_id)
        VALUES ($1,$2,$3,$4,$5)`

	var orderID int64
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertOrder,
			order.TenantID, order.ExternalID, order.Number, order.SupplierID, order.SupplierExternalID,
			order.Status, order.ExternalStatus, order.ProductsSubtotal, order.Discount, order.Freight,
			order.ICMSTax, order.Total, order.FreightResponsibility, order.Carrier, order.GrossWeight,
			order.Volumes, order.IssueDate, order.ExpectedDate, order.Reference, order.Notes,
			order.InternalNotes, order.CreatedBy, order.Origin,
		).Scan(&orderID)
		if err != nil {
			return err
		}

		for _, line := range lines {
			if _, err := tx.Exec(ctx, insertLine, orderID, line.ProductID, line.ExternalProductID,
				line.SupplierCode, line.Description, line.Unit, line.UnitPrice, line.Quantity, line.IPIRate); err != nil {
				return err
			}
		}

		for _, installment := range installments {
			if _, err := tx.Exec(ctx, insertInstallment, orderID, installment.Amount,
				installment.DueDate, installment.Note, installment.PaymentMethodID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

func (r *orderRepository) GetByID(ctx context.Context, tenantID, orderID int64) (*model.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE tenant_id=$1 AND id=$2`
	var order model.PurchaseOrder
	if err := scanOrder(r.storage.pool.QueryRow(ctx, query, tenantID, orderID), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByTenant(ctx context.Context, tenantID int64) ([]model.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE tenant_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PurchaseOrder
	for rows.Next() {
		var order model.PurchaseOrder
		if err := scanOrder(rows, &order); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) Lines(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	const query = `SELECT id, order_id, product_id, external_product_id, supplier_code, description,
                   unit, unit_price, quantity, ipi_rate
                   FROM order_lines WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderLine
	for rows.Next() {
		var line model.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.ExternalProductID,
			&line.SupplierCode, &line.Description, &line.Unit, &line.UnitPrice, &line.Quantity, &line.IPIRate); err != nil {
			return nil, err
		}
		result = append(result, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) MaxNumber(ctx context.Context, tenantID int64) (int64, error) {
	const query = `SELECT COALESCE(MAX(number), 0) FROM purchase_orders WHERE tenant_id=$1`
	var max int64
	if err := r.storage.pool.QueryRow(ctx, query, tenantID).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, tenantID, orderID int64, from, to model.NegotiationStatus) error {
	const query = `UPDATE purchase_orders SET status=$1, updated_at=NOW()
                   WHERE tenant_id=$2 AND id=$3 AND status=$4`
	tag, err := r.storage.pool.Exec(ctx, query, to, tenantID, orderID, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the order vanished or its status moved since it was read.
		return domainErrors.ErrInvalidTransition
	}
	return nil
}

func (r *orderRepository) ApplyAcceptance(ctx context.Context, tenantID, orderID, suggestionID int64, revisions []model.LineRevision, totals model.OrderTotals) error {
	const updateOrder = `UPDATE purchase_orders
                         SET status=$1, products_subtotal=$2, discount=$3, total=$4, updated_at=NOW()
                         WHERE tenant_id=$5 AND id=$6 AND status=$7`
	const updateLine = `UPDATE order_lines SET quantity=$1, unit_price=$2 WHERE id=$3 AND order_id=$4`
	const updateSuggestion = `UPDATE supplier_suggestions SET status=$1 WHERE id=$2 AND status=$3`

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateOrder,
			model.StatusAccepted, totals.ProductsSubtotal, totals.Discount, totals.Total,
			tenantID, orderID, model.StatusSuggestionPending)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrInvalidTransition
		}

		for _, revision := range revisions {
			if _, err := tx.Exec(ctx, updateLine, revision.Quantity, revision.UnitPrice, revision.LineID, orderID); err != nil {
				return err
			}
		}

		tag, err = tx.Exec(ctx, updateSuggestion, model.SuggestionAccepted, suggestionID, model.SuggestionPending)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrInvalidTransition
		}
		return nil
	})
}

// --- SuggestionRepository implementation ---

func (r *suggestionRepository) Create(ctx context.Context, tenantID int64, suggestion *model.SupplierSuggestion, orderFrom model.NegotiationStatus) (int64, error) {
	const insertSuggestion = `INSERT INTO supplier_suggestions (order_id, status, submitted_by,
            general_discount_pct, general_bonus_pct, minimum_order_value, delivery_lead_days,
            valid_until, supplier_note, buyer_note)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`
	const insertLine = `INSERT INTO suggestion_lines (suggestion_id, order_line_id, quantity, discount_pct, bonus_pct)
        VALUES ($1,$2,$3,$4,$5)`
	const updateOrder = `UPDATE purchase_orders SET status=$1, updated_at=NOW()
                         WHERE tenant_id=$2 AND id=$3 AND status=$4`

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertSuggestion,
			suggestion.OrderID, suggestion.Status, suggestion.SubmittedBy,
			suggestion.GeneralDiscountPct, suggestion.GeneralBonusPct, suggestion.MinimumOrderValue,
			suggestion.DeliveryLeadDays, suggestion.ValidUntil, suggestion.SupplierNote, suggestion.BuyerNote,
		).Scan(&suggestion.ID, &suggestion.CreatedAt)
		if err != nil {
			return err
		}

		for i := range suggestion.Lines {
			line := &suggestion.Lines[i]
			line.SuggestionID = suggestion.ID
			if err := tx.QueryRow(ctx, insertLine+` RETURNING id`,
				suggestion.ID, line.OrderLineID, line.Quantity, line.DiscountPct, line.BonusPct).Scan(&line.ID); err != nil {
				return err
			}
		}

		tag, err := tx.Exec(ctx, updateOrder, model.StatusSuggestionPending, tenantID, suggestion.OrderID, orderFrom)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, domainErrors.ErrSuggestionPending
		}
		return 0, err
	}
	return suggestion.ID, nil
}

func (r *suggestionRepository) GetPending(ctx context.Context, orderID int64) (*model.SupplierSuggestion, error) {
	const query = `SELECT id, order_id, status, submitted_by, general_discount_pct, general_bonus_pct,
                   minimum_order_value, delivery_lead_days, valid_until, supplier_note, buyer_note, created_at
                   FROM supplier_suggestions WHERE order_id=$1 AND status=$2`
	var s model.SupplierSuggestion
	err := r.storage.pool.QueryRow(ctx, query, orderID, model.SuggestionPending).Scan(
		&s.ID, &s.OrderID, &s.Status, &s.SubmittedBy, &s.GeneralDiscountPct, &s.GeneralBonusPct,
		&s.MinimumOrderValue, &s.DeliveryLeadDays, &s.ValidUntil, &s.SupplierNote, &s.BuyerNote, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `SELECT id, suggestion_id, order_line_id, quantity, discount_pct, bonus_pct
                        FROM suggestion_lines WHERE suggestion_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, linesQuery, s.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line model.SuggestionLine
		if err := rows.Scan(&line.ID, &line.SuggestionID, &line.OrderLineID, &line.Quantity, &line.DiscountPct, &line.BonusPct); err != nil {
			return nil, err
		}
		s.Lines = append(s.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *suggestionRepository) Resolve(ctx context.Context, tenantID, orderID, suggestionID int64, to model.SuggestionStatus, buyerNote string, orderTo model.NegotiationStatus) error {
	const updateSuggestion = `UPDATE supplier_suggestions SET status=$1, buyer_note=$2 WHERE id=$3 AND status=$4`
	const updateOrder = `UPDATE purchase_orders SET status=$1, updated_at=NOW()
                         WHERE tenant_id=$2 AND id=$3 AND status=$4`

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateSuggestion, to, buyerNote, suggestionID, model.SuggestionPending)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrInvalidTransition
		}

		tag, err = tx.Exec(ctx, updateOrder, orderTo, tenantID, orderID, model.StatusSuggestionPending)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrInvalidTransition
		}
		return nil
	})
}

// --- CredentialRepository implementation ---

func (r *credentialRepository) Get(ctx context.Context, tenantID int64) (*model.Credential, error) {
	const query = `SELECT tenant_id, access_token, refresh_token, expires_at, updated_at
                   FROM credentials WHERE tenant_id=$1`
	var c model.Credential
	err := r.storage.pool.QueryRow(ctx, query, tenantID).Scan(
		&c.TenantID, &c.AccessToken, &c.RefreshToken, &c.ExpiresAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *credentialRepository) Save(ctx context.Context, credential *model.Credential) error {
	const query = `INSERT INTO credentials (tenant_id, access_token, refresh_token, expires_at, updated_at)
                   VALUES ($1, $2, $3, $4, NOW())
                   ON CONFLICT (tenant_id) DO UPDATE
                   SET access_token = EXCLUDED.access_token,
                       refresh_token = EXCLUDED.refresh_token,
                       expires_at = EXCLUDED.expires_at,
                       updated_at = NOW()`
	_, err := r.storage.pool.Exec(ctx, query,
		credential.TenantID, credential.AccessToken, credential.RefreshToken, credential.ExpiresAt)
	return err
}

// --- SupplierProductRepository implementation ---

func (r *supplierProductRepository) Codes(ctx context.Context, supplierID int64, productIDs []int64) (map[int64]string, error) {
	const query = `SELECT product_id, supplier_code FROM supplier_products
                   WHERE supplier_id=$1 AND product_id = ANY($2)`
	rows, err := r.storage.pool.Query(ctx, query, supplierID, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make(map[int64]string)
	for rows.Next() {
		var productID int64
		var code string
		if err := rows.Scan(&productID, &code); err != nil {
			return nil, err
		}
		codes[productID] = code
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}

// --- ReversalRepository implementation ---

func (r *reversalRepository) Enqueue(ctx context.Context, tenantID, externalID int64, lastError string) error {
	const query = `INSERT INTO pending_reversals (tenant_id, external_id, attempts, status, last_error)
                   VALUES ($1, $2, 0, $3, $4)`
	_, err := r.storage.pool.Exec(ctx, query, tenantID, externalID, model.ReversalPending, lastError)
	return err
}

func (r *reversalRepository) SelectBatch(ctx context.Context, limit int) ([]model.PendingReversal, error) {
	const selectQuery = `SELECT id, tenant_id, external_id, attempts, status, last_error, created_at, updated_at
                         FROM pending_reversals
                         WHERE status = 'PENDING'
                         ORDER BY created_at
                         LIMIT $1
                         FOR UPDATE SKIP LOCKED`

	var reversals []model.PendingReversal
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, limit)
		if err != nil {
			return err
		}

		for rows.Next() {
			var item model.PendingReversal
			if err := rows.Scan(&item.ID, &item.TenantID, &item.ExternalID, &item.Attempts,
				&item.Status, &item.LastError, &item.CreatedAt, &item.UpdatedAt); err != nil {
				rows.Close()
				return err
			}
			reversals = append(reversals, item)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		// The claim updates run only after the result set is drained; pgx
		// allows a single in-flight query per connection.
		for i := range reversals {
			if _, err := tx.Exec(ctx, `UPDATE pending_reversals SET status='PROCESSING', updated_at=NOW() WHERE id=$1`, reversals[i].ID); err != nil {
				return err
			}
			reversals[i].Status = model.ReversalProcessing
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reversals, nil
}

func (r *reversalRepository) MarkDone(ctx context.Context, id int64) error {
	const query = `UPDATE pending_reversals SET status=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.storage.pool.Exec(ctx, query, model.ReversalDone, id)
	return err
}

func (r *reversalRepository) Reschedule(ctx context.Context, id int64, attempts, maxAttempts int, lastError string) error {
	status := model.ReversalPending
	if attempts >= maxAttempts {
		status = model.ReversalFailed
	}
	const query = `UPDATE pending_reversals SET status=$1, attempts=$2, last_error=$3, updated_at=NOW() WHERE id=$4`
	_, err := r.storage.pool.Exec(ctx, query, status, attempts, lastError, id)
	return err
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
