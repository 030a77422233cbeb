package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/buyside/procure/internal/adapter/orderservice"
	domainErrors "github.com/buyside/procure/internal/domain/errors"
	"github.com/buyside/procure/internal/domain/model"
	"github.com/buyside/procure/internal/domain/repository"
)

// freightPayerCodes maps the freight responsibility enumeration to the
// external service's numeric encoding.
var freightPayerCodes = map[model.FreightResponsibility]int{
	model.FreightCIF:        0,
	model.FreightFOB:        1,
	model.FreightThirdParty: 2,
	model.FreightOwnSender:  3,
	model.FreightOwnBuyer:   4,
	model.FreightNone:       9,
}

// Submitter drives the create-with-retry / numbering-conflict protocol
// against the external service and mirrors the result locally.
type Submitter struct {
	tokens            *TokenProvider
	numbers           *NumberResolver
	client            orderservice.Client
	orders            repository.OrderRepository
	supplierProducts  repository.SupplierProductRepository
	reversals         repository.ReversalRepository
	numberingAttempts int
	logger            *slog.Logger
}

// NewSubmitter constructs a Submitter with the manual-numbering loop cap.
func NewSubmitter(
	tokens *TokenProvider,
	numbers *NumberResolver,
	client orderservice.Client,
	orders repository.OrderRepository,
	supplierProducts repository.SupplierProductRepository,
	reversals repository.ReversalRepository,
	numberingAttempts int,
	logger *slog.Logger,
) *Submitter {
	if numberingAttempts <= 0 {
		numberingAttempts = 10
	}
	return &Submitter{
		tokens:            tokens,
		numbers:           numbers,
		client:            client,
		orders:            orders,
		supplierProducts:  supplierProducts,
		reversals:         reversals,
		numberingAttempts: numberingAttempts,
		logger:            logger,
	}
}

// Submit creates the draft on the external service and mirrors it locally.
// Compensation and mirroring failures downgrade to warnings on an otherwise
// successful result.
func (s *Submitter) Submit(ctx context.Context, tenantID int64, order *model.PurchaseOrder, lines []model.OrderLine, installments []model.Installment) (*model.SubmitResult, error) {
	if err := validateDraft(order, lines); err != nil {
		return nil, err
	}

	token, err := s.tokens.Valid(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	s.enrichSupplierCodes(ctx, order.SupplierID, lines)

	payload := buildPayload(order, lines, installments)

	created, err := s.createWithNumbering(ctx, tenantID, token, payload)
	if err != nil {
		return nil, err
	}

	result := &model.SubmitResult{ExternalID: created.ID, Number: created.Number}

	// Order creation generated payable records from the installments;
	// undo them. Failure never aborts the submission.
	if err := s.client.ReversePayables(ctx, token, created.ID); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("payable reversal failed: %s", err))
		if queueErr := s.reversals.Enqueue(ctx, tenantID, created.ID, err.Error()); queueErr != nil {
			s.logger.Error("failed to queue payable reversal",
				slog.Int64("external_id", created.ID),
				slog.String("error", queueErr.Error()),
			)
		}
	}

	order.TenantID = tenantID
	order.ExternalID = &created.ID
	order.Number = &created.Number
	order.Status = model.StatusDraft
	order.ExternalStatus = model.ExternalStatusOpen

	// No compensating delete on the external side when mirroring fails:
	// a human may already be editing the order out-of-band.
	localID, err := s.orders.CreateMirror(ctx, order, lines, installments)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("local mirror failed: %s", err))
		s.logger.Error("order created externally but mirror failed",
			slog.Int64("external_id", created.ID),
			slog.Int64("number", created.Number),
			slog.String("error", err.Error()),
		)
		return result, nil
	}
	result.LocalID = localID

	return result, nil
}

func validateDraft(order *model.PurchaseOrder, lines []model.OrderLine) error {
	if order.SupplierExternalID == 0 {
		return fmt.Errorf("%w: order has no supplier", domainErrors.ErrValidation)
	}
	if len(lines) == 0 {
		return fmt.Errorf("%w: order has no line items", domainErrors.ErrValidation)
	}
	return nil
}

// enrichSupplierCodes resolves supplier-specific product codes onto the
// lines. Lookup failures keep whatever code is already present.
func (s *Submitter) enrichSupplierCodes(ctx context.Context, supplierID int64, lines []model.OrderLine) {
	var productIDs []int64
	for _, line := range lines {
		if line.ProductID != nil {
			productIDs = append(productIDs, *line.ProductID)
		}
	}
	if len(productIDs) == 0 {
		return
	}

	codes, err := s.supplierProducts.Codes(ctx, supplierID, productIDs)
	if err != nil {
		s.logger.Warn("supplier code lookup failed", slog.String("error", err.Error()))
		return
	}

	for i := range lines {
		if lines[i].ProductID == nil {
			continue
		}
		if code, ok := codes[*lines[i].ProductID]; ok && code != "" {
			lines[i].SupplierCode = code
		}
	}
}

// attemptOutcome classifies one create attempt for the numbering loop.
type attemptOutcome int

const (
	attemptSuccess attemptOutcome = iota
	attemptNeedsNumber
	attemptFailure
)

func classifyCreate(err error) attemptOutcome {
	if err == nil {
		return attemptSuccess
	}
	var apiErr *orderservice.APIError
	if errors.As(err, &apiErr) && (apiErr.RequiresManualNumber() || apiErr.IsDuplicateNumber()) {
		return attemptNeedsNumber
	}
	return attemptFailure
}

// createWithNumbering runs the primary create and, on a numbering conflict,
// the strictly sequential manual-numbering loop: resolve a candidate, retry,
// increment on each further duplicate, up to the outer cap.
func (s *Submitter) createWithNumbering(ctx context.Context, tenantID int64, token string, payload orderservice.OrderPayload) (*orderservice.CreatedOrder, error) {
	created, err := s.client.CreateOrder(ctx, token, payload)
	switch classifyCreate(err) {
	case attemptSuccess:
		return created, nil
	case attemptFailure:
		return nil, err
	}

	candidate, resolveErr := s.numbers.NextNumber(ctx, tenantID, token)
	if resolveErr != nil {
		return nil, resolveErr
	}

	s.logger.Info("entering manual numbering loop",
		slog.Int64("tenant", tenantID),
		slog.Int64("candidate", candidate),
	)

	lastErr := err
	for attempt := 0; attempt < s.numberingAttempts; attempt++ {
		number := candidate
		payload.Number = &number

		created, err = s.client.CreateOrder(ctx, token, payload)
		switch classifyCreate(err) {
		case attemptSuccess:
			return created, nil
		case attemptNeedsNumber:
			lastErr = err
			candidate++
		case attemptFailure:
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %s", domainErrors.ErrDuplicateNumber, lastErr)
}

func buildPayload(order *model.PurchaseOrder, lines []model.OrderLine, installments []model.Installment) orderservice.OrderPayload {
	payload := orderservice.OrderPayload{
		Date:                   order.IssueDate.Format("2006-01-02"),
		Supplier:               orderservice.EntityRef{ID: order.SupplierExternalID},
		Status:                 orderservice.StatusRef{Value: 0},
		PurchaseOrderReference: order.Reference,
		Notes:                  order.Notes,
		InternalNotes:          order.InternalNotes,
	}

	if order.ExpectedDate != nil {
		payload.ExpectedDate = order.ExpectedDate.Format("2006-01-02")
	}

	if order.Discount > 0 {
		payload.Discount = &orderservice.DiscountPayload{Value: order.Discount, Unit: "currency"}
	}

	if order.ICMSTax > 0 {
		payload.Tax = &orderservice.TaxPayload{TotalICMS: order.ICMSTax}
	}

	if shipping := buildShipping(order); shipping != nil {
		payload.Shipping = shipping
	}

	for _, line := range lines {
		item := orderservice.ItemPayload{
			Description:  line.Description,
			Unit:         line.Unit,
			UnitPrice:    line.UnitPrice,
			Quantity:     line.Quantity,
			SupplierCode: line.SupplierCode,
			IPIRate:      line.IPIRate,
		}
		if line.ExternalProductID != nil {
			item.Product = &orderservice.ProductRef{ID: *line.ExternalProductID, Code: line.SupplierCode}
		}
		payload.Items = append(payload.Items, item)
	}

	for _, installment := range installments {
		ip := orderservice.InstallmentPayload{
			Value:   installment.Amount,
			DueDate: installment.DueDate.Format("2006-01-02"),
			Note:    installment.Note,
		}
		if installment.PaymentMethodID != nil {
			ip.PaymentMethod = &orderservice.EntityRef{ID: *installment.PaymentMethodID}
		}
		payload.Installments = append(payload.Installments, ip)
	}

	return payload
}

// buildShipping returns nil when no freight information is set at all. The
// freight amount is omitted for CIF (bundled in price) and NO_FREIGHT (does
// not apply).
func buildShipping(order *model.PurchaseOrder) *orderservice.ShippingPayload {
	if order.Freight == 0 && order.Carrier == "" && order.FreightResponsibility == "" {
		return nil
	}

	shipping := &orderservice.ShippingPayload{
		Carrier:     order.Carrier,
		GrossWeight: order.GrossWeight,
		Volumes:     order.Volumes,
	}

	if code, ok := freightPayerCodes[order.FreightResponsibility]; ok {
		payerCode := code
		shipping.PayerCode = &payerCode
	}

	if order.FreightResponsibility != model.FreightCIF && order.FreightResponsibility != model.FreightNone {
		value := order.Freight
		shipping.Value = &value
	}

	return shipping
}
