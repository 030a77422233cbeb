package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buyside/procure/internal/domain/model"
	"github.com/buyside/procure/internal/server/http/dto"
)

// NegotiationHandler manages the supplier negotiation endpoints.
type NegotiationHandler struct {
	facade ProcurementFacade
}

// NewNegotiationHandler constructs NegotiationHandler.
func NewNegotiationHandler(facade ProcurementFacade) *NegotiationHandler {
	return &NegotiationHandler{facade: facade}
}

// Send handles POST /api/tenants/:tenant_id/orders/:order_id/send.
func (h *NegotiationHandler) Send(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	if err := h.facade.SendToSupplier(c.Request.Context(), tenant, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Suggest handles POST /api/tenants/:tenant_id/orders/:order_id/suggestions.
func (h *NegotiationHandler) Suggest(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req dto.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	suggestion := fromSuggestionRequest(req)
	suggestionID, err := h.facade.SubmitSuggestion(c.Request.Context(), tenant, id, suggestion)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.SuggestionCreatedResponse{SuggestionID: suggestionID})
}

// Accept handles POST /api/tenants/:tenant_id/orders/:order_id/suggestions/accept.
func (h *NegotiationHandler) Accept(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	recalc, err := h.facade.AcceptSuggestion(c.Request.Context(), tenant, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecalculationResponse(recalc))
}

// Reject handles POST /api/tenants/:tenant_id/orders/:order_id/suggestions/reject.
func (h *NegotiationHandler) Reject(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.RejectSuggestion(c.Request.Context(), tenant, id, req.Note); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Counter handles POST /api/tenants/:tenant_id/orders/:order_id/suggestions/counter.
func (h *NegotiationHandler) Counter(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req dto.CounterProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	overrides := make(map[int64]model.CounterProposalLine, len(req.Lines))
	for _, line := range req.Lines {
		overrides[line.OrderLineID] = model.CounterProposalLine{
			OrderLineID: line.OrderLineID,
			Quantity:    line.Quantity,
			DiscountPct: line.DiscountPct,
			BonusPct:    line.BonusPct,
		}
	}

	proposal, err := h.facade.CounterPropose(c.Request.Context(), tenant, id, overrides, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCounterProposalResponse(proposal))
}

// Cancel handles POST /api/tenants/:tenant_id/orders/:order_id/cancel.
func (h *NegotiationHandler) Cancel(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	if err := h.facade.CancelOrder(c.Request.Context(), tenant, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Finalize handles POST /api/tenants/:tenant_id/orders/:order_id/finalize.
func (h *NegotiationHandler) Finalize(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	if err := h.facade.FinalizeOrder(c.Request.Context(), tenant, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func fromSuggestionRequest(req dto.SuggestionRequest) *model.SupplierSuggestion {
	suggestion := &model.SupplierSuggestion{
		SubmittedBy:        req.SubmittedBy,
		GeneralDiscountPct: req.GeneralDiscountPct,
		GeneralBonusPct:    req.GeneralBonusPct,
		MinimumOrderValue:  req.MinimumOrderValue,
		DeliveryLeadDays:   req.DeliveryLeadDays,
		ValidUntil:         req.ValidUntil,
		SupplierNote:       req.SupplierNote,
	}
	for _, line := range req.Lines {
		suggestion.Lines = append(suggestion.Lines, model.SuggestionLine{
			OrderLineID: line.OrderLineID,
			Quantity:    line.Quantity,
			DiscountPct: line.DiscountPct,
			BonusPct:    line.BonusPct,
		})
	}
	return suggestion
}

func toRecalculationResponse(recalc *model.Recalculation) dto.RecalculationResponse {
	response := dto.RecalculationResponse{
		OriginalSubtotal:   recalc.OriginalSubtotal,
		OrderDiscountValue: recalc.OrderDiscountValue,
		FinalTotal:         recalc.FinalTotal,
		Savings:            recalc.Savings,
		SavingsPct:         recalc.SavingsPct,
		TotalBonusUnits:    recalc.TotalBonusUnits,
	}
	for _, line := range recalc.Lines {
		response.Lines = append(response.Lines, dto.PricedLineResponse{
			OrderLineID: line.OrderLineID,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.Subtotal,
			BonusUnits:  line.BonusUnits,
		})
	}
	return response
}

func toCounterProposalResponse(proposal *model.CounterProposal) dto.CounterProposalResponse {
	response := dto.CounterProposalResponse{OrderID: proposal.OrderID, Note: proposal.Note}
	for _, line := range proposal.Lines {
		response.Lines = append(response.Lines, dto.SuggestionLineRequest{
			OrderLineID: line.OrderLineID,
			Quantity:    line.Quantity,
			DiscountPct: line.DiscountPct,
			BonusPct:    line.BonusPct,
		})
	}
	return response
}
