package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buyside/procure/internal/domain/model"
	"github.com/buyside/procure/internal/server/http/dto"
)

// OrderHandler manages credential and purchase order endpoints.
type OrderHandler struct {
	facade ProcurementFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade ProcurementFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Connect handles POST /api/tenants/:tenant_id/connect.
func (h *OrderHandler) Connect(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req dto.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	expiresAt := time.Now().Add(time.Duration(req.ExpiresIn) * time.Second)
	if err := h.facade.ConnectTenant(c.Request.Context(), tenant, req.AccessToken, req.RefreshToken, expiresAt); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Submit handles POST /api/tenants/:tenant_id/orders.
func (h *OrderHandler) Submit(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req dto.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, lines, installments := fromSubmitRequest(req, CurrentEmployeeID(c))

	result, err := h.facade.SubmitOrder(c.Request.Context(), tenant, order, lines, installments)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SubmitOrderResponse{
		LocalID:    result.LocalID,
		ExternalID: result.ExternalID,
		Number:     result.Number,
		Warnings:   result.Warnings,
	})
}

// List handles GET /api/tenants/:tenant_id/orders.
func (h *OrderHandler) List(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	orders, err := h.facade.Orders(c.Request.Context(), tenant)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		response = append(response, toOrderResponse(order, nil))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/tenants/:tenant_id/orders/:order_id.
func (h *OrderHandler) Get(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.facade.Order(c.Request.Context(), tenant, id)
	if err != nil {
		respondError(c, err)
		return
	}

	lines, err := h.facade.OrderLines(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(*order, lines))
}

func fromSubmitRequest(req dto.SubmitOrderRequest, employeeID int64) (*model.PurchaseOrder, []model.OrderLine, []model.Installment) {
	order := &model.PurchaseOrder{
		SupplierID:            req.SupplierID,
		SupplierExternalID:    req.SupplierExternalID,
		IssueDate:             req.IssueDate,
		ExpectedDate:          req.ExpectedDate,
		Discount:              req.Discount,
		Freight:               req.Freight,
		ICMSTax:               req.ICMSTax,
		FreightResponsibility: model.FreightResponsibility(req.FreightResponsibility),
		Carrier:               req.Carrier,
		GrossWeight:           req.GrossWeight,
		Volumes:               req.Volumes,
		Reference:             req.Reference,
		Notes:                 req.Notes,
		InternalNotes:         req.InternalNotes,
		CreatedBy:             employeeID,
		Origin:                "api",
	}

	lines := make([]model.OrderLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, model.OrderLine{
			ProductID:         line.ProductID,
			ExternalProductID: line.ExternalProductID,
			SupplierCode:      line.SupplierCode,
			Description:       line.Description,
			Unit:              line.Unit,
			UnitPrice:         line.UnitPrice,
			Quantity:          line.Quantity,
			IPIRate:           line.IPIRate,
		})
	}

	installments := make([]model.Installment, 0, len(req.Installments))
	for _, installment := range req.Installments {
		installments = append(installments, model.Installment{
			Amount:          installment.Amount,
			DueDate:         installment.DueDate,
			Note:            installment.Note,
			PaymentMethodID: installment.PaymentMethodID,
		})
	}

	return order, lines, installments
}

func toOrderResponse(order model.PurchaseOrder, lines []model.OrderLine) dto.OrderResponse {
	response := dto.OrderResponse{
		ID:         order.ID,
		ExternalID: order.ExternalID,
		Number:     order.Number,
		SupplierID: order.SupplierID,
		Status:     string(order.Status),
		Total:      order.Total,
		IssueDate:  order.IssueDate,
		CreatedAt:  order.CreatedAt,
	}
	for _, line := range lines {
		response.Lines = append(response.Lines, dto.OrderLineResponse{
			ID:           line.ID,
			ProductID:    line.ProductID,
			SupplierCode: line.SupplierCode,
			Description:  line.Description,
			UnitPrice:    line.UnitPrice,
			Quantity:     line.Quantity,
		})
	}
	return response
}
