package dto

import "time"

// SuggestionRequest is a supplier proposal for an order under negotiation.
type SuggestionRequest struct {
	SubmittedBy        string                  `json:"submitted_by,omitempty"`
	GeneralDiscountPct float64                 `json:"general_discount_pct,omitempty"`
	GeneralBonusPct    float64                 `json:"general_bonus_pct,omitempty"`
	MinimumOrderValue  float64                 `json:"minimum_order_value,omitempty"`
	DeliveryLeadDays   int                     `json:"delivery_lead_days,omitempty"`
	ValidUntil         *time.Time              `json:"valid_until,omitempty"`
	SupplierNote       string                  `json:"supplier_note,omitempty"`
	Lines              []SuggestionLineRequest `json:"lines,omitempty"`
}

// SuggestionLineRequest proposes terms for one order line.
type SuggestionLineRequest struct {
	OrderLineID int64   `json:"order_line_id" binding:"required"`
	Quantity    float64 `json:"quantity"`
	DiscountPct float64 `json:"discount_pct,omitempty"`
	BonusPct    float64 `json:"bonus_pct,omitempty"`
}

// SuggestionCreatedResponse acknowledges a registered proposal.
type SuggestionCreatedResponse struct {
	SuggestionID int64 `json:"suggestion_id"`
}

// RejectRequest carries the buyer's reason for declining a proposal.
type RejectRequest struct {
	Note string `json:"note,omitempty"`
}

// CounterProposalRequest revises the pending proposal line by line.
type CounterProposalRequest struct {
	Note  string                  `json:"note,omitempty"`
	Lines []SuggestionLineRequest `json:"lines,omitempty"`
}

// RecalculationResponse reports the repriced order after acceptance.
type RecalculationResponse struct {
	Lines              []PricedLineResponse `json:"lines"`
	OriginalSubtotal   float64              `json:"original_subtotal"`
	OrderDiscountValue float64              `json:"order_discount_value"`
	FinalTotal         float64              `json:"final_total"`
	Savings            float64              `json:"savings"`
	SavingsPct         float64              `json:"savings_pct"`
	TotalBonusUnits    int64                `json:"total_bonus_units"`
}

// PricedLineResponse is one repriced order line.
type PricedLineResponse struct {
	OrderLineID int64   `json:"order_line_id"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
	BonusUnits  int64   `json:"bonus_units"`
}

// CounterProposalResponse is the buyer revision sent back to the supplier.
type CounterProposalResponse struct {
	OrderID int64                   `json:"order_id"`
	Note    string                  `json:"note,omitempty"`
	Lines   []SuggestionLineRequest `json:"lines"`
}
