package model

import "time"

// SuggestionStatus describes the buyer's decision on a supplier suggestion.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "PENDING"
	SuggestionAccepted SuggestionStatus = "ACCEPTED"
	SuggestionRejected SuggestionStatus = "REJECTED"
)

// SupplierSuggestion is a supplier-authored proposal of quantities, discounts
// and bonuses for an order. At most one pending suggestion exists per order.
type SupplierSuggestion struct {
	ID                 int64
	OrderID            int64
	Status             SuggestionStatus
	SubmittedBy        string
	GeneralDiscountPct float64
	GeneralBonusPct    float64
	MinimumOrderValue  float64
	DeliveryLeadDays   int
	ValidUntil         *time.Time
	SupplierNote       string
	BuyerNote          string
	Lines              []SuggestionLine
	CreatedAt          time.Time
}

// SuggestionLine proposes quantity, discount and bonus for one order line.
type SuggestionLine struct {
	ID           int64
	SuggestionID int64
	OrderLineID  int64
	Quantity     float64
	DiscountPct  float64
	BonusPct     float64
}

// CounterProposalLine is a buyer revision of a single suggestion line.
type CounterProposalLine struct {
	OrderLineID int64
	Quantity    float64
	DiscountPct float64
	BonusPct    float64
}

// CounterProposal is a transient, buyer-authored round sent back to the
// supplier. It is never persisted as its own entity; the supplier answers it
// with a fresh SupplierSuggestion.
type CounterProposal struct {
	OrderID int64
	Lines   []CounterProposalLine
	Note    string
}

// BuildCounterProposal copies quantity, discount and bonus from the active
// suggestion's lines and applies the buyer's overrides keyed by order line id.
func BuildCounterProposal(s *SupplierSuggestion, overrides map[int64]CounterProposalLine, note string) CounterProposal {
	proposal := CounterProposal{OrderID: s.OrderID, Note: note, Lines: make([]CounterProposalLine, 0, len(s.Lines))}
	for _, line := range s.Lines {
		next := CounterProposalLine{
			OrderLineID: line.OrderLineID,
			Quantity:    line.Quantity,
			DiscountPct: line.DiscountPct,
			BonusPct:    line.BonusPct,
		}
		if override, ok := overrides[line.OrderLineID]; ok {
			next.Quantity = override.Quantity
			next.DiscountPct = override.DiscountPct
			next.BonusPct = override.BonusPct
		}
		proposal.Lines = append(proposal.Lines, next)
	}
	return proposal
}
