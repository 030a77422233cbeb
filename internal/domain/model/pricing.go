package model

// PricedLine is the recomputed figure for one order line under a suggestion.
type PricedLine struct {
	OrderLineID      int64
	Quantity         float64
	UnitPrice        float64
	Subtotal         float64
	OriginalSubtotal float64
	BonusUnits       int64
}

// Recalculation is the full monetary outcome of applying a suggestion (or a
// counter-proposal round) to the original order lines.
type Recalculation struct {
	Lines              []PricedLine
	OriginalSubtotal   float64
	PreThresholdTotal  float64
	OrderDiscountValue float64
	FinalTotal         float64
	Savings            float64
	SavingsPct         float64
	TotalBonusUnits    int64
}

// Revisions converts the recalculation into the line rewrites persisted when
// the suggestion is accepted.
func (r Recalculation) Revisions() []LineRevision {
	revisions := make([]LineRevision, 0, len(r.Lines))
	for _, line := range r.Lines {
		revisions = append(revisions, LineRevision{
			LineID:    line.OrderLineID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return revisions
}

// Totals returns the order-level monetary fields implied by the recalculation.
func (r Recalculation) Totals() OrderTotals {
	return OrderTotals{
		ProductsSubtotal: r.PreThresholdTotal,
		Discount:         r.OrderDiscountValue,
		Total:            r.FinalTotal,
	}
}
