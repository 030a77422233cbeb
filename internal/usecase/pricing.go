package usecase

import (
	"math"

	"github.com/buyside/procure/internal/domain/model"
)

// Recalculate applies a suggestion's per-line quantities, discounts and
// bonuses to the original lines and the order-level threshold discount on
// top. Lines the suggestion does not mention keep their original terms.
// Bonus units are granted free of charge and never monetized.
func Recalculate(lines []model.OrderLine, suggestion *model.SupplierSuggestion) model.Recalculation {
	byLine := make(map[int64]model.SuggestionLine, len(suggestion.Lines))
	for _, sl := range suggestion.Lines {
		byLine[sl.OrderLineID] = sl
	}

	result := model.Recalculation{Lines: make([]model.PricedLine, 0, len(lines))}

	for _, line := range lines {
		quantity := line.Quantity
		discountPct := 0.0
		bonusPct := 0.0
		if sl, ok := byLine[line.ID]; ok {
			quantity = sl.Quantity
			discountPct = sl.DiscountPct
			bonusPct = sl.BonusPct
		}
		if bonusPct == 0 {
			bonusPct = suggestion.GeneralBonusPct
		}

		effectivePrice := line.UnitPrice * (1 - discountPct/100)
		originalSubtotal := line.UnitPrice * line.Quantity
		subtotal := effectivePrice * quantity

		bonusUnits := int64(math.Floor(quantity * bonusPct / 100))
		if bonusUnits < 0 {
			bonusUnits = 0
		}

		result.Lines = append(result.Lines, model.PricedLine{
			OrderLineID:      line.ID,
			Quantity:         quantity,
			UnitPrice:        effectivePrice,
			Subtotal:         subtotal,
			OriginalSubtotal: originalSubtotal,
			BonusUnits:       bonusUnits,
		})

		result.OriginalSubtotal += originalSubtotal
		result.PreThresholdTotal += subtotal
		result.TotalBonusUnits += bonusUnits
	}

	if suggestion.MinimumOrderValue > 0 && result.PreThresholdTotal >= suggestion.MinimumOrderValue {
		result.OrderDiscountValue = result.PreThresholdTotal * suggestion.GeneralDiscountPct / 100
	}
	result.FinalTotal = result.PreThresholdTotal - result.OrderDiscountValue

	result.Savings = result.OriginalSubtotal - result.FinalTotal
	if result.OriginalSubtotal > 0 {
		result.SavingsPct = result.Savings / result.OriginalSubtotal * 100
	}

	return result
}
