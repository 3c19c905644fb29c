package service

import (
	"CatalogSync/internal/model"
	"CatalogSync/internal/table"
)

// Price comparison columns written onto the unified table. Each one is nil
// when its preconditions fail, never a fabricated zero.
const (
	ColPriceDiff             = "price_diff"
	ColPriceDiffPct          = "price_diff_pct"
	ColCheaperSource         = "cheaper_source"
	ColBreakevenDiscountRate = "breakeven_discount_rate"
	ColRecommendedDiscount   = "recommended_discount_rate"
	ColRequestedDiscount     = "requested_discount_rate"
)

// AnnotatePriceComparison appends the price comparison columns to a matched
// table in place. price_diff is global minus local, so a negative diff means
// the global listing is cheaper.
func AnnotatePriceComparison(t *table.Table) {
	n := t.Len()
	diffs := make([]any, n)
	pcts := make([]any, n)
	cheaper := make([]any, n)
	breakeven := make([]any, n)
	recommended := make([]any, n)
	requested := make([]any, n)

	for i := 0; i < n; i++ {
		row := t.Row(i)
		local, okL := table.AsFloat(row["local_price"])
		global, okG := table.AsFloat(row["global_price"])
		globalOrig, okGO := table.AsFloat(row["global_original_price"])
		rec, okR := table.AsFloat(row["global_recommended_price"])

		// a zero price is a data defect, not a free listing: no diff,
		// direction or rate may be derived from it
		if okL && okG && local > 0 && global > 0 {
			diff := global - local
			diffs[i] = diff
			switch {
			case diff > 0:
				cheaper[i] = model.CheaperLocal
			case diff < 0:
				cheaper[i] = model.CheaperGlobal
			default:
				cheaper[i] = model.CheaperEqual
			}
			pcts[i] = round1(diff / local * 100)
			breakeven[i] = round1((global - local) / global * 100)
		}
		if okG && okR && global > 0 && rec > 0 {
			recommended[i] = round1((global - rec) / global * 100)
		}
		if okGO && okR && globalOrig > 0 && rec > 0 {
			requested[i] = round1((globalOrig - rec) / globalOrig * 100)
		}
	}

	t.SetColumn(ColPriceDiff, diffs)
	t.SetColumn(ColPriceDiffPct, pcts)
	t.SetColumn(ColCheaperSource, cheaper)
	t.SetColumn(ColBreakevenDiscountRate, breakeven)
	t.SetColumn(ColRecommendedDiscount, recommended)
	t.SetColumn(ColRequestedDiscount, requested)
}
