package service

import "CatalogSync/internal/matching"

// Metric groups name the column bundles a caller can request instead of
// spelling out columns. Group order inside a view follows the order here.
const (
	GroupCore                 = "core"
	GroupAction               = "action"
	GroupPerformanceSnapshot  = "performance_snapshot"
	GroupPerformanceRolling7d = "performance_rolling_7d"
	GroupMeta                 = "meta"
	GroupAll                  = "all"
)

var metricGroups = map[string][]string{
	GroupCore: {
		matching.ColMatchingStatus,
		matching.ColMatchingMethod,
		matching.ColMatchingConf,
		matching.ColProductKey,
		"global_part_number",
	},
	GroupAction: {
		ColRequestedDiscount,
		ColRecommendedDiscount,
		ColBreakevenDiscountRate,
		ColCheaperSource,
		ColPriceDiff,
		ColPriceDiffPct,
	},
	GroupPerformanceSnapshot: {
		"global_price",
		"global_original_price",
		"global_recommended_price",
		"global_stock",
		"global_stock_status",
		"global_revenue",
		"global_units_sold",
		"global_winner_share",
		"local_price",
		"local_original_price",
		"local_discount_rate",
		"local_rank",
	},
	GroupPerformanceRolling7d: {
		"global_units_sold_7d",
		"global_channel_share_7d",
	},
	GroupMeta: {
		matching.ColLocalName,
		matching.ColGlobalName,
		"local_category",
		"global_category",
		"local_url",
		"global_url",
		matching.ColLocalVendorID,
		matching.ColGlobalVendorID,
		matching.ColLocalCatalogID,
		matching.ColGlobalCatalogID,
		"local_item_id",
		"global_item_id",
		"local_rating",
		"local_reviews",
	},
}

// groupOrder fixes the expansion order of "all" and of multi-group requests.
var groupOrder = []string{
	GroupCore,
	GroupAction,
	GroupPerformanceSnapshot,
	GroupPerformanceRolling7d,
	GroupMeta,
}

// MetricGroup returns the columns of one named group; ok=false for unknown
// names. "all" expands to every group in catalog order.
func MetricGroup(name string) ([]string, bool) {
	if name == GroupAll {
		return ResolveGroups(groupOrder, nil), true
	}
	cols, ok := metricGroups[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out, true
}

// ResolveGroups expands group names into a deduplicated column list, first
// occurrence order preserved. Unknown group names are collected into unknown
// rather than failing the whole request.
func ResolveGroups(names []string, unknown *[]string) []string {
	var out []string
	seen := make(map[string]struct{})
	appendCols := func(cols []string) {
		for _, c := range cols {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}

	for _, name := range names {
		if name == GroupAll {
			for _, g := range groupOrder {
				appendCols(metricGroups[g])
			}
			continue
		}
		cols, ok := metricGroups[name]
		if !ok {
			if unknown != nil {
				*unknown = append(*unknown, name)
			}
			continue
		}
		appendCols(cols)
	}
	return out
}
