package model

// Source codes. "local" is the domestic fast-fulfillment marketplace,
// "global" the international storefront.
const (
	SourceLocal  = "local"
	SourceGlobal = "global"
)

// Matching status of a unified comparison row.
const (
	StatusBoth       = "both"
	StatusLocalOnly  = "local_only"
	StatusGlobalOnly = "global_only"
)

// Matching method: which stage of the algorithm produced the link.
const (
	MethodExactKey          = "exact_key"
	MethodNameBrandFallback = "name_brand_fallback"
)

// Coarse confidence buckets. Stage-1 matches are always high; stage-2
// matches are bucketed from the name score.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Cheaper source marker for matched rows.
const (
	CheaperLocal  = "local"
	CheaperGlobal = "global"
	CheaperEqual  = "equal"
)

// RawListing is one inbound listing record as handed over by a
// data-collection adapter, before any normalization.
type RawListing struct {
	VendorItemKey    string
	CatalogID        string
	ItemID           string
	Name             string
	Brand            string
	PartNumber       string
	Barcode          string
	CurrentPrice     *float64
	OriginalPrice    *float64
	RecommendedPrice *float64
	CategoryRank     *int
	Rating           *float64
	ReviewCount      *int
	Category         *string
	Stock            *int
	StockStatus      *string
	Revenue          *float64
	UnitsSold        *int
	WinnerShare      *float64
	UnitsSold7d      *int
	ChannelShare7d   *float64
}

// CatalogRow is one product joined with its price and feature facts for a
// single snapshot, as loaded out of the store.
type CatalogRow struct {
	VendorItemKey    string
	CatalogID        *string
	ItemID           *string
	PartNumber       *string
	Barcode          *string
	Name             string
	Brand            *string
	CurrentPrice     *float64
	OriginalPrice    *float64
	RecommendedPrice *float64
	CategoryRank     *int
	Rating           *float64
	ReviewCount      *int
	Category         *string
	Stock            *int
	StockStatus      *string
	Revenue          *float64
	UnitsSold        *int
	WinnerShare      *float64
	UnitsSold7d      *int
	ChannelShare7d   *float64
}
