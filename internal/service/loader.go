package service

import (
	"context"
	"fmt"
	"math"

	"CatalogSync/internal/config"
	"CatalogSync/internal/matching"
	"CatalogSync/internal/model"
	"CatalogSync/internal/repository"
	"CatalogSync/internal/table"

	"github.com/sirupsen/logrus"
)

// SnapshotLoader assembles the rows of one source within a snapshot into a
// wide table with local_/global_ prefixed columns, adding the derived
// discount rate and recomposed product URL.
type SnapshotLoader struct {
	catalog repository.CatalogRepository
	sources map[string]config.SourceConfig
	logger  *logrus.Logger
}

// NewSnapshotLoader wires a loader over the catalog repository.
func NewSnapshotLoader(catalog repository.CatalogRepository, sources map[string]config.SourceConfig, logger *logrus.Logger) *SnapshotLoader {
	return &SnapshotLoader{
		catalog: catalog,
		sources: sources,
		logger:  logger,
	}
}

// localColumns and globalColumns pin the column order so reloading the same
// snapshot yields a column-identical table.
var localColumns = []string{
	matching.ColLocalVendorID,
	matching.ColLocalCatalogID,
	"local_item_id",
	matching.ColLocalName,
	matching.ColLocalBrand,
	matching.ColLocalBarcode,
	"local_category",
	"local_price",
	"local_original_price",
	"local_discount_rate",
	"local_rank",
	"local_rating",
	"local_reviews",
	"local_url",
}

var globalColumns = []string{
	matching.ColGlobalVendorID,
	matching.ColGlobalCatalogID,
	"global_item_id",
	"global_part_number",
	matching.ColGlobalName,
	matching.ColGlobalBrand,
	matching.ColGlobalBarcode,
	"global_category",
	"global_price",
	"global_original_price",
	"global_recommended_price",
	"global_discount_rate",
	"global_stock",
	"global_stock_status",
	"global_revenue",
	"global_units_sold",
	"global_winner_share",
	"global_units_sold_7d",
	"global_channel_share_7d",
	"global_url",
}

// Load reads every row stored for (snapshotID, source). A snapshot with no
// rows yields an empty table, not an error.
func (l *SnapshotLoader) Load(ctx context.Context, snapshotID uint64, source string) (*table.Table, error) {
	rows, err := l.catalog.LoadRows(ctx, snapshotID, source)
	if err != nil {
		return nil, fmt.Errorf("load %s rows for snapshot %d: %w", source, snapshotID, err)
	}

	cols := localColumns
	prefix := "local_"
	if source == model.SourceGlobal {
		cols = globalColumns
		prefix = "global_"
	}

	t := table.New(cols...)
	urlBase := l.sources[source].ProductURLBase
	for _, row := range rows {
		t.Append(l.buildRow(prefix, urlBase, row))
	}

	l.logger.WithFields(logrus.Fields{
		"snapshot_id": snapshotID,
		"source":      source,
		"rows":        t.Len(),
	}).Debug("snapshot rows loaded")
	return t, nil
}

func (l *SnapshotLoader) buildRow(prefix, urlBase string, row model.CatalogRow) table.Row {
	out := table.Row{
		prefix + "vendor_id": row.VendorItemKey,
	}
	putString(out, prefix+"catalog_id", row.CatalogID)
	putString(out, prefix+"item_id", row.ItemID)
	out[prefix+"product_name"] = row.Name
	putString(out, prefix+"brand", row.Brand)
	putString(out, prefix+"barcode", row.Barcode)
	putString(out, prefix+"category", row.Category)
	putFloat(out, prefix+"price", row.CurrentPrice)
	putFloat(out, prefix+"original_price", row.OriginalPrice)
	out[prefix+"discount_rate"] = discountRate(row.CurrentPrice, row.OriginalPrice)
	out[prefix+"url"] = composeURL(urlBase, row)

	if prefix == "local_" {
		putInt(out, "local_rank", row.CategoryRank)
		putFloat(out, "local_rating", row.Rating)
		putInt(out, "local_reviews", row.ReviewCount)
		return out
	}

	putString(out, "global_part_number", row.PartNumber)
	putFloat(out, "global_recommended_price", row.RecommendedPrice)
	putInt(out, "global_stock", row.Stock)
	putString(out, "global_stock_status", row.StockStatus)
	putFloat(out, "global_revenue", row.Revenue)
	putInt(out, "global_units_sold", row.UnitsSold)
	putFloat(out, "global_winner_share", row.WinnerShare)
	putInt(out, "global_units_sold_7d", row.UnitsSold7d)
	putFloat(out, "global_channel_share_7d", row.ChannelShare7d)
	return out
}

// discountRate is (1 - price/original)*100 rounded to one decimal. Missing
// or non-positive prices produce 0.
func discountRate(price, original *float64) float64 {
	if price == nil || original == nil || *price <= 0 || *original <= 0 {
		return 0
	}
	p, o := *price, *original
	return round1((1 - p/o) * 100)
}

// composeURL rebuilds the product page address from the catalog, item and
// vendor ids. Any missing segment yields nil.
func composeURL(base string, row model.CatalogRow) any {
	if base == "" || row.CatalogID == nil || row.ItemID == nil {
		return nil
	}
	return fmt.Sprintf("%s/products/%s?itemId=%s&vendorItemId=%s",
		base, *row.CatalogID, *row.ItemID, row.VendorItemKey)
}

func putString(row table.Row, col string, v *string) {
	if v != nil {
		row[col] = *v
	}
}

func putFloat(row table.Row, col string, v *float64) {
	if v != nil {
		row[col] = *v
	}
}

func putInt(row table.Row, col string, v *int) {
	if v != nil {
		row[col] = float64(*v)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
