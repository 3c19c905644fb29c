package repository

import (
	"context"
	"fmt"

	"CatalogSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepository writes products and per-snapshot facts and reads them
// back as joined rows. Writes use coalesce-on-write upserts: a new value
// wins only when non-null, so partial re-loads of the same snapshot enrich
// rows without erasing fields already present.
type CatalogRepository interface {
	// WriteSnapshotFacts applies one source's batch for one snapshot as a
	// single transaction: products first, then price and feature facts.
	// The snapshot must already exist and every fact row must reference a
	// vendor key present in the products batch, otherwise the whole write
	// is rejected.
	WriteSnapshotFacts(ctx context.Context, snapshotID uint64, products []model.Product, prices []model.PriceFact, features []model.FeatureFact) error
	// LoadRows reads one source's products joined with their facts for one
	// snapshot, ordered by vendor key.
	LoadRows(ctx context.Context, snapshotID uint64, source string) ([]model.CatalogRow, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) WriteSnapshotFacts(ctx context.Context, snapshotID uint64, products []model.Product, prices []model.PriceFact, features []model.FeatureFact) error {
	known := make(map[string]struct{}, len(products))
	for _, p := range products {
		known[p.VendorItemKey] = struct{}{}
	}
	for _, f := range prices {
		if _, ok := known[f.VendorItemKey]; !ok {
			return fmt.Errorf("price fact references unknown product %q", f.VendorItemKey)
		}
	}
	for _, f := range features {
		if _, ok := known[f.VendorItemKey]; !ok {
			return fmt.Errorf("feature fact references unknown product %q", f.VendorItemKey)
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Snapshot{}).Where("id = ?", snapshotID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("snapshot %d does not exist", snapshotID)
		}

		for i := range products {
			if err := upsertProduct(tx, &products[i]); err != nil {
				return err
			}
		}
		for i := range prices {
			prices[i].SnapshotID = snapshotID
			if err := upsertPriceFact(tx, &prices[i]); err != nil {
				return err
			}
		}
		for i := range features {
			features[i].SnapshotID = snapshotID
			if err := upsertFeatureFact(tx, &features[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertProduct(tx *gorm.DB, p *model.Product) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vendor_item_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"catalog_id":  gorm.Expr("COALESCE(EXCLUDED.catalog_id, products.catalog_id)"),
			"item_id":     gorm.Expr("COALESCE(EXCLUDED.item_id, products.item_id)"),
			"part_number": gorm.Expr("COALESCE(EXCLUDED.part_number, products.part_number)"),
			"barcode":     gorm.Expr("COALESCE(EXCLUDED.barcode, products.barcode)"),
			"name":        gorm.Expr("COALESCE(NULLIF(EXCLUDED.name, ''), products.name)"),
			"brand":       gorm.Expr("COALESCE(EXCLUDED.brand, products.brand)"),
			"updated_at":  gorm.Expr("now()"),
		}),
	}).Create(p).Error
}

func upsertPriceFact(tx *gorm.DB, f *model.PriceFact) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "snapshot_id"}, {Name: "vendor_item_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"current_price":     gorm.Expr("COALESCE(EXCLUDED.current_price, price_facts.current_price)"),
			"original_price":    gorm.Expr("COALESCE(EXCLUDED.original_price, price_facts.original_price)"),
			"recommended_price": gorm.Expr("COALESCE(EXCLUDED.recommended_price, price_facts.recommended_price)"),
		}),
	}).Create(f).Error
}

func upsertFeatureFact(tx *gorm.DB, f *model.FeatureFact) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "snapshot_id"}, {Name: "vendor_item_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"category_rank":    gorm.Expr("COALESCE(EXCLUDED.category_rank, feature_facts.category_rank)"),
			"rating":           gorm.Expr("COALESCE(EXCLUDED.rating, feature_facts.rating)"),
			"review_count":     gorm.Expr("COALESCE(EXCLUDED.review_count, feature_facts.review_count)"),
			"category":         gorm.Expr("COALESCE(EXCLUDED.category, feature_facts.category)"),
			"stock":            gorm.Expr("COALESCE(EXCLUDED.stock, feature_facts.stock)"),
			"stock_status":     gorm.Expr("COALESCE(EXCLUDED.stock_status, feature_facts.stock_status)"),
			"revenue":          gorm.Expr("COALESCE(EXCLUDED.revenue, feature_facts.revenue)"),
			"units_sold":       gorm.Expr("COALESCE(EXCLUDED.units_sold, feature_facts.units_sold)"),
			"winner_share":     gorm.Expr("COALESCE(EXCLUDED.winner_share, feature_facts.winner_share)"),
			"units_sold_7d":    gorm.Expr("COALESCE(EXCLUDED.units_sold_7d, feature_facts.units_sold_7d)"),
			"channel_share_7d": gorm.Expr("COALESCE(EXCLUDED.channel_share_7d, feature_facts.channel_share_7d)"),
		}),
	}).Create(f).Error
}

func (r *catalogRepository) LoadRows(ctx context.Context, snapshotID uint64, source string) ([]model.CatalogRow, error) {
	var rows []model.CatalogRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.vendor_item_key, p.catalog_id, p.item_id, p.part_number,
			p.barcode, p.name, p.brand,
			pr.current_price, pr.original_price, pr.recommended_price,
			f.category_rank, f.rating, f.review_count, f.category,
			f.stock, f.stock_status, f.revenue, f.units_sold,
			f.winner_share, f.units_sold_7d, f.channel_share_7d
		FROM products p
		LEFT JOIN price_facts pr
			ON pr.vendor_item_key = p.vendor_item_key AND pr.snapshot_id = ?
		LEFT JOIN feature_facts f
			ON f.vendor_item_key = p.vendor_item_key AND f.snapshot_id = ?
		WHERE p.source = ?
			AND (pr.vendor_item_key IS NOT NULL OR f.vendor_item_key IS NOT NULL)
		ORDER BY p.vendor_item_key`,
		snapshotID, snapshotID, source,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
