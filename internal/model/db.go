package model

import (
	"time"

	"gorm.io/datatypes"
)

// Snapshot is one immutable point-in-time capture run. Rows are append-only:
// created once per capture, never mutated afterwards.
type Snapshot struct {
	ID           uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	SnapshotDate time.Time      `gorm:"column:snapshot_date;type:date;not null;index:idx_snapshots_date,sort:desc"`
	BatchID      string         `gorm:"column:batch_id;type:varchar(64)"`
	SourceFiles  datatypes.JSON `gorm:"column:source_files;type:jsonb"`
	CategoryURLs datatypes.JSON `gorm:"column:category_urls;type:jsonb"`
	CreatedAt    time.Time      `gorm:"column:created_at;type:timestamp;default:now()"`
}

// Product is a source-scoped catalog entry keyed by the vendor item key.
// Fields are filled but never overwritten with null: a later load may add a
// barcode that was missing, it must not erase one already present.
type Product struct {
	VendorItemKey string    `gorm:"column:vendor_item_key;type:varchar(64);primaryKey"`
	Source        string    `gorm:"column:source;type:varchar(16);not null;index"`
	CatalogID     *string   `gorm:"column:catalog_id;type:varchar(64)"`
	ItemID        *string   `gorm:"column:item_id;type:varchar(64)"`
	PartNumber    *string   `gorm:"column:part_number;type:varchar(64)"`
	Barcode       *string   `gorm:"column:barcode;type:varchar(12);index"`
	Name          string    `gorm:"column:name;type:varchar(512);not null"`
	Brand         *string   `gorm:"column:brand;type:varchar(256)"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt     time.Time `gorm:"column:updated_at;type:timestamp;default:now()"`
}

// PriceFact holds one source's price fields for one product at one snapshot.
type PriceFact struct {
	SnapshotID       uint64   `gorm:"column:snapshot_id;type:bigint;primaryKey"`
	VendorItemKey    string   `gorm:"column:vendor_item_key;type:varchar(64);primaryKey"`
	CurrentPrice     *float64 `gorm:"column:current_price;type:numeric(14,2)"`
	OriginalPrice    *float64 `gorm:"column:original_price;type:numeric(14,2)"`
	RecommendedPrice *float64 `gorm:"column:recommended_price;type:numeric(14,2)"`
}

// FeatureFact holds the non-price attributes that vary per snapshot.
type FeatureFact struct {
	SnapshotID     uint64   `gorm:"column:snapshot_id;type:bigint;primaryKey"`
	VendorItemKey  string   `gorm:"column:vendor_item_key;type:varchar(64);primaryKey"`
	CategoryRank   *int     `gorm:"column:category_rank;type:int"`
	Rating         *float64 `gorm:"column:rating;type:numeric(4,2)"`
	ReviewCount    *int     `gorm:"column:review_count;type:int"`
	Category       *string  `gorm:"column:category;type:varchar(256)"`
	Stock          *int     `gorm:"column:stock;type:int"`
	StockStatus    *string  `gorm:"column:stock_status;type:varchar(32)"`
	Revenue        *float64 `gorm:"column:revenue;type:numeric(16,2)"`
	UnitsSold      *int     `gorm:"column:units_sold;type:int"`
	WinnerShare    *float64 `gorm:"column:winner_share;type:numeric(6,2)"`
	UnitsSold7d    *int     `gorm:"column:units_sold_7d;type:int"`
	ChannelShare7d *float64 `gorm:"column:channel_share_7d;type:numeric(6,2)"`
}

func (Snapshot) TableName() string    { return "snapshots" }
func (Product) TableName() string     { return "products" }
func (PriceFact) TableName() string   { return "price_facts" }
func (FeatureFact) TableName() string { return "feature_facts" }
