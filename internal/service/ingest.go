package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"CatalogSync/internal/matching"
	"CatalogSync/internal/model"
	"CatalogSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// RecordError reports one rejected inbound record. Rejections are returned
// to the caller, not silently dropped.
type RecordError struct {
	Index  int
	Key    string
	Reason string
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d (%q): %s", e.Index, e.Key, e.Reason)
}

// IngestResult summarizes one batch write.
type IngestResult struct {
	SnapshotID uint64
	Source     string
	Accepted   int
	Rejected   []RecordError
}

// Ingestor is the write boundary: it opens snapshots and applies per-source
// listing batches to the store. Each (snapshot, source) batch lands in one
// transaction, so readers never see a half-applied snapshot.
type Ingestor struct {
	snapshots repository.SnapshotRepository
	catalog   repository.CatalogRepository
	logger    *logrus.Logger
}

// NewIngestor creates an Ingestor.
func NewIngestor(snapshots repository.SnapshotRepository, catalog repository.CatalogRepository, logger *logrus.Logger) *Ingestor {
	return &Ingestor{
		snapshots: snapshots,
		catalog:   catalog,
		logger:    logger,
	}
}

// BeginSnapshot appends a new snapshot row for the capture date, tagging it
// with a fresh batch id and the provenance of the inbound data.
func (ing *Ingestor) BeginSnapshot(ctx context.Context, date time.Time, sourceFiles, categoryURLs []string) (*model.Snapshot, error) {
	files, err := json.Marshal(sourceFiles)
	if err != nil {
		return nil, fmt.Errorf("marshal source files: %w", err)
	}
	urls, err := json.Marshal(categoryURLs)
	if err != nil {
		return nil, fmt.Errorf("marshal category urls: %w", err)
	}

	snap := &model.Snapshot{
		SnapshotDate: date,
		BatchID:      uuid.NewString(),
		SourceFiles:  datatypes.JSON(files),
		CategoryURLs: datatypes.JSON(urls),
	}
	if err := ing.snapshots.CreateSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}

	ing.logger.WithFields(logrus.Fields{
		"snapshot_id":   snap.ID,
		"snapshot_date": date.Format("2006-01-02"),
		"batch_id":      snap.BatchID,
	}).Info("snapshot opened")
	return snap, nil
}

// IngestBatch validates and writes one source's listings for a snapshot.
// Records missing the vendor key or display name are rejected individually;
// the rest of the batch still commits. Barcodes are normalized here, at the
// edge, so the store only ever holds the 12-digit canonical form.
func (ing *Ingestor) IngestBatch(ctx context.Context, snapshotID uint64, source string, listings []model.RawListing) (*IngestResult, error) {
	if source != model.SourceLocal && source != model.SourceGlobal {
		return nil, fmt.Errorf("unknown source %q", source)
	}

	res := &IngestResult{SnapshotID: snapshotID, Source: source}
	products := make([]model.Product, 0, len(listings))
	prices := make([]model.PriceFact, 0, len(listings))
	features := make([]model.FeatureFact, 0, len(listings))

	for i, raw := range listings {
		if reason := validateListing(raw); reason != "" {
			res.Rejected = append(res.Rejected, RecordError{Index: i, Key: raw.VendorItemKey, Reason: reason})
			continue
		}
		products = append(products, buildProduct(source, raw))
		prices = append(prices, model.PriceFact{
			SnapshotID:       snapshotID,
			VendorItemKey:    raw.VendorItemKey,
			CurrentPrice:     raw.CurrentPrice,
			OriginalPrice:    raw.OriginalPrice,
			RecommendedPrice: raw.RecommendedPrice,
		})
		features = append(features, model.FeatureFact{
			SnapshotID:     snapshotID,
			VendorItemKey:  raw.VendorItemKey,
			CategoryRank:   raw.CategoryRank,
			Rating:         raw.Rating,
			ReviewCount:    raw.ReviewCount,
			Category:       raw.Category,
			Stock:          raw.Stock,
			StockStatus:    raw.StockStatus,
			Revenue:        raw.Revenue,
			UnitsSold:      raw.UnitsSold,
			WinnerShare:    raw.WinnerShare,
			UnitsSold7d:    raw.UnitsSold7d,
			ChannelShare7d: raw.ChannelShare7d,
		})
	}

	if len(products) > 0 {
		if err := ing.catalog.WriteSnapshotFacts(ctx, snapshotID, products, prices, features); err != nil {
			return nil, fmt.Errorf("write %s batch for snapshot %d: %w", source, snapshotID, err)
		}
	}
	res.Accepted = len(products)

	ing.logger.WithFields(logrus.Fields{
		"snapshot_id": snapshotID,
		"source":      source,
		"accepted":    res.Accepted,
		"rejected":    len(res.Rejected),
	}).Info("batch ingested")
	for _, re := range res.Rejected {
		ing.logger.WithFields(logrus.Fields{
			"snapshot_id": snapshotID,
			"source":      source,
			"index":       re.Index,
			"key":         re.Key,
		}).Warn(re.Reason)
	}
	return res, nil
}

func validateListing(raw model.RawListing) string {
	if raw.VendorItemKey == "" {
		return "missing vendor item key"
	}
	if raw.Name == "" {
		return "missing product name"
	}
	return ""
}

func buildProduct(source string, raw model.RawListing) model.Product {
	p := model.Product{
		VendorItemKey: raw.VendorItemKey,
		Source:        source,
		Name:          raw.Name,
	}
	p.CatalogID = optional(raw.CatalogID)
	p.ItemID = optional(raw.ItemID)
	p.PartNumber = optional(raw.PartNumber)
	p.Brand = optional(raw.Brand)
	if code, ok := matching.NormalizeBarcode(raw.Barcode); ok {
		p.Barcode = &code
	}
	return p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// LoadBrandSamples reads aggregated (manufacturer, brand, count, share)
// rows from a CSV file, one observation sample per line, header optional.
func LoadBrandSamples(path string) ([]matching.BrandSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open brand samples: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read brand samples: %w", err)
	}

	var out []matching.BrandSample
	for i, rec := range records {
		count, errC := strconv.Atoi(rec[2])
		share, errS := strconv.ParseFloat(rec[3], 64)
		if errC != nil || errS != nil {
			if i == 0 {
				continue // header line
			}
			return nil, fmt.Errorf("brand samples line %d: bad count/share", i+1)
		}
		out = append(out, matching.BrandSample{
			Manufacturer: rec[0],
			Brand:        rec[1],
			Count:        count,
			Share:        share,
		})
	}
	return out, nil
}
