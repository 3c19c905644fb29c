package matching

import (
	"github.com/sirupsen/logrus"

	"CatalogSync/internal/model"
	"CatalogSync/internal/table"
)

// Column names the engine reads from the per-source loads and writes on
// the unified table.
const (
	ColLocalVendorID   = "local_vendor_id"
	ColLocalName       = "local_product_name"
	ColLocalBrand      = "local_brand"
	ColLocalBarcode    = "local_barcode"
	ColLocalCatalogID  = "local_catalog_id"
	ColGlobalVendorID  = "global_vendor_id"
	ColGlobalName      = "global_product_name"
	ColGlobalBrand     = "global_brand"
	ColGlobalBarcode   = "global_barcode"
	ColGlobalCatalogID = "global_catalog_id"
	ColMatchingStatus  = "matching_status"
	ColMatchingMethod  = "matching_method"
	ColMatchingConf    = "matching_confidence"
	ColNameMatchScore  = "name_match_score"
	ColProductKey      = "product_key"
)

// Stage-2 confidence bucketing: scores at or above mediumScoreFloor are
// medium, the rest low. Stage-1 matches are always high.
const mediumScoreFloor = 0.6

// EngineConfig carries the stage-2 acceptance policy.
type EngineConfig struct {
	NameScoreThreshold float64
	NameScoreMargin    float64
}

// Engine links listings across the two sources: stage 1 joins on the
// normalized barcode, stage 2 falls back to brand-narrowed name similarity
// for rows stage 1 left behind.
type Engine struct {
	cfg    EngineConfig
	logger *logrus.Logger
}

func NewEngine(cfg EngineConfig, logger *logrus.Logger) *Engine {
	return &Engine{cfg: cfg, logger: logger}
}

// Match produces the unified comparison table from the two per-source
// loads. Every input row lands in the output exactly once, classified as
// both, local_only or global_only. Given identical inputs and dictionary
// the result is identical: candidates are scanned in input order and
// stage-2 ties are rejected by the margin rule, never broken by order.
func (e *Engine) Match(local, global *table.Table, dict BrandDict) *table.Table {
	// declare the unified column order up front so reruns produce
	// byte-identical output
	cols := append(local.Columns(), global.Columns()...)
	cols = append(cols, ColMatchingStatus, ColMatchingMethod, ColMatchingConf, ColNameMatchScore, ColProductKey)
	out := table.New(cols...)

	// stage-1 index: first occurrence per distinct barcode
	byBarcode := make(map[string]table.Row)
	for _, r := range global.Rows() {
		bc, ok := table.AsString(r[ColGlobalBarcode])
		if !ok || bc == "" {
			continue
		}
		if _, dup := byBarcode[bc]; !dup {
			byBarcode[bc] = r
		}
	}

	// stage-2 candidate pool: normalized brand and name per global row
	type candidate struct {
		row       table.Row
		nameNorm  string
		brandNorm string
	}
	candidates := make([]candidate, 0, global.Len())
	for _, r := range global.Rows() {
		name, _ := table.AsString(r[ColGlobalName])
		brand, _ := table.AsString(r[ColGlobalBrand])
		candidates = append(candidates, candidate{
			row:       r,
			nameNorm:  NormalizeText(name),
			brandNorm: NormalizeText(brand),
		})
	}

	matchedGlobal := make(map[string]struct{})
	stage1, stage2 := 0, 0

	for _, lr := range local.Rows() {
		row := cloneRow(lr)

		// stage 1: exact key
		if bc, ok := table.AsString(lr[ColLocalBarcode]); ok && bc != "" {
			if gr, hit := byBarcode[bc]; hit {
				mergeGlobal(row, gr)
				row[ColMatchingStatus] = model.StatusBoth
				row[ColMatchingMethod] = model.MethodExactKey
				row[ColMatchingConf] = model.ConfidenceHigh
				markMatched(matchedGlobal, gr)
				stage1++
				out.Append(finishRow(row))
				continue
			}
		}

		// stage 2: brand dictionary + name similarity
		manufacturer, _ := table.AsString(lr[ColLocalBrand])
		brandNorm, known := dict[NormalizeText(manufacturer)]
		if known {
			localNorm := NormalizeText(mustString(lr[ColLocalName]))
			best, second := 0.0, 0.0
			var bestRow table.Row
			for _, c := range candidates {
				if c.brandNorm != brandNorm {
					continue
				}
				s := NameScore(localNorm, c.nameNorm, brandNorm)
				if s > best {
					second = best
					best = s
					bestRow = c.row
				} else if s > second {
					second = s
				}
			}
			if bestRow != nil && best >= e.cfg.NameScoreThreshold && best-second >= e.cfg.NameScoreMargin {
				mergeGlobal(row, bestRow)
				row[ColMatchingStatus] = model.StatusBoth
				row[ColMatchingMethod] = model.MethodNameBrandFallback
				row[ColMatchingConf] = scoreBucket(best)
				row[ColNameMatchScore] = best
				markMatched(matchedGlobal, bestRow)
				stage2++
				out.Append(finishRow(row))
				continue
			}
		}

		// no barcode and no usable dictionary entry means the row can never
		// match; that is a classification, not an error
		row[ColMatchingStatus] = model.StatusLocalOnly
		out.Append(finishRow(row))
	}

	globalOnly := 0
	for _, gr := range global.Rows() {
		vid, _ := table.AsString(gr[ColGlobalVendorID])
		if _, ok := matchedGlobal[vid]; ok {
			continue
		}
		row := cloneRow(gr)
		row[ColMatchingStatus] = model.StatusGlobalOnly
		globalOnly++
		out.Append(finishRow(row))
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"local_rows":  local.Len(),
			"global_rows": global.Len(),
			"exact_key":   stage1,
			"name_brand":  stage2,
			"global_only": globalOnly,
		}).Info("matching complete")
	}
	return out
}

func scoreBucket(score float64) string {
	if score >= mediumScoreFloor {
		return model.ConfidenceMedium
	}
	return model.ConfidenceLow
}

func cloneRow(r table.Row) table.Row {
	nr := make(table.Row, len(r)+6)
	for c, v := range r {
		nr[c] = v
	}
	return nr
}

func mergeGlobal(dst table.Row, global table.Row) {
	for c, v := range global {
		dst[c] = v
	}
}

func markMatched(set map[string]struct{}, global table.Row) {
	if vid, ok := table.AsString(global[ColGlobalVendorID]); ok {
		set[vid] = struct{}{}
	}
}

// finishRow fills the shared product key: local catalog id wins, the
// global one is the fallback for rows the local source never saw.
func finishRow(r table.Row) table.Row {
	if v, ok := table.AsString(r[ColLocalCatalogID]); ok && v != "" {
		r[ColProductKey] = v
	} else if v, ok := table.AsString(r[ColGlobalCatalogID]); ok && v != "" {
		r[ColProductKey] = v
	}
	return r
}

func mustString(v any) string {
	s, _ := table.AsString(v)
	return s
}
