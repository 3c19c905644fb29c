package service

import (
	"context"

	"CatalogSync/internal/matching"
	"CatalogSync/internal/model"
	"CatalogSync/internal/table"

	"github.com/sirupsen/logrus"
)

// SnapshotViewer produces the annotated comparison table for one snapshot.
type SnapshotViewer interface {
	SnapshotView(ctx context.Context, snapshotID uint64, includeUnmatched bool) (*table.Table, error)
}

// ViewService runs the per-snapshot pipeline: load both sources, match,
// annotate prices, order.
type ViewService struct {
	loader *SnapshotLoader
	engine *matching.Engine
	dict   matching.BrandDict
	logger *logrus.Logger
}

// NewViewService creates a ViewService. dict may be empty; stage-2 matching
// then runs without brand narrowing hints.
func NewViewService(loader *SnapshotLoader, engine *matching.Engine, dict matching.BrandDict, logger *logrus.Logger) *ViewService {
	return &ViewService{
		loader: loader,
		engine: engine,
		dict:   dict,
		logger: logger,
	}
}

// SnapshotView loads snapshotID from both sources and returns the unified
// comparison table. With includeUnmatched false, global_only rows are
// dropped; local_only rows always stay, they are the action list.
func (v *ViewService) SnapshotView(ctx context.Context, snapshotID uint64, includeUnmatched bool) (*table.Table, error) {
	local, err := v.loader.Load(ctx, snapshotID, model.SourceLocal)
	if err != nil {
		return nil, err
	}
	global, err := v.loader.Load(ctx, snapshotID, model.SourceGlobal)
	if err != nil {
		return nil, err
	}

	unified := v.engine.Match(local, global, v.dict)
	if !includeUnmatched {
		unified = dropGlobalOnly(unified)
	}
	AnnotatePriceComparison(unified)
	sortDefault(unified)
	return unified, nil
}

func dropGlobalOnly(t *table.Table) *table.Table {
	out := table.New(t.Columns()...)
	for _, r := range t.Rows() {
		if r[matching.ColMatchingStatus] == model.StatusGlobalOnly {
			continue
		}
		out.Append(r)
	}
	return out
}

// sortDefault orders matched rows first, then by global units sold
// descending. Rows without a units figure sort below those with one; the
// sort is stable, so ties keep the engine's deterministic order.
func sortDefault(t *table.Table) {
	t.SortStable(func(a, b table.Row) bool {
		ra, rb := statusRank(a), statusRank(b)
		if ra != rb {
			return ra < rb
		}
		ua, okA := table.AsFloat(a["global_units_sold"])
		ub, okB := table.AsFloat(b["global_units_sold"])
		if okA != okB {
			return okA
		}
		return ua > ub
	})
}

func statusRank(r table.Row) int {
	if r[matching.ColMatchingStatus] == model.StatusBoth {
		return 0
	}
	return 1
}
