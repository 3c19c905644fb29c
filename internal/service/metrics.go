package service

import (
	"context"
	"fmt"

	"CatalogSync/internal/matching"
	"CatalogSync/internal/model"
	"CatalogSync/internal/repository"
	"CatalogSync/internal/table"

	"github.com/sirupsen/logrus"
)

// panelKeyCols keys the cross-snapshot panel. The global vendor id survives
// across snapshots, unlike row position.
var panelKeyCols = []string{matching.ColGlobalVendorID}

// ViewOptions selects what GetView returns. Zero value means: latest
// snapshot, all metric groups, matched rows only.
type ViewOptions struct {
	// Groups are metric group names; empty means "all". Unknown names are
	// logged and skipped, they do not fail the request.
	Groups []string
	// SnapshotIDs pins the snapshots, newest first. Empty falls back to the
	// NLatest most recent.
	SnapshotIDs []uint64
	// NLatest is used when SnapshotIDs is empty; values below 1 mean 1.
	NLatest int
	// IncludeUnmatched keeps global_only rows in single-snapshot views.
	IncludeUnmatched bool
	// WithDeltas appends change columns to multi-snapshot panels.
	WithDeltas bool
	// DeltaMetrics limits delta computation; empty means the
	// performance_snapshot group.
	DeltaMetrics []string
	// DeltasAsPct switches deltas from absolute to percent-of-older.
	DeltasAsPct bool
}

// MetricsManager is the façade the HTTP layer talks to. One snapshot gives
// the annotated comparison view projected onto the requested groups; several
// snapshots give the wide panel with optional deltas.
type MetricsManager struct {
	views     SnapshotViewer
	snapshots repository.SnapshotRepository
	logger    *logrus.Logger
}

// NewMetricsManager creates a MetricsManager.
func NewMetricsManager(views SnapshotViewer, snapshots repository.SnapshotRepository, logger *logrus.Logger) *MetricsManager {
	return &MetricsManager{
		views:     views,
		snapshots: snapshots,
		logger:    logger,
	}
}

// GetView resolves the requested snapshots and metric groups and returns the
// result table.
func (m *MetricsManager) GetView(ctx context.Context, opts ViewOptions) (*table.Table, error) {
	groups := opts.Groups
	if len(groups) == 0 {
		groups = []string{GroupAll}
	}
	var unknown []string
	cols := ResolveGroups(groups, &unknown)
	if len(unknown) > 0 {
		m.logger.WithField("groups", unknown).Warn("unknown metric groups skipped")
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("no known metric groups in %v", groups)
	}

	snaps, err := m.resolveSnapshots(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 1 {
		view, err := m.views.SnapshotView(ctx, snaps[0].ID, opts.IncludeUnmatched)
		if err != nil {
			return nil, err
		}
		return view.Select(cols...), nil
	}
	return m.panelView(ctx, snaps, cols, opts)
}

// resolveSnapshots returns the snapshots to serve, newest first.
func (m *MetricsManager) resolveSnapshots(ctx context.Context, opts ViewOptions) ([]*model.Snapshot, error) {
	if len(opts.SnapshotIDs) > 0 {
		out := make([]*model.Snapshot, 0, len(opts.SnapshotIDs))
		for _, id := range opts.SnapshotIDs {
			s, err := m.snapshots.GetSnapshot(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("resolve snapshot %d: %w", id, err)
			}
			out = append(out, s)
		}
		return out, nil
	}

	n := opts.NLatest
	if n <= 1 {
		id, err := m.snapshots.LatestSnapshotID(ctx)
		if err != nil {
			return nil, fmt.Errorf("latest snapshot: %w", err)
		}
		s, err := m.snapshots.GetSnapshot(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve snapshot %d: %w", id, err)
		}
		return []*model.Snapshot{s}, nil
	}
	snaps, err := m.snapshots.ListSnapshots(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("no snapshots recorded")
	}
	return snaps, nil
}

// panelView pivots several snapshot views into the wide panel. The panel is
// keyed by the global vendor id, so it covers matched and global_only rows;
// unmatched inclusion is forced on here and local_only rows drop out with
// the key join.
func (m *MetricsManager) panelView(ctx context.Context, snaps []*model.Snapshot, cols []string, opts ViewOptions) (*table.Table, error) {
	tables := make([]*table.Table, 0, len(snaps))
	labels := make([]string, 0, len(snaps))
	for _, s := range snaps {
		view, err := m.views.SnapshotView(ctx, s.ID, true)
		if err != nil {
			return nil, fmt.Errorf("snapshot %d view: %w", s.ID, err)
		}
		tables = append(tables, view)
		labels = append(labels, s.SnapshotDate.Format("2006-01-02"))
	}

	panel, err := BuildSnapshotPanel(tables, labels, panelKeyCols, cols, table.JoinLeft, m.logger)
	if err != nil {
		return nil, err
	}

	if opts.WithDeltas && len(labels) >= 2 {
		metrics := opts.DeltaMetrics
		if len(metrics) == 0 {
			metrics, _ = MetricGroup(GroupPerformanceSnapshot)
		}
		for _, metric := range metrics {
			panel = ComputeDelta(panel, metric, labels[0], labels[1], opts.DeltasAsPct)
		}
	}
	return panel.Table, nil
}
