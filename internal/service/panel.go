package service

import (
	"fmt"
	"strings"

	"CatalogSync/internal/table"

	"github.com/sirupsen/logrus"
)

// panelKey addresses one metric column inside a panel without parsing
// column names back apart.
type panelKey struct {
	Metric string
	Label  string
}

// Panel is the wide cross-snapshot table. Columns carry one metric from one
// snapshot each, named metric__label; the index maps (metric, label) back to
// the concrete column name.
type Panel struct {
	Table  *table.Table
	Labels []string
	index  map[panelKey]string
}

// Column resolves the column name for (metric, label); ok=false when that
// metric was absent from the labelled snapshot.
func (p *Panel) Column(metric, label string) (string, bool) {
	c, ok := p.index[panelKey{Metric: metric, Label: label}]
	return c, ok
}

// SanitizeLabel strips separators that would make metric__label columns
// ambiguous or awkward: "-" and ":" are removed, spaces become underscores.
func SanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "-", "")
	label = strings.ReplaceAll(label, ":", "")
	return strings.ReplaceAll(label, " ", "_")
}

// PanelColumn names the panel column holding metric for the snapshot label.
func PanelColumn(metric, label string) string {
	return metric + "__" + SanitizeLabel(label)
}

// BuildSnapshotPanel pivots per-snapshot tables into one wide panel keyed by
// keyCols. tables[0] is the most recent snapshot; with JoinLeft the panel
// population is exactly its key set, with JoinOuter it is the union across
// all tables. Tables missing every key column or every metric column are
// skipped. Duplicate keys inside one table keep the last row.
func BuildSnapshotPanel(tables []*table.Table, labels, keyCols, metricCols []string, kind table.JoinKind, logger *logrus.Logger) (*Panel, error) {
	if len(tables) != len(labels) {
		return nil, fmt.Errorf("panel: %d tables for %d labels", len(tables), len(labels))
	}
	panel := &Panel{
		Table: table.New(keyCols...),
		index: make(map[panelKey]string),
	}
	if len(tables) == 0 {
		return panel, nil
	}

	panel.Labels = append(panel.Labels, labels...)
	if hasAll(tables[0], keyCols) {
		panel.Table = tables[0].DistinctKeys(keyCols...)
	}

	for i, t := range tables {
		if !hasAll(t, keyCols) {
			logger.WithField("label", labels[i]).Warn("panel input missing key columns, skipped")
			continue
		}
		metrics := presentMetrics(t, keyCols, metricCols)
		if len(metrics) == 0 {
			logger.WithField("label", labels[i]).Warn("panel input has none of the requested metrics, skipped")
			continue
		}

		slice := t.Select(append(append([]string{}, keyCols...), metrics...)...).
			DedupeByKeys(keyCols...)

		rename := make(map[string]string, len(metrics))
		for _, m := range metrics {
			col := PanelColumn(m, labels[i])
			rename[m] = col
			panel.index[panelKey{Metric: m, Label: labels[i]}] = col
		}
		panel.Table = panel.Table.Join(slice.Rename(rename), keyCols, kind)
	}
	return panel, nil
}

func hasAll(t *table.Table, cols []string) bool {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return false
		}
	}
	return true
}

func presentMetrics(t *table.Table, keyCols, metricCols []string) []string {
	keySet := make(map[string]struct{}, len(keyCols))
	for _, k := range keyCols {
		keySet[k] = struct{}{}
	}
	var out []string
	for _, m := range metricCols {
		if _, isKey := keySet[m]; isKey {
			continue
		}
		if t.HasColumn(m) {
			out = append(out, m)
		}
	}
	return out
}

// ComputeDelta appends one change column comparing metric between two
// snapshot labels. When either side is missing from the panel the panel is
// returned unchanged. Percentage deltas with a zero base are left absent.
func ComputeDelta(p *Panel, metric, newerLabel, olderLabel string, asPct bool) *Panel {
	newerCol, okN := p.Column(metric, newerLabel)
	olderCol, okO := p.Column(metric, olderLabel)
	if !okN || !okO {
		return p
	}

	name := metric + "_delta_" + SanitizeLabel(newerLabel) + "_" + SanitizeLabel(olderLabel)
	if asPct {
		name = metric + "_delta_pct_" + SanitizeLabel(newerLabel) + "_" + SanitizeLabel(olderLabel)
	}

	vals := make([]any, p.Table.Len())
	for i := range vals {
		row := p.Table.Row(i)
		newer, okA := table.AsFloat(row[newerCol])
		older, okB := table.AsFloat(row[olderCol])
		if !okA || !okB {
			continue
		}
		if asPct {
			if older == 0 {
				continue
			}
			vals[i] = round1((newer - older) / older * 100)
		} else {
			vals[i] = newer - older
		}
	}
	p.Table.SetColumn(name, vals)
	return p
}
