// Package table provides the small in-memory relational table that the
// loader, match engine and panel stages exchange. Cell values are plain
// interface values; nil means absent and is an expected, valid value.
package table

import (
	"fmt"
	"sort"
	"strconv"
)

// Row maps column name to cell value. Missing key and nil value both read
// as absent.
type Row map[string]any

// Table is an ordered-column collection of rows.
type Table struct {
	cols   []string
	colSet map[string]struct{}
	rows   []Row
}

// New creates an empty table with the given column order.
func New(cols ...string) *Table {
	t := &Table{colSet: make(map[string]struct{}, len(cols))}
	for _, c := range cols {
		t.addCol(c)
	}
	return t
}

func (t *Table) addCol(c string) {
	if _, ok := t.colSet[c]; ok {
		return
	}
	t.cols = append(t.cols, c)
	t.colSet[c] = struct{}{}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// HasColumn reports whether the table declares the column.
func (t *Table) HasColumn(c string) bool {
	_, ok := t.colSet[c]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Append adds a row. Columns not yet declared are added at the end of the
// column order.
func (t *Table) Append(r Row) {
	for c := range r {
		t.addCol(c)
	}
	t.rows = append(t.rows, r)
}

// Row returns the i-th row. The returned map is the live row, not a copy.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Rows returns the live row slice.
func (t *Table) Rows() []Row { return t.rows }

// Value returns the cell at (i, col); nil when the column is absent.
func (t *Table) Value(i int, col string) any { return t.rows[i][col] }

// SetColumn declares a column (if new) and assigns vals positionally.
// vals must have one entry per row.
func (t *Table) SetColumn(col string, vals []any) error {
	if len(vals) != len(t.rows) {
		return fmt.Errorf("column %s: %d values for %d rows", col, len(vals), len(t.rows))
	}
	t.addCol(col)
	for i, r := range t.rows {
		r[col] = vals[i]
	}
	return nil
}

// Select returns a new table with only the listed columns, in the listed
// order, skipping names the table does not have.
func (t *Table) Select(cols ...string) *Table {
	var keep []string
	for _, c := range cols {
		if t.HasColumn(c) {
			keep = append(keep, c)
		}
	}
	out := New(keep...)
	for _, r := range t.rows {
		nr := make(Row, len(keep))
		for _, c := range keep {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		out.rows = append(out.rows, nr)
	}
	return out
}

// Rename returns a new table with columns renamed per the mapping. Columns
// absent from the mapping keep their name.
func (t *Table) Rename(mapping map[string]string) *Table {
	cols := make([]string, len(t.cols))
	for i, c := range t.cols {
		if n, ok := mapping[c]; ok {
			cols[i] = n
		} else {
			cols[i] = c
		}
	}
	out := New(cols...)
	for _, r := range t.rows {
		nr := make(Row, len(r))
		for c, v := range r {
			if n, ok := mapping[c]; ok {
				nr[n] = v
			} else {
				nr[c] = v
			}
		}
		out.rows = append(out.rows, nr)
	}
	return out
}

// DistinctKeys returns a new table holding the distinct combinations of the
// key columns, first occurrence order preserved.
func (t *Table) DistinctKeys(keys ...string) *Table {
	out := New(keys...)
	seen := make(map[string]struct{}, len(t.rows))
	for _, r := range t.rows {
		k := keyOf(r, keys)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		nr := make(Row, len(keys))
		for _, c := range keys {
			nr[c] = r[c]
		}
		out.rows = append(out.rows, nr)
	}
	return out
}

// DedupeByKeys drops all but the last row for each key combination,
// preserving the order of last occurrences.
func (t *Table) DedupeByKeys(keys ...string) *Table {
	last := make(map[string]int, len(t.rows))
	for i, r := range t.rows {
		last[keyOf(r, keys)] = i
	}
	out := New(t.cols...)
	for i, r := range t.rows {
		if last[keyOf(r, keys)] == i {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// JoinKind selects the join discipline for LeftJoin-style merges.
type JoinKind int

const (
	// JoinLeft keeps only keys present in the receiver.
	JoinLeft JoinKind = iota
	// JoinOuter keeps the union of keys across both tables.
	JoinOuter
)

// Join merges other onto t by equality on the key columns. Non-key columns
// of other are carried over; on name collision the receiver's value wins.
// With JoinOuter, keys present only in other are appended after the
// receiver's rows, in other's order.
func (t *Table) Join(other *Table, keys []string, kind JoinKind) *Table {
	out := New(t.cols...)
	for _, c := range other.cols {
		out.addCol(c)
	}

	idx := make(map[string]Row, other.Len())
	for _, r := range other.rows {
		idx[keyOf(r, keys)] = r
	}

	matched := make(map[string]struct{}, len(idx))
	for _, r := range t.rows {
		nr := make(Row, len(r))
		for c, v := range r {
			nr[c] = v
		}
		k := keyOf(r, keys)
		if or, ok := idx[k]; ok {
			matched[k] = struct{}{}
			for c, v := range or {
				if _, exists := nr[c]; !exists {
					nr[c] = v
				}
			}
		}
		out.rows = append(out.rows, nr)
	}

	if kind == JoinOuter {
		for _, r := range other.rows {
			k := keyOf(r, keys)
			if _, ok := matched[k]; ok {
				continue
			}
			matched[k] = struct{}{}
			nr := make(Row, len(r))
			for c, v := range r {
				nr[c] = v
			}
			out.rows = append(out.rows, nr)
		}
	}
	return out
}

// SortStable sorts rows in place with a stable sort.
func (t *Table) SortStable(less func(a, b Row) bool) {
	sort.SliceStable(t.rows, func(i, j int) bool { return less(t.rows[i], t.rows[j]) })
}

func keyOf(r Row, keys []string) string {
	k := ""
	for _, c := range keys {
		k += fmt.Sprintf("%v\x00", r[c])
	}
	return k
}

// AsFloat coerces a cell value to float64. Absent values, non-numeric
// strings and unsupported types report ok=false.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case *float64:
		if x == nil {
			return 0, false
		}
		return *x, true
	case *int:
		if x == nil {
			return 0, false
		}
		return float64(*x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsString coerces a cell value to string; absent reports ok=false.
func AsString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case *string:
		if x == nil {
			return "", false
		}
		return *x, true
	default:
		return fmt.Sprintf("%v", x), true
	}
}
