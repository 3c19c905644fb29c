package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendDeclaresUnseenColumns(t *testing.T) {
	tbl := New("a")
	tbl.Append(Row{"a": 1, "b": 2})
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
	assert.True(t, tbl.HasColumn("b"))
	assert.False(t, tbl.HasColumn("c"))
}

func TestSetColumn(t *testing.T) {
	tbl := New("a")
	tbl.Append(Row{"a": 1})
	tbl.Append(Row{"a": 2})

	require.NoError(t, tbl.SetColumn("b", []any{10, nil}))
	assert.Equal(t, 10, tbl.Value(0, "b"))
	assert.Nil(t, tbl.Value(1, "b"))

	assert.Error(t, tbl.SetColumn("c", []any{1}))
}

func TestSelectSkipsMissingColumns(t *testing.T) {
	tbl := New("a", "b")
	tbl.Append(Row{"a": 1, "b": 2})

	sel := tbl.Select("b", "nope", "a")
	assert.Equal(t, []string{"b", "a"}, sel.Columns())
	assert.Equal(t, 2, sel.Value(0, "b"))
}

func TestRename(t *testing.T) {
	tbl := New("a", "b")
	tbl.Append(Row{"a": 1, "b": 2})

	ren := tbl.Rename(map[string]string{"b": "c"})
	assert.Equal(t, []string{"a", "c"}, ren.Columns())
	assert.Equal(t, 2, ren.Value(0, "c"))
	assert.Nil(t, ren.Value(0, "b"))
}

func TestDistinctKeys(t *testing.T) {
	tbl := New("k", "v")
	tbl.Append(Row{"k": "x", "v": 1})
	tbl.Append(Row{"k": "y", "v": 2})
	tbl.Append(Row{"k": "x", "v": 3})

	keys := tbl.DistinctKeys("k")
	require.Equal(t, 2, keys.Len())
	assert.Equal(t, "x", keys.Value(0, "k"))
	assert.Equal(t, "y", keys.Value(1, "k"))
	assert.Equal(t, []string{"k"}, keys.Columns())
}

func TestDedupeByKeysKeepsLast(t *testing.T) {
	tbl := New("k", "v")
	tbl.Append(Row{"k": "x", "v": 1})
	tbl.Append(Row{"k": "y", "v": 2})
	tbl.Append(Row{"k": "x", "v": 3})

	dd := tbl.DedupeByKeys("k")
	require.Equal(t, 2, dd.Len())
	assert.Equal(t, 2, dd.Value(0, "v"))
	assert.Equal(t, 3, dd.Value(1, "v"))
}

func TestJoin(t *testing.T) {
	left := New("k", "a")
	left.Append(Row{"k": "x", "a": 1})
	left.Append(Row{"k": "y", "a": 2})

	right := New("k", "b")
	right.Append(Row{"k": "x", "b": 10})
	right.Append(Row{"k": "z", "b": 30})

	t.Run("left join keeps the receiver's keys", func(t *testing.T) {
		out := left.Join(right, []string{"k"}, JoinLeft)
		require.Equal(t, 2, out.Len())
		assert.Equal(t, []string{"k", "a", "b"}, out.Columns())
		assert.Equal(t, 10, out.Value(0, "b"))
		assert.Nil(t, out.Value(1, "b"))
	})

	t.Run("outer join appends unmatched right keys", func(t *testing.T) {
		out := left.Join(right, []string{"k"}, JoinOuter)
		require.Equal(t, 3, out.Len())
		assert.Equal(t, "z", out.Value(2, "k"))
		assert.Equal(t, 30, out.Value(2, "b"))
		assert.Nil(t, out.Value(2, "a"))
	})

	t.Run("receiver wins column collisions", func(t *testing.T) {
		other := New("k", "a")
		other.Append(Row{"k": "x", "a": 99})
		out := left.Join(other, []string{"k"}, JoinLeft)
		assert.Equal(t, 1, out.Value(0, "a"))
	})
}

func TestSortStable(t *testing.T) {
	tbl := New("k", "v")
	tbl.Append(Row{"k": "b", "v": 1})
	tbl.Append(Row{"k": "a", "v": 2})
	tbl.Append(Row{"k": "a", "v": 3})

	tbl.SortStable(func(a, b Row) bool { return a["k"].(string) < b["k"].(string) })
	assert.Equal(t, 2, tbl.Value(0, "v"))
	assert.Equal(t, 3, tbl.Value(1, "v"))
	assert.Equal(t, 1, tbl.Value(2, "v"))
}

func TestAsFloat(t *testing.T) {
	f := 1.5
	n := 7
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", 2.5, 2.5, true},
		{"int", 3, 3, true},
		{"int64", int64(4), 4, true},
		{"float pointer", &f, 1.5, true},
		{"int pointer", &n, 7, true},
		{"numeric string", "12.5", 12.5, true},
		{"nil", nil, 0, false},
		{"nil pointer", (*float64)(nil), 0, false},
		{"non-numeric string", "abc", 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsFloat(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsString(t *testing.T) {
	s := "x"
	got, ok := AsString(&s)
	assert.True(t, ok)
	assert.Equal(t, "x", got)

	_, ok = AsString(nil)
	assert.False(t, ok)

	got, ok = AsString(42)
	assert.True(t, ok)
	assert.Equal(t, "42", got)
}
