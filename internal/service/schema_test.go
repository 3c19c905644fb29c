package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricGroup(t *testing.T) {
	cols, ok := MetricGroup(GroupAction)
	require.True(t, ok)
	assert.Contains(t, cols, ColPriceDiff)
	assert.Contains(t, cols, ColCheaperSource)

	_, ok = MetricGroup("nope")
	assert.False(t, ok)

	all, ok := MetricGroup(GroupAll)
	require.True(t, ok)
	assert.Contains(t, all, "matching_status")
	assert.Contains(t, all, "global_units_sold_7d")
	assert.Contains(t, all, "local_url")
}

func TestResolveGroups(t *testing.T) {
	t.Run("preserves order and dedupes", func(t *testing.T) {
		cols := ResolveGroups([]string{GroupCore, GroupCore, GroupAction}, nil)
		assert.Equal(t, "matching_status", cols[0])

		seen := map[string]int{}
		for _, c := range cols {
			seen[c]++
		}
		for c, n := range seen {
			assert.Equal(t, 1, n, c)
		}
	})

	t.Run("collects unknown names", func(t *testing.T) {
		var unknown []string
		cols := ResolveGroups([]string{"bogus", GroupMeta}, &unknown)
		assert.Equal(t, []string{"bogus"}, unknown)
		assert.NotEmpty(t, cols)
	})

	t.Run("all expands every group once", func(t *testing.T) {
		all := ResolveGroups([]string{GroupAll}, nil)
		merged := ResolveGroups([]string{GroupCore, GroupAction, GroupPerformanceSnapshot, GroupPerformanceRolling7d, GroupMeta}, nil)
		assert.Equal(t, merged, all)
	})
}
