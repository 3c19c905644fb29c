package matching

import (
	"fmt"
	"testing"

	"CatalogSync/internal/model"
	"CatalogSync/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	return NewEngine(EngineConfig{NameScoreThreshold: 0.45, NameScoreMargin: 0.15}, nil)
}

func localTable(rows ...table.Row) *table.Table {
	t := table.New(ColLocalVendorID, ColLocalCatalogID, ColLocalName, ColLocalBrand, ColLocalBarcode, "local_price")
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func globalTable(rows ...table.Row) *table.Table {
	t := table.New(ColGlobalVendorID, ColGlobalCatalogID, ColGlobalName, ColGlobalBrand, ColGlobalBarcode, "global_price")
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func TestMatchExactKey(t *testing.T) {
	local := localTable(table.Row{
		ColLocalVendorID:  "L1",
		ColLocalCatalogID: "C1",
		ColLocalName:      "Acme Vitamin C 1000mg",
		ColLocalBarcode:   "036000291452",
		"local_price":     15000.0,
	})
	global := globalTable(table.Row{
		ColGlobalVendorID:  "G1",
		ColGlobalCatalogID: "GC1",
		ColGlobalName:      "Acme, Vitamin C, 1,000 mg",
		ColGlobalBarcode:   "036000291452",
		"global_price":     13500.0,
	})

	out := testEngine().Match(local, global, nil)
	require.Equal(t, 1, out.Len())

	row := out.Row(0)
	assert.Equal(t, model.StatusBoth, row[ColMatchingStatus])
	assert.Equal(t, model.MethodExactKey, row[ColMatchingMethod])
	assert.Equal(t, model.ConfidenceHigh, row[ColMatchingConf])
	assert.Equal(t, "G1", row[ColGlobalVendorID])
	assert.Equal(t, 15000.0, row["local_price"])
	assert.Equal(t, 13500.0, row["global_price"])
	// local catalog id wins the shared key
	assert.Equal(t, "C1", row[ColProductKey])
}

func TestMatchNameBrandFallback(t *testing.T) {
	dict := BrandDict{"acmecorp": "acme"}

	local := localTable(table.Row{
		ColLocalVendorID: "L1",
		ColLocalName:     "Acme Zinc Picolinate 50mg",
		ColLocalBrand:    "AcmeCorp",
	})
	global := globalTable(
		table.Row{
			ColGlobalVendorID: "G1",
			ColGlobalName:     "Acme, Zinc Picolinate, 50 mg, 60 Capsules",
			ColGlobalBrand:    "Acme",
		},
		table.Row{
			ColGlobalVendorID: "G2",
			ColGlobalName:     "Acme, Magnesium Glycinate",
			ColGlobalBrand:    "Acme",
		},
	)

	out := testEngine().Match(local, global, dict)
	require.Equal(t, 2, out.Len())

	row := out.Row(0)
	assert.Equal(t, model.StatusBoth, row[ColMatchingStatus])
	assert.Equal(t, model.MethodNameBrandFallback, row[ColMatchingMethod])
	assert.Equal(t, model.ConfidenceMedium, row[ColMatchingConf])
	assert.Equal(t, "G1", row[ColGlobalVendorID])
	score, ok := table.AsFloat(row[ColNameMatchScore])
	require.True(t, ok)
	assert.GreaterOrEqual(t, score, 0.45)

	// the losing candidate stays unmatched
	assert.Equal(t, model.StatusGlobalOnly, out.Row(1)[ColMatchingStatus])
	assert.Equal(t, "G2", out.Row(1)[ColGlobalVendorID])
}

func TestMatchMarginRejectsAmbiguousBest(t *testing.T) {
	dict := BrandDict{"acmecorp": "acme"}

	local := localTable(table.Row{
		ColLocalVendorID: "L1",
		ColLocalName:     "Acme Zinc Picolinate",
		ColLocalBrand:    "AcmeCorp",
	})
	// two candidates with identical names: best minus second is zero,
	// below the margin, so neither may win
	global := globalTable(
		table.Row{ColGlobalVendorID: "G1", ColGlobalName: "Acme Zinc Picolinate", ColGlobalBrand: "Acme"},
		table.Row{ColGlobalVendorID: "G2", ColGlobalName: "Acme Zinc Picolinate", ColGlobalBrand: "Acme"},
	)

	out := testEngine().Match(local, global, dict)
	require.Equal(t, 3, out.Len())
	assert.Equal(t, model.StatusLocalOnly, out.Row(0)[ColMatchingStatus])
	assert.Equal(t, model.StatusGlobalOnly, out.Row(1)[ColMatchingStatus])
	assert.Equal(t, model.StatusGlobalOnly, out.Row(2)[ColMatchingStatus])
}

func TestMatchThresholdBoundary(t *testing.T) {
	dict := BrandDict{"acmecorp": "acme"}
	mkLocal := func(name string) *table.Table {
		return localTable(table.Row{
			ColLocalVendorID: "L1",
			ColLocalName:     name,
			ColLocalBrand:    "AcmeCorp",
		})
	}
	mkGlobal := func(names ...string) *table.Table {
		g := globalTable()
		for i, name := range names {
			g.Append(table.Row{
				ColGlobalVendorID: fmt.Sprintf("G%d", i+1),
				ColGlobalName:     name,
				ColGlobalBrand:    "Acme",
			})
		}
		return g
	}

	t.Run("a score exactly at the threshold is accepted", func(t *testing.T) {
		// cores {alpha,beta,gamma} vs {alpha,beta,delta}: overlap 2/3, no
		// containment, so the score is overlapWeight * 2/3; pinning the
		// threshold to that exact value exercises the inclusive comparison
		threshold := NameScore("alpha beta gamma", "alpha beta delta", "acme")
		require.InDelta(t, overlapWeight*2.0/3.0, threshold, 1e-12)
		engine := NewEngine(EngineConfig{NameScoreThreshold: threshold, NameScoreMargin: 0.15}, nil)

		out := engine.Match(mkLocal("alpha beta gamma"), mkGlobal("alpha beta delta"), dict)
		require.Equal(t, 1, out.Len())
		assert.Equal(t, model.StatusBoth, out.Row(0)[ColMatchingStatus])
		assert.Equal(t, threshold, out.Row(0)[ColNameMatchScore])
	})

	t.Run("a score below the threshold is rejected", func(t *testing.T) {
		// overlap 3/5 scores 0.42, just under the default 0.45
		out := testEngine().Match(
			mkLocal("alpha beta gamma delta epsilon"),
			mkGlobal("alpha beta gamma theta iota"),
			dict,
		)
		require.Equal(t, 2, out.Len())
		assert.Equal(t, model.StatusLocalOnly, out.Row(0)[ColMatchingStatus])
	})

	t.Run("distinct scores closer than the margin are rejected", func(t *testing.T) {
		// best overlap 5/7 scores 0.5, second 4/7 scores 0.4: best clears
		// the threshold but the 0.1 gap is inside the 0.15 margin
		out := testEngine().Match(
			mkLocal("alpha beta gamma delta epsilon zeta eta"),
			mkGlobal(
				"alpha beta gamma delta epsilon theta iota",
				"alpha beta gamma delta kappa lambda mu",
			),
			dict,
		)
		require.Equal(t, 3, out.Len())
		assert.Equal(t, model.StatusLocalOnly, out.Row(0)[ColMatchingStatus])
	})
}

func TestMatchUnknownManufacturerStaysLocalOnly(t *testing.T) {
	local := localTable(table.Row{
		ColLocalVendorID: "L1",
		ColLocalName:     "Mystery Zinc",
		ColLocalBrand:    "NobodyKnows",
	})
	global := globalTable(table.Row{
		ColGlobalVendorID: "G1",
		ColGlobalName:     "Mystery Zinc",
		ColGlobalBrand:    "Acme",
	})

	out := testEngine().Match(local, global, BrandDict{})
	require.Equal(t, 2, out.Len())
	assert.Equal(t, model.StatusLocalOnly, out.Row(0)[ColMatchingStatus])
	assert.Equal(t, model.StatusGlobalOnly, out.Row(1)[ColMatchingStatus])
}

func TestMatchEveryRowAppearsExactlyOnce(t *testing.T) {
	local := localTable(
		table.Row{ColLocalVendorID: "L1", ColLocalName: "A", ColLocalBarcode: "036000291452"},
		table.Row{ColLocalVendorID: "L2", ColLocalName: "B"},
	)
	global := globalTable(
		table.Row{ColGlobalVendorID: "G1", ColGlobalName: "A", ColGlobalBarcode: "036000291452"},
		table.Row{ColGlobalVendorID: "G2", ColGlobalName: "C"},
		table.Row{ColGlobalVendorID: "G3", ColGlobalName: "D"},
	)

	out := testEngine().Match(local, global, nil)
	// 2 local rows + 2 unmatched global rows
	require.Equal(t, 4, out.Len())

	counts := map[string]int{}
	for _, r := range out.Rows() {
		counts[r[ColMatchingStatus].(string)]++
	}
	assert.Equal(t, map[string]int{
		model.StatusBoth:       1,
		model.StatusLocalOnly:  1,
		model.StatusGlobalOnly: 2,
	}, counts)
}

func TestMatchIsDeterministic(t *testing.T) {
	dict := BrandDict{"acmecorp": "acme"}
	mkLocal := func() *table.Table {
		return localTable(
			table.Row{ColLocalVendorID: "L1", ColLocalName: "Acme Zinc Picolinate", ColLocalBrand: "AcmeCorp"},
			table.Row{ColLocalVendorID: "L2", ColLocalName: "Acme Vitamin D3", ColLocalBrand: "AcmeCorp", ColLocalBarcode: "036000291452"},
		)
	}
	mkGlobal := func() *table.Table {
		return globalTable(
			table.Row{ColGlobalVendorID: "G1", ColGlobalName: "Acme Zinc Picolinate 60 Capsules", ColGlobalBrand: "Acme"},
			table.Row{ColGlobalVendorID: "G2", ColGlobalName: "Acme D3", ColGlobalBrand: "Acme", ColGlobalBarcode: "036000291452"},
		)
	}

	first := testEngine().Match(mkLocal(), mkGlobal(), dict)
	second := testEngine().Match(mkLocal(), mkGlobal(), dict)

	require.Equal(t, first.Columns(), second.Columns())
	require.Equal(t, first.Len(), second.Len())
	for i := 0; i < first.Len(); i++ {
		assert.Equal(t, first.Row(i), second.Row(i))
	}
}
