package matching

import "sort"

// BrandSample is one labeled row: a manufacturer name as seen on the local
// source, the storefront brand it was resolved to, how often the pair was
// observed, and that brand's share of all observations for the manufacturer.
type BrandSample struct {
	Manufacturer string
	Brand        string
	Count        int
	Share        float64
}

// BrandDict maps normalized manufacturer name to normalized brand name.
type BrandDict map[string]string

// BuildBrandDict keeps, per normalized manufacturer, the single
// highest-share (then highest-count) brand candidate, and accepts it only
// when it clears both thresholds. A manufacturer failing the thresholds is
// simply absent from the mapping; that is an expected outcome, not an
// error, and its listings fall back to unmatched.
func BuildBrandDict(rows []BrandSample, minCount int, minShare float64) BrandDict {
	type cand struct {
		brand string
		count int
		share float64
	}
	best := make(map[string]cand)
	order := make([]string, 0)

	for _, r := range rows {
		m := NormalizeText(r.Manufacturer)
		if m == "" {
			continue
		}
		b := cand{brand: NormalizeText(r.Brand), count: r.Count, share: r.Share}
		cur, ok := best[m]
		if !ok {
			best[m] = b
			order = append(order, m)
			continue
		}
		if b.share > cur.share || (b.share == cur.share && b.count > cur.count) {
			best[m] = b
		}
	}

	sort.Strings(order)
	dict := make(BrandDict)
	for _, m := range order {
		c := best[m]
		if c.share >= minShare && c.count >= minCount {
			dict[m] = c.brand
		}
	}
	return dict
}
