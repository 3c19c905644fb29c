package matching

import (
	"regexp"
	"sort"
	"strings"
)

// Score weighting: token overlap carries most of the signal, exact
// containment of one core-token string in the other is a secondary
// confirming signal.
const (
	overlapWeight     = 0.7
	containmentWeight = 0.3
)

var (
	parenRegex = regexp.MustCompile(`\([^)]*\)`)
	unitRegex  = regexp.MustCompile(`\b\d+(\.\d+)?\s*(mg|g|gr|gram|ml|mcg|oz|fl\s*oz|lbs?|lb|kg|capsules?|tablets?|softgels?|gummies?|vegan)\b`)
	alnumRegex = regexp.MustCompile(`[^0-9a-z가-힣]+`)
	spaceRegex = regexp.MustCompile(`\s+`)
)

// genericTokens are dosage-form and marketing words too common to carry
// matching signal; they are stripped from both sides before scoring.
var genericTokens = map[string]struct{}{
	"capsule": {}, "capsules": {}, "tablet": {}, "tablets": {},
	"softgels": {}, "softgel": {}, "gummies": {}, "gummy": {},
	"veggie": {}, "vegetarian": {}, "caps": {}, "tabs": {},
	"supplement": {}, "supplements": {}, "powder": {}, "liquid": {},
	"drops": {}, "drop": {}, "formula": {}, "support": {}, "supports": {},
	"blend": {}, "complex": {}, "plus": {}, "extra": {}, "high": {},
	"strength": {}, "super": {}, "max": {}, "ultra": {}, "advanced": {},
	"care": {}, "vitamin": {}, "vitamins": {}, "mineral": {}, "minerals": {},
}

// NormalizeText reduces a product or brand name to matching form: case
// folded, parenthetical content and quantity/unit runs removed, collapsed
// to alphanumeric-plus-hangul tokens separated by single spaces.
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	s = parenRegex.ReplaceAllString(s, " ")
	s = unitRegex.ReplaceAllString(s, " ")
	s = alnumRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
}

// NameScore computes a [0,1] similarity between two already-normalized
// names, assuming the brand is already agreed. Brand-hint tokens and
// generic tokens are removed from both sides first; if either core set
// ends up empty there is nothing meaningful to compare and the score is 0.
func NameScore(nameA, nameB, brandHint string) float64 {
	if nameA == "" || nameB == "" {
		return 0
	}
	brand := tokenSet(brandHint)
	coreA := coreTokens(nameA, brand)
	coreB := coreTokens(nameB, brand)
	if len(coreA) == 0 || len(coreB) == 0 {
		return 0
	}

	inter := 0
	for t := range coreA {
		if _, ok := coreB[t]; ok {
			inter++
		}
	}
	denom := len(coreA)
	if len(coreB) > denom {
		denom = len(coreB)
	}
	overlap := float64(inter) / float64(denom)

	sa := joinedSorted(coreA)
	sb := joinedSorted(coreB)
	containment := 0.0
	if strings.Contains(sa, sb) || strings.Contains(sb, sa) {
		containment = 1.0
	}

	return overlapWeight*overlap + containmentWeight*containment
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		set[t] = struct{}{}
	}
	return set
}

func coreTokens(name string, brand map[string]struct{}) map[string]struct{} {
	core := make(map[string]struct{})
	for _, t := range strings.Fields(name) {
		if _, ok := brand[t]; ok {
			continue
		}
		if _, ok := genericTokens[t]; ok {
			continue
		}
		core[t] = struct{}{}
	}
	return core
}

func joinedSorted(set map[string]struct{}) string {
	toks := make([]string, 0, len(set))
	for t := range set {
		toks = append(toks, t)
	}
	sort.Strings(toks)
	return strings.Join(toks, " ")
}
