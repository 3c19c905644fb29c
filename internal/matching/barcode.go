package matching

import "strings"

// NormalizeBarcode reduces a raw manufacturer barcode (GTIN/UPC family,
// possibly with separators, a float round-trip ".0" tail, or the wrong
// digit count) to the canonical 12-digit form. ok is false when the input
// carries no digits at all; otherwise the result is always exactly 12
// digits. It never returns a partial-width string.
func NormalizeBarcode(raw string) (string, bool) {
	d := digitsOnly(raw)
	// a float round-trip leaves ".0": digitsOnly would keep the trailing 0,
	// so strip the fraction before filtering
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		if frac := digitsOnly(raw[i+1:]); strings.Trim(frac, "0") == "" {
			d = digitsOnly(raw[:i])
		}
	}
	if d == "" {
		return "", false
	}

	switch {
	case len(d) == 12:
		return d, true
	case len(d) == 11:
		return "0" + d, true
	case len(d) == 13:
		var cands []string
		if d[0] == '0' {
			cands = append(cands, d[1:]) // 0 + UPC-A -> UPC-A
		}
		cands = append(cands, d[len(d)-12:]) // EAN-13 tail
		cands = append(cands, d[:11]+CheckDigit(d[:11]))
		for _, c := range cands {
			if ValidUPC12(c) {
				return c, true
			}
		}
		return cands[0], true
	case len(d) == 14:
		// GTIN-14 tail, taken without check-digit validation; accepted
		// lossy behavior kept from observed data
		return d[len(d)-12:], true
	case len(d) < 11:
		return strings.Repeat("0", 12-len(d)) + d, true
	default: // > 14
		return d[len(d)-12:], true
	}
}

// CheckDigit computes the UPC-A check digit over an 11-digit prefix:
// odd-position digits weighted 3, mod 10, complement.
func CheckDigit(d11 string) string {
	odds, evens := 0, 0
	for i := 0; i < 11; i++ {
		n := int(d11[i] - '0')
		if i%2 == 0 {
			odds += n
		} else {
			evens += n
		}
	}
	total := odds*3 + evens
	return string(rune('0' + (10-total%10)%10))
}

// ValidUPC12 reports whether a 12-digit string carries a correct UPC-A
// check digit.
func ValidUPC12(d12 string) bool {
	if len(d12) != 12 || digitsOnly(d12) != d12 {
		return false
	}
	return CheckDigit(d12[:11]) == d12[11:]
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
