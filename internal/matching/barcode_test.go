package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBarcode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"twelve digits pass through", "036000291452", "036000291452", true},
		{"eleven digits get a leading zero", "36000291452", "036000291452", true},
		{"separators are stripped", "0-36000-29145-2", "036000291452", true},
		{"float round-trip tail is dropped", "36000291452.0", "036000291452", true},
		{"thirteen with leading zero drops it", "0036000291452", "036000291452", true},
		{"thirteen falls back to the ean tail", "9036000291452", "036000291452", true},
		{"thirteen recomputes the check digit when no tail fits", "5123456789013", "512345678900", true},
		{"fourteen takes the gtin tail unchecked", "00036000291452", "036000291452", true},
		{"short codes are zero padded", "1234", "000000001234", true},
		{"overlong codes keep the last twelve", "99900036000291452", "036000291452", true},
		{"no digits at all", "n/a", "", false},
		{"empty input", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeBarcode(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeBarcodeIsIdempotent(t *testing.T) {
	inputs := []string{
		"036000291452", "36000291452", "0036000291452",
		"00036000291452", "1234", "8801043015208",
	}
	for _, in := range inputs {
		once, ok := NormalizeBarcode(in)
		require.True(t, ok, in)
		require.Len(t, once, 12, in)
		twice, ok := NormalizeBarcode(once)
		require.True(t, ok, in)
		assert.Equal(t, once, twice, in)
	}
}

func TestCheckDigit(t *testing.T) {
	assert.Equal(t, "2", CheckDigit("03600029145"))
	assert.Equal(t, "1", CheckDigit("03680047841"))
}

func TestValidUPC12(t *testing.T) {
	assert.True(t, ValidUPC12("036000291452"))
	assert.False(t, ValidUPC12("036000291457"))
	assert.False(t, ValidUPC12("03600029145"))
	assert.False(t, ValidUPC12("03600029145x"))
}
