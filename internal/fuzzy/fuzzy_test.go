package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"equal", "Resistors", "Resistors", 100},
		{"case insensitive", "resistors", "RESISTORS", 100},
		{"both empty", "", "", 100},
		{"one empty", "Resistors", "", 0},
		{"disjoint", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ratio(tt.a, tt.b))
		})
	}
}

func TestRatioOrdering(t *testing.T) {
	// A close variant must outrank an unrelated category name.
	close := Ratio("Chip Resistor", "Chip Resistors")
	far := Ratio("Chip Resistor", "Aluminum Electrolytic Capacitors")
	assert.Greater(t, close, far)
	assert.Greater(t, close, 85)
}

func TestPartialRatioSubstring(t *testing.T) {
	assert.Equal(t, 100, PartialRatio("Tolerance", "Resistance Tolerance"))
	assert.Equal(t, 100, PartialRatio("Resistance Tolerance", "Tolerance"))
}

func TestPartialRatioEmpty(t *testing.T) {
	assert.Equal(t, 100, PartialRatio("", ""))
	assert.Equal(t, 0, PartialRatio("", "Voltage"))
}

func TestPartialRatioOrdering(t *testing.T) {
	// Raw supplier names containing the template name score above others.
	hit := PartialRatio("Voltage", "Voltage - Rated")
	miss := PartialRatio("Voltage", "Mounting Type")
	assert.Greater(t, hit, miss)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein([]rune("abc"), []rune("abc")))
	assert.Equal(t, 1, levenshtein([]rune("abc"), []rune("abd")))
	assert.Equal(t, 3, levenshtein([]rune(""), []rune("abc")))
	assert.Equal(t, 3, levenshtein([]rune("kitten"), []rune("sitting")))
}
