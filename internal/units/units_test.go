package units

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	testCases := []struct {
		name     string
		quantity float64
		unit     string
		expected string
	}{
		{"litre one decimal", 2.0, Litre, "2.0"},
		{"litre rounds to nearest tenth", 1.25, Litre, "1.3"},
		{"litre rounds down", 1.24, Litre, "1.2"},
		{"litre already precise", 0.5, Litre, "0.5"},
		{"adet floors", 3.9, "adet", "3"},
		{"kutu floors", 7.1, "kutu", "7"},
		{"paket integral", 12, "paket", "12"},
		{"zero litre", 0, Litre, "0.0"},
		{"zero adet", 0, "adet", "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Format(tc.quantity, tc.unit))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 1.3, Normalize(1.25, Litre))
	assert.Equal(t, 1.2, Normalize(1.24, Litre))
	assert.Equal(t, 2.0, Normalize(2, Litre))
	assert.Equal(t, 3.0, Normalize(3.9, "adet"))
	assert.Equal(t, 0.0, Normalize(0.9, "kutu"))
}

// Formatting then normalizing must land on the same value as normalizing the
// raw quantity: display never changes the stored amount.
func TestNormalizeFormatIdempotent(t *testing.T) {
	quantities := []float64{0, 0.04, 0.05, 0.5, 1.24, 1.25, 2, 3.9, 7.15, 100.01}
	unitNames := []string{Litre, "adet", "kutu", "paket"}

	for _, unit := range unitNames {
		for _, q := range quantities {
			formatted := Format(q, unit)
			parsed, err := strconv.ParseFloat(formatted, 64)
			if err != nil {
				t.Fatalf("Format(%v, %s) produced unparseable %q: %v", q, unit, formatted, err)
			}
			assert.Equal(t, Normalize(q, unit), Normalize(parsed, unit),
				"quantity %v unit %s", q, unit)
		}
	}
}

func TestStep(t *testing.T) {
	assert.Equal(t, 0.1, Step(Litre))
	assert.Equal(t, 1.0, Step("adet"))
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, 3.0, LineTotal(3, 1))
	assert.Equal(t, 0.3, LineTotal(3, 0.1)) // plain float64 would give 0.30000000000000004
	assert.Equal(t, 187.5, LineTotal(2.5, 75))
}
