package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hist/internal/tally"
)

func TestPaletteIsDeterministic(t *testing.T) {
	tl := tally.FromCounts(map[int64]uint64{1: 4, 2: 9, 3: 1, 4: 4, 5: 2})

	a := NewPalette(tl, defaultLumMin, defaultLumMax)
	b := NewPalette(tl, defaultLumMin, defaultLumMax)
	require.Equal(t, 4, a.Len())
	for _, f := range tl.Frequencies() {
		assert.Equal(t, a.Color(f), b.Color(f), "count %d", f)
	}
}

func TestPaletteStaysInLuminanceBand(t *testing.T) {
	m := map[int64]uint64{}
	for i := int64(0); i < 40; i++ {
		m[i] = uint64(i + 1)
	}
	p := NewPalette(tally.FromCounts(m), defaultLumMin, defaultLumMax)

	for i := uint64(1); i <= 40; i++ {
		l := p.Color(i).Luminance()
		assert.GreaterOrEqual(t, l, float64(defaultLumMin))
		assert.LessOrEqual(t, l, float64(defaultLumMax))
	}
}

func TestPaletteDependsOnData(t *testing.T) {
	a := NewPalette(tally.FromCounts(map[int64]uint64{1: 1, 2: 2, 3: 3}), defaultLumMin, defaultLumMax)
	b := NewPalette(tally.FromCounts(map[int64]uint64{1: 1, 2: 2, 3: 5}), defaultLumMin, defaultLumMax)

	assert.NotEqual(t, []RGB{a.Color(1), a.Color(2), a.Color(3)}, []RGB{b.Color(1), b.Color(2), b.Color(5)})
}

func TestPaletteNarrowBandFallsBackToGray(t *testing.T) {
	p := NewPalette(tally.FromCounts(map[int64]uint64{1: 1}), 100, 100)
	c := p.Color(1)
	assert.InDelta(t, 100, c.Luminance(), 1)
}

func TestPaletteEmpty(t *testing.T) {
	p := NewPalette(tally.New(), defaultLumMin, defaultLumMax)
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, RGB{}, p.Color(3))
}

func TestIntensity(t *testing.T) {
	assert.Equal(t, uint8(10), Intensity(0, 10))
	assert.Equal(t, uint8(138), Intensity(5, 10))
	assert.Equal(t, uint8(255), Intensity(10, 10))
	assert.Equal(t, uint8(255), Intensity(30, 10))
	assert.Equal(t, uint8(10), Intensity(3, 0))
}
