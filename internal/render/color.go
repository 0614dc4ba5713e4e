package render

import (
	"math"
	"math/rand"

	"hist/internal/tally"
)

// maxDraws bounds the rejection sampling of one color. A band too narrow to
// hit falls back to the gray at its center.
const maxDraws = 1 << 16

// Palette binds every distinct count of a tally to a color, so keys with
// equal counts are drawn alike. The same tally always yields the same
// palette.
type Palette struct {
	colors map[uint64]RGB
}

// NewPalette draws one color per distinct count with a luminance inside
// [lumMin, lumMax]. The draw is seeded with max(count)·#counts and the
// binding of colors to counts is shuffled by a second source seeded with
// max(count).
func NewPalette(t *tally.Tally, lumMin, lumMax float64) *Palette {
	freqs := t.Frequencies()
	maxCount := t.MaxCount()
	n := len(freqs)

	draw := rand.New(rand.NewSource(int64(maxCount * uint64(n))))
	colors := make([]RGB, n)
	for i := range colors {
		colors[i] = randomColor(draw, lumMin, lumMax)
	}

	perm := rand.New(rand.NewSource(int64(maxCount))).Perm(n)
	p := &Palette{colors: make(map[uint64]RGB, n)}
	for i, f := range freqs {
		p.colors[f] = colors[perm[i]]
	}
	return p
}

// Color returns the color of a count. Counts not in the tally get the zero
// color.
func (p *Palette) Color(count uint64) RGB {
	return p.colors[count]
}

// Len is the number of distinct colors.
func (p *Palette) Len() int {
	return len(p.colors)
}

func randomColor(rng *rand.Rand, lumMin, lumMax float64) RGB {
	for i := 0; i < maxDraws; i++ {
		c := RGB{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))}
		if l := c.Luminance(); l >= lumMin && l <= lumMax {
			return c
		}
	}
	g := uint8(math.Round((lumMin + lumMax) / 2))
	return RGB{g, g, g}
}

// Intensity is the gray level of a value label: dim for small values,
// bright for values close to max.
func Intensity(value, max uint64) uint8 {
	var ratio float64
	if max > 0 {
		ratio = float64(value) / float64(max)
	}
	i := math.Round(ratio*255) + 10
	if i > 255 {
		return 255
	}
	return uint8(i)
}
