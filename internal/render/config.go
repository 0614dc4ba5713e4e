// Package render turns a tally into histogram rows: bar scaling, color
// assignment and line formatting.
package render

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	defaultLumMin = 150
	defaultLumMax = 200
)

// ErrInvalidColor is returned for a color override that cannot be parsed.
var ErrInvalidColor = errors.New("invalid color")

// Config controls how the histogram is drawn. No statistic depends on it.
type Config struct {
	// Cumulative shows the running count up to and including each key.
	Cumulative bool
	// FillGaps adds zero-count rows for every missing integer in range.
	FillGaps bool
	// MaxWidth caps the bar length and scales bars proportionally.
	// Zero draws one glyph per unit.
	MaxWidth int
	// Summary appends the grand total bar.
	Summary bool
	// Pad fills bars up to MaxWidth with the empty glyph.
	Pad bool
	// ASCII draws plain '#' bars without color.
	ASCII bool
	// Color enables ANSI colors.
	Color bool
	// Foreground and Background override the computed bar colors.
	Foreground string
	Background string
	// LumMin and LumMax bound the luminance of generated colors.
	LumMin float64
	LumMax float64
}

// DefaultConfig returns the configuration used when no option is given.
func DefaultConfig() Config {
	return Config{
		LumMin: defaultLumMin,
		LumMax: defaultLumMax,
	}
}

// Validate rejects settings that cannot be rendered.
func (c Config) Validate() error {
	if c.MaxWidth < 0 {
		return errors.Errorf("max width must not be negative, got %d", c.MaxWidth)
	}
	if c.LumMin < 0 || c.LumMax > 255 || c.LumMin > c.LumMax {
		return errors.Errorf("luminance band [%v, %v] must lie within [0, 255]", c.LumMin, c.LumMax)
	}
	if c.Pad && c.MaxWidth == 0 {
		return errors.New("padding needs a max width")
	}
	if c.Foreground != "" {
		if _, err := ParseRGB(c.Foreground); err != nil {
			return errors.Wrap(err, "foreground")
		}
	}
	if c.Background != "" {
		if _, err := ParseRGB(c.Background); err != nil {
			return errors.Wrap(err, "background")
		}
	}
	return nil
}

// Colored reports whether escape sequences are written.
func (c Config) Colored() bool {
	return c.Color && !c.ASCII
}

// Glyphs returns the filled and empty bar glyphs.
func (c Config) Glyphs() (fill, empty string) {
	if c.ASCII {
		return "#", "."
	}
	return "█", "░"
}

// RGB is a 24-bit color.
type RGB struct {
	R, G, B uint8
}

// Luminance is the perceived brightness, 0.299·r + 0.587·g + 0.114·b.
func (c RGB) Luminance() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// ParseRGB accepts "#rrggbb", "rrggbb" or "r,g,b".
func ParseRGB(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if parts := strings.Split(s, ","); len(parts) == 3 {
		var out [3]uint8
		for i, p := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return RGB{}, errors.Wrapf(ErrInvalidColor, "%q", s)
			}
			out[i] = uint8(n)
		}
		return RGB{out[0], out[1], out[2]}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return RGB{}, errors.Wrapf(ErrInvalidColor, "%q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, errors.Wrapf(ErrInvalidColor, "%q", s)
	}
	return RGB{uint8(n >> 16), uint8(n >> 8), uint8(n)}, nil
}
