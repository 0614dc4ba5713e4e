package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"

	"hist/internal/stats"
	"hist/internal/tally"
)

const (
	totalLabel   = "total"
	percentWidth = len("(100.0%)")
	statsLabel   = 16
)

// totalColor draws the grand total bar when no foreground is set. The
// palette only covers per-key counts.
var totalColor = RGB{255, 255, 255}

// Renderer writes the statistics block and the histogram lines.
type Renderer struct {
	w   io.Writer
	cfg Config
	fg  *RGB
	bg  *RGB
}

// New validates cfg and returns a renderer writing to w.
func New(w io.Writer, cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "render config")
	}
	r := &Renderer{w: w, cfg: cfg}
	if cfg.Foreground != "" {
		c, _ := ParseRGB(cfg.Foreground)
		r.fg = &c
	}
	if cfg.Background != "" {
		c, _ := ParseRGB(cfg.Background)
		r.bg = &c
	}
	return r, nil
}

// Statistics writes the summary block followed by an empty line.
func (r *Renderer) Statistics(s stats.Summary) error {
	lines := [][2]string{
		{"Count", humanize.Comma(int64(s.Count))},
		{"Min/Max", s.Min.String() + " / " + s.Max.String()},
		{"Median", s.Median.String()},
		{"Mode", stats.FormatKeys(s.Mode)},
		{"Mean", s.Mean.String()},
		{"Geometric mean", s.GeometricMean.String()},
		{"Harmonic mean", s.HarmonicMean.String()},
	}
	for _, q := range s.Percentiles {
		lines = append(lines, [2]string{"P" + humanize.FtoaWithDigits(q.P*100, 2), q.Value.String()})
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(r.w, "%-*s%s\n", statsLabel, l[0], l[1]); err != nil {
			return errors.Wrap(err, "write statistics")
		}
	}
	_, err := fmt.Fprintln(r.w)
	return errors.Wrap(err, "write statistics")
}

// Histogram writes one line per key of t, then the total line if enabled.
// Nothing is written when t holds no observations.
func (r *Renderer) Histogram(t *tally.Tally) error {
	if t.Total() == 0 {
		return nil
	}
	scaler := NewScaler(t, r.cfg)
	rows := scaler.Rows(t)
	total := scaler.Total()
	lay := measure(rows, total, r.cfg.Summary)

	var palette *Palette
	if r.cfg.Colored() && r.fg == nil {
		palette = NewPalette(t, r.cfg.LumMin, r.cfg.LumMax)
	}

	for _, row := range rows {
		c := r.fg
		if palette != nil {
			pc := palette.Color(row.Count)
			c = &pc
		}
		line := r.line(strconv.FormatInt(row.Key, 10), row, lay, scaler.MaxValue(), c)
		if _, err := io.WriteString(r.w, line); err != nil {
			return errors.Wrapf(err, "write row %d", row.Key)
		}
	}
	if !r.cfg.Summary {
		return nil
	}
	c := r.fg
	if c == nil {
		tc := totalColor
		c = &tc
	}
	_, err := io.WriteString(r.w, r.line(totalLabel, total, lay, scaler.MaxValue(), c))
	return errors.Wrap(err, "write total")
}

type layout struct {
	keyWidth   int
	valueWidth int
}

func (l layout) labelWidth() int {
	return l.keyWidth + 1 + l.valueWidth + 1 + percentWidth + 1
}

func measure(rows []Row, total Row, summary bool) layout {
	var l layout
	for _, row := range rows {
		l.keyWidth = maxInt(l.keyWidth, len(strconv.FormatInt(row.Key, 10)))
		l.valueWidth = maxInt(l.valueWidth, len(strconv.FormatUint(row.Value, 10)))
	}
	if summary {
		l.keyWidth = maxInt(l.keyWidth, len(totalLabel))
		l.valueWidth = maxInt(l.valueWidth, len(strconv.FormatUint(total.Value, 10)))
	}
	return l
}

func (r *Renderer) line(label string, row Row, lay layout, max uint64, bar *RGB) string {
	fill, empty := r.cfg.Glyphs()
	value := fmt.Sprintf("%*d", lay.valueWidth, row.Value)
	bars := strings.Repeat(fill, row.Width)
	pad := ""
	if r.cfg.Pad && row.Width < r.cfg.MaxWidth {
		pad = strings.Repeat(empty, r.cfg.MaxWidth-row.Width)
	}
	if r.cfg.Colored() {
		g := Intensity(row.Value, max)
		value = colorize(&RGB{g, g, g}, nil, value)
		bars = colorize(bar, r.bg, bars)
	}
	return fmt.Sprintf("%*s %s %s %s%s\n", lay.keyWidth, label, value, formatPercent(row.Percent), bars, pad)
}

func formatPercent(p stats.Value) string {
	v, ok := p.Get()
	if !ok {
		return strings.Repeat(" ", percentWidth)
	}
	return fmt.Sprintf("(%5.1f%%)", v)
}

func colorize(fg, bg *RGB, s string) string {
	if s == "" || (fg == nil && bg == nil) {
		return s
	}
	var c *color.Color
	if fg != nil {
		c = color.RGB(int(fg.R), int(fg.G), int(fg.B))
	} else {
		c = color.New()
	}
	if bg != nil {
		c.AddBgRGB(int(bg.R), int(bg.G), int(bg.B))
	}
	c.EnableColor()
	return c.Sprint(s)
}

// FitWidth returns the bar cap that keeps every line of t within columns.
// It is at least 1.
func FitWidth(t *tally.Tally, cfg Config, columns int) int {
	cfg.MaxWidth = 0
	scaler := NewScaler(t, cfg)
	lay := measure(scaler.Rows(t), scaler.Total(), cfg.Summary)
	return maxInt(columns-lay.labelWidth(), 1)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
