package render

import (
	"math"
	"math/bits"

	"hist/internal/stats"
	"hist/internal/tally"
)

// Row is one histogram line.
type Row struct {
	Key int64
	// Count is the raw count of Key.
	Count uint64
	// Value is the displayed value, Count or the running total.
	Value   uint64
	Percent stats.Value
	Width   int
}

// ScaleWidth returns floor(raw·maxWidth/max). A zero max or width gives 0.
func ScaleWidth(raw, max uint64, maxWidth int) int {
	if max == 0 || maxWidth <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(raw, uint64(maxWidth))
	if hi >= max {
		return math.MaxInt
	}
	q, _ := bits.Div64(hi, lo, max)
	return clampInt(q)
}

// Scaler maps counts of one tally to bar widths and percentages.
type Scaler struct {
	cumulative bool
	maxWidth   int
	total      uint64
	max        uint64
}

// NewScaler prepares scaling for t. In cumulative mode bars are scaled
// against the grand total, otherwise against the largest count.
func NewScaler(t *tally.Tally, cfg Config) *Scaler {
	s := &Scaler{
		cumulative: cfg.Cumulative,
		maxWidth:   cfg.MaxWidth,
		total:      t.Total(),
		max:        t.MaxCount(),
	}
	if s.cumulative {
		s.max = s.total
	}
	return s
}

// MaxValue is the value drawn at full width.
func (s *Scaler) MaxValue() uint64 {
	return s.max
}

// Width returns the bar length of a displayed value.
func (s *Scaler) Width(v uint64) int {
	if s.maxWidth == 0 {
		return clampInt(v)
	}
	return ScaleWidth(v, s.max, s.maxWidth)
}

// Percent is v as a share of the total.
func (s *Scaler) Percent(v uint64) stats.Value {
	if s.total == 0 {
		return stats.Undefined
	}
	return stats.Defined(float64(v) / float64(s.total) * 100)
}

// Rows returns one row per key of t, ascending.
func (s *Scaler) Rows(t *tally.Tally) []Row {
	keys := t.Keys()
	rows := make([]Row, 0, len(keys))
	var running uint64
	for _, k := range keys {
		n := t.Count(k)
		running += n
		v := n
		if s.cumulative {
			v = running
		}
		rows = append(rows, Row{
			Key:     k,
			Count:   n,
			Value:   v,
			Percent: s.Percent(v),
			Width:   s.Width(v),
		})
	}
	return rows
}

// Total returns the grand total row, scaled with the same max as the body.
func (s *Scaler) Total() Row {
	return Row{
		Count:   s.total,
		Value:   s.total,
		Percent: s.Percent(s.total),
		Width:   s.Width(s.total),
	}
}

func clampInt(v uint64) int {
	if v > math.MaxInt {
		return math.MaxInt
	}
	return int(v)
}
