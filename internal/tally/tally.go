// Package tally holds the grouped frequency table built from the input
// observations.
package tally

import (
	"bufio"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const maxLineBytes = 1 << 20

// Tally maps an observed integer to the number of times it was seen.
// It is filled once by Add or Read and only read afterwards.
type Tally struct {
	counts map[int64]uint64
	total  uint64
}

// New returns an empty tally.
func New() *Tally {
	return &Tally{counts: make(map[int64]uint64)}
}

// FromCounts builds a tally from a value -> count map. Zero counts are kept
// as explicit gap keys.
func FromCounts(counts map[int64]uint64) *Tally {
	t := New()
	for v, n := range counts {
		t.AddN(v, n)
	}
	return t
}

// Add records one observation of v.
func (t *Tally) Add(v int64) {
	t.AddN(v, 1)
}

// AddN records n observations of v. AddN(v, 0) inserts v as a gap key.
func (t *Tally) AddN(v int64, n uint64) {
	t.counts[v] += n
	t.total += n
}

// Count returns how often v was observed.
func (t *Tally) Count(v int64) uint64 {
	return t.counts[v]
}

// Has reports whether v is a key, including zero-count gap keys.
func (t *Tally) Has(v int64) bool {
	_, ok := t.counts[v]
	return ok
}

// Len is the number of keys.
func (t *Tally) Len() int {
	return len(t.counts)
}

// Total is the sum of all counts.
func (t *Tally) Total() uint64 {
	return t.total
}

// Keys returns every key in ascending order.
func (t *Tally) Keys() []int64 {
	keys := make([]int64, 0, len(t.counts))
	for k := range t.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// MaxCount returns the largest count of any key.
func (t *Tally) MaxCount() uint64 {
	var max uint64
	for _, n := range t.counts {
		if n > max {
			max = n
		}
	}
	return max
}

// Frequencies returns the distinct count values in ascending order.
func (t *Tally) Frequencies() []uint64 {
	seen := make(map[uint64]struct{}, len(t.counts))
	freqs := make([]uint64, 0, len(t.counts))
	for _, n := range t.counts {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		freqs = append(freqs, n)
	}
	sort.Slice(freqs, func(i, j int) bool { return freqs[i] < freqs[j] })
	return freqs
}

// Bounds returns the smallest and largest key. ok is false for an empty tally.
func (t *Tally) Bounds() (min, max int64, ok bool) {
	for k := range t.counts {
		if !ok {
			min, max, ok = k, k, true
			continue
		}
		if k < min {
			min = k
		}
		if k > max {
			max = k
		}
	}
	return min, max, ok
}

// Span is the number of integers in [min key, max key]; zero when empty.
// It saturates at math.MaxUint64 when the keys cover the whole int64 range.
func (t *Tally) Span() uint64 {
	min, max, ok := t.Bounds()
	if !ok {
		return 0
	}
	d := uint64(max) - uint64(min)
	if d == math.MaxUint64 {
		return d
	}
	return d + 1
}

// FillGaps returns a copy of t where every integer between the smallest and
// largest key is present, missing ones with count 0.
func (t *Tally) FillGaps() *Tally {
	filled := New()
	for k, n := range t.counts {
		filled.AddN(k, n)
	}
	min, max, ok := t.Bounds()
	if !ok {
		return filled
	}
	for k := min; ; k++ {
		if !filled.Has(k) {
			filled.AddN(k, 0)
		}
		if k == max {
			break
		}
	}
	return filled
}

// FromLines tallies already split lines, e.g. the elements of a Redis list.
func FromLines(lines []string) *Tally {
	t := New()
	for _, l := range lines {
		t.Add(ParseInt(l))
	}
	return t
}

// Read tallies r line by line. Every line counts, lines that do not start
// with a number count as 0.
func Read(r io.Reader) (*Tally, error) {
	t := New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		t.Add(ParseInt(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read observations")
	}
	return t, nil
}

// ParseInt returns the leading integer of s after trimming whitespace.
// Digits may be separated by single underscores. Anything that is not a
// number yields 0 and values outside int64 saturate.
func ParseInt(s string) int64 {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	var mag uint64
	overflow := false
	prevDigit := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			if !prevDigit || i+1 >= len(s) || s[i+1] < '0' || s[i+1] > '9' {
				break
			}
			prevDigit = false
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		prevDigit = true
		if overflow {
			continue
		}
		d := uint64(c - '0')
		if mag > (math.MaxUint64-d)/10 {
			overflow = true
			continue
		}
		mag = mag*10 + d
	}

	if neg {
		if overflow || mag > uint64(math.MaxInt64)+1 {
			return math.MinInt64
		}
		return int64(-mag)
	}
	if overflow || mag > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(mag)
}
