// Package stats computes descriptive statistics directly from a tally,
// weighting every key by its count. The expanded sample list is never built.
package stats

import (
	"math"
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"hist/internal/tally"
)

// divPrecision is the number of decimal places kept by the harmonic mean
// divisions.
const divPrecision = 34

// ErrPercentileRange is returned for a percentile outside [0, 1].
var ErrPercentileRange = errors.New("percentile must be within [0, 1]")

// DefaultPercentiles is the percentile set printed with --percentiles.
var DefaultPercentiles = []float64{0.05, 0.25, 0.50, 0.75, 0.95}

// weighted returns the keys that carry weight, ascending.
func weighted(t *tally.Tally) []int64 {
	keys := t.Keys()
	out := keys[:0]
	for _, k := range keys {
		if t.Count(k) > 0 {
			out = append(out, k)
		}
	}
	return out
}

// Min returns the smallest observed key.
func Min(t *tally.Tally) Value {
	keys := weighted(t)
	if len(keys) == 0 {
		return Undefined
	}
	return Defined(float64(keys[0]))
}

// Max returns the largest observed key.
func Max(t *tally.Tally) Value {
	keys := weighted(t)
	if len(keys) == 0 {
		return Undefined
	}
	return Defined(float64(keys[len(keys)-1]))
}

// Mean is the count weighted arithmetic mean.
func Mean(t *tally.Tally) Value {
	total := t.Total()
	if total == 0 {
		return Undefined
	}
	var sum float64
	for _, k := range weighted(t) {
		sum += float64(k) * float64(t.Count(k))
	}
	return Defined(sum / float64(total))
}

// Median walks the distinct keys with a running count. With an even total
// and the running count landing exactly on the half, the result is the mean
// of that key and the next observed key.
func Median(t *tally.Tally) Value {
	total := t.Total()
	if total == 0 {
		return Undefined
	}
	half := total / 2
	keys := weighted(t)
	var cum uint64
	for i, k := range keys {
		cum += t.Count(k)
		if cum > half {
			return Defined(float64(k))
		}
		if total%2 == 0 && cum == half {
			// cum < total, so a next key exists
			return Defined((float64(k) + float64(keys[i+1])) / 2)
		}
	}
	return Undefined
}

// Mode returns every key sharing the highest count, ascending. It is empty
// when no key has a positive count.
func Mode(t *tally.Tally) []int64 {
	max := t.MaxCount()
	if max == 0 {
		return nil
	}
	var modes []int64
	for _, k := range t.Keys() {
		if t.Count(k) == max {
			modes = append(modes, k)
		}
	}
	return modes
}

// positive reports whether the tally has data and every observed key is > 0.
func positive(t *tally.Tally) bool {
	if t.Total() == 0 {
		return false
	}
	for _, k := range weighted(t) {
		if k <= 0 {
			return false
		}
	}
	return true
}

// GeometricMean is exp(Σ count·ln(key) / total). Undefined unless every
// observed key is positive.
func GeometricMean(t *tally.Tally) Value {
	if !positive(t) {
		return Undefined
	}
	var logSum float64
	for _, k := range weighted(t) {
		logSum += math.Log(float64(k)) * float64(t.Count(k))
	}
	return Defined(math.Exp(logSum / float64(t.Total())))
}

// HarmonicMean is total / Σ(count/key), evaluated in decimal arithmetic.
// Undefined unless every observed key is positive.
func HarmonicMean(t *tally.Tally) Value {
	if !positive(t) {
		return Undefined
	}
	sum := decimal.Zero
	for _, k := range weighted(t) {
		sum = sum.Add(fromUint(t.Count(k)).DivRound(decimal.NewFromInt(k), divPrecision))
	}
	h, _ := fromUint(t.Total()).DivRound(sum, divPrecision).Float64()
	return Defined(h)
}

// Percentile returns the nearest-rank percentile: the first key whose
// running count reaches p·total.
func Percentile(t *tally.Tally, p float64) (Value, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Undefined, errors.Wrapf(ErrPercentileRange, "got %v", p)
	}
	total := t.Total()
	if total == 0 {
		return Undefined, nil
	}
	target := p * float64(total)
	var cum uint64
	for _, k := range weighted(t) {
		cum += t.Count(k)
		if float64(cum) >= target {
			return Defined(float64(k)), nil
		}
	}
	return Undefined, nil
}

func fromUint(n uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
}
