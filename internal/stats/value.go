package stats

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// UndefinedText is printed for statistics that have no value.
const UndefinedText = "undefined"

// Value is the result of a statistic that may be undefined, e.g. the mean
// of no data or the geometric mean of data containing zero.
type Value struct {
	v  float64
	ok bool
}

// Undefined is the zero Value.
var Undefined = Value{}

// Defined wraps a computed statistic.
func Defined(v float64) Value {
	return Value{v: v, ok: true}
}

// Get returns the value and whether it is defined.
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// IsDefined reports whether the statistic has a value.
func (v Value) IsDefined() bool {
	return v.ok
}

// Format renders the value with at most digits decimals, trailing zeros
// trimmed.
func (v Value) Format(digits int) string {
	if !v.ok {
		return UndefinedText
	}
	scale := math.Pow(10, float64(digits))
	return humanize.FtoaWithDigits(math.Round(v.v*scale)/scale, digits)
}

func (v Value) String() string {
	return v.Format(4)
}

// FormatKeys joins integer keys for display, "undefined" when empty.
func FormatKeys(keys []int64) string {
	if len(keys) == 0 {
		return UndefinedText
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strconv.FormatInt(k, 10)
	}
	return strings.Join(parts, ", ")
}
