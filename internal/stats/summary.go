package stats

import (
	"hist/internal/tally"
)

// Quantile is one percentile of a summary.
type Quantile struct {
	P     float64
	Value Value
}

// Summary holds every statistic printed above the histogram.
type Summary struct {
	Count         uint64
	Min           Value
	Max           Value
	Median        Value
	Mode          []int64
	Mean          Value
	GeometricMean Value
	HarmonicMean  Value
	Percentiles   []Quantile
}

// Summarize computes all statistics of t. An error is only returned for a
// percentile outside [0, 1].
func Summarize(t *tally.Tally, percentiles []float64) (Summary, error) {
	s := Summary{
		Count:         t.Total(),
		Min:           Min(t),
		Max:           Max(t),
		Median:        Median(t),
		Mode:          Mode(t),
		Mean:          Mean(t),
		GeometricMean: GeometricMean(t),
		HarmonicMean:  HarmonicMean(t),
	}
	for _, p := range percentiles {
		v, err := Percentile(t, p)
		if err != nil {
			return Summary{}, err
		}
		s.Percentiles = append(s.Percentiles, Quantile{P: p, Value: v})
	}
	return s, nil
}
