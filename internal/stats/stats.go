// Package stats consolidates the derived-statistics arithmetic shared by all
// report and chart code: percentage change, Pearson correlation, and ratios,
// with degenerate inputs reported as errors instead of fabricated numbers.
package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrDegenerateBaseline: percentage change over a zero or absent
	// baseline is undefined. Callers render a sentinel such as "n/a".
	ErrDegenerateBaseline = errors.New("stats: degenerate baseline")
	// ErrInsufficientVariance: correlation over a constant series is
	// undefined.
	ErrInsufficientVariance = errors.New("stats: insufficient variance")
	// ErrInsufficientData: too few paired samples, or the series are not
	// index-aligned.
	ErrInsufficientData = errors.New("stats: insufficient data")
)

// minCorrelationSamples guards against meaningless coefficients over two or
// three points.
const minCorrelationSamples = 4

// PercentChange returns (current-baseline)/baseline*100.
func PercentChange(baseline, current float64) (float64, error) {
	if baseline == 0 || math.IsNaN(baseline) {
		return 0, ErrDegenerateBaseline
	}
	return (current - baseline) / baseline * 100, nil
}

// Correlation computes the Pearson correlation coefficient over two
// index-aligned series. Realignment by key is the caller's job; mismatched
// lengths are rejected, not repaired.
func Correlation(a, b []float64) (float64, error) {
	if len(a) != len(b) || len(a) < minCorrelationSamples {
		return 0, ErrInsufficientData
	}
	if stat.Variance(a, nil) == 0 || stat.Variance(b, nil) == 0 {
		return 0, ErrInsufficientVariance
	}
	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) {
		return 0, ErrInsufficientVariance
	}
	return r, nil
}

// Ratio returns num/denom, rejecting a zero denominator.
func Ratio(num, denom float64) (float64, error) {
	if denom == 0 || math.IsNaN(denom) {
		return 0, ErrDegenerateBaseline
	}
	return num / denom, nil
}

// MissRate returns misses as a percentage of references.
func MissRate(misses, references float64) (float64, error) {
	r, err := Ratio(misses, references)
	if err != nil {
		return 0, err
	}
	return r * 100, nil
}

// InterpretCorrelation buckets a coefficient the way the analysis reports
// phrase it: positive, negative, or weak at the conventional 0.5 boundary.
func InterpretCorrelation(r float64) string {
	switch {
	case r > 0.5:
		return "positive"
	case r < -0.5:
		return "negative"
	}
	return "weak"
}
