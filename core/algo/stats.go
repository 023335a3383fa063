// Package algo has the shared statistics and ranking helpers used by the scorers.
package algo

import (
	"math"
	"sort"
)

// Clamp01 limits v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp limits v to [lo,hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SafeRatio returns num/den, or 0 when den is 0.
func SafeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Sum returns the sum of values.
func Sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := Mean(values)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(n))
}

// CoefficientOfVariation returns stddev/mean, or 0 when the mean is 0.
func CoefficientOfVariation(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return StdDev(values) / mean
}

// Percentile returns the p-th percentile (p in [0,1]) using linear interpolation
// between order statistics: rank = p*(n-1). The input is not modified.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

// Median is the 50th percentile.
func Median(values []float64) float64 {
	return Percentile(values, 0.5)
}

func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := Clamp01(p) * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (rank-float64(lo))*(sorted[hi]-sorted[lo])
}

// Entropy returns the Shannon entropy in bits of a set of non-negative weights.
// Weights are normalized by their sum; zero weights contribute nothing.
func Entropy(weights []float64) float64 {
	total := Sum(weights)
	if total <= 0 {
		return 0
	}
	var h float64
	for _, w := range weights {
		if w <= 0 {
			continue
		}
		p := w / total
		h -= p * math.Log2(p)
	}
	return h
}

// Gini calculates the Gini coefficient for a set of values.
// It ranges from 0 (perfect equality) to 1 (perfect inequality) and uses the
// sorted form 2*sum(i*x_i)/(n*sum(x)) - (n+1)/n with 1-based i.
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var total, weighted float64
	for i, v := range sorted {
		total += v
		weighted += float64(i+1) * v
	}
	if total == 0 {
		return 0
	}

	g := 2*weighted/(float64(n)*total) - float64(n+1)/float64(n)
	return Clamp01(g)
}

// LogNormalize scales v against max on a log1p curve so heavy tails do not
// flatten everything else. Returns 0 when max is 0.
func LogNormalize(v, maxValue float64) float64 {
	if maxValue <= 0 || v <= 0 {
		return 0
	}
	return Clamp01(math.Log1p(v) / math.Log1p(maxValue))
}
