package algo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGini tests the Gini coefficient calculation.
func TestGini(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
		delta    float64
	}{
		{
			name:     "empty slice",
			values:   []float64{},
			expected: 0.0,
			delta:    0.001,
		},
		{
			name:     "perfect equality",
			values:   []float64{1, 1, 1, 1},
			expected: 0.0,
			delta:    0.001,
		},
		{
			name:     "perfect inequality",
			values:   []float64{0, 0, 0, 10},
			expected: 0.75,
			delta:    0.001,
		},
		{
			name:     "moderate inequality",
			values:   []float64{1, 2, 3, 4},
			expected: 0.25,
			delta:    0.001,
		},
		{
			name:     "unsorted input",
			values:   []float64{4, 1, 3, 2},
			expected: 0.25,
			delta:    0.001,
		},
		{
			name:     "single value",
			values:   []float64{5},
			expected: 0.0,
			delta:    0.001,
		},
		{
			name:     "all zeros",
			values:   []float64{0, 0, 0},
			expected: 0.0,
			delta:    0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Gini(tt.values)
			assert.LessOrEqual(t, math.Abs(result-tt.expected), tt.delta)
		})
	}
}

func TestGiniDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_ = Gini(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		p        float64
		expected float64
	}{
		{"empty", nil, 0.5, 0},
		{"single", []float64{7}, 0.9, 7},
		{"median even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"median odd", []float64{5, 1, 3}, 0.5, 3},
		{"p90 interpolated", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
		{"p0 is min", []float64{4, 2, 8}, 0, 2},
		{"p100 is max", []float64{4, 2, 8}, 1, 8},
		{"p above range clamps", []float64{4, 2, 8}, 1.5, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Percentile(tt.values, tt.p), 1e-9)
		})
	}
}

func TestMeanStdDevCoV(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 5.0, Mean(values), 1e-9)
	assert.InDelta(t, 2.0, StdDev(values), 1e-9)
	assert.InDelta(t, 0.4, CoefficientOfVariation(values), 1e-9)

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, CoefficientOfVariation([]float64{0, 0}))
	assert.Equal(t, 0.0, CoefficientOfVariation([]float64{3, 3, 3}))
}

func TestEntropy(t *testing.T) {
	assert.Equal(t, 0.0, Entropy(nil))
	assert.Equal(t, 0.0, Entropy([]float64{10}))
	assert.InDelta(t, 1.0, Entropy([]float64{5, 5}), 1e-9)
	assert.InDelta(t, 2.0, Entropy([]float64{1, 1, 1, 1}), 1e-9)
	assert.InDelta(t, 1.0, Entropy([]float64{3, 0, 3}), 1e-9)
}

func TestClampAndRatios(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-1))
	assert.Equal(t, 1.0, Clamp01(2))
	assert.Equal(t, 0.0, Clamp01(math.NaN()))
	assert.Equal(t, 0.5, Clamp01(0.5))
	assert.Equal(t, 100.0, Clamp(120, 0, 100))
	assert.Equal(t, 0.0, SafeRatio(1, 0))
	assert.Equal(t, 0.25, SafeRatio(1, 4))
}

func TestLogNormalize(t *testing.T) {
	assert.Equal(t, 0.0, LogNormalize(5, 0))
	assert.Equal(t, 0.0, LogNormalize(0, 10))
	assert.InDelta(t, 1.0, LogNormalize(10, 10), 1e-9)
	assert.Less(t, LogNormalize(5, 10), 1.0)
	assert.Greater(t, LogNormalize(5, 10), 0.5)
}

// FuzzPercentile checks that interpolated percentiles stay within the sample range.
func FuzzPercentile(f *testing.F) {
	f.Add(1.0, 2.0, 3.0, 0.5)
	f.Add(10.0, -4.0, 0.0, 0.9)
	f.Add(0.0, 0.0, 0.0, 0.0)

	f.Fuzz(func(t *testing.T, a, b, c, p float64) {
		for _, v := range []float64{a, b, c, p} {
			if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1e12 {
				t.Skip()
			}
		}
		values := []float64{a, b, c}
		got := Percentile(values, p)
		lo := math.Min(a, math.Min(b, c))
		hi := math.Max(a, math.Max(b, c))
		if got < lo-1e-6 || got > hi+1e-6 {
			t.Fatalf("percentile %v of %v = %v outside [%v,%v]", p, values, got, lo, hi)
		}
	})
}
