package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChurn(t *testing.T) {
	fc := FileChange{Path: "a.go", Insertions: 3, Deletions: 4}
	assert.Equal(t, 7, fc.Churn())

	c := &CommitRecord{Insertions: 10, Deletions: 0}
	assert.Equal(t, 10, c.Churn())
}

func TestBusinessHoursContains(t *testing.T) {
	b := BusinessHours{Start: 8, End: 18}
	assert.False(t, b.Contains(7))
	assert.True(t, b.Contains(8))
	assert.True(t, b.Contains(17))
	assert.False(t, b.Contains(18))
}

func TestDefaultAnalysisOptions(t *testing.T) {
	opts := DefaultAnalysisOptions()

	assert.Equal(t, "America/Chicago", opts.TrendsTimezone)
	assert.Equal(t, time.Local, opts.AuthorLocation)
	assert.Equal(t, BusinessHours{Start: 8, End: 18}, opts.BusinessHours)
	assert.Equal(t, 14, opts.RetouchWindow)
	assert.Equal(t, 0.8, opts.BusFactorTarget)

	sum := 0.0
	for _, factor := range AllRiskFactors {
		w, ok := opts.RiskWeights[factor]
		assert.True(t, ok, "missing weight for %s", factor)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestDefaultRiskWeightsAreFresh(t *testing.T) {
	a := GetDefaultRiskWeights()
	a[FactorChurn] = 0
	b := GetDefaultRiskWeights()
	assert.Equal(t, 0.35, b[FactorChurn])
}
