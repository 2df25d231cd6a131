package tests

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/statlab/internal/distributions"
	"github.com/inferloop/statlab/pkg/constants"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

func observedTotal(bins []models.FrequencyBin) (int, float64) {
	observed, expected := 0, 0.0
	for _, b := range bins {
		observed += b.Observed
		expected += b.Expected
	}
	return observed, expected
}

func TestChiSquareMergesSparseBins(t *testing.T) {
	result, err := ChiSquareTest(normalish, distributions.Normal{Mean: 4.7, Std: 0.5}, 0.05, ChiSquareOptions{Bins: 5})
	require.NoError(t, err)

	// expected counts 2.98, 4.81, 5.89, 4.16, 2.15 collapse into two bins
	require.Len(t, result.Bins, 2)
	assert.Equal(t, 8, result.Bins[0].Observed)
	assert.Equal(t, 12, result.Bins[1].Observed)
	assert.InDelta(t, 7.794776349895908, result.Bins[0].Expected, 1e-6)
	assert.True(t, math.IsInf(result.Bins[0].Lower, -1))
	assert.True(t, math.IsInf(result.Bins[1].Upper, 1))

	assert.InDelta(t, 0.008853916265029686, result.Statistic, 1e-6)
	assert.Equal(t, 1, result.DegreesOfFreedom)
	assert.InDelta(t, 3.8414588206924236, result.CriticalValue, 1e-6)
	assert.InDelta(t, 0.9250334927801903, result.PValue, 1e-5)
	assert.False(t, result.IsReject)
	assert.Equal(t, RuleStatisticExceedsCritical, result.RejectionRule)
}

func TestChiSquareObservedSumsToSampleSize(t *testing.T) {
	cases := []struct {
		name string
		data []float64
		dist distributions.Distribution
		opts ChiSquareOptions
	}{
		{"normal default bins", normalish, distributions.Normal{Mean: 4.7, Std: 0.5}, ChiSquareOptions{}},
		{"exponential many bins", skewed, distributions.Exponential{Lambda: 1}, ChiSquareOptions{Bins: 12}},
		{"uniform", []float64{0.1, 0.4, 0.35, 0.8, 0.95, 0.6, 0.2, 0.55, 0.7, 0.05}, distributions.Uniform{A: 0, B: 1}, ChiSquareOptions{Bins: 3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ChiSquareTest(tc.data, tc.dist, 0.05, tc.opts)
			require.NoError(t, err)

			observed, expected := observedTotal(result.Bins)
			assert.Equal(t, len(tc.data), observed)
			assert.InDelta(t, float64(len(tc.data)), expected, 1e-9)
			assert.GreaterOrEqual(t, result.DegreesOfFreedom, 1)
		})
	}
}

func TestChiSquareEstimatedParamsOverride(t *testing.T) {
	data := make([]float64, 200)
	for i := range data {
		data[i] = float64(i%20) + 0.5
	}
	dist := distributions.Uniform{A: 0, B: 20}

	byFamily, err := ChiSquareTest(data, dist, 0.05, ChiSquareOptions{Bins: 10})
	require.NoError(t, err)
	overridden, err := ChiSquareTest(data, dist, 0.05, ChiSquareOptions{Bins: 10, EstimatedParams: 3})
	require.NoError(t, err)

	require.Len(t, byFamily.Bins, 10)
	assert.Equal(t, 8, byFamily.DegreesOfFreedom)
	assert.Equal(t, 6, overridden.DegreesOfFreedom)
}

func TestChiSquareValidation(t *testing.T) {
	normal := distributions.Normal{Mean: 0, Std: 1}

	_, err := ChiSquareTest([]float64{1, 1, 1, 1, 1}, normal, 0.05, ChiSquareOptions{})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)

	_, err = ChiSquareTest(normalish, normal, 0.05, ChiSquareOptions{Bins: -1})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)

	_, err = ChiSquareTest(normalish, distributions.Normal{Mean: 0, Std: -1}, 0.05, ChiSquareOptions{})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}

func TestMergeSparseBinsDirections(t *testing.T) {
	bins := []models.FrequencyBin{
		{Lower: 0, Upper: 1, Observed: 1, Expected: 2},
		{Lower: 1, Upper: 2, Observed: 6, Expected: 6},
		{Lower: 2, Upper: 3, Observed: 7, Expected: 8},
		{Lower: 3, Upper: 4, Observed: 2, Expected: 1},
	}

	merged := mergeSparseBins(bins)

	require.Len(t, merged, 2)
	assert.Equal(t, models.FrequencyBin{Lower: 0, Upper: 2, Observed: 7, Expected: 8}, merged[0])
	assert.Equal(t, models.FrequencyBin{Lower: 2, Upper: 4, Observed: 9, Expected: 9}, merged[1])
}

func TestChiSquareResultJSON(t *testing.T) {
	result, err := ChiSquareTest(normalish, distributions.Normal{Mean: 4.7, Std: 0.5}, 0.05, ChiSquareOptions{Bins: 5})
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"lower":"-Infinity"`)
	assert.Contains(t, string(raw), `"upper":"Infinity"`)
	assert.Contains(t, string(raw), `"rejectionRule":"statistic-exceeds-critical"`)
}

func TestChiSquareRejectsOversizedBinCount(t *testing.T) {
	normal := distributions.Normal{Mean: 4.7, Std: 0.5}

	_, err := ChiSquareTest(normalish, normal, 0.05, ChiSquareOptions{Bins: 1 << 50})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)

	_, err = ChiSquareTest(normalish, normal, 0.05, ChiSquareOptions{Bins: constants.MaxBins + 1})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}

func TestChiSquarePoissonEdgesAreHalfOpen(t *testing.T) {
	// edges fall on 2 and 4; values sitting on an edge belong to the bin above it
	data := []float64{0, 1, 2, 2, 3, 3, 4, 4, 5, 6}
	dist := distributions.Poisson{Lambda: 3}

	bins, err := buildFrequencyBins(data, dist, 3)
	require.NoError(t, err)
	require.Len(t, bins, 3)

	e3 := math.Exp(-3)
	pBelow2 := 4 * e3  // P(X <= 1)
	pBelow4 := 13 * e3 // P(X <= 3)

	assert.Equal(t, 2, bins[0].Observed)
	assert.Equal(t, 4, bins[1].Observed)
	assert.Equal(t, 4, bins[2].Observed)

	assert.InDelta(t, 10*pBelow2, bins[0].Expected, 1e-8)
	assert.InDelta(t, 10*(pBelow4-pBelow2), bins[1].Expected, 1e-8)
	assert.InDelta(t, 10*(1-pBelow4), bins[2].Expected, 1e-8)
}
