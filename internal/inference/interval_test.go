package inference

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

var sample = []float64{2.1, 2.5, 3.0, 3.3, 2.8, 3.9, 2.2, 3.1, 2.7, 3.4}

func TestConfidenceIntervalTDistribution(t *testing.T) {
	ci, err := ConfidenceInterval(sample, 0.95, MeanIntervalOptions{})
	require.NoError(t, err)

	assert.Equal(t, MethodTDistribution, ci.Method)
	assert.Equal(t, 2.262, ci.CriticalValue)
	assert.Equal(t, 9.0, ci.DegreesOfFreedom)
	assert.InDelta(t, 2.5010207022914592, ci.Lower, 1e-12)
	assert.InDelta(t, 3.2989792977085397, ci.Upper, 1e-12)
	assert.Equal(t, models.TwoTailed, ci.Tail)
}

func TestConfidenceIntervalSymmetricAndMonotone(t *testing.T) {
	prevWidth := 0.0
	for _, level := range []float64{0.80, 0.90, 0.95, 0.99} {
		ci, err := ConfidenceInterval(sample, level, MeanIntervalOptions{Tail: models.TwoTailed})
		require.NoError(t, err)

		assert.InDelta(t, ci.Upper-ci.PointEstimate, ci.PointEstimate-ci.Lower, 1e-12)
		assert.Greater(t, ci.Width(), prevWidth, "level=%v", level)
		prevWidth = ci.Width()
	}
}

func TestConfidenceIntervalKnownVariance(t *testing.T) {
	ci, err := ConfidenceInterval(sample, 0.95, MeanIntervalOptions{KnownVariance: true, PopulationVariance: 0.25})
	require.NoError(t, err)

	assert.Equal(t, MethodZKnownVariance, ci.Method)
	assert.Equal(t, 1.96, ci.CriticalValue)
	assert.InDelta(t, 0.5/math.Sqrt(10), ci.StandardError, 1e-12)

	_, err = ConfidenceInterval(sample, 0.95, MeanIntervalOptions{KnownVariance: true})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}

func TestConfidenceIntervalLargeSampleUsesZ(t *testing.T) {
	large := make([]float64, 40)
	for i := range large {
		large[i] = float64(i % 7)
	}

	ci, err := ConfidenceInterval(large, 0.95, MeanIntervalOptions{})
	require.NoError(t, err)
	assert.Equal(t, MethodZLargeSample, ci.Method)
	assert.Equal(t, 1.96, ci.CriticalValue)

	ci, err = ConfidenceInterval(large, 0.95, MeanIntervalOptions{IsNormal: true})
	require.NoError(t, err)
	assert.Equal(t, MethodTDistribution, ci.Method)
	assert.Equal(t, 2.042, ci.CriticalValue) // df 39 snaps down to the df 30 row
}

func TestConfidenceIntervalOneSidedBounds(t *testing.T) {
	left, err := ConfidenceInterval(sample, 0.95, MeanIntervalOptions{Tail: models.LeftTailed})
	require.NoError(t, err)
	assert.True(t, math.IsInf(left.Lower, -1))
	assert.Equal(t, 1.833, left.CriticalValue)
	assert.InDelta(t, left.PointEstimate+left.MarginOfError, left.Upper, 1e-12)

	right, err := ConfidenceInterval(sample, 0.95, MeanIntervalOptions{Tail: models.RightTailed})
	require.NoError(t, err)
	assert.True(t, math.IsInf(right.Upper, 1))
	assert.InDelta(t, right.PointEstimate-right.MarginOfError, right.Lower, 1e-12)
}

func TestConfidenceIntervalJSONInfinity(t *testing.T) {
	right, err := ConfidenceInterval(sample, 0.95, MeanIntervalOptions{Tail: models.RightTailed})
	require.NoError(t, err)

	raw, err := json.Marshal(right)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Infinity", decoded["upper"])
	assert.InDelta(t, right.Lower, decoded["lower"], 1e-12)
	assert.Equal(t, "right-tailed", decoded["tailType"])
}

func TestConfidenceIntervalValidation(t *testing.T) {
	_, err := ConfidenceInterval(nil, 0.95, MeanIntervalOptions{})
	assert.ErrorIs(t, err, errors.ErrEmptyData)

	for _, level := range []float64{0, 1, 1.5, -0.1} {
		_, err = ConfidenceInterval(sample, level, MeanIntervalOptions{})
		assert.ErrorIs(t, err, errors.ErrInvalidParameter)
	}

	_, err = ConfidenceInterval(sample, 0.95, MeanIntervalOptions{Tail: "sideways"})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}

var (
	groupA = []float64{5.1, 4.9, 5.6, 5.8, 6.0, 5.3}
	groupB = []float64{4.2, 4.8, 4.4, 5.0, 4.6}
)

func TestTwoSamplePooled(t *testing.T) {
	ci, err := TwoSampleConfidenceInterval(groupA, groupB, 0.95, TwoSampleOptions{Method: Pooled})
	require.NoError(t, err)

	assert.InDelta(t, 0.85, ci.PointEstimate, 1e-12)
	assert.Equal(t, 9.0, ci.DegreesOfFreedom)
	assert.InDelta(t, 0.2296938380959734, ci.StandardError, 1e-12)
	assert.InDelta(t, 0.33043253822690777, ci.Lower, 1e-12)
	assert.InDelta(t, 1.3695674617730915, ci.Upper, 1e-12)
}

func TestTwoSampleWelch(t *testing.T) {
	ci, err := TwoSampleConfidenceInterval(groupA, groupB, 0.95, TwoSampleOptions{Method: Welch})
	require.NoError(t, err)

	assert.Equal(t, 8.0, ci.DegreesOfFreedom) // 8.93 floored
	assert.Equal(t, 2.306, ci.CriticalValue)
	assert.InDelta(t, 0.22323380867004286, ci.StandardError, 1e-12)
	assert.Equal(t, MethodWelch, ci.Method)
}

func TestTwoSamplePaired(t *testing.T) {
	before := []float64{10, 12, 9, 11, 13}
	after := []float64{9, 11, 9, 10, 11}

	ci, err := TwoSampleConfidenceInterval(before, after, 0.95, TwoSampleOptions{Method: Paired})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ci.PointEstimate, 1e-12)
	assert.Equal(t, 4.0, ci.DegreesOfFreedom)
	assert.Equal(t, 2.776, ci.CriticalValue)

	_, err = TwoSampleConfidenceInterval(groupA, groupB, 0.95, TwoSampleOptions{Method: Paired})
	assert.ErrorIs(t, err, errors.ErrLengthMismatch)
}

func TestTwoSampleValidation(t *testing.T) {
	_, err := TwoSampleConfidenceInterval(nil, groupB, 0.95, TwoSampleOptions{})
	assert.ErrorIs(t, err, errors.ErrEmptyData)

	_, err = TwoSampleConfidenceInterval(groupA, groupB, 0.95, TwoSampleOptions{Method: "bootstrap"})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)

	_, err = TwoSampleConfidenceInterval([]float64{1}, groupB, 0.95, TwoSampleOptions{Method: Pooled})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}
