package inference

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

func TestWaldProportionSymmetric(t *testing.T) {
	ci, err := ProportionConfidenceInterval(50, 100, 0.95, ProportionOptions{Method: Wald})
	require.NoError(t, err)

	assert.Equal(t, 0.5, ci.Proportion)
	assert.InDelta(t, 0.5-ci.Lower, ci.Upper-0.5, 1e-12)
	assert.InDelta(t, 0.402, ci.Lower, 1e-12)
	assert.InDelta(t, 0.598, ci.Upper, 1e-12)
	assert.GreaterOrEqual(t, ci.Lower, 0.0)
	assert.LessOrEqual(t, ci.Upper, 1.0)
}

func TestWilsonProportion(t *testing.T) {
	ci, err := ProportionConfidenceInterval(8, 20, 0.95, ProportionOptions{Method: Wilson})
	require.NoError(t, err)

	assert.InDelta(t, 0.2188039674141927, ci.Lower, 1e-12)
	assert.InDelta(t, 0.613422057684794, ci.Upper, 1e-12)
	assert.Equal(t, 0.4, ci.PointEstimate)
	assert.Equal(t, "Wilson score", ci.Method)
}

func TestProportionClampsToUnitInterval(t *testing.T) {
	ci, err := ProportionConfidenceInterval(1, 40, 0.99, ProportionOptions{Method: Wald})
	require.NoError(t, err)
	assert.Equal(t, 0.0, ci.Lower)

	ci, err = ProportionConfidenceInterval(40, 40, 0.95, ProportionOptions{Method: Wilson})
	require.NoError(t, err)
	assert.LessOrEqual(t, ci.Upper, 1.0)

	left, err := ProportionConfidenceInterval(30, 100, 0.95, ProportionOptions{Tail: models.LeftTailed})
	require.NoError(t, err)
	assert.Equal(t, 0.0, left.Lower)
	assert.Equal(t, 1.645, left.CriticalValue)

	right, err := ProportionConfidenceInterval(30, 100, 0.95, ProportionOptions{Tail: models.RightTailed})
	require.NoError(t, err)
	assert.Equal(t, 1.0, right.Upper)
}

func TestProportionValidation(t *testing.T) {
	cases := []struct{ x, n int }{{1, 0}, {-1, 10}, {11, 10}}
	for _, c := range cases {
		_, err := ProportionConfidenceInterval(c.x, c.n, 0.95, ProportionOptions{})
		assert.ErrorIs(t, err, errors.ErrInvalidParameter, "x=%d n=%d", c.x, c.n)
	}

	_, err := ProportionConfidenceInterval(5, 10, 1.2, ProportionOptions{})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)

	_, err = ProportionConfidenceInterval(5, 10, 0.95, ProportionOptions{Method: "exact"})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}

func TestTwoProportionWald(t *testing.T) {
	ci, err := TwoProportionConfidenceInterval(60, 100, 45, 100, 0.95, TwoProportionOptions{})
	require.NoError(t, err)

	assert.InDelta(t, 0.15, ci.PointEstimate, 1e-12)
	assert.InDelta(t, ci.Upper-ci.PointEstimate, ci.PointEstimate-ci.Lower, 1e-12)
	assert.Equal(t, 0.6, ci.Proportion)
	assert.Equal(t, 60, ci.Successes)
	assert.Equal(t, 100, ci.Trials)
	require.NotNil(t, ci.Proportion2)
	assert.Equal(t, 0.45, *ci.Proportion2)
	assert.Equal(t, 45, *ci.Successes2)
	assert.Equal(t, 100, *ci.Trials2)
}

func TestTwoProportionKeepsSamplesApart(t *testing.T) {
	ci, err := TwoProportionConfidenceInterval(0, 40, 12, 80, 0.95, TwoProportionOptions{})
	require.NoError(t, err)

	body, err := json.Marshal(ci)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &fields))
	assert.Equal(t, float64(0), fields["successes"])
	assert.Equal(t, float64(40), fields["trials"])
	assert.Equal(t, float64(12), fields["successes2"])
	assert.Equal(t, float64(80), fields["trials2"])
	assert.Equal(t, 0.15, fields["proportion2"])

	single, err := ProportionConfidenceInterval(45, 100, 0.95, ProportionOptions{})
	require.NoError(t, err)
	body, err = json.Marshal(single)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "trials2")
}

func TestTwoProportionContinuityCorrected(t *testing.T) {
	ci, err := TwoProportionConfidenceInterval(3, 10, 1, 10, 0.95, TwoProportionOptions{Method: ContinuityCorrected})
	require.NoError(t, err)

	// (3.5/10) - (1.5/10)
	assert.InDelta(t, 0.2, ci.PointEstimate, 1e-12)
	assert.GreaterOrEqual(t, ci.Lower, -1.0)
	assert.LessOrEqual(t, ci.Upper, 1.0)
}

func TestTwoProportionClamps(t *testing.T) {
	ci, err := TwoProportionConfidenceInterval(10, 10, 0, 10, 0.99, TwoProportionOptions{Method: ContinuityCorrected})
	require.NoError(t, err)
	assert.LessOrEqual(t, ci.Upper, 1.0)

	left, err := TwoProportionConfidenceInterval(4, 10, 5, 10, 0.95, TwoProportionOptions{Tail: models.LeftTailed})
	require.NoError(t, err)
	assert.Equal(t, -1.0, left.Lower)

	_, err = TwoProportionConfidenceInterval(4, 10, 11, 10, 0.95, TwoProportionOptions{})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}
