package generators

import (
	"context"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/statlab/internal/distributions"
	statmath "github.com/inferloop/statlab/internal/utils/math"
	"github.com/inferloop/statlab/internal/validation/tests"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

func newTestGenerator() *SampleGenerator {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return NewSampleGenerator(nil, logger)
}

func TestGenerateIsReproducible(t *testing.T) {
	g := newTestGenerator()
	req := GenerationRequest{
		Family:     "normal",
		Parameters: models.DistributionParameters{"mean": 10, "std": 2},
		Size:       50,
		Seed:       42,
	}

	first, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Values, second.Values)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, uint64(42), first.Seed)
	assert.Len(t, first.Values, 50)

	req.Seed = 43
	third, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.Values, third.Values)
}

func TestGenerateAssignsSeed(t *testing.T) {
	g := newTestGenerator()
	sample, err := g.Generate(context.Background(), GenerationRequest{
		Family:     "exponential",
		Parameters: models.DistributionParameters{"lambda": 1},
		Size:       5,
	})
	require.NoError(t, err)
	assert.NotZero(t, sample.Seed)
	assert.Equal(t, "exponential", sample.Family)
}

func TestDrawMatchesPopulationMoments(t *testing.T) {
	cases := []struct {
		dist distributions.Distribution
		mean float64
		tol  float64
	}{
		{distributions.Normal{Mean: 10, Std: 2}, 10, 0.1},
		{distributions.Uniform{A: -1, B: 3}, 1, 0.05},
		{distributions.Exponential{Lambda: 2}, 0.5, 0.03},
		{distributions.Poisson{Lambda: 4}, 4, 0.1},
		{distributions.Gamma{Shape: 2, Scale: 3}, 6, 0.2},
		{distributions.Beta{Alpha: 2, Beta: 5}, 2.0 / 7.0, 0.01},
	}

	for _, tc := range cases {
		t.Run(string(tc.dist.Family()), func(t *testing.T) {
			values, err := Draw(context.Background(), tc.dist, 20000, NewSource(7))
			require.NoError(t, err)

			mean, err := statmath.Mean(values)
			require.NoError(t, err)
			assert.InDelta(t, tc.mean, mean, tc.tol)
		})
	}
}

func TestDrawRespectsSupport(t *testing.T) {
	values, err := Draw(context.Background(), distributions.Poisson{Lambda: 3}, 500, NewSource(1))
	require.NoError(t, err)
	for _, v := range values {
		assert.Equal(t, math.Floor(v), v)
		assert.GreaterOrEqual(t, v, 0.0)
	}

	values, err = Draw(context.Background(), distributions.Beta{Alpha: 0.5, Beta: 0.5}, 500, NewSource(2))
	require.NoError(t, err)
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestGeneratedNormalSampleFitsItsDistribution(t *testing.T) {
	dist := distributions.Normal{Mean: 0, Std: 1}
	values, err := Draw(context.Background(), dist, 2000, NewSource(99))
	require.NoError(t, err)

	result, err := tests.KolmogorovSmirnovTest(values, dist, 0.05)
	require.NoError(t, err)
	assert.Less(t, result.Statistic, 0.06)
}

func TestGenerateValidation(t *testing.T) {
	g := NewSampleGenerator(&GeneratorConfig{MaxSize: 100}, nil)
	ctx := context.Background()

	_, err := g.Generate(ctx, GenerationRequest{Family: "normal", Parameters: models.DistributionParameters{"mean": 0, "std": 1}, Size: 0})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)

	_, err = g.Generate(ctx, GenerationRequest{Family: "normal", Parameters: models.DistributionParameters{"mean": 0, "std": 1}, Size: 101})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)

	_, err = g.Generate(ctx, GenerationRequest{Family: "cauchy", Size: 10})
	assert.ErrorIs(t, err, errors.ErrUnsupportedDistribution)

	_, err = g.Generate(ctx, GenerationRequest{Family: "gamma", Parameters: models.DistributionParameters{"shape": 2}, Size: 10})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)

	_, err = g.Generate(ctx, GenerationRequest{Family: "beta", Parameters: models.DistributionParameters{"alpha": -1, "beta": 2}, Size: 10})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}

func TestDrawHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Draw(ctx, distributions.Normal{Mean: 0, Std: 1}, 10, NewSource(1))
	assert.ErrorIs(t, err, context.Canceled)
}
