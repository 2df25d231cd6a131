package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/statlab/internal/distributions"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

var normalish = []float64{
	4.2, 5.1, 3.8, 4.9, 5.5, 4.4, 5.0, 4.7, 3.9, 5.3,
	4.6, 4.8, 5.2, 4.1, 4.5, 5.7, 4.3, 4.0, 5.4, 4.95,
}

var skewed = []float64{
	0.01, 0.02, 0.03, 0.05, 0.08, 0.1, 0.12, 0.15, 0.2, 0.25,
	0.3, 0.4, 0.5, 0.7, 0.9, 1.2, 1.6, 2.2, 3.5, 6.0,
}

func TestKolmogorovSmirnov(t *testing.T) {
	result, err := KolmogorovSmirnovTest(normalish, distributions.Normal{Mean: 4.7, Std: 0.5}, 0.05)
	require.NoError(t, err)

	assert.Equal(t, TypeKolmogorovSmirnov, result.TestType)
	assert.Equal(t, "normal", result.Distribution)
	assert.InDelta(t, 0.10542169234808907, result.Statistic, 1e-6)
	assert.InDelta(t, 0.30410524493997143, result.CriticalValue, 1e-12)
	assert.InDelta(t, 0.979338503884503, result.PValue, 1e-5)
	assert.False(t, result.IsReject)
	assert.Equal(t, RuleStatisticExceedsCritical, result.RejectionRule)
	assert.Equal(t, 20, result.SampleSize)
	assert.Contains(t, result.Interpretation, "Fail to reject")
}

func TestKolmogorovSmirnovShiftInvariance(t *testing.T) {
	shifted := make([]float64, len(normalish))
	for i, x := range normalish {
		shifted[i] = x + 10
	}

	base, err := KolmogorovSmirnovTest(normalish, distributions.Normal{Mean: 4.7, Std: 0.5}, 0.05)
	require.NoError(t, err)
	moved, err := KolmogorovSmirnovTest(shifted, distributions.Normal{Mean: 14.7, Std: 0.5}, 0.05)
	require.NoError(t, err)

	assert.InDelta(t, base.Statistic, moved.Statistic, 1e-9)
	assert.InDelta(t, base.PValue, moved.PValue, 1e-9)
}

func TestKolmogorovSmirnovRejectsWrongDistribution(t *testing.T) {
	result, err := KolmogorovSmirnovTest(normalish, distributions.Normal{Mean: 0, Std: 1}, 0.05)
	require.NoError(t, err)

	assert.True(t, result.IsReject)
	assert.Greater(t, result.Statistic, 0.99)
	assert.Less(t, result.PValue, 1e-10)
	assert.Contains(t, result.Interpretation, "Reject null hypothesis")
}

func TestKolmogorovSmirnovPValueSmallLambda(t *testing.T) {
	assert.Equal(t, 1.0, calculateKSPValue(0.01, 100))
	assert.Equal(t, 1.0, calculateKSPValue(0, 50))
	p := calculateKSPValue(0.5, 100)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.Less(t, p, 1e-15)
}

func TestKolmogorovSmirnovTies(t *testing.T) {
	data := []float64{1, 1, 1, 2, 2, 3, 3, 3, 3, 4}
	result, err := KolmogorovSmirnovTest(data, distributions.Uniform{A: 0, B: 4}, 0.05)
	require.NoError(t, err)

	// at x=3 the empirical CDF jumps from 0.5 to 0.9 against F(3)=0.75
	assert.InDelta(t, 0.25, result.Statistic, 1e-12)
}

func TestAndersonDarlingNormalSample(t *testing.T) {
	result, err := AndersonDarlingTest(normalish, distributions.Normal{Mean: 4.7, Std: 0.5}, 0.05)
	require.NoError(t, err)

	assert.InDelta(t, 0.16565879948066353, result.Statistic, 1e-6)
	assert.InDelta(t, 0.17280283520826717, result.AdjustedStatistic, 1e-6)
	assert.InDelta(t, 0.9286017895318666, result.PValue, 1e-5)
	assert.InDelta(t, 0.752, result.CriticalValue, 1e-12)
	assert.False(t, result.IsReject)
	assert.Equal(t, RulePValueBelowAlpha, result.RejectionRule)
}

func TestAndersonDarlingRejectsSkewedSample(t *testing.T) {
	result, err := AndersonDarlingTest(skewed, distributions.Normal{Mean: 1, Std: 1}, 0.05)
	require.NoError(t, err)

	assert.InDelta(t, 2.635986436569297, result.Statistic, 1e-6)
	assert.True(t, result.IsReject)
	assert.Less(t, result.PValue, 1e-5)
}

func TestAndersonDarlingNormalOnly(t *testing.T) {
	_, err := AndersonDarlingTest(skewed, distributions.Exponential{Lambda: 1}, 0.05)
	assert.ErrorIs(t, err, errors.ErrUnsupportedDistribution)

	_, err = AndersonDarlingTest([]float64{2, 2, 2, 2, 2}, distributions.Normal{Mean: 2, Std: 1}, 0.05)
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}

func TestAndersonDarlingCriticalValueInterpolation(t *testing.T) {
	assert.Equal(t, 1.035, getCriticalValueForAlpha(normalCriticalValues, 0.005))
	assert.Equal(t, 0.631, getCriticalValueForAlpha(normalCriticalValues, 0.2))
	assert.InDelta(t, 0.6915, getCriticalValueForAlpha(normalCriticalValues, 0.075), 1e-12)
	assert.InDelta(t, 0.873, getCriticalValueForAlpha(normalCriticalValues, 0.025), 1e-12)
}

func TestAndersonDarlingPValuePieces(t *testing.T) {
	for _, a := range []float64{0.05, 0.19, 0.2, 0.3, 0.34, 0.5, 0.6, 1.0, 3.0} {
		p := calculatePValueNormality(a)
		assert.GreaterOrEqual(t, p, 0.0, "A=%v", a)
		assert.LessOrEqual(t, p, 1.0, "A=%v", a)
	}
	assert.Greater(t, calculatePValueNormality(0.3), calculatePValueNormality(0.7))
}

func TestJarqueBera(t *testing.T) {
	result, err := JarqueBeraTest(normalish, 0.05)
	require.NoError(t, err)

	assert.InDelta(t, 0.9612700931570993, result.Statistic, 1e-9)
	assert.InDelta(t, 0.6183905602766724, result.PValue, 1e-6)
	assert.InDelta(t, 5.99146454710899, result.CriticalValue, 1e-6)
	assert.Equal(t, 2, result.DegreesOfFreedom)
	assert.False(t, result.IsReject)

	result, err = JarqueBeraTest(skewed, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 39.930744176077134, result.Statistic, 1e-9)
	assert.True(t, result.IsReject)
}

func TestJarqueBeraConstantSample(t *testing.T) {
	result, err := JarqueBeraTest([]float64{3, 3, 3, 3, 3, 3}, 0.05)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Statistic)
	assert.Equal(t, 1.0, result.PValue)
	assert.False(t, result.IsReject)
}

func TestSampleSizeRequirements(t *testing.T) {
	small := []float64{1, 2, 3, 4}
	normal := distributions.Normal{Mean: 2.5, Std: 1}

	checks := map[string]func(data []float64) error{
		"ks": func(data []float64) error {
			_, err := KolmogorovSmirnovTest(data, normal, 0.05)
			return err
		},
		"chi-square": func(data []float64) error {
			_, err := ChiSquareTest(data, normal, 0.05, ChiSquareOptions{})
			return err
		},
		"anderson-darling": func(data []float64) error {
			_, err := AndersonDarlingTest(data, normal, 0.05)
			return err
		},
		"jarque-bera": func(data []float64) error {
			_, err := JarqueBeraTest(data, 0.05)
			return err
		},
	}

	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, check(nil), errors.ErrEmptyData)
			assert.ErrorIs(t, check(small), errors.ErrInvalidParameter)
		})
	}
}

func TestAlphaValidation(t *testing.T) {
	for _, alpha := range []float64{0, 1, -0.1, 1.5} {
		_, err := KolmogorovSmirnovTest(normalish, distributions.Normal{Mean: 4.7, Std: 0.5}, alpha)
		assert.ErrorIs(t, err, errors.ErrInvalidParameter, "alpha=%v", alpha)
	}
}

func TestExecuteDispatchesVariants(t *testing.T) {
	normal := distributions.Normal{Mean: 4.7, Std: 0.5}

	for _, test := range []GoFTest{KS{}, ChiSquare{Options: ChiSquareOptions{Bins: 5}}, AndersonDarling{}, JarqueBera{}} {
		result, err := Execute(normalish, test, normal, 0.05)
		require.NoError(t, err, test.Type())
		assert.Equal(t, test.Type(), result.TestType)
		assert.Equal(t, 0.05, result.SignificanceLevel)
		assert.Equal(t, len(normalish), result.SampleSize)
	}

	_, err := Execute(normalish, JarqueBera{}, distributions.Exponential{Lambda: 1}, 0.05)
	assert.ErrorIs(t, err, errors.ErrUnsupportedDistribution)

	_, err = Execute(normalish, nil, normal, 0.05)
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}

func TestExecuteGoFTestFitsWhenParametersMissing(t *testing.T) {
	result, err := ExecuteGoFTest(normalish, "ks", "normal", 0.05, nil, ChiSquareOptions{})
	require.NoError(t, err)

	assert.InDelta(t, 4.7175, result.Parameters["mean"], 1e-12)
	assert.InDelta(t, 0.5452694288147834, result.Parameters["std"], 1e-12)
	assert.InDelta(t, 0.0810730708934857, result.Statistic, 1e-6)
	assert.False(t, result.IsReject)
}

func TestExecuteGoFTestUsesGivenParameters(t *testing.T) {
	params := models.DistributionParameters{"mean": 4.7, "std": 0.5}
	result, err := ExecuteGoFTest(normalish, "Kolmogorov-Smirnov", "Normal", 0.05, params, ChiSquareOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 0.10542169234808907, result.Statistic, 1e-6)

	_, err = ExecuteGoFTest(normalish, "ks", "normal", 0.05, models.DistributionParameters{"mean": 4.7}, ChiSquareOptions{})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}

func TestExecuteGoFTestRejectsUnknownNames(t *testing.T) {
	_, err := ExecuteGoFTest(normalish, "shapiro-wilk", "normal", 0.05, nil, ChiSquareOptions{})
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)

	_, err = ExecuteGoFTest(normalish, "ks", "weibull", 0.05, nil, ChiSquareOptions{})
	assert.ErrorIs(t, err, errors.ErrUnsupportedDistribution)

	_, err = ExecuteGoFTest(normalish, "jb", "exponential", 0.05, nil, ChiSquareOptions{})
	assert.ErrorIs(t, err, errors.ErrUnsupportedDistribution)

	_, err = ExecuteGoFTest(normalish, "anderson-darling", "gamma", 0.05, nil, ChiSquareOptions{})
	assert.ErrorIs(t, err, errors.ErrUnsupportedDistribution)
}

func TestRejectionPoliciesDiffer(t *testing.T) {
	normal := distributions.Normal{Mean: 4.7, Std: 0.5}

	ks, err := Execute(normalish, KS{}, normal, 0.05)
	require.NoError(t, err)
	chi, err := Execute(normalish, ChiSquare{}, normal, 0.05)
	require.NoError(t, err)
	ad, err := Execute(normalish, AndersonDarling{}, normal, 0.05)
	require.NoError(t, err)
	jb, err := Execute(normalish, JarqueBera{}, normal, 0.05)
	require.NoError(t, err)

	assert.Equal(t, RuleStatisticExceedsCritical, ks.RejectionRule)
	assert.Equal(t, RuleStatisticExceedsCritical, chi.RejectionRule)
	assert.Equal(t, RulePValueBelowAlpha, ad.RejectionRule)
	assert.Equal(t, RulePValueBelowAlpha, jb.RejectionRule)
}
