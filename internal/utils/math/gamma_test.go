package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestGammaAtIntegersAndHalf(t *testing.T) {
	factorial := 1.0
	for n := 1; n <= 10; n++ {
		assert.InEpsilon(t, factorial, Gamma(float64(n)), 1e-12, "n=%d", n)
		factorial *= float64(n)
	}

	assert.InEpsilon(t, math.Sqrt(math.Pi), Gamma(0.5), 1e-12)
}

func TestGammaReflection(t *testing.T) {
	for _, x := range []float64{-2.5, -0.5, 0.1, 0.3} {
		want, _ := math.Lgamma(x)
		assert.InEpsilon(t, math.Abs(math.Gamma(x)), math.Abs(Gamma(x)), 1e-10, "x=%v", x)
		assert.InDelta(t, want, LogGamma(x), 1e-10, "x=%v", x)
	}
}

func TestLogGamma(t *testing.T) {
	for _, x := range []float64{0.7, 1, 2.5, 10, 50, 171.5} {
		want, _ := math.Lgamma(x)
		assert.InDelta(t, want, LogGamma(x), 1e-9*math.Max(1, math.Abs(want)), "x=%v", x)
	}
}

func TestRegularizedGammaSeriesAndFraction(t *testing.T) {
	// x < s+1 takes the series branch, the others the continued fraction.
	assert.InDelta(t, 0.1508549639153903, RegularizedGammaP(2.5, 1.0), 1e-12)
	assert.InDelta(t, 0.4729107431344617, RegularizedGammaP(0.5, 0.2), 1e-12)
	assert.InDelta(t, 0.8753479805169189, RegularizedGammaP(3, 5), 1e-12)

	for _, c := range []struct{ s, x float64 }{{2.5, 1}, {3, 5}, {10, 3}, {1, 12}} {
		assert.InDelta(t, 1.0, RegularizedGammaP(c.s, c.x)+RegularizedGammaQ(c.s, c.x), 1e-12)
	}
}

func TestRegularizedGammaEdges(t *testing.T) {
	assert.Equal(t, 0.0, RegularizedGammaP(2, 0))
	assert.Equal(t, 1.0, RegularizedGammaQ(2, 0))
	assert.Equal(t, 1.0, RegularizedGammaP(2, math.Inf(1)))
	assert.Equal(t, 0.0, RegularizedGammaQ(2, math.Inf(1)))
}

func TestIncompleteGammaSums(t *testing.T) {
	for _, c := range []struct{ s, x float64 }{{1.5, 0.5}, {4, 2}, {2, 7}} {
		total := LowerIncompleteGamma(c.s, c.x) + UpperIncompleteGamma(c.s, c.x)
		assert.InEpsilon(t, Gamma(c.s), total, 1e-10)
	}

	// γ(1, x) = 1 - e^{-x}
	assert.InDelta(t, 1-math.Exp(-2), LowerIncompleteGamma(1, 2), 1e-12)
}

func TestChiSquareCDF(t *testing.T) {
	assert.Equal(t, 0.0, ChiSquareCDF(0, 3))
	assert.Equal(t, 0.0, ChiSquareCDF(-1, 3))
	assert.InDelta(t, 0.95, ChiSquareCDF(3.841, 1), 1e-4)
	assert.InDelta(t, 0.95, ChiSquareCDF(5.991, 2), 1e-4)

	for _, df := range []float64{1, 2, 5, 12} {
		ref := distuv.ChiSquared{K: df}
		for _, x := range []float64{0.5, 2, 6, 15} {
			assert.InDelta(t, ref.CDF(x), ChiSquareCDF(x, df), 1e-10, "x=%v df=%v", x, df)
		}
	}
}

func TestChiSquareQuantile(t *testing.T) {
	assert.InDelta(t, 3.8414588, ChiSquareQuantile(0.95, 1), 1e-6)
	assert.InDelta(t, 5.9914645, ChiSquareQuantile(0.95, 2), 1e-6)
	assert.InDelta(t, 18.307038, ChiSquareQuantile(0.95, 10), 1e-5)

	assert.Equal(t, 0.0, ChiSquareQuantile(0, 4))
	assert.True(t, math.IsInf(ChiSquareQuantile(1, 4), 1))

	q := ChiSquareQuantile(0.3, 7)
	assert.InDelta(t, 0.3, ChiSquareCDF(q, 7), 1e-9)
}
