package inference

import (
	"math"

	statmath "github.com/inferloop/statlab/internal/utils/math"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

func validateAlpha(alpha float64) error {
	if !(alpha > 0 && alpha < 1) {
		return errors.NewInvalidParameterError("alpha", alpha, "must lie in (0, 1)")
	}
	return nil
}

// signedCritical orients the positive critical magnitude by tail.
func signedCritical(c float64, tail models.TailType) float64 {
	if tail == models.LeftTailed {
		return -c
	}
	return c
}

// rejects compares the statistic with the critical value using strict inequalities.
func rejects(stat, critical float64, tail models.TailType) bool {
	switch tail {
	case models.LeftTailed:
		return stat < critical
	case models.RightTailed:
		return stat > critical
	default:
		return math.Abs(stat) > critical
	}
}

// pValue maps a statistic onto a tail probability under cdf.
func pValue(stat float64, tail models.TailType, cdf func(float64) float64) float64 {
	switch tail {
	case models.LeftTailed:
		return cdf(stat)
	case models.RightTailed:
		return 1 - cdf(stat)
	default:
		return 2 * (1 - cdf(math.Abs(stat)))
	}
}

// ZTest runs a one-sample z-test of mean(data) = mu0 with known sigma.
func ZTest(data []float64, mu0, sigma, alpha float64, tail models.TailType) (*models.TestResult, error) {
	if len(data) == 0 {
		return nil, errors.NewEmptyDataError("z-test")
	}

	mean, _ := statmath.Mean(data)
	return ZTestFromSummary(mean, sigma, len(data), mu0, alpha, tail)
}

// ZTestFromSummary runs the z-test from a sample mean, a known sigma and n.
func ZTestFromSummary(mean, sigma float64, n int, mu0, alpha float64, tail models.TailType) (*models.TestResult, error) {
	if n < 1 {
		return nil, errors.NewInvalidParameterError("sampleSize", n, "must be at least 1")
	}
	if !(sigma > 0) {
		return nil, errors.NewInvalidParameterError("sigma", sigma, "must be positive")
	}
	if err := validateAlpha(alpha); err != nil {
		return nil, err
	}
	tail, err := normalizeTail(tail)
	if err != nil {
		return nil, err
	}

	se := sigma / math.Sqrt(float64(n))
	stat := (mean - mu0) / se

	c, err := statmath.ZCriticalValue(1-alpha, tail)
	if err != nil {
		return nil, err
	}
	critical := signedCritical(c, tail)

	zc, err := statmath.ZCriticalValue(1-alpha, models.TwoTailed)
	if err != nil {
		return nil, err
	}
	ci := buildInterval(mean, se, zc, 0, 1-alpha, models.TwoTailed, MethodZKnownVariance)

	return &models.TestResult{
		Statistic:          stat,
		CriticalValue:      critical,
		PValue:             pValue(stat, tail, statmath.NormalCDF),
		Rejected:           rejects(stat, critical, tail),
		ConfidenceInterval: *ci,
		Method:             "One-sample Z-test",
		SampleMean:         mean,
		StandardError:      se,
		Hypothesized:       mu0,
		Alpha:              alpha,
		Tail:               tail,
		SampleSize:         n,
	}, nil
}

// TTest runs a one-sample t-test of mean(data) = mu0 using the sample standard deviation.
func TTest(data []float64, mu0, alpha float64, tail models.TailType) (*models.TestResult, error) {
	if len(data) == 0 {
		return nil, errors.NewEmptyDataError("t-test")
	}
	if len(data) < 2 {
		return nil, errors.NewInvalidParameterError("sampleSize", len(data), "t-test needs at least 2 observations")
	}

	mean, _ := statmath.Mean(data)
	sd, _ := statmath.StdDev(data)
	return TTestFromSummary(mean, sd, len(data), mu0, alpha, tail)
}

// TTestFromSummary runs the t-test from a sample mean, sample standard deviation and n.
func TTestFromSummary(mean, sd float64, n int, mu0, alpha float64, tail models.TailType) (*models.TestResult, error) {
	if n < 2 {
		return nil, errors.NewInvalidParameterError("sampleSize", n, "t-test needs at least 2 observations")
	}
	if !(sd > 0) {
		return nil, errors.NewInvalidParameterError("standardDeviation", sd, "must be positive")
	}
	if err := validateAlpha(alpha); err != nil {
		return nil, err
	}
	tail, err := normalizeTail(tail)
	if err != nil {
		return nil, err
	}

	df := n - 1
	se := sd / math.Sqrt(float64(n))
	stat := (mean - mu0) / se

	c, err := statmath.TCriticalValue(1-alpha, df, tail)
	if err != nil {
		return nil, err
	}
	critical := signedCritical(c, tail)

	tc, err := statmath.TCriticalValue(1-alpha, df, models.TwoTailed)
	if err != nil {
		return nil, err
	}
	ci := buildInterval(mean, se, tc, float64(df), 1-alpha, models.TwoTailed, MethodTDistribution)

	cdf := func(x float64) float64 { return statmath.TCDF(x, float64(df)) }

	return &models.TestResult{
		Statistic:          stat,
		CriticalValue:      critical,
		PValue:             pValue(stat, tail, cdf),
		Rejected:           rejects(stat, critical, tail),
		ConfidenceInterval: *ci,
		Method:             "One-sample t-test",
		SampleMean:         mean,
		StandardError:      se,
		DegreesOfFreedom:   float64(df),
		Hypothesized:       mu0,
		Alpha:              alpha,
		Tail:               tail,
		SampleSize:         n,
	}, nil
}
