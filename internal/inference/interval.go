// Package inference computes confidence intervals, one-sample hypothesis tests and
// power / sample-size figures.
package inference

import (
	"math"

	statmath "github.com/inferloop/statlab/internal/utils/math"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

// Method labels reported on mean intervals.
const (
	MethodZKnownVariance = "Z-distribution (known variance)"
	MethodTDistribution  = "t-distribution (df = n-1)"
	MethodZLargeSample   = "Z-distribution (large-sample approximation, unknown variance)"
	MethodPooled         = "Pooled t-interval (df = n1+n2-2)"
	MethodWelch          = "Welch t-interval (Welch-Satterthwaite df)"
	MethodPaired         = "Paired t-interval (df = n-1)"
)

// MeanIntervalOptions controls ConfidenceInterval.
type MeanIntervalOptions struct {
	IsNormal           bool
	KnownVariance      bool
	PopulationVariance float64
	Tail               models.TailType
}

// TwoSampleMethod selects how two sample variances are combined.
type TwoSampleMethod string

const (
	Pooled TwoSampleMethod = "pooled"
	Welch  TwoSampleMethod = "welch"
	Paired TwoSampleMethod = "paired"
)

// TwoSampleOptions controls TwoSampleConfidenceInterval.
type TwoSampleOptions struct {
	Method TwoSampleMethod
	Tail   models.TailType
}

func validateLevel(level float64) error {
	if !(level > 0 && level < 1) {
		return errors.NewInvalidParameterError("confidenceLevel", level, "must lie in (0, 1)")
	}
	return nil
}

func normalizeTail(tail models.TailType) (models.TailType, error) {
	if tail == "" {
		return models.TwoTailed, nil
	}
	return tail, tail.Validate()
}

// bounds places the margin around the estimate according to the tail.
func bounds(estimate, margin float64, tail models.TailType) (float64, float64) {
	switch tail {
	case models.LeftTailed:
		return math.Inf(-1), estimate + margin
	case models.RightTailed:
		return estimate - margin, math.Inf(1)
	default:
		return estimate - margin, estimate + margin
	}
}

func buildInterval(estimate, se, critical, df, level float64, tail models.TailType, method string) *models.ConfidenceIntervalResult {
	margin := critical * se
	lower, upper := bounds(estimate, margin, tail)

	return &models.ConfidenceIntervalResult{
		Lower:            lower,
		Upper:            upper,
		PointEstimate:    estimate,
		MarginOfError:    margin,
		CriticalValue:    critical,
		StandardError:    se,
		DegreesOfFreedom: df,
		ConfidenceLevel:  level,
		Tail:             tail,
		Method:           method,
	}
}

// ConfidenceInterval computes a one-sample interval for the mean. A known variance uses z;
// otherwise normal data or n <= 30 uses t with n-1 degrees of freedom and larger samples
// fall back to the z approximation.
func ConfidenceInterval(data []float64, level float64, opts MeanIntervalOptions) (*models.ConfidenceIntervalResult, error) {
	if len(data) == 0 {
		return nil, errors.NewEmptyDataError("confidence interval")
	}
	if err := validateLevel(level); err != nil {
		return nil, err
	}
	tail, err := normalizeTail(opts.Tail)
	if err != nil {
		return nil, err
	}

	n := len(data)
	mean, _ := statmath.Mean(data)

	if opts.KnownVariance {
		if !(opts.PopulationVariance > 0) {
			return nil, errors.NewInvalidParameterError("populationVariance", opts.PopulationVariance, "must be positive")
		}
		se := math.Sqrt(opts.PopulationVariance / float64(n))
		z, err := statmath.ZCriticalValue(level, tail)
		if err != nil {
			return nil, err
		}
		return buildInterval(mean, se, z, 0, level, tail, MethodZKnownVariance), nil
	}

	sd, err := statmath.StdDev(data)
	if err != nil {
		return nil, err
	}
	se := sd / math.Sqrt(float64(n))

	if opts.IsNormal || n <= 30 {
		df := n - 1
		c, err := statmath.TCriticalValue(level, df, tail)
		if err != nil {
			return nil, err
		}
		return buildInterval(mean, se, c, float64(df), level, tail, MethodTDistribution), nil
	}

	z, err := statmath.ZCriticalValue(level, tail)
	if err != nil {
		return nil, err
	}
	return buildInterval(mean, se, z, 0, level, tail, MethodZLargeSample), nil
}

// TwoSampleConfidenceInterval computes an interval for mean(data1) - mean(data2).
func TwoSampleConfidenceInterval(data1, data2 []float64, level float64, opts TwoSampleOptions) (*models.ConfidenceIntervalResult, error) {
	if len(data1) == 0 || len(data2) == 0 {
		return nil, errors.NewEmptyDataError("two-sample confidence interval")
	}
	if err := validateLevel(level); err != nil {
		return nil, err
	}
	tail, err := normalizeTail(opts.Tail)
	if err != nil {
		return nil, err
	}

	method := opts.Method
	if method == "" {
		method = Welch
	}

	if method == Paired {
		return pairedInterval(data1, data2, level, tail)
	}

	n1, n2 := float64(len(data1)), float64(len(data2))
	v1, err := statmath.SampleVariance(data1)
	if err != nil {
		return nil, err
	}
	v2, err := statmath.SampleVariance(data2)
	if err != nil {
		return nil, err
	}
	mean1, _ := statmath.Mean(data1)
	mean2, _ := statmath.Mean(data2)
	diff := mean1 - mean2

	var (
		se    float64
		df    int
		label string
	)

	switch method {
	case Pooled:
		pooled := ((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2)
		se = math.Sqrt(pooled * (1/n1 + 1/n2))
		df = int(n1 + n2 - 2)
		label = MethodPooled
	case Welch:
		a, b := v1/n1, v2/n2
		se = math.Sqrt(a + b)
		df = welchDegreesOfFreedom(v1, v2, n1, n2)
		label = MethodWelch
	default:
		return nil, errors.NewInvalidParameterError("method", method, "expected pooled, welch or paired")
	}

	c, err := statmath.TCriticalValue(level, df, tail)
	if err != nil {
		return nil, err
	}
	return buildInterval(diff, se, c, float64(df), level, tail, label), nil
}

// welchDegreesOfFreedom is the Welch-Satterthwaite approximation floored to an integer,
// never below 1.
func welchDegreesOfFreedom(v1, v2, n1, n2 float64) int {
	a, b := v1/n1, v2/n2
	den := a*a/(n1-1) + b*b/(n2-1)
	if den == 0 {
		return int(n1 + n2 - 2)
	}

	df := int(math.Floor((a + b) * (a + b) / den))
	if df < 1 {
		df = 1
	}
	return df
}

func pairedInterval(data1, data2 []float64, level float64, tail models.TailType) (*models.ConfidenceIntervalResult, error) {
	if len(data1) != len(data2) {
		return nil, errors.NewLengthMismatchError(len(data1), len(data2))
	}

	diffs := make([]float64, len(data1))
	for i := range data1 {
		diffs[i] = data1[i] - data2[i]
	}

	sd, err := statmath.StdDev(diffs)
	if err != nil {
		return nil, err
	}
	mean, _ := statmath.Mean(diffs)
	se := sd / math.Sqrt(float64(len(diffs)))
	df := len(diffs) - 1

	c, err := statmath.TCriticalValue(level, df, tail)
	if err != nil {
		return nil, err
	}
	return buildInterval(mean, se, c, float64(df), level, tail, MethodPaired), nil
}
