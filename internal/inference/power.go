package inference

import (
	"fmt"
	"iter"
	"math"
	"slices"

	statmath "github.com/inferloop/statlab/internal/utils/math"
	"github.com/inferloop/statlab/pkg/constants"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

func validatePowerInputs(sigma float64, n, minN int, alpha float64) error {
	if !(sigma > 0) {
		return errors.NewInvalidParameterError("sigma", sigma, "must be positive")
	}
	if n < minN {
		return errors.NewInvalidParameterError("sampleSize", n, "too small for the test")
	}
	return validateAlpha(alpha)
}

// powerAt evaluates the rejection probability for a shift delta given the critical
// magnitude c and the standard error.
func powerAt(delta, se, c float64, tail models.TailType) float64 {
	shift := delta / se
	switch tail {
	case models.RightTailed:
		return statmath.NormalCDF(-c + shift)
	case models.LeftTailed:
		return statmath.NormalCDF(-c - shift)
	default:
		return statmath.NormalCDF(-c+shift) + statmath.NormalCDF(-c-shift)
	}
}

// ZTestPower is the probability that a z-test of mu0 rejects when the true mean is mu1.
func ZTestPower(mu1, mu0, sigma float64, n int, alpha float64, tail models.TailType) (float64, error) {
	if err := validatePowerInputs(sigma, n, 1, alpha); err != nil {
		return 0, err
	}
	tail, err := normalizeTail(tail)
	if err != nil {
		return 0, err
	}

	c, err := statmath.ZCriticalValue(1-alpha, tail)
	if err != nil {
		return 0, err
	}
	return powerAt(mu1-mu0, sigma/math.Sqrt(float64(n)), c, tail), nil
}

// TTestPower approximates the t-test power by evaluating the noncentral t with the
// normal CDF at the t critical value (df = n-1).
func TTestPower(mu1, mu0, sigma float64, n int, alpha float64, tail models.TailType) (float64, error) {
	if err := validatePowerInputs(sigma, n, 2, alpha); err != nil {
		return 0, err
	}
	tail, err := normalizeTail(tail)
	if err != nil {
		return 0, err
	}

	c, err := statmath.TCriticalValue(1-alpha, n-1, tail)
	if err != nil {
		return 0, err
	}
	return powerAt(mu1-mu0, sigma/math.Sqrt(float64(n)), c, tail), nil
}

// SampleSizeForPower returns the smallest n with ((zα+zβ)·σ/δ)² <= n, where zα splits
// alpha across both tails for two-tailed tests.
func SampleSizeForPower(mu1, mu0, sigma, alpha, beta float64, tail models.TailType) (int, error) {
	if !(sigma > 0) {
		return 0, errors.NewInvalidParameterError("sigma", sigma, "must be positive")
	}
	if err := validateAlpha(alpha); err != nil {
		return 0, err
	}
	if !(beta > 0 && beta < 1) {
		return 0, errors.NewInvalidParameterError("beta", beta, "must lie in (0, 1)")
	}
	delta := mu1 - mu0
	if delta == 0 {
		return 0, errors.NewInvalidParameterError("effect", delta, "mu1 must differ from mu0")
	}
	tail, err := normalizeTail(tail)
	if err != nil {
		return 0, err
	}

	zAlpha, err := statmath.ZCriticalValue(1-alpha, tail)
	if err != nil {
		return 0, err
	}
	zBeta := statmath.NormalQuantile(1 - beta)

	n := math.Pow((zAlpha+zBeta)*sigma/delta, 2)
	return int(math.Ceil(n)), nil
}

// SampleSizeForMargin returns ceil((z·σ/E)²) for a two-sided margin of error E.
func SampleSizeForMargin(sigma, margin, confidence float64) (int, error) {
	if !(sigma > 0) {
		return 0, errors.NewInvalidParameterError("sigma", sigma, "must be positive")
	}
	if !(margin > 0) {
		return 0, errors.NewInvalidParameterError("marginOfError", margin, "must be positive")
	}

	z, err := statmath.ZCriticalValue(confidence, models.TwoTailed)
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(math.Pow(z*sigma/margin, 2))), nil
}

// SampleSizeForProportionMargin returns ceil(z²·p(1-p)/E²). Use p = 0.5 when nothing is
// known about the proportion.
func SampleSizeForProportionMargin(p, margin, confidence float64) (int, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, errors.NewInvalidParameterError("proportionEstimate", p, "must lie in [0, 1]")
	}
	if !(margin > 0) {
		return 0, errors.NewInvalidParameterError("marginOfError", margin, "must be positive")
	}

	z, err := statmath.ZCriticalValue(confidence, models.TwoTailed)
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(z * z * p * (1 - p) / (margin * margin))), nil
}

// PowerCurveSpec describes a power function sampled over a range of true means. Nil
// Start/End default to Mu0 ∓ 3σ and a zero Step to σ/10.
type PowerCurveSpec struct {
	Test  statmath.Sampling
	Mu0   float64
	Sigma float64
	N     int
	Alpha float64
	Tail  models.TailType
	Start *float64
	End   *float64
	Step  float64
}

func (s PowerCurveSpec) resolve() (start, end, step float64, err error) {
	start = s.Mu0 - constants.DefaultPowerCurveSigma*s.Sigma
	end = s.Mu0 + constants.DefaultPowerCurveSigma*s.Sigma
	step = s.Sigma / constants.DefaultPowerCurveSteps

	if s.Start != nil {
		start = *s.Start
	}
	if s.End != nil {
		end = *s.End
	}
	if s.Step != 0 {
		step = s.Step
	}

	if !(step > 0) {
		return 0, 0, 0, errors.NewInvalidParameterError("step", step, "must be positive")
	}
	if end < start {
		return 0, 0, 0, errors.NewInvalidParameterError("end", end, "must not precede start")
	}
	return start, end, step, nil
}

// PowerCurve returns a finite, restartable sequence of power points. Each mu is computed
// as start + i·step so long curves do not accumulate rounding drift.
func PowerCurve(spec PowerCurveSpec) (iter.Seq[models.PowerPoint], error) {
	power := ZTestPower
	if spec.Test == statmath.SamplingT {
		power = TTestPower
	}

	// Validate once so iteration itself cannot fail.
	if _, err := power(spec.Mu0, spec.Mu0, spec.Sigma, spec.N, spec.Alpha, spec.Tail); err != nil {
		return nil, err
	}
	start, end, step, err := spec.resolve()
	if err != nil {
		return nil, err
	}

	points := math.Floor((end-start)/step+1e-9) + 1
	if math.IsNaN(points) || points > constants.MaxPowerCurvePoints {
		return nil, errors.NewInvalidParameterError("step", step,
			fmt.Sprintf("curve would exceed %d points", constants.MaxPowerCurvePoints))
	}
	count := int(points)

	return func(yield func(models.PowerPoint) bool) {
		for i := 0; i < count; i++ {
			mu := start + float64(i)*step
			p, _ := power(mu, spec.Mu0, spec.Sigma, spec.N, spec.Alpha, spec.Tail)
			if !yield(models.PowerPoint{Mu: mu, Power: p}) {
				return
			}
		}
	}, nil
}

// GeneratePowerFunctionData collects PowerCurve into a slice.
func GeneratePowerFunctionData(spec PowerCurveSpec) ([]models.PowerPoint, error) {
	seq, err := PowerCurve(spec)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}
