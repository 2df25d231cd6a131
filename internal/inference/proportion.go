package inference

import (
	"math"

	statmath "github.com/inferloop/statlab/internal/utils/math"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

// ProportionMethod selects the single-proportion interval.
type ProportionMethod string

const (
	Wald   ProportionMethod = "wald"
	Wilson ProportionMethod = "wilson"
)

// TwoProportionMethod selects the difference-of-proportions interval.
type TwoProportionMethod string

const (
	TwoProportionWald   TwoProportionMethod = "wald"
	ContinuityCorrected TwoProportionMethod = "continuity-corrected"
)

// ProportionOptions controls ProportionConfidenceInterval.
type ProportionOptions struct {
	Method ProportionMethod
	Tail   models.TailType
}

// TwoProportionOptions controls TwoProportionConfidenceInterval.
type TwoProportionOptions struct {
	Method TwoProportionMethod
	Tail   models.TailType
}

func validateCounts(successes, trials int, suffix string) error {
	if trials <= 0 {
		return errors.NewInvalidParameterError("trials"+suffix, trials, "must be positive")
	}
	if successes < 0 {
		return errors.NewInvalidParameterError("successes"+suffix, successes, "must not be negative")
	}
	if successes > trials {
		return errors.NewInvalidParameterError("successes"+suffix, successes, "must not exceed trials")
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// clampedBounds places center ± margin by tail and clamps both sides to [lo, hi]; the
// unbounded side of a one-sided interval becomes the range bound.
func clampedBounds(center, margin float64, tail models.TailType, lo, hi float64) (float64, float64) {
	lower, upper := bounds(center, margin, tail)
	return clamp(lower, lo, hi), clamp(upper, lo, hi)
}

// ProportionConfidenceInterval computes a Wald or Wilson score interval for x/n, clamped
// to [0, 1].
func ProportionConfidenceInterval(successes, trials int, level float64, opts ProportionOptions) (*models.ProportionIntervalResult, error) {
	if err := validateCounts(successes, trials, ""); err != nil {
		return nil, err
	}
	if err := validateLevel(level); err != nil {
		return nil, err
	}
	tail, err := normalizeTail(opts.Tail)
	if err != nil {
		return nil, err
	}

	z, err := statmath.ZCriticalValue(level, tail)
	if err != nil {
		return nil, err
	}

	n := float64(trials)
	p := float64(successes) / n
	se := math.Sqrt(p * (1 - p) / n)

	center, margin := p, z*se
	label := "Wald (normal approximation)"

	switch opts.Method {
	case Wald, "":
	case Wilson:
		z2 := z * z
		center = (float64(successes) + z2/2) / (n + z2)
		margin = z * math.Sqrt(p*(1-p)*n+z2/4) / (n + z2)
		label = "Wilson score"
	default:
		return nil, errors.NewInvalidParameterError("method", opts.Method, "expected wald or wilson")
	}

	lower, upper := clampedBounds(center, margin, tail, 0, 1)

	return &models.ProportionIntervalResult{
		ConfidenceIntervalResult: models.ConfidenceIntervalResult{
			Lower:           lower,
			Upper:           upper,
			PointEstimate:   p,
			MarginOfError:   margin,
			CriticalValue:   z,
			StandardError:   se,
			ConfidenceLevel: level,
			Tail:            tail,
			Method:          label,
		},
		Proportion: p,
		Successes:  successes,
		Trials:     trials,
	}, nil
}

// TwoProportionConfidenceInterval computes an interval for p1 - p2, clamped to [-1, 1].
// The continuity-corrected variant works on (x+0.5)/n adjusted proportions.
func TwoProportionConfidenceInterval(x1, n1, x2, n2 int, level float64, opts TwoProportionOptions) (*models.ProportionIntervalResult, error) {
	if err := validateCounts(x1, n1, "1"); err != nil {
		return nil, err
	}
	if err := validateCounts(x2, n2, "2"); err != nil {
		return nil, err
	}
	if err := validateLevel(level); err != nil {
		return nil, err
	}
	tail, err := normalizeTail(opts.Tail)
	if err != nil {
		return nil, err
	}

	z, err := statmath.ZCriticalValue(level, tail)
	if err != nil {
		return nil, err
	}

	p1 := float64(x1) / float64(n1)
	p2 := float64(x2) / float64(n2)
	a1, a2 := p1, p2
	label := "Wald difference of proportions"

	switch opts.Method {
	case TwoProportionWald, "":
	case ContinuityCorrected:
		a1 = clamp((float64(x1)+0.5)/float64(n1), 0, 1)
		a2 = clamp((float64(x2)+0.5)/float64(n2), 0, 1)
		label = "Continuity-corrected difference of proportions"
	default:
		return nil, errors.NewInvalidParameterError("method", opts.Method, "expected wald or continuity-corrected")
	}

	diff := a1 - a2
	se := math.Sqrt(a1*(1-a1)/float64(n1) + a2*(1-a2)/float64(n2))
	margin := z * se
	lower, upper := clampedBounds(diff, margin, tail, -1, 1)

	return &models.ProportionIntervalResult{
		ConfidenceIntervalResult: models.ConfidenceIntervalResult{
			Lower:           lower,
			Upper:           upper,
			PointEstimate:   diff,
			MarginOfError:   margin,
			CriticalValue:   z,
			StandardError:   se,
			ConfidenceLevel: level,
			Tail:            tail,
			Method:          label,
		},
		Proportion:  p1,
		Successes:   x1,
		Trials:      n1,
		Proportion2: &p2,
		Successes2:  &x2,
		Trials2:     &n2,
	}, nil
}
