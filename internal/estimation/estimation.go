// Package estimation fits distribution families to a sample by maximum likelihood or the
// method of moments. Every estimator is closed form.
package estimation

import (
	"math"
	"strings"

	"github.com/inferloop/statlab/internal/distributions"
	statmath "github.com/inferloop/statlab/internal/utils/math"
	"github.com/inferloop/statlab/pkg/constants"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

// Method names an estimation technique.
type Method string

const (
	MethodMLE Method = "mle"
	MethodMoM Method = "mom"
)

// ParseMethod accepts "mle"/"mom" in any case; empty means MLE.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mle":
		return MethodMLE, nil
	case "mom", "moments":
		return MethodMoM, nil
	default:
		return "", errors.NewInvalidParameterError("method", s, "expected mle or mom")
	}
}

type moments struct {
	mean     float64
	variance float64
	min      float64
	max      float64
}

func sampleMoments(data []float64, operation string) (moments, error) {
	if len(data) == 0 {
		return moments{}, errors.NewEmptyDataError(operation)
	}

	var m moments
	m.mean, _ = statmath.Mean(data)
	m.variance, _ = statmath.Variance(data)
	m.min, _ = statmath.Min(data)
	m.max, _ = statmath.Max(data)
	return m, nil
}

// MLE fits family by maximum likelihood. Gamma and beta use the moment estimators as a
// surrogate.
func MLE(data []float64, family distributions.Family) (distributions.Distribution, error) {
	m, err := sampleMoments(data, "mle")
	if err != nil {
		return nil, err
	}

	switch family {
	case distributions.FamilyUniform:
		if m.min == m.max {
			return nil, errors.NewInvalidParameterError("variance", 0.0, "uniform fit needs a non-degenerate sample")
		}
		return distributions.Uniform{A: m.min, B: m.max}, nil
	case distributions.FamilyNormal,
		distributions.FamilyExponential,
		distributions.FamilyPoisson,
		distributions.FamilyGamma,
		distributions.FamilyBeta:
		return fitShared(m, family, "mle")
	default:
		return nil, errors.NewUnsupportedDistributionError(string(family), "mle")
	}
}

// MoM fits family by matching the first two moments.
func MoM(data []float64, family distributions.Family) (distributions.Distribution, error) {
	m, err := sampleMoments(data, "mom")
	if err != nil {
		return nil, err
	}

	switch family {
	case distributions.FamilyUniform:
		if m.variance == 0 {
			return nil, errors.NewInvalidParameterError("variance", 0.0, "uniform fit needs a non-degenerate sample")
		}
		half := math.Sqrt(12*m.variance) / 2
		return distributions.Uniform{A: m.mean - half, B: m.mean + half}, nil
	case distributions.FamilyNormal,
		distributions.FamilyExponential,
		distributions.FamilyPoisson,
		distributions.FamilyGamma,
		distributions.FamilyBeta:
		return fitShared(m, family, "mom")
	default:
		return nil, errors.NewUnsupportedDistributionError(string(family), "mom")
	}
}

// fitShared covers the families whose two estimators coincide.
func fitShared(m moments, family distributions.Family, operation string) (distributions.Distribution, error) {
	switch family {
	case distributions.FamilyNormal:
		if m.variance == 0 {
			return nil, errors.NewInvalidParameterError("std", 0.0, "normal fit needs a non-degenerate sample")
		}
		return distributions.Normal{Mean: m.mean, Std: math.Sqrt(m.variance)}, nil

	case distributions.FamilyExponential:
		if m.mean <= 0 {
			return nil, errors.NewInvalidParameterError("mean", m.mean, "exponential fit needs a positive mean")
		}
		return distributions.Exponential{Lambda: 1 / m.mean}, nil

	case distributions.FamilyPoisson:
		if m.mean <= 0 {
			return nil, errors.NewInvalidParameterError("mean", m.mean, "poisson fit needs a positive mean")
		}
		return distributions.Poisson{Lambda: m.mean}, nil

	case distributions.FamilyGamma:
		if m.mean <= 0 {
			return nil, errors.NewInvalidParameterError("mean", m.mean, "gamma fit needs a positive mean")
		}
		if m.variance == 0 {
			return nil, errors.NewInvalidParameterError("variance", 0.0, "gamma fit needs a non-zero variance")
		}
		shape := math.Max(m.mean*m.mean/m.variance, constants.GammaShapeFloor)
		return distributions.Gamma{Shape: shape, Scale: m.variance / m.mean}, nil

	case distributions.FamilyBeta:
		if m.variance == 0 {
			return nil, errors.NewInvalidParameterError("variance", 0.0, "beta fit needs a non-zero variance")
		}
		s := m.mean*(1-m.mean)/m.variance - 1
		d := distributions.Beta{Alpha: m.mean * s, Beta: (1 - m.mean) * s}
		if !(d.Alpha > 0) || !(d.Beta > 0) {
			return nil, errors.NewInvalidParameterError("shape", s, "beta fit needs data inside (0, 1) with mean(1-mean) > variance")
		}
		return d, nil
	}

	return nil, errors.NewUnsupportedDistributionError(string(family), operation)
}

// Estimate runs the chosen estimator and packages the fitted parameters.
func Estimate(data []float64, family distributions.Family, method Method) (*models.EstimationResult, error) {
	var (
		d   distributions.Distribution
		err error
	)

	switch method {
	case MethodMLE, "":
		method = MethodMLE
		d, err = MLE(data, family)
	case MethodMoM:
		d, err = MoM(data, family)
	default:
		return nil, errors.NewInvalidParameterError("method", method, "expected mle or mom")
	}
	if err != nil {
		return nil, err
	}

	return &models.EstimationResult{
		Family:     string(family),
		Method:     string(method),
		Parameters: d.Parameters(),
		SampleSize: len(data),
	}, nil
}
