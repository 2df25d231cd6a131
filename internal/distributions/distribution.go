// Package distributions defines the closed set of distribution families supported by the
// estimators and goodness-of-fit tests.
package distributions

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mathext"

	statmath "github.com/inferloop/statlab/internal/utils/math"
	"github.com/inferloop/statlab/pkg/constants"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

// Family names a distribution family.
type Family string

const (
	FamilyNormal      Family = constants.FamilyNormal
	FamilyUniform     Family = constants.FamilyUniform
	FamilyExponential Family = constants.FamilyExponential
	FamilyPoisson     Family = constants.FamilyPoisson
	FamilyGamma       Family = constants.FamilyGamma
	FamilyBeta        Family = constants.FamilyBeta
)

// Families lists every supported family in a stable order.
var Families = []Family{
	FamilyNormal,
	FamilyUniform,
	FamilyExponential,
	FamilyPoisson,
	FamilyGamma,
	FamilyBeta,
}

// ParseFamily maps a case-insensitive family name onto a Family.
func ParseFamily(name string) (Family, error) {
	f := Family(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Families {
		if f == known {
			return f, nil
		}
	}
	return "", errors.NewUnsupportedDistributionError(name, "parse")
}

// Distribution is one fully parameterized member of a family. The set of
// implementations is closed: only the types in this package satisfy it.
type Distribution interface {
	Family() Family
	CDF(x float64) float64
	Parameters() models.DistributionParameters
	Validate() error
	// EstimatedParameterCount is the number of parameters a fit removes from the
	// chi-square degrees of freedom.
	EstimatedParameterCount() int

	sealed()
}

// Normal is N(Mean, Std²).
type Normal struct {
	Mean float64
	Std  float64
}

// Uniform is U(A, B).
type Uniform struct {
	A float64
	B float64
}

// Exponential has rate Lambda.
type Exponential struct {
	Lambda float64
}

// Poisson has mean Lambda.
type Poisson struct {
	Lambda float64
}

// Gamma uses the shape/scale parameterization.
type Gamma struct {
	Shape float64
	Scale float64
}

// Beta is Beta(Alpha, Beta) on [0, 1].
type Beta struct {
	Alpha float64
	Beta  float64
}

func (Normal) sealed()      {}
func (Uniform) sealed()     {}
func (Exponential) sealed() {}
func (Poisson) sealed()     {}
func (Gamma) sealed()       {}
func (Beta) sealed()        {}

func (Normal) Family() Family      { return FamilyNormal }
func (Uniform) Family() Family     { return FamilyUniform }
func (Exponential) Family() Family { return FamilyExponential }
func (Poisson) Family() Family     { return FamilyPoisson }
func (Gamma) Family() Family       { return FamilyGamma }
func (Beta) Family() Family        { return FamilyBeta }

func (Normal) EstimatedParameterCount() int      { return 2 }
func (Uniform) EstimatedParameterCount() int     { return 1 }
func (Exponential) EstimatedParameterCount() int { return 1 }
func (Poisson) EstimatedParameterCount() int     { return 1 }
func (Gamma) EstimatedParameterCount() int       { return 2 }
func (Beta) EstimatedParameterCount() int        { return 2 }

func (d Normal) CDF(x float64) float64 {
	return statmath.NormalCDF((x - d.Mean) / d.Std)
}

func (d Uniform) CDF(x float64) float64 {
	switch {
	case x <= d.A:
		return 0
	case x >= d.B:
		return 1
	default:
		return (x - d.A) / (d.B - d.A)
	}
}

func (d Exponential) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return 1 - math.Exp(-d.Lambda*x)
}

// CDF uses P(X <= k) = Q(k+1, λ) for k = floor(x).
func (d Poisson) CDF(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case math.IsInf(x, 1):
		return 1
	}
	return statmath.RegularizedGammaQ(math.Floor(x)+1, d.Lambda)
}

func (d Gamma) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return statmath.RegularizedGammaP(d.Shape, x/d.Scale)
}

func (d Beta) CDF(x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	default:
		return mathext.RegIncBeta(d.Alpha, d.Beta, x)
	}
}

func (d Normal) Parameters() models.DistributionParameters {
	return models.DistributionParameters{"mean": d.Mean, "std": d.Std}
}

func (d Uniform) Parameters() models.DistributionParameters {
	return models.DistributionParameters{"a": d.A, "b": d.B}
}

func (d Exponential) Parameters() models.DistributionParameters {
	return models.DistributionParameters{"lambda": d.Lambda}
}

func (d Poisson) Parameters() models.DistributionParameters {
	return models.DistributionParameters{"lambda": d.Lambda}
}

func (d Gamma) Parameters() models.DistributionParameters {
	return models.DistributionParameters{"shape": d.Shape, "scale": d.Scale}
}

func (d Beta) Parameters() models.DistributionParameters {
	return models.DistributionParameters{"alpha": d.Alpha, "beta": d.Beta}
}

func positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return errors.NewInvalidParameterError(name, v, "must be positive and finite")
	}
	return nil
}

func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.NewInvalidParameterError(name, v, "must be finite")
	}
	return nil
}

func (d Normal) Validate() error {
	if err := finite("mean", d.Mean); err != nil {
		return err
	}
	return positive("std", d.Std)
}

func (d Uniform) Validate() error {
	if err := finite("a", d.A); err != nil {
		return err
	}
	if err := finite("b", d.B); err != nil {
		return err
	}
	if d.A >= d.B {
		return errors.NewInvalidParameterError("a", d.A, fmt.Sprintf("must be less than b=%v", d.B))
	}
	return nil
}

func (d Exponential) Validate() error { return positive("lambda", d.Lambda) }

func (d Poisson) Validate() error { return positive("lambda", d.Lambda) }

func (d Gamma) Validate() error {
	if err := positive("shape", d.Shape); err != nil {
		return err
	}
	return positive("scale", d.Scale)
}

func (d Beta) Validate() error {
	if err := positive("alpha", d.Alpha); err != nil {
		return err
	}
	return positive("beta", d.Beta)
}

// New builds and validates a distribution from named parameters. Missing parameters are
// reported as invalid.
func New(family Family, params models.DistributionParameters) (Distribution, error) {
	get := func(name string) (float64, error) {
		v, ok := params[name]
		if !ok {
			return 0, errors.NewInvalidParameterError(name, nil, fmt.Sprintf("required for %s", family))
		}
		return v, nil
	}

	var (
		d    Distribution
		errs [2]error
		p    [2]float64
	)

	switch family {
	case FamilyNormal:
		p[0], errs[0] = get("mean")
		p[1], errs[1] = get("std")
		d = Normal{Mean: p[0], Std: p[1]}
	case FamilyUniform:
		p[0], errs[0] = get("a")
		p[1], errs[1] = get("b")
		d = Uniform{A: p[0], B: p[1]}
	case FamilyExponential:
		p[0], errs[0] = get("lambda")
		d = Exponential{Lambda: p[0]}
	case FamilyPoisson:
		p[0], errs[0] = get("lambda")
		d = Poisson{Lambda: p[0]}
	case FamilyGamma:
		p[0], errs[0] = get("shape")
		p[1], errs[1] = get("scale")
		d = Gamma{Shape: p[0], Scale: p[1]}
	case FamilyBeta:
		p[0], errs[0] = get("alpha")
		p[1], errs[1] = get("beta")
		d = Beta{Alpha: p[0], Beta: p[1]}
	default:
		return nil, errors.NewUnsupportedDistributionError(string(family), "construct")
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
