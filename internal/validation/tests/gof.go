package tests

import (
	"strings"

	"github.com/inferloop/statlab/internal/distributions"
	"github.com/inferloop/statlab/internal/estimation"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

// GoFTest selects one of the goodness-of-fit tests. The set of implementations is closed:
// KS, ChiSquare, AndersonDarling and JarqueBera.
type GoFTest interface {
	Type() TestType
	run(data []float64, dist distributions.Distribution, alpha float64) (*GoFResult, error)
}

// KS selects the Kolmogorov-Smirnov test.
type KS struct{}

// ChiSquare selects the chi-square test with its binning options.
type ChiSquare struct {
	Options ChiSquareOptions
}

// AndersonDarling selects the Anderson-Darling normality test.
type AndersonDarling struct{}

// JarqueBera selects the Jarque-Bera normality test.
type JarqueBera struct{}

func (KS) Type() TestType              { return TypeKolmogorovSmirnov }
func (ChiSquare) Type() TestType       { return TypeChiSquare }
func (AndersonDarling) Type() TestType { return TypeAndersonDarling }
func (JarqueBera) Type() TestType      { return TypeJarqueBera }

func (KS) run(data []float64, dist distributions.Distribution, alpha float64) (*GoFResult, error) {
	return KolmogorovSmirnovTest(data, dist, alpha)
}

func (c ChiSquare) run(data []float64, dist distributions.Distribution, alpha float64) (*GoFResult, error) {
	return ChiSquareTest(data, dist, alpha, c.Options)
}

func (AndersonDarling) run(data []float64, dist distributions.Distribution, alpha float64) (*GoFResult, error) {
	return AndersonDarlingTest(data, dist, alpha)
}

func (JarqueBera) run(data []float64, dist distributions.Distribution, alpha float64) (*GoFResult, error) {
	if dist.Family() != distributions.FamilyNormal {
		return nil, errors.NewUnsupportedDistributionError(string(dist.Family()), string(TypeJarqueBera))
	}
	result, err := JarqueBeraTest(data, alpha)
	if err != nil {
		return nil, err
	}
	result.Parameters = dist.Parameters()
	return result, nil
}

// ParseTestType maps a test name onto its variant. Chi-square options are applied to the
// ChiSquare variant only.
func ParseTestType(name string, opts ChiSquareOptions) (GoFTest, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ks", "kolmogorov-smirnov", "kolmogorov_smirnov":
		return KS{}, nil
	case "chi-square", "chisquare", "chi_square", "chi2":
		return ChiSquare{Options: opts}, nil
	case "anderson-darling", "anderson_darling", "ad":
		return AndersonDarling{}, nil
	case "jarque-bera", "jarque_bera", "jb":
		return JarqueBera{}, nil
	default:
		return nil, errors.NewInvalidParameterError("testType", name,
			"expected ks, chi-square, anderson-darling or jarque-bera")
	}
}

// Execute runs test against a fully specified distribution.
func Execute(data []float64, test GoFTest, dist distributions.Distribution, alpha float64) (*GoFResult, error) {
	if test == nil {
		return nil, errors.NewInvalidParameterError("testType", nil, "a test must be selected")
	}
	if dist == nil {
		return nil, errors.NewInvalidParameterError("distribution", nil, "a distribution must be selected")
	}
	return test.run(data, dist, alpha)
}

// ExecuteGoFTest is the string-keyed driver. When params is empty the distribution is fitted
// to data by maximum likelihood first; otherwise params must fully specify the family.
func ExecuteGoFTest(data []float64, testType, family string, alpha float64, params models.DistributionParameters, opts ChiSquareOptions) (*GoFResult, error) {
	test, err := ParseTestType(testType, opts)
	if err != nil {
		return nil, err
	}
	f, err := distributions.ParseFamily(family)
	if err != nil {
		return nil, err
	}

	dist, err := ResolveDistribution(data, f, params)
	if err != nil {
		return nil, err
	}
	return Execute(data, test, dist, alpha)
}

// ResolveDistribution builds the hypothesized distribution from params, or from an MLE fit
// of data when params is empty.
func ResolveDistribution(data []float64, family distributions.Family, params models.DistributionParameters) (distributions.Distribution, error) {
	if len(params) > 0 {
		return distributions.New(family, params)
	}
	return estimation.MLE(data, family)
}
