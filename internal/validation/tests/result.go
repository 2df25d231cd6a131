// Package tests implements the goodness-of-fit suite: Kolmogorov-Smirnov, chi-square,
// Anderson-Darling and Jarque-Bera, plus the driver that dispatches between them.
package tests

import (
	"fmt"

	"github.com/inferloop/statlab/pkg/constants"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

// TestType names a goodness-of-fit test.
type TestType string

const (
	TypeKolmogorovSmirnov TestType = constants.TestKolmogorovSmirnov
	TypeChiSquare         TestType = constants.TestChiSquare
	TypeAndersonDarling   TestType = constants.TestAndersonDarling
	TypeJarqueBera        TestType = constants.TestJarqueBera
)

// RejectionRule records how IsReject was decided.
type RejectionRule string

const (
	// RuleStatisticExceedsCritical rejects when the statistic is above the critical value.
	RuleStatisticExceedsCritical RejectionRule = "statistic-exceeds-critical"
	// RulePValueBelowAlpha rejects when the p-value is below the significance level.
	RulePValueBelowAlpha RejectionRule = "p-value-below-alpha"
)

// GoFResult contains the outcome of one goodness-of-fit test
type GoFResult struct {
	TestType          TestType                      `json:"testType"`
	Distribution      string                        `json:"distribution"`
	Parameters        models.DistributionParameters `json:"parameters,omitempty"`
	Statistic         float64                       `json:"statistic"`
	CriticalValue     float64                       `json:"criticalValue"`
	PValue            float64                       `json:"pValue"`
	DegreesOfFreedom  int                           `json:"degreesOfFreedom,omitempty"`
	SampleSize        int                           `json:"sampleSize"`
	SignificanceLevel float64                       `json:"significanceLevel"`
	IsReject          bool                          `json:"isReject"`
	RejectionRule     RejectionRule                 `json:"rejectionRule"`
	AdjustedStatistic float64                       `json:"adjustedStatistic,omitempty"`
	Bins              []models.FrequencyBin         `json:"bins,omitempty"`
	Interpretation    string                        `json:"interpretation"`
}

func checkSample(data []float64, test TestType) error {
	if len(data) == 0 {
		return errors.NewEmptyDataError(string(test))
	}
	if len(data) < constants.MinGoFSampleSize {
		return errors.NewInvalidParameterError("sampleSize", len(data),
			fmt.Sprintf("%s needs at least %d observations", test, constants.MinGoFSampleSize))
	}
	return nil
}

func checkAlpha(alpha float64) error {
	if !(alpha > 0 && alpha < 1) {
		return errors.NewInvalidParameterError("alpha", alpha, "must lie in (0, 1)")
	}
	return nil
}

// interpret creates a human-readable verdict
func interpret(distribution string, reject bool, statistic, pValue float64) string {
	if reject {
		return fmt.Sprintf("Reject null hypothesis: data is not consistent with a %s distribution (statistic = %.4f, p = %.4f)",
			distribution, statistic, pValue)
	}
	return fmt.Sprintf("Fail to reject null hypothesis: data is consistent with a %s distribution (statistic = %.4f, p = %.4f)",
		distribution, statistic, pValue)
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
