package tests

import (
	"github.com/inferloop/statlab/internal/distributions"
	statmath "github.com/inferloop/statlab/internal/utils/math"
)

const jarqueBeraDF = 2

// JarqueBeraTest tests normality from the sample skewness and excess kurtosis:
// JB = (n/6)(S² + K²/4), referred to a chi-square distribution with 2 degrees of freedom.
func JarqueBeraTest(data []float64, alpha float64) (*GoFResult, error) {
	if err := checkSample(data, TypeJarqueBera); err != nil {
		return nil, err
	}
	if err := checkAlpha(alpha); err != nil {
		return nil, err
	}

	n := len(data)
	skewness, err := statmath.Skewness(data)
	if err != nil {
		return nil, err
	}
	kurtosis, err := statmath.Kurtosis(data)
	if err != nil {
		return nil, err
	}

	jb := float64(n) / 6 * (skewness*skewness + kurtosis*kurtosis/4)
	pValue := clamp(1-statmath.ChiSquareCDF(jb, jarqueBeraDF), 0, 1)
	criticalValue := statmath.ChiSquareQuantile(1-alpha, jarqueBeraDF)
	reject := pValue < alpha

	return &GoFResult{
		TestType:          TypeJarqueBera,
		Distribution:      string(distributions.FamilyNormal),
		Statistic:         jb,
		CriticalValue:     criticalValue,
		PValue:            pValue,
		DegreesOfFreedom:  jarqueBeraDF,
		SampleSize:        n,
		SignificanceLevel: alpha,
		IsReject:          reject,
		RejectionRule:     RulePValueBelowAlpha,
		Interpretation:    interpret(string(distributions.FamilyNormal), reject, jb, pValue),
	}, nil
}
