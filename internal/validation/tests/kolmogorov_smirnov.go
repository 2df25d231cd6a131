package tests

import (
	"math"
	"sort"

	"github.com/inferloop/statlab/internal/distributions"
	"github.com/inferloop/statlab/pkg/constants"
)

// KolmogorovSmirnovTest performs the one-sample Kolmogorov-Smirnov test against a fully
// specified distribution. The critical value is the fixed 1.36/√n reference (α ≈ 0.05)
// and the decision compares the statistic against it.
func KolmogorovSmirnovTest(data []float64, dist distributions.Distribution, alpha float64) (*GoFResult, error) {
	if err := checkSample(data, TypeKolmogorovSmirnov); err != nil {
		return nil, err
	}
	if err := checkAlpha(alpha); err != nil {
		return nil, err
	}
	if err := dist.Validate(); err != nil {
		return nil, err
	}

	n := len(data)
	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)

	dMax := calculateKSStatistic(sorted, dist)
	criticalValue := constants.KSCriticalCoefficient / math.Sqrt(float64(n))
	pValue := calculateKSPValue(dMax, n)
	reject := dMax > criticalValue

	return &GoFResult{
		TestType:          TypeKolmogorovSmirnov,
		Distribution:      string(dist.Family()),
		Parameters:        dist.Parameters(),
		Statistic:         dMax,
		CriticalValue:     criticalValue,
		PValue:            pValue,
		SampleSize:        n,
		SignificanceLevel: alpha,
		IsReject:          reject,
		RejectionRule:     RuleStatisticExceedsCritical,
		Interpretation:    interpret(string(dist.Family()), reject, dMax, pValue),
	}, nil
}

// calculateKSStatistic returns max |F_emp - F| over the sample, checking the empirical CDF
// both at each point (count <= x) and just below it (count < x).
func calculateKSStatistic(sorted []float64, dist distributions.Distribution) float64 {
	n := len(sorted)
	nf := float64(n)
	maxDiff := 0.0

	for _, x := range sorted {
		below := sort.SearchFloat64s(sorted, x)
		atOrBelow := sort.Search(n, func(j int) bool { return sorted[j] > x })

		theoretical := dist.CDF(x)
		diffAt := math.Abs(float64(atOrBelow)/nf - theoretical)
		diffBelow := math.Abs(float64(below)/nf - theoretical)

		maxDiff = math.Max(maxDiff, math.Max(diffAt, diffBelow))
	}

	return maxDiff
}

// calculateKSPValue evaluates the asymptotic Kolmogorov series
// 2·Σ(-1)^(k-1)·exp(-2k²λ²) with λ = √n·D.
func calculateKSPValue(dMax float64, n int) float64 {
	lambda := math.Sqrt(float64(n)) * dMax
	if lambda < constants.KSSmallLambda {
		return 1.0
	}

	sum := 0.0
	for k := 1; k <= constants.KSSeriesTerms; k++ {
		kf := float64(k)
		term := math.Exp(-2 * kf * kf * lambda * lambda)
		if k%2 == 0 {
			sum -= term
		} else {
			sum += term
		}
		if term < constants.KSSeriesTolerance {
			break
		}
	}

	return clamp(2*sum, 0, 1)
}
