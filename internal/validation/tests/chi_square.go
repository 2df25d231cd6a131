package tests

import (
	"fmt"
	"math"
	"sort"

	"github.com/inferloop/statlab/internal/distributions"
	statmath "github.com/inferloop/statlab/internal/utils/math"
	"github.com/inferloop/statlab/pkg/constants"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

// ChiSquareOptions tunes the chi-square test.
type ChiSquareOptions struct {
	// Bins is the initial number of equal-width bins. Zero means ⌈√n⌉.
	Bins int `json:"bins,omitempty" mapstructure:"bins"`
	// EstimatedParams overrides the parameter count subtracted from the degrees of
	// freedom. Zero means the distribution's own count.
	EstimatedParams int `json:"estimatedParams,omitempty" mapstructure:"estimated_params"`
}

// ChiSquareTest performs Pearson's chi-square goodness-of-fit test on equal-width bins
// spanning the sample range. Bins whose expected frequency falls below 5 are merged into
// a neighbour, so the observed counts of the reported bins always sum to n.
func ChiSquareTest(data []float64, dist distributions.Distribution, alpha float64, opts ChiSquareOptions) (*GoFResult, error) {
	if err := checkSample(data, TypeChiSquare); err != nil {
		return nil, err
	}
	if err := checkAlpha(alpha); err != nil {
		return nil, err
	}
	if err := dist.Validate(); err != nil {
		return nil, err
	}
	if opts.Bins < 0 || opts.Bins > constants.MaxBins {
		return nil, errors.NewInvalidParameterError("bins", opts.Bins, fmt.Sprintf("must lie in [0, %d]", constants.MaxBins))
	}
	if opts.EstimatedParams < 0 {
		return nil, errors.NewInvalidParameterError("estimatedParams", opts.EstimatedParams, "must be non-negative")
	}

	n := len(data)
	binCount := opts.Bins
	if binCount == 0 {
		binCount = min(int(math.Ceil(math.Sqrt(float64(n)))), constants.MaxBins)
	}

	bins, err := buildFrequencyBins(data, dist, binCount)
	if err != nil {
		return nil, err
	}
	bins = mergeSparseBins(bins)

	statistic := 0.0
	for _, b := range bins {
		if b.Expected > 0 {
			diff := float64(b.Observed) - b.Expected
			statistic += diff * diff / b.Expected
		}
	}

	estimated := opts.EstimatedParams
	if estimated == 0 {
		estimated = dist.EstimatedParameterCount()
	}
	df := len(bins) - 1 - estimated
	if df < 1 {
		df = 1
	}

	criticalValue := statmath.ChiSquareQuantile(1-alpha, float64(df))
	pValue := clamp(1-statmath.ChiSquareCDF(statistic, float64(df)), 0, 1)
	reject := statistic > criticalValue

	return &GoFResult{
		TestType:          TypeChiSquare,
		Distribution:      string(dist.Family()),
		Parameters:        dist.Parameters(),
		Statistic:         statistic,
		CriticalValue:     criticalValue,
		PValue:            pValue,
		DegreesOfFreedom:  df,
		SampleSize:        n,
		SignificanceLevel: alpha,
		IsReject:          reject,
		RejectionRule:     RuleStatisticExceedsCritical,
		Bins:              bins,
		Interpretation:    interpret(string(dist.Family()), reject, statistic, pValue),
	}, nil
}

// buildFrequencyBins counts observations into equal-width bins over [min, max] and
// integrates the expected frequency of each bin from the CDF. Every bin is half-open,
// [lower, upper), for both counts, so discrete mass on an edge lands in the upper bin.
// The first and last bins absorb the tails so the expected counts sum to n.
func buildFrequencyBins(data []float64, dist distributions.Distribution, binCount int) ([]models.FrequencyBin, error) {
	lo, _ := statmath.Min(data)
	hi, _ := statmath.Max(data)
	if hi == lo {
		return nil, errors.NewInvalidParameterError("data", lo, "chi-square binning needs a non-constant sample")
	}
	if math.IsInf(hi-lo, 0) {
		return nil, errors.NewInvalidParameterError("data", hi-lo, "sample range must be finite")
	}

	n := float64(len(data))
	width := (hi - lo) / float64(binCount)

	bins := make([]models.FrequencyBin, binCount)
	for i := range bins {
		bins[i].Lower = lo + float64(i)*width
		bins[i].Upper = lo + float64(i+1)*width
	}
	bins[0].Lower = math.Inf(-1)
	bins[binCount-1].Upper = math.Inf(1)

	for _, x := range data {
		idx := sort.Search(binCount, func(i int) bool { return x < bins[i].Upper })
		if idx == binCount {
			idx = binCount - 1
		}
		bins[idx].Observed++
	}

	prev := 0.0
	for i := range bins {
		next := 1.0
		if i < binCount-1 {
			next = dist.CDF(math.Nextafter(bins[i].Upper, math.Inf(-1)))
		}
		bins[i].Expected = n * (next - prev)
		prev = next
	}

	return bins, nil
}

// mergeSparseBins folds any bin with expected frequency below the minimum into its
// neighbour: the first bin merges forward, every other bin merges backward.
func mergeSparseBins(bins []models.FrequencyBin) []models.FrequencyBin {
	for len(bins) > 1 {
		idx := -1
		for i, b := range bins {
			if b.Expected < constants.MinExpectedFrequency {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}

		if idx == 0 {
			bins[1] = combineBins(bins[0], bins[1])
			bins = bins[1:]
			continue
		}
		bins[idx-1] = combineBins(bins[idx-1], bins[idx])
		bins = append(bins[:idx], bins[idx+1:]...)
	}
	return bins
}

func combineBins(left, right models.FrequencyBin) models.FrequencyBin {
	return models.FrequencyBin{
		Lower:    left.Lower,
		Upper:    right.Upper,
		Observed: left.Observed + right.Observed,
		Expected: left.Expected + right.Expected,
	}
}
