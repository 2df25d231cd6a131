package math

import (
	"fmt"
	"math"
	"sort"

	"github.com/inferloop/statlab/pkg/constants"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

// sortedCopy returns an ascending copy so callers' samples are never reordered.
func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// Sum calculates the sum of a sample
func Sum(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.NewEmptyDataError("sum")
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum, nil
}

// Mean calculates the arithmetic mean of a sample
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.NewEmptyDataError("mean")
	}

	sum, _ := Sum(values)
	return sum / float64(len(values)), nil
}

// Median calculates the median, averaging the two middle values when n is even
func Median(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.NewEmptyDataError("median")
	}

	sorted := sortedCopy(values)
	return medianOfSorted(sorted), nil
}

func medianOfSorted(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Mode returns every value tied at the highest frequency, in ascending order
func Mode(values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, errors.NewEmptyDataError("mode")
	}

	frequency := make(map[float64]int)
	maxFreq := 0
	for _, v := range values {
		frequency[v]++
		if frequency[v] > maxFreq {
			maxFreq = frequency[v]
		}
	}

	modes := make([]float64, 0, 1)
	for val, freq := range frequency {
		if freq == maxFreq {
			modes = append(modes, val)
		}
	}
	sort.Float64s(modes)

	return modes, nil
}

// Min returns the smallest value of a sample
func Min(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.NewEmptyDataError("min")
	}

	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m, nil
}

// Max returns the largest value of a sample
func Max(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.NewEmptyDataError("max")
	}

	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m, nil
}

func sumSquaredDeviations(values []float64, mean float64) float64 {
	ss := 0.0
	for _, v := range values {
		diff := v - mean
		ss += diff * diff
	}
	return ss
}

// Variance calculates the population variance (divides by n)
func Variance(values []float64) (float64, error) {
	mean, err := Mean(values)
	if err != nil {
		return 0, errors.NewEmptyDataError("variance")
	}

	return sumSquaredDeviations(values, mean) / float64(len(values)), nil
}

// Std calculates the population standard deviation
func Std(values []float64) (float64, error) {
	v, err := Variance(values)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// SampleVariance calculates the unbiased sample variance (divides by n-1)
func SampleVariance(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.NewEmptyDataError("sample variance")
	}
	if len(values) < 2 {
		return 0, errors.NewInvalidParameterError("sampleSize", len(values), "sample variance needs at least 2 observations")
	}

	mean, _ := Mean(values)
	return sumSquaredDeviations(values, mean) / float64(len(values)-1), nil
}

// StdDev calculates the sample standard deviation
func StdDev(values []float64) (float64, error) {
	v, err := SampleVariance(values)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// standardizedMoment returns the k-th central moment divided by std^k, both over n.
// A zero spread yields 0.
func standardizedMoment(values []float64, k float64) float64 {
	mean, _ := Mean(values)
	std, _ := Std(values)
	if std == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += math.Pow((v-mean)/std, k)
	}
	return sum / float64(len(values))
}

// Skewness calculates the third standardized moment (not bias-corrected)
func Skewness(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.NewEmptyDataError("skewness")
	}
	return standardizedMoment(values, 3), nil
}

// Kurtosis calculates the excess kurtosis (fourth standardized moment minus 3).
// A constant sample returns 0.
func Kurtosis(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.NewEmptyDataError("kurtosis")
	}

	std, _ := Std(values)
	if std == 0 {
		return 0, nil
	}
	return standardizedMoment(values, 4) - 3, nil
}

// Quartiles computes nearest-rank quartiles: q1 = sorted[floor(n/4)], q3 = sorted[floor(3n/4)]
func Quartiles(values []float64) (models.Quartiles, error) {
	if len(values) == 0 {
		return models.Quartiles{}, errors.NewEmptyDataError("quartiles")
	}

	sorted := sortedCopy(values)
	n := float64(len(sorted))
	q1 := sorted[int(math.Floor(n*0.25))]
	q3 := sorted[int(math.Floor(n*0.75))]

	return models.Quartiles{
		Q1:     q1,
		Median: medianOfSorted(sorted),
		Q3:     q3,
		IQR:    q3 - q1,
	}, nil
}

// DefaultBinCount returns ceil(sqrt(n)), the bin count used when none is given.
func DefaultBinCount(n int) int {
	if n <= 0 {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// Histogram bins a sample into equal-width bins over [min, max]. The last bin is closed
// on the right. bins <= 0 selects DefaultBinCount; at most constants.MaxBins are allowed.
func Histogram(values []float64, bins int) ([]models.HistogramBin, error) {
	if len(values) == 0 {
		return nil, errors.NewEmptyDataError("histogram")
	}
	if bins > constants.MaxBins {
		return nil, errors.NewInvalidParameterError("bins", bins, fmt.Sprintf("must not exceed %d", constants.MaxBins))
	}
	if bins <= 0 {
		bins = min(DefaultBinCount(len(values)), constants.MaxBins)
	}

	lo, _ := Min(values)
	hi, _ := Max(values)
	n := float64(len(values))
	if math.IsInf(hi-lo, 0) || math.IsNaN(hi-lo) {
		return nil, errors.NewInvalidParameterError("data", hi-lo, "sample range must be finite")
	}

	if hi == lo {
		return []models.HistogramBin{{
			Lower:             lo,
			Upper:             hi,
			Count:             len(values),
			RelativeFrequency: 1,
		}}, nil
	}

	width := (hi - lo) / float64(bins)
	result := make([]models.HistogramBin, bins)
	for i := range result {
		result[i].Lower = lo + float64(i)*width
		result[i].Upper = lo + float64(i+1)*width
	}
	result[bins-1].Upper = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		result[idx].Count++
	}

	for i := range result {
		result[i].RelativeFrequency = float64(result[i].Count) / n
	}

	return result, nil
}

// Describe gathers the descriptive statistics of a sample in one pass over the helpers.
// Sample-form variance fields stay zero for single observations.
func Describe(values []float64) (*models.DescriptiveSummary, error) {
	if len(values) == 0 {
		return nil, errors.NewEmptyDataError("describe")
	}

	summary := &models.DescriptiveSummary{Count: len(values)}

	summary.Sum, _ = Sum(values)
	summary.Mean, _ = Mean(values)
	summary.Median, _ = Median(values)
	summary.Mode, _ = Mode(values)
	summary.Min, _ = Min(values)
	summary.Max, _ = Max(values)
	summary.Range = summary.Max - summary.Min
	summary.Variance, _ = Variance(values)
	summary.Std = math.Sqrt(summary.Variance)
	summary.Skewness, _ = Skewness(values)
	summary.Kurtosis, _ = Kurtosis(values)
	summary.Quartiles, _ = Quartiles(values)

	if len(values) >= 2 {
		summary.SampleVariance, _ = SampleVariance(values)
		summary.SampleStdDev = math.Sqrt(summary.SampleVariance)
		summary.StandardErrorMean = summary.SampleStdDev / math.Sqrt(float64(len(values)))
	}

	return summary, nil
}
