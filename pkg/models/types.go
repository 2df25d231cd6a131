package models

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/inferloop/statlab/pkg/errors"
)

// TailType selects which side(s) of a distribution a test or interval treats as unbounded.
type TailType string

const (
	TwoTailed   TailType = "two-tailed"
	LeftTailed  TailType = "left-tailed"
	RightTailed TailType = "right-tailed"
)

// ParseTailType maps the boundary spellings onto a TailType. Empty input means two-tailed.
func ParseTailType(s string) (TailType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "two", "two-tailed", "two_tailed", "two-sided":
		return TwoTailed, nil
	case "left", "left-tailed", "left_tailed", "less":
		return LeftTailed, nil
	case "right", "right-tailed", "right_tailed", "greater":
		return RightTailed, nil
	default:
		return "", errors.NewInvalidParameterError("tailType", s, "expected two-tailed, left-tailed or right-tailed")
	}
}

// IsOneSided reports whether the tail leaves one side of the interval unbounded.
func (t TailType) IsOneSided() bool {
	return t == LeftTailed || t == RightTailed
}

// Validate rejects values outside the three known tails.
func (t TailType) Validate() error {
	switch t {
	case TwoTailed, LeftTailed, RightTailed:
		return nil
	default:
		return errors.NewInvalidParameterError("tailType", string(t), "unknown tail type")
	}
}

// DistributionParameters maps a parameter name (mean, std, lambda, shape, ...) to its value.
type DistributionParameters map[string]float64

// ConfidenceIntervalResult is the outcome of any interval computation.
// Lower is -Inf for left-tailed intervals and Upper is +Inf for right-tailed ones.
type ConfidenceIntervalResult struct {
	Lower            float64  `json:"lower"`
	Upper            float64  `json:"upper"`
	PointEstimate    float64  `json:"pointEstimate"`
	MarginOfError    float64  `json:"marginOfError"`
	CriticalValue    float64  `json:"criticalValue"`
	StandardError    float64  `json:"standardError"`
	DegreesOfFreedom float64  `json:"degreesOfFreedom,omitempty"`
	ConfidenceLevel  float64  `json:"confidenceLevel"`
	Tail             TailType `json:"tailType"`
	Method           string   `json:"method"`
}

// MarshalJSON renders infinite bounds as "Infinity"/"-Infinity" strings.
func (r ConfidenceIntervalResult) MarshalJSON() ([]byte, error) {
	type plain ConfidenceIntervalResult
	return json.Marshal(struct {
		plain
		Lower interface{} `json:"lower"`
		Upper interface{} `json:"upper"`
	}{
		plain: plain(r),
		Lower: jsonBound(r.Lower),
		Upper: jsonBound(r.Upper),
	})
}

// Width returns Upper - Lower (infinite for one-sided intervals).
func (r ConfidenceIntervalResult) Width() float64 {
	return r.Upper - r.Lower
}

// Contains reports whether v lies inside the closed interval.
func (r ConfidenceIntervalResult) Contains(v float64) bool {
	return v >= r.Lower && v <= r.Upper
}

// ProportionIntervalResult is a confidence interval for one or two binomial proportions.
// Proportion, Successes and Trials describe the first sample; the *2 fields are set only
// for a difference of two proportions.
type ProportionIntervalResult struct {
	ConfidenceIntervalResult
	Proportion  float64  `json:"proportion"`
	Successes   int      `json:"successes"`
	Trials      int      `json:"trials"`
	Proportion2 *float64 `json:"proportion2,omitempty"`
	Successes2  *int     `json:"successes2,omitempty"`
	Trials2     *int     `json:"trials2,omitempty"`
}

// MarshalJSON keeps the embedded interval's bound rendering.
func (r ProportionIntervalResult) MarshalJSON() ([]byte, error) {
	type plain ConfidenceIntervalResult
	return json.Marshal(struct {
		plain
		Lower       interface{} `json:"lower"`
		Upper       interface{} `json:"upper"`
		Proportion  float64     `json:"proportion"`
		Successes   int         `json:"successes"`
		Trials      int         `json:"trials"`
		Proportion2 *float64    `json:"proportion2,omitempty"`
		Successes2  *int        `json:"successes2,omitempty"`
		Trials2     *int        `json:"trials2,omitempty"`
	}{
		plain:       plain(r.ConfidenceIntervalResult),
		Lower:       jsonBound(r.Lower),
		Upper:       jsonBound(r.Upper),
		Proportion:  r.Proportion,
		Successes:   r.Successes,
		Trials:      r.Trials,
		Proportion2: r.Proportion2,
		Successes2:  r.Successes2,
		Trials2:     r.Trials2,
	})
}

// TestResult is the outcome of a one-sample hypothesis test.
type TestResult struct {
	Statistic          float64                  `json:"statistic"`
	CriticalValue      float64                  `json:"criticalValue"`
	PValue             float64                  `json:"pValue"`
	Rejected           bool                     `json:"rejected"`
	ConfidenceInterval ConfidenceIntervalResult `json:"confidenceInterval"`
	Method             string                   `json:"method"`
	SampleMean         float64                  `json:"sampleMean"`
	StandardError      float64                  `json:"standardError"`
	DegreesOfFreedom   float64                  `json:"degreesOfFreedom,omitempty"`
	Hypothesized       float64                  `json:"hypothesizedMean"`
	Alpha              float64                  `json:"alpha"`
	Tail               TailType                 `json:"tailType"`
	SampleSize         int                      `json:"sampleSize"`
}

// HistogramBin is one equal-width bin of a histogram.
type HistogramBin struct {
	Lower             float64 `json:"lower"`
	Upper             float64 `json:"upper"`
	Count             int     `json:"count"`
	RelativeFrequency float64 `json:"relativeFrequency"`
}

// Quartiles holds nearest-rank quartiles.
type Quartiles struct {
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	IQR    float64 `json:"iqr"`
}

// DescriptiveSummary collects the descriptive statistics of one sample.
type DescriptiveSummary struct {
	Count             int       `json:"count"`
	Sum               float64   `json:"sum"`
	Mean              float64   `json:"mean"`
	Median            float64   `json:"median"`
	Mode              []float64 `json:"mode"`
	Min               float64   `json:"min"`
	Max               float64   `json:"max"`
	Range             float64   `json:"range"`
	Variance          float64   `json:"variance"`
	Std               float64   `json:"std"`
	SampleVariance    float64   `json:"sampleVariance,omitempty"`
	SampleStdDev      float64   `json:"sampleStdDev,omitempty"`
	Skewness          float64   `json:"skewness"`
	Kurtosis          float64   `json:"kurtosis"`
	Quartiles         Quartiles `json:"quartiles"`
	StandardErrorMean float64   `json:"standardErrorMean,omitempty"`
}

// PowerPoint is one point of a power function.
type PowerPoint struct {
	Mu    float64 `json:"mu"`
	Power float64 `json:"power"`
}

// EstimationResult is the output of an MLE or MoM fit.
type EstimationResult struct {
	Family     string                 `json:"family"`
	Method     string                 `json:"method"`
	Parameters DistributionParameters `json:"parameters"`
	SampleSize int                    `json:"sampleSize"`
}

func jsonBound(v float64) interface{} {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	default:
		return v
	}
}

// FrequencyBin pairs observed and expected counts for one chi-square bin. The outer bins
// extend to -Inf and +Inf.
type FrequencyBin struct {
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Observed int     `json:"observed"`
	Expected float64 `json:"expected"`
}

// MarshalJSON renders infinite edges as strings.
func (b FrequencyBin) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lower    interface{} `json:"lower"`
		Upper    interface{} `json:"upper"`
		Observed int         `json:"observed"`
		Expected float64     `json:"expected"`
	}{jsonBound(b.Lower), jsonBound(b.Upper), b.Observed, b.Expected})
}

// GeneratedSample is a reproducible pseudo-random sample drawn from one distribution.
type GeneratedSample struct {
	ID          string                 `json:"id"`
	Family      string                 `json:"family"`
	Parameters  DistributionParameters `json:"parameters"`
	Seed        uint64                 `json:"seed"`
	Size        int                    `json:"size"`
	Values      []float64              `json:"values"`
	GeneratedAt time.Time              `json:"generatedAt"`
}
