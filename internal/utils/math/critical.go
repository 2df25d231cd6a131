package math

import (
	"math"

	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

// Sampling selects the reference distribution of a critical value.
type Sampling int

const (
	SamplingZ Sampling = iota
	SamplingT
)

func (s Sampling) String() string {
	if s == SamplingT {
		return "t"
	}
	return "z"
}

// Tabulated two-sided confidence levels.
var tabulatedLevels = [3]float64{0.90, 0.95, 0.99}

var zTable = [3]float64{1.645, 1.96, 2.576}

type tRow struct {
	df     int
	values [3]float64
}

// tTable holds two-sided t critical values for the tabulated levels.
var tTable = []tRow{
	{1, [3]float64{6.314, 12.706, 63.657}},
	{2, [3]float64{2.920, 4.303, 9.925}},
	{3, [3]float64{2.353, 3.182, 5.841}},
	{4, [3]float64{2.132, 2.776, 4.604}},
	{5, [3]float64{2.015, 2.571, 4.032}},
	{6, [3]float64{1.943, 2.447, 3.707}},
	{7, [3]float64{1.895, 2.365, 3.499}},
	{8, [3]float64{1.860, 2.306, 3.355}},
	{9, [3]float64{1.833, 2.262, 3.250}},
	{10, [3]float64{1.812, 2.228, 3.169}},
	{11, [3]float64{1.796, 2.201, 3.106}},
	{12, [3]float64{1.782, 2.179, 3.055}},
	{13, [3]float64{1.771, 2.160, 3.012}},
	{14, [3]float64{1.761, 2.145, 2.977}},
	{15, [3]float64{1.753, 2.131, 2.947}},
	{16, [3]float64{1.746, 2.120, 2.921}},
	{17, [3]float64{1.740, 2.110, 2.898}},
	{18, [3]float64{1.734, 2.101, 2.878}},
	{19, [3]float64{1.729, 2.093, 2.861}},
	{20, [3]float64{1.725, 2.086, 2.845}},
	{21, [3]float64{1.721, 2.080, 2.831}},
	{22, [3]float64{1.717, 2.074, 2.819}},
	{23, [3]float64{1.714, 2.069, 2.807}},
	{24, [3]float64{1.711, 2.064, 2.797}},
	{25, [3]float64{1.708, 2.060, 2.787}},
	{26, [3]float64{1.706, 2.056, 2.779}},
	{27, [3]float64{1.703, 2.052, 2.771}},
	{28, [3]float64{1.701, 2.048, 2.763}},
	{29, [3]float64{1.699, 2.045, 2.756}},
	{30, [3]float64{1.697, 2.042, 2.750}},
	{40, [3]float64{1.684, 2.021, 2.704}},
	{50, [3]float64{1.676, 2.009, 2.678}},
	{60, [3]float64{1.671, 2.000, 2.660}},
	{80, [3]float64{1.664, 1.990, 2.639}},
	{100, [3]float64{1.660, 1.984, 2.626}},
	{120, [3]float64{1.658, 1.980, 2.617}},
	{1000, [3]float64{1.646, 1.962, 2.581}},
	{10000, [3]float64{1.645, 1.960, 2.576}},
}

func tabulatedColumn(level float64) (int, bool) {
	for i, l := range tabulatedLevels {
		if math.Abs(level-l) < 1e-9 {
			return i, true
		}
	}
	return 0, false
}

// EffectiveLevel converts a confidence level into the two-sided level whose critical
// value serves the requested tail.
func EffectiveLevel(confidence float64, oneSided bool) float64 {
	if oneSided {
		return 2*confidence - 1
	}
	return confidence
}

// TableZ returns the hard-coded z value for a tabulated two-sided level.
func TableZ(level float64) (float64, bool) {
	col, ok := tabulatedColumn(level)
	if !ok {
		return 0, false
	}
	return zTable[col], true
}

// ApproxZ derives the two-sided z value for any level from the inverse error function.
func ApproxZ(level float64) float64 {
	alpha := 1 - level
	return NormalQuantile(1 - alpha/2)
}

// TableT looks up the two-sided t value, snapping df down to the nearest tabulated row.
func TableT(level float64, df int) (float64, bool) {
	col, ok := tabulatedColumn(level)
	if !ok || df < 1 {
		return 0, false
	}

	row := tTable[0]
	for _, r := range tTable {
		if r.df > df {
			break
		}
		row = r
	}
	return row.values[col], true
}

// ApproxT expands ApproxZ with the Cornish-Fisher terms in 1/df.
func ApproxT(level float64, df int) float64 {
	z := ApproxZ(level)
	v := float64(df)
	z3 := z * z * z
	z5 := z3 * z * z

	return z + (z3+z)/(4*v) + (5*z5+16*z3+3*z)/(96*v*v)
}

// CriticalValue returns the positive critical value for the given confidence and tail.
// Tabulated levels (0.90, 0.95, 0.99 after the one-sided conversion) come from the
// tables; every other level falls back to the approximations. df is ignored for z.
func CriticalValue(kind Sampling, confidence float64, df int, tail models.TailType) (float64, error) {
	if confidence <= 0 || confidence >= 1 || math.IsNaN(confidence) {
		return 0, errors.NewInvalidParameterError("confidenceLevel", confidence, "must lie in (0, 1)")
	}

	level := EffectiveLevel(confidence, tail.IsOneSided())
	if level <= 0 {
		return 0, errors.NewInvalidParameterError("confidenceLevel", confidence, "one-sided level must exceed 0.5")
	}

	switch kind {
	case SamplingT:
		if df < 1 {
			return 0, errors.NewInvalidParameterError("degreesOfFreedom", df, "must be at least 1")
		}
		if v, ok := TableT(level, df); ok {
			return v, nil
		}
		return ApproxT(level, df), nil
	default:
		if v, ok := TableZ(level); ok {
			return v, nil
		}
		return ApproxZ(level), nil
	}
}

// ZCriticalValue is CriticalValue for the normal reference distribution.
func ZCriticalValue(confidence float64, tail models.TailType) (float64, error) {
	return CriticalValue(SamplingZ, confidence, 0, tail)
}

// TCriticalValue is CriticalValue for Student's t with df degrees of freedom.
func TCriticalValue(confidence float64, df int, tail models.TailType) (float64, error) {
	return CriticalValue(SamplingT, confidence, df, tail)
}
