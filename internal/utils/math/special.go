package math

import (
	"math"

	"github.com/inferloop/statlab/pkg/constants"
)

// Abramowitz-Stegun 7.1.26 coefficients
const (
	erfA1 = 0.254829592
	erfA2 = -0.284496736
	erfA3 = 1.421413741
	erfA4 = -1.453152027
	erfA5 = 1.061405429
	erfP  = 0.3275911

	// Winitzki constant for the closed-form inverse
	erfInvA = 0.140012
)

// Erf approximates the error function with a maximum absolute error of about 1.5e-7.
func Erf(x float64) float64 {
	if x == 0 {
		return 0
	}

	sign := 1.0
	if x < 0 {
		sign = -1.0
		x = -x
	}

	t := 1.0 / (1.0 + erfP*x)
	poly := ((((erfA5*t+erfA4)*t+erfA3)*t+erfA2)*t + erfA1) * t
	y := 1.0 - poly*math.Exp(-x*x)

	return sign * y
}

// NormalCDF returns the standard normal cumulative probability at x.
func NormalCDF(x float64) float64 {
	return 0.5 * (1 + Erf(x/math.Sqrt2))
}

// NormalPDF returns the standard normal density at x.
func NormalPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// InverseErf approximates erf⁻¹(x) on (-1, 1). Arguments with |x| >= 1 return a signed
// infinity instead of an error.
func InverseErf(x float64) float64 {
	switch {
	case x == 0:
		return 0
	case x >= 1:
		return math.Inf(1)
	case x <= -1:
		return math.Inf(-1)
	}

	sign := 1.0
	if x < 0 {
		sign = -1.0
	}

	ln := math.Log(1 - x*x)
	t := 2/(math.Pi*erfInvA) + ln/2

	return sign * math.Sqrt(math.Sqrt(t*t-ln/erfInvA)-t)
}

// NormalQuantile returns z such that NormalCDF(z) ≈ p.
func NormalQuantile(p float64) float64 {
	return math.Sqrt2 * InverseErf(2*p-1)
}

// TCDF approximates the Student's t cumulative probability by mapping x onto the
// normal scale. It is not an exact t integral; for df >= 30 it is NormalCDF(x).
func TCDF(x, df float64) float64 {
	if df >= constants.TCDFNormalCutoff {
		return NormalCDF(x)
	}

	z := x * (1 - 1/(4*df)) / math.Sqrt(1+x*x/(2*df))
	return NormalCDF(z)
}
