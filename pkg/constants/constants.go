package constants

import "time"

// Application constants
const (
	// Application metadata
	AppName        = "statlab"
	AppDescription = "Statistical computation service"
	AppVersion     = "0.1.0"

	// API constants
	APIVersion = "v1"
	APIPrefix  = "/api/v1"

	// Default configuration values
	DefaultPort            = 8080
	DefaultMetricsPort     = 9090
	DefaultHost            = "0.0.0.0"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	MaxRequestBodySize     = 10 * 1024 * 1024
	MaxSampleSize          = 1000000
)

// Statistical defaults
const (
	DefaultConfidenceLevel = 0.95
	DefaultAlpha           = 0.05
	DefaultTail            = "two-tailed"

	// Descriptive and inference thresholds
	LargeSampleThreshold = 30 // n above this switches unknown-variance intervals to z
	TCDFNormalCutoff     = 30 // df at or above this uses the normal CDF directly

	// Goodness-of-fit
	MinGoFSampleSize       = 5
	MinExpectedFrequency   = 5.0
	KSCriticalCoefficient  = 1.36 // alpha ~ 0.05
	KSSeriesTerms          = 100
	KSSeriesTolerance      = 1e-15
	KSSmallLambda          = 0.2
	ADProbabilityClamp     = 1e-15
	GammaShapeFloor        = 0.001
	DefaultPowerCurveSigma = 3.0  // curve spans mu0 +/- 3 sigma
	DefaultPowerCurveSteps = 10.0 // sigma/10 increments
	MaxPowerCurvePoints    = 10000

	// Binning
	MaxBins = 10000

	// Iterative approximations
	MaxIterations     = 1000
	IterationEpsilon  = 1e-14
	ContinuedFracTiny = 1e-300
)

// Distribution families
const (
	FamilyNormal      = "normal"
	FamilyUniform     = "uniform"
	FamilyExponential = "exponential"
	FamilyPoisson     = "poisson"
	FamilyGamma       = "gamma"
	FamilyBeta        = "beta"
)

// Goodness-of-fit test identifiers
const (
	TestKolmogorovSmirnov = "ks"
	TestChiSquare         = "chi-square"
	TestAndersonDarling   = "anderson-darling"
	TestJarqueBera        = "jarque-bera"
)

// Operation names used in logs and metrics
const (
	OpDescribe           = "describe"
	OpMeanInterval       = "mean_interval"
	OpTwoSampleInterval  = "two_sample_interval"
	OpProportionInterval = "proportion_interval"
	OpTwoPropInterval    = "two_proportion_interval"
	OpZTest              = "z_test"
	OpTTest              = "t_test"
	OpPower              = "power"
	OpPowerCurve         = "power_curve"
	OpSampleSizePower    = "sample_size_power"
	OpSampleSizeMargin   = "sample_size_margin"
	OpSampleSizeProp     = "sample_size_proportion"
	OpEstimate           = "estimate"
	OpGoodnessOfFit      = "goodness_of_fit"
	OpGoodnessOfFitSuite = "goodness_of_fit_suite"
	OpGenerate           = "generate"
)
