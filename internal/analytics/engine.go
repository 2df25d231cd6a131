// Package analytics wraps the statistical core with logging, metrics and batch execution.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inferloop/statlab/internal/distributions"
	"github.com/inferloop/statlab/internal/estimation"
	"github.com/inferloop/statlab/internal/generators"
	"github.com/inferloop/statlab/internal/inference"
	"github.com/inferloop/statlab/internal/observability/metrics"
	statmath "github.com/inferloop/statlab/internal/utils/math"
	"github.com/inferloop/statlab/internal/validation/tests"
	"github.com/inferloop/statlab/pkg/constants"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

// Engine is the entry point used by the HTTP API and the CLI. It holds no mutable state
// besides its collectors, so one Engine serves concurrent callers.
type Engine struct {
	logger    *logrus.Logger
	metrics   *metrics.PrometheusMetrics
	generator *generators.SampleGenerator
	config    *EngineConfig
}

// EngineConfig contains configuration for the analytics engine
type EngineConfig struct {
	ParallelWorkers int `json:"parallel_workers" mapstructure:"parallel_workers"`
	MaxSampleSize   int `json:"max_sample_size" mapstructure:"max_sample_size"`
}

// DefaultEngineConfig returns the engine defaults
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		ParallelWorkers: 4,
		MaxSampleSize:   constants.MaxSampleSize,
	}
}

// NewEngine creates an engine. A nil logger becomes logrus.New(); nil metrics disables
// collection.
func NewEngine(config *EngineConfig, logger *logrus.Logger, pm *metrics.PrometheusMetrics) *Engine {
	if config == nil {
		config = DefaultEngineConfig()
	}
	if config.ParallelWorkers <= 0 {
		config.ParallelWorkers = 1
	}
	if config.MaxSampleSize <= 0 {
		config.MaxSampleSize = constants.MaxSampleSize
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Engine{
		logger:    logger,
		metrics:   pm,
		generator: generators.NewSampleGenerator(&generators.GeneratorConfig{MaxSize: config.MaxSampleSize}, logger),
		config:    config,
	}
}

// DescribeResult bundles the summary statistics and histogram of one sample.
type DescribeResult struct {
	Summary   *models.DescriptiveSummary `json:"summary"`
	Histogram []models.HistogramBin      `json:"histogram"`
}

// PowerRequest asks for the power at one alternative mean, optionally with the full curve.
type PowerRequest struct {
	Test         statmath.Sampling
	Mu1          float64
	Mu0          float64
	Sigma        float64
	N            int
	Alpha        float64
	Tail         models.TailType
	IncludeCurve bool
	Curve        inference.PowerCurveSpec
}

// PowerResult is the power at Mu1 plus the optional curve.
type PowerResult struct {
	Test  string              `json:"test"`
	Power float64             `json:"power"`
	Curve []models.PowerPoint `json:"curve,omitempty"`
}

// SuiteResult holds every goodness-of-fit test run against one hypothesized distribution.
type SuiteResult struct {
	Distribution string                        `json:"distribution"`
	Parameters   models.DistributionParameters `json:"parameters"`
	SampleSize   int                           `json:"sampleSize"`
	Results      []*tests.GoFResult            `json:"results"`
}

// Describe computes the descriptive summary and a histogram (bins <= 0 picks ⌈√n⌉).
func (e *Engine) Describe(ctx context.Context, data []float64, bins int) (*DescribeResult, error) {
	return run(ctx, e, constants.OpDescribe, len(data), func() (*DescribeResult, error) {
		if err := e.checkSize(data); err != nil {
			return nil, err
		}
		if err := checkBins(bins); err != nil {
			return nil, err
		}
		summary, err := statmath.Describe(data)
		if err != nil {
			return nil, err
		}
		if bins <= 0 {
			bins = statmath.DefaultBinCount(len(data))
		}
		histogram, err := statmath.Histogram(data, bins)
		if err != nil {
			return nil, err
		}
		return &DescribeResult{Summary: summary, Histogram: histogram}, nil
	})
}

// MeanInterval wraps inference.ConfidenceInterval.
func (e *Engine) MeanInterval(ctx context.Context, data []float64, level float64, opts inference.MeanIntervalOptions) (*models.ConfidenceIntervalResult, error) {
	return run(ctx, e, constants.OpMeanInterval, len(data), func() (*models.ConfidenceIntervalResult, error) {
		if err := e.checkSize(data); err != nil {
			return nil, err
		}
		return inference.ConfidenceInterval(data, level, opts)
	})
}

// TwoSampleInterval wraps inference.TwoSampleConfidenceInterval.
func (e *Engine) TwoSampleInterval(ctx context.Context, data1, data2 []float64, level float64, opts inference.TwoSampleOptions) (*models.ConfidenceIntervalResult, error) {
	return run(ctx, e, constants.OpTwoSampleInterval, len(data1)+len(data2), func() (*models.ConfidenceIntervalResult, error) {
		if err := e.checkSize(data1); err != nil {
			return nil, err
		}
		if err := e.checkSize(data2); err != nil {
			return nil, err
		}
		return inference.TwoSampleConfidenceInterval(data1, data2, level, opts)
	})
}

// ProportionInterval wraps inference.ProportionConfidenceInterval.
func (e *Engine) ProportionInterval(ctx context.Context, successes, trials int, level float64, opts inference.ProportionOptions) (*models.ProportionIntervalResult, error) {
	return run(ctx, e, constants.OpProportionInterval, trials, func() (*models.ProportionIntervalResult, error) {
		return inference.ProportionConfidenceInterval(successes, trials, level, opts)
	})
}

// TwoProportionInterval wraps inference.TwoProportionConfidenceInterval.
func (e *Engine) TwoProportionInterval(ctx context.Context, x1, n1, x2, n2 int, level float64, opts inference.TwoProportionOptions) (*models.ProportionIntervalResult, error) {
	return run(ctx, e, constants.OpTwoPropInterval, n1+n2, func() (*models.ProportionIntervalResult, error) {
		return inference.TwoProportionConfidenceInterval(x1, n1, x2, n2, level, opts)
	})
}

// ZTest wraps inference.ZTest.
func (e *Engine) ZTest(ctx context.Context, data []float64, mu0, sigma, alpha float64, tail models.TailType) (*models.TestResult, error) {
	return run(ctx, e, constants.OpZTest, len(data), func() (*models.TestResult, error) {
		if err := e.checkSize(data); err != nil {
			return nil, err
		}
		return inference.ZTest(data, mu0, sigma, alpha, tail)
	})
}

// TTest wraps inference.TTest.
func (e *Engine) TTest(ctx context.Context, data []float64, mu0, alpha float64, tail models.TailType) (*models.TestResult, error) {
	return run(ctx, e, constants.OpTTest, len(data), func() (*models.TestResult, error) {
		if err := e.checkSize(data); err != nil {
			return nil, err
		}
		return inference.TTest(data, mu0, alpha, tail)
	})
}

// SummaryTestRequest describes a one-sample test from summary statistics. SD is the
// known population sigma for the z-test and the sample standard deviation for the t-test.
type SummaryTestRequest struct {
	Test  statmath.Sampling
	Mean  float64
	SD    float64
	N     int
	Mu0   float64
	Alpha float64
	Tail  models.TailType
}

// SummaryTest runs ZTestFromSummary or TTestFromSummary.
func (e *Engine) SummaryTest(ctx context.Context, req SummaryTestRequest) (*models.TestResult, error) {
	op, test := constants.OpZTest, inference.ZTestFromSummary
	if req.Test == statmath.SamplingT {
		op, test = constants.OpTTest, inference.TTestFromSummary
	}
	return run(ctx, e, op, req.N, func() (*models.TestResult, error) {
		return test(req.Mean, req.SD, req.N, req.Mu0, req.Alpha, req.Tail)
	})
}

// Power evaluates the z- or t-test power at req.Mu1 and, when asked, the power curve.
func (e *Engine) Power(ctx context.Context, req PowerRequest) (*PowerResult, error) {
	return run(ctx, e, constants.OpPower, req.N, func() (*PowerResult, error) {
		power := inference.ZTestPower
		if req.Test == statmath.SamplingT {
			power = inference.TTestPower
		}

		p, err := power(req.Mu1, req.Mu0, req.Sigma, req.N, req.Alpha, req.Tail)
		if err != nil {
			return nil, err
		}
		result := &PowerResult{Test: req.Test.String(), Power: p}

		if req.IncludeCurve {
			spec := req.Curve
			spec.Test, spec.Mu0, spec.Sigma, spec.N, spec.Alpha, spec.Tail = req.Test, req.Mu0, req.Sigma, req.N, req.Alpha, req.Tail
			curve, err := inference.GeneratePowerFunctionData(spec)
			if err != nil {
				return nil, err
			}
			result.Curve = curve
		}
		return result, nil
	})
}

// SampleSizeForPower wraps inference.SampleSizeForPower.
func (e *Engine) SampleSizeForPower(ctx context.Context, mu1, mu0, sigma, alpha, beta float64, tail models.TailType) (int, error) {
	return run(ctx, e, constants.OpSampleSizePower, 0, func() (int, error) {
		return inference.SampleSizeForPower(mu1, mu0, sigma, alpha, beta, tail)
	})
}

// SampleSizeForMargin wraps inference.SampleSizeForMargin.
func (e *Engine) SampleSizeForMargin(ctx context.Context, sigma, margin, confidence float64) (int, error) {
	return run(ctx, e, constants.OpSampleSizeMargin, 0, func() (int, error) {
		return inference.SampleSizeForMargin(sigma, margin, confidence)
	})
}

// SampleSizeForProportionMargin wraps inference.SampleSizeForProportionMargin.
func (e *Engine) SampleSizeForProportionMargin(ctx context.Context, p, margin, confidence float64) (int, error) {
	return run(ctx, e, constants.OpSampleSizeProp, 0, func() (int, error) {
		return inference.SampleSizeForProportionMargin(p, margin, confidence)
	})
}

// Estimate fits family to data with the chosen estimator.
func (e *Engine) Estimate(ctx context.Context, data []float64, family distributions.Family, method estimation.Method) (*models.EstimationResult, error) {
	return run(ctx, e, constants.OpEstimate, len(data), func() (*models.EstimationResult, error) {
		if err := e.checkSize(data); err != nil {
			return nil, err
		}
		return estimation.Estimate(data, family, method)
	})
}

// GoodnessOfFit runs one test through the string-keyed driver.
func (e *Engine) GoodnessOfFit(ctx context.Context, data []float64, testType, family string, alpha float64, params models.DistributionParameters, opts tests.ChiSquareOptions) (*tests.GoFResult, error) {
	result, err := run(ctx, e, constants.OpGoodnessOfFit, len(data), func() (*tests.GoFResult, error) {
		if err := e.checkSize(data); err != nil {
			return nil, err
		}
		if err := checkBins(opts.Bins); err != nil {
			return nil, err
		}
		return tests.ExecuteGoFTest(data, testType, family, alpha, params, opts)
	})
	if err == nil {
		e.recordDecision(result)
	}
	return result, err
}

// GoodnessOfFitSuite runs KS and chi-square against the hypothesized distribution, plus
// Anderson-Darling and Jarque-Bera when it is normal. The distribution is resolved once
// (MLE when params is empty) and the tests run concurrently; they only read data.
func (e *Engine) GoodnessOfFitSuite(ctx context.Context, data []float64, family string, alpha float64, params models.DistributionParameters, opts tests.ChiSquareOptions) (*SuiteResult, error) {
	return run(ctx, e, constants.OpGoodnessOfFitSuite, len(data), func() (*SuiteResult, error) {
		if err := e.checkSize(data); err != nil {
			return nil, err
		}
		if err := checkBins(opts.Bins); err != nil {
			return nil, err
		}
		f, err := distributions.ParseFamily(family)
		if err != nil {
			return nil, err
		}
		dist, err := tests.ResolveDistribution(data, f, params)
		if err != nil {
			return nil, err
		}

		suite := SuiteTests(dist, opts)
		results := make([]*tests.GoFResult, len(suite))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.config.ParallelWorkers)
		for i, test := range suite {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				result, err := tests.Execute(data, test, dist, alpha)
				if err != nil {
					return err
				}
				results[i] = result
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for _, r := range results {
			e.recordDecision(r)
		}

		return &SuiteResult{
			Distribution: string(dist.Family()),
			Parameters:   dist.Parameters(),
			SampleSize:   len(data),
			Results:      results,
		}, nil
	})
}

// SuiteTests lists the tests GoodnessOfFitSuite runs for dist.
func SuiteTests(dist distributions.Distribution, opts tests.ChiSquareOptions) []tests.GoFTest {
	suite := []tests.GoFTest{tests.KS{}, tests.ChiSquare{Options: opts}}
	if _, ok := dist.(distributions.Normal); ok {
		suite = append(suite, tests.AndersonDarling{}, tests.JarqueBera{})
	}
	return suite
}

// Generate draws a seeded sample.
func (e *Engine) Generate(ctx context.Context, req generators.GenerationRequest) (*models.GeneratedSample, error) {
	return run(ctx, e, constants.OpGenerate, req.Size, func() (*models.GeneratedSample, error) {
		return e.generator.Generate(ctx, req)
	})
}

func (e *Engine) checkSize(data []float64) error {
	if len(data) > e.config.MaxSampleSize {
		return errors.NewInvalidParameterError("sampleSize", len(data), "exceeds the configured maximum")
	}
	return nil
}

// checkBins rejects histogram and chi-square bin counts above constants.MaxBins before
// any slice is sized from them.
func checkBins(bins int) error {
	if bins > constants.MaxBins {
		return errors.NewInvalidParameterError("bins", bins, fmt.Sprintf("must not exceed %d", constants.MaxBins))
	}
	return nil
}

func (e *Engine) recordDecision(result *tests.GoFResult) {
	if e.metrics != nil && result != nil {
		e.metrics.RecordGoFDecision(string(result.TestType), result.IsReject)
	}
}

// run times fn and reports it to the log and the collectors.
func run[T any](ctx context.Context, e *Engine, operation string, sampleSize int, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	start := time.Now()
	result, err := fn()
	duration := time.Since(start)

	fields := logrus.Fields{
		"operation":   operation,
		"sample_size": sampleSize,
		"duration":    duration,
	}

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		code := errors.GetCode(err)
		fields["error_code"] = code
		e.logger.WithFields(fields).WithError(err).Warn("Computation failed")
		if e.metrics != nil {
			e.metrics.RecordError("engine", code)
		}
	} else {
		e.logger.WithFields(fields).Debug("Computation completed")
	}

	if e.metrics != nil {
		e.metrics.RecordComputation(operation, status, sampleSize, duration)
	}

	if err != nil {
		return zero, err
	}
	return result, nil
}
