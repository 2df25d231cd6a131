package commands

import (
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inferloop/statlab/internal/analytics"
	statmath "github.com/inferloop/statlab/internal/utils/math"
	"github.com/inferloop/statlab/pkg/models"
)

type TestOptions struct {
	Data  string
	Mu0   float64
	Sigma float64
	Alpha float64
	Tail  string

	Mean float64
	SD   float64
	N    int
}

func NewTestCmd(rt *Runtime) *cobra.Command {
	opts := &TestOptions{}

	cmd := &cobra.Command{
		Use:   "test",
		Short: "One-sample z and t tests for a mean",
		Long: `Test H0: mu = mu0 from a sample, or from summary statistics when --n is given
(--mean with --sigma for z, --mean with --sd for t).`,
	}
	cmd.PersistentFlags().StringVarP(&opts.Data, "data", "d", "", "Comma-separated sample (read from stdin when omitted and --n is not set)")
	cmd.PersistentFlags().Float64Var(&opts.Mu0, "mu0", 0, "Hypothesized mean")
	cmd.PersistentFlags().Float64VarP(&opts.Alpha, "alpha", "a", 0, "Significance level; defaults to the config value")
	cmd.PersistentFlags().StringVar(&opts.Tail, "tail", "", "two-tailed, left-tailed or right-tailed; defaults to the config value")
	cmd.PersistentFlags().Float64Var(&opts.Mean, "mean", 0, "Sample mean (summary form)")
	cmd.PersistentFlags().IntVar(&opts.N, "n", 0, "Sample size (selects the summary form)")

	z := &cobra.Command{
		Use:     "z",
		Short:   "z-test with known population sigma",
		Example: `  statlab test z --data 51,49,53,55,52 --mu0 50 --sigma 2 --tail right`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, rt, opts, statmath.SamplingZ)
		},
	}
	z.Flags().Float64Var(&opts.Sigma, "sigma", 0, "Known population standard deviation")

	t := &cobra.Command{
		Use:     "t",
		Short:   "t-test with the sample standard deviation",
		Example: `  statlab test t --mean 52 --sd 4 --n 16 --mu0 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, rt, opts, statmath.SamplingT)
		},
	}
	t.Flags().Float64Var(&opts.SD, "sd", 0, "Sample standard deviation (summary form)")

	cmd.AddCommand(z, t)
	return cmd
}

func runTest(cmd *cobra.Command, rt *Runtime, opts *TestOptions, sampling statmath.Sampling) error {
	tail, err := models.ParseTailType(rt.tail(opts.Tail))
	if err != nil {
		return err
	}
	alpha := rt.alpha(opts.Alpha)

	var result *models.TestResult
	switch {
	case opts.N > 0:
		sd := opts.SD
		if sampling == statmath.SamplingZ {
			sd = opts.Sigma
		}
		result, err = rt.Engine.SummaryTest(cmd.Context(), analytics.SummaryTestRequest{
			Test: sampling, Mean: opts.Mean, SD: sd, N: opts.N, Mu0: opts.Mu0, Alpha: alpha, Tail: tail,
		})
	case sampling == statmath.SamplingZ:
		var data []float64
		if data, err = rt.readSample(opts.Data); err == nil {
			result, err = rt.Engine.ZTest(cmd.Context(), data, opts.Mu0, opts.Sigma, alpha, tail)
		}
	default:
		var data []float64
		if data, err = rt.readSample(opts.Data); err == nil {
			result, err = rt.Engine.TTest(cmd.Context(), data, opts.Mu0, alpha, tail)
		}
	}
	if err != nil {
		return err
	}

	return rt.render(cmd.OutOrStdout(), result, func(tw *tabwriter.Writer) {
		row(tw, "Method", result.Method)
		row(tw, "Sample size", result.SampleSize)
		row(tw, "Sample mean", result.SampleMean)
		row(tw, "Hypothesized mean", result.Hypothesized)
		row(tw, "Tail", result.Tail)
		row(tw, "Statistic", result.Statistic)
		row(tw, "Critical value", result.CriticalValue)
		row(tw, "p-value", result.PValue)
		row(tw, "Alpha", result.Alpha)
		row(tw, "Decision", decision(result.Rejected))
		row(tw, "Interval lower", result.ConfidenceInterval.Lower)
		row(tw, "Interval upper", result.ConfidenceInterval.Upper)
	})
}
