package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inferloop/statlab/internal/analytics"
	"github.com/inferloop/statlab/internal/inference"
	statmath "github.com/inferloop/statlab/internal/utils/math"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

type PowerOptions struct {
	Test       string
	Mu1        float64
	Mu0        float64
	Sigma      float64
	N          int
	Alpha      float64
	Tail       string
	Curve      bool
	CurveStart float64
	CurveEnd   float64
	CurveStep  float64
}

func NewPowerCmd(rt *Runtime) *cobra.Command {
	opts := &PowerOptions{}

	cmd := &cobra.Command{
		Use:   "power",
		Short: "Power of a z- or t-test at an alternative mean",
		Long: `Compute the probability of rejecting H0: mu = mu0 when the true mean is mu1.
With --curve the power function is also tabulated, by default over mu0 +/- 3 sigma
in steps of sigma/10.`,
		Example: `  statlab power --mu1 105 --mu0 100 --sigma 15 --n 50
  statlab power --test t --mu1 105 --mu0 100 --sigma 15 --n 20 --curve --curve-step 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sampling, err := parseSampling(opts.Test)
			if err != nil {
				return err
			}
			tail, err := models.ParseTailType(rt.tail(opts.Tail))
			if err != nil {
				return err
			}

			req := analytics.PowerRequest{
				Test:         sampling,
				Mu1:          opts.Mu1,
				Mu0:          opts.Mu0,
				Sigma:        opts.Sigma,
				N:            opts.N,
				Alpha:        rt.alpha(opts.Alpha),
				Tail:         tail,
				IncludeCurve: opts.Curve,
				Curve:        inference.PowerCurveSpec{Step: opts.CurveStep},
			}
			if cmd.Flags().Changed("curve-start") {
				req.Curve.Start = &opts.CurveStart
			}
			if cmd.Flags().Changed("curve-end") {
				req.Curve.End = &opts.CurveEnd
			}

			result, err := rt.Engine.Power(cmd.Context(), req)
			if err != nil {
				return err
			}
			return rt.render(cmd.OutOrStdout(), result, func(tw *tabwriter.Writer) {
				row(tw, "Test", result.Test)
				row(tw, "Power", result.Power)
				if len(result.Curve) > 0 {
					fmt.Fprintln(tw, "\nmu\tpower")
					for _, p := range result.Curve {
						fmt.Fprintf(tw, "%s\t%s\n", formatFloat(p.Mu), formatFloat(p.Power))
					}
				}
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Test, "test", "t", "z", "z or t")
	cmd.Flags().Float64Var(&opts.Mu1, "mu1", 0, "Alternative (true) mean")
	cmd.Flags().Float64Var(&opts.Mu0, "mu0", 0, "Hypothesized mean")
	cmd.Flags().Float64Var(&opts.Sigma, "sigma", 0, "Population standard deviation")
	cmd.Flags().IntVarP(&opts.N, "n", "n", 0, "Sample size")
	cmd.Flags().Float64VarP(&opts.Alpha, "alpha", "a", 0, "Significance level; defaults to the config value")
	cmd.Flags().StringVar(&opts.Tail, "tail", "", "two-tailed, left-tailed or right-tailed; defaults to the config value")
	cmd.Flags().BoolVar(&opts.Curve, "curve", false, "Also tabulate the power function")
	cmd.Flags().Float64Var(&opts.CurveStart, "curve-start", 0, "First mean of the curve (default mu0 - 3 sigma)")
	cmd.Flags().Float64Var(&opts.CurveEnd, "curve-end", 0, "Last mean of the curve (default mu0 + 3 sigma)")
	cmd.Flags().Float64Var(&opts.CurveStep, "curve-step", 0, "Curve increment (default sigma/10)")

	return cmd
}

func parseSampling(s string) (statmath.Sampling, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "z":
		return statmath.SamplingZ, nil
	case "t":
		return statmath.SamplingT, nil
	default:
		return 0, errors.NewInvalidParameterError("test", s, "expected z or t")
	}
}
