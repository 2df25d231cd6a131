package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inferloop/statlab/internal/validation/tests"
)

type GofOptions struct {
	Data            string
	Test            string
	Family          string
	Params          map[string]string
	Alpha           float64
	Bins            int
	EstimatedParams int
}

func NewGofCmd(rt *Runtime) *cobra.Command {
	opts := &GofOptions{}

	cmd := &cobra.Command{
		Use:   "gof",
		Short: "Goodness-of-fit tests against a hypothesized distribution",
		Long: `Run Kolmogorov-Smirnov, chi-square, Anderson-Darling or Jarque-Bera against a
distribution family. Parameters given with --param are used as is; otherwise they are
fitted by maximum likelihood. --test all runs every test applicable to the family.`,
		Example: `  statlab gof --test ks --family normal --param mean=0 --param std=1 --data ...
  statlab gof --test all --family normal < sample.txt
  statlab gof --test chi-square --family poisson --bins 8 --format json < counts.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(opts.Params)
			if err != nil {
				return err
			}
			data, err := rt.readSample(opts.Data)
			if err != nil {
				return err
			}

			chiOpts := tests.ChiSquareOptions{Bins: opts.Bins, EstimatedParams: opts.EstimatedParams}
			if !cmd.Flags().Changed("bins") {
				chiOpts.Bins = rt.Config.ChiSquareBins
			}
			alpha := rt.alpha(opts.Alpha)

			if strings.EqualFold(opts.Test, "all") {
				suite, err := rt.Engine.GoodnessOfFitSuite(cmd.Context(), data, opts.Family, alpha, params, chiOpts)
				if err != nil {
					return err
				}
				return rt.render(cmd.OutOrStdout(), suite, func(tw *tabwriter.Writer) {
					row(tw, "Distribution", suite.Distribution)
					row(tw, "Parameters", formatParams(suite.Parameters))
					row(tw, "Sample size", suite.SampleSize)
					for _, result := range suite.Results {
						fmt.Fprintln(tw)
						printGoF(tw, result)
					}
				})
			}

			result, err := rt.Engine.GoodnessOfFit(cmd.Context(), data, opts.Test, opts.Family, alpha, params, chiOpts)
			if err != nil {
				return err
			}
			return rt.render(cmd.OutOrStdout(), result, func(tw *tabwriter.Writer) {
				row(tw, "Distribution", result.Distribution)
				row(tw, "Parameters", formatParams(result.Parameters))
				row(tw, "Sample size", result.SampleSize)
				fmt.Fprintln(tw)
				printGoF(tw, result)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "Comma-separated sample (read from stdin when omitted)")
	cmd.Flags().StringVarP(&opts.Test, "test", "t", "all", "ks, chi-square, anderson-darling, jarque-bera or all")
	cmd.Flags().StringVarP(&opts.Family, "family", "f", "normal", "Hypothesized distribution family")
	cmd.Flags().StringToStringVarP(&opts.Params, "param", "p", nil, "Distribution parameter as name=value (repeatable)")
	cmd.Flags().Float64VarP(&opts.Alpha, "alpha", "a", 0, "Significance level; defaults to the config value")
	cmd.Flags().IntVar(&opts.Bins, "bins", 0, "Chi-square bins before merging (0 picks ceil(sqrt(n)), at least 5)")
	cmd.Flags().IntVar(&opts.EstimatedParams, "estimated-params", 0, "Override the parameter count removed from chi-square degrees of freedom")

	return cmd
}

func printGoF(tw *tabwriter.Writer, result *tests.GoFResult) {
	row(tw, "Test", result.TestType)
	row(tw, "Statistic", result.Statistic)
	if result.AdjustedStatistic != 0 {
		row(tw, "Adjusted statistic", result.AdjustedStatistic)
	}
	row(tw, "Critical value", result.CriticalValue)
	row(tw, "p-value", result.PValue)
	if result.DegreesOfFreedom > 0 {
		row(tw, "Degrees of freedom", result.DegreesOfFreedom)
	}
	row(tw, "Decision", decision(result.IsReject))
	row(tw, "Interpretation", result.Interpretation)
}
