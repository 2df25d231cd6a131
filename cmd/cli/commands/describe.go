package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inferloop/statlab/internal/analytics"
)

type DescribeOptions struct {
	Data string
	Bins int
}

func NewDescribeCmd(rt *Runtime) *cobra.Command {
	opts := &DescribeOptions{}

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Summarise a sample",
		Long: `Compute count, sum, extremes, mean, median, mode, variance, standard deviation,
quartiles, skewness, kurtosis and an equal-width histogram.`,
		Example: `  statlab describe --data 2,4,4,4,5,5,7,9
  seq 1 100 | statlab describe --bins 5 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := rt.readSample(opts.Data)
			if err != nil {
				return err
			}
			result, err := rt.Engine.Describe(cmd.Context(), data, opts.Bins)
			if err != nil {
				return err
			}
			return rt.render(cmd.OutOrStdout(), result, func(tw *tabwriter.Writer) {
				printSummary(tw, result)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "Comma-separated sample (read from stdin when omitted)")
	cmd.Flags().IntVar(&opts.Bins, "bins", 0, "Histogram bins (0 picks ceil(sqrt(n)))")

	return cmd
}

func printSummary(tw *tabwriter.Writer, result *analytics.DescribeResult) {
	s := result.Summary
	row(tw, "Count", s.Count)
	row(tw, "Sum", s.Sum)
	row(tw, "Mean", s.Mean)
	row(tw, "Median", s.Median)
	row(tw, "Mode", formatFloats(s.Mode))
	row(tw, "Std (population)", s.Std)
	row(tw, "Variance (population)", s.Variance)
	if s.Count > 1 {
		row(tw, "Std (sample)", s.SampleStdDev)
		row(tw, "Standard error", s.StandardErrorMean)
	}
	row(tw, "Min", s.Min)
	row(tw, "Max", s.Max)
	row(tw, "Range", s.Range)
	row(tw, "Q1", s.Quartiles.Q1)
	row(tw, "Q3", s.Quartiles.Q3)
	row(tw, "IQR", s.Quartiles.IQR)
	row(tw, "Skewness", s.Skewness)
	row(tw, "Kurtosis (excess)", s.Kurtosis)

	fmt.Fprintln(tw, "\nHistogram:")
	for _, bin := range result.Histogram {
		row(tw, "  "+formatFloat(bin.Lower)+" to "+formatFloat(bin.Upper), bin.Count)
	}
}
