package commands

import (
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inferloop/statlab/internal/distributions"
	"github.com/inferloop/statlab/internal/estimation"
)

type EstimateOptions struct {
	Data   string
	Family string
	Method string
}

func NewEstimateCmd(rt *Runtime) *cobra.Command {
	opts := &EstimateOptions{}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Fit distribution parameters by maximum likelihood or method of moments",
		Example: `  statlab estimate --family gamma --data 1.2,0.8,2.5,1.9,3.1
  statlab estimate --family beta --method mom < proportions.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			family, err := distributions.ParseFamily(opts.Family)
			if err != nil {
				return err
			}
			method, err := estimation.ParseMethod(opts.Method)
			if err != nil {
				return err
			}
			data, err := rt.readSample(opts.Data)
			if err != nil {
				return err
			}

			result, err := rt.Engine.Estimate(cmd.Context(), data, family, method)
			if err != nil {
				return err
			}
			return rt.render(cmd.OutOrStdout(), result, func(tw *tabwriter.Writer) {
				row(tw, "Family", result.Family)
				row(tw, "Method", result.Method)
				row(tw, "Sample size", result.SampleSize)
				row(tw, "Parameters", formatParams(result.Parameters))
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "Comma-separated sample (read from stdin when omitted)")
	cmd.Flags().StringVarP(&opts.Family, "family", "f", "", "normal, uniform, exponential, poisson, gamma or beta (required)")
	cmd.Flags().StringVarP(&opts.Method, "method", "m", "mle", "mle or mom")
	_ = cmd.MarkFlagRequired("family")

	return cmd
}
