package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inferloop/statlab/pkg/models"
)

type SampleSizeOptions struct {
	Mu1        float64
	Mu0        float64
	Sigma      float64
	Alpha      float64
	Beta       float64
	Tail       string
	Margin     float64
	Confidence float64
	Proportion float64
}

func NewSampleSizeCmd(rt *Runtime) *cobra.Command {
	opts := &SampleSizeOptions{}

	cmd := &cobra.Command{
		Use:   "samplesize",
		Short: "Minimum sample sizes for a target power or margin of error",
	}

	power := &cobra.Command{
		Use:     "power",
		Short:   "Smallest n giving power 1-beta for a z-test at mu1",
		Example: `  statlab samplesize power --mu1 105 --mu0 100 --sigma 15 --beta 0.2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tail, err := models.ParseTailType(rt.tail(opts.Tail))
			if err != nil {
				return err
			}
			n, err := rt.Engine.SampleSizeForPower(cmd.Context(), opts.Mu1, opts.Mu0, opts.Sigma, rt.alpha(opts.Alpha), opts.Beta, tail)
			if err != nil {
				return err
			}
			return rt.printSampleSize(cmd, n)
		},
	}
	power.Flags().Float64Var(&opts.Mu1, "mu1", 0, "Alternative mean")
	power.Flags().Float64Var(&opts.Mu0, "mu0", 0, "Hypothesized mean")
	power.Flags().Float64Var(&opts.Sigma, "sigma", 0, "Population standard deviation")
	power.Flags().Float64VarP(&opts.Alpha, "alpha", "a", 0, "Significance level; defaults to the config value")
	power.Flags().Float64Var(&opts.Beta, "beta", 0.2, "Type II error rate (power = 1 - beta)")
	power.Flags().StringVar(&opts.Tail, "tail", "", "two-tailed, left-tailed or right-tailed; defaults to the config value")

	margin := &cobra.Command{
		Use:     "margin",
		Short:   "Smallest n for a mean interval no wider than +/- margin",
		Example: `  statlab samplesize margin --sigma 15 --margin 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rt.Engine.SampleSizeForMargin(cmd.Context(), opts.Sigma, opts.Margin, rt.confidence(opts.Confidence))
			if err != nil {
				return err
			}
			return rt.printSampleSize(cmd, n)
		},
	}
	margin.Flags().Float64Var(&opts.Sigma, "sigma", 0, "Population standard deviation")

	proportion := &cobra.Command{
		Use:     "proportion",
		Short:   "Smallest n for a proportion interval no wider than +/- margin",
		Example: `  statlab samplesize proportion --margin 0.03`,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rt.Engine.SampleSizeForProportionMargin(cmd.Context(), opts.Proportion, opts.Margin, rt.confidence(opts.Confidence))
			if err != nil {
				return err
			}
			return rt.printSampleSize(cmd, n)
		},
	}
	proportion.Flags().Float64VarP(&opts.Proportion, "proportion", "p", 0.5, "Anticipated proportion (0.5 is the conservative choice)")

	for _, c := range []*cobra.Command{margin, proportion} {
		c.Flags().Float64Var(&opts.Margin, "margin", 0, "Desired margin of error")
		c.Flags().Float64VarP(&opts.Confidence, "confidence", "c", 0, "Confidence level; defaults to the config value")
	}

	cmd.AddCommand(power, margin, proportion)
	return cmd
}

func (rt *Runtime) printSampleSize(cmd *cobra.Command, n int) error {
	if rt.Config.Format == "json" {
		return rt.render(cmd.OutOrStdout(), map[string]int{"sampleSize": n}, nil)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Required sample size: %d\n", n)
	return err
}
