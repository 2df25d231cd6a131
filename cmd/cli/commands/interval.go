package commands

import (
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inferloop/statlab/internal/inference"
	"github.com/inferloop/statlab/pkg/models"
)

type IntervalOptions struct {
	Confidence float64
	Tail       string

	TwoSampleMethod     string
	ProportionMethod    string
	TwoProportionMethod string

	Data          string
	Data2         string
	Normal        bool
	KnownVariance float64

	Successes  int
	Trials     int
	Successes2 int
	Trials2    int
}

func NewIntervalCmd(rt *Runtime) *cobra.Command {
	opts := &IntervalOptions{}

	cmd := &cobra.Command{
		Use:   "interval",
		Short: "Confidence intervals for means and proportions",
	}
	cmd.PersistentFlags().Float64VarP(&opts.Confidence, "confidence", "c", 0, "Confidence level in (0, 1); defaults to the config value")
	cmd.PersistentFlags().StringVar(&opts.Tail, "tail", "", "two-tailed, left-tailed or right-tailed; defaults to the config value")

	mean := &cobra.Command{
		Use:   "mean",
		Short: "Interval for a population mean",
		Example: `  statlab interval mean --data 12.1,11.8,12.6,12.0,11.9 --confidence 0.99
  statlab interval mean --data 5,6,7 --known-variance 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := rt.readSample(opts.Data)
			if err != nil {
				return err
			}
			tail, err := models.ParseTailType(rt.tail(opts.Tail))
			if err != nil {
				return err
			}
			result, err := rt.Engine.MeanInterval(cmd.Context(), data, rt.confidence(opts.Confidence), inference.MeanIntervalOptions{
				IsNormal:           opts.Normal,
				KnownVariance:      opts.KnownVariance > 0,
				PopulationVariance: opts.KnownVariance,
				Tail:               tail,
			})
			if err != nil {
				return err
			}
			return rt.render(cmd.OutOrStdout(), result, func(tw *tabwriter.Writer) {
				printInterval(tw, result)
			})
		},
	}
	mean.Flags().StringVarP(&opts.Data, "data", "d", "", "Comma-separated sample (read from stdin when omitted)")
	mean.Flags().BoolVar(&opts.Normal, "normal", false, "Treat the population as normal (t interval regardless of n)")
	mean.Flags().Float64Var(&opts.KnownVariance, "known-variance", 0, "Known population variance (switches to a z interval)")

	twoSample := &cobra.Command{
		Use:     "two-sample",
		Short:   "Interval for the difference of two means",
		Example: `  statlab interval two-sample --data 5.1,4.9,5.6 --data2 4.2,4.8,4.4 --method pooled`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data1, err := parseNumbers(opts.Data)
			if err != nil {
				return err
			}
			data2, err := parseNumbers(opts.Data2)
			if err != nil {
				return err
			}
			tail, err := models.ParseTailType(rt.tail(opts.Tail))
			if err != nil {
				return err
			}
			result, err := rt.Engine.TwoSampleInterval(cmd.Context(), data1, data2, rt.confidence(opts.Confidence), inference.TwoSampleOptions{
				Method: inference.TwoSampleMethod(strings.ToLower(opts.TwoSampleMethod)),
				Tail:   tail,
			})
			if err != nil {
				return err
			}
			return rt.render(cmd.OutOrStdout(), result, func(tw *tabwriter.Writer) {
				printInterval(tw, result)
			})
		},
	}
	twoSample.Flags().StringVarP(&opts.Data, "data", "d", "", "First sample")
	twoSample.Flags().StringVar(&opts.Data2, "data2", "", "Second sample")
	twoSample.Flags().StringVarP(&opts.TwoSampleMethod, "method", "m", "welch", "pooled, welch or paired")

	proportion := &cobra.Command{
		Use:     "proportion",
		Short:   "Interval for a population proportion",
		Example: `  statlab interval proportion --successes 45 --trials 100 --method wilson`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tail, err := models.ParseTailType(rt.tail(opts.Tail))
			if err != nil {
				return err
			}
			result, err := rt.Engine.ProportionInterval(cmd.Context(), opts.Successes, opts.Trials, rt.confidence(opts.Confidence), inference.ProportionOptions{
				Method: inference.ProportionMethod(strings.ToLower(opts.ProportionMethod)),
				Tail:   tail,
			})
			if err != nil {
				return err
			}
			return rt.render(cmd.OutOrStdout(), result, func(tw *tabwriter.Writer) {
				row(tw, "Proportion", result.Proportion)
				printInterval(tw, &result.ConfidenceIntervalResult)
			})
		},
	}
	proportion.Flags().IntVar(&opts.Successes, "successes", 0, "Number of successes")
	proportion.Flags().IntVar(&opts.Trials, "trials", 0, "Number of trials")
	proportion.Flags().StringVarP(&opts.ProportionMethod, "method", "m", "wald", "wald or wilson")

	twoProportion := &cobra.Command{
		Use:     "two-proportion",
		Short:   "Interval for the difference of two proportions",
		Example: `  statlab interval two-proportion --successes 45 --trials 100 --successes2 30 --trials2 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tail, err := models.ParseTailType(rt.tail(opts.Tail))
			if err != nil {
				return err
			}
			result, err := rt.Engine.TwoProportionInterval(cmd.Context(), opts.Successes, opts.Trials, opts.Successes2, opts.Trials2,
				rt.confidence(opts.Confidence), inference.TwoProportionOptions{
					Method: inference.TwoProportionMethod(strings.ToLower(opts.TwoProportionMethod)),
					Tail:   tail,
				})
			if err != nil {
				return err
			}
			return rt.render(cmd.OutOrStdout(), result, func(tw *tabwriter.Writer) {
				row(tw, "Proportion 1", result.Proportion)
				if result.Proportion2 != nil {
					row(tw, "Proportion 2", *result.Proportion2)
				}
				printInterval(tw, &result.ConfidenceIntervalResult)
			})
		},
	}
	twoProportion.Flags().IntVar(&opts.Successes, "successes", 0, "Successes in the first sample")
	twoProportion.Flags().IntVar(&opts.Trials, "trials", 0, "Trials in the first sample")
	twoProportion.Flags().IntVar(&opts.Successes2, "successes2", 0, "Successes in the second sample")
	twoProportion.Flags().IntVar(&opts.Trials2, "trials2", 0, "Trials in the second sample")
	twoProportion.Flags().StringVarP(&opts.TwoProportionMethod, "method", "m", "wald", "wald or continuity-corrected")

	cmd.AddCommand(mean, twoSample, proportion, twoProportion)
	return cmd
}

func printInterval(tw *tabwriter.Writer, ci *models.ConfidenceIntervalResult) {
	row(tw, "Method", ci.Method)
	row(tw, "Confidence level", ci.ConfidenceLevel)
	row(tw, "Tail", ci.Tail)
	row(tw, "Point estimate", ci.PointEstimate)
	row(tw, "Lower", ci.Lower)
	row(tw, "Upper", ci.Upper)
	row(tw, "Margin of error", ci.MarginOfError)
	row(tw, "Critical value", ci.CriticalValue)
	row(tw, "Standard error", ci.StandardError)
	if ci.DegreesOfFreedom > 0 {
		row(tw, "Degrees of freedom", ci.DegreesOfFreedom)
	}
}
