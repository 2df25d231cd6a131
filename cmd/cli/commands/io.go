package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

// readSample parses --data, or stdin when the flag is empty. Numbers may be separated by
// commas, semicolons or whitespace.
func (rt *Runtime) readSample(data string) ([]float64, error) {
	if strings.TrimSpace(data) == "" {
		raw, err := io.ReadAll(rt.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		data = string(raw)
	}
	return parseNumbers(data)
}

func parseNumbers(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.NewInvalidParameterError("data", f, "not a number")
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.NewInvalidParameterError("data", f, "must be finite")
		}
		values = append(values, v)
	}
	return values, nil
}

// parseParams turns name=value pairs into distribution parameters.
func parseParams(pairs map[string]string) (models.DistributionParameters, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(models.DistributionParameters, len(pairs))
	for name, raw := range pairs {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, errors.NewInvalidParameterError(name, raw, "not a number")
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.NewInvalidParameterError(name, raw, "must be finite")
		}
		params[strings.ToLower(strings.TrimSpace(name))] = v
	}
	return params, nil
}

// render writes result as indented JSON, or calls text for the human-readable form.
func (rt *Runtime) render(w io.Writer, result interface{}, text func(tw *tabwriter.Writer)) error {
	if rt.Config.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func row(tw *tabwriter.Writer, label string, value interface{}) {
	switch v := value.(type) {
	case float64:
		fmt.Fprintf(tw, "%s:\t%s\n", label, formatFloat(v))
	default:
		fmt.Fprintf(tw, "%s:\t%v\n", label, v)
	}
}

func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	default:
		return strconv.FormatFloat(v, 'g', 6, 64)
	}
}

func formatFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, ", ")
}

func formatParams(params models.DistributionParameters) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + formatFloat(params[name])
	}
	return strings.Join(parts, ", ")
}

func decision(rejected bool) string {
	if rejected {
		return "reject H0"
	}
	return "fail to reject H0"
}
