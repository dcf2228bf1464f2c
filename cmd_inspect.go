package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"forecast-viewer/models"
)

var (
	inspectRows int
	inspectJSON bool
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Load the forecast and print its rows, warnings and accuracy",
		Args:  cobra.NoArgs,
		RunE:  runInspect,
	}
	cmd.Flags().IntVarP(&inspectRows, "rows", "n", 10, "Number of rows to print (0 prints all)")
	cmd.Flags().BoolVar(&inspectJSON, "json", false, "Print the full load result as JSON")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rec, err := openRecorder(cfg)
	if err != nil {
		return err
	}
	defer rec.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Source.Timeout+renderTimeoutSlack)
	defer cancel()

	result, err := buildLoader(cfg, rec).Load(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if inspectJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printSummary(out, result, inspectRows)
	return nil
}

func printSummary(out io.Writer, result models.LoadResult, rows int) {
	s := result.Series
	fmt.Fprintf(out, "Source:   %s\n", result.Source)
	fmt.Fprintf(out, "Rows:     %d\n", s.Len())
	fmt.Fprintf(out, "Warnings: %d\n", len(result.Warnings))
	fmt.Fprintf(out, "MAE:      %s\n", formatMetric(result.Accuracy.MAE))
	fmt.Fprintf(out, "RMSE:     %s (%d points)\n", formatMetric(result.Accuracy.RMSE), result.Accuracy.Points)

	if s.Len() > 0 {
		n := s.Len()
		if rows > 0 && rows < n {
			n = rows
		}
		fmt.Fprintln(out)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIMESTAMP\tACTUAL\tPREDICTED")
		for i := 0; i < n; i++ {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Timestamps[i], formatMetric(s.Actual[i]), formatMetric(s.Predicted[i]))
		}
		tw.Flush()
		if n < s.Len() {
			fmt.Fprintf(out, "... %d more\n", s.Len()-n)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(out)
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "line %d: %s %q: %s\n", w.Line, w.Field, w.Value, w.Reason)
		}
	}
}

func formatMetric(f float64) string {
	if math.IsNaN(f) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", f)
}
