// Command report loads a transaction file and prints the dashboard tables
// for a date range as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"shopee-dashboard/internal/analytics"
	"shopee-dashboard/internal/config"
	"shopee-dashboard/internal/dataset"
	apperrors "shopee-dashboard/internal/errors"
	"shopee-dashboard/internal/observability"
	"shopee-dashboard/internal/services"
)

type reportFlags struct {
	file        string
	start       string
	end         string
	top         int
	dropInvalid bool
	logLevel    string
	timeout     time.Duration
}

func newRootCmd() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print sales, demographic and RFM tables for a dataset",
		Long: `Load a .csv or .xlsx transaction export and print the derived tables
as JSON: daily orders, best and worst products, customers by gender, age
group and state, top RFM customers and the summary metrics.

Without --start and --end the whole dataset is reported.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "all_data.csv", "Dataset file (.csv or .xlsx)")
	cmd.Flags().StringVar(&flags.start, "start", "", "First order date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.end, "end", "", "Last order date to include (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&flags.top, "top", "n", 5, "Number of rows in each ranking")
	cmd.Flags().BoolVar(&flags.dropInvalid, "drop-invalid", false, "Skip malformed rows instead of failing")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "warn", "Log level for stderr (debug, info, warn, error)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "Overall time limit")

	return cmd
}

func parseRange(start, end string) (*analytics.DateRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, apperrors.InvalidRange("--start and --end must be given together")
	}
	s, err := civil.ParseDate(start)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidRange, "--start must be YYYY-MM-DD")
	}
	e, err := civil.ParseDate(end)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidRange, "--end must be YYYY-MM-DD")
	}
	rng, err := analytics.NewDateRange(s, e)
	if err != nil {
		return nil, err
	}
	return &rng, nil
}

func runReport(cmd *cobra.Command, flags reportFlags) error {
	if flags.top <= 0 {
		return fmt.Errorf("--top must be positive, got %d", flags.top)
	}
	rng, err := parseRange(flags.start, flags.end)
	if err != nil {
		return err
	}

	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), config.LoggerConfig{
		Level:  flags.logLevel,
		Format: "text",
	})

	policy := dataset.Abort
	if flags.dropInvalid {
		policy = dataset.Drop
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
	defer cancel()

	svc := services.NewAnalytics(config.AnalyticsConfig{TopN: flags.top, Timeout: flags.timeout}, logger)
	if err := svc.LoadFromFile(ctx, dataset.NewLoader(policy, logger), flags.file); err != nil {
		return err
	}

	dashboard, err := svc.Dashboard(ctx, rng)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(dashboard)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
