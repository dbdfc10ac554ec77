package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/canopy-network/statusdim/app/reporter"
	"github.com/canopy-network/statusdim/pkg/logging"
)

func newRootCmd() (*cobra.Command, error) {
	opts, err := reporter.OptionsFromEnv()
	if err != nil {
		return nil, err
	}

	cmd := &cobra.Command{
		Use:   "reporter",
		Short: "Rebuild entity status history and print occupancy reports",
		Long: `reporter rebuilds the Active/Inactive history of every entity from dated activity
records and prints the interval table, the number of entities that were ever
inactive and the number of active entities at each calendar point.

Every flag defaults to its environment variable (INPUT_PATH, INPUT_SOURCE,
GAP_THRESHOLD_DAYS, MATERIALIZE_GAPS, CALENDAR_FROM, CALENDAR_TO, CALENDAR_POINTS).

Examples:
  reporter --input shops.csv
  reporter --input shops.csv --points "Q2 2021=2021-04-01"
  reporter --source clickhouse --json`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Source.Path, "input", opts.Source.Path, "path of the activity CSV")
	flags.StringVar(&opts.Source.Kind, "source", opts.Source.Kind, "activity source: csv or clickhouse")
	flags.IntVar(&opts.History.GapThresholdDays, "threshold", opts.History.GapThresholdDays, "days without activity that mark an entity inactive")
	flags.BoolVar(&opts.History.MaterializeGaps, "materialize", opts.History.MaterializeGaps, "emit explicit inactive spans for silent gaps (false is the lossy legacy mode)")
	flags.IntVar(&opts.History.Parallelism, "parallelism", opts.History.Parallelism, "entities built concurrently, 0 sizes from the CPU count")
	flags.StringVar(&opts.From, "from", opts.From, "first day of the quarter calendar")
	flags.StringVar(&opts.To, "to", opts.To, "last day of the quarter calendar")
	flags.StringVar(&opts.Points, "points", opts.Points, "explicit calendar points, label=date comma separated; replaces --from/--to")
	flags.IntVar(&opts.Limit, "limit", opts.Limit, "interval rows to print, 0 prints all")
	flags.BoolVar(&opts.JSON, "json", opts.JSON, "print the report as JSON")

	return cmd, nil
}

func run(ctx context.Context, opts reporter.Options) error {
	// stdout carries the report
	logger, err := logging.NewStderr()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app, err := reporter.Initialize(ctx, logger, opts)
	if err != nil {
		logger.Error("Unable to initialize reporter", zap.Error(err))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Failed to close activity source", zap.Error(err))
		}
	}()

	report, err := app.Run(ctx)
	if err != nil {
		logger.Error("Report failed", zap.Error(err))
		return err
	}
	return reporter.Render(os.Stdout, report, opts.Limit, opts.JSON)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd, err := newRootCmd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
