package reporter

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/canopy-network/statusdim/pkg/history"
	"github.com/canopy-network/statusdim/pkg/ingest"
	"github.com/canopy-network/statusdim/pkg/query"
	"github.com/canopy-network/statusdim/pkg/settings"
	"github.com/canopy-network/statusdim/pkg/utils"
)

// Options is everything one reporter run needs. Flags fill it, falling back to the environment.
type Options struct {
	Source  settings.SourceInput
	History settings.HistoryInput
	Points  string
	From    string
	To      string
	Limit   int
	JSON    bool
}

// OptionsFromEnv returns the environment defaults the flags start from.
func OptionsFromEnv() (Options, error) {
	historyInput, err := settings.HistoryInputFromEnv()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Source:  settings.SourceInputFromEnv(),
		History: historyInput,
		Points:  utils.Env("CALENDAR_POINTS", ""),
		From:    utils.Env("CALENDAR_FROM", settings.DefaultCalendarFrom),
		To:      utils.Env("CALENDAR_TO", settings.DefaultCalendarTo),
		Limit:   50,
	}, nil
}

type App struct {
	Source   ingest.Source
	Builder  *history.Builder
	Calendar []history.CalendarPoint
	Logger   *zap.Logger

	closeSource func() error
}

// Report is the result of one run.
type Report struct {
	BuildID      string             `json:"build_id"`
	Mode         string             `json:"mode"`
	Entities     int                `json:"entities"`
	Records      int                `json:"records"`
	Intervals    []history.Interval `json:"intervals"`
	EverInactive int                `json:"ever_inactive"`
	ActiveCounts []query.PointCount `json:"active_counts"`
}

// Initialize validates opts and opens the source.
func Initialize(ctx context.Context, logger *zap.Logger, opts Options) (*App, error) {
	cfg, err := opts.History.Config()
	if err != nil {
		return nil, err
	}
	calendar, err := settings.Calendar(opts.Points, opts.From, opts.To)
	if err != nil {
		return nil, err
	}
	builder, err := history.NewBuilder(cfg, logger)
	if err != nil {
		return nil, err
	}
	source, closeSource, err := opts.Source.Open(ctx, logger)
	if err != nil {
		return nil, err
	}
	return &App{
		Source:      source,
		Builder:     builder,
		Calendar:    calendar,
		Logger:      logger,
		closeSource: closeSource,
	}, nil
}

// Run loads the source, builds the history and answers both reports.
func (a *App) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	records, err := a.Source.Load(ctx)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug("Activity loaded", zap.String("source", a.Source.Name()), zap.Int("records", len(records)))

	table, err := a.Builder.Build(ctx, records)
	if err != nil {
		return nil, err
	}
	engine, err := query.NewTableEngine(table)
	if err != nil {
		return nil, err
	}

	mode := "materialized"
	if !a.Builder.Config.MaterializeGaps {
		mode = "legacy"
		a.Logger.Warn("Gap materialization is off, days inside activity gaps are not covered by any interval")
	}

	report := &Report{
		BuildID:      table.ID,
		Mode:         mode,
		Entities:     table.Entities,
		Records:      table.Records,
		Intervals:    table.Intervals,
		EverInactive: engine.EverInactive(),
		ActiveCounts: engine.ActiveCounts(a.Calendar),
	}
	a.Logger.Info("Report computed",
		zap.String("build_id", report.BuildID),
		zap.Int("entities", report.Entities),
		zap.Int("ever_inactive", report.EverInactive),
		zap.Duration("took", time.Since(start)),
	)
	return report, nil
}

// Close releases the source.
func (a *App) Close() error {
	if a.closeSource == nil {
		return nil
	}
	return a.closeSource()
}
