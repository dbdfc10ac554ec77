// Package settings turns environment variables and flags into the explicit values the
// history packages take. It is the only place configuration is looked up.
package settings

import (
	"context"
	"strings"

	"github.com/canopy-network/statusdim/pkg/db/clickhouse"
	"github.com/canopy-network/statusdim/pkg/history"
	"github.com/canopy-network/statusdim/pkg/ingest"
	"github.com/canopy-network/statusdim/pkg/utils"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	SourceCSV        = "csv"
	SourceClickHouse = "clickhouse"

	DefaultCalendarFrom = "2021-01-01"
	DefaultCalendarTo   = "2022-10-01"
)

// HistoryInput is the raw form of history.Config.
type HistoryInput struct {
	GapThresholdDays int
	MaterializeGaps  bool
	SentinelMaxDate  string
	Parallelism      int
}

// HistoryInputFromEnv reads GAP_THRESHOLD_DAYS, MATERIALIZE_GAPS, SENTINEL_MAX_DATE and PARALLELISM.
// Integers are read strictly: a value that does not parse is an error, never the default.
func HistoryInputFromEnv() (HistoryInput, error) {
	threshold, err := utils.LookupInt("GAP_THRESHOLD_DAYS", history.DefaultGapThresholdDays)
	if err != nil {
		return HistoryInput{}, errors.Wrapf(history.ErrInvalidConfig, "%v", err)
	}
	parallelism, err := utils.LookupInt("PARALLELISM", 0)
	if err != nil {
		return HistoryInput{}, errors.Wrapf(history.ErrInvalidConfig, "%v", err)
	}
	return HistoryInput{
		GapThresholdDays: threshold,
		MaterializeGaps:  utils.EnvBool("MATERIALIZE_GAPS", true),
		SentinelMaxDate:  utils.Env("SENTINEL_MAX_DATE", history.SentinelMaxDate.String()),
		Parallelism:      parallelism,
	}, nil
}

// Config validates in and converts it.
func (in HistoryInput) Config() (history.Config, error) {
	sentinel, err := history.ParseDate(in.SentinelMaxDate)
	if err != nil {
		return history.Config{}, errors.WithSecondaryError(errors.Wrapf(history.ErrInvalidConfig, "SENTINEL_MAX_DATE: %v", err), err)
	}
	cfg := history.Config{
		GapThresholdDays: in.GapThresholdDays,
		MaterializeGaps:  in.MaterializeGaps,
		SentinelMaxDate:  sentinel,
		Parallelism:      in.Parallelism,
	}
	if err := cfg.Validate(); err != nil {
		return history.Config{}, err
	}
	return cfg, nil
}

// HistoryFromEnv reads and validates the history settings.
func HistoryFromEnv() (history.Config, error) {
	in, err := HistoryInputFromEnv()
	if err != nil {
		return history.Config{}, err
	}
	return in.Config()
}

// Calendar returns the explicit points when given (label=date,...), otherwise the quarter
// starts between from and to.
func Calendar(points, from, to string) ([]history.CalendarPoint, error) {
	if strings.TrimSpace(points) != "" {
		return ingest.ParsePoints(points)
	}
	start, err := history.ParseDate(from)
	if err != nil {
		return nil, errors.Wrap(err, "calendar start")
	}
	end, err := history.ParseDate(to)
	if err != nil {
		return nil, errors.Wrap(err, "calendar end")
	}
	if end.Before(start) {
		return nil, errors.Newf("calendar end %s is before start %s", end, start)
	}
	return ingest.QuarterStarts(start, end), nil
}

// CalendarFromEnv reads CALENDAR_POINTS, CALENDAR_FROM and CALENDAR_TO.
func CalendarFromEnv() ([]history.CalendarPoint, error) {
	return Calendar(
		utils.Env("CALENDAR_POINTS", ""),
		utils.Env("CALENDAR_FROM", DefaultCalendarFrom),
		utils.Env("CALENDAR_TO", DefaultCalendarTo),
	)
}

// SourceInput selects and locates the activity source.
type SourceInput struct {
	Kind string
	Path string
	// ClickHouse only
	Table clickhouse.ActivityTable
}

// SourceInputFromEnv reads INPUT_SOURCE, INPUT_PATH and the CLICKHOUSE_* table settings.
func SourceInputFromEnv() SourceInput {
	return SourceInput{
		Kind: utils.Env("INPUT_SOURCE", SourceCSV),
		Path: utils.Env("INPUT_PATH", "sample.csv"),
		Table: clickhouse.ActivityTable{
			Database:     utils.Env("CLICKHOUSE_DB", "default"),
			Table:        utils.Env("CLICKHOUSE_TABLE", "transactions"),
			EntityColumn: utils.Env("CLICKHOUSE_ENTITY_COLUMN", ingest.ShopColumns.Entity),
			DateColumn:   utils.Env("CLICKHOUSE_DATE_COLUMN", ingest.ShopColumns.Date),
			CountColumn:  utils.Env("CLICKHOUSE_COUNT_COLUMN", ingest.ShopColumns.Count),
		},
	}
}

// Open returns the source and a function releasing whatever it holds.
func (in SourceInput) Open(ctx context.Context, logger *zap.Logger) (ingest.Source, func() error, error) {
	switch strings.ToLower(in.Kind) {
	case SourceCSV, "file", "":
		if in.Path == "" {
			return nil, nil, errors.New("INPUT_PATH is required for the csv source")
		}
		return ingest.FileSource{Path: in.Path}, func() error { return nil }, nil
	case SourceClickHouse:
		client, err := clickhouse.New(ctx, logger.With(zap.String("component", "activity_source")), in.Table.Database, clickhouse.DefaultPoolConfig())
		if err != nil {
			return nil, nil, err
		}
		return ingest.ClickHouseSource{DB: &client, Table: in.Table}, client.Close, nil
	}
	return nil, nil, errors.Newf("unknown INPUT_SOURCE %q", in.Kind)
}

// SourceFromEnv is SourceInputFromEnv().Open.
func SourceFromEnv(ctx context.Context, logger *zap.Logger) (ingest.Source, func() error, error) {
	return SourceInputFromEnv().Open(ctx, logger)
}
