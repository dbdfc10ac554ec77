package query

import (
	"context"

	"github.com/canopy-network/statusdim/app/query/types"
	"github.com/canopy-network/statusdim/pkg/history"
	"github.com/canopy-network/statusdim/pkg/ingest"
	"github.com/canopy-network/statusdim/pkg/logging"
	"github.com/canopy-network/statusdim/pkg/settings"
	"github.com/canopy-network/statusdim/pkg/utils"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr'
		panic(err)
	}

	cfg, err := settings.HistoryFromEnv()
	if err != nil {
		logger.Fatal("Invalid history configuration", zap.Error(err))
	}

	calendar, err := settings.CalendarFromEnv()
	if err != nil {
		logger.Fatal("Invalid calendar configuration", zap.Error(err))
	}

	source, closeSource, err := settings.SourceFromEnv(ctx, logger)
	if err != nil {
		logger.Fatal("Unable to initialize activity source", zap.Error(err))
	}

	app, err := New(logger, source, cfg, calendar)
	if err != nil {
		logger.Fatal("Unable to initialize history builders", zap.Error(err))
	}
	app.AddCloser(closeSource)

	if err := app.Rebuild(ctx); err != nil {
		logger.Fatal("Initial history build failed", zap.Error(err))
	}

	if err := app.SetupScheduler(ctx, cron.DefaultLogger, utils.Env("REBUILD_CRON", "0 */15 * * * *")); err != nil {
		logger.Fatal("Invalid REBUILD_CRON", zap.Error(err))
	}

	return app
}

// New wires an App serving both history variants of cfg. Nothing is built yet. A threshold
// only the legacy variant accepts serves legacy alone, provided cfg itself is legacy.
func New(logger *zap.Logger, source ingest.Source, cfg history.Config, calendar []history.CalendarPoint) (*types.App, error) {
	materialized := cfg
	materialized.MaterializeGaps = true
	legacy := cfg
	legacy.MaterializeGaps = false

	builders := make(map[types.Mode]*history.Builder, 2)
	for mode, c := range map[types.Mode]history.Config{types.ModeMaterialized: materialized, types.ModeLegacy: legacy} {
		b, err := history.NewBuilder(c, logger.With(zap.String("mode", string(mode))))
		if err != nil {
			if mode == types.ModeMaterialized && !cfg.MaterializeGaps {
				logger.Warn("Materialized history disabled for this threshold", zap.Int("gap_threshold_days", cfg.GapThresholdDays), zap.Error(err))
				continue
			}
			return nil, err
		}
		builders[mode] = b
	}

	return &types.App{
		Source:    source,
		Builders:  builders,
		Calendar:  calendar,
		Snapshots: xsync.NewMap[types.Mode, *types.Snapshot](),
		Logger:    logger,
	}, nil
}

// DefaultMode is the mode answered when a request names none.
func DefaultMode(cfg history.Config) types.Mode {
	if cfg.MaterializeGaps {
		return types.ModeMaterialized
	}
	return types.ModeLegacy
}
