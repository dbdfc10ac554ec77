package types

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/canopy-network/statusdim/pkg/history"
	"github.com/canopy-network/statusdim/pkg/ingest"
	"github.com/canopy-network/statusdim/pkg/query"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Mode names one of the two history variants the API can answer from.
type Mode string

const (
	ModeMaterialized Mode = "materialized"
	// ModeLegacy leaves the days inside an activity gap uncovered.
	ModeLegacy Mode = "legacy"
)

// Snapshot is a built table together with the engine answering queries on it.
type Snapshot struct {
	Mode   Mode
	Table  *history.Table
	Engine *query.Engine
}

type App struct {
	// Source is re-read on every rebuild
	Source ingest.Source
	// Builders holds one builder per mode
	Builders map[Mode]*history.Builder
	// Calendar is the default set of points for occupancy reports
	Calendar []history.CalendarPoint
	// Snapshots holds the latest successful build per mode. A failed rebuild keeps the previous one.
	Snapshots *xsync.Map[Mode, *Snapshot]

	// Cron triggers a full rebuild according to CronSpec; nil when disabled.
	Cron     *cron.Cron
	CronSpec string

	// Zap Logger
	Logger *zap.Logger
	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server

	// rebuildMu serializes Rebuild so a load is never published after a later one.
	rebuildMu sync.Mutex
	closers   []func() error
}

// AddCloser registers a resource released on shutdown.
func (a *App) AddCloser(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Snapshot returns the current snapshot for mode.
func (a *App) Snapshot(mode Mode) (*Snapshot, bool) {
	return a.Snapshots.Load(mode)
}

// Rebuild reloads the source and rebuilds every mode. Snapshots are only replaced once all
// modes built. Concurrent calls (cron and POST /rebuild) run one after the other, each
// loading the source afresh, so the last one to start is the one left published.
func (a *App) Rebuild(ctx context.Context) error {
	a.rebuildMu.Lock()
	defer a.rebuildMu.Unlock()

	start := time.Now()
	records, err := a.Source.Load(ctx)
	if err != nil {
		a.Logger.Error("Failed to load activity", zap.String("source", a.Source.Name()), zap.Error(err))
		return err
	}

	fresh := make(map[Mode]*Snapshot, len(a.Builders))
	for mode, builder := range a.Builders {
		table, err := builder.Build(ctx, records)
		if err != nil {
			a.Logger.Error("Failed to rebuild history", zap.String("mode", string(mode)), zap.Error(err))
			return err
		}
		engine, err := query.NewTableEngine(table)
		if err != nil {
			a.Logger.Error("Rebuilt history failed verification", zap.String("mode", string(mode)), zap.Error(err))
			return err
		}
		fresh[mode] = &Snapshot{Mode: mode, Table: table, Engine: engine}
	}

	for mode, snap := range fresh {
		a.Snapshots.Store(mode, snap)
	}
	a.Logger.Info("History snapshots rebuilt",
		zap.String("source", a.Source.Name()),
		zap.Int("records", len(records)),
		zap.Int("modes", len(fresh)),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// SetupScheduler registers the periodic rebuild. An empty cron expression disables it.
func (a *App) SetupScheduler(ctx context.Context, logger cron.Logger, cronSpec string) error {
	a.CronSpec = cronSpec
	if cronSpec == "" {
		return nil
	}
	// Seconds field, optional
	a.Cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	_, err := a.Cron.AddFunc(cronSpec, func() {
		if err := a.Rebuild(ctx); err != nil {
			a.Logger.Warn("Scheduled rebuild failed, keeping previous snapshots", zap.Error(err))
		}
	})
	return err
}

// Start starts the application.
func (a *App) Start(ctx context.Context) {
	if a.Cron != nil {
		a.Cron.Start()
	}
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.Cron != nil {
		<-a.Cron.Stop().Done()
	}
	_ = a.Server.Shutdown(shutdownCtx)

	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.Logger.Error("Failed to close resource", zap.Error(err))
		}
	}
	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}
