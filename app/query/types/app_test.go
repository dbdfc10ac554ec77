package types

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/canopy-network/statusdim/pkg/history"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// versionedSource returns one more record on every load. The first load blocks until
// released so a second rebuild can be started while it is in flight.
type versionedSource struct {
	loads   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (s *versionedSource) Name() string { return "versioned" }

func (s *versionedSource) Load(ctx context.Context) ([]history.ActivityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := s.loads.Add(1)
	if n == 1 {
		close(s.entered)
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	out := make([]history.ActivityRecord, 0, n)
	for i := int32(0); i < n; i++ {
		out = append(out, history.ActivityRecord{EntityID: int64(i + 1), Date: history.NewDate(2021, 1, 1), Count: 1})
	}
	return out, nil
}

func newTestApp(t *testing.T, source *versionedSource) *App {
	t.Helper()
	logger := zaptest.NewLogger(t)
	builders := map[Mode]*history.Builder{}
	for mode, materialize := range map[Mode]bool{ModeMaterialized: true, ModeLegacy: false} {
		cfg := history.DefaultConfig()
		cfg.MaterializeGaps = materialize
		b, err := history.NewBuilder(cfg, logger)
		require.NoError(t, err)
		builders[mode] = b
	}
	return &App{
		Source:    source,
		Builders:  builders,
		Snapshots: xsync.NewMap[Mode, *Snapshot](),
		Logger:    logger,
	}
}

func TestOverlappingRebuildsPublishOneLoad(t *testing.T) {
	source := &versionedSource{entered: make(chan struct{}), release: make(chan struct{})}
	app := newTestApp(t, source)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = app.Rebuild(ctx)
	}()
	<-source.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[1] = app.Rebuild(ctx)
	}()
	close(source.release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.Equal(t, int32(2), source.loads.Load())

	materialized, ok := app.Snapshot(ModeMaterialized)
	require.True(t, ok)
	legacy, ok := app.Snapshot(ModeLegacy)
	require.True(t, ok)

	// both modes come from the second, newer load
	assert.Equal(t, 2, materialized.Table.Records)
	assert.Equal(t, 2, legacy.Table.Records)
}

func TestRebuildFailureKeepsSnapshots(t *testing.T) {
	source := &versionedSource{entered: make(chan struct{}), release: make(chan struct{})}
	close(source.release)
	app := newTestApp(t, source)
	require.NoError(t, app.Rebuild(context.Background()))
	before, _ := app.Snapshot(ModeLegacy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, app.Rebuild(ctx))

	after, ok := app.Snapshot(ModeLegacy)
	require.True(t, ok)
	assert.Equal(t, before.Table.ID, after.Table.ID)
}
