package settings

import (
	"context"
	"testing"

	"github.com/canopy-network/statusdim/pkg/history"
	"github.com/canopy-network/statusdim/pkg/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHistoryFromEnvDefaults(t *testing.T) {
	t.Setenv("GAP_THRESHOLD_DAYS", "")
	t.Setenv("MATERIALIZE_GAPS", "")
	t.Setenv("SENTINEL_MAX_DATE", "")
	t.Setenv("PARALLELISM", "")

	cfg, err := HistoryFromEnv()
	require.NoError(t, err)
	assert.Equal(t, history.DefaultConfig(), cfg)
}

func TestHistoryFromEnvOverrides(t *testing.T) {
	t.Setenv("GAP_THRESHOLD_DAYS", "45")
	t.Setenv("MATERIALIZE_GAPS", "false")
	t.Setenv("SENTINEL_MAX_DATE", "2999-01-01")
	t.Setenv("PARALLELISM", "2")

	cfg, err := HistoryFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.GapThresholdDays)
	assert.False(t, cfg.MaterializeGaps)
	assert.Equal(t, history.MustParseDate("2999-01-01"), cfg.SentinelMaxDate)
	assert.Equal(t, 2, cfg.Workers())
}

func TestHistoryFromEnvRejectsBadThreshold(t *testing.T) {
	t.Setenv("SENTINEL_MAX_DATE", "")
	t.Setenv("PARALLELISM", "")
	t.Setenv("MATERIALIZE_GAPS", "false")

	for _, v := range []string{"0", "-5", "thirty"} {
		t.Setenv("GAP_THRESHOLD_DAYS", v)
		_, err := HistoryFromEnv()
		require.ErrorIs(t, err, history.ErrInvalidConfig, v)
	}

	t.Setenv("GAP_THRESHOLD_DAYS", "1")
	cfg, err := HistoryFromEnv()
	require.NoError(t, err, "legacy mode has no silent days to materialize")
	assert.Equal(t, 1, cfg.GapThresholdDays)

	t.Setenv("MATERIALIZE_GAPS", "true")
	_, err = HistoryFromEnv()
	require.ErrorIs(t, err, history.ErrInvalidConfig)

	t.Setenv("GAP_THRESHOLD_DAYS", "30")
	t.Setenv("PARALLELISM", "many")
	_, err = HistoryFromEnv()
	require.ErrorIs(t, err, history.ErrInvalidConfig)
}

func TestHistoryInputRejectsBadValues(t *testing.T) {
	_, err := HistoryInput{GapThresholdDays: 30, SentinelMaxDate: "someday"}.Config()
	require.ErrorIs(t, err, history.ErrInvalidConfig)

	_, err = HistoryInput{GapThresholdDays: 1, MaterializeGaps: true, SentinelMaxDate: "9999-12-31"}.Config()
	require.ErrorIs(t, err, history.ErrInvalidConfig)
}

func TestCalendar(t *testing.T) {
	points, err := Calendar("", DefaultCalendarFrom, DefaultCalendarTo)
	require.NoError(t, err)
	require.Len(t, points, 8)
	assert.Equal(t, "Q1 2021", points[0].Label)

	points, err = Calendar("start=2021-01-01", "", "")
	require.NoError(t, err)
	require.Len(t, points, 1)

	_, err = Calendar("", "2022-01-01", "2021-01-01")
	require.Error(t, err)
}

func TestSourceOpen(t *testing.T) {
	src, closeFn, err := SourceInput{Kind: "csv", Path: "data.csv"}.Open(context.Background(), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, ingest.FileSource{Path: "data.csv"}, src)
	require.NoError(t, closeFn())

	_, _, err = SourceInput{Kind: "csv"}.Open(context.Background(), zaptest.NewLogger(t))
	require.Error(t, err)

	_, _, err = SourceInput{Kind: "parquet", Path: "x"}.Open(context.Background(), zaptest.NewLogger(t))
	require.Error(t, err)
}
