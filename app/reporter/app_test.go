package reporter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/canopy-network/statusdim/pkg/history"
	"github.com/canopy-network/statusdim/pkg/settings"
	"github.com/go-jose/go-jose/v4/json"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const shopExport = `SHOP_ID,DATE,N_TRANS
1,2021-01-01,3
1,2021-01-15,1
1,2021-03-01,2
1,2021-03-10,4
2,2021-01-02,1
2,2021-01-20,1
2,2021-02-10,1
2,2021-03-01,1
`

func testOptions(t *testing.T) Options {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shops.csv")
	require.NoError(t, os.WriteFile(path, []byte(shopExport), 0o600))
	return Options{
		Source: settings.SourceInput{Kind: settings.SourceCSV, Path: path},
		History: settings.HistoryInput{
			GapThresholdDays: history.DefaultGapThresholdDays,
			MaterializeGaps:  true,
			SentinelMaxDate:  history.SentinelMaxDate.String(),
		},
		Points: "feb=2021-02-01,apr=2021-04-01",
	}
}

func run(t *testing.T, opts Options) *Report {
	t.Helper()
	app, err := Initialize(context.Background(), zaptest.NewLogger(t), opts)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, app.Close()) })
	report, err := app.Run(context.Background())
	require.NoError(t, err)
	return report
}

func TestRunMaterialized(t *testing.T) {
	report := run(t, testOptions(t))

	assert.Equal(t, "materialized", report.Mode)
	assert.Equal(t, 2, report.Entities)
	assert.Equal(t, 8, report.Records)
	require.Len(t, report.Intervals, 4)
	assert.Equal(t, 1, report.EverInactive)
	require.Len(t, report.ActiveCounts, 2)
	assert.Equal(t, 1, report.ActiveCounts[0].Count)
	assert.Equal(t, 2, report.ActiveCounts[1].Count)
}

func TestRunLegacy(t *testing.T) {
	opts := testOptions(t)
	opts.History.MaterializeGaps = false
	report := run(t, opts)

	assert.Equal(t, "legacy", report.Mode)
	// nothing covers entity 1 in February
	assert.Equal(t, 1, report.ActiveCounts[0].Count)
	assert.Equal(t, "2021-03-01", report.Intervals[1].ValidFrom.String())
	assert.Equal(t, "2021-03-01", report.Intervals[1].ValidTo.String())
}

func TestInitializeRejectsBadOptions(t *testing.T) {
	opts := testOptions(t)
	opts.History.GapThresholdDays = 1
	_, err := Initialize(context.Background(), zaptest.NewLogger(t), opts)
	require.ErrorIs(t, err, history.ErrInvalidConfig)

	opts = testOptions(t)
	opts.Points = "someday"
	_, err = Initialize(context.Background(), zaptest.NewLogger(t), opts)
	require.Error(t, err)

	opts = testOptions(t)
	opts.Source.Kind = "parquet"
	_, err = Initialize(context.Background(), zaptest.NewLogger(t), opts)
	require.Error(t, err)
}

func TestRenderTables(t *testing.T) {
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	report := run(t, testOptions(t))
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, report, 2, false))

	out := buf.String()
	assert.Contains(t, out, "(first 2 shown)")
	assert.Contains(t, out, "Entities ever inactive: 1")
	assert.Contains(t, out, "2021-01-16")
	assert.NotContains(t, out, "9999-12-31")
	assert.Contains(t, out, "apr")
	assert.Equal(t, 1, strings.Count(out, "Active entities per point"))
}

func TestRenderJSON(t *testing.T) {
	report := run(t, testOptions(t))
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, report, 1, true))

	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"build_id\""), buf.String())
	assert.True(t, strings.HasSuffix(buf.String(), "}\n"))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	// limit only applies to tables
	assert.Len(t, decoded.Intervals, 4)
	assert.Equal(t, report.BuildID, decoded.BuildID)
	assert.True(t, decoded.Intervals[2].ValidTo.IsSentinel())
}

func TestOptionsFromEnvRejectsBadThreshold(t *testing.T) {
	t.Setenv("GAP_THRESHOLD_DAYS", "3O")
	_, err := OptionsFromEnv()
	require.ErrorIs(t, err, history.ErrInvalidConfig)

	t.Setenv("GAP_THRESHOLD_DAYS", "")
	t.Setenv("PARALLELISM", "")
	opts, err := OptionsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, history.DefaultGapThresholdDays, opts.History.GapThresholdDays)
}
