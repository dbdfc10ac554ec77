package ingest

import (
	"context"

	"github.com/canopy-network/statusdim/pkg/db/clickhouse"
	"github.com/canopy-network/statusdim/pkg/history"
	"github.com/cockroachdb/errors"
)

// Source yields the activity records a build starts from.
type Source interface {
	Load(ctx context.Context) ([]history.ActivityRecord, error)
	Name() string
}

// FileSource reads a delimited file on each Load, so a rebuild sees the file's current content.
type FileSource struct {
	Path       string
	Normalizer Normalizer
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(ctx context.Context) ([]history.ActivityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Normalizer.ReadFile(s.Path)
}

// ClickHouseSource aggregates daily activity out of a ClickHouse table.
type ClickHouseSource struct {
	DB    clickhouse.Selector
	Table clickhouse.ActivityTable
}

func (s ClickHouseSource) Name() string {
	return "clickhouse:" + s.Table.Database + "." + s.Table.Table
}

func (s ClickHouseSource) Load(ctx context.Context) ([]history.ActivityRecord, error) {
	rows, err := clickhouse.LoadActivity(ctx, s.DB, s.Table)
	if err != nil {
		return nil, err
	}
	out := make([]history.ActivityRecord, 0, len(rows))
	for _, row := range rows {
		if row.Day.IsZero() {
			return nil, errors.Wrapf(history.ErrMalformedRecord, "entity %d has a row without a day", row.EntityID)
		}
		out = append(out, history.ActivityRecord{
			EntityID: row.EntityID,
			Date:     history.DateOf(row.Day),
			Count:    row.Count,
		})
	}
	return out, nil
}
