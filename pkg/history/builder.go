package history

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/alitto/pond/v2"
	crdb "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Table is the outcome of one build: the full interval set sorted by (entity_id, valid_from).
type Table struct {
	ID        string     `json:"id"`
	BuiltAt   time.Time  `json:"built_at"`
	Config    Config     `json:"-"`
	Entities  int        `json:"entities"`
	Records   int        `json:"records"`
	Intervals []Interval `json:"intervals"`
}

// EntityIntervals returns the intervals of one entity, in valid_from order.
func (t *Table) EntityIntervals(entityID int64) []Interval {
	start, _ := slices.BinarySearchFunc(t.Intervals, entityID, func(iv Interval, id int64) int {
		switch {
		case iv.EntityID < id:
			return -1
		case iv.EntityID > id:
			return 1
		}
		return 0
	})
	end := start
	for end < len(t.Intervals) && t.Intervals[end].EntityID == entityID {
		end++
	}
	return t.Intervals[start:end]
}

// Builder turns activity records into an interval table, one entity partition per task.
type Builder struct {
	Config Config
	Logger *zap.Logger
}

// NewBuilder validates cfg and returns a builder. A nil logger is replaced by a no-op one.
func NewBuilder(cfg Config, logger *zap.Logger) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{Config: cfg, Logger: logger}, nil
}

// BuildEntity runs the whole pipeline for the records of a single entity.
func (b *Builder) BuildEntity(records []ActivityRecord) ([]Interval, error) {
	statuses, err := Derive(records, b.Config)
	if err != nil {
		return nil, err
	}
	if b.Config.MaterializeGaps {
		statuses = Materialize(statuses)
	}
	runs, err := AssignRuns(statuses)
	if err != nil {
		return nil, err
	}
	intervals := Finalize(Collapse(runs, b.Config.MaterializeGaps), b.Config.SentinelMaxDate)
	if err := Verify(intervals, b.Config.SentinelMaxDate, b.Config.MaterializeGaps); err != nil {
		return nil, err
	}
	return intervals, nil
}

// Build groups records by entity and processes the partitions in parallel. The first failing
// partition aborts the build; no partial table is returned.
func (b *Builder) Build(ctx context.Context, records []ActivityRecord) (*Table, error) {
	start := time.Now()
	partitions := GroupByEntity(records)

	ids := make([]int64, 0, len(partitions))
	for id := range partitions {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	results := make([][]Interval, len(ids))

	workers := b.Config.Workers()
	queueSize := len(ids)
	if queueSize < 16 {
		queueSize = 16
	}
	pool := pond.NewPool(workers, pond.WithQueueSize(queueSize))
	defer pool.StopAndWait()

	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	for i, id := range ids {
		group.SubmitErr(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			intervals, err := b.BuildEntity(partitions[id])
			if err != nil {
				return crdb.Wrapf(err, "entity %d", id)
			}
			results[i] = intervals
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		if errors.Is(err, pond.ErrGroupStopped) && ctx.Err() != nil {
			err = ctx.Err()
		}
		b.Logger.Error("History build failed", zap.Int("entities", len(ids)), zap.Error(err))
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	merged := make([]Interval, 0, total)
	for _, r := range results {
		merged = append(merged, r...)
	}

	table := &Table{
		ID:        uuid.NewString(),
		BuiltAt:   time.Now().UTC(),
		Config:    b.Config,
		Entities:  len(ids),
		Records:   len(records),
		Intervals: merged,
	}

	b.Logger.Info("History build completed",
		zap.String("build_id", table.ID),
		zap.Int("entities", table.Entities),
		zap.Int("records", table.Records),
		zap.Int("intervals", len(merged)),
		zap.Bool("materialize_gaps", b.Config.MaterializeGaps),
		zap.Int("gap_threshold_days", b.Config.GapThresholdDays),
		zap.Int("workers", workers),
		zap.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0),
	)
	return table, nil
}

// GroupByEntity partitions records by entity, keeping input order inside each partition.
func GroupByEntity(records []ActivityRecord) map[int64][]ActivityRecord {
	out := make(map[int64][]ActivityRecord)
	for _, rec := range records {
		out[rec.EntityID] = append(out[rec.EntityID], rec)
	}
	return out
}
