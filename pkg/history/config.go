package history

import (
	"runtime"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultGapThresholdDays is the silence, in days, after which an entity is considered inactive.
	DefaultGapThresholdDays = 30
	maxParallelism          = 512
)

// Config controls a history build. It is passed explicitly; nothing in this package reads
// the environment.
type Config struct {
	// GapThresholdDays classifies an observation Inactive when the gap since the previous
	// observation is at least this many days.
	GapThresholdDays int
	// MaterializeGaps emits an explicit Inactive record for each silent gap. Without it the
	// history only describes observed dates and the days inside a gap stay uncovered (legacy).
	MaterializeGaps bool
	// SentinelMaxDate closes the last interval of every entity.
	SentinelMaxDate Date
	// Parallelism is the number of entity partitions processed at once. Zero means 4x NumCPU.
	Parallelism int
}

// DefaultConfig returns the recommended settings (materialized gaps, 30 days).
func DefaultConfig() Config {
	return Config{
		GapThresholdDays: DefaultGapThresholdDays,
		MaterializeGaps:  true,
		SentinelMaxDate:  SentinelMaxDate,
	}
}

// Validate rejects settings the algorithm cannot honour.
func (c Config) Validate() error {
	if c.GapThresholdDays < 1 {
		return errors.Wrapf(ErrInvalidConfig, "gap threshold must be at least 1 day, got %d", c.GapThresholdDays)
	}
	// A one day threshold leaves no silent day to materialize between two observations.
	if c.MaterializeGaps && c.GapThresholdDays < 2 {
		return errors.Wrapf(ErrInvalidConfig, "gap threshold must be at least 2 days when materializing gaps, got %d", c.GapThresholdDays)
	}
	if c.SentinelMaxDate.IsZero() {
		return errors.Wrap(ErrInvalidConfig, "sentinel date is not set")
	}
	if c.Parallelism < 0 {
		return errors.Wrapf(ErrInvalidConfig, "parallelism must not be negative, got %d", c.Parallelism)
	}
	return nil
}

// Workers returns the effective pool size.
func (c Config) Workers() int {
	if c.Parallelism > 0 {
		if c.Parallelism > maxParallelism {
			return maxParallelism
		}
		return c.Parallelism
	}
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	parallelism := n * 4
	if parallelism > maxParallelism {
		parallelism = maxParallelism
	}
	return parallelism
}
