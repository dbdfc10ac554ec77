package history

import "github.com/cockroachdb/errors"

var (
	// ErrMalformedRecord is returned by ingestion for rows that cannot be mapped to an ActivityRecord.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUnsortedInput is returned when a status sequence is not strictly ascending by date.
	ErrUnsortedInput = errors.New("unsorted input")
	// ErrOverlapInvariant is returned when two intervals of one entity share a day.
	ErrOverlapInvariant = errors.New("overlapping intervals")
	// ErrCoverageGap is returned in materialized mode when consecutive intervals are not contiguous.
	ErrCoverageGap = errors.New("intervals not contiguous")
	// ErrDuplicateObservation is returned when an entity has two records on the same date.
	ErrDuplicateObservation = errors.New("duplicate observation")
	// ErrMixedEntities is returned when a per-entity step receives records of several entities.
	ErrMixedEntities = errors.New("records of more than one entity")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid config")
)
