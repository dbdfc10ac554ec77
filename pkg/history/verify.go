package history

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// Verify checks the interval table invariants: every interval is well formed, intervals of
// one entity never share a day, and exactly one interval per entity (its latest) is open.
// With contiguous set, consecutive intervals of an entity must also touch.
// The input is not modified.
func Verify(intervals []Interval, sentinel Date, contiguous bool) error {
	sorted := slices.Clone(intervals)
	SortIntervals(sorted)

	for i, iv := range sorted {
		if iv.ValidTo.Before(iv.ValidFrom) {
			return errors.WithDetailf(ErrOverlapInvariant, "entity %d: interval %s..%s is reversed", iv.EntityID, iv.ValidFrom, iv.ValidTo)
		}

		lastOfEntity := i+1 == len(sorted) || sorted[i+1].EntityID != iv.EntityID
		if lastOfEntity != iv.ValidTo.Equal(sentinel) {
			return errors.WithDetailf(ErrOverlapInvariant,
				"entity %d: interval %s..%s open state does not match its position", iv.EntityID, iv.ValidFrom, iv.ValidTo)
		}
		if lastOfEntity {
			continue
		}

		next := sorted[i+1]
		if iv.Overlaps(next) {
			return errors.WithDetailf(ErrOverlapInvariant,
				"entity %d: %s..%s overlaps %s..%s", iv.EntityID, iv.ValidFrom, iv.ValidTo, next.ValidFrom, next.ValidTo)
		}
		if contiguous && !iv.ValidTo.AddDays(1).Equal(next.ValidFrom) {
			return errors.WithDetailf(ErrCoverageGap,
				"entity %d: %s..%s is followed by %s", iv.EntityID, iv.ValidFrom, iv.ValidTo, next.ValidFrom)
		}
	}
	return nil
}

// SortIntervals orders intervals by (entity_id, valid_from).
func SortIntervals(intervals []Interval) {
	slices.SortStableFunc(intervals, func(a, b Interval) int {
		if a.EntityID != b.EntityID {
			if a.EntityID < b.EntityID {
				return -1
			}
			return 1
		}
		return a.ValidFrom.Compare(b.ValidFrom)
	})
}
