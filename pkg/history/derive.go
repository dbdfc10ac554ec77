package history

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// Derive classifies every observation of one entity. Records are sorted by date first;
// the caller's order is never trusted. The first observation is always Active, any later
// one is Inactive when at least GapThresholdDays passed since the previous observation.
func Derive(records []ActivityRecord, cfg Config) ([]StatusRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b ActivityRecord) int {
		return a.Date.Compare(b.Date)
	})

	entityID := sorted[0].EntityID
	out := make([]StatusRecord, 0, len(sorted))
	for i, rec := range sorted {
		if rec.EntityID != entityID {
			return nil, errors.WithDetailf(ErrMixedEntities, "entity %d and %d", entityID, rec.EntityID)
		}

		sr := StatusRecord{
			EntityID: rec.EntityID,
			Date:     rec.Date,
			Through:  rec.Date,
			Status:   Active,
		}
		if i > 0 {
			gap := rec.Date.DaysSince(sorted[i-1].Date)
			if gap == 0 {
				return nil, errors.WithDetailf(ErrDuplicateObservation, "entity %d on %s", rec.EntityID, rec.Date)
			}
			sr.DaysSincePrior = &gap
			if gap >= cfg.GapThresholdDays {
				sr.Status = Inactive
			}
		}
		out = append(out, sr)
	}
	return out, nil
}
