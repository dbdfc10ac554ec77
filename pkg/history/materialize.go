package history

import "slices"

// Materialize turns every gap the deriver flagged into its own Inactive record spanning the
// silent days [prior+1, current-1]. The observation that ended the gap is re-tagged Active,
// since the entity was evidently operating on that day. Records must come from Derive.
func Materialize(records []StatusRecord) []StatusRecord {
	out := make([]StatusRecord, 0, len(records))
	for i, rec := range records {
		if i > 0 && rec.Status == Inactive && !rec.Synthetic && rec.DaysSincePrior != nil && *rec.DaysSincePrior > 1 {
			prior := records[i-1].Through
			out = append(out, StatusRecord{
				EntityID:  rec.EntityID,
				Date:      prior.AddDays(1),
				Through:   rec.Date.AddDays(-1),
				Status:    Inactive,
				Synthetic: true,
			})
			rec.Status = Active
		}
		out = append(out, rec)
	}

	slices.SortStableFunc(out, func(a, b StatusRecord) int {
		return a.Date.Compare(b.Date)
	})
	return out
}
