package history

import "github.com/cockroachdb/errors"

// AssignRuns splits one entity's status records into runs. The run counter starts at 0 and
// grows by one at every status change, so RunID is monotonic with date.
func AssignRuns(records []StatusRecord) ([]Run, error) {
	var runs []Run
	for i, rec := range records {
		if i > 0 {
			prev := records[i-1]
			if rec.EntityID != prev.EntityID {
				return nil, errors.WithDetailf(ErrMixedEntities, "entity %d and %d", prev.EntityID, rec.EntityID)
			}
			if !rec.Date.After(prev.Through) {
				return nil, errors.WithDetailf(ErrUnsortedInput,
					"entity %d: record at %s does not follow %s..%s", rec.EntityID, rec.Date, prev.Date, prev.Through)
			}
		}
		if rec.Through.Before(rec.Date) {
			return nil, errors.WithDetailf(ErrUnsortedInput, "entity %d: record span %s..%s is reversed", rec.EntityID, rec.Date, rec.Through)
		}

		if len(runs) == 0 || runs[len(runs)-1].Status != rec.Status {
			runs = append(runs, Run{
				EntityID: rec.EntityID,
				RunID:    len(runs),
				Status:   rec.Status,
			})
		}
		last := &runs[len(runs)-1]
		last.Records = append(last.Records, rec)
	}
	return runs, nil
}

// Collapse reduces each run to an interval starting at its first date. In legacy mode a run
// ends on its last covered day. With materialized gaps a run ends the day before the next run
// begins. The final run's end is left as computed; Finalize opens it.
func Collapse(runs []Run, materialized bool) []Interval {
	out := make([]Interval, 0, len(runs))
	for i, run := range runs {
		iv := Interval{
			EntityID:  run.EntityID,
			Status:    run.Status,
			ValidFrom: run.First().Date,
			ValidTo:   run.Last().Through,
		}
		if materialized && i+1 < len(runs) {
			iv.ValidTo = runs[i+1].First().Date.AddDays(-1)
		}
		out = append(out, iv)
	}
	return out
}
