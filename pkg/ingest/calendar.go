package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/canopy-network/statusdim/pkg/history"
	"github.com/cockroachdb/errors"
)

// QuarterStarts returns a "Qn YYYY" point for every calendar quarter whose first day lies in
// [from, to].
func QuarterStarts(from, to history.Date) []history.CalendarPoint {
	var out []history.CalendarPoint
	t := from.Time()
	q := history.NewDate(t.Year(), time.Month((int(t.Month())-1)/3*3+1), 1)
	if q.Before(from) {
		q = history.DateOf(q.Time().AddDate(0, 3, 0))
	}
	for ; !q.After(to); q = history.DateOf(q.Time().AddDate(0, 3, 0)) {
		qt := q.Time()
		out = append(out, history.CalendarPoint{
			Label: fmt.Sprintf("Q%d %d", (int(qt.Month())-1)/3+1, qt.Year()),
			Date:  q,
		})
	}
	return out
}

// ParsePoints reads a comma separated list of points. Each item is either a bare date, used
// as its own label, or label=date.
func ParsePoints(s string) ([]history.CalendarPoint, error) {
	var out []history.CalendarPoint
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		label, raw := item, item
		if i := strings.LastIndex(item, "="); i >= 0 {
			label, raw = strings.TrimSpace(item[:i]), strings.TrimSpace(item[i+1:])
		}
		date, ok := ParseDate(raw)
		if !ok {
			return nil, errors.Newf("calendar point %q has no valid date", item)
		}
		out = append(out, history.CalendarPoint{Label: label, Date: date})
	}
	return out, nil
}
