// Package query answers point-in-time questions against an interval table.
package query

import (
	"slices"

	"github.com/canopy-network/statusdim/pkg/history"
)

// Match is one row of the interval/calendar join.
type Match struct {
	Point    history.CalendarPoint `json:"point"`
	Interval history.Interval      `json:"interval"`
}

// PointCount is the number of distinct entities holding a status at a calendar point.
type PointCount struct {
	Label  string         `json:"label"`
	Date   history.Date   `json:"date"`
	Status history.Status `json:"status"`
	Count  int            `json:"count"`
}

// Engine runs read-only queries. It never mutates the intervals it is given.
type Engine struct {
	intervals []history.Interval
	sentinel  history.Date
}

// NewEngine checks the table for overlapping intervals before accepting it, so a broken
// history can never produce report numbers.
func NewEngine(intervals []history.Interval, sentinel history.Date) (*Engine, error) {
	e := &Engine{intervals: slices.Clone(intervals), sentinel: sentinel}
	history.SortIntervals(e.intervals)
	if err := e.Verify(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewTableEngine is NewEngine for a built table.
func NewTableEngine(table *history.Table) (*Engine, error) {
	return NewEngine(table.Intervals, table.Config.SentinelMaxDate)
}

// Verify re-checks that no two intervals of one entity share a day.
func (e *Engine) Verify() error {
	return history.Verify(e.intervals, e.sentinel, false)
}

// Intervals returns a copy of the table in (entity_id, valid_from) order.
func (e *Engine) Intervals() []history.Interval {
	return slices.Clone(e.intervals)
}

// Join is the inner interval-overlap join: every (point, interval) pair with
// valid_from <= point.date <= valid_to. A nil filter keeps every interval.
func (e *Engine) Join(points []history.CalendarPoint, filter func(history.Interval) bool) []Match {
	var out []Match
	for _, p := range points {
		for _, iv := range e.intervals {
			if filter != nil && !filter(iv) {
				continue
			}
			if iv.Contains(p.Date) {
				out = append(out, Match{Point: p, Interval: iv})
			}
		}
	}
	return out
}

// At returns the intervals holding status at each point, in point order.
func (e *Engine) At(points []history.CalendarPoint, status history.Status) []Match {
	return e.Join(points, func(iv history.Interval) bool { return iv.Status == status })
}

// StatusOf returns the interval of one entity containing date, if any. Legacy tables can
// leave days inside a gap uncovered.
func (e *Engine) StatusOf(entityID int64, date history.Date) (history.Interval, bool) {
	matches := e.Join([]history.CalendarPoint{{Date: date}}, func(iv history.Interval) bool {
		return iv.EntityID == entityID
	})
	if len(matches) == 0 {
		return history.Interval{}, false
	}
	return matches[0].Interval, true
}

// EverInStatus counts distinct entities that held status in at least one interval.
func (e *Engine) EverInStatus(status history.Status) int {
	seen := make(map[int64]struct{})
	for _, iv := range e.intervals {
		if iv.Status == status {
			seen[iv.EntityID] = struct{}{}
		}
	}
	return len(seen)
}

// EverInactive counts distinct entities with at least one Inactive interval.
func (e *Engine) EverInactive() int {
	return e.EverInStatus(history.Inactive)
}

// Counts returns, for every point in the caller's order, the number of distinct entities
// in status at that point. Points nobody matches are reported with a zero count.
func (e *Engine) Counts(points []history.CalendarPoint, status history.Status) []PointCount {
	out := make([]PointCount, len(points))
	for i, p := range points {
		entities := make(map[int64]struct{})
		for _, m := range e.At([]history.CalendarPoint{p}, status) {
			entities[m.Interval.EntityID] = struct{}{}
		}
		out[i] = PointCount{Label: p.Label, Date: p.Date, Status: status, Count: len(entities)}
	}
	return out
}

// ActiveCounts is Counts for Active.
func (e *Engine) ActiveCounts(points []history.CalendarPoint) []PointCount {
	return e.Counts(points, history.Active)
}
