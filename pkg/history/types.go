// Package history rebuilds an SCD Type 2 status history per entity from dated activity
// records: derive a status per observation from inter-event gaps, optionally materialize the
// silent gaps, collapse same-status runs into validity intervals and leave the last interval
// of each entity open-ended.
package history

import "fmt"

// Status is the operating status an entity holds during an interval.
type Status uint8

const (
	Active Status = iota
	Inactive
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// ParseStatus accepts active/inactive as well as the open/closed shop vocabulary.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "active", "open":
		return Active, nil
	case "inactive", "closed":
		return Inactive, nil
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ActivityRecord is one dated observation of an entity, as produced by ingestion.
type ActivityRecord struct {
	EntityID int64 `json:"entity_id"`
	Date     Date  `json:"date"`
	Count    int64 `json:"count"`
}

// StatusRecord is an observation (or a materialized gap) tagged with a status.
// Through is the last day covered by the record; it equals Date for observations.
type StatusRecord struct {
	EntityID       int64  `json:"entity_id"`
	Date           Date   `json:"date"`
	Through        Date   `json:"through"`
	Status         Status `json:"status"`
	DaysSincePrior *int   `json:"days_since_prior,omitempty"`
	Synthetic      bool   `json:"synthetic,omitempty"`
}

// Run is a maximal sequence of consecutive same-status records of one entity.
type Run struct {
	EntityID int64
	RunID    int
	Status   Status
	Records  []StatusRecord
}

func (r Run) First() StatusRecord { return r.Records[0] }
func (r Run) Last() StatusRecord  { return r.Records[len(r.Records)-1] }

// Interval is one SCD2 row: the entity held Status on every day of [ValidFrom, ValidTo].
type Interval struct {
	EntityID  int64  `json:"entity_id"`
	Status    Status `json:"status"`
	ValidFrom Date   `json:"valid_from"`
	ValidTo   Date   `json:"valid_to"`
}

// Contains reports whether d falls inside the interval, bounds included.
func (iv Interval) Contains(d Date) bool {
	return !d.Before(iv.ValidFrom) && !d.After(iv.ValidTo)
}

// Overlaps reports whether the two intervals share at least one day.
func (iv Interval) Overlaps(other Interval) bool {
	return !iv.ValidTo.Before(other.ValidFrom) && !other.ValidTo.Before(iv.ValidFrom)
}

// IsOpen reports whether the interval runs to the sentinel date.
func (iv Interval) IsOpen() bool { return iv.ValidTo.IsSentinel() }

// CalendarPoint is a labelled reference date used for point-in-time queries.
type CalendarPoint struct {
	Label string `json:"label"`
	Date  Date   `json:"date"`
}
