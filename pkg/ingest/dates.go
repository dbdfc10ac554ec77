package ingest

import (
	"strings"
	"time"

	"github.com/canopy-network/statusdim/pkg/history"
)

// dateLayouts are tried in order. ISO forms come first so 2021-03-04 is never read as a
// day-first locale date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
}

// ParseDate accepts ISO-8601 dates (optionally with a time part, which is dropped) and the
// common locale forms MM/DD/YYYY, YYYY/MM/DD and DD.MM.YYYY.
func ParseDate(s string) (history.Date, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return history.DateOf(t), true
		}
	}
	return history.Date{}, false
}
