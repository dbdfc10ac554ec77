package controller

import (
	"net/http"
	"time"
)

type snapshotHealth struct {
	BuildID   string    `json:"build_id"`
	BuiltAt   time.Time `json:"built_at"`
	Entities  int       `json:"entities"`
	Intervals int       `json:"intervals"`
}

// HandleHealth reports ok once every mode has a snapshot.
func (c *Controller) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	snapshots := make(map[string]snapshotHealth, len(c.App.Builders))
	for mode := range c.App.Builders {
		snap, ok := c.App.Snapshot(mode)
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "errored", "error": "history not built: " + string(mode)})
			return
		}
		snapshots[string(mode)] = snapshotHealth{
			BuildID:   snap.Table.ID,
			BuiltAt:   snap.Table.BuiltAt,
			Entities:  snap.Table.Entities,
			Intervals: len(snap.Table.Intervals),
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "snapshots": snapshots})
}
