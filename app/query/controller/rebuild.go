package controller

import (
	"net/http"

	"github.com/canopy-network/statusdim/pkg/history"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// HandleRebuild reloads the source and replaces every snapshot.
// Bad input data maps to 422, anything else to 500. The previous snapshots stay in place on failure.
func (c *Controller) HandleRebuild(w http.ResponseWriter, r *http.Request) {
	if err := c.App.Rebuild(r.Context()); err != nil {
		c.App.Logger.Warn("Rebuild request failed", zap.Error(err))
		switch {
		case errors.Is(err, history.ErrMalformedRecord),
			errors.Is(err, history.ErrDuplicateObservation),
			errors.Is(err, history.ErrUnsortedInput):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	snapshots := make(map[string]string, len(c.App.Builders))
	for mode := range c.App.Builders {
		if snap, ok := c.App.Snapshot(mode); ok {
			snapshots[string(mode)] = snap.Table.ID
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "snapshots": snapshots})
}
