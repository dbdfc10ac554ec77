package controller

import (
	"net/http"

	"github.com/canopy-network/statusdim/pkg/query"
)

type inactiveResponse struct {
	BuildID      string `json:"build_id"`
	EverInactive int    `json:"ever_inactive"`
}

// HandleEverInactive returns the number of distinct entities that were ever inactive.
func (c *Controller) HandleEverInactive(w http.ResponseWriter, r *http.Request) {
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, inactiveResponse{
		BuildID:      snap.Table.ID,
		EverInactive: snap.Engine.EverInactive(),
	})
}

type activeResponse struct {
	BuildID string             `json:"build_id"`
	Points  []query.PointCount `json:"points"`
}

// HandleActiveCounts returns active entity counts per ?date point, in request order. Without
// dates the configured calendar is used.
func (c *Controller) HandleActiveCounts(w http.ResponseWriter, r *http.Request) {
	points, err := datePoints(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(points) == 0 {
		points = c.App.Calendar
	}
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, activeResponse{
		BuildID: snap.Table.ID,
		Points:  snap.Engine.ActiveCounts(points),
	})
}
