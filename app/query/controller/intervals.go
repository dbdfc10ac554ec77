package controller

import (
	"net/http"
	"strconv"

	"github.com/canopy-network/statusdim/pkg/history"
	"github.com/canopy-network/statusdim/pkg/ingest"
)

type pagedResponse[T any] struct {
	Data       []T    `json:"data"`
	Limit      int    `json:"limit"`
	NextCursor *int64 `json:"next_cursor,omitempty"`
}

// HandleIntervals returns the interval table. Pages are cut between entities, never inside
// one, so limit counts entities.
func (c *Controller) HandleIntervals(w http.ResponseWriter, r *http.Request) {
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}

	if v := r.URL.Query().Get("entity"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid entity")
			return
		}
		writeJSON(w, http.StatusOK, pagedResponse[history.Interval]{
			Data:  snap.Table.EntityIntervals(id),
			Limit: 1,
		})
		return
	}

	page, err := parsePageSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	all := snap.Table.Intervals
	start := 0
	if page.Cursor != nil {
		for start < len(all) && all[start].EntityID <= *page.Cursor {
			start++
		}
	}

	end, entities := start, 0
	for end < len(all) {
		if end == start || all[end].EntityID != all[end-1].EntityID {
			if entities == page.Limit {
				break
			}
			entities++
		}
		end++
	}

	var nextCursor *int64
	if end < len(all) {
		last := all[end-1].EntityID
		nextCursor = &last
	}

	writeJSON(w, http.StatusOK, pagedResponse[history.Interval]{
		Data:       all[start:end],
		Limit:      page.Limit,
		NextCursor: nextCursor,
	})
}

// HandleEntityIntervals returns the full history of one entity.
// Returns 404 if the entity never appeared in the source.
func (c *Controller) HandleEntityIntervals(w http.ResponseWriter, r *http.Request) {
	id, err := entityID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entity id")
		return
	}
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}

	rows := snap.Table.EntityIntervals(id)
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "entity not found")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

type statusResponse struct {
	EntityID int64             `json:"entity_id"`
	Date     history.Date      `json:"date"`
	Covered  bool              `json:"covered"`
	Interval *history.Interval `json:"interval,omitempty"`
}

// HandleEntityStatus returns the interval holding an entity at ?date.
// Covered is false for dates before the first observation and, in legacy mode, inside gaps.
func (c *Controller) HandleEntityStatus(w http.ResponseWriter, r *http.Request) {
	id, err := entityID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entity id")
		return
	}
	date, ok := ingest.ParseDate(r.URL.Query().Get("date"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}

	if len(snap.Table.EntityIntervals(id)) == 0 {
		writeError(w, http.StatusNotFound, "entity not found")
		return
	}

	resp := statusResponse{EntityID: id, Date: date}
	if iv, found := snap.Engine.StatusOf(id, date); found {
		resp.Covered = true
		resp.Interval = &iv
	}
	writeJSON(w, http.StatusOK, resp)
}
