package controller

import (
	"net/http"
	"strconv"

	"github.com/canopy-network/statusdim/app/query/types"
	"github.com/canopy-network/statusdim/pkg/history"
	"github.com/canopy-network/statusdim/pkg/ingest"
	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// snapshot resolves ?mode and writes the error response itself when it fails.
func (c *Controller) snapshot(w http.ResponseWriter, r *http.Request) (*types.Snapshot, bool) {
	mode := c.DefaultMode
	if v := r.URL.Query().Get("mode"); v != "" {
		mode = types.Mode(v)
	}
	if _, known := c.App.Builders[mode]; !known {
		writeError(w, http.StatusBadRequest, "invalid mode, must be 'materialized' or 'legacy'")
		return nil, false
	}
	snap, ok := c.App.Snapshot(mode)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "history not built yet")
		return nil, false
	}
	return snap, true
}

func entityID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// datePoints reads repeated ?date= parameters, each date or label=date.
func datePoints(r *http.Request) ([]history.CalendarPoint, error) {
	var out []history.CalendarPoint
	for _, v := range r.URL.Query()["date"] {
		points, err := ingest.ParsePoints(v)
		if err != nil {
			return nil, err
		}
		out = append(out, points...)
	}
	return out, nil
}
