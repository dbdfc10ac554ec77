package reporter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/pterm/pterm"
)

// Render writes r as JSON or as terminal tables. limit caps the interval rows shown; 0 shows all.
func Render(w io.Writer, r *Report, limit int, asJSON bool) error {
	if asJSON {
		out, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(out, '\n'))
		return err
	}

	rows := pterm.TableData{{"entity_id", "status", "valid_from", "valid_to"}}
	shown := r.Intervals
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, iv := range shown {
		rows = append(rows, []string{
			strconv.FormatInt(iv.EntityID, 10),
			iv.Status.String(),
			iv.ValidFrom.String(),
			iv.ValidTo.String(),
		})
	}
	intervals, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return err
	}

	counts := pterm.TableData{{"point", "date", "active"}}
	for _, pc := range r.ActiveCounts {
		counts = append(counts, []string{pc.Label, pc.Date.String(), strconv.Itoa(pc.Count)})
	}
	active, err := pterm.DefaultTable.WithHasHeader().WithData(counts).Srender()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n\nbuild %s (%s): %d entities, %d records, %d intervals",
		pterm.Bold.Sprint("Status history"), r.BuildID, r.Mode, r.Entities, r.Records, len(r.Intervals))
	if err != nil {
		return err
	}
	if len(shown) < len(r.Intervals) {
		if _, err := fmt.Fprintf(w, " (first %d shown)", len(shown)); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "\n%s\n\nEntities ever inactive: %d\n\n%s\n%s\n",
		intervals, r.EverInactive, pterm.Bold.Sprint("Active entities per point"), active)
	return err
}
