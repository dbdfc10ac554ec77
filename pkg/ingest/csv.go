// Package ingest maps raw activity rows into history.ActivityRecord values. It is the only
// place that sees text; malformed rows never reach the history builder.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/canopy-network/statusdim/pkg/history"
	"github.com/cockroachdb/errors"
)

// Columns names the header fields holding the entity, date and count of a row.
type Columns struct {
	Entity string
	Date   string
	Count  string
}

var (
	// ShopColumns is the header of the raw shop transactions export.
	ShopColumns = Columns{Entity: "SHOP_ID", Date: "DATE", Count: "N_TRANS"}
	// GenericColumns is the header written by this project's own tooling.
	GenericColumns = Columns{Entity: "entity_id", Date: "date", Count: "count"}
)

// Normalizer turns delimited rows into activity records.
type Normalizer struct {
	// Columns fixes the header; when zero, ShopColumns and GenericColumns are tried.
	Columns Columns
	// Comma is the field delimiter, ',' when zero.
	Comma rune
}

// ReadFile reads a delimited file.
func (n Normalizer) ReadFile(path string) ([]history.ActivityRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return n.Read(f)
}

// Read parses every row after the header. The first malformed row aborts the read with an
// error wrapping history.ErrMalformedRecord and naming the line.
func (n Normalizer) Read(r io.Reader) ([]history.ActivityRecord, error) {
	reader := csv.NewReader(r)
	if n.Comma != 0 {
		reader.Comma = n.Comma
	}
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	idx, err := n.resolve(header)
	if err != nil {
		return nil, err
	}

	var out []history.ActivityRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithSecondaryError(errors.Wrapf(history.ErrMalformedRecord, "line %d: %v", line, err), err)
		}
		if isBlank(row) {
			continue
		}
		rec, err := normalize(row, idx)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		out = append(out, rec)
	}
	return out, nil
}

type columnIndex struct{ entity, date, count int }

func (n Normalizer) resolve(header []string) (columnIndex, error) {
	candidates := []Columns{ShopColumns, GenericColumns}
	if n.Columns != (Columns{}) {
		candidates = []Columns{n.Columns}
	}

	positions := make(map[string]int, len(header))
	for i, h := range header {
		positions[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range candidates {
		e, okE := positions[strings.ToLower(c.Entity)]
		d, okD := positions[strings.ToLower(c.Date)]
		cnt, okC := positions[strings.ToLower(c.Count)]
		if okE && okD && okC {
			return columnIndex{entity: e, date: d, count: cnt}, nil
		}
	}
	return columnIndex{}, errors.WithHint(
		errors.Wrapf(history.ErrMalformedRecord, "header %v has no entity/date/count columns", header),
		"expected SHOP_ID,DATE,N_TRANS or entity_id,date,count")
}

func normalize(row []string, idx columnIndex) (history.ActivityRecord, error) {
	field := func(i int) (string, error) {
		if i >= len(row) {
			return "", errors.Wrapf(history.ErrMalformedRecord, "row has %d fields", len(row))
		}
		return strings.TrimSpace(row[i]), nil
	}

	rawEntity, err := field(idx.entity)
	if err != nil {
		return history.ActivityRecord{}, err
	}
	rawDate, err := field(idx.date)
	if err != nil {
		return history.ActivityRecord{}, err
	}
	rawCount, err := field(idx.count)
	if err != nil {
		return history.ActivityRecord{}, err
	}

	entityID, err := strconv.ParseInt(rawEntity, 10, 64)
	if err != nil {
		return history.ActivityRecord{}, errors.Wrapf(history.ErrMalformedRecord, "entity id %q", rawEntity)
	}
	date, ok := ParseDate(rawDate)
	if !ok {
		return history.ActivityRecord{}, errors.Wrapf(history.ErrMalformedRecord, "date %q", rawDate)
	}
	count, err := strconv.ParseInt(rawCount, 10, 64)
	if err != nil {
		return history.ActivityRecord{}, errors.Wrapf(history.ErrMalformedRecord, "count %q", rawCount)
	}
	return history.ActivityRecord{EntityID: entityID, Date: date, Count: count}, nil
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
