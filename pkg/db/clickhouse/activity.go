package clickhouse

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// ActivityRow is one row of the activity table as stored in ClickHouse.
type ActivityRow struct {
	EntityID int64     `ch:"entity_id"`
	Day      time.Time `ch:"day"`
	Count    int64     `ch:"n"`
}

// Selector is the subset of Client the activity reader needs.
type Selector interface {
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// ActivityTable reads daily activity per entity. Column names are configurable so a raw
// transactions table (SHOP_ID, DATE, N_TRANS) can be read as is.
type ActivityTable struct {
	Database     string
	Table        string
	EntityColumn string
	DateColumn   string
	CountColumn  string
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// quoteIdentifier backtick-quotes name and rejects anything that is not a plain identifier.
func quoteIdentifier(kind, name string) (string, error) {
	if !identifierPattern.MatchString(name) {
		return "", fmt.Errorf("invalid %s identifier %q", kind, name)
	}
	return "`" + name + "`", nil
}

// Query builds the aggregation. Rows of the same entity and day are summed so the reader
// never yields two observations for one day. The database name is sanitized first; every
// identifier is then validated and quoted the same way.
func (t ActivityTable) Query() (string, error) {
	names := []struct{ kind, name string }{
		{"database", SanitizeName(t.Database)},
		{"table", t.Table},
		{"entity column", t.EntityColumn},
		{"date column", t.DateColumn},
		{"count column", t.CountColumn},
	}
	quoted := make([]interface{}, len(names))
	for i, n := range names {
		q, err := quoteIdentifier(n.kind, n.name)
		if err != nil {
			return "", err
		}
		quoted[i] = q
	}
	return fmt.Sprintf(`
		SELECT
			toInt64(%[3]s)  AS entity_id,
			toDate(%[4]s)   AS day,
			toInt64(sum(%[5]s)) AS n
		FROM %[1]s.%[2]s
		GROUP BY entity_id, day
		ORDER BY entity_id, day
	`, quoted[0], quoted[1], quoted[2], quoted[3], quoted[4]), nil
}

// LoadActivity selects every activity row of the table.
func LoadActivity(ctx context.Context, db Selector, table ActivityTable) ([]ActivityRow, error) {
	query, err := table.Query()
	if err != nil {
		return nil, err
	}
	var rows []ActivityRow
	if err := db.Select(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query activity from %s.%s failed: %w", table.Database, table.Table, err)
	}
	return rows, nil
}
