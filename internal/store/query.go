package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/i474232898/weather-data-query/internal/weather"
)

const (
	readingsTable = "weather_data"

	columnID        = "id"
	columnStationID = "weather_station_id"
	columnTimestamp = "timestamp"
)

// dialect captures the few SQL differences between the supported drivers.
// Queries are written with '?' bind variables and rebound per dialect.
type dialect struct {
	name         string
	numbered     bool // $1, $2, ... instead of ?
	columnsQuery string
}

var (
	postgresDialect = dialect{
		name:     "postgres",
		numbered: true,
		columnsQuery: `SELECT column_name FROM information_schema.columns
			WHERE table_name = ? ORDER BY ordinal_position`,
	}
	sqliteDialect = dialect{
		name:         "sqlite3",
		columnsQuery: `SELECT name FROM pragma_table_info(?) ORDER BY cid`,
	}
)

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return postgresDialect, nil
	case "sqlite3", "sqlite":
		return sqliteDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// rebind rewrites '?' bind variables for the dialect.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isCategoryColumn reports whether a readings column holds a measurement.
func isCategoryColumn(name string) bool {
	switch strings.ToLower(name) {
	case columnID, columnStationID, columnTimestamp:
		return false
	}
	return true
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// buildReadingsQuery projects timestamp, station id and exactly the requested
// category columns for the given stations and range. The range end is a
// whole day, so rows strictly before the following midnight are included.
func buildReadingsQuery(d dialect, q weather.ReadingQuery) (string, []any) {
	cols := make([]string, 0, len(q.Categories)+2)
	cols = append(cols, quoteIdent(columnTimestamp), quoteIdent(columnStationID))
	for _, c := range q.Categories {
		cols = append(cols, quoteIdent(string(c)))
	}

	args := make([]any, 0, len(q.Stations)+2)
	marks := make([]string, len(q.Stations))
	for i, s := range q.Stations {
		marks[i] = "?"
		args = append(args, s.ID)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(" FROM ")
	b.WriteString(readingsTable)
	b.WriteString(" WHERE ")
	b.WriteString(quoteIdent(columnStationID))
	b.WriteString(" IN (")
	b.WriteString(strings.Join(marks, ", "))
	b.WriteString(") AND ")
	b.WriteString(quoteIdent(columnTimestamp))
	b.WriteString(" >= ?")
	args = append(args, q.Range.Start)

	if q.Range.HasEnd() {
		b.WriteString(" AND ")
		b.WriteString(quoteIdent(columnTimestamp))
		b.WriteString(" < ?")
		args = append(args, q.Range.End.AddDate(0, 0, 1))
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(quoteIdent(columnStationID))
	b.WriteString(", ")
	b.WriteString(quoteIdent(columnTimestamp))

	return d.rebind(b.String()), args
}
