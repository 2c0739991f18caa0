package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-data-query/internal/weather"
)

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE x = ? AND y IN (?, ?)"
	assert.Equal(t, q, sqliteDialect.rebind(q))
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y IN ($2, $3)", postgresDialect.rebind(q))
}

func TestDialectFor(t *testing.T) {
	d, err := dialectFor("postgres")
	require.NoError(t, err)
	assert.True(t, d.numbered)

	d, err = dialectFor("sqlite3")
	require.NoError(t, err)
	assert.False(t, d.numbered)

	_, err = dialectFor("mysql")
	assert.Error(t, err)
}

func TestBuildReadingsQuery(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	q := weather.ReadingQuery{
		Stations:   []weather.Station{{ID: 4}, {ID: 9}},
		Range:      weather.DateRange{Start: start, End: start},
		Categories: []weather.Category{weather.Temperature2m, weather.Rain},
	}

	sql, args := buildReadingsQuery(postgresDialect, q)
	assert.Equal(t,
		`SELECT "timestamp", "weather_station_id", "temperature_2m", "rain" FROM weather_data `+
			`WHERE "weather_station_id" IN ($1, $2) AND "timestamp" >= $3 AND "timestamp" < $4 `+
			`ORDER BY "weather_station_id", "timestamp"`,
		sql)
	assert.Equal(t, []any{int64(4), int64(9), start, start.AddDate(0, 0, 1)}, args)
}

func TestBuildReadingsQueryOpenEnded(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	q := weather.ReadingQuery{
		Stations:   []weather.Station{{ID: 1}},
		Range:      weather.DateRange{Start: start},
		Categories: []weather.Category{weather.Rain},
	}

	sql, args := buildReadingsQuery(sqliteDialect, q)
	assert.NotContains(t, sql, `"timestamp" <`)
	assert.Contains(t, sql, `IN (?) AND "timestamp" >= ?`)
	assert.Len(t, args, 2)
}

func TestIsCategoryColumn(t *testing.T) {
	assert.False(t, isCategoryColumn("id"))
	assert.False(t, isCategoryColumn("weather_station_id"))
	assert.False(t, isCategoryColumn("Timestamp"))
	assert.True(t, isCategoryColumn("rain"))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%bor%", likePattern(" Bor "))
	assert.Equal(t, `%100\%\_a%`, likePattern("100%_a"))
}
