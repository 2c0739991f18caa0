package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/i474232898/weather-data-query/internal/weather"
)

// SQLStore reads reference tables and readings from a relational database.
//
// Expected schema:
//
//	weather_stations(id, name, latitude, longitude)
//	cities(id, name, latitude, longitude)
//	departments(id, code, name, latitude, longitude)
//	weather_data(id, weather_station_id, timestamp, <one nullable column per category>)
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
}

// NewSQLStore wraps an open database. driver selects the SQL dialect.
func NewSQLStore(db *sql.DB, driver string, logger *slog.Logger) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{db: db, dialect: d, logger: logger.With("component", "sql_store", "driver", d.name)}, nil
}

// Open connects to the database and verifies it answers.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*SQLStore, error) {
	if _, err := dialectFor(driver); err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewSQLStore(db, driver, logger)
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Stations returns every weather station ordered by id.
func (s *SQLStore) Stations(ctx context.Context) ([]weather.Station, error) {
	query := `SELECT id, name, latitude, longitude FROM weather_stations ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var stations []weather.Station
	for rows.Next() {
		var (
			st       weather.Station
			lat, lon float64
		)
		if err := rows.Scan(&st.ID, &st.Name, &lat, &lon); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		pos, err := weather.NewPosition(lat, lon)
		if err != nil {
			s.logger.Warn("skipping station with invalid position", "station", st.ID, "error", err)
			continue
		}
		st.Position = pos
		stations = append(stations, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stations: %w", err)
	}
	return stations, nil
}

// Departments returns every department ordered by id.
func (s *SQLStore) Departments(ctx context.Context) ([]weather.Department, error) {
	query := `SELECT code, name, latitude, longitude FROM departments ORDER BY id`
	return s.queryDepartments(ctx, query)
}

// CityByName finds a city by case-insensitive name.
func (s *SQLStore) CityByName(ctx context.Context, name string) (weather.City, error) {
	query := s.dialect.rebind(`SELECT id, name, latitude, longitude FROM cities
		WHERE LOWER(name) = LOWER(?) ORDER BY id LIMIT 1`)

	cities, err := s.queryCities(ctx, query, strings.TrimSpace(name))
	if err != nil {
		return weather.City{}, err
	}
	if len(cities) == 0 {
		return weather.City{}, fmt.Errorf("city %q: %w", name, weather.ErrNotFound)
	}
	return cities[0], nil
}

// DepartmentByName finds a department by case-insensitive name.
func (s *SQLStore) DepartmentByName(ctx context.Context, name string) (weather.Department, error) {
	query := s.dialect.rebind(`SELECT code, name, latitude, longitude FROM departments
		WHERE LOWER(name) = LOWER(?) ORDER BY id LIMIT 1`)

	depts, err := s.queryDepartments(ctx, query, strings.TrimSpace(name))
	if err != nil {
		return weather.Department{}, err
	}
	if len(depts) == 0 {
		return weather.Department{}, fmt.Errorf("department %q: %w", name, weather.ErrNotFound)
	}
	return depts[0], nil
}

// SearchCities returns up to limit cities whose name contains term.
func (s *SQLStore) SearchCities(ctx context.Context, term string, limit int) ([]weather.City, error) {
	query := s.dialect.rebind(`SELECT id, name, latitude, longitude FROM cities
		WHERE LOWER(name) LIKE ? ESCAPE '\' ORDER BY name LIMIT ?`)
	return s.queryCities(ctx, query, likePattern(term), limit)
}

// SearchDepartments returns up to limit departments whose name contains term.
func (s *SQLStore) SearchDepartments(ctx context.Context, term string, limit int) ([]weather.Department, error) {
	query := s.dialect.rebind(`SELECT code, name, latitude, longitude FROM departments
		WHERE LOWER(name) LIKE ? ESCAPE '\' ORDER BY name LIMIT ?`)
	return s.queryDepartments(ctx, query, likePattern(term), limit)
}

// Columns lists the category columns of the readings table.
func (s *SQLStore) Columns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(s.dialect.columnsQuery), readingsTable)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings columns: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		if isCategoryColumn(name) {
			columns = append(columns, name)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}
	return columns, nil
}

// Readings returns one series per station with rows in the requested range.
func (s *SQLStore) Readings(ctx context.Context, q weather.ReadingQuery) ([]weather.WeatherSeries, error) {
	if len(q.Stations) == 0 || len(q.Categories) == 0 {
		return nil, nil
	}

	stations := make(map[int64]weather.Station, len(q.Stations))
	for _, st := range q.Stations {
		stations[st.ID] = st
	}

	query, args := buildReadingsQuery(s.dialect, q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	builder := weather.NewSeriesBuilder(q.Categories)
	values := make([]sql.NullFloat64, len(q.Categories))
	dest := make([]any, 0, len(q.Categories)+2)

	for rows.Next() {
		var (
			ts        time.Time
			stationID int64
		)
		dest = append(dest[:0], &ts, &stationID)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}

		row := make([]*float64, len(values))
		for i, v := range values {
			if v.Valid {
				f := v.Float64
				row[i] = &f
			}
		}
		builder.Add(stations[stationID], ts, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating readings: %w", err)
	}
	return builder.Build(), nil
}

func (s *SQLStore) queryCities(ctx context.Context, query string, args ...any) ([]weather.City, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	var cities []weather.City
	for rows.Next() {
		var (
			c        weather.City
			lat, lon float64
		)
		if err := rows.Scan(&c.ID, &c.Name, &lat, &lon); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		pos, err := weather.NewPosition(lat, lon)
		if err != nil {
			s.logger.Warn("skipping city with invalid position", "city", c.Name, "error", err)
			continue
		}
		c.Position = pos
		cities = append(cities, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cities: %w", err)
	}
	return cities, nil
}

func (s *SQLStore) queryDepartments(ctx context.Context, query string, args ...any) ([]weather.Department, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var depts []weather.Department
	for rows.Next() {
		var (
			d        weather.Department
			lat, lon float64
		)
		if err := rows.Scan(&d.ID, &d.Name, &lat, &lon); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		pos, err := weather.NewPosition(lat, lon)
		if err != nil {
			s.logger.Warn("skipping department with invalid position", "department", d.ID, "error", err)
			continue
		}
		d.Position = pos
		depts = append(depts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating departments: %w", err)
	}
	return depts, nil
}

// likePattern builds a case-insensitive LIKE pattern matching term anywhere.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

var _ weather.Store = (*SQLStore)(nil)
