package weather

import (
	"context"
	"time"
)

// Provider abstracts an external forecast source (Open-Meteo).
// Failures must wrap ErrProviderUnavailable; an empty HourlySeries with a nil
// error means the provider answered but had nothing.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, rng DateRange, pos Position, categories []Category) (HourlySeries, error)
}

// ReadingQuery selects stored readings for a set of stations.
type ReadingQuery struct {
	Stations   []Station
	Range      DateRange
	Categories []Category // never empty; callers expand "all" beforehand
}

// Store is the contract of the relational backing store (and the in-memory one).
type Store interface {
	Stations(ctx context.Context) ([]Station, error)
	Departments(ctx context.Context) ([]Department, error)
	CityByName(ctx context.Context, name string) (City, error)
	DepartmentByName(ctx context.Context, name string) (Department, error)
	SearchCities(ctx context.Context, term string, limit int) ([]City, error)
	SearchDepartments(ctx context.Context, term string, limit int) ([]Department, error)

	// Columns lists the category columns of the readings table, i.e. every
	// column except the identity, station reference and timestamp.
	Columns(ctx context.Context) ([]string, error)

	// Readings returns one series per station that has rows in the range.
	Readings(ctx context.Context, q ReadingQuery) ([]WeatherSeries, error)
}

// Cache is the keyed, TTL-bound memo used for cache-aside lookups.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Contains(key string) bool
}

// Geocoder resolves a free-form place name to a position.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (Position, error)
}
