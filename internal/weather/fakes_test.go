package weather

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// stubStore serves fixed reference data. Only the methods a test touches
// need data; Readings returns nothing.
type stubStore struct {
	stations    []Station
	cities      []City
	departments []Department
	columns     []string
	columnsErr  error
	columnCalls int
}

func (s *stubStore) Stations(context.Context) ([]Station, error) { return s.stations, nil }

func (s *stubStore) Departments(context.Context) ([]Department, error) { return s.departments, nil }

func (s *stubStore) CityByName(_ context.Context, name string) (City, error) {
	for _, c := range s.cities {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return City{}, fmt.Errorf("city %q: %w", name, ErrNotFound)
}

func (s *stubStore) DepartmentByName(_ context.Context, name string) (Department, error) {
	for _, d := range s.departments {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return Department{}, fmt.Errorf("department %q: %w", name, ErrNotFound)
}

func (s *stubStore) SearchCities(context.Context, string, int) ([]City, error) { return nil, nil }

func (s *stubStore) SearchDepartments(context.Context, string, int) ([]Department, error) {
	return nil, nil
}

func (s *stubStore) Columns(context.Context) ([]string, error) {
	s.columnCalls++
	return s.columns, s.columnsErr
}

func (s *stubStore) Readings(context.Context, ReadingQuery) ([]WeatherSeries, error) {
	return nil, nil
}

// mapCache is a TTL-less Cache.
type mapCache struct {
	mu    sync.Mutex
	items map[string]any
}

func newMapCache() *mapCache { return &mapCache{items: make(map[string]any)} }

func (c *mapCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *mapCache) Set(key string, value any, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *mapCache) Contains(key string) bool {
	_, ok := c.Get(key)
	return ok
}
