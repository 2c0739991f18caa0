package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/weather-data-query/internal/weather"
)

// Reading is one hourly row of a station. Categories absent from Values are
// missing readings.
type Reading struct {
	Timestamp time.Time
	Values    map[weather.Category]float64
}

// ReadingHistory holds a time-ordered list of readings for a station.
type ReadingHistory struct {
	Readings []Reading
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
type MemoryStore struct {
	mu sync.RWMutex

	stations    []weather.Station
	cities      []weather.City
	departments []weather.Department

	// key: station id, value: history
	data map[int64]*ReadingHistory

	// retention configuration
	maxHistory int // max number of readings per station
}

// NewMemoryStore creates a new MemoryStore.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{
		data:       make(map[int64]*ReadingHistory),
		maxHistory: maxHistory,
	}
}

// AddStation registers a station.
func (s *MemoryStore) AddStation(st weather.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations = append(s.stations, st)
}

// AddCity registers a city.
func (s *MemoryStore) AddCity(c weather.City) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities = append(s.cities, c)
}

// AddDepartment registers a department.
func (s *MemoryStore) AddDepartment(d weather.Department) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments = append(s.departments, d)
}

// SaveReading stores a reading for a station and enforces retention.
func (s *MemoryStore) SaveReading(stationID int64, r Reading) {
	r.Timestamp = r.Timestamp.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[stationID]
	if !ok {
		history = &ReadingHistory{}
		s.data[stationID] = history
	}

	history.Readings = append(history.Readings, r)
	n := len(history.Readings)
	if n > 1 && r.Timestamp.Before(history.Readings[n-2].Timestamp) {
		sort.SliceStable(history.Readings, func(i, j int) bool {
			return history.Readings[i].Timestamp.Before(history.Readings[j].Timestamp)
		})
	}

	// Enforce retention by count, dropping the oldest readings.
	if s.maxHistory > 0 && len(history.Readings) > s.maxHistory {
		over := len(history.Readings) - s.maxHistory
		history.Readings = history.Readings[over:]
	}
}

func (s *MemoryStore) Stations(_ context.Context) ([]weather.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]weather.Station, len(s.stations))
	copy(out, s.stations)
	return out, nil
}

func (s *MemoryStore) Departments(_ context.Context) ([]weather.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]weather.Department, len(s.departments))
	copy(out, s.departments)
	return out, nil
}

func (s *MemoryStore) CityByName(_ context.Context, name string) (weather.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cities {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, nil
		}
	}
	return weather.City{}, fmt.Errorf("city %q: %w", name, weather.ErrNotFound)
}

func (s *MemoryStore) DepartmentByName(_ context.Context, name string) (weather.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.departments {
		if strings.EqualFold(d.Name, strings.TrimSpace(name)) {
			return d, nil
		}
	}
	return weather.Department{}, fmt.Errorf("department %q: %w", name, weather.ErrNotFound)
}

func (s *MemoryStore) SearchCities(_ context.Context, term string, limit int) ([]weather.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []weather.City
	for _, c := range s.cities {
		if containsFold(c.Name, term) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) SearchDepartments(_ context.Context, term string, limit int) ([]weather.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []weather.Department
	for _, d := range s.departments {
		if containsFold(d.Name, term) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Columns reports every known category; the in-memory schema is not fixed.
func (s *MemoryStore) Columns(_ context.Context) ([]string, error) {
	known := weather.KnownCategories()
	out := make([]string, len(known))
	for i, c := range known {
		out[i] = string(c)
	}
	return out, nil
}

// Readings returns one series per station with readings in the range.
func (s *MemoryStore) Readings(_ context.Context, q weather.ReadingQuery) ([]weather.WeatherSeries, error) {
	if len(q.Stations) == 0 || len(q.Categories) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var until time.Time
	if q.Range.HasEnd() {
		until = q.Range.End.AddDate(0, 0, 1)
	}

	builder := weather.NewSeriesBuilder(q.Categories)
	for _, st := range q.Stations {
		history, ok := s.data[st.ID]
		if !ok {
			continue
		}
		for _, r := range history.Readings {
			if r.Timestamp.Before(q.Range.Start) {
				continue
			}
			if !until.IsZero() && !r.Timestamp.Before(until) {
				continue
			}
			row := make([]*float64, len(q.Categories))
			for i, c := range q.Categories {
				if v, ok := r.Values[c]; ok {
					v := v
					row[i] = &v
				}
			}
			builder.Add(st, r.Timestamp, row)
		}
	}
	return builder.Build(), nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

var _ weather.Store = (*MemoryStore)(nil)
