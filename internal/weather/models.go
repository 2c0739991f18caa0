package weather

import (
	"time"
)

// Position is a validated latitude/longitude pair in degrees.
// Build it with NewPosition; the zero value is a valid point (0, 0).
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Station is a fixed weather-observation point.
type Station struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
}

// City is a named place used to look up nearby stations.
type City struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
}

// Department is a French administrative department, treated as a single
// point (its reference position) for station resolution.
type Department struct {
	ID       string   `json:"id"` // department code, e.g. "33" or "2A"
	Name     string   `json:"name"`
	Position Position `json:"position"`
}

// DepartmentStations pairs a department with its nearest stations.
type DepartmentStations struct {
	Department Department
	Stations   []Station
}

// PlaceKind distinguishes cities from departments in search results.
type PlaceKind string

const (
	PlaceCity       PlaceKind = "city"
	PlaceDepartment PlaceKind = "department"
)

// PlaceSummary is a lightweight search hit.
type PlaceSummary struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Kind PlaceKind `json:"kind"`
}

// WeatherSeries holds hourly readings of one station over the requested range.
//
// Every slice in Series has the same length as Timestamps and index i refers
// to Timestamps[i] in all of them. Missing readings are nil entries.
type WeatherSeries struct {
	StationID    int64                   `json:"stationId"`
	Position     Position                `json:"position"`
	LocationName string                  `json:"locationName"`
	Timestamps   []time.Time             `json:"timestamps"` // always UTC, ascending
	Series       map[Category][]*float64 `json:"series"`
}

// Len returns the number of aligned samples.
func (s WeatherSeries) Len() int {
	return len(s.Timestamps)
}

// HourlySeries is a station-less series as returned by a forecast provider.
type HourlySeries struct {
	Timestamps []time.Time
	Values     map[Category][]*float64
}

// Empty reports whether the provider returned no samples.
func (h HourlySeries) Empty() bool {
	return len(h.Timestamps) == 0
}
