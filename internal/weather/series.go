package weather

import (
	"sort"
	"time"
)

// SeriesBuilder groups flat reading rows into one WeatherSeries per station.
// Rows may arrive in any order; Build sorts each station by timestamp.
type SeriesBuilder struct {
	categories []Category
	order      []int64
	byStation  map[int64]*pendingSeries
}

type pendingSeries struct {
	station Station
	rows    []pendingRow
}

type pendingRow struct {
	ts     time.Time
	values []*float64
}

// NewSeriesBuilder creates a builder projecting exactly the given categories.
func NewSeriesBuilder(categories []Category) *SeriesBuilder {
	return &SeriesBuilder{
		categories: categories,
		byStation:  make(map[int64]*pendingSeries),
	}
}

// Add appends one row. values must be aligned with the builder categories;
// a nil entry records a missing reading.
func (b *SeriesBuilder) Add(station Station, ts time.Time, values []*float64) {
	p, ok := b.byStation[station.ID]
	if !ok {
		p = &pendingSeries{station: station}
		b.byStation[station.ID] = p
		b.order = append(b.order, station.ID)
	}

	row := pendingRow{ts: ts.UTC(), values: make([]*float64, len(b.categories))}
	copy(row.values, values)
	p.rows = append(p.rows, row)
}

// Build returns the series in first-seen station order.
func (b *SeriesBuilder) Build() []WeatherSeries {
	out := make([]WeatherSeries, 0, len(b.order))
	for _, id := range b.order {
		p := b.byStation[id]
		sort.SliceStable(p.rows, func(i, j int) bool {
			return p.rows[i].ts.Before(p.rows[j].ts)
		})

		s := WeatherSeries{
			StationID:    p.station.ID,
			Position:     p.station.Position,
			LocationName: p.station.Name,
			Timestamps:   make([]time.Time, len(p.rows)),
			Series:       make(map[Category][]*float64, len(b.categories)),
		}
		for _, c := range b.categories {
			s.Series[c] = make([]*float64, len(p.rows))
		}
		for i, row := range p.rows {
			s.Timestamps[i] = row.ts
			for ci, c := range b.categories {
				s.Series[c][i] = row.values[ci]
			}
		}
		out = append(out, s)
	}
	return out
}

// FromHourly attaches a provider series to the station it was fetched for,
// keeping only the requested categories. Categories the provider did not
// return become all-nil columns so alignment holds.
func FromHourly(station Station, h HourlySeries, categories []Category) WeatherSeries {
	s := WeatherSeries{
		StationID:    station.ID,
		Position:     station.Position,
		LocationName: station.Name,
		Timestamps:   make([]time.Time, len(h.Timestamps)),
		Series:       make(map[Category][]*float64, len(categories)),
	}
	for i, ts := range h.Timestamps {
		s.Timestamps[i] = ts.UTC()
	}
	for _, c := range categories {
		col := make([]*float64, len(h.Timestamps))
		if src, ok := h.Values[c]; ok {
			copy(col, src)
		}
		s.Series[c] = col
	}
	return s
}
