package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-data-query/internal/weather"
)

func TestMemoryStoreRetention(t *testing.T) {
	s := NewMemoryStore(2)
	st := weather.Station{ID: 1, Name: "A"}
	s.AddStation(st)

	base := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		s.SaveReading(st.ID, Reading{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Values:    map[weather.Category]float64{weather.Rain: float64(i)},
		})
	}

	series, err := s.Readings(context.Background(), weather.ReadingQuery{
		Stations:   []weather.Station{st},
		Range:      weather.DateRange{Start: base},
		Categories: []weather.Category{weather.Rain},
	})
	require.NoError(t, err)
	require.Len(t, series, 1)
	require.Equal(t, 2, series[0].Len())
	assert.Equal(t, 2.0, *series[0].Series[weather.Rain][0])
	assert.Equal(t, 3.0, *series[0].Series[weather.Rain][1])
}

func TestMemoryStoreReadingsRangeAndOrder(t *testing.T) {
	s := NewMemoryStore(0)
	st := weather.Station{ID: 5, Name: "B"}
	s.AddStation(st)

	day := time.Date(2023, time.June, 10, 0, 0, 0, 0, time.UTC)
	s.SaveReading(st.ID, Reading{Timestamp: day.Add(2 * time.Hour), Values: map[weather.Category]float64{weather.Rain: 2}})
	s.SaveReading(st.ID, Reading{Timestamp: day, Values: map[weather.Category]float64{weather.Rain: 0, weather.Temperature2m: 18}})
	s.SaveReading(st.ID, Reading{Timestamp: day.AddDate(0, 0, -1), Values: map[weather.Category]float64{weather.Rain: 9}})
	s.SaveReading(st.ID, Reading{Timestamp: day.AddDate(0, 0, 1), Values: map[weather.Category]float64{weather.Rain: 9}})

	series, err := s.Readings(context.Background(), weather.ReadingQuery{
		Stations:   []weather.Station{st, {ID: 99}},
		Range:      weather.DateRange{Start: day, End: day},
		Categories: []weather.Category{weather.Temperature2m, weather.Rain},
	})
	require.NoError(t, err)
	require.Len(t, series, 1)

	s0 := series[0]
	assert.Equal(t, []time.Time{day, day.Add(2 * time.Hour)}, s0.Timestamps)
	assert.Equal(t, 18.0, *s0.Series[weather.Temperature2m][0])
	assert.Nil(t, s0.Series[weather.Temperature2m][1])
}

func TestMemoryStoreLookups(t *testing.T) {
	s := NewMemoryStore(0)
	s.AddCity(weather.City{ID: 2, Name: "Bordeaux"})
	s.AddCity(weather.City{ID: 1, Name: "Bordères"})
	s.AddCity(weather.City{ID: 3, Name: "Arcachon"})
	s.AddDepartment(weather.Department{ID: "33", Name: "Gironde"})
	ctx := context.Background()

	c, err := s.CityByName(ctx, " bordeaux ")
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.ID)

	_, err = s.CityByName(ctx, "Paris")
	assert.ErrorIs(t, err, weather.ErrNotFound)

	_, err = s.DepartmentByName(ctx, "Landes")
	assert.ErrorIs(t, err, weather.ErrNotFound)

	found, err := s.SearchCities(ctx, "BORD", 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bordeaux", found[0].Name)

	depts, err := s.SearchDepartments(ctx, "ron", 2)
	require.NoError(t, err)
	assert.Len(t, depts, 1)

	cols, err := s.Columns(ctx)
	require.NoError(t, err)
	assert.Len(t, cols, len(weather.KnownCategories()))
}
