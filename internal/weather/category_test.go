package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCategories(t *testing.T) {
	assert.Nil(t, SplitCategories(""))
	assert.Nil(t, SplitCategories("  "))
	assert.Equal(t, []string{"rain", "wind_speed_10m"}, SplitCategories("rain&wind_speed_10m"))
}

func TestValidateCategories(t *testing.T) {
	catalog := []Category{Temperature2m, Rain}

	got, err := ValidateCategories([]string{"rain", "temperature_2m"}, catalog)
	require.NoError(t, err)
	assert.Equal(t, []Category{Rain, Temperature2m}, got)

	_, err = ValidateCategories([]string{"rain", "snowfall", "bogus"}, catalog)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCategory)

	var unknown *UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "snowfall", unknown.Name)
}

func TestCatalogIntersectsSchemaWithKnownCategories(t *testing.T) {
	st := &stubStore{columns: []string{"rain", "station_note", "temperature_2m", "wind_speed_10m"}}
	cat := NewCatalog(st, newMapCache(), time.Hour, nil)

	got, err := cat.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Category{Temperature2m, Rain, WindSpeed10m}, got)
}

func TestCatalogIsCached(t *testing.T) {
	st := &stubStore{columns: []string{"rain"}}
	c := newMapCache()
	cat := NewCatalog(st, c, time.Hour, nil)

	_, err := cat.All(context.Background())
	require.NoError(t, err)
	_, err = cat.All(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, st.columnCalls)
	assert.True(t, c.Contains(categoriesCacheKey))

	_, err = cat.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.columnCalls)
}

func TestCatalogErrors(t *testing.T) {
	cat := NewCatalog(&stubStore{columns: []string{"note"}}, newMapCache(), time.Hour, nil)
	_, err := cat.All(context.Background())
	assert.Error(t, err)

	boom := errors.New("connection refused")
	cat = NewCatalog(&stubStore{columnsErr: boom}, newMapCache(), time.Hour, nil)
	_, err = cat.All(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCatalogValidate(t *testing.T) {
	cat := NewCatalog(&stubStore{columns: []string{"rain", "snowfall"}}, newMapCache(), time.Hour, nil)

	all, err := cat.Validate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []Category{Rain, Snowfall}, all)

	one, err := cat.Validate(context.Background(), "snowfall")
	require.NoError(t, err)
	assert.Equal(t, []Category{Snowfall}, one)

	_, err = cat.Validate(context.Background(), "temperature_2m")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
