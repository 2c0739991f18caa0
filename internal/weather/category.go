package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Category is one measured hourly variable. Its value is both the storage
// column name and the Open-Meteo "hourly" variable name.
type Category string

const (
	Temperature2m         Category = "temperature_2m"
	RelativeHumidity2m    Category = "relative_humidity_2m"
	DewPoint2m            Category = "dew_point_2m"
	ApparentTemperature   Category = "apparent_temperature"
	Precipitation         Category = "precipitation"
	Rain                  Category = "rain"
	Showers               Category = "showers"
	Snowfall              Category = "snowfall"
	WeatherCode           Category = "weather_code"
	CloudCover            Category = "cloud_cover"
	CloudCoverLow         Category = "cloud_cover_low"
	CloudCoverMid         Category = "cloud_cover_mid"
	CloudCoverHigh        Category = "cloud_cover_high"
	PressureMSL           Category = "pressure_msl"
	SurfacePressure       Category = "surface_pressure"
	VapourPressureDeficit Category = "vapour_pressure_deficit"
	Evapotranspiration    Category = "et0_fao_evapotranspiration"
	WindSpeed10m          Category = "wind_speed_10m"
	WindSpeed80m          Category = "wind_speed_80m"
	WindSpeed120m         Category = "wind_speed_120m"
	WindSpeed180m         Category = "wind_speed_180m"
	WindDirection10m      Category = "wind_direction_10m"
	WindDirection80m      Category = "wind_direction_80m"
	WindDirection120m     Category = "wind_direction_120m"
	WindDirection180m     Category = "wind_direction_180m"
	WindGusts10m          Category = "wind_gusts_10m"
	Temperature80m        Category = "temperature_80m"
	Temperature120m       Category = "temperature_120m"
	Temperature180m       Category = "temperature_180m"
)

// knownCategories fixes the catalog order.
var knownCategories = []Category{
	Temperature2m, RelativeHumidity2m, DewPoint2m, ApparentTemperature,
	Precipitation, Rain, Showers, Snowfall, WeatherCode,
	CloudCover, CloudCoverLow, CloudCoverMid, CloudCoverHigh,
	PressureMSL, SurfacePressure, VapourPressureDeficit, Evapotranspiration,
	WindSpeed10m, WindSpeed80m, WindSpeed120m, WindSpeed180m,
	WindDirection10m, WindDirection80m, WindDirection120m, WindDirection180m,
	WindGusts10m, Temperature80m, Temperature120m, Temperature180m,
}

var categoryIndex = func() map[string]Category {
	m := make(map[string]Category, len(knownCategories))
	for _, c := range knownCategories {
		m[string(c)] = c
	}
	return m
}()

// KnownCategories returns every category the module understands, in catalog order.
func KnownCategories() []Category {
	out := make([]Category, len(knownCategories))
	copy(out, knownCategories)
	return out
}

// LookupCategory maps a column or variable name to its Category.
func LookupCategory(name string) (Category, bool) {
	c, ok := categoryIndex[name]
	return c, ok
}

// SplitCategories splits "rain&wind_speed_10m" into tokens. Empty text
// yields nil, which callers treat as "all categories".
func SplitCategories(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return strings.Split(text, "&")
}

// ValidateCategories checks tokens against catalog and fails on the first unknown one.
func ValidateCategories(tokens []string, catalog []Category) ([]Category, error) {
	allowed := make(map[string]Category, len(catalog))
	for _, c := range catalog {
		allowed[string(c)] = c
	}

	out := make([]Category, 0, len(tokens))
	for _, tok := range tokens {
		c, ok := allowed[tok]
		if !ok {
			return nil, &UnknownCategoryError{Name: tok}
		}
		out = append(out, c)
	}
	return out, nil
}

const categoriesCacheKey = "categories"

// Catalog exposes the set of categories the store actually holds.
// It is refreshed from the schema only on cache miss.
type Catalog struct {
	store  Store
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCatalog creates a Catalog caching the schema-derived list for ttl.
func NewCatalog(store Store, cache Cache, ttl time.Duration, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{store: store, cache: cache, ttl: ttl, logger: logger}
}

// All returns the catalog, loading it from the store on cache miss.
func (c *Catalog) All(ctx context.Context) ([]Category, error) {
	if v, ok := c.cache.Get(categoriesCacheKey); ok {
		if cats, ok := v.([]Category); ok {
			return cats, nil
		}
	}
	return c.Refresh(ctx)
}

// Refresh reloads the catalog from the schema and replaces the cached copy.
func (c *Catalog) Refresh(ctx context.Context) ([]Category, error) {
	columns, err := c.store.Columns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load category columns: %w", err)
	}

	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		if _, ok := LookupCategory(col); !ok {
			c.logger.Debug("ignoring unknown readings column", "column", col)
			continue
		}
		present[col] = true
	}

	cats := make([]Category, 0, len(present))
	for _, k := range knownCategories {
		if present[string(k)] {
			cats = append(cats, k)
		}
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("no category column found in the readings table")
	}

	c.cache.Set(categoriesCacheKey, cats, c.ttl)
	return cats, nil
}

// Validate resolves category text against the catalog. Empty text returns
// the full catalog.
func (c *Catalog) Validate(ctx context.Context, text string) ([]Category, error) {
	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	tokens := SplitCategories(text)
	if len(tokens) == 0 {
		return all, nil
	}
	return ValidateCategories(tokens, all)
}

// categoriesKey renders a category list for cache keys.
func categoriesKey(cats []Category) string {
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c)
	}
	return strings.Join(parts, "&")
}
