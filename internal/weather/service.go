package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// NationwideLiteral selects the nationwide aggregate when given as both
// location components.
const NationwideLiteral = "France"

const (
	citySearchLimit       = 5
	departmentSearchLimit = 2
)

// TTLConfig holds the lifetime of each cache key class.
type TTLConfig struct {
	Categories time.Duration
	Weather    time.Duration
	Global     time.Duration
}

// DefaultTTLs returns the stock cache lifetimes.
func DefaultTTLs() TTLConfig {
	return TTLConfig{
		Categories: 10 * 24 * time.Hour,
		Weather:    5 * time.Minute,
		Global:     50 * time.Minute,
	}
}

// Options tunes a Service. Zero values fall back to defaults.
type Options struct {
	TTL                 TTLConfig
	StationsPerLocation int
	GlobalConcurrency   int
	Geocoder            Geocoder
	Logger              *slog.Logger
}

// Service answers weather queries: it resolves locations to stations,
// reads the local store, falls back to the forecast provider and memoizes
// outcomes in the injected cache.
type Service struct {
	store       Store
	provider    Provider
	cache       Cache
	catalog     *Catalog
	resolver    *StationResolver
	geocoder    Geocoder
	ttl         TTLConfig
	concurrency int
	logger      *slog.Logger
}

// NewService creates a new Service. provider may be nil, which disables
// the external fallback.
func NewService(store Store, provider Provider, cache Cache, opts Options) *Service {
	def := DefaultTTLs()
	if opts.TTL.Categories <= 0 {
		opts.TTL.Categories = def.Categories
	}
	if opts.TTL.Weather <= 0 {
		opts.TTL.Weather = def.Weather
	}
	if opts.TTL.Global <= 0 {
		opts.TTL.Global = def.Global
	}
	if opts.GlobalConcurrency <= 0 {
		opts.GlobalConcurrency = 4
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Service{
		store:       store,
		provider:    provider,
		cache:       cache,
		catalog:     NewCatalog(store, cache, opts.TTL.Categories, opts.Logger),
		resolver:    NewStationResolver(store, opts.StationsPerLocation),
		geocoder:    opts.Geocoder,
		ttl:         opts.TTL,
		concurrency: opts.GlobalConcurrency,
		logger:      opts.Logger,
	}
}

// cachedOutcome is what the cache stores for weather keys. An empty slice
// records a query that legitimately found nothing.
type cachedOutcome struct {
	series []WeatherSeries
}

// loadResult is the outcome of a cache miss. providerErr is set when an
// external fallback failed; series then holds whatever else was found.
type loadResult struct {
	series      []WeatherSeries
	providerErr error
}

// GetWeather answers a query for a coordinate pair or, when both components
// are "France", for the nationwide aggregate.
func (s *Service) GetWeather(ctx context.Context, dateRange, latitude, longitude, category string) ([]WeatherSeries, error) {
	rng, err := ParseDateRange(dateRange)
	if err != nil {
		return nil, err
	}

	cats, err := s.catalog.Validate(ctx, category)
	if err != nil {
		return nil, err
	}

	pos, numeric, err := ParseCoordinates(latitude, longitude)
	if err != nil {
		return nil, err
	}

	if !numeric {
		if !isNationwide(latitude, longitude) {
			return nil, fmt.Errorf("%w: (%s, %s)", ErrInvalidLocation, latitude, longitude)
		}
		key := "weather:global|" + rng.String() + "|" + categoriesKey(cats)
		return s.cacheAside(key, s.ttl.Global, func() (loadResult, error) {
			return s.loadNationwide(ctx, rng, cats)
		})
	}

	key := "weather:" + pos.key() + "|" + rng.String() + "|" + categoriesKey(cats)
	return s.cacheAside(key, s.ttl.Weather, func() (loadResult, error) {
		stations, err := s.resolver.ResolvePosition(ctx, pos)
		if err != nil {
			return loadResult{}, err
		}
		return s.queryWithFallback(ctx, stations, rng, cats)
	})
}

// GetWeatherByPlace answers a query for a city or department name.
func (s *Service) GetWeatherByPlace(ctx context.Context, dateRange, place, category string) ([]WeatherSeries, error) {
	rng, err := ParseDateRange(dateRange)
	if err != nil {
		return nil, err
	}

	cats, err := s.catalog.Validate(ctx, category)
	if err != nil {
		return nil, err
	}

	stations, err := s.resolver.ResolveByPlace(ctx, place)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("place %q: %w", place, ErrNotFound)
	}

	key := "weather:place:" + strings.ToLower(strings.TrimSpace(place)) + "|" + rng.String() + "|" + categoriesKey(cats)
	return s.cacheAside(key, s.ttl.Weather, func() (loadResult, error) {
		return s.queryWithFallback(ctx, stations, rng, cats)
	})
}

// Categories returns the category catalog.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.catalog.All(ctx)
}

// RefreshCategories reloads the catalog from the schema.
func (s *Service) RefreshCategories(ctx context.Context) error {
	cats, err := s.catalog.Refresh(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("category catalog refreshed", "count", len(cats))
	return nil
}

// SearchPlaces returns cities and departments whose name contains term.
func (s *Service) SearchPlaces(ctx context.Context, term string) ([]PlaceSummary, error) {
	cities, err := s.store.SearchCities(ctx, term, citySearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search cities: %w", err)
	}
	depts, err := s.store.SearchDepartments(ctx, term, departmentSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search departments: %w", err)
	}

	out := make([]PlaceSummary, 0, len(cities)+len(depts))
	for _, c := range cities {
		out = append(out, PlaceSummary{ID: fmt.Sprint(c.ID), Name: c.Name, Kind: PlaceCity})
	}
	for _, d := range depts {
		out = append(out, PlaceSummary{ID: d.ID, Name: d.Name, Kind: PlaceDepartment})
	}
	return out, nil
}

// PlacePosition returns the reference position of a city or, failing that,
// a department. When neither exists and a geocoder is configured the name is
// geocoded.
func (s *Service) PlacePosition(ctx context.Context, name string) (Position, error) {
	city, err := s.store.CityByName(ctx, name)
	if err == nil {
		return city.Position, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Position{}, fmt.Errorf("failed to look up city %q: %w", name, err)
	}

	dept, err := s.store.DepartmentByName(ctx, name)
	if err == nil {
		return dept.Position, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Position{}, fmt.Errorf("failed to look up department %q: %w", name, err)
	}

	if s.geocoder != nil {
		pos, err := s.geocoder.Geocode(ctx, name)
		if err == nil {
			return pos, nil
		}
		s.logger.Warn("geocoding failed", "place", name, "error", err)
	}
	return Position{}, fmt.Errorf("place %q: %w", name, ErrNotFound)
}

// cacheAside serves key from the cache or stores the outcome of load under it.
// Keys carry the canonical range and the sorted category list:
//
//	weather:<lat>,<lon>|<range>|<categories>
//	weather:global|<range>|<categories>
//	weather:place:<name>|<range>|<categories>
//
// An empty outcome is cached as absence. Outcomes touched by a provider
// failure are never cached, partial ones included.
func (s *Service) cacheAside(key string, ttl time.Duration, load func() (loadResult, error)) ([]WeatherSeries, error) {
	if v, ok := s.cache.Get(key); ok {
		if out, ok := v.(cachedOutcome); ok {
			s.logger.Debug("weather cache hit", "key", key, "series", len(out.series))
			if len(out.series) == 0 {
				return nil, ErrNoData
			}
			return out.series, nil
		}
	}

	res, err := load()
	if err != nil {
		return nil, err
	}
	if res.providerErr != nil {
		if len(res.series) == 0 {
			return nil, fmt.Errorf("%w: %w", ErrNoData, res.providerErr)
		}
		s.logger.Warn("serving incomplete weather result uncached", "key", key, "series", len(res.series))
		return res.series, nil
	}

	s.cache.Set(key, cachedOutcome{series: res.series}, ttl)
	if len(res.series) == 0 {
		return nil, ErrNoData
	}
	return res.series, nil
}

// queryWithFallback reads the stations' readings and, when there are none,
// fetches the first station's position from the provider once.
func (s *Service) queryWithFallback(ctx context.Context, stations []Station, rng DateRange, cats []Category) (loadResult, error) {
	if len(stations) == 0 {
		return loadResult{}, nil
	}

	series, err := s.store.Readings(ctx, ReadingQuery{Stations: stations, Range: rng, Categories: cats})
	if err != nil {
		return loadResult{}, fmt.Errorf("failed to query readings: %w", err)
	}
	if len(series) > 0 {
		return loadResult{series: series}, nil
	}

	if s.provider == nil {
		return loadResult{}, nil
	}

	anchor := stations[0]
	h, err := s.provider.Fetch(ctx, rng, anchor.Position, cats)
	if err != nil {
		s.logger.Warn("provider fetch failed",
			"provider", s.provider.Name(),
			"station", anchor.ID,
			"range", rng.String(),
			"error", err,
		)
		if !errors.Is(err, ErrProviderUnavailable) {
			err = fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		return loadResult{providerErr: err}, nil
	}
	if h.Empty() {
		return loadResult{}, nil
	}
	return loadResult{series: []WeatherSeries{FromHourly(anchor, h, cats)}}, nil
}

// loadNationwide queries every department independently and concatenates
// the results in department order.
func (s *Service) loadNationwide(ctx context.Context, rng DateRange, cats []Category) (loadResult, error) {
	groups, err := s.resolver.ResolveGlobal(ctx)
	if err != nil {
		return loadResult{}, err
	}

	var (
		wg      sync.WaitGroup
		results = make([]loadResult, len(groups))
		errs    = make([]error, len(groups))
		sem     = make(chan struct{}, s.concurrency)
	)

	for i, g := range groups {
		wg.Add(1)
		go func(i int, g DepartmentStations) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-sem }()

			res, err := s.queryWithFallback(ctx, g.Stations, rng, cats)
			if err != nil {
				errs[i] = fmt.Errorf("department %s: %w", g.Department.ID, err)
				return
			}
			for j := range res.series {
				res.series[j].LocationName = g.Department.Name
			}
			results[i] = res
		}(i, g)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return loadResult{}, err
	}

	var (
		out    loadResult
		missed []string
	)
	for i, res := range results {
		out.series = append(out.series, res.series...)
		if res.providerErr != nil {
			missed = append(missed, groups[i].Department.Name)
			if out.providerErr == nil {
				out.providerErr = res.providerErr
			}
		}
	}
	if len(missed) > 0 {
		s.logger.Warn("nationwide query missed departments",
			"range", rng.String(),
			"missed", missed,
			"error", out.providerErr,
		)
	}
	s.logger.Debug("nationwide query done", "departments", len(groups), "series", len(out.series))
	return out, nil
}

func isNationwide(latitude, longitude string) bool {
	return strings.EqualFold(strings.TrimSpace(latitude), NationwideLiteral) &&
		strings.EqualFold(strings.TrimSpace(longitude), NationwideLiteral)
}
