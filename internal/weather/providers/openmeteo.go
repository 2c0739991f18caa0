package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-data-query/internal/weather"
)

// DefaultOpenMeteoURL is the public Open-Meteo forecast endpoint.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

const (
	openMeteoDateLayout = "2006-01-02"
	openMeteoTimeLayout = "2006-01-02T15:04"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider calling baseURL with client.
// maxRetries extra attempts are made after a failed request; zero disables
// retrying.
func NewOpenMeteoProvider(client *http.Client, baseURL string, maxRetries int) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      maxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: newCircuitBreaker("openmeteo", 2*time.Minute),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// BuildURL renders the forecast request URL. Open-ended ranges end on
// rng.LastDay(), and hourly is only sent when categories are given.
func BuildURL(baseURL string, rng weather.DateRange, pos weather.Position, categories []weather.Category) string {
	var b strings.Builder
	b.WriteString(baseURL)
	b.WriteString("?start_date=")
	b.WriteString(rng.Start.Format(openMeteoDateLayout))
	b.WriteString("&end_date=")
	b.WriteString(rng.LastDay().Format(openMeteoDateLayout))
	fmt.Fprintf(&b, "&latitude=%.4f&longitude=%.4f", pos.Latitude, pos.Longitude)

	if len(categories) > 0 {
		names := make([]string, len(categories))
		for i, c := range categories {
			names[i] = string(c)
		}
		b.WriteString("&hourly=")
		b.WriteString(strings.Join(names, ","))
	}
	return b.String()
}

// Fetch requests the hourly forecast of pos over rng.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, rng weather.DateRange, pos weather.Position, categories []weather.Category) (weather.HourlySeries, error) {
	u := BuildURL(p.baseURL, rng, pos, categories)

	resp, err := getWithResilience(ctx, p.httpCfg, p.circuit, u)
	if err != nil {
		return weather.HourlySeries{}, fmt.Errorf("%w: %s: %w", weather.ErrProviderUnavailable, p.name, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly map[string]json.RawMessage `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.HourlySeries{}, fmt.Errorf("%w: %s: decode response: %w", weather.ErrProviderUnavailable, p.name, err)
	}

	return decodeHourly(payload.Hourly, categories)
}

// decodeHourly converts Open-Meteo's column arrays into an HourlySeries.
// Columns shorter than the time axis are padded with nil.
func decodeHourly(hourly map[string]json.RawMessage, categories []weather.Category) (weather.HourlySeries, error) {
	out := weather.HourlySeries{Values: make(map[weather.Category][]*float64, len(categories))}

	raw, ok := hourly["time"]
	if !ok {
		return out, nil
	}

	var times []string
	if err := json.Unmarshal(raw, &times); err != nil {
		return weather.HourlySeries{}, fmt.Errorf("%w: decode hourly time: %w", weather.ErrProviderUnavailable, err)
	}
	out.Timestamps = make([]time.Time, len(times))
	for i, s := range times {
		ts, err := time.ParseInLocation(openMeteoTimeLayout, s, time.UTC)
		if err != nil {
			return weather.HourlySeries{}, fmt.Errorf("%w: parse hourly time %q: %w", weather.ErrProviderUnavailable, s, err)
		}
		out.Timestamps[i] = ts
	}

	for _, c := range categories {
		col := make([]*float64, len(times))
		if data, ok := hourly[string(c)]; ok {
			var values []*float64
			if err := json.Unmarshal(data, &values); err != nil {
				return weather.HourlySeries{}, fmt.Errorf("%w: decode hourly %s: %w", weather.ErrProviderUnavailable, c, err)
			}
			copy(col, values)
		}
		out.Values[c] = col
	}
	return out, nil
}

var _ weather.Provider = (*OpenMeteoProvider)(nil)
