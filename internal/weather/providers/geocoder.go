package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-data-query/internal/weather"
)

// geocodeFunc matches geocoder.Geocoding.
type geocodeFunc func(geocoder.Address) (geocoder.Location, error)

// GoogleGeocoder resolves French place names through the Google Geocoding
// API. The kelvins/geocoder client keeps its key in a package variable, so
// calls are serialized.
type GoogleGeocoder struct {
	mu      sync.Mutex
	apiKey  string
	country string
	lookup  geocodeFunc
}

// NewGoogleGeocoder creates a geocoder using apiKey.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		apiKey:  apiKey,
		country: "France",
		lookup:  geocoder.Geocoding,
	}
}

// Geocode returns the position of the named city.
func (g *GoogleGeocoder) Geocode(ctx context.Context, name string) (weather.Position, error) {
	if err := ctx.Err(); err != nil {
		return weather.Position{}, err
	}

	g.mu.Lock()
	geocoder.ApiKey = g.apiKey
	loc, err := g.lookup(geocoder.Address{City: name, Country: g.country})
	g.mu.Unlock()
	if err != nil {
		return weather.Position{}, fmt.Errorf("geocode %q: %w", name, err)
	}

	pos, err := weather.NewPosition(loc.Latitude, loc.Longitude)
	if err != nil {
		return weather.Position{}, fmt.Errorf("geocode %q: %w", name, err)
	}
	return pos, nil
}

var _ weather.Geocoder = (*GoogleGeocoder)(nil)
