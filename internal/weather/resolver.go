package weather

import (
	"context"
	"errors"
	"fmt"
)

// DefaultStationsPerLocation is how many nearby stations a location resolves to.
const DefaultStationsPerLocation = 3

// StationResolver maps places and coordinates to their nearest stations.
// Stations are reloaded from the store on every call.
type StationResolver struct {
	store Store
	count int
}

// NewStationResolver creates a resolver returning count stations per location.
func NewStationResolver(store Store, count int) *StationResolver {
	if count <= 0 {
		count = DefaultStationsPerLocation
	}
	return &StationResolver{store: store, count: count}
}

// ResolvePosition returns the stations nearest to pos.
func (r *StationResolver) ResolvePosition(ctx context.Context, pos Position) ([]Station, error) {
	stations, err := r.store.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stations: %w", err)
	}
	return Nearest(pos, stations, r.count), nil
}

// ResolveByPlace looks the name up as a city and as a department and unions
// the nearest stations of every match, deduplicated by station id.
// An unknown name yields an empty slice and no error.
func (r *StationResolver) ResolveByPlace(ctx context.Context, name string) ([]Station, error) {
	var anchors []Position

	city, err := r.store.CityByName(ctx, name)
	switch {
	case err == nil:
		anchors = append(anchors, city.Position)
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("failed to look up city %q: %w", name, err)
	}

	dept, err := r.store.DepartmentByName(ctx, name)
	switch {
	case err == nil:
		anchors = append(anchors, dept.Position)
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("failed to look up department %q: %w", name, err)
	}

	if len(anchors) == 0 {
		return []Station{}, nil
	}

	stations, err := r.store.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stations: %w", err)
	}

	seen := make(map[int64]bool)
	out := []Station{}
	for _, anchor := range anchors {
		for _, s := range Nearest(anchor, stations, r.count) {
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			out = append(out, s)
		}
	}
	return out, nil
}

// ResolveGlobal returns the nearest stations of every department, in store order.
func (r *StationResolver) ResolveGlobal(ctx context.Context) ([]DepartmentStations, error) {
	depts, err := r.store.Departments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load departments: %w", err)
	}
	stations, err := r.store.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stations: %w", err)
	}

	out := make([]DepartmentStations, 0, len(depts))
	for _, d := range depts {
		out = append(out, DepartmentStations{
			Department: d,
			Stations:   Nearest(d.Position, stations, r.count),
		})
	}
	return out, nil
}
