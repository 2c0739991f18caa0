package weather

import (
	"math"
	"sort"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine distance between a and b in kilometres.
func DistanceKm(a, b Position) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Nearest returns up to n candidates ordered by ascending distance from origin.
// Equal distances keep their input order.
func Nearest(origin Position, candidates []Station, n int) []Station {
	if n <= 0 || len(candidates) == 0 {
		return []Station{}
	}

	type ranked struct {
		station  Station
		distance float64
	}

	all := make([]ranked, len(candidates))
	for i, s := range candidates {
		all[i] = ranked{station: s, distance: DistanceKm(origin, s.Position)}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].distance < all[j].distance
	})

	if n > len(all) {
		n = len(all)
	}
	out := make([]Station, n)
	for i := 0; i < n; i++ {
		out[i] = all[i].station
	}
	return out
}
