package weather

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NewPosition validates a coordinate pair. Values are returned unchanged;
// nothing is clamped or wrapped.
func NewPosition(lat, lon float64) (Position, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) ||
		lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Position{}, fmt.Errorf("%w: (%v, %v)", ErrOutOfRange, lat, lon)
	}
	return Position{Latitude: lat, Longitude: lon}, nil
}

// ParseCoordinates interprets two texts as a coordinate pair. The boolean is
// false when either text is not a number, in which case err is nil and the
// caller decides what the texts mean.
func ParseCoordinates(latText, lonText string) (Position, bool, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return Position{}, false, nil
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonText), 64)
	if err != nil {
		return Position{}, false, nil
	}

	pos, err := NewPosition(lat, lon)
	if err != nil {
		return Position{}, true, err
	}
	return pos, true, nil
}

// key renders a position for cache keys without rounding.
func (p Position) key() string {
	return strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}
