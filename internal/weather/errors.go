package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is returned when a date range matches none of the supported grammars.
	ErrInvalidFormat = errors.New("invalid date range format")
	// ErrInvalidLocation is returned when a location is neither a coordinate pair nor the nationwide literal.
	ErrInvalidLocation = errors.New("invalid location")
	// ErrOutOfRange is returned for NaN or out-of-bounds coordinates.
	ErrOutOfRange = errors.New("coordinates out of range")
	// ErrUnknownCategory is matched by every *UnknownCategoryError.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrNoData is returned when a well-formed query found nothing locally or upstream.
	ErrNoData = errors.New("no weather data for the specified criteria")
	// ErrNotFound is returned by stores and lookups when a named place does not exist.
	ErrNotFound = errors.New("not found")
	// ErrProviderUnavailable marks failures of the external forecast provider.
	ErrProviderUnavailable = errors.New("weather provider unavailable")
)

// UnknownCategoryError names the first category token missing from the catalog.
type UnknownCategoryError struct {
	Name string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("category %q is not in the catalog", e.Name)
}

func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}
