package httpapi

import (
	"errors"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"

	"github.com/i474232898/weather-data-query/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")
	// Weather payloads hold every hourly sample of the range.
	gzipped := compress.New(compress.Config{Level: compress.LevelBestSpeed})

	v1.Get("/categories", func(c *fiber.Ctx) error {
		cats, err := service.Categories(c.UserContext())
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{"categories": cats})
	})

	v1.Get("/places", func(c *fiber.Ctx) error {
		q := placeSearchQuery{Search: c.Query("search")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		places, err := service.SearchPlaces(c.UserContext(), q.Search)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{"places": places})
	})

	v1.Get("/places/:name/position", func(c *fiber.Ctx) error {
		name, err := pathParam(c, "name")
		if err != nil {
			return err
		}

		pos, err := service.PlacePosition(c.UserContext(), name)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{"name": name, "position": pos})
	})

	v1.Get("/places/:name/weather/:dateRange/:category?", gzipped, func(c *fiber.Ctx) error {
		var req placeWeatherRequest
		if err := req.bind(c); err != nil {
			return err
		}

		series, err := service.GetWeatherByPlace(c.UserContext(), req.DateRange, req.Name, req.Category)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(series)
	})

	v1.Get("/weather/:dateRange/:latitude/:longitude/:category?", gzipped, func(c *fiber.Ctx) error {
		var req weatherRequest
		if err := req.bind(c); err != nil {
			return err
		}

		series, err := service.GetWeather(c.UserContext(), req.DateRange, req.Latitude, req.Longitude, req.Category)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(series)
	})
}

// ErrorHandler renders every handler error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// toHTTPError maps domain errors to HTTP statuses. Unclassified errors are
// reported as 500 without leaking their text.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, weather.ErrProviderUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, weather.ErrInvalidFormat),
		errors.Is(err, weather.ErrInvalidLocation),
		errors.Is(err, weather.ErrOutOfRange),
		errors.Is(err, weather.ErrUnknownCategory):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrNoData), errors.Is(err, weather.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
}

type placeSearchQuery struct {
	Search string `validate:"required,min=2"`
}

// weatherRequest holds the path parameters of a coordinate query.
type weatherRequest struct {
	DateRange string `validate:"required"`
	Latitude  string `validate:"required"`
	Longitude string `validate:"required"`
	Category  string
}

func (r *weatherRequest) bind(c *fiber.Ctx) error {
	var err error
	if r.DateRange, err = pathParam(c, "dateRange"); err != nil {
		return err
	}
	if r.Latitude, err = pathParam(c, "latitude"); err != nil {
		return err
	}
	if r.Longitude, err = pathParam(c, "longitude"); err != nil {
		return err
	}
	if r.Category, err = pathParam(c, "category"); err != nil {
		return err
	}

	if err := validate.Struct(r); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// placeWeatherRequest holds the path parameters of a named-place query.
type placeWeatherRequest struct {
	Name      string `validate:"required"`
	DateRange string `validate:"required"`
	Category  string
}

func (r *placeWeatherRequest) bind(c *fiber.Ctx) error {
	var err error
	if r.Name, err = pathParam(c, "name"); err != nil {
		return err
	}
	if r.DateRange, err = pathParam(c, "dateRange"); err != nil {
		return err
	}
	if r.Category, err = pathParam(c, "category"); err != nil {
		return err
	}

	if err := validate.Struct(r); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// pathParam returns the percent-decoded route parameter.
func pathParam(c *fiber.Ctx, key string) (string, error) {
	v, err := url.PathUnescape(c.Params(key))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid path parameter "+key)
	}
	return v, nil
}
