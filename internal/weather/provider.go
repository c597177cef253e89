package weather

import (
	"context"
)

// LocationQuery asks for locations matching a partial name.
type LocationQuery struct {
	CityName string
}

// ForecastQuery asks for the forecast of an exact city name.
type ForecastQuery struct {
	CityName string
	Days     int
}

// Client abstracts the geocoding/weather service (e.g. WeatherAPI.com).
type Client interface {
	FetchLocations(ctx context.Context, q LocationQuery) ([]Suggestion, error)
	FetchWeatherForecast(ctx context.Context, q ForecastQuery) (Snapshot, error)
}
