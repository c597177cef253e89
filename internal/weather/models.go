package weather

import (
	"time"
)

// Suggestion is one candidate location returned by a partial-name search.
type Suggestion struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Region  string  `json:"region,omitempty"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

// Label is the "Name, Country" text shown in the suggestion list.
func (s Suggestion) Label() string {
	if s.Country == "" {
		return s.Name
	}
	return s.Name + ", " + s.Country
}

// Location represents a resolved, unambiguous place.
type Location struct {
	Name      string  `json:"name"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	LocalTime string  `json:"localtime,omitempty"`
}

// Current holds the conditions at fetch time.
type Current struct {
	TemperatureC  float64 `json:"temperatureC"`
	FeelsLikeC    float64 `json:"feelsLikeC"`
	ConditionText string  `json:"conditionText"`
	ConditionIcon string  `json:"conditionIcon,omitempty"`
	WindKph       float64 `json:"windKph"`
	HumidityPct   float64 `json:"humidityPercent"`
	IsDay         bool    `json:"isDay"`
}

// Astro holds the sun and moon times of a forecast day, as local clock strings ("06:12 AM").
type Astro struct {
	Sunrise  string `json:"sunrise"`
	Sunset   string `json:"sunset"`
	Moonrise string `json:"moonrise,omitempty"`
	Moonset  string `json:"moonset,omitempty"`
}

// Day is the daily aggregate of a forecast day.
type Day struct {
	MaxTempC      float64 `json:"maxTempC"`
	MinTempC      float64 `json:"minTempC"`
	AvgTempC      float64 `json:"avgTempC"`
	ConditionText string  `json:"conditionText"`
	ChanceOfRain  int     `json:"chanceOfRain"`
}

// ForecastDay is one entry of a multi-day forecast.
type ForecastDay struct {
	Date  string `json:"date"` // YYYY-MM-DD, location-local
	Day   Day    `json:"day"`
	Astro Astro  `json:"astro"`
}

// Snapshot is the complete current + forecast bundle for one location.
// ForecastDays are ordered by date ascending.
type Snapshot struct {
	Location     Location      `json:"location"`
	Current      Current       `json:"current"`
	ForecastDays []ForecastDay `json:"forecastDays"`
	FetchedAt    time.Time     `json:"fetchedAt"` // always UTC
}

// Sunrise returns the first forecast day's sunrise, or "" when there is no forecast.
func (s Snapshot) Sunrise() string {
	if len(s.ForecastDays) == 0 {
		return ""
	}
	return s.ForecastDays[0].Astro.Sunrise
}
