package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-home/internal/weather"
)

const defaultWeatherAPIBaseURL = "https://api.weatherapi.com/v1"

// WeatherAPI error code for an unknown location.
const weatherAPICodeNoLocation = 1006

// ErrLocationNotFound is returned when WeatherAPI has no location matching the query.
var ErrLocationNotFound = errors.New("no matching location found")

// APIError is a WeatherAPI error payload.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("weatherapi error %d (status %d): %s", e.Code, e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrLocationNotFound && e.Code == weatherAPICodeNoLocation
}

// WeatherAPIProvider implements weather.Client for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// Option customizes a WeatherAPIProvider.
type Option func(*WeatherAPIProvider)

// WithBaseURL points the provider at another service root (tests, proxies).
func WithBaseURL(u string) Option {
	return func(p *WeatherAPIProvider) {
		p.baseURL = strings.TrimRight(u, "/")
	}
}

// WithBackoff overrides the retry policy.
func WithBackoff(b BackoffConfig) Option {
	return func(p *WeatherAPIProvider) {
		p.httpCfg.Backoff = b
	}
}

// WithLogger sets the provider logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *WeatherAPIProvider) {
		p.logger = l
	}
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...Option) *WeatherAPIProvider {
	p := &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: defaultWeatherAPIBaseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.circuit = newCircuitBreaker(p.name)
	p.logger = p.logger.With(zap.String("provider", p.name))
	return p
}

// FetchLocations queries search.json for locations matching a partial name.
// Results keep the service order.
func (p *WeatherAPIProvider) FetchLocations(ctx context.Context, q weather.LocationQuery) ([]weather.Suggestion, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi api key is not configured")
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", q.CityName)

	var payload []struct {
		ID      int64   `json:"id"`
		Name    string  `json:"name"`
		Region  string  `json:"region"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := p.get(ctx, "search.json", values, &payload); err != nil {
		return nil, err
	}

	out := make([]weather.Suggestion, 0, len(payload))
	for _, item := range payload {
		out = append(out, weather.Suggestion{
			ID:      item.ID,
			Name:    item.Name,
			Region:  item.Region,
			Country: item.Country,
			Lat:     item.Lat,
			Lon:     item.Lon,
		})
	}

	p.logger.Debug("weatherapi locations fetched", zap.String("query", q.CityName), zap.Int("count", len(out)))
	return out, nil
}

// FetchWeatherForecast queries forecast.json for the current conditions and a q.Days forecast.
func (p *WeatherAPIProvider) FetchWeatherForecast(ctx context.Context, q weather.ForecastQuery) (weather.Snapshot, error) {
	if p.apiKey == "" {
		return weather.Snapshot{}, fmt.Errorf("weatherapi api key is not configured")
	}
	if q.Days <= 0 {
		return weather.Snapshot{}, fmt.Errorf("days must be greater than zero")
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", q.CityName)
	values.Set("days", strconv.Itoa(q.Days))
	values.Set("aqi", "no")
	values.Set("alerts", "no")

	var payload forecastPayload
	if err := p.get(ctx, "forecast.json", values, &payload); err != nil {
		return weather.Snapshot{}, err
	}

	snap := payload.toSnapshot()
	snap.FetchedAt = time.Now().UTC()

	p.logger.Debug("weatherapi forecast fetched",
		zap.String("city", q.CityName),
		zap.String("resolved", snap.Location.Name),
		zap.Int("days", len(snap.ForecastDays)),
	)
	return snap, nil
}

func (p *WeatherAPIProvider) get(ctx context.Context, endpoint string, values url.Values, out any) error {
	u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return decodeAPIError(err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// decodeAPIError turns a StatusError carrying a WeatherAPI error body into an APIError.
func decodeAPIError(err error) error {
	var se *StatusError
	if !errors.As(err, &se) {
		return err
	}
	var body struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if jerr := json.Unmarshal(se.Body, &body); jerr != nil || body.Error.Code == 0 {
		return err
	}
	return &APIError{
		StatusCode: se.StatusCode,
		Code:       body.Error.Code,
		Message:    body.Error.Message,
	}
}

type conditionPayload struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

type forecastPayload struct {
	Location struct {
		Name      string  `json:"name"`
		Region    string  `json:"region"`
		Country   string  `json:"country"`
		Lat       float64 `json:"lat"`
		Lon       float64 `json:"lon"`
		Localtime string  `json:"localtime"`
	} `json:"location"`
	Current struct {
		TempC      float64          `json:"temp_c"`
		FeelslikeC float64          `json:"feelslike_c"`
		IsDay      int              `json:"is_day"`
		Condition  conditionPayload `json:"condition"`
		WindKph    float64          `json:"wind_kph"`
		Humidity   float64          `json:"humidity"`
	} `json:"current"`
	Forecast struct {
		Forecastday []struct {
			Date string `json:"date"`
			Day  struct {
				MaxtempC          float64          `json:"maxtemp_c"`
				MintempC          float64          `json:"mintemp_c"`
				AvgtempC          float64          `json:"avgtemp_c"`
				DailyChanceOfRain int              `json:"daily_chance_of_rain"`
				Condition         conditionPayload `json:"condition"`
			} `json:"day"`
			Astro struct {
				Sunrise  string `json:"sunrise"`
				Sunset   string `json:"sunset"`
				Moonrise string `json:"moonrise"`
				Moonset  string `json:"moonset"`
			} `json:"astro"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (f forecastPayload) toSnapshot() weather.Snapshot {
	snap := weather.Snapshot{
		Location: weather.Location{
			Name:      f.Location.Name,
			Region:    f.Location.Region,
			Country:   f.Location.Country,
			Lat:       f.Location.Lat,
			Lon:       f.Location.Lon,
			LocalTime: f.Location.Localtime,
		},
		Current: weather.Current{
			TemperatureC:  f.Current.TempC,
			FeelsLikeC:    f.Current.FeelslikeC,
			ConditionText: f.Current.Condition.Text,
			ConditionIcon: f.Current.Condition.Icon,
			WindKph:       f.Current.WindKph,
			HumidityPct:   f.Current.Humidity,
			IsDay:         f.Current.IsDay == 1,
		},
		ForecastDays: make([]weather.ForecastDay, 0, len(f.Forecast.Forecastday)),
	}

	for _, fd := range f.Forecast.Forecastday {
		snap.ForecastDays = append(snap.ForecastDays, weather.ForecastDay{
			Date: fd.Date,
			Day: weather.Day{
				MaxTempC:      fd.Day.MaxtempC,
				MinTempC:      fd.Day.MintempC,
				AvgTempC:      fd.Day.AvgtempC,
				ConditionText: fd.Day.Condition.Text,
				ChanceOfRain:  fd.Day.DailyChanceOfRain,
			},
			Astro: weather.Astro{
				Sunrise:  fd.Astro.Sunrise,
				Sunset:   fd.Astro.Sunset,
				Moonrise: fd.Astro.Moonrise,
				Moonset:  fd.Astro.Moonset,
			},
		})
	}
	return snap
}
