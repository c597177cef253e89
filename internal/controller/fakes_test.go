package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/weather-home/internal/observability"
	"github.com/i474232898/weather-home/internal/store"
	"github.com/i474232898/weather-home/internal/weather"
)

// --- fake weather client ---

type fakeClient struct {
	mu sync.Mutex

	locationCalls []string
	forecastCalls []string

	suggestions   map[string][]weather.Suggestion
	locationGates map[string]chan struct{}
	locationErr   error

	forecastGates map[string]chan struct{}
	forecastErrs  map[string]error
	conditions    map[string]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		suggestions:   map[string][]weather.Suggestion{},
		locationGates: map[string]chan struct{}{},
		forecastGates: map[string]chan struct{}{},
		forecastErrs:  map[string]error{},
		conditions:    map[string]string{},
	}
}

// holdLocations makes FetchLocations(q) block until the returned func is called.
func (f *fakeClient) holdLocations(q string) (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.locationGates[q] = gate
	return func() { close(gate) }
}

// holdForecast makes FetchWeatherForecast(city) block until the returned func is called.
func (f *fakeClient) holdForecast(city string) (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.forecastGates[city] = gate
	return func() { close(gate) }
}

func (f *fakeClient) setSuggestions(q string, s ...weather.Suggestion) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestions[q] = s
}

func (f *fakeClient) setLocationErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locationErr = err
}

func (f *fakeClient) setForecastErr(city string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.forecastErrs, city)
		return
	}
	f.forecastErrs[city] = err
}

func (f *fakeClient) setCondition(city, cond string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conditions[city] = cond
}

func (f *fakeClient) FetchLocations(ctx context.Context, q weather.LocationQuery) ([]weather.Suggestion, error) {
	f.mu.Lock()
	f.locationCalls = append(f.locationCalls, q.CityName)
	gate := f.locationGates[q.CityName]
	res := f.suggestions[q.CityName]
	err := f.locationErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return res, err
}

func (f *fakeClient) FetchWeatherForecast(ctx context.Context, q weather.ForecastQuery) (weather.Snapshot, error) {
	f.mu.Lock()
	f.forecastCalls = append(f.forecastCalls, q.CityName)
	gate := f.forecastGates[q.CityName]
	err := f.forecastErrs[q.CityName]
	cond, ok := f.conditions[q.CityName]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return weather.Snapshot{}, ctx.Err()
		}
	}
	if err != nil {
		return weather.Snapshot{}, err
	}
	if !ok {
		cond = "Sunny"
	}
	return weather.Snapshot{
		Location: weather.Location{Name: q.CityName, Country: "Testland"},
		Current:  weather.Current{TemperatureC: 21, ConditionText: cond, WindKph: 10, HumidityPct: 40},
		ForecastDays: []weather.ForecastDay{
			{Date: "2024-01-01", Astro: weather.Astro{Sunrise: "06:30 AM", Sunset: "06:10 PM"}},
		},
	}, nil
}

func (f *fakeClient) locations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.locationCalls...)
}

func (f *fakeClient) forecasts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.forecastCalls...)
}

// --- fake city store ---

type fakeStore struct {
	mu       sync.Mutex
	data     map[string]string
	reads    int
	writes   []string
	readErr  error
	writeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}}
}

func (s *fakeStore) GetData(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.readErr != nil {
		return "", s.readErr
	}
	v, ok := s.data[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (s *fakeStore) StoreData(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes = append(s.writes, value)
	s.data[key] = value
	return nil
}

func (s *fakeStore) get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *fakeStore) writeLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

// --- helpers ---

const debounce = 1200 * time.Millisecond

type harness struct {
	ctrl   *Controller
	clock  *clockwork.FakeClock
	client *fakeClient
	store  *fakeStore
}

func newHarness(t *testing.T, opts Options) *harness {
	return newHarnessWithLogger(t, opts, zap.NewNop())
}

func newHarnessWithLogger(t *testing.T, opts Options, logger *zap.Logger) *harness {
	t.Helper()

	fc := clockwork.NewFakeClock()
	opts.Clock = fc
	if opts.DebounceDelay == 0 {
		opts.DebounceDelay = debounce
	}

	h := &harness{
		clock:  fc,
		client: newFakeClient(),
		store:  newFakeStore(),
	}
	h.ctrl = New(h.client, h.store, opts, logger, observability.NewMetricsForTesting())
	t.Cleanup(func() { _ = h.ctrl.Close() })
	return h
}

// started starts the controller and waits for the startup forecast to land.
func (h *harness) started(t *testing.T) {
	t.Helper()
	require.NoError(t, h.ctrl.Start())
	h.ctrl.Wait()
	require.Equal(t, ModeDisplay, h.ctrl.View().Mode)
}

// search types text and lets the debounce period elapse.
func (h *harness) search(text string) {
	h.ctrl.OnTextChange(text)
	h.clock.Advance(debounce)
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 2*time.Millisecond, msg)
}

func suggestion(name, country string) weather.Suggestion {
	return weather.Suggestion{Name: name, Country: country}
}
