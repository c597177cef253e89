// Package controller implements the weather screen: debounced location search,
// selection, the startup forecast, and the derived view state.
//
// All state sits behind one mutex. Every suspension point (suggestion fetch, forecast
// fetch, remembered-city read and write) runs in its own goroutine and re-acquires the
// mutex to apply its result, so state changes are applied one at a time.
package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/i474232898/weather-home/internal/observability"
	"github.com/i474232898/weather-home/internal/weather"
)

// CityKey is the persistence key of the remembered city.
const CityKey = "city"

// RacePolicy decides which of several overlapping responses is applied.
type RacePolicy string

const (
	// PolicyLatestIssued applies only the response to the most recently issued request.
	PolicyLatestIssued RacePolicy = "latest"
	// PolicyLastResolved applies every response as it arrives; the last to resolve wins.
	PolicyLastResolved RacePolicy = "last-resolved"
)

// ParseRacePolicy parses "latest" or "last-resolved".
func ParseRacePolicy(s string) (RacePolicy, error) {
	switch p := RacePolicy(s); p {
	case PolicyLatestIssued, PolicyLastResolved:
		return p, nil
	default:
		return "", fmt.Errorf("unknown race policy %q", s)
	}
}

// CityStore is the persistence gateway for the remembered city.
// GetData returns store.ErrNotFound when nothing is stored.
type CityStore interface {
	GetData(ctx context.Context, key string) (string, error)
	StoreData(ctx context.Context, key, value string) error
}

// Options configures a Controller. Zero fields take the defaults below.
type Options struct {
	DefaultCity    string        // "Islamabad"
	ForecastDays   int           // 7
	DebounceDelay  time.Duration // 1200ms
	MinQueryLength int           // 3
	RacePolicy     RacePolicy    // PolicyLatestIssued
	PersistTimeout time.Duration // 5s
	Clock          clockwork.Clock
}

func (o Options) withDefaults() Options {
	if o.DefaultCity == "" {
		o.DefaultCity = "Islamabad"
	}
	if o.ForecastDays <= 0 {
		o.ForecastDays = 7
	}
	if o.DebounceDelay <= 0 {
		o.DebounceDelay = 1200 * time.Millisecond
	}
	if o.MinQueryLength <= 0 {
		o.MinQueryLength = 3
	}
	if o.RacePolicy == "" {
		o.RacePolicy = PolicyLatestIssued
	}
	if o.PersistTimeout <= 0 {
		o.PersistTimeout = 5 * time.Second
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// Controller is one weather screen.
type Controller struct {
	id      string
	client  weather.Client
	store   CityStore
	opts    Options
	clock   clockwork.Clock
	logger  *zap.Logger
	metrics *observability.Metrics

	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup

	// persistMu serializes writes so the last write always carries the latest wanted city.
	persistMu sync.Mutex

	mu      sync.Mutex
	started bool
	closed  bool

	// search
	query        string
	suggestions  []weather.Suggestion
	searchOpen   bool
	debounce     clockwork.Timer
	suggestToken uint64

	// forecast
	loading       bool
	snapshot      *weather.Snapshot
	city          string
	forecastErr   *ForecastFetchError
	lastRequest   forecastRequest
	forecastToken uint64
	persistWant   string
}

// New creates a Controller in the Loading state. Call Start to fetch the initial forecast.
func New(client weather.Client, store CityStore, opts Options, logger *zap.Logger, metrics *observability.Metrics) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	opts = opts.withDefaults()
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		id:      id,
		client:  client,
		store:   store,
		opts:    opts,
		clock:   opts.Clock,
		logger:  logger.With(zap.String("screen_id", id)),
		metrics: metrics,
		ctx:     ctx,
		cancel:  cancel,
		loading: true,
	}
}

// ID identifies this controller in logs.
func (c *Controller) ID() string {
	return c.id
}

// Wait blocks until pending debounce timers and in-flight requests have finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Close stops the debounce timer, cancels in-flight requests and waits for them to return.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.stopDebounceLocked()
	c.mu.Unlock()

	c.cancel()
	c.inflight.Wait()
	c.logger.Info("controller closed")
	return nil
}

// spawn runs fn in a tracked goroutine. Callers hold c.mu and have checked c.closed.
func (c *Controller) spawn(fn func()) {
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		fn()
	}()
}

// applies reports whether a response carrying token should change state.
// Callers hold c.mu.
func (c *Controller) applies(token, latest uint64) bool {
	return c.opts.RacePolicy == PolicyLastResolved || token == latest
}
