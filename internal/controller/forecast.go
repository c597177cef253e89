package controller

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/i474232898/weather-home/internal/store"
	"github.com/i474232898/weather-home/internal/weather"
)

// Forecast request origins, also used as metric labels.
const (
	originStartup   = "startup"
	originSelection = "selection"
	originRetry     = "retry"
	originRefresh   = "refresh"
)

type forecastRequest struct {
	city    string
	origin  string
	persist bool
}

// Start resolves the initial city (remembered, else the default) and fetches its forecast.
// It runs once per controller and returns without waiting for the fetch.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true
	issued := c.forecastToken

	c.spawn(func() {
		city := c.resolveStartupCity()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed {
			return
		}
		// a selection made while the remembered city was being read takes precedence
		if c.opts.RacePolicy == PolicyLatestIssued && c.forecastToken != issued {
			c.logger.Info("startup forecast superseded by selection", zap.String("city", city))
			return
		}
		c.logger.Info("fetching startup forecast", zap.String("city", city))
		c.issueForecastLocked(forecastRequest{city: city, origin: originStartup})
	})
	return nil
}

func (c *Controller) resolveStartupCity() string {
	ctx, cancel := context.WithTimeout(c.ctx, c.opts.PersistTimeout)
	defer cancel()

	city, err := c.store.GetData(ctx, CityKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.metrics.PersistenceOps.WithLabelValues("read", "missing").Inc()
	case err != nil:
		c.metrics.PersistenceOps.WithLabelValues("read", "error").Inc()
		c.logger.Warn("failed to read remembered city, using default",
			zap.Error(&PersistenceError{Op: "read", Key: CityKey, Err: err}),
			zap.String("default_city", c.opts.DefaultCity),
		)
	case strings.TrimSpace(city) != "":
		c.metrics.PersistenceOps.WithLabelValues("read", "success").Inc()
		return city
	default:
		c.metrics.PersistenceOps.WithLabelValues("read", "missing").Inc()
	}
	return c.opts.DefaultCity
}

// Refresh re-fetches the displayed city without leaving Display and without persisting.
// It is skipped while another forecast is loading or before anything has been displayed.
func (c *Controller) Refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.loading || c.snapshot == nil || c.forecastErr != nil {
		c.logger.Debug("refresh skipped", zap.Bool("loading", c.loading), zap.Bool("has_snapshot", c.snapshot != nil))
		return nil
	}
	c.issueForecastLocked(forecastRequest{city: c.city, origin: originRefresh})
	return nil
}

// issueForecastLocked starts a forecast fetch. Callers hold c.mu and have checked c.closed.
func (c *Controller) issueForecastLocked(req forecastRequest) {
	if req.origin != originRefresh {
		c.loading = true
		c.forecastErr = nil
		c.lastRequest = req
	}
	c.forecastToken++
	token := c.forecastToken

	c.spawn(func() {
		c.fetchForecast(token, req)
	})
}

func (c *Controller) fetchForecast(token uint64, req forecastRequest) {
	start := c.clock.Now()
	snap, err := c.client.FetchWeatherForecast(c.ctx, weather.ForecastQuery{
		CityName: req.city,
		Days:     c.opts.ForecastDays,
	})
	c.metrics.ForecastDuration.Observe(c.clock.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if !c.applies(token, c.forecastToken) {
		c.metrics.ForecastRequests.WithLabelValues(req.origin, "discarded").Inc()
		c.logger.Debug("discarding stale forecast",
			zap.String("city", req.city),
			zap.String("origin", req.origin),
			zap.Uint64("token", token),
			zap.Uint64("latest", c.forecastToken),
		)
		return
	}

	if err != nil {
		ferr := &ForecastFetchError{City: req.city, Err: err}
		c.metrics.ForecastRequests.WithLabelValues(req.origin, "error").Inc()
		// Error mode only ever reflects lastRequest
		if token != c.forecastToken {
			c.logger.Warn("superseded forecast failed, ignoring", zap.Error(ferr), zap.String("origin", req.origin))
			return
		}
		if req.origin == originRefresh {
			c.logger.Warn("refresh failed, keeping current forecast", zap.Error(ferr))
			return
		}
		c.loading = false
		c.forecastErr = ferr
		c.logger.Error("forecast fetch failed", zap.Error(ferr), zap.String("origin", req.origin))
		return
	}

	c.metrics.ForecastRequests.WithLabelValues(req.origin, "success").Inc()
	c.snapshot = &snap
	c.city = req.city
	c.loading = false
	c.forecastErr = nil
	c.logger.Info("forecast updated",
		zap.String("city", req.city),
		zap.String("origin", req.origin),
		zap.String("condition", snap.Current.ConditionText),
	)

	if req.persist {
		c.persistCityLocked(req.city)
	}
}
