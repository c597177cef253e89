package controller

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/i474232898/weather-home/internal/weather"
)

// Select commits a suggestion: the screen goes to Loading, the overlay closes, and the
// forecast for s.Name is fetched. On success the city is remembered for the next start.
func (c *Controller) Select(s weather.Suggestion) error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptySelection
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.closeSearchLocked()

	c.logger.Info("location selected", zap.String("city", s.Name), zap.String("country", s.Country))
	c.issueForecastLocked(forecastRequest{city: s.Name, origin: originSelection, persist: true})
	return nil
}

// Retry re-issues the forecast fetch that put the screen into the error mode.
func (c *Controller) Retry() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.forecastErr == nil || c.loading {
		return ErrNothingToRetry
	}

	req := c.lastRequest
	req.origin = originRetry
	c.logger.Info("retrying forecast", zap.String("city", req.city))
	c.issueForecastLocked(req)
	return nil
}

// persistCityLocked remembers city in the background. Failures are logged, never surfaced.
func (c *Controller) persistCityLocked(city string) {
	c.persistWant = city
	c.spawn(func() {
		c.persistMu.Lock()
		defer c.persistMu.Unlock()

		c.mu.Lock()
		want := c.persistWant
		c.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), c.opts.PersistTimeout)
		defer cancel()

		if err := c.store.StoreData(ctx, CityKey, want); err != nil {
			c.metrics.PersistenceOps.WithLabelValues("write", "error").Inc()
			c.logger.Warn("failed to persist city",
				zap.Error(&PersistenceError{Op: "write", Key: CityKey, Err: err}))
			return
		}
		c.metrics.PersistenceOps.WithLabelValues("write", "success").Inc()
		c.logger.Debug("city persisted", zap.String("city", want))
	})
}
