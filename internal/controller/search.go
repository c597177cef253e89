package controller

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/i474232898/weather-home/internal/weather"
)

// OnTextChange records text as the query and restarts the debounce timer. The suggestion
// request is issued once no further change arrives for the debounce delay.
func (c *Controller) OnTextChange(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.metrics.Keystrokes.Inc()
	c.query = text

	c.stopDebounceLocked()
	c.inflight.Add(1)
	c.debounce = c.clock.AfterFunc(c.opts.DebounceDelay, func() {
		defer c.inflight.Done()
		c.searchQuiescent(text)
	})
}

// OpenSearch shows the search overlay.
func (c *Controller) OpenSearch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchOpen = true
}

// CloseSearch hides the search overlay and drops the query and its suggestions.
func (c *Controller) CloseSearch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeSearchLocked()
}

// ToggleSearch flips the overlay and reports whether it is now open.
func (c *Controller) ToggleSearch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.searchOpen {
		c.closeSearchLocked()
	} else {
		c.searchOpen = true
	}
	return c.searchOpen
}

func (c *Controller) closeSearchLocked() {
	c.searchOpen = false
	c.query = ""
	c.suggestions = nil
	c.stopDebounceLocked()
	// responses still in flight belong to a search the user abandoned
	if c.opts.RacePolicy == PolicyLatestIssued {
		c.suggestToken++
	}
}

func (c *Controller) stopDebounceLocked() {
	if c.debounce != nil && c.debounce.Stop() {
		c.inflight.Done()
	}
	c.debounce = nil
}

// searchQuiescent runs on the debounce timer goroutine.
func (c *Controller) searchQuiescent(text string) {
	q := strings.TrimSpace(text)
	if utf8.RuneCountInString(q) < c.opts.MinQueryLength {
		c.logger.Debug("query below minimum length, not searching",
			zap.Int("length", utf8.RuneCountInString(q)),
			zap.Int("min_length", c.opts.MinQueryLength),
		)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.suggestToken++
	token := c.suggestToken
	c.mu.Unlock()

	c.fetchSuggestions(token, q)
}

func (c *Controller) fetchSuggestions(token uint64, q string) {
	res, err := c.client.FetchLocations(c.ctx, weather.LocationQuery{CityName: q})

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if err != nil {
		c.metrics.SuggestionRequests.WithLabelValues("error").Inc()
		c.logger.Warn("suggestion fetch failed, keeping previous suggestions",
			zap.Error(&SuggestionFetchError{Query: q, Err: err}))
		return
	}
	if !c.applies(token, c.suggestToken) {
		c.metrics.SuggestionRequests.WithLabelValues("discarded").Inc()
		c.logger.Debug("discarding stale suggestions",
			zap.String("query", q),
			zap.Uint64("token", token),
			zap.Uint64("latest", c.suggestToken),
		)
		return
	}

	c.metrics.SuggestionRequests.WithLabelValues("success").Inc()
	c.suggestions = append([]weather.Suggestion(nil), res...)
	c.logger.Debug("suggestions updated", zap.String("query", q), zap.Int("count", len(res)))
}
