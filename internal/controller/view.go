package controller

import (
	"github.com/i474232898/weather-home/internal/weather"
)

// Mode is the exclusive part of the screen state. The search overlay is orthogonal to it.
type Mode string

const (
	ModeLoading Mode = "loading"
	ModeDisplay Mode = "display"
	ModeError   Mode = "error"
)

// ViewState is everything a presentation layer needs to render the screen.
type ViewState struct {
	Mode       Mode   `json:"mode"`
	SearchOpen bool   `json:"searchOpen"`
	Query      string `json:"query"`

	// Suggestions is non-empty only while the overlay is open.
	// Labels holds the "Name, Country" text of each suggestion, in the same order.
	Suggestions []weather.Suggestion `json:"suggestions,omitempty"`
	Labels      []string             `json:"labels,omitempty"`

	// Weather is the current snapshot, kept (stale) while loading or after a failure.
	Weather *weather.Snapshot `json:"weather,omitempty"`
	Image   string            `json:"image,omitempty"`
	Sunrise string            `json:"sunrise,omitempty"`

	Error    string `json:"error,omitempty"`
	CanRetry bool   `json:"canRetry"`
}

// View derives the current screen state.
func (c *Controller) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := ViewState{
		SearchOpen: c.searchOpen,
		Query:      c.query,
	}

	switch {
	case c.loading:
		v.Mode = ModeLoading
	case c.forecastErr != nil:
		v.Mode = ModeError
		v.Error = c.forecastErr.Error()
		v.CanRetry = true
	default:
		v.Mode = ModeDisplay
	}

	if c.searchOpen && len(c.suggestions) > 0 {
		v.Suggestions = append([]weather.Suggestion(nil), c.suggestions...)
		v.Labels = make([]string, len(c.suggestions))
		for i, s := range c.suggestions {
			v.Labels[i] = s.Label()
		}
	}

	if c.snapshot != nil {
		snap := *c.snapshot
		snap.ForecastDays = append([]weather.ForecastDay(nil), snap.ForecastDays...)
		v.Weather = &snap
		v.Image = weather.ImageFor(snap.Current.ConditionText)
		v.Sunrise = snap.Sunrise()
	}
	return v
}

// Suggestions returns the held suggestion list whether or not the overlay is open.
func (c *Controller) Suggestions() []weather.Suggestion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]weather.Suggestion(nil), c.suggestions...)
}
