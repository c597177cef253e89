package controller

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("controller already started")
	// ErrNothingToRetry is returned by Retry when the last forecast fetch did not fail.
	ErrNothingToRetry = errors.New("no failed forecast to retry")
	// ErrClosed is returned by operations on a closed controller.
	ErrClosed = errors.New("controller closed")
	// ErrEmptySelection is returned when a selected suggestion has no name.
	ErrEmptySelection = errors.New("selected location has no name")
)

// SuggestionFetchError is a failed location search.
type SuggestionFetchError struct {
	Query string
	Err   error
}

func (e *SuggestionFetchError) Error() string {
	return fmt.Sprintf("fetch suggestions for %q: %v", e.Query, e.Err)
}

func (e *SuggestionFetchError) Unwrap() error { return e.Err }

// ForecastFetchError is a failed forecast fetch, surfaced in the error view mode.
type ForecastFetchError struct {
	City string
	Err  error
}

func (e *ForecastFetchError) Error() string {
	return fmt.Sprintf("fetch forecast for %q: %v", e.City, e.Err)
}

func (e *ForecastFetchError) Unwrap() error { return e.Err }

// PersistenceError is a failed read or write of the remembered city. It is never fatal.
type PersistenceError struct {
	Op  string // "read" or "write"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
