package models

import "fmt"

// Error taxonomy for the query boundary. All of these are recoverable:
// handlers map them to structured HTTP failures and the process keeps
// serving.

type DataNotLoadedError struct {
	State LoadState
}

func (e *DataNotLoadedError) Error() string {
	return fmt.Sprintf("data not loaded (store state: %s)", e.State)
}

type EntityNotFoundError struct {
	EntityType string
	Key        string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %q", e.EntityType, e.Key)
}

type InsufficientHistoryError struct {
	Required int
	Got      int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: need at least %d trend points, got %d", e.Required, e.Got)
}

type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

type UpstreamUnavailableError struct {
	Upstream string
	Cause    error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("upstream %s unavailable: %v", e.Upstream, e.Cause)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Cause }
