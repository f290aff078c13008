package automation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoData is returned when no step of a batch produced data.
var ErrNoData = errors.New("automation: no step produced data")

// ErrBusy is returned when the session gate has no free browser session.
var ErrBusy = errors.New("automation: no browser session available")

// TransportError is a failure to talk to the automation service at all.
type TransportError struct {
	// Status is the http status, 0 when no response was received.
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("automation transport: status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("automation transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StepError is an unexpected error reported for a single step.
type StepError struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

func (e StepError) Error() string {
	return fmt.Sprintf("step %s: %s", e.Step, e.Message)
}

// NoDataError carries the step errors of a batch that produced nothing.
type NoDataError struct {
	StepErrors []StepError
}

func (e *NoDataError) Error() string {
	if len(e.StepErrors) == 0 {
		return ErrNoData.Error()
	}
	return fmt.Sprintf("%s: %s", ErrNoData.Error(), e.StepErrors[0].Error())
}

func (e *NoDataError) Unwrap() error {
	return ErrNoData
}

var navigationErrors = []string{
	"execution context was destroyed",
	"cannot find context with specified id",
	"inspected target navigated or closed",
	"frame was detached",
	"navigation",
	"target closed",
	"context destroyed",
}

// IsNavigationError reports whether a step error looks like the page was
// replaced while the step was running.
func IsNavigationError(message string) bool {
	message = strings.ToLower(message)
	for _, fragment := range navigationErrors {
		if strings.Contains(message, fragment) {
			return true
		}
	}
	return false
}
