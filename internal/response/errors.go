package response

import (
	"context"
	"errors"
	"fmt"

	"ratequote-backend/internal/automation"
	"ratequote-backend/internal/browser"
)

// Class is the short failure classification callers branch on.
type Class string

const (
	ClassTransport      Class = "transport"
	ClassAuthentication Class = "authentication"
	ClassNavigation     Class = "navigation"
	ClassDiscovery      Class = "discovery"
	ClassExtraction     Class = "extraction"
	ClassParsing        Class = "parsing"
	ClassConfiguration  Class = "configuration"
)

// Error attaches a class to an error raised before a response exists.
type Error struct {
	Class Class
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Class, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(class Class, err error) error {
	return &Error{Class: class, Err: err}
}

func Errorf(class Class, format string, args ...any) error {
	return &Error{Class: class, Err: fmt.Errorf(format, args...)}
}

// Classify places err in the failure taxonomy.
func Classify(err error) Class {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Class
	}

	var transport *automation.TransportError
	if errors.As(err, &transport) || errors.Is(err, automation.ErrBusy) {
		return ClassTransport
	}

	var noData *automation.NoDataError
	if errors.As(err, &noData) {
		for _, stepErr := range noData.StepErrors {
			if automation.IsNavigationError(stepErr.Message) {
				return ClassNavigation
			}
		}
		return ClassExtraction
	}
	if errors.Is(err, automation.ErrNoData) {
		return ClassExtraction
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransport
	}
	return ClassExtraction
}

// ClassifyCode places a procedure failure code in the failure taxonomy.
func ClassifyCode(code string) Class {
	switch code {
	case browser.CodeNoLoginForm:
		return ClassAuthentication
	case browser.CodeNoFrame:
		return ClassNavigation
	case browser.CodeFormNotLoaded, browser.CodeNoButton:
		return ClassDiscovery
	}
	return ClassExtraction
}
