// Package browser describes work for a remote browser as plain values:
// batch steps, the procedures evaluated inside a page and the outcome those
// procedures report back.
package browser

import (
	"fmt"
	"time"
)

type StepKind int

const (
	Navigate StepKind = iota
	Evaluate
)

func (k StepKind) String() string {
	if k == Navigate {
		return "navigate"
	}
	return "evaluate"
}

// Step is one operation of a batch. Steps run in order inside a single
// browser context.
type Step struct {
	Name string
	Kind StepKind
	// URL is set for Navigate steps.
	URL string
	// Script is a rendered procedure, set for Evaluate steps.
	Script  string
	Timeout time.Duration
	// ExpectNavigation marks a step that runs while a navigation scheduled by
	// an earlier step may tear down the page. Its context-loss errors are
	// expected.
	ExpectNavigation bool
}

func NavigateStep(name, url string) Step {
	return Step{Name: name, Kind: Navigate, URL: url}
}

func EvaluateStep(name, script string, timeout time.Duration) Step {
	return Step{Name: name, Kind: Evaluate, Script: script, Timeout: timeout}
}

// AfterNavigation returns a copy of the step with ExpectNavigation set.
func (s Step) AfterNavigation() Step {
	s.ExpectNavigation = true
	return s
}

func (s Step) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("browser: step has no name")
	}
	switch s.Kind {
	case Navigate:
		if s.URL == "" {
			return fmt.Errorf("browser: navigate step %q has no url", s.Name)
		}
	case Evaluate:
		if s.Script == "" {
			return fmt.Errorf("browser: evaluate step %q has no script", s.Name)
		}
		if s.Timeout <= 0 {
			return fmt.Errorf("browser: evaluate step %q has no timeout", s.Name)
		}
	default:
		return fmt.Errorf("browser: step %q has unknown kind %d", s.Name, s.Kind)
	}
	return nil
}
