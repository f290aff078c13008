package automation

import (
	"fmt"
	"time"

	"ratequote-backend/internal/browser"
)

// Session is the ordered steps of one pricing request. It is created per
// request and dropped once the response is assembled.
type Session struct {
	Name  string
	Steps []browser.Step
}

// NewSession validates the steps of a batch.
func NewSession(name string, steps ...browser.Step) (Session, error) {
	if len(steps) == 0 {
		return Session{}, fmt.Errorf("automation: session %q has no steps", name)
	}
	seen := map[string]struct{}{}
	for _, step := range steps {
		err := step.Validate()
		if err != nil {
			return Session{}, fmt.Errorf("automation: session %q: %w", name, err)
		}
		if _, dup := seen[step.Name]; dup {
			return Session{}, fmt.Errorf("automation: session %q: duplicate step %q", name, step.Name)
		}
		seen[step.Name] = struct{}{}
	}
	return Session{Name: name, Steps: steps}, nil
}

// Step returns the step with the given name.
func (s Session) Step(name string) (browser.Step, bool) {
	for _, step := range s.Steps {
		if step.Name == name {
			return step, true
		}
	}
	return browser.Step{}, false
}

// Budget is the sum of every evaluate timeout, the longest the batch can run
// on the remote side before navigation time is counted.
func (s Session) Budget() time.Duration {
	var total time.Duration
	for _, step := range s.Steps {
		total += step.Timeout
	}
	return total
}
