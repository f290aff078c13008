package automation

import (
	"bytes"
	"encoding/json"
)

// StepResult is what the automation service returned for one step. Value is
// nil when the step produced no data.
type StepResult struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value,omitempty"`
	Err   string          `json:"error,omitempty"`
	// Expected is set on errors caused by a navigation the pipeline
	// scheduled itself.
	Expected bool `json:"expected,omitempty"`
}

func (r StepResult) HasData() bool {
	v := bytes.TrimSpace(r.Value)
	return len(v) > 0 && string(v) != "null"
}

// Results maps step names to their results, in batch order.
type Results struct {
	order []string
	steps map[string]StepResult
	// BatchErrors are errors the service reported without a step path.
	BatchErrors []string
}

func NewResults() Results {
	return Results{steps: map[string]StepResult{}}
}

// Set records a result, replacing an earlier one for the same step. An error
// is appended to an existing one instead of replacing it.
func (r *Results) Set(result StepResult) {
	if r.steps == nil {
		r.steps = map[string]StepResult{}
	}
	existing, ok := r.steps[result.Name]
	if !ok {
		r.order = append(r.order, result.Name)
	}
	if ok {
		if result.Value == nil {
			result.Value = existing.Value
		}
		if existing.Err != "" && result.Err != "" && existing.Err != result.Err {
			result.Err = existing.Err + "; " + result.Err
		} else if result.Err == "" {
			result.Err = existing.Err
		}
	}
	r.steps[result.Name] = result
}

func (r Results) Get(name string) (StepResult, bool) {
	result, ok := r.steps[name]
	return result, ok
}

// Value returns the data a step produced.
func (r Results) Value(name string) (json.RawMessage, bool) {
	result, ok := r.steps[name]
	if !ok || !result.HasData() {
		return nil, false
	}
	return result.Value, true
}

// Steps returns every result in batch order.
func (r Results) Steps() []StepResult {
	out := make([]StepResult, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.steps[name])
	}
	return out
}

// HasData reports whether any step produced data.
func (r Results) HasData() bool {
	for _, result := range r.steps {
		if result.HasData() {
			return true
		}
	}
	return false
}

// StepErrors returns the errors that were not filtered as expected.
func (r Results) StepErrors() []StepError {
	out := []StepError{}
	for _, result := range r.Steps() {
		if result.Err == "" || result.Expected {
			continue
		}
		out = append(out, StepError{Step: result.Name, Message: result.Err})
	}
	return out
}
