// Package pricing runs a loan scenario through a portal and assembles the
// response.
package pricing

import (
	"ratequote-backend/internal/automation"
	"ratequote-backend/internal/browser"
	"ratequote-backend/internal/normalize"
	"ratequote-backend/internal/scenario"
)

// StepNames names the steps of a portal's session whose values are
// procedure outcomes. Login and Retry are empty when the portal has none.
type StepNames struct {
	Login string
	First string
	Retry string
}

// Portal is one lender portal. Everything portal specific lives behind it.
type Portal interface {
	Name() string
	// Ready reports configuration the portal cannot run without.
	Ready() error
	Session(loan scenario.LoanScenario) (automation.Session, error)
	Steps() StepNames
	Normalization(loan scenario.LoanScenario) normalize.Options
}

// selection is the outcome picked out of a batch's results.
type selection struct {
	login    *browser.Outcome
	first    *browser.Outcome
	retry    *browser.Outcome
	chosen   *browser.Outcome
	usedStep string
	// decodeErr is the first outcome that could not be decoded.
	decodeErr error
}

func (s selection) usedRetry() bool {
	return s.chosen != nil && s.chosen == s.retry
}

// otherDiag is the trail of the attempt that was not chosen.
func (s selection) otherDiag() *browser.Diagnostics {
	var other *browser.Outcome
	switch {
	case s.chosen == s.first:
		other = s.retry
	case s.chosen == s.retry:
		other = s.first
	}
	if other == nil {
		return nil
	}
	diag := other.Diag
	return &diag
}

func decodeStep(results automation.Results, name string, sel *selection) *browser.Outcome {
	if name == "" {
		return nil
	}
	value, ok := results.Value(name)
	if !ok {
		return nil
	}
	outcome, err := browser.DecodeOutcome(value)
	if err != nil {
		if sel.decodeErr == nil {
			sel.decodeErr = err
		}
		return nil
	}
	return &outcome
}

func selectOutcome(results automation.Results, names StepNames) selection {
	sel := selection{}
	sel.login = decodeStep(results, names.Login, &sel)
	sel.first = decodeStep(results, names.First, &sel)
	sel.retry = decodeStep(results, names.Retry, &sel)

	if sel.login != nil && !sel.login.Success && sel.first == nil && sel.retry == nil {
		sel.chosen = sel.login
		sel.usedStep = names.Login
		return sel
	}

	chosen, usedRetry := selectAttempt(sel.first, sel.retry)
	sel.chosen = chosen
	switch {
	case chosen == nil:
	case usedRetry:
		sel.usedStep = names.Retry
	default:
		sel.usedStep = names.First
	}
	return sel
}

// selectAttempt prefers the retry when the first attempt never reached the
// results, either because it handed off to a hard navigation or because it
// was rerouted and came back empty.
func selectAttempt(first, retry *browser.Outcome) (*browser.Outcome, bool) {
	if retry == nil {
		return first, false
	}
	switch {
	case first == nil,
		first.NeedsNextStep,
		len(first.Rows) == 0 && first.Diag.HasStep(browser.MarkerRerouting),
		!first.Success && retry.Success:
		return retry, true
	}
	return first, false
}
