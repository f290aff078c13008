package automation

import (
	"fmt"

	"ratequote-backend/internal/browser"
)

// State is where a pricing request is in the portal flow.
type State int

const (
	Idle State = iota
	LoginSubmitted
	NavigatingToApp
	FormDiscoveryOrLogin2
	FormFilled
	PriceRequested
	ResultsPolled
	Scraped
	NoResults
	FormNotFound
	Failed
)

var stateNames = [...]string{
	Idle:                  "Idle",
	LoginSubmitted:        "LoginSubmitted",
	NavigatingToApp:       "NavigatingToApp",
	FormDiscoveryOrLogin2: "FormDiscoveryOrLogin2",
	FormFilled:            "FormFilled",
	PriceRequested:        "PriceRequested",
	ResultsPolled:         "ResultsPolled",
	Scraped:               "Scraped",
	NoResults:             "NoResults",
	FormNotFound:          "FormNotFound",
	Failed:                "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) Terminal() bool {
	switch s {
	case Scraped, NoResults, FormNotFound, Failed:
		return true
	}
	return false
}

// Success reports whether s is a terminal state the caller gets rates (or a
// confirmed empty list) from.
func (s State) Success() bool {
	return s == Scraped || s == NoResults
}

var transitions = map[State][]State{
	Idle:                  {LoginSubmitted, NavigatingToApp},
	LoginSubmitted:        {NavigatingToApp},
	NavigatingToApp:       {FormDiscoveryOrLogin2},
	FormDiscoveryOrLogin2: {FormFilled, LoginSubmitted, FormNotFound},
	FormFilled:            {PriceRequested, FormNotFound},
	PriceRequested:        {ResultsPolled},
	ResultsPolled:         {Scraped, NoResults},
}

// Machine tracks one request through the portal flow. The only way back is
// the single retry edge from form discovery to a fresh login.
type Machine struct {
	state   State
	retried bool
	reason  string
	history []State
}

func NewMachine() *Machine {
	return &Machine{history: []State{Idle}}
}

func (m *Machine) State() State {
	return m.state
}

// Retried reports whether the retry edge was taken.
func (m *Machine) Retried() bool {
	return m.retried
}

// Reason is the failure code that moved the machine into a failure terminal.
func (m *Machine) Reason() string {
	return m.reason
}

func (m *Machine) History() []string {
	out := make([]string, len(m.history))
	for i, s := range m.history {
		out[i] = s.String()
	}
	return out
}

func (m *Machine) Transition(to State) error {
	if m.state.Terminal() {
		return fmt.Errorf("automation: transition %s -> %s: already terminal", m.state, to)
	}
	if to == Failed {
		m.move(to)
		return nil
	}
	allowed := false
	for _, next := range transitions[m.state] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("automation: invalid transition %s -> %s", m.state, to)
	}
	if m.state == FormDiscoveryOrLogin2 && to == LoginSubmitted {
		if m.retried {
			return fmt.Errorf("automation: invalid transition %s -> %s: retry already taken", m.state, to)
		}
		m.retried = true
	}
	m.move(to)
	return nil
}

func (m *Machine) move(to State) {
	m.state = to
	m.history = append(m.history, to)
}

// Fail moves the machine into Failed from any state that is not terminal.
func (m *Machine) Fail(reason string) {
	if m.state.Terminal() {
		return
	}
	m.reason = reason
	m.move(Failed)
}

// Login records the outcome of the login procedure.
func (m *Machine) Login(outcome browser.Outcome) error {
	if !outcome.Success {
		m.Fail(outcome.Error)
		return nil
	}
	return m.Transition(LoginSubmitted)
}

// Advance walks the machine as far as a fill-and-scrape outcome got.
func (m *Machine) Advance(outcome browser.Outcome) error {
	err := m.enterDiscovery()
	if err != nil {
		return err
	}

	if outcome.NeedsNextStep {
		return m.Transition(LoginSubmitted)
	}
	if !browser.StageReached(outcome.Stage, browser.StageDiscovered) {
		return m.notFound(outcome)
	}
	err = m.Transition(FormFilled)
	if err != nil {
		return err
	}
	if !browser.StageReached(outcome.Stage, browser.StageSubmitted) {
		return m.notFound(outcome)
	}
	err = m.Transition(PriceRequested)
	if err != nil {
		return err
	}
	if !browser.StageReached(outcome.Stage, browser.StagePolled) {
		m.Fail(outcome.Error)
		return nil
	}
	err = m.Transition(ResultsPolled)
	if err != nil {
		return err
	}
	if outcome.NoResults || len(outcome.Rows) == 0 {
		return m.Transition(NoResults)
	}
	return m.Transition(Scraped)
}

func (m *Machine) enterDiscovery() error {
	switch m.state {
	case Idle, LoginSubmitted:
		err := m.Transition(NavigatingToApp)
		if err != nil {
			return err
		}
		return m.Transition(FormDiscoveryOrLogin2)
	case NavigatingToApp:
		return m.Transition(FormDiscoveryOrLogin2)
	case FormDiscoveryOrLogin2:
		return nil
	}
	return fmt.Errorf("automation: cannot advance from %s", m.state)
}

func (m *Machine) notFound(outcome browser.Outcome) error {
	if outcome.Error == browser.CodeScriptError {
		m.Fail(outcome.Error)
		return nil
	}
	m.reason = outcome.Error
	return m.Transition(FormNotFound)
}
