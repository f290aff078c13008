package browser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Failure codes a procedure reports in Outcome.Error.
const (
	CodeNoLoginForm   = "no_login_form"
	CodeNoFrame       = "no_frame"
	CodeFormNotLoaded = "form_not_loaded"
	CodeNoButton      = "no_button"
	CodeScriptError   = "script_error"
)

// Stages a procedure reports in Outcome.Stage, in the order they are reached.
const (
	StageStarted    = ""
	StageDiscovered = "discovered"
	StageFilled     = "filled"
	StageSubmitted  = "submitted"
	StagePolled     = "polled"
	StageScraped    = "scraped"
)

var stageOrder = map[string]int{
	StageStarted:    0,
	StageDiscovered: 1,
	StageFilled:     2,
	StageSubmitted:  3,
	StagePolled:     4,
	StageScraped:    5,
}

// StageReached reports whether stage is at or past want.
func StageReached(stage, want string) bool {
	return stageOrder[stage] >= stageOrder[want]
}

// MarkerRerouting is recorded when the app lands somewhere other than the
// pricing form after logging in and the procedure tries to route to it.
const MarkerRerouting = "rerouting_to_app"

// Cell is one scraped cell and the header of the column it was found in.
type Cell struct {
	Header string `json:"h"`
	Text   string `json:"v"`
}

// RawRow is a scraped table row in column order.
type RawRow []Cell

// Get returns the text of the first cell whose header equals header.
func (r RawRow) Get(header string) (string, bool) {
	for _, c := range r {
		if c.Header == header {
			return c.Text, true
		}
	}
	return "", false
}

// Diagnostics is the breadcrumb trail a procedure leaves behind. It is only
// ever shown to humans.
type Diagnostics struct {
	Steps       []string `json:"steps"`
	Fills       []string `json:"fills"`
	Headers     []string `json:"headers,omitempty"`
	BodyPreview string   `json:"bodyPreview,omitempty"`
	InputCount  int      `json:"inputCount,omitempty"`
}

// HasStep reports whether a breadcrumb starts with prefix.
func (d Diagnostics) HasStep(prefix string) bool {
	for _, s := range d.Steps {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// Outcome is what every rendered procedure returns.
type Outcome struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Stage   string `json:"stage,omitempty"`
	// NeedsNextStep is set when the procedure scheduled a hard navigation
	// and left the rest of the work to a later step.
	NeedsNextStep bool `json:"needsNextStep,omitempty"`
	// NoResults is set when the portal said there was nothing to price, or
	// the results never rendered.
	NoResults bool           `json:"noResults,omitempty"`
	TimedOut  bool           `json:"timedOut,omitempty"`
	Rows      []RawRow       `json:"rows"`
	Counts    map[string]int `json:"counts,omitempty"`
	Diag      Diagnostics    `json:"diag"`
}

// DecodeOutcome decodes the value a procedure returned. Procedures return a
// json string, some executors hand it back already parsed.
func DecodeOutcome(raw json.RawMessage) (Outcome, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return Outcome{}, fmt.Errorf("browser: empty outcome")
	}
	if raw[0] == '"' {
		var inner string
		err := json.Unmarshal(raw, &inner)
		if err != nil {
			return Outcome{}, fmt.Errorf("browser: decode outcome string: %w", err)
		}
		raw = []byte(inner)
	}

	var out Outcome
	err := json.Unmarshal(raw, &out)
	if err != nil {
		return Outcome{}, fmt.Errorf("browser: decode outcome: %w", err)
	}
	return out, nil
}
