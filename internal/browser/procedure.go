package browser

import (
	"time"

	"ratequote-backend/internal/fieldmap"
)

// Procedure is an ordered list of operations evaluated inside one page
// context. It must not rely on anything left behind by another procedure.
type Procedure struct {
	Name string
	Ops  []Op
}

// Op is one operation of a procedure. The set of implementations is closed,
// see the jsrender package for how each is serialized.
type Op interface {
	opName() string
}

type Sleep struct {
	Duration time.Duration
}

// FillLogin types credentials into a plain login form.
type FillLogin struct {
	UserSelector     string
	PasswordSelector string
	Username         string
	Password         string
	// Attempts polls for the form before giving up.
	Attempts int
	Interval time.Duration
}

// ScheduleClick clicks an element after Delay, letting the procedure return
// before a navigation the click triggers.
type ScheduleClick struct {
	Selector string
	Delay    time.Duration
	Required bool
}

// ScheduleNavigate sets the page location after Delay. When URL is empty the
// target is the src of the first iframe whose src contains one of FrameHints,
// falling back to the first iframe on the page.
type ScheduleNavigate struct {
	URL        string
	FrameHints []string
	Delay      time.Duration
}

// AppLogin is a second login form some portals render inside the app.
type AppLogin struct {
	UserSelector     string
	PasswordSelector string
	ButtonSelectors  []string
	Username         string
	Password         string
	Wait             time.Duration
}

// DiscoverForm polls until the pricing form is usable.
type DiscoverForm struct {
	Attempts int
	Interval time.Duration
	// MinInputs is the visible input count above which the form is ready.
	MinInputs int
	// ReadySelector, when set, must also match for the form to be ready.
	ReadySelector string
	// ReadyText must appear in the page text for an in-app reroute to count
	// as having reached the form.
	ReadyText string
	Login     *AppLogin
	// AppLinks are href fragments of links that route to the form.
	AppLinks []string
	// AppRoute is pushed through the history api and, as a last resort,
	// loaded with a hard navigation.
	AppRoute      string
	RouteAttempts int
	// Retry is set on the second pass after a hard navigation, it disables
	// scheduling yet another navigation.
	Retry bool
}

// FillField is a mapped field paired with how to find its control.
type FillField struct {
	Field   fieldmap.Field
	Locator Locator
	Settle  time.Duration
}

type Fill struct {
	Fields []FillField
	// Unlocatable lists keys that had no locator, they are reported in the
	// diagnostics trail.
	Unlocatable []string
}

// ClickButton clicks the first element matching Selectors, or the first
// button whose trimmed text equals Text. When nothing matches and
// FailureCode is set the procedure fails with it.
type ClickButton struct {
	Selectors   []string
	Text        string
	FailureCode string
}

// PollResults waits for a table with more than MinRows rows. Any of
// NoResultTexts appearing in the page ends the wait early with no results.
type PollResults struct {
	Attempts      int
	Interval      time.Duration
	MinRows       int
	NoResultTexts []string
	Settle        time.Duration
}

// ScrapeTable reads the first table that yields rows. With HeaderRow the
// first row names the columns, otherwise Columns names cells by position.
type ScrapeTable struct {
	HeaderRow bool
	Columns   map[int]string
	MinCells  int
	MaxRows   int
	// DataAttr prefers the value of a descendant [data] attribute over the
	// cell text.
	DataAttr bool
}

// CountMatches stores the first capture group of Pattern, matched against
// the page text, under Name in the outcome counts.
type CountMatches struct {
	Name    string
	Pattern string
}

func (Sleep) opName() string            { return "sleep" }
func (FillLogin) opName() string        { return "fillLogin" }
func (ScheduleClick) opName() string    { return "scheduleClick" }
func (ScheduleNavigate) opName() string { return "scheduleNavigate" }
func (DiscoverForm) opName() string     { return "discoverForm" }
func (Fill) opName() string             { return "fill" }
func (ClickButton) opName() string      { return "clickButton" }
func (PollResults) opName() string      { return "pollResults" }
func (ScrapeTable) opName() string      { return "scrapeTable" }
func (CountMatches) opName() string     { return "countMatches" }

// OpName returns the wire name of an op.
func OpName(op Op) string {
	return op.opName()
}
