// Package scripts builds the browser procedures for each stage of a pricing
// run. Procedures only carry literal values, every credential and field
// value is embedded when the procedure is built.
package scripts

import (
	"fmt"
	"time"

	"ratequote-backend/internal/browser"
	"ratequote-backend/internal/fieldmap"
)

type Credentials struct {
	Username string
	Password string
}

// LoginForm is a server rendered login page.
type LoginForm struct {
	UserSelector     string `json:"user_selector"`
	PasswordSelector string `json:"password_selector"`
	SubmitSelector   string `json:"submit_selector"`
}

// AppLoginForm is a login form rendered by the single page app itself.
type AppLoginForm struct {
	UserSelector     string   `json:"user_selector"`
	PasswordSelector string   `json:"password_selector"`
	ButtonSelectors  []string `json:"button_selectors"`
}

// PricingForm describes how to recognize and submit a portal's pricing form.
type PricingForm struct {
	MinInputs     int           `json:"min_inputs"`
	ReadySelector string        `json:"ready_selector"`
	ReadyText     string        `json:"ready_text"`
	AppLogin      *AppLoginForm `json:"app_login"`
	AppLinks      []string      `json:"app_links"`
	AppRoute      string        `json:"app_route"`
	// SettleAfter lists field keys whose change re-renders other fields.
	SettleAfter     []string `json:"settle_after"`
	SubmitSelectors []string `json:"submit_selectors"`
	SubmitText      string   `json:"submit_text"`
}

// ResultsTable describes where results show up and how to read them.
type ResultsTable struct {
	MinRows       int            `json:"min_rows"`
	NoResultTexts []string       `json:"no_result_texts"`
	HeaderRow     bool           `json:"header_row"`
	Columns       map[int]string `json:"columns"`
	MinCells      int            `json:"min_cells"`
	MaxRows       int            `json:"max_rows"`
	DataAttr      bool           `json:"data_attr"`
	// Counts maps a count name to a pattern with one capture group.
	Counts map[string]string `json:"counts"`
}

// Timing holds every bounded wait the procedures use.
type Timing struct {
	PageSettle      time.Duration
	LoginPoll       int
	PollInterval    time.Duration
	HandOffDelay    time.Duration
	FormAttempts    int
	RouteAttempts   int
	AppLoginWait    time.Duration
	FieldSettle     time.Duration
	ReactiveSettle  time.Duration
	ResultAttempts  int
	ResultsInterval time.Duration
	ResultsSettle   time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		PageSettle:      1500 * time.Millisecond,
		LoginPoll:       5,
		PollInterval:    1500 * time.Millisecond,
		HandOffDelay:    150 * time.Millisecond,
		FormAttempts:    10,
		RouteAttempts:   10,
		AppLoginWait:    3 * time.Second,
		FieldSettle:     150 * time.Millisecond,
		ReactiveSettle:  300 * time.Millisecond,
		ResultAttempts:  20,
		ResultsInterval: 1500 * time.Millisecond,
		ResultsSettle:   time.Second,
	}
}

// DefaultMaxRows caps how many result rows a procedure scrapes.
const DefaultMaxRows = 50

// Builder produces the procedures for one portal.
type Builder struct {
	Locator FieldLocator
	Timing  Timing
}

func NewBuilder(locator FieldLocator, timing Timing) Builder {
	return Builder{Locator: locator, Timing: timing}
}

// Login fills a server rendered login form and schedules the submit click so
// the procedure returns before the resulting navigation.
func (b Builder) Login(creds Credentials, form LoginForm) browser.Procedure {
	return browser.Procedure{
		Name: "login",
		Ops: []browser.Op{
			browser.Sleep{Duration: b.Timing.PageSettle},
			browser.FillLogin{
				UserSelector:     form.UserSelector,
				PasswordSelector: form.PasswordSelector,
				Username:         creds.Username,
				Password:         creds.Password,
				Attempts:         b.Timing.LoginPoll,
				Interval:         b.Timing.PollInterval / 3,
			},
			browser.ScheduleClick{
				Selector: form.SubmitSelector,
				Delay:    b.Timing.HandOffDelay,
				Required: true,
			},
		},
	}
}

// Wait does nothing for d, it gives a scheduled navigation time to finish.
func (b Builder) Wait(name string, d time.Duration) browser.Procedure {
	return browser.Procedure{
		Name: name,
		Ops:  []browser.Op{browser.Sleep{Duration: d}},
	}
}

// NavigateToApp leaves a wrapper page for the app it embeds in a frame.
func (b Builder) NavigateToApp(frameHints []string) browser.Procedure {
	return browser.Procedure{
		Name: "navigateToApp",
		Ops: []browser.Op{
			browser.Sleep{Duration: b.Timing.PageSettle},
			browser.ScheduleNavigate{
				FrameHints: frameHints,
				Delay:      b.Timing.HandOffDelay,
			},
		},
	}
}

// FillOps returns the fill op for a field map. Empty fields are skipped and
// keys the locator cannot resolve are listed as unlocatable.
func (b Builder) FillOps(fields fieldmap.FieldMap, settleAfter []string) browser.Fill {
	reactive := map[string]bool{}
	for _, key := range settleAfter {
		reactive[key] = true
	}

	fill := browser.Fill{}
	for _, field := range fields.Filled() {
		locator, ok := b.Locator.Locate(field.Key)
		if !ok {
			fill.Unlocatable = append(fill.Unlocatable, field.Key)
			continue
		}
		settle := b.Timing.FieldSettle
		if reactive[field.Key] || field.Kind == fieldmap.Choice {
			settle = b.Timing.ReactiveSettle
		}
		fill.Fields = append(fill.Fields, browser.FillField{
			Field:   field,
			Locator: locator,
			Settle:  settle,
		})
	}
	return fill
}

// FillAndScrape discovers the pricing form, fills it, submits it, waits for
// results and scrapes them. With retry set the procedure is the second pass
// after a hard navigation and will not schedule another one.
func (b Builder) FillAndScrape(
	creds Credentials,
	fields fieldmap.FieldMap,
	form PricingForm,
	table ResultsTable,
	retry bool,
) browser.Procedure {
	discover := browser.DiscoverForm{
		Attempts:      b.Timing.FormAttempts,
		Interval:      b.Timing.PollInterval,
		MinInputs:     form.MinInputs,
		ReadySelector: form.ReadySelector,
		ReadyText:     form.ReadyText,
		AppLinks:      form.AppLinks,
		AppRoute:      form.AppRoute,
		RouteAttempts: b.Timing.RouteAttempts,
		Retry:         retry,
	}
	if form.AppLogin != nil {
		discover.Login = &browser.AppLogin{
			UserSelector:     form.AppLogin.UserSelector,
			PasswordSelector: form.AppLogin.PasswordSelector,
			ButtonSelectors:  form.AppLogin.ButtonSelectors,
			Username:         creds.Username,
			Password:         creds.Password,
			Wait:             b.Timing.AppLoginWait,
		}
	}

	maxRows := table.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	ops := []browser.Op{
		discover,
		b.FillOps(fields, form.SettleAfter),
		browser.ClickButton{
			Selectors:   form.SubmitSelectors,
			Text:        form.SubmitText,
			FailureCode: browser.CodeNoButton,
		},
		browser.PollResults{
			Attempts:      b.Timing.ResultAttempts,
			Interval:      b.Timing.ResultsInterval,
			MinRows:       table.MinRows,
			NoResultTexts: table.NoResultTexts,
			Settle:        b.Timing.ResultsSettle,
		},
		browser.ScrapeTable{
			HeaderRow: table.HeaderRow,
			Columns:   table.Columns,
			MinCells:  table.MinCells,
			MaxRows:   maxRows,
			DataAttr:  table.DataAttr,
		},
	}
	for _, name := range sortedKeys(table.Counts) {
		ops = append(ops, browser.CountMatches{Name: name, Pattern: table.Counts[name]})
	}

	name := "fillAndScrape"
	if retry {
		name = fmt.Sprintf("%s(retry)", name)
	}
	return browser.Procedure{Name: name, Ops: ops}
}
