package pricing

import (
	"errors"
	"time"

	"ratequote-backend/internal/automation"
	"ratequote-backend/internal/browser"
	"ratequote-backend/internal/browser/jsrender"
	"ratequote-backend/internal/fieldmap"
	"ratequote-backend/internal/normalize"
	"ratequote-backend/internal/scenario"
	"ratequote-backend/internal/scripts"
)

const (
	stepLoannexLoginPage   = "loginPage"
	stepLoannexLogin       = "login"
	stepLoannexRedirect    = "waitForRedirect"
	stepLoannexNavigate    = "navToAngular"
	stepLoannexPrice       = "price"
	stepLoannexWaitRetry   = "waitForQP"
	stepLoannexRetryPrice  = "retryPrice"
	loannexLoginTimeout    = 8 * time.Second
	loannexRedirectWait    = 5 * time.Second
	loannexNavigateTimeout = 10 * time.Second
	loannexPriceTimeout    = 45 * time.Second
	loannexRetryWait       = 5 * time.Second
)

// Loannex logs into the wrapper site, follows its frame into the pricing
// app, and fills the quick pricer. A second fill pass runs after the hard
// navigation the first pass schedules when the app routes elsewhere.
type Loannex struct {
	config  LoannexConfig
	builder scripts.Builder
	mapper  fieldmap.Mapper
}

func NewLoannex(config LoannexConfig, timing scripts.Timing) Loannex {
	return Loannex{
		config:  config,
		builder: scripts.NewBuilder(scripts.LabelLocator{Labels: config.Labels}, timing),
		mapper:  fieldmap.Loannex{},
	}
}

func (Loannex) Name() string {
	return "loannex"
}

func (l Loannex) Ready() error {
	if l.config.Username == "" || l.config.Password == "" {
		return errors.New("loannex credentials are not configured")
	}
	return nil
}

func (Loannex) Steps() StepNames {
	return StepNames{
		Login: stepLoannexLogin,
		First: stepLoannexPrice,
		Retry: stepLoannexRetryPrice,
	}
}

func (l Loannex) Normalization(loan scenario.LoanScenario) normalize.Options {
	return normalize.Options{
		Policy:          normalize.KeepAll,
		DefaultLockDays: loan.LockPeriodDays,
		MaxPrice:        l.config.MaxPrice,
	}
}

func (l Loannex) Session(loan scenario.LoanScenario) (automation.Session, error) {
	creds := scripts.Credentials{Username: l.config.Username, Password: l.config.Password}
	fields := l.mapper.Map(loan)

	form := l.config.Form
	appLogin := l.config.AppLogin
	form.AppLogin = &appLogin

	procedures := []browser.Procedure{
		l.builder.Login(creds, l.config.Login),
		l.builder.Wait(stepLoannexRedirect, loannexRedirectWait),
		l.builder.NavigateToApp(l.config.FrameHints),
		l.builder.FillAndScrape(creds, fields, form, l.config.Table, false),
		l.builder.Wait(stepLoannexWaitRetry, loannexRetryWait),
		l.builder.FillAndScrape(creds, fields, form, l.config.Table, true),
	}
	rendered := make([]string, len(procedures))
	for i, p := range procedures {
		script, err := jsrender.Render(p)
		if err != nil {
			return automation.Session{}, err
		}
		rendered[i] = script
	}

	return automation.NewSession(
		"loannex pricing",
		browser.NavigateStep(stepLoannexLoginPage, l.config.LoginURL),
		browser.EvaluateStep(stepLoannexLogin, rendered[0], loannexLoginTimeout),
		browser.EvaluateStep(stepLoannexRedirect, rendered[1], loannexRedirectWait+3*time.Second).AfterNavigation(),
		browser.EvaluateStep(stepLoannexNavigate, rendered[2], loannexNavigateTimeout),
		browser.EvaluateStep(stepLoannexPrice, rendered[3], loannexPriceTimeout).AfterNavigation(),
		browser.EvaluateStep(stepLoannexWaitRetry, rendered[4], loannexRetryWait+3*time.Second).AfterNavigation(),
		browser.EvaluateStep(stepLoannexRetryPrice, rendered[5], loannexPriceTimeout),
	)
}
