package pricing

import (
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
	stepLenderPricePage    = "pricingPage"
	stepLenderPriceResults = "results"
	lenderPriceTimeout     = 45 * time.Second
)

// LenderPrice opens the public pricing page directly, its form is found by
// stable element ids and needs no login.
type LenderPrice struct {
	config  LenderPriceConfig
	builder scripts.Builder
	mapper  fieldmap.Mapper
}

func NewLenderPrice(config LenderPriceConfig, timing scripts.Timing) LenderPrice {
	return LenderPrice{
		config:  config,
		builder: scripts.NewBuilder(scripts.IDLocator{IDs: config.FieldIDs}, timing),
		mapper:  fieldmap.LenderPrice{},
	}
}

func (LenderPrice) Name() string {
	return "lenderprice"
}

func (LenderPrice) Ready() error {
	return nil
}

func (LenderPrice) Steps() StepNames {
	return StepNames{First: stepLenderPriceResults}
}

func (p LenderPrice) Normalization(loan scenario.LoanScenario) normalize.Options {
	return normalize.Options{
		Policy:          normalize.BestPricePerRate,
		DefaultLockDays: loan.LockPeriodDays,
		MaxPrice:        p.config.MaxPrice,
	}
}

func (p LenderPrice) Session(loan scenario.LoanScenario) (automation.Session, error) {
	procedure := p.builder.FillAndScrape(
		scripts.Credentials{},
		p.mapper.Map(loan),
		p.config.Form,
		p.config.Table,
		false,
	)
	script, err := jsrender.Render(procedure)
	if err != nil {
		return automation.Session{}, err
	}
	return automation.NewSession(
		"lenderprice pricing",
		browser.NavigateStep(stepLenderPricePage, p.config.URL),
		browser.EvaluateStep(stepLenderPriceResults, script, lenderPriceTimeout),
	)
}
