package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"ratequote-backend/internal/automation"
	"ratequote-backend/internal/browser"
	"ratequote-backend/internal/components/chrono"
	"ratequote-backend/internal/components/telemetry"
	"ratequote-backend/internal/normalize"
	"ratequote-backend/internal/response"
	"ratequote-backend/internal/scenario"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ratequote.internal.pricing")

const (
	report_service_quote    = "service.quote"
	report_service_states   = "service.states"
	report_service_warnings = "service.scenario-warnings"
	report_service_rates    = "service.rates"
)

// ErrNotConfigured is returned for requests that cannot run because the
// automation service is not configured.
var ErrNotConfigured = errors.New("automation service is not configured")

type ServiceOptions struct {
	Deadline time.Duration
	Debug    bool
	// Clock defaults to chrono.Standard.
	Clock chrono.API
}

type Service struct {
	orch     automation.Orchestrator
	ready    bool
	portals  map[string]Portal
	deadline time.Duration
	debug    bool
	clock    chrono.API
	tel      telemetry.API
}

// NewService builds a service over executor. A nil executor means the
// automation service is not configured, every quote then fails with a
// configuration error.
func NewService(
	executor automation.Executor,
	gate automation.Gate,
	portals []Portal,
	opts ServiceOptions,
	tel telemetry.API,
) *Service {
	tel = telemetry.NewScopedAPI("pricing", tel)

	byName := map[string]Portal{}
	for _, p := range portals {
		byName[p.Name()] = p
	}
	if opts.Deadline <= 0 {
		opts.Deadline = 58 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = chrono.Standard{}
	}
	return &Service{
		orch:     automation.NewOrchestrator(executor, gate, tel),
		ready:    executor != nil,
		portals:  byName,
		deadline: opts.Deadline,
		debug:    opts.Debug,
		clock:    opts.Clock,
		tel:      tel,
	}
}

// Portals returns the names of every registered portal.
func (s *Service) Portals() []string {
	out := make([]string, 0, len(s.portals))
	for name := range s.portals {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Quote prices a scenario payload on a portal. It always returns a
// response, failures are described inside it.
func (s *Service) Quote(ctx context.Context, portalName string, payload scenario.Payload) response.Response {
	ctx, span := tracer.Start(ctx, "Quote")
	defer span.End()
	span.SetAttributes(attribute.String("portal", portalName))

	start := s.clock.Now()
	resp := s.quote(ctx, portalName, payload)
	elapsed := s.clock.Now().Sub(start)
	span.SetAttributes(attribute.Int64("elapsed_ms", elapsed.Milliseconds()))
	s.tel.ReportDebug("quote finished", report_service_quote, portalName, resp.Success, elapsed)
	if !resp.Success {
		span.SetStatus(codes.Error, fmt.Sprintf("%s: %s", resp.Error, resp.Message))
	} else {
		span.SetAttributes(attribute.Int("rates", resp.Data.TotalRates))
	}
	return resp
}

func (s *Service) quote(ctx context.Context, portalName string, payload scenario.Payload) response.Response {
	portal, ok := s.portals[portalName]
	if !ok {
		return response.Assemble(response.Input{
			Source: portalName,
			Err:    response.Errorf(response.ClassConfiguration, "unknown portal %q", portalName),
		})
	}
	if !s.ready {
		return response.Assemble(response.Input{
			Source: portalName,
			Err:    response.Wrap(response.ClassConfiguration, ErrNotConfigured),
		})
	}
	err := portal.Ready()
	if err != nil {
		return response.Assemble(response.Input{
			Source: portalName,
			Err:    response.Wrap(response.ClassConfiguration, err),
		})
	}

	loan, warnings := scenario.Parse(payload)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("loan.state", loan.State),
		attribute.String("loan.county", loan.County),
	)
	if len(warnings) > 0 {
		s.tel.ReportDebug("scenario defaults applied", report_service_warnings, warnings)
	}

	session, err := portal.Session(loan)
	if err != nil {
		s.tel.ReportBroken(report_service_quote, fmt.Errorf("build session: %w", err))
		return response.Assemble(response.Input{
			Source:   portalName,
			Err:      response.Wrap(response.ClassConfiguration, err),
			Warnings: warnings,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	machine := automation.NewMachine()
	results, err := s.orch.Run(ctx, session)
	if err != nil {
		machine.Fail(string(response.Classify(err)))
		s.tel.ReportWarning(report_service_quote, err, slog.String("portal", portalName))
		return response.Assemble(response.Input{
			Source:       portalName,
			Err:          err,
			Results:      results,
			States:       machine.History(),
			Warnings:     warnings,
			IncludeDebug: s.debug,
		})
	}

	names := portal.Steps()
	sel := selectOutcome(results, names)
	s.track(machine, names, sel)

	in := response.Input{
		Source:       portalName,
		Outcome:      sel.chosen,
		UsedStep:     sel.usedStep,
		OtherDiag:    sel.otherDiag(),
		Results:      results,
		States:       machine.History(),
		Warnings:     warnings,
		IncludeDebug: s.debug,
	}
	switch {
	case sel.chosen == nil && sel.decodeErr != nil:
		in.Err = response.Wrap(response.ClassParsing, sel.decodeErr)
	case sel.chosen != nil && sel.chosen.NeedsNextStep:
		in.Err = response.Errorf(
			response.ClassNavigation,
			"%s handed off to a navigation and no retry produced an outcome", sel.usedStep,
		)
	case sel.chosen != nil && sel.chosen.Success:
		in.Options = normalize.Normalize(sel.chosen.Rows, portal.Normalization(loan))
		s.tel.ReportCount(report_service_rates, int64(len(in.Options)))
	}
	return response.Assemble(in)
}

// track replays what the batch did on the request state machine so the
// response can show how far the portal flow got.
func (s *Service) track(m *automation.Machine, names StepNames, sel selection) {
	var err error
	defer func() {
		if err != nil {
			s.tel.ReportWarning(report_service_states, err, m.History())
		}
	}()

	if sel.login != nil {
		err = m.Login(*sel.login)
		if err != nil || m.State() == automation.Failed {
			return
		}
	} else if names.Login != "" {
		err = m.Transition(automation.LoginSubmitted)
		if err != nil {
			return
		}
	}

	if sel.chosen == nil {
		m.Fail("no_outcome")
		return
	}
	if sel.usedRetry() {
		err = m.Advance(browser.Outcome{NeedsNextStep: true})
		if err != nil {
			return
		}
	}
	if sel.chosen == sel.login {
		return
	}
	err = m.Advance(*sel.chosen)
}
