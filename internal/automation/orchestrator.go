// Package automation runs batches of browser steps against an executor and
// interprets what comes back.
package automation

import (
	"context"
	"errors"
	"log/slog"

	"ratequote-backend/internal/browser"
	"ratequote-backend/internal/components/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("ratequote.internal.automation")

const (
	report_orchestrator_run           = "orchestrator-run"
	report_orchestrator_step_error    = "orchestrator-step-error"
	report_orchestrator_filtered_step = "orchestrator-filtered-step"
)

// Executor runs every step of a batch in one browser context. Step failures
// are reported in Results, a returned error means the batch itself failed.
type Executor interface {
	Execute(ctx context.Context, steps []browser.Step) (Results, error)
}

type Orchestrator struct {
	executor Executor
	gate     Gate
	tel      telemetry.API
}

func NewOrchestrator(executor Executor, gate Gate, tel telemetry.API) Orchestrator {
	if gate == nil {
		gate = Unbounded{}
	}
	return Orchestrator{
		executor: executor,
		gate:     gate,
		tel:      telemetry.NewScopedAPI("automation", tel),
	}
}

// Run executes the session as a single batch. Navigation errors on steps
// that expect a navigation are marked and never surface. A batch where no
// step produced data fails with a *NoDataError.
func (o Orchestrator) Run(ctx context.Context, session Session) (Results, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("session", session.Name),
		attribute.Int("steps", len(session.Steps)),
	)

	release, err := o.gate.Acquire(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to acquire session")
		o.tel.ReportWarning(report_orchestrator_run, err, slog.String("session", session.Name))
		return Results{}, err
	}
	defer release()

	results, err := o.executor.Execute(ctx, session.Steps)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to execute batch")
		o.tel.ReportBroken(report_orchestrator_run, err, slog.String("session", session.Name))
		return Results{}, err
	}

	results = o.filter(session, results)
	if !results.HasData() {
		err := &NoDataError{StepErrors: results.StepErrors()}
		span.RecordError(err)
		span.SetStatus(codes.Error, "no step produced data")
		return results, err
	}
	return results, nil
}

func (o Orchestrator) filter(session Session, results Results) Results {
	out := NewResults()
	out.BatchErrors = results.BatchErrors
	for _, step := range session.Steps {
		result, ok := results.Get(step.Name)
		if !ok {
			continue
		}
		if result.Err != "" {
			if step.ExpectNavigation && IsNavigationError(result.Err) {
				result.Expected = true
				o.tel.ReportDebug(
					"expected navigation error",
					report_orchestrator_filtered_step,
					slog.String("step", step.Name),
				)
			} else {
				o.tel.ReportWarning(
					report_orchestrator_step_error,
					errors.New(result.Err),
					slog.String("step", step.Name),
				)
			}
		}
		out.Set(result)
	}
	return out
}
