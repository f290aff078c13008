// Package localchrome executes browser batches on a chrome instance driven
// over the devtools protocol, either started locally or reached remotely.
package localchrome

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ratequote-backend/internal/automation"
	"ratequote-backend/internal/browser"
	"ratequote-backend/internal/components/telemetry"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("ratequote.internal.automation.localchrome")

const (
	report_executor_start = "executor.start"
	report_executor_step  = "executor.step"
)

type Options struct {
	// RemoteURL is a devtools websocket or http url. A local chrome is
	// started when it is empty.
	RemoteURL       string
	ExecPath        string
	Headful         bool
	NavigateTimeout time.Duration
	UserAgent       string
}

// Executor is an automation.Executor. Every batch gets a fresh browser
// context so batches share no cookies.
type Executor struct {
	allocCtx        context.Context
	cancel          context.CancelFunc
	navigateTimeout time.Duration
	tel             telemetry.API
}

func New(opts Options, tel telemetry.API) *Executor {
	tel = telemetry.NewScopedAPI("localchrome", tel)

	var allocCtx context.Context
	var cancel context.CancelFunc
	if opts.RemoteURL != "" {
		allocCtx, cancel = chromedp.NewRemoteAllocator(context.Background(), opts.RemoteURL)
	} else {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", !opts.Headful),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.WindowSize(1280, 900),
		)
		if opts.ExecPath != "" {
			execOpts = append(execOpts, chromedp.ExecPath(opts.ExecPath))
		}
		if opts.UserAgent != "" {
			execOpts = append(execOpts, chromedp.UserAgent(opts.UserAgent))
		}
		allocCtx, cancel = chromedp.NewExecAllocator(context.Background(), execOpts...)
	}

	if opts.NavigateTimeout <= 0 {
		opts.NavigateTimeout = 30 * time.Second
	}
	return &Executor{
		allocCtx:        allocCtx,
		cancel:          cancel,
		navigateTimeout: opts.NavigateTimeout,
		tel:             tel,
	}
}

// Close shuts down the allocator, and the browser if it was started locally.
func (e *Executor) Close() {
	e.cancel()
}

func (e *Executor) Execute(ctx context.Context, steps []browser.Step) (automation.Results, error) {
	ctx, span := tracer.Start(ctx, "Execute")
	defer span.End()
	span.SetAttributes(attribute.Int("steps", len(steps)))

	browserCtx, cancel := chromedp.NewContext(e.allocCtx, chromedp.WithLogf(func(string, ...any) {}))
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(browserCtx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to start browser")
		e.tel.ReportBroken(report_executor_start, err)
		return automation.Results{}, &automation.TransportError{Err: err}
	}

	results := automation.NewResults()
	for _, step := range steps {
		result := e.runStep(browserCtx, step)
		if result.Err != "" {
			e.tel.ReportDebug("step failed", report_executor_step, slog.String("step", step.Name), slog.String("err", result.Err))
		}
		results.Set(result)
	}
	return results, nil
}

func (e *Executor) runStep(browserCtx context.Context, step browser.Step) automation.StepResult {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = e.navigateTimeout
	}
	stepCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	result := automation.StepResult{Name: step.Name}
	start := time.Now()

	switch step.Kind {
	case browser.Navigate:
		var location string
		err := chromedp.Run(
			stepCtx,
			chromedp.Navigate(step.URL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Location(&location),
		)
		if err != nil {
			result.Err = fmt.Sprintf("navigate %s: %v", step.URL, err)
			return result
		}
		value, err := json.Marshal(map[string]any{
			"url":  location,
			"time": time.Since(start).Milliseconds(),
		})
		if err != nil {
			result.Err = err.Error()
			return result
		}
		result.Value = value
	case browser.Evaluate:
		var raw []byte
		err := chromedp.Run(stepCtx, chromedp.Evaluate(
			step.Script,
			&raw,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			},
		))
		if err != nil {
			result.Err = err.Error()
			return result
		}
		result.Value = raw
	default:
		result.Err = fmt.Sprintf("unknown step kind %d", step.Kind)
	}
	return result
}
