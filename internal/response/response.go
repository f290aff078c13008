// Package response assembles the caller visible result of a pricing
// request.
package response

import (
	"fmt"

	"ratequote-backend/internal/automation"
	"ratequote-backend/internal/browser"
	"ratequote-backend/internal/normalize"
	"ratequote-backend/pkg/textutil"
)

const maxMessage = 200

type Response struct {
	Success bool   `json:"success"`
	Data    *Data  `json:"data,omitempty"`
	Error   Class  `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Debug   *Debug `json:"debug,omitempty"`
}

type Data struct {
	Source      string                 `json:"source"`
	RateOptions []normalize.RateOption `json:"rateOptions"`
	TotalRates  int                    `json:"totalRates"`
	RawRows     int                    `json:"rawRows"`
	UsedStep    string                 `json:"usedStep,omitempty"`
	// NoResults distinguishes "checked, nothing eligible" from a failure.
	NoResults bool           `json:"noResults"`
	TimedOut  bool           `json:"timedOut,omitempty"`
	Counts    map[string]int `json:"counts,omitempty"`
}

type Debug struct {
	Diag        *browser.Diagnostics   `json:"diag,omitempty"`
	RetryDiag   *browser.Diagnostics   `json:"retryDiag,omitempty"`
	StepErrors  []automation.StepError `json:"stepErrors,omitempty"`
	BatchErrors []string               `json:"batchErrors,omitempty"`
	States      []string               `json:"states,omitempty"`
	Warnings    []string               `json:"warnings,omitempty"`
}

// Input is everything a pricing request produced.
type Input struct {
	Source string
	// Err is set when the pipeline failed before an outcome was selected.
	Err error
	// Outcome is the selected procedure outcome.
	Outcome  *browser.Outcome
	UsedStep string
	Options  []normalize.RateOption
	// OtherDiag is the trail of the attempt that was not selected.
	OtherDiag *browser.Diagnostics
	Results   automation.Results
	States    []string
	Warnings  []string
	// IncludeDebug attaches the debug block to successful responses too.
	IncludeDebug bool
}

// Assemble never panics, a failure anywhere becomes a response with
// success false.
func Assemble(in Input) (out Response) {
	defer func() {
		if r := recover(); r != nil {
			out = Response{
				Success: false,
				Error:   ClassExtraction,
				Message: textutil.Truncate(fmt.Sprint(r), maxMessage),
			}
		}
	}()

	switch {
	case in.Err != nil:
		out = Response{
			Error:   Classify(in.Err),
			Message: textutil.Truncate(in.Err.Error(), maxMessage),
			Debug:   debugOf(in),
		}
	case in.Outcome == nil:
		out = Response{
			Error:   ClassExtraction,
			Message: "no pricing step returned an outcome",
			Debug:   debugOf(in),
		}
	case !in.Outcome.Success:
		out = Response{
			Error:   ClassifyCode(in.Outcome.Error),
			Message: in.Outcome.Error,
			Debug:   debugOf(in),
		}
	default:
		options := in.Options
		if options == nil {
			options = []normalize.RateOption{}
		}
		out = Response{
			Success: true,
			Data: &Data{
				Source:      in.Source,
				RateOptions: options,
				TotalRates:  len(options),
				RawRows:     len(in.Outcome.Rows),
				UsedStep:    in.UsedStep,
				NoResults:   in.Outcome.NoResults || len(options) == 0,
				TimedOut:    in.Outcome.TimedOut,
				Counts:      in.Outcome.Counts,
			},
		}
		if in.IncludeDebug {
			out.Debug = debugOf(in)
		}
	}
	return out
}

func debugOf(in Input) *Debug {
	return &Debug{
		Diag:        diagOf(in.Outcome),
		RetryDiag:   in.OtherDiag,
		StepErrors:  trimStepErrors(in.Results.StepErrors()),
		BatchErrors: in.Results.BatchErrors,
		States:      in.States,
		Warnings:    in.Warnings,
	}
}

func diagOf(outcome *browser.Outcome) *browser.Diagnostics {
	if outcome == nil {
		return nil
	}
	diag := outcome.Diag
	return &diag
}

func trimStepErrors(errs []automation.StepError) []automation.StepError {
	const maxErrors = 5
	if len(errs) > maxErrors {
		errs = errs[:maxErrors]
	}
	out := make([]automation.StepError, len(errs))
	for i, e := range errs {
		out[i] = automation.StepError{Step: e.Step, Message: textutil.Truncate(e.Message, 100)}
	}
	return out
}
