package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"ratequote-backend/internal/automation"
	"ratequote-backend/internal/browser"
	"ratequote-backend/internal/normalize"

	"github.com/stretchr/testify/require"
)

func TestAssembleSuccess(t *testing.T) {
	outcome := &browser.Outcome{
		Success: true,
		Stage:   browser.StageScraped,
		Rows:    []browser.RawRow{{{Header: "Rate", Text: "6.000%"}}, {{Header: "Rate", Text: "junk"}}},
		Diag:    browser.Diagnostics{Steps: []string{"form_filled"}},
	}
	resp := Assemble(Input{
		Source:   "loannex",
		Outcome:  outcome,
		UsedStep: "price",
		Options:  []normalize.RateOption{{Rate: 6, Price: 100.5, LockPeriodDays: 30}},
	})

	require.True(t, resp.Success)
	require.Empty(t, resp.Error)
	require.Nil(t, resp.Debug)
	require.Equal(t, 1, resp.Data.TotalRates)
	require.Equal(t, 2, resp.Data.RawRows)
	require.Equal(t, "price", resp.Data.UsedStep)
	require.False(t, resp.Data.NoResults)

	resp = Assemble(Input{Source: "loannex", Outcome: outcome, IncludeDebug: true})
	require.NotNil(t, resp.Debug)
	require.Equal(t, []string{"form_filled"}, resp.Debug.Diag.Steps)
}

func TestAssembleNoEligible(t *testing.T) {
	resp := Assemble(Input{
		Source: "loannex",
		Outcome: &browser.Outcome{
			Success:   true,
			Stage:     browser.StagePolled,
			NoResults: true,
			Diag:      browser.Diagnostics{Steps: []string{"no_results_text_at: 4s"}},
		},
		Options: normalize.Normalize(nil, normalize.Options{}),
	})

	require.True(t, resp.Success)
	require.True(t, resp.Data.NoResults)
	require.NotNil(t, resp.Data.RateOptions)
	require.Empty(t, resp.Data.RateOptions)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	require.Contains(t, string(body), `"rateOptions":[]`)
}

func TestAssembleNoData(t *testing.T) {
	results := automation.NewResults()
	results.Set(automation.StepResult{Name: "loginPage", Err: "net::ERR_CONNECTION_RESET"})
	err := fmt.Errorf("loannex: %w", &automation.NoDataError{StepErrors: results.StepErrors()})

	resp := Assemble(Input{Source: "loannex", Err: err, Results: results})
	require.False(t, resp.Success)
	require.Equal(t, ClassExtraction, resp.Error)
	require.Nil(t, resp.Data)
	require.Len(t, resp.Debug.StepErrors, 1)
}

func TestAssembleFailureCodes(t *testing.T) {
	cases := map[string]Class{
		browser.CodeNoLoginForm:   ClassAuthentication,
		browser.CodeNoFrame:       ClassNavigation,
		browser.CodeFormNotLoaded: ClassDiscovery,
		browser.CodeNoButton:      ClassDiscovery,
		browser.CodeScriptError:   ClassExtraction,
	}
	for code, class := range cases {
		resp := Assemble(Input{Outcome: &browser.Outcome{Error: code}})
		require.False(t, resp.Success, code)
		require.Equal(t, class, resp.Error, code)
		require.Equal(t, code, resp.Message)
	}

	resp := Assemble(Input{})
	require.False(t, resp.Success)
	require.Equal(t, ClassExtraction, resp.Error)
}

func TestClassify(t *testing.T) {
	require.Equal(t, ClassTransport, Classify(&automation.TransportError{Status: 500}))
	require.Equal(t, ClassTransport, Classify(fmt.Errorf("run: %w", automation.ErrBusy)))
	require.Equal(t, ClassTransport, Classify(context.DeadlineExceeded))
	require.Equal(t, ClassConfiguration, Classify(Errorf(ClassConfiguration, "missing token")))
	require.Equal(t, ClassParsing, Classify(fmt.Errorf("x: %w", Wrap(ClassParsing, errors.New("bad json")))))
	require.Equal(t, ClassNavigation, Classify(&automation.NoDataError{StepErrors: []automation.StepError{
		{Step: "price", Message: "Execution context was destroyed"},
	}}))
	require.Equal(t, ClassExtraction, Classify(automation.ErrNoData))
}

func TestAssembleTrimsStepErrors(t *testing.T) {
	results := automation.NewResults()
	for i := 0; i < 8; i++ {
		results.Set(automation.StepResult{Name: fmt.Sprintf("s%d", i), Err: string(make([]byte, 300))})
	}
	resp := Assemble(Input{Err: automation.ErrNoData, Results: results})
	require.Len(t, resp.Debug.StepErrors, 5)
	require.Len(t, resp.Debug.StepErrors[0].Message, 100)
}
