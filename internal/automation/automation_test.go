package automation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ratequote-backend/internal/browser"
	"ratequote-backend/internal/components/telemetry"

	"github.com/go-redis/redismock/v9"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	results Results
	err     error
	got     []browser.Step
}

func (f *fakeExecutor) Execute(_ context.Context, steps []browser.Step) (Results, error) {
	f.got = steps
	return f.results, f.err
}

func testSession(t *testing.T) Session {
	session, err := NewSession(
		"test",
		browser.NavigateStep("loginPage", "https://portal.example/login"),
		browser.EvaluateStep("login", "1", time.Second),
		browser.EvaluateStep("price", "2", time.Second).AfterNavigation(),
	)
	require.NoError(t, err)
	return session
}

func TestNewSession(t *testing.T) {
	_, err := NewSession("empty")
	require.Error(t, err)

	_, err = NewSession(
		"dup",
		browser.NavigateStep("a", "https://x"),
		browser.NavigateStep("a", "https://y"),
	)
	require.ErrorContains(t, err, "duplicate")

	_, err = NewSession("invalid", browser.EvaluateStep("a", "1", 0))
	require.ErrorContains(t, err, "timeout")

	session := testSession(t)
	require.Equal(t, 2*time.Second, session.Budget())
	step, ok := session.Step("price")
	require.True(t, ok)
	require.True(t, step.ExpectNavigation)
}

func TestRunFiltersExpectedNavigationErrors(t *testing.T) {
	results := NewResults()
	results.Set(StepResult{Name: "loginPage", Value: json.RawMessage(`{"status":200}`)})
	results.Set(StepResult{Name: "login", Err: "Execution context was destroyed, most likely because of a navigation."})
	results.Set(StepResult{Name: "price", Err: "Execution context was destroyed, most likely because of a navigation."})

	rec := &telemetry.Recorder{}
	exec := &fakeExecutor{results: results}
	orch := NewOrchestrator(exec, nil, rec)

	got, err := orch.Run(context.Background(), testSession(t))
	require.NoError(t, err)
	require.Len(t, exec.got, 3)

	price, ok := got.Get("price")
	require.True(t, ok)
	require.True(t, price.Expected)

	// login does not expect a navigation, its error stays visible
	diff := cmp.Diff([]StepError{{
		Step:    "login",
		Message: "Execution context was destroyed, most likely because of a navigation.",
	}}, got.StepErrors())
	require.Empty(t, diff)
	require.True(t, rec.Has(telemetry.KindWarning, report_orchestrator_step_error))
}

func TestRunNoData(t *testing.T) {
	results := NewResults()
	results.Set(StepResult{Name: "loginPage", Err: "net::ERR_NAME_NOT_RESOLVED"})
	results.Set(StepResult{Name: "price", Value: json.RawMessage("null")})

	orch := NewOrchestrator(&fakeExecutor{results: results}, nil, telemetry.Discard{})
	_, err := orch.Run(context.Background(), testSession(t))
	require.ErrorIs(t, err, ErrNoData)

	var noData *NoDataError
	require.True(t, errors.As(err, &noData))
	require.Len(t, noData.StepErrors, 1)
	require.Equal(t, "loginPage", noData.StepErrors[0].Step)
}

func TestRunTransportError(t *testing.T) {
	exec := &fakeExecutor{err: &TransportError{Status: 502, Body: "bad gateway"}}
	rec := &telemetry.Recorder{}
	orch := NewOrchestrator(exec, nil, rec)

	_, err := orch.Run(context.Background(), testSession(t))
	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	require.Equal(t, 502, transport.Status)
	require.True(t, rec.Has(telemetry.KindBroken, report_orchestrator_run))
}

func TestRunBusy(t *testing.T) {
	gate := NewLocalGate(1, 0)
	release, err := gate.Acquire(context.Background())
	require.NoError(t, err)

	exec := &fakeExecutor{results: NewResults()}
	orch := NewOrchestrator(exec, gate, telemetry.Discard{})
	_, err = orch.Run(context.Background(), testSession(t))
	require.ErrorIs(t, err, ErrBusy)
	require.Nil(t, exec.got)

	release()
	_, err = orch.Run(context.Background(), testSession(t))
	require.ErrorIs(t, err, ErrNoData)
}

func TestResultsSetMergesErrors(t *testing.T) {
	results := NewResults()
	results.Set(StepResult{Name: "a", Err: "first"})
	results.Set(StepResult{Name: "a", Value: json.RawMessage(`"x"`), Err: "second"})
	results.Set(StepResult{Name: "b"})

	a, ok := results.Get("a")
	require.True(t, ok)
	require.Equal(t, "first; second", a.Err)

	value, ok := results.Value("a")
	require.True(t, ok)
	require.Equal(t, `"x"`, string(value))

	_, ok = results.Value("b")
	require.False(t, ok)
	require.Equal(t, []string{"a", "b"}, []string{results.Steps()[0].Name, results.Steps()[1].Name})
}

func TestIsNavigationError(t *testing.T) {
	require.True(t, IsNavigationError("Execution context was destroyed, most likely because of a navigation."))
	require.True(t, IsNavigationError("Protocol error: Cannot find context with specified id"))
	require.True(t, IsNavigationError("Target closed"))
	require.False(t, IsNavigationError("Timed out after waiting 8000ms"))
	require.False(t, IsNavigationError("ReferenceError: foo is not defined"))
}

func TestMachineHappyPath(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Login(browser.Outcome{Success: true}))
	require.NoError(t, m.Advance(browser.Outcome{
		Success: true,
		Stage:   browser.StageScraped,
		Rows:    []browser.RawRow{{{Header: "Rate", Text: "6.000%"}}},
	}))
	require.Equal(t, Scraped, m.State())
	require.True(t, m.State().Success())
	require.Equal(t, []string{
		"Idle", "LoginSubmitted", "NavigatingToApp", "FormDiscoveryOrLogin2",
		"FormFilled", "PriceRequested", "ResultsPolled", "Scraped",
	}, m.History())
}

func TestMachineRetryEdge(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Login(browser.Outcome{Success: true}))
	require.NoError(t, m.Advance(browser.Outcome{Success: true, NeedsNextStep: true}))
	require.Equal(t, LoginSubmitted, m.State())
	require.True(t, m.Retried())

	require.NoError(t, m.Advance(browser.Outcome{
		Success:   true,
		Stage:     browser.StagePolled,
		NoResults: true,
	}))
	require.Equal(t, NoResults, m.State())
	require.True(t, m.State().Success())

	again := NewMachine()
	require.NoError(t, again.Advance(browser.Outcome{NeedsNextStep: true}))
	require.Error(t, again.Advance(browser.Outcome{NeedsNextStep: true}))
}

func TestMachineFailures(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Advance(browser.Outcome{Error: browser.CodeFormNotLoaded}))
	require.Equal(t, FormNotFound, m.State())
	require.Equal(t, browser.CodeFormNotLoaded, m.Reason())
	require.False(t, m.State().Success())

	m = NewMachine()
	require.NoError(t, m.Advance(browser.Outcome{Stage: browser.StageFilled, Error: browser.CodeNoButton}))
	require.Equal(t, FormNotFound, m.State())

	m = NewMachine()
	require.NoError(t, m.Login(browser.Outcome{Error: browser.CodeNoLoginForm}))
	require.Equal(t, Failed, m.State())
	require.Error(t, m.Transition(NavigatingToApp))

	m = NewMachine()
	require.Error(t, m.Transition(Scraped))
	m.Fail("transport")
	require.Equal(t, Failed, m.State())
	require.Equal(t, "transport", m.Reason())
}

func TestLocalGate(t *testing.T) {
	gate := NewLocalGate(1, 20*time.Millisecond)
	release, err := gate.Acquire(context.Background())
	require.NoError(t, err)

	_, err = gate.Acquire(context.Background())
	require.ErrorIs(t, err, ErrBusy)

	go func() {
		time.Sleep(5 * time.Millisecond)
		release()
	}()
	gate = LocalGate{slots: gate.slots, wait: time.Second}
	release, err = gate.Acquire(context.Background())
	require.NoError(t, err)
	release()
}

func TestRedisGate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	tel := &telemetry.Recorder{}
	gate := NewRedisGate(db, "ratequote:sessions", 2, time.Minute, tel)
	keys := []string{"ratequote:sessions"}

	mock.ExpectIncr("ratequote:sessions").SetVal(1)
	mock.ExpectExpire("ratequote:sessions", time.Minute).SetVal(true)
	mock.ExpectEvalSha(releaseScript.Hash(), keys).SetVal(int64(0))

	release, err := gate.Acquire(context.Background())
	require.NoError(t, err)
	release()
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectIncr("ratequote:sessions").SetVal(3)
	mock.ExpectExpire("ratequote:sessions", time.Minute).SetVal(true)
	mock.ExpectEvalSha(releaseScript.Hash(), keys).SetVal(int64(2))

	_, err = gate.Acquire(context.Background())
	require.ErrorIs(t, err, ErrBusy)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Empty(t, tel.Reports())

	mock.ExpectIncr("ratequote:sessions").SetErr(errors.New("connection refused"))
	_, err = gate.Acquire(context.Background())
	require.ErrorContains(t, err, "connection refused")
}

func TestRedisGateReportsFailedRelease(t *testing.T) {
	db, mock := redismock.NewClientMock()
	tel := &telemetry.Recorder{}
	gate := NewRedisGate(db, "ratequote:sessions", 2, time.Minute, tel)
	keys := []string{"ratequote:sessions"}

	mock.ExpectIncr("ratequote:sessions").SetVal(1)
	mock.ExpectExpire("ratequote:sessions", time.Minute).SetVal(true)
	mock.ExpectEvalSha(releaseScript.Hash(), keys).SetErr(errors.New("i/o timeout"))

	release, err := gate.Acquire(context.Background())
	require.NoError(t, err)
	release()
	require.NoError(t, mock.ExpectationsWereMet())
	require.True(t, tel.Has(telemetry.KindWarning, report_gate_release))
}
