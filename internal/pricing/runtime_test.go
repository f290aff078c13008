package pricing

import (
	"context"
	"path/filepath"
	"testing"

	"ratequote-backend/internal/automation"
	"ratequote-backend/internal/automation/bql"
	"ratequote-backend/internal/automation/localchrome"
	"ratequote-backend/internal/components/telemetry"
	"ratequote-backend/internal/response"
	"ratequote-backend/internal/scenario"

	"github.com/stretchr/testify/require"
)

func TestExecutorFor(t *testing.T) {
	cfg := testConfig()
	executor, closer, err := executorFor(cfg, telemetry.Discard{})
	require.NoError(t, err)
	require.Nil(t, executor)
	require.Nil(t, closer)

	cfg.Browserless.Token = "token"
	cfg.Browserless.DumpDir = filepath.Join(t.TempDir(), "dump")
	executor, _, err = executorFor(cfg, telemetry.Discard{})
	require.NoError(t, err)
	require.IsType(t, &bql.Client{}, executor)

	cfg.Browserless.Token = ""
	cfg.Chrome.Enabled = true
	cfg.Chrome.RemoteURL = "ws://127.0.0.1:9222"
	executor, closer, err = executorFor(cfg, telemetry.Discard{})
	require.NoError(t, err)
	require.IsType(t, &localchrome.Executor{}, executor)
	require.NotNil(t, closer)
	closer()
}

func TestGateFor(t *testing.T) {
	gate, closer := gateFor(context.Background(), SessionsConfig{}, telemetry.Discard{})
	require.IsType(t, automation.Unbounded{}, gate)
	require.Nil(t, closer)

	gate, _ = gateFor(context.Background(), SessionsConfig{Limit: 2}, telemetry.Discard{})
	require.IsType(t, automation.LocalGate{}, gate)

	rec := &telemetry.Recorder{}
	gate, closer = gateFor(context.Background(), SessionsConfig{Limit: 2, RedisAddr: "127.0.0.1:1"}, rec)
	require.IsType(t, automation.LocalGate{}, gate)
	require.Nil(t, closer)
	require.True(t, rec.Has(telemetry.KindBroken, report_runtime_gate))
}

func TestRuntimeWithoutExecutor(t *testing.T) {
	rt, err := NewRuntime(context.Background(), testConfig(), telemetry.Discard{})
	require.NoError(t, err)
	defer rt.Close()

	require.Equal(t, []string{"lenderprice", "loannex"}, rt.Service.Portals())
	resp := rt.Service.Quote(context.Background(), "lenderprice", scenario.Payload{})
	require.False(t, resp.Success)
	require.Equal(t, response.ClassConfiguration, resp.Error)
}
