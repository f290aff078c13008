package pricing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ratequote-backend/internal/automation"
	"ratequote-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// only what differs from the defaults
		deadline_seconds: 40,
		loannex: { username: "file-user", max_price: 101 },
		lenderprice: { field_ids: { fico: "override" } },
	}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		loannex: { password: "local-secret" },
	}`), 0600))

	t.Setenv("BROWSERLESS_TOKEN", "env-token")
	t.Setenv("LOANNEX_USER", "env-user")
	t.Setenv("LOANNEX_PASSWORD", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 40, cfg.DeadlineSeconds)
	require.Equal(t, "env-token", cfg.Browserless.Token)
	require.Equal(t, "env-user", cfg.Loannex.Username)
	require.Equal(t, "local-secret", cfg.Loannex.Password)
	require.Equal(t, 101.0, cfg.Loannex.MaxPrice)
	require.Equal(t, "https://web.loannex.com/", cfg.Loannex.LoginURL)
	require.Equal(t, "#UserName", cfg.Loannex.Login.UserSelector)
	require.Equal(t, "override", cfg.LenderPrice.FieldIDs["fico"])
	require.Equal(t, "625cf3e881b3b41288722d60", cfg.LenderPrice.FieldIDs["loanAmount"])
	require.Empty(t, cfg.Problems())
}

func TestLoadConfigKeepsZeroValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		sessions: { limit: 0 },
		lenderprice: { table: { data_attr: false, max_rows: 0 } },
	}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		loannex: { table: { header_row: false } },
	}`), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Sessions.Limit)
	require.Equal(t, "ratequote:sessions", cfg.Sessions.RedisKey)
	require.False(t, cfg.LenderPrice.Table.DataAttr)
	require.Equal(t, 0, cfg.LenderPrice.Table.MaxRows)
	require.Equal(t, 5, cfg.LenderPrice.Table.MinCells)
	require.False(t, cfg.Loannex.Table.HeaderRow)
	require.Equal(t, "Get Price", cfg.Loannex.Form.ReadyText)

	gate, closer := gateFor(context.Background(), cfg.Sessions, telemetry.Discard{})
	require.IsType(t, automation.Unbounded{}, gate)
	require.Nil(t, closer)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("BROWSERLESS_TOKEN", "")
	t.Setenv("LOANNEX_USER", "")
	t.Setenv("LOANNEX_PASSWORD", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json5"))
	require.NoError(t, err)
	require.Equal(t, 58, cfg.DeadlineSeconds)
	require.Len(t, cfg.Problems(), 2)
}
