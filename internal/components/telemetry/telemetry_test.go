package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &Recorder{}
	tel := NewScopedAPI("pricing", rec)

	tel.ReportBroken("service.quote", errors.New("boom"))
	tel.ReportCount("service.rates", 3)

	reports := rec.Reports()
	require.Len(t, reports, 2)
	require.Equal(t, "pricing: service.quote", reports[0].ID)
	require.Equal(t, KindCount, reports[1].Kind)
	require.Equal(t, int64(3), reports[1].Count)
	require.True(t, rec.Has(KindBroken, "service.quote"))
	require.False(t, rec.Has(KindWarning, "service.quote"))
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	output, err := NewDumpDir(dir, 0)
	require.NoError(t, err)

	rec := &Recorder{}
	client := resty.New()
	InstrumentResty(client, rec, RestyOptions{Output: output})

	_, err = client.R().SetBody(`{"hello":1}`).Post(server.URL + "/bql?token=secret")
	require.NoError(t, err)

	require.True(t, rec.Has(KindDebug, report_resty_request))
	require.True(t, rec.Has(KindDebug, report_resty_response))

	dumped, err := os.ReadFile(filepath.Join(dir, output.FileName("1")))
	require.NoError(t, err)
	require.Contains(t, string(dumped), `{"ok":true}`)
	require.NotContains(t, string(dumped), "secret")
}

func TestDumpDirKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "20000101T000000-000001.http")
	require.NoError(t, os.WriteFile(stale, []byte("old run"), 0o600))
	unrelated := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep me"), 0o600))

	output, err := NewDumpDir(dir, 3)
	require.NoError(t, err)
	require.Equal(t, output.run+"-000012.http", output.FileName("12"))
	require.Equal(t, output.run+"-abc.http", output.FileName("abc"))

	for _, id := range []string{"1", "2", "9", "10"} {
		output.Write(id, "exchange "+id)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.http"))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		filepath.Join(dir, output.FileName("2")),
		filepath.Join(dir, output.FileName("9")),
		filepath.Join(dir, output.FileName("10")),
	}, files)
	require.FileExists(t, unrelated)
	require.NoFileExists(t, stale)
}

func TestRedactURL(t *testing.T) {
	require.Equal(t, "https://x/bql?<redacted>", redactURL("https://x/bql?token=abc"))
	require.Equal(t, "https://x/bql", redactURL("https://x/bql"))
}

func TestIsBrowser(t *testing.T) {
	require.True(t, isBrowser("chromium-browser"))
	require.True(t, isBrowser("Google Chrome Helper"))
	require.True(t, isBrowser("headless_shell"))
	require.False(t, isBrowser("redis-server"))
	require.False(t, isBrowser("ratequote-server"))
}

func TestTakeSample(t *testing.T) {
	sample, _ := TakeSample(context.Background(), 10*time.Millisecond)
	require.Positive(t, sample.Goroutines)
	require.GreaterOrEqual(t, sample.CPUPercent, 0.0)
	require.Zero(t, sample.Browsers)
}
