package pricing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ratequote-backend/internal/browser"
	"ratequote-backend/internal/components/telemetry"
	"ratequote-backend/internal/response"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *scriptedExecutor) {
	exec := &scriptedExecutor{values: map[string]json.RawMessage{
		"pricingPage": json.RawMessage(`{"status":200}`),
		"results": outcomeValue(t, browser.Outcome{
			Success: true,
			Stage:   browser.StageScraped,
			Rows:    []browser.RawRow{{{Header: "Rate", Text: "6.75 %"}, {Header: "Price", Text: "100.5"}}},
		}),
	}}
	mux := http.NewServeMux()
	NewHandler(newTestService(exec, false), telemetry.Discard{}).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, exec
}

func decodeResponse(t *testing.T, res *http.Response) response.Response {
	defer res.Body.Close()
	var out response.Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func TestHandlerQuote(t *testing.T) {
	server, exec := newTestServer(t)

	res, err := http.Post(
		server.URL+"/api/pricing/lenderprice",
		"application/json",
		strings.NewReader(`{"loanAmount":"500,000","creditScore":760,"loanPurpose":"refinance"}`),
	)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))

	out := decodeResponse(t, res)
	require.True(t, out.Success)
	require.Equal(t, "lenderprice", out.Data.Source)
	require.Equal(t, 6.75, out.Data.RateOptions[0].Rate)
	require.Contains(t, exec.steps[1].Script, `"500000"`)
}

func TestHandlerLegacyRoute(t *testing.T) {
	server, _ := newTestServer(t)

	res, err := http.Post(server.URL+"/api/get-lp-pricing", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	out := decodeResponse(t, res)
	require.True(t, out.Success)
	require.Equal(t, "lenderprice", out.Data.Source)
}

func TestHandlerMethods(t *testing.T) {
	server, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/pricing/loannex", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "POST, OPTIONS", res.Header.Get("Access-Control-Allow-Methods"))

	res, err = http.Get(server.URL + "/api/pricing/loannex")
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	out := decodeResponse(t, res)
	require.False(t, out.Success)
}

func TestHandlerBadBody(t *testing.T) {
	server, _ := newTestServer(t)

	res, err := http.Post(server.URL+"/api/pricing/loannex", "application/json", strings.NewReader(`{"loanAmount":{}}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	out := decodeResponse(t, res)
	require.False(t, out.Success)
	require.Equal(t, response.ClassParsing, out.Error)
}

func TestHandlerHealth(t *testing.T) {
	server, _ := newTestServer(t)

	res, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	var out struct {
		Ok      bool     `json:"ok"`
		Portals []string `json:"portals"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	require.True(t, out.Ok)
	require.Equal(t, []string{"lenderprice", "loannex"}, out.Portals)
}
