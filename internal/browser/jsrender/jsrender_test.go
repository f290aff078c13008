package jsrender

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"ratequote-backend/internal/browser"
	"ratequote-backend/internal/fieldmap"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRenderWrapsRuntime(t *testing.T) {
	script, err := Render(browser.Procedure{
		Name: "wait",
		Ops:  []browser.Op{browser.Sleep{Duration: 5 * time.Second}},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(script, "(async function() {\n"))
	require.True(t, strings.HasSuffix(script, "})()"))
	require.Contains(t, script, `return await run([{"ms":5000,"op":"sleep"}]);`)
}

func TestRenderRejectsEmpty(t *testing.T) {
	_, err := Render(browser.Procedure{Name: "empty"})
	require.Error(t, err)
}

func TestCredentialsAreEscaped(t *testing.T) {
	script, err := Render(browser.Procedure{
		Name: "login",
		Ops: []browser.Op{browser.FillLogin{
			UserSelector:     "#UserName",
			PasswordSelector: "#Password",
			Username:         `o'brien"</script>`,
			Password:         "p w",
		}},
	})
	require.NoError(t, err)
	require.NotContains(t, script, "</script>")
	require.Contains(t, script, `o'brien\"\u003c/script\u003e`)
}

func TestEncodeOps(t *testing.T) {
	encoded, err := EncodeOps(browser.Procedure{
		Name: "scrape",
		Ops: []browser.Op{
			browser.Fill{
				Fields: []browser.FillField{{
					Field:   fieldmap.Field{Key: "FICO", Value: "740", Kind: fieldmap.Value},
					Locator: browser.Label("FICO"),
				}},
			},
			browser.ScrapeTable{
				Columns:  map[int]string{0: "Rate", 2: "Price"},
				MinCells: 5,
				MaxRows:  50,
				DataAttr: true,
			},
		},
	})
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.Len(t, decoded, 2)

	expectedFill := map[string]any{
		"op": "fill",
		"fields": []any{map[string]any{
			"key":      "FICO",
			"value":    "740",
			"kind":     "value",
			"locator":  map[string]any{"strategy": "label", "target": "FICO"},
			"settleMs": float64(0),
		}},
		"unlocatable": []any{},
	}
	if diff := cmp.Diff(expectedFill, decoded[0]); diff != "" {
		t.Fatalf("fill op mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, map[string]any{"0": "Rate", "2": "Price"}, decoded[1]["columns"])
	require.Equal(t, true, decoded[1]["dataAttr"])
}

func TestRuntimeKnowsEveryOp(t *testing.T) {
	ops := []browser.Op{
		browser.Sleep{}, browser.FillLogin{}, browser.ScheduleClick{},
		browser.ScheduleNavigate{}, browser.DiscoverForm{}, browser.Fill{},
		browser.ClickButton{}, browser.PollResults{}, browser.ScrapeTable{},
		browser.CountMatches{},
	}
	for _, op := range ops {
		require.Contains(t, runtime, browser.OpName(op)+": async function", browser.OpName(op))
	}
}

func TestRuntimeUsesOutcomeVocabulary(t *testing.T) {
	words := []string{
		browser.CodeNoLoginForm, browser.CodeNoFrame, browser.CodeFormNotLoaded,
		browser.CodeNoButton, browser.CodeScriptError, browser.MarkerRerouting,
		browser.StageDiscovered, browser.StageFilled, browser.StageSubmitted,
		browser.StagePolled, browser.StageScraped,
	}
	for _, word := range words {
		require.Contains(t, runtime, "'"+word+"'", word)
	}
}
