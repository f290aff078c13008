package browser

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeOutcome(t *testing.T) {
	inner := `{"success":true,"stage":"scraped","rows":[[{"h":"Rate","v":"6.000%"}]],"diag":{"steps":["url: x","rerouting_to_app"],"fills":[]}}`
	encoded, err := json.Marshal(inner)
	require.NoError(t, err)

	for _, raw := range []json.RawMessage{encoded, json.RawMessage(inner)} {
		out, err := DecodeOutcome(raw)
		require.NoError(t, err)
		require.True(t, out.Success)
		require.Equal(t, StageScraped, out.Stage)
		require.Len(t, out.Rows, 1)
		text, ok := out.Rows[0].Get("Rate")
		require.True(t, ok)
		require.Equal(t, "6.000%", text)
		require.True(t, out.Diag.HasStep(MarkerRerouting))
	}
}

func TestDecodeOutcomeInvalid(t *testing.T) {
	_, err := DecodeOutcome(nil)
	require.Error(t, err)
	_, err = DecodeOutcome(json.RawMessage(`null`))
	require.Error(t, err)
	_, err = DecodeOutcome(json.RawMessage(`"not json"`))
	require.Error(t, err)
}

func TestStageReached(t *testing.T) {
	require.True(t, StageReached(StageScraped, StageFilled))
	require.True(t, StageReached(StageFilled, StageFilled))
	require.False(t, StageReached(StageDiscovered, StageSubmitted))
	require.False(t, StageReached(StageStarted, StageDiscovered))
}

func TestStepValidate(t *testing.T) {
	require.NoError(t, NavigateStep("loginPage", "https://example.com").Validate())
	require.NoError(t, EvaluateStep("login", "1", time.Second).Validate())
	require.Error(t, EvaluateStep("login", "1", 0).Validate())
	require.Error(t, NavigateStep("", "https://example.com").Validate())
	require.Error(t, Step{Name: "x", Kind: Evaluate, Timeout: time.Second}.Validate())

	step := EvaluateStep("price", "1", time.Second).AfterNavigation()
	require.True(t, step.ExpectNavigation)
}
