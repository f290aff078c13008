// Package jsrender serializes browser procedures into self-contained scripts.
// A script is the embedded runtime plus the procedure's ops as a json
// literal, wrapped in an async function expression that resolves to the
// json encoded outcome.
package jsrender

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ratequote-backend/internal/browser"
)

//go:embed runtime.js
var runtime string

func ms(d time.Duration) int64 {
	return d.Milliseconds()
}

type wireField struct {
	Key      string          `json:"key"`
	Value    string          `json:"value"`
	Kind     string          `json:"kind"`
	Locator  browser.Locator `json:"locator"`
	SettleMs int64           `json:"settleMs"`
}

type wireLogin struct {
	UserSelector     string   `json:"userSelector"`
	PasswordSelector string   `json:"passwordSelector"`
	ButtonSelectors  []string `json:"buttonSelectors"`
	Username         string   `json:"username"`
	Password         string   `json:"password"`
	WaitMs           int64    `json:"waitMs"`
}

func encodeOp(op browser.Op) (map[string]any, error) {
	out := map[string]any{"op": browser.OpName(op)}
	switch op := op.(type) {
	case browser.Sleep:
		out["ms"] = ms(op.Duration)
	case browser.FillLogin:
		out["userSelector"] = op.UserSelector
		out["passwordSelector"] = op.PasswordSelector
		out["username"] = op.Username
		out["password"] = op.Password
		out["attempts"] = max(op.Attempts, 1)
		out["intervalMs"] = ms(op.Interval)
	case browser.ScheduleClick:
		out["selector"] = op.Selector
		out["delayMs"] = ms(op.Delay)
		out["required"] = op.Required
	case browser.ScheduleNavigate:
		out["url"] = op.URL
		out["frameHints"] = nonNil(op.FrameHints)
		out["delayMs"] = ms(op.Delay)
	case browser.DiscoverForm:
		out["attempts"] = max(op.Attempts, 1)
		out["intervalMs"] = ms(op.Interval)
		out["minInputs"] = op.MinInputs
		out["readySelector"] = op.ReadySelector
		out["readyText"] = op.ReadyText
		out["appLinks"] = nonNil(op.AppLinks)
		out["appRoute"] = op.AppRoute
		out["routeAttempts"] = op.RouteAttempts
		out["retry"] = op.Retry
		if op.Login != nil {
			out["login"] = wireLogin{
				UserSelector:     op.Login.UserSelector,
				PasswordSelector: op.Login.PasswordSelector,
				ButtonSelectors:  nonNil(op.Login.ButtonSelectors),
				Username:         op.Login.Username,
				Password:         op.Login.Password,
				WaitMs:           ms(op.Login.Wait),
			}
		}
	case browser.Fill:
		fields := make([]wireField, 0, len(op.Fields))
		for _, f := range op.Fields {
			fields = append(fields, wireField{
				Key:      f.Field.Key,
				Value:    f.Field.Value,
				Kind:     f.Field.Kind.String(),
				Locator:  f.Locator,
				SettleMs: ms(f.Settle),
			})
		}
		out["fields"] = fields
		out["unlocatable"] = nonNil(op.Unlocatable)
	case browser.ClickButton:
		out["selectors"] = nonNil(op.Selectors)
		out["text"] = op.Text
		out["failureCode"] = op.FailureCode
	case browser.PollResults:
		out["attempts"] = max(op.Attempts, 1)
		out["intervalMs"] = ms(op.Interval)
		out["minRows"] = op.MinRows
		out["noResultTexts"] = nonNil(op.NoResultTexts)
		out["settleMs"] = ms(op.Settle)
	case browser.ScrapeTable:
		columns := map[string]string{}
		for idx, name := range op.Columns {
			columns[fmt.Sprint(idx)] = name
		}
		out["headerRow"] = op.HeaderRow
		out["columns"] = columns
		out["minCells"] = op.MinCells
		out["maxRows"] = op.MaxRows
		out["dataAttr"] = op.DataAttr
	case browser.CountMatches:
		out["name"] = op.Name
		out["pattern"] = op.Pattern
	default:
		return nil, fmt.Errorf("jsrender: unsupported op %T", op)
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// EncodeOps returns the json literal the runtime interprets.
func EncodeOps(p browser.Procedure) ([]byte, error) {
	ops := make([]map[string]any, 0, len(p.Ops))
	for _, op := range p.Ops {
		encoded, err := encodeOp(op)
		if err != nil {
			return nil, err
		}
		ops = append(ops, encoded)
	}
	// encoding/json escapes <, >, &, U+2028 and U+2029 so the literal is
	// safe to splice into a script.
	return json.Marshal(ops)
}

// Render turns a procedure into a script that can be evaluated in a page.
func Render(p browser.Procedure) (string, error) {
	if len(p.Ops) == 0 {
		return "", fmt.Errorf("jsrender: procedure %q has no ops", p.Name)
	}
	ops, err := EncodeOps(p)
	if err != nil {
		return "", fmt.Errorf("jsrender: %s: %w", p.Name, err)
	}

	var script strings.Builder
	script.WriteString("(async function() {\n")
	script.WriteString(runtime)
	script.WriteString("\nreturn await run(")
	script.Write(ops)
	script.WriteString(");\n})()")
	return script.String(), nil
}
