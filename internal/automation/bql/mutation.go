package bql

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"ratequote-backend/internal/browser"
)

var namePattern = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// OperationName turns a session name into a graphql operation name.
func OperationName(session string) string {
	var b strings.Builder
	upper := true
	for _, r := range session {
		switch {
		case r >= 'a' && r <= 'z':
			if upper {
				r -= 'a' - 'A'
			}
			b.WriteRune(r)
			upper = false
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			upper = false
		default:
			upper = true
		}
	}
	name := b.String()
	if name == "" || !namePattern.MatchString(name) {
		name = "Batch" + name
	}
	return name
}

func quote(s string) (string, error) {
	encoded, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// RenderMutation renders steps as one mutation, each step aliased by its
// name so results and errors can be matched back to it.
func RenderMutation(operation string, steps []browser.Step) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "mutation %s {\n", operation)
	for _, step := range steps {
		if !namePattern.MatchString(step.Name) {
			return "", fmt.Errorf("bql: step name %q is not a valid alias", step.Name)
		}
		switch step.Kind {
		case browser.Navigate:
			url, err := quote(step.URL)
			if err != nil {
				return "", fmt.Errorf("bql: quote url of %s: %w", step.Name, err)
			}
			args := fmt.Sprintf("url: %s, waitUntil: networkIdle", url)
			if step.Timeout > 0 {
				args += fmt.Sprintf(", timeout: %d", step.Timeout.Milliseconds())
			}
			fmt.Fprintf(&b, "  %s: goto(%s) { status time }\n", step.Name, args)
		case browser.Evaluate:
			content, err := quote(step.Script)
			if err != nil {
				return "", fmt.Errorf("bql: quote script of %s: %w", step.Name, err)
			}
			fmt.Fprintf(
				&b, "  %s: evaluate(content: %s, timeout: %d) { value }\n",
				step.Name, content, step.Timeout.Milliseconds(),
			)
		default:
			return "", fmt.Errorf("bql: step %s has unknown kind %d", step.Name, step.Kind)
		}
	}
	b.WriteString("}")
	return b.String(), nil
}
