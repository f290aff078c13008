package commands

import (
	"fmt"
	"os"
	"strings"

	"ratequote-backend/internal/automation/bql"
	"ratequote-backend/internal/browser"
	"ratequote-backend/internal/scenario"
	"ratequote-backend/pkg/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scriptPayload *string
	scriptBql     *bool
	scriptStep    *string
)

func init() {
	scriptPayload = scriptCmd.Flags().String("payload", "", "A json scenario payload, - reads stdin.")
	scriptBql = scriptCmd.Flags().Bool("bql", false, "Print the rendered BrowserQL mutation.")
	scriptStep = scriptCmd.Flags().String("step", "", "Print the procedure of a single step.")
	rootCmd.AddCommand(scriptCmd)
}

var scriptCmd = &cobra.Command{
	Use:       "script <portal> [--bql | --step <name>]",
	Short:     "Prints the browser batch a scenario would run, without running it.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: portalNames,
	Run: func(cmd *cobra.Command, args []string) {
		portal := findPortal(loadConfig(), args[0])
		loan, warnings := scenario.Parse(readPayload(*scriptPayload))
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}

		session, err := portal.Session(loan)
		if err != nil {
			serviceutil.Fatal("failed to build session", err)
		}

		switch {
		case *scriptBql:
			mutation, err := bql.RenderMutation(bql.OperationName(session.Name), session.Steps)
			if err != nil {
				serviceutil.Fatal("failed to render mutation", err)
			}
			fmt.Println(mutation)
			return
		case *scriptStep != "":
			step, ok := session.Step(*scriptStep)
			if !ok {
				serviceutil.Fatal("unknown step", fmt.Errorf("%q is not in session %s", *scriptStep, session.Name))
			}
			if step.Script != "" {
				fmt.Println(step.Script)
			} else {
				fmt.Println(step.URL)
			}
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Step", "Kind", "Timeout", "Expects Navigation", "Target"})
		for _, step := range session.Steps {
			target := step.URL
			if step.Kind == browser.Evaluate {
				target = fmt.Sprintf("%d bytes, %d lines", len(step.Script), strings.Count(step.Script, "\n")+1)
			}
			t.AppendRow(table.Row{step.Name, step.Kind, step.Timeout, step.ExpectNavigation, target})
		}
		t.AppendFooter(table.Row{"", "", session.Budget(), "", session.Name})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
