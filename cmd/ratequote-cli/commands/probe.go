package commands

import (
	"fmt"
	"os"

	"ratequote-backend/internal/components/telemetry"
	"ratequote-backend/internal/preflight"
	"ratequote-backend/pkg/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe [url]",
	Short: "Checks that the Loannex login page still has the expected form.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		url := cfg.Loannex.LoginURL
		if len(args) > 0 {
			url = args[0]
		}

		prober, err := preflight.NewProber(telemetry.NewSlogAPI(nil))
		if err != nil {
			serviceutil.Fatal("failed to create prober", err)
		}
		report, err := prober.Probe(cmd.Context(), url, cfg.Loannex.Login)
		if err != nil {
			serviceutil.Fatal("failed to probe", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle(fmt.Sprintf("%s (%d) %s", report.URL, report.Status, report.Title))
		t.AppendHeader(table.Row{"Selector", "Found"})
		for selector, found := range report.Selectors {
			t.AppendRow(table.Row{selector, found})
		}
		t.SortBy([]table.SortBy{{Name: "Selector", Mode: table.Asc}})
		t.SetStyle(table.StyleRounded)
		t.Render()

		if !report.Ready {
			os.Exit(1)
		}
	},
}
