package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"ratequote-backend/internal/normalize"
	"ratequote-backend/internal/pricing"
	"ratequote-backend/internal/scenario"
	"ratequote-backend/pkg/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var configPath *string

var rootCmd = &cobra.Command{
	Use:   "ratequote-cli",
	Short: "ratequote-cli drives and debugs the portal pricing pipeline.",
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The json5 config to read.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() pricing.Config {
	cfg, err := pricing.LoadConfig(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

// readPayload reads a scenario payload from path, "-" is stdin and an empty
// path is the default scenario.
func readPayload(path string) scenario.Payload {
	if path == "" {
		return scenario.Payload{}
	}
	var body []byte
	var err error
	if path == "-" {
		body, err = io.ReadAll(os.Stdin)
	} else {
		body, err = os.ReadFile(path)
	}
	if err != nil {
		serviceutil.Fatal("failed to read payload", err)
	}
	payload, err := scenario.DecodePayload(body)
	if err != nil {
		serviceutil.Fatal("failed to decode payload", err)
	}
	return payload
}

func renderRates(options []normalize.RateOption) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Rate", "Price", "Cost", "Lock", "Payment", "Product", "Investor"})

	for _, o := range options {
		t.AppendRow(table.Row{
			fmt.Sprintf("%.3f%%", o.Rate),
			fmt.Sprintf("%.3f", o.Price),
			fmt.Sprintf("%.2f", o.Cost),
			o.LockPeriodDays,
			fmt.Sprintf("%.2f", o.PaymentAmount),
			o.Product,
			o.Investor,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Total", len(options)})

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func findPortal(cfg pricing.Config, name string) pricing.Portal {
	for _, p := range pricing.Portals(cfg) {
		if p.Name() == name {
			return p
		}
	}
	serviceutil.Fatal("unknown portal", fmt.Errorf("%q is not a portal", name))
	return nil
}

var portalNames = []string{"loannex", "lenderprice"}
