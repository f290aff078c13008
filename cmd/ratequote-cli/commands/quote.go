package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ratequote-backend/internal/components/telemetry"
	"ratequote-backend/internal/pricing"
	"ratequote-backend/pkg/serviceutil"

	"github.com/spf13/cobra"
)

var (
	quotePayload *string
	quoteJson    *bool
	quoteDebug   *bool
)

func init() {
	quotePayload = quoteCmd.Flags().String("payload", "", "A json scenario payload, - reads stdin.")
	quoteJson = quoteCmd.Flags().Bool("json", false, "Print the full response as json.")
	quoteDebug = quoteCmd.Flags().Bool("debug", false, "Attach diagnostics to successful responses.")
	rootCmd.AddCommand(quoteCmd)
}

var quoteCmd = &cobra.Command{
	Use:       "quote <portal> [--payload <path/to/payload.json>]",
	Short:     "Prices a loan scenario on a portal and prints the rate options.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: portalNames,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		cfg.Debug = cfg.Debug || *quoteDebug
		for _, problem := range cfg.Problems() {
			slog.Warn("configuration problem", "problem", problem)
		}

		rt, err := pricing.NewRuntime(cmd.Context(), cfg, telemetry.NewSlogAPI(nil))
		if err != nil {
			serviceutil.Fatal("failed to initialize pricing", err)
		}
		defer rt.Close()

		t1 := time.Now()
		resp := rt.Service.Quote(cmd.Context(), args[0], readPayload(*quotePayload))
		slog.Info("quote time", "seconds", time.Since(t1).Seconds())

		if *quoteJson {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(resp); err != nil {
				serviceutil.Fatal("failed to encode response", err)
			}
			return
		}
		if !resp.Success {
			fmt.Fprintf(os.Stderr, "%s: %s\n", resp.Error, resp.Message)
			os.Exit(1)
		}
		if resp.Data.NoResults {
			fmt.Println("no eligible rates")
			return
		}
		renderRates(resp.Data.RateOptions)
	},
}
