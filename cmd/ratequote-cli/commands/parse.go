package commands

import (
	"log/slog"
	"os"

	"ratequote-backend/internal/normalize"
	"ratequote-backend/internal/scripts"
	"ratequote-backend/pkg/serviceutil"

	"github.com/spf13/cobra"
)

var (
	parseBest     *bool
	parseLock     *int
	parseMaxPrice *float64
)

func init() {
	parseBest = parseCmd.Flags().Bool("best", false, "Keep only the best price for each rate.")
	parseLock = parseCmd.Flags().Int("lock", 30, "Lock period for rows without one.")
	parseMaxPrice = parseCmd.Flags().Float64("max-price", 0, "Drop options priced above this, 0 keeps all.")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <path/to/results.html>",
	Short: "Normalizes the rate table of a saved results page.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		body, err := os.ReadFile(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read page", err)
		}
		rows, err := normalize.RowsFromHTML(cmd.Context(), body, scripts.DefaultMaxRows)
		if err != nil {
			serviceutil.Fatal("failed to scrape page", err)
		}

		opts := normalize.Options{
			DefaultLockDays: *parseLock,
			MaxPrice:        *parseMaxPrice,
		}
		if *parseBest {
			opts.Policy = normalize.BestPricePerRate
		}
		options := normalize.Normalize(rows, opts)
		slog.Info("normalized", "rows", len(rows), "options", len(options), "policy", opts.Policy.String())
		renderRates(options)
	},
}
