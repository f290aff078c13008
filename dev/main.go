package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	devenv "ratequote-backend/dev/env"
	"ratequote-backend/internal/automation/bql"
	"ratequote-backend/internal/pricing"
)

var samplePayload = map[string]any{
	"loanAmount":        400000,
	"propertyValue":     500000,
	"creditScore":       740,
	"loanPurpose":       "purchase",
	"occupancyType":     "investment",
	"propertyType":      "SFR",
	"documentationType": "dscr",
	"citizenship":       "US Citizen",
	"propertyState":     "CA",
	"propertyZip":       "90210",
	"dscrValue":         1.25,
	"lockPeriod":        30,
}

func writeJson(path string, value any) error {
	_, err := os.Stat(path)
	if err == nil {
		slog.Info("already exists, leaving it alone", "path", path)
		return nil
	}
	contents, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	slog.Info("writing", "path", path)
	return os.WriteFile(path, contents, 0600)
}

func create(recreate bool) error {
	root, err := devenv.GetWorkspaceRoot()
	if err != nil {
		return fmt.Errorf("the dev environment must be created inside the repository (a parent directory must hold the 'go.mod' file)")
	}
	state := filepath.Join(root, "dev", ".state")

	if recreate {
		err = os.RemoveAll(state)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll(state, 0777)
	if err != nil {
		return err
	}

	defaults := pricing.DefaultConfig()
	cfg := map[string]any{
		"debug":            true,
		"deadline_seconds": defaults.DeadlineSeconds,
		"browserless": map[string]any{
			"endpoint": bql.DefaultEndpoint,
			"dump_dir": filepath.Join(state, "resty", "bql"),
		},
		"sessions": map[string]any{
			"limit":        defaults.Sessions.Limit,
			"wait_seconds": 10,
		},
		"loannex": map[string]any{
			"login_url": defaults.Loannex.LoginURL,
		},
		"lenderprice": map[string]any{
			"url": defaults.LenderPrice.URL,
		},
	}
	err = writeJson(filepath.Join(state, "config.json5"), cfg)
	if err != nil {
		return err
	}
	err = writeJson(filepath.Join(state, "payload.json"), samplePayload)
	if err != nil {
		return err
	}

	slog.Info("credentials are read from BROWSERLESS_TOKEN, LOANNEX_USER and LOANNEX_PASSWORD, or from config.local.json5 next to the config.")
	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
