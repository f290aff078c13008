package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"time"

	devenv "ratequote-backend/dev/env"
	"ratequote-backend/internal/components/telemetry"
	"ratequote-backend/internal/pricing"
	"ratequote-backend/pkg/serviceutil"
)

func main() {
	verbose := flag.Bool("v", false, "enable verbose logging")
	port := flag.Int("port", 8000, "port to listen on")
	configPath := flag.String("config", "config.json5", "path to the json5 config")
	flag.Parse()

	ctx := serviceutil.SignalContext()
	t := InitTelemetry(ctx, *verbose)
	defer t.Shutdown(context.Background())

	cfg, err := pricing.LoadConfig(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if *verbose && cfg.Browserless.DumpDir == "" {
		dir, err := devenv.ResolvePath("<dev_state>/resty/bql")
		if err == nil {
			cfg.Browserless.DumpDir = dir
		}
	}
	for _, problem := range cfg.Problems() {
		slog.Warn("configuration problem", "problem", problem)
	}

	tel := telemetry.NewSlogAPI(nil)
	rt, err := pricing.NewRuntime(ctx, cfg, tel)
	if err != nil {
		serviceutil.Fatal("failed to initialize pricing", err)
	}
	defer rt.Close()

	mux := http.NewServeMux()
	pricing.NewHandler(rt.Service, tel).Register(mux)

	slog.Info("serving portals", "portals", rt.Service.Portals())
	serviceutil.StartHttpServer(ctx, *port, mux, cfg.Deadline()+5*time.Second)
}
