package main

import (
	"context"

	"ratequote-backend/internal/components/telemetry"
	"ratequote-backend/pkg/serviceutil"
)

func InitTelemetry(ctx context.Context, verbose bool) telemetry.Telemetry {
	t, err := telemetry.SetupFromEnv(ctx, "ratequote-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	telemetry.InstrumentPerfStats(ctx)
	telemetry.InitSlog(verbose)
	return t
}
