package main

import (
	"context"

	"ratequote-backend/cmd/ratequote-cli/commands"
	"ratequote-backend/internal/components/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "ratequote-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
