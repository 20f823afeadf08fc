package main

import (
	"context"

	"yqzx-crawler/cmd/crawler/commands"
	"yqzx-crawler/lib/serviceutil"
	"yqzx-crawler/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	t, err := telemetry.SetupFromEnv(ctx, "crawler")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)
	telemetry.InitSlog(true)

	commands.ExecuteContext(ctx)
}
