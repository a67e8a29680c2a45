package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophadmin/internal/buildinfo"
	"github.com/dmitrijs2005/gophadmin/internal/logging"
	"github.com/dmitrijs2005/gophadmin/internal/server"
	"github.com/dmitrijs2005/gophadmin/internal/server/config"
	"github.com/dmitrijs2005/gophadmin/internal/telemetry"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	shutdown, err := telemetry.Setup(ctx, "gophadmin-devserver")
	if err != nil {
		logger.Warn(ctx, "tracing disabled", "error", err)
	} else {
		defer func() { _ = shutdown(ctx) }()
	}

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
