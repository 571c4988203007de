package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/GoArmGo/GalleryApp/internal/app"
	"github.com/GoArmGo/GalleryApp/internal/di"
)

func main() {
	mode := flag.String("mode", app.ModeServer, "run mode: server, vision-worker or exif-worker")
	flag.Parse()

	// bootstrap logger, used until the configured logger is built
	bootstrapLogger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	bootstrapLogger.Info("starting application", "mode", *mode)

	application, err := di.BuildApp()
	if err != nil {
		bootstrapLogger.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	logger := application.LoggerIns()
	logger.Info("application initialized")

	if err := application.Run(context.Background(), *mode); err != nil {
		logger.Error("application run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
