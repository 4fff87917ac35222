package main

import (
	"context"
	"github.com/cirruslabs/etagd/internal/command"
	"github.com/cirruslabs/etagd/internal/logginglevel"
	"github.com/cirruslabs/etagd/internal/opentelemetry"
	"go.uber.org/zap"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Set up signal interruptible context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize logger
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logginglevel.Level

	logger, err := loggerConfig.Build()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	zap.ReplaceGlobals(logger)

	// Initialize OpenTelemetry
	_, opentelemetryDeinit, err := opentelemetry.Init(ctx)
	if err != nil {
		logger.Sugar().Fatalf("failed to initialize OpenTelemetry: %v", err)
	}
	defer opentelemetryDeinit()

	// Run the command
	if err := command.NewRootCommand().ExecuteContext(ctx); err != nil {
		logger.Sugar().Error(err)
		opentelemetryDeinit()
		_ = logger.Sync()

		os.Exit(1)
	}
}
