package main

import (
	"context"
	"errors"
	"os"

	"donatrack/internal/amqp"
	"donatrack/internal/cli"
	"donatrack/internal/log"
	gsheet "donatrack/internal/sheets/google"
	"donatrack/internal/worker"
)

func main() {
	cfg, appLogger := cli.Bootstrap("donatrack-worker", true)
	logger := appLogger.WithComponent(log.ComponentWorker)
	logger.Info("Starting donatrack-worker")

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	sheetsClient, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	if err := sheetsClient.EnsureHeader(ctx); err != nil {
		appLogger.WithComponent(log.ComponentExport).Warn("Could not write activity header", "error", err)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exporter := worker.NewExportWorker(sheetsClient, cfg.ExportRatePerSecond)

	logger.Info("Consuming record events",
		"queue", cfg.AMQPQueue,
		"sheet", cfg.GoogleSheetName,
		"rate_per_second", cfg.ExportRatePerSecond)

	if err := amqpClient.ConsumeRecordEvents(ctx, exporter.HandleRecordEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
