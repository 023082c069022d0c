package main

import (
	"os"
	"time"

	"homeboard/internal/amqp"
	"homeboard/internal/cli"
	"homeboard/internal/log"
	"homeboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for homeboard-worker")
		os.Exit(1)
	}

	logger.Info("Starting homeboard-worker", log.FieldOperation, log.OpStartup)

	repo := cli.InitSQLite(logger, cfg)
	loc, _ := cfg.Location()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}

	closeAll := func() {
		if err := client.Close(); err != nil {
			logger.Error("AMQP close error", log.FieldError, err.Error())
		}
		if err := repo.Close(); err != nil {
			logger.Error("SQLite close error", log.FieldError, err.Error())
		}
	}

	// The consumer stops on cancellation; connections close after it returns.
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	w := worker.NewActivityWorker(repo, loc, logger)
	if err := w.Run(ctx, client); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
		closeAll()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	closeAll()
	logger.Info("Worker stopped gracefully")
}
