package cli

import (
	"context"
	"time"

	"resumeats/internal/config"
	"resumeats/internal/errors"
	"resumeats/internal/observability"
	"resumeats/internal/orders"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Render paid orders from the shared queue",
	Long: `Run the render worker as a standalone process. Jobs are taken from the
Redis queue, rendered to PDF with headless Chrome and uploaded to the blob
store. Orders must live in Postgres so that the API server sees the result.`,
	Args: cobra.NoArgs,
	RunE: runWorker,
}

var workerCount int

func init() {
	workerCmd.Flags().IntVarP(&workerCount, "workers", "w", 0, "Number of concurrent renders (default from config)")
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	if cfg.Queue.Backend != "redis" || cfg.Database.Driver != "postgres" {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"A standalone worker needs queue.backend=redis and database.driver=postgres", nil)
	}
	if workerCount > 0 {
		cfg.Orders.Workers = workerCount
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	engine, stopWatcher, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer stopWatcher()

	p, err := newPipeline(ctx, cfg, engine, logger)
	if err != nil {
		return err
	}
	defer p.Close(logger)
	p.service.WithMetrics(om.GetMetrics())

	logger.Info("Starting render worker", "workers", cfg.Orders.Workers, "queue", cfg.Queue.Name)
	return newWorker(cfg, p, logger).Run(ctx)
}

// newWorker creates the render worker consuming the pipeline queue
func newWorker(cfg *config.Config, p *pipeline, logger *errors.Logger) *orders.Worker {
	return orders.NewWorker(p.queue, p.service, cfg.Orders.Workers, logger)
}
