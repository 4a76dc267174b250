package cli

import (
	"resumeats/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server that provides the REST API.

Available endpoints:
- GET  /health: Health check endpoint
- GET  /files/{token}: Signed download of a rendered document
- GET  /stats: Server statistics, rate limiting info and order counts
- POST /ats/analyze: Score a résumé record
- POST /import/extract: Import a PDF or text résumé
- POST /import/merge: Merge an imported record into a stored one
- POST /api/create-order: Create a sandbox order
- GET  /api/order/{id}: Order status
- POST /api/order/{id}/pay: Confirm a sandbox payment
- GET  /api/download/{id}: Redirect to the rendered PDF

With --worker (or server.runWorker) paid orders are rendered in-process;
otherwise run 'resumeats worker' against a shared Redis queue.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().Bool("worker", true, "Run the render worker in-process (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	applyServeFlags(cmd)

	engine, stopWatcher, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer stopWatcher()

	importer, reader, err := newImporter(ctx, cfg, cfg.AI.Enabled, logger)
	if err != nil {
		return err
	}

	p, err := newPipeline(ctx, cfg, engine, logger)
	if err != nil {
		return err
	}
	defer p.Close(logger)

	deps := server.Dependencies{
		Engine:   engine,
		Importer: importer,
		Reader:   reader,
		Orders:   p.service,
		Store:    p.store,
	}
	if cfg.Server.RunWorker {
		deps.Worker = newWorker(cfg, p, logger)
	}

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
	return server.NewServer(cfg, serverCfg, deps, logger).Start(ctx)
}

// applyServeFlags copies explicitly set flags over the loaded configuration
func applyServeFlags(cmd *cobra.Command) {
	cfg := getConfigFromContext(cmd.Context())
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetString("port")
	}
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("worker") {
		cfg.Server.RunWorker, _ = flags.GetBool("worker")
	}
}
