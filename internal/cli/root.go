package cli

import (
	"context"

	"resumeats/internal/config"
	"resumeats/internal/errors"

	"github.com/spf13/cobra"
)

type (
	configKeyType struct{}
	loggerKeyType struct{}
)

var (
	configKey = configKeyType{}
	loggerKey = loggerKeyType{}
)

var rootCmd = &cobra.Command{
	Use:   "resumeats",
	Short: "Score, import and render résumés",
	Long: `Resumeats scores structured résumés against ATS heuristics, imports
PDF or text résumés into structured records, and runs a sandboxed order
pipeline that renders ATS-friendly PDFs.`,
	SilenceUsage:      true,
	PersistentPreRunE: applyLogLevel,
}

// applyLogLevel swaps the context logger when --log-level is given
func applyLogLevel(cmd *cobra.Command, args []string) error {
	flag := cmd.Flags().Lookup("log-level")
	if flag == nil || !flag.Changed {
		return nil
	}

	logger, err := errors.New(flag.Value.String())
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidConfig, "Invalid --log-level", err)
	}
	cmd.SetContext(context.WithValue(cmd.Context(), loggerKey, logger))
	return nil
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext returns the configuration attached by Execute
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context")
}

// getLoggerFromContext returns the logger attached by Execute or --log-level
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context")
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Override app.logLevel: debug, info, warn or error")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}
