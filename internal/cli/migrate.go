package cli

import (
	"fmt"

	"resumeats/internal/errors"
	"resumeats/internal/orders"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the order database migrations",
	Long: `Apply the embedded goose migrations to the Postgres database configured
in database.url. With --down the given number of migrations is rolled back.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var migrateDown int

func init() {
	migrateCmd.Flags().IntVar(&migrateDown, "down", 0, "Roll back this many migrations instead of applying")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	if cfg.Database.Driver != "postgres" {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Migrations need database.driver=postgres, got %q", cfg.Database.Driver), nil)
	}
	if migrateDown < 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "--down must not be negative", nil)
	}

	pool, err := orders.Connect(ctx, cfg.Database)
	if err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageUnavailable, "Failed to connect to Postgres", err)
	}
	defer pool.Close()

	if err := orders.Migrate(ctx, pool, -migrateDown); err != nil {
		return err
	}

	if migrateDown > 0 {
		logger.Info("Migrations rolled back", "steps", migrateDown)
	} else {
		logger.Info("Migrations applied")
	}
	return nil
}
