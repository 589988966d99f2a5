// Command migrate runs the schema migration engine against a database
// directly, without the Lambda hop. It is the developer-facing counterpart of
// the migration-runner function and shares the same catalog, ledger and
// runner code.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appmigration "quizcore-backend/application/migration"
	"quizcore-backend/infrastructure/config"
	"quizcore-backend/infrastructure/persistence/postgres"
	"quizcore-backend/migrations"
)

var (
	dsnFlag    string
	dryRunFlag bool
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Schema migration runner for the quiz database",
	Long:          `migrate applies the embedded, versioned migration catalog to a PostgreSQL database, records every attempt in the append-only ledger, and validates the resulting schema.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report applied and pending migrations without executing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		runner, cleanup, err := buildRunner(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		status, err := runner.Status(ctx)
		if err != nil {
			return err
		}

		pterm.Info.Printfln("%d applied, %d pending", status.AppliedCount, status.PendingCount)
		for _, v := range status.PendingVersions {
			pterm.Println("  pending: " + v)
		}
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply all pending migrations in version order",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		runner, cleanup, err := buildRunner(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if dryRunFlag {
			pending, err := runner.Plan(ctx)
			if err != nil {
				return err
			}
			pterm.Info.Printfln("dry run: %d migrations would be applied", len(pending))
			for _, u := range pending {
				pterm.Println(fmt.Sprintf("  %s %s", u.Version, u.Name))
			}
			return nil
		}

		result, err := runner.Apply(ctx)
		if err != nil {
			return err
		}

		for _, report := range result.Applied {
			if report.Success {
				pterm.Success.Printfln("%s %s (%dms)", report.Version, report.Name, report.ExecutionTimeMs)
			} else {
				pterm.Error.Printfln("%s %s failed: %s", report.Version, report.Name, report.Error)
			}
		}
		if !result.Success {
			return fmt.Errorf("failed at version %s; %d versions left un-attempted",
				result.FailedVersion, len(result.Skipped))
		}

		pterm.Success.Printfln("migrations applied: %d", len(result.Applied))
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the schema checklist against the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		runner, cleanup, err := buildRunner(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		checks, err := runner.Validate(ctx)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if checks[name] {
				pterm.Success.Printfln("%s", name)
			} else {
				pterm.Error.Printfln("%s", name)
			}
		}
		if !appmigration.AllValid(checks) {
			return fmt.Errorf("schema validation failed")
		}
		return nil
	},
}

// buildRunner wires the runner against the DSN from --dsn or the environment.
// The CLI runs inside the network segment (local database or a tunnel), so no
// bridge hop and no Secrets Manager resolution are involved.
func buildRunner(ctx context.Context) (*appmigration.Runner, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if dsnFlag != "" {
		cfg.DatabaseURL = dsnFlag
	}

	dsn, err := postgres.ResolveDSN(ctx, cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}

	logger := zap.NewNop()
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	}

	exec := postgres.NewExecutor(pool, logger)
	ledger := postgres.NewLedgerStore(exec, cfg.MigrationsTable, logger)
	catalog, err := migrations.Catalog()
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	validator := appmigration.NewSchemaValidator(exec, migrations.Checks(), logger)

	runner := appmigration.NewRunner(catalog, ledger, exec, validator, logger,
		appmigration.WithEnvironment(cfg.Environment),
		appmigration.WithFailOnDrift(cfg.FailOnDrift),
	)
	return runner, pool.Close, nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&dsnFlag, "dsn", "", "database connection string (defaults to DATABASE_URL)")
	applyCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "compute the pending set without executing anything")

	rootCmd.AddCommand(statusCmd, applyCmd, validateCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		pterm.Error.Printfln("%v", err)
		os.Exit(1)
	}
}
