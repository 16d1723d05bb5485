package nlqctl

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/alikhantareen/natural-language-query-finder/internal/migrations"
	"github.com/alikhantareen/natural-language-query-finder/internal/seed"
)

func newSeedCommand(opts Options) *cobra.Command {
	var migrate bool
	cfg := seed.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the demo tables with fixture or generated data",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			envCfg, err := seed.LoadConfigFromEnv(opts.Lookup)
			if err != nil {
				return err
			}
			// Flags win over the environment.
			flags := cmd.Flags()
			if !flags.Changed("fixtures") {
				cfg.Fixtures = envCfg.Fixtures
			}
			if !flags.Changed("users") {
				cfg.Users = envCfg.Users
			}
			if !flags.Changed("products") {
				cfg.Products = envCfg.Products
			}
			if !flags.Changed("orders") {
				cfg.Orders = envCfg.Orders
			}
			if !flags.Changed("seed") {
				cfg.Seed = envCfg.Seed
			}
			if !flags.Changed("batch-size") {
				cfg.BatchSize = envCfg.BatchSize
			}
			cfg.Timeout = envCfg.Timeout
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.OpenDB == nil {
				return fmt.Errorf("database access is not configured")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()
			return runSeed(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, cfg, migrate)
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&cfg.Fixtures, "fixtures", cfg.Fixtures, "load the fixed demo collection instead of generated data")
	flags.IntVar(&cfg.Users, "users", cfg.Users, "number of users to generate")
	flags.IntVar(&cfg.Products, "products", cfg.Products, "number of products to generate")
	flags.IntVar(&cfg.Orders, "orders", cfg.Orders, "number of orders to generate")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for generated data")
	flags.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "rows per insert statement")
	flags.BoolVar(&migrate, "migrate", true, "apply pending schema migrations first")
	return cmd
}

func runSeed(ctx context.Context, stdout, stderr io.Writer, opts Options, cfg seed.Config, migrate bool) error {
	var spinner *pterm.SpinnerPrinter
	if opts.Spinner {
		spinner, _ = pterm.DefaultSpinner.WithWriter(stderr).Start("Seeding database...")
	}
	fail := func(err error) error {
		if spinner != nil {
			spinner.Fail(err.Error())
		}
		return err
	}

	db, err := opts.OpenDB(ctx)
	if err != nil {
		return fail(fmt.Errorf("open database: %w", err))
	}
	defer func() { _ = db.Close() }()

	if migrate {
		applied, err := migrations.NewRunner().Up(ctx, db, 0)
		if err != nil {
			return fail(fmt.Errorf("apply migrations: %w", err))
		}
		if applied > 0 {
			_, _ = fmt.Fprintf(stdout, "applied %d migration(s)\n", applied)
		}
	}

	var data seed.Dataset
	if cfg.Fixtures {
		data, err = seed.Fixtures()
	} else {
		data, err = seed.NewGenerator(cfg.Seed).Generate(cfg.Users, cfg.Products, cfg.Orders)
	}
	if err != nil {
		return fail(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader, err := seed.NewLoader(db, logger, cfg.BatchSize)
	if err != nil {
		return fail(err)
	}
	if err := loader.Load(ctx, data); err != nil {
		return fail(err)
	}
	if spinner != nil {
		spinner.Success("Database seeded")
	}

	total := 0
	for _, table := range data.Tables {
		_, _ = fmt.Fprintf(stdout, "%-12s %d\n", table.Name, len(table.Rows))
		total += len(table.Rows)
	}
	_, _ = fmt.Fprintf(stdout, "%-12s %d\n", "total", total)
	return nil
}
