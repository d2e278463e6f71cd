package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"neuroslope/adapters/edf"
	"neuroslope/adapters/evt"
	"neuroslope/adapters/export"
	"neuroslope/adapters/metadata"
	"neuroslope/adapters/postgres"
	"neuroslope/internal"
	"neuroslope/internal/config"
	"neuroslope/internal/pipeline"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "neuroslope",
		Short: "Resting-state EEG spectral slope cohort pipeline",
	}

	rootCmd.AddCommand(newRunCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var envFile string
	var seed int64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the cohort and export the slope table",
		Long: `Process every recording in the import directory: window each
condition, estimate Welch PSDs, fit the aperiodic slope per channel and
write the cohort table to a fresh run directory.

Configuration is read from the environment (optionally seeded from an
env file). See .env.example for the full variable list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), envFile, seed)
		},
	}

	cmd.Flags().StringVar(&envFile, "env", ".env", "Env file to load before reading configuration")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed for RANSAC consensus sampling")

	return cmd
}

func runPipeline(ctx context.Context, envFile string, seed int64) error {
	// Missing env file is fine; the environment may be set externally.
	_ = godotenv.Load(envFile)

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	recordings, err := edf.NewReaderAdapter(cfg.Paths.ImportDirEDF,
		cfg.Acquisition.Channels, cfg.Acquisition.SampleRate, logger)
	if err != nil {
		return err
	}
	events := evt.NewReaderAdapter(cfg.Paths.ImportDirEvt)
	roster := metadata.NewDataReader(cfg.Paths.MetadataPath, logger)

	runner := pipeline.NewRunner(cfg.Run, recordings, events, roster, logger)
	runner.Workers = cfg.Workers
	runner.Seed = seed

	result, err := runner.Run(ctx, version)
	if err != nil {
		return err
	}

	runDir, err := export.MakeRunDir(cfg.Paths.ExportDir, cfg.Run.Montage)
	if err != nil {
		return err
	}
	sink := export.NewDirectorySink(runDir, logger)
	if err := sink.WriteTable(ctx, result.Manifest, result.Table); err != nil {
		return err
	}
	summaries := pipeline.Summarize(result.Table)
	if err := sink.WriteReport(result.Manifest, summaries); err != nil {
		return err
	}

	if cfg.Database.Enabled {
		if err := storeResults(ctx, cfg.Database.URL, result); err != nil {
			return err
		}
	}

	fmt.Printf("Run %s complete: %d subjects, %d channels\n",
		result.Manifest.RunID, result.Manifest.NumSubjects, len(result.Manifest.Channels))
	for _, s := range summaries {
		fmt.Printf("  %s/%s: n=%d mean=%.3f median=%.3f sd=%.3f missing=%d\n",
			s.Group, s.Condition, s.NumSlopes, s.Mean, s.Median, s.StdDev, s.NumMissing)
	}
	fmt.Printf("Exported to %s\n", runDir)

	return nil
}

func storeResults(ctx context.Context, url string, result *pipeline.Result) error {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return fmt.Errorf("failed to connect to result database: %w", err)
	}
	defer db.Close()

	repo := postgres.NewResultRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	return repo.WriteTable(ctx, result.Manifest, result.Table)
}
