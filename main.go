package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mbg-sim/zoox/config"
	"github.com/mbg-sim/zoox/sim"
	"github.com/mbg-sim/zoox/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed override (0 = use config)")
	horizon := flag.Float64("horizon", 0, "Simulation horizon in days override (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot (empty = use config)")
	archivePath := flag.String("archive", "", "Sqlite run archive path (empty = use config)")
	printParams := flag.Bool("print-params", false, "Print the effective parameters as YAML and exit")
	logEvents := flag.Bool("log-events", false, "Log every event at debug level")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *horizon > 0 {
		cfg.HorizonDay = *horizon
	}
	if *outputDir != "" {
		cfg.Telemetry.OutputDir = *outputDir
	}
	if *archivePath != "" {
		cfg.Telemetry.ArchivePath = *archivePath
	}
	if *logEvents {
		cfg.Telemetry.LogEvents = true
	}

	if *printParams {
		data, err := cfg.EffectiveYAML()
		if err != nil {
			slog.Error("failed to render config", "error", err)
			os.Exit(1)
		}
		fmt.Print(string(data))
		return
	}

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if cfg.Telemetry.LogEvents {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	out, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir, cfg.Telemetry.WriteExits)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	names := make([]string, len(cfg.Clades))
	for i, c := range cfg.Clades {
		names[i] = c.Name
	}
	collector := telemetry.NewCollector(out, names)

	engine, err := sim.New(cfg, sim.Options{
		Seed:      cfg.Seed,
		Logger:    logger,
		Observer:  collector,
		LogEvents: cfg.Telemetry.LogEvents,
	})
	if err != nil {
		return err
	}

	start := engine.Counts()
	logger.Info("starting simulation",
		"seed", cfg.Seed,
		"horizon_days", cfg.HorizonDay,
		"grid", gridLabel(cfg),
		"initial_population", start.Total,
	)

	if err := engine.Run(); err != nil {
		return err
	}
	if err := collector.Err(); err != nil {
		return err
	}

	final := engine.Counts()
	exits := collector.Exits()
	logger.Info("simulation finished",
		"days", collector.Days(),
		"final_population", final.Total,
		"mutants", final.Mutants,
		"arrival_attempts", engine.Arrivals(),
		"denouements", exits.Denouement,
		"digestions", exits.Digestion,
		"evictions", exits.Eviction,
	)

	if cfg.Telemetry.ArchivePath != "" {
		ctx := context.Background()
		archive, err := telemetry.OpenArchive(ctx, cfg.Telemetry.ArchivePath)
		if err != nil {
			return err
		}
		defer archive.Close()

		runID, err := archive.SaveRun(ctx, telemetry.RunMeta{
			Seed:            cfg.Seed,
			HorizonDays:     cfg.HorizonDay,
			Grid:            gridLabel(cfg),
			FinalPopulation: final.Total,
			Days:            collector.Days(),
		}, collector.Rows())
		if err != nil {
			return err
		}
		logger.Info("run archived", "path", cfg.Telemetry.ArchivePath, "run_id", runID)
	}

	return nil
}

func gridLabel(cfg *config.Config) string {
	return fmt.Sprintf("%dx%dx%d %s", cfg.Grid.Rows, cfg.Grid.Cols, cfg.Grid.Levels, cfg.Grid.Shape)
}
