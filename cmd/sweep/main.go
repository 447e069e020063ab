// Package main runs a parameter-space sweep: a grid of production and
// upkeep rates across several seeds, each run headless, with a summary row
// per run written to sweep.csv.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/mbg-sim/zoox/config"
	"github.com/mbg-sim/zoox/sim"
	"github.com/mbg-sim/zoox/telemetry"
)

// SweepResult is one run's summary row.
type SweepResult struct {
	PPR             float64 `csv:"ppr"`
	MCR             float64 `csv:"mcr"`
	Seed            int64   `csv:"seed"`
	Days            int     `csv:"days"`
	FinalPopulation int     `csv:"final_population"`
	Mutants         int     `csv:"mutants"`
	Denouements     int     `csv:"denouements"`
	Digestions      int     `csv:"digestions"`
	Evictions       int     `csv:"evictions"`
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	outputDir := flag.String("output", "", "Output directory for sweep.csv")
	seeds := flag.Int("seeds", 3, "Number of seeds per parameter point")
	pprMin := flag.Float64("ppr-min", 0.6, "Minimum production rate")
	pprMax := flag.Float64("ppr-max", 1.8, "Maximum production rate")
	pprSteps := flag.Int("ppr-steps", 5, "Production rate grid points")
	mcrMin := flag.Float64("mcr-min", 0.2, "Minimum mitotic cost rate")
	mcrMax := flag.Float64("mcr-max", 1.0, "Maximum mitotic cost rate")
	mcrSteps := flag.Int("mcr-steps", 5, "Mitotic cost rate grid points")
	horizon := flag.Float64("horizon", 0, "Horizon in days override (0 = use config)")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *horizon > 0 {
		baseCfg.HorizonDay = *horizon
	}
	// Sweeps run without per-run file output; the summary row is enough.
	baseCfg.Telemetry.OutputDir = ""
	baseCfg.Telemetry.ArchivePath = ""

	var results []SweepResult
	for pi := 0; pi < *pprSteps; pi++ {
		ppr := gridPoint(*pprMin, *pprMax, pi, *pprSteps)
		for mi := 0; mi < *mcrSteps; mi++ {
			mcr := gridPoint(*mcrMin, *mcrMax, mi, *mcrSteps)
			for s := 0; s < *seeds; s++ {
				seed := int64(s*1000 + 42)

				cfg := *baseCfg
				cfg.Clades = append([]config.CladeConfig(nil), baseCfg.Clades...)
				for i := range cfg.Clades {
					cfg.Clades[i].PPR = ppr
					cfg.Clades[i].MCR = mcr
				}

				res, err := runOne(&cfg, seed, logger)
				if err != nil {
					log.Fatalf("sweep run failed (ppr=%v mcr=%v seed=%d): %v", ppr, mcr, seed, err)
				}
				results = append(results, res)

				slog.Info("sweep point finished",
					"ppr", ppr, "mcr", mcr, "seed", seed,
					"final_population", res.FinalPopulation,
				)
			}
		}
	}

	path := filepath.Join(*outputDir, "sweep.csv")
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := gocsv.Marshal(results, f); err != nil {
		log.Fatalf("failed to write %s: %v", path, err)
	}
	slog.Info("sweep finished", "runs", len(results), "output", path)
}

func runOne(cfg *config.Config, seed int64, logger *slog.Logger) (SweepResult, error) {
	collector := telemetry.NewCollector(nil, nil)
	engine, err := sim.New(cfg, sim.Options{Seed: seed, Logger: logger, Observer: collector})
	if err != nil {
		return SweepResult{}, err
	}
	if err := engine.Run(); err != nil {
		return SweepResult{}, err
	}

	final := engine.Counts()
	exits := collector.Exits()
	return SweepResult{
		PPR:             cfg.Clades[0].PPR,
		MCR:             cfg.Clades[0].MCR,
		Seed:            seed,
		Days:            collector.Days(),
		FinalPopulation: final.Total,
		Mutants:         final.Mutants,
		Denouements:     exits.Denouement,
		Digestions:      exits.Digestion,
		Evictions:       exits.Eviction,
	}, nil
}

func gridPoint(lo, hi float64, i, steps int) float64 {
	if steps <= 1 {
		return lo
	}
	return lo + (hi-lo)*float64(i)/float64(steps-1)
}
