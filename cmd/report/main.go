package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"genetic_screen"
)

var (
	configPath = flag.String("config", "./config.toml", "Tool config path")
	runID      = flag.Uint("run", 0, "Run id to report on (0 = best finished run)")
	top        = flag.Int("top", 5, "Number of final candidates to print")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ltime)

	toolConfig, err := genetic_screen.LoadToolConfig(*configPath)
	if err != nil {
		log.Fatalf("Unable to load tool config: %v", err)
	}
	if toolConfig.Persistence == nil {
		log.Fatalf("Config has no [persistence] section, nothing to report on")
	}

	persist, err := genetic_screen.NewPersistence(toolConfig.Persistence)
	if err != nil {
		log.Fatalf("Failed to open Persistence: %v", err)
	}
	defer persist.Shutdown()

	id := *runID
	if id == 0 {
		best, err := persist.BestRun()
		if err != nil {
			log.Fatalf("Failed to find best run: %v", err)
		}
		if best == nil {
			runs, err := persist.ListRuns()
			if err != nil {
				log.Fatalf("Failed to list runs: %v", err)
			}
			log.Fatalf("No finished runs recorded (%d runs total)", len(runs))
		}
		id = best.ID
	}

	run, err := persist.LoadRun(id)
	if err != nil {
		log.Fatalf("Unable to load run %d: %v", id, err)
	}

	log.Printf("Run %d: outcome=%s final_step=%d best=%.3f", run.ID, run.Outcome, run.FinalStep, run.BestFitness)
	log.Printf("  population_size=%d dimension=%d seed=%d steps=%d repeat=%d",
		run.PopulationSize, run.Dimension, run.Seed, run.Steps, run.Repeat)

	for _, gen := range run.Generations {
		log.Printf("  Gen %3d: best=%.3f mean=%s worst=%s unique=%d similarity=%.3f",
			gen.Step, gen.BestFitness, formatFitness(gen.MeanFitness), formatFitness(gen.WorstFitness),
			gen.UniqueGenotypes, gen.MeanSimilarity)
	}

	limit := *top
	if limit > len(run.Candidates) {
		limit = len(run.Candidates)
	}
	for _, c := range run.Candidates[:limit] {
		log.Printf("  #%d fitness=%s mask=%s", c.Rank, formatFitness(c.Fitness), c.Genotype)
	}
}

// formatFitness keeps -Inf (failed candidates) readable in reports.
func formatFitness(fit float64) string {
	if math.IsInf(fit, -1) {
		return "-inf"
	}
	return fmt.Sprintf("%.3f", fit)
}
