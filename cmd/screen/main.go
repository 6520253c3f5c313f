package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"genetic_screen"
)

var (
	configPath = flag.String("config", "./config.toml", "Tool config path")
	target     = flag.String("target", "", "Target mask for the benchmark fitness, e.g. '10101' (empty = random)")
	trials     = flag.Int("trials", 1, "Number of independent seeded trials")
	seed       = flag.Int64("seed", 0, "Base RNG seed, overrides config (0 = from clock)")
)

type TrialResult struct {
	Seed        int64
	Outcome     string
	BestFitness float64
	BestMask    string
	FinalStep   int
}

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ltime)

	toolConfig, err := genetic_screen.LoadToolConfig(*configPath)
	if err != nil {
		log.Fatalf("Unable to load tool config: %v", err)
	}
	if *seed != 0 {
		toolConfig.Algorithm.Seed = *seed
	}

	// The benchmark fitness counts positions matching a fixed target mask.
	// A real embedding supplies its own FitFunc; this one exists so the
	// tool can exercise and record full searches on its own.
	targetMask := *target
	if targetMask == "" {
		targetMask = randomTarget(toolConfig.Algorithm)
		log.Printf("No target supplied, using random target %s", targetMask)
	}
	if len(targetMask) != toolConfig.Algorithm.Dimension {
		log.Fatalf("Target mask length %d does not match dimension %d", len(targetMask), toolConfig.Algorithm.Dimension)
	}
	fitFunc := maskMatchFitness(targetMask)

	var persist *genetic_screen.Persistence
	if toolConfig.Persistence != nil {
		if persist, err = genetic_screen.NewPersistence(toolConfig.Persistence); err != nil {
			log.Fatalf("Failed to create or initialize Persistence: %v", err)
		}
		defer persist.Shutdown()
	}

	var history []TrialResult
	for trial := 0; trial < *trials; trial++ {
		trialConfig := *toolConfig.Algorithm
		if trialConfig.Seed != 0 {
			trialConfig.Seed += int64(trial)
		}
		log.Printf("========== TRIAL %d/%d ==========", trial+1, *trials)
		log.Printf("  population_size=%d dimension=%d seed=%d steps=%d repeat=%d",
			trialConfig.PopulationSize, trialConfig.Dimension, trialConfig.Seed,
			toolConfig.Search.Steps, toolConfig.Search.Repeat)

		result := runTrial(&trialConfig, toolConfig.Search, fitFunc, persist)
		history = append(history, result)

		log.Printf("Trial finished: outcome=%s best=%.3f step=%d mask=%s",
			result.Outcome, result.BestFitness, result.FinalStep, result.BestMask)
	}

	log.Println("========== SEARCH SUMMARY ==========")
	bestIdx := 0
	for i, r := range history {
		log.Printf("  Trial %2d: outcome=%s best=%.3f step=%d seed=%d",
			i+1, r.Outcome, r.BestFitness, r.FinalStep, r.Seed)
		if r.BestFitness > history[bestIdx].BestFitness {
			bestIdx = i
		}
	}
	best := history[bestIdx]
	log.Printf("Best trial: #%d (best fitness %.3f)", bestIdx+1, best.BestFitness)

	// Winning mask to stdout, everything else went to stderr.
	fmt.Println(best.BestMask)
}

func runTrial(config *genetic_screen.AlgorithmConfig, search *genetic_screen.SearchConfig,
	fitFunc genetic_screen.FitFunc, persist *genetic_screen.Persistence) TrialResult {

	result := TrialResult{Seed: config.Seed, Outcome: genetic_screen.OutcomeFailed}

	ga, err := genetic_screen.NewGeneticAlgorithm(config, fitFunc)
	if err != nil {
		log.Printf("Failed to construct optimizer: %v", err)
		return result
	}

	var recorder *genetic_screen.RunRecorder
	if persist != nil {
		if recorder, err = persist.BeginRun(config, search.Steps, search.Repeat); err != nil {
			log.Printf("Warning: run will not be recorded: %v", err)
		} else {
			ga.SetRecorder(recorder)
		}
	}

	if err := ga.Search(search.Steps, search.Verbose, search.Repeat); err != nil {
		log.Printf("Search failed: %v", err)
		return result
	}

	result.BestFitness = ga.Fitness[0]
	result.BestMask = ga.Population[0].Genotype()
	if recorder != nil {
		result.Outcome = recorder.Run.Outcome
		result.FinalStep = recorder.Run.FinalStep
	} else {
		result.Outcome = "finished"
	}
	return result
}

// maskMatchFitness scores a candidate by how many positions agree with the
// target mask. Maximum fitness equals the dimension.
func maskMatchFitness(target string) genetic_screen.FitFunc {
	want := genetic_screen.NewCandidateFromGenotype(target)
	return func(mask []bool) (float64, error) {
		if len(mask) != len(want) {
			return 0, fmt.Errorf("mask has %d dimensions, want %d", len(mask), len(want))
		}
		matches := 0
		for i, included := range mask {
			if included == want[i] {
				matches++
			}
		}
		return float64(matches), nil
	}
}

func randomTarget(config *genetic_screen.AlgorithmConfig) string {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return genetic_screen.NewRandomCandidate(rng, config.Dimension).Genotype()
}
