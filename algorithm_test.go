package genetic_screen

import (
	"fmt"
	"math/rand"
	test "testing"
)

// captureRecorder collects everything a search reports, for invariant checks.
type captureRecorder struct {
	steps     []int
	best      []float64
	outcome   string
	finalStep int
	finalPop  []Candidate
	finalFit  []float64
}

func (r *captureRecorder) RecordGeneration(step int, metrics *PopulationMetrics) error {
	r.steps = append(r.steps, step)
	r.best = append(r.best, metrics.BestFitness)
	return nil
}

func (r *captureRecorder) RecordOutcome(outcome string, step int, population []Candidate, fitness []float64) error {
	r.outcome = outcome
	r.finalStep = step
	r.finalPop = population
	r.finalFit = fitness
	return nil
}

func makeTargetFitness(target string) FitFunc {
	want := NewCandidateFromGenotype(target)
	return func(mask []bool) (float64, error) {
		matches := 0
		for i, included := range mask {
			if included == want[i] {
				matches++
			}
		}
		return float64(matches), nil
	}
}

func TestNewGeneticAlgorithmValidation(t *test.T) {
	if _, err := NewGeneticAlgorithm(nil, makeCountFitness()); err == nil {
		t.Errorf("NewGeneticAlgorithm accepted a nil config")
	}

	config := makeAlgorithmConfig()
	config.PopulationSize = 1
	if _, err := NewGeneticAlgorithm(config, makeCountFitness()); err == nil {
		t.Errorf("NewGeneticAlgorithm accepted population size 1")
	}

	config = makeAlgorithmConfig()
	config.Dimension = 0
	if _, err := NewGeneticAlgorithm(config, makeCountFitness()); err == nil {
		t.Errorf("NewGeneticAlgorithm accepted dimension 0")
	}

	if _, err := NewGeneticAlgorithm(makeAlgorithmConfig(), nil); err == nil {
		t.Errorf("NewGeneticAlgorithm accepted a nil fitness function")
	}
}

func TestNewGeneticAlgorithmDefaults(t *test.T) {
	ga := makeAlgorithm(t)

	if len(ga.Population) != ga.PopulationSize {
		t.Errorf("Starting population size [%v] is not expected value [%v]", len(ga.Population), ga.PopulationSize)
	}
	for i, c := range ga.Population {
		if len(c) != ga.Dimension {
			t.Errorf("Candidate %v has dimension [%v], expected [%v]", i, len(c), ga.Dimension)
		}
	}
	if len(ga.Operators) != 2 {
		t.Errorf("Default operator count [%v] is not expected value [2]", len(ga.Operators))
	}
}

func TestSetPopulation(t *test.T) {
	ga := makeAlgorithm(t)

	if err := ga.SetPopulation(make([]Candidate, 3)); err == nil {
		t.Errorf("SetPopulation accepted a wrong-sized population")
	}

	bad := NewRandomPopulation(makeRNG(), ga.PopulationSize, ga.Dimension+1)
	if err := ga.SetPopulation(bad); err == nil {
		t.Errorf("SetPopulation accepted wrong-dimension candidates")
	}

	good := NewRandomPopulation(makeRNG(), ga.PopulationSize, ga.Dimension)
	if err := ga.SetPopulation(good); err != nil {
		t.Errorf("SetPopulation rejected a valid population: %v", err)
	}
}

func TestSetOperators(t *test.T) {
	ga := makeAlgorithm(t)

	if err := ga.SetOperators(nil); err == nil {
		t.Errorf("SetOperators accepted an empty operator list")
	}

	if err := ga.SetOperators([]Operator{{Name: "broken", Arity: BinaryOperator}}); err == nil {
		t.Errorf("SetOperators accepted a binary operator without a Combine function")
	}

	if err := ga.SetOperators([]Operator{{Name: "broken", Arity: UnaryOperator}}); err == nil {
		t.Errorf("SetOperators accepted a unary operator without a Mutate function")
	}

	if err := ga.SetOperators([]Operator{RandomPermutation}); err != nil {
		t.Errorf("SetOperators rejected a valid operator list: %v", err)
	}
}

func TestSearchParamValidation(t *test.T) {
	ga := makeAlgorithm(t)

	if err := ga.Search(0, false, 5); err == nil {
		t.Errorf("Search accepted steps=0")
	}
	if err := ga.Search(10, false, 0); err == nil {
		t.Errorf("Search accepted repeat=0")
	}
}

func TestSearchFindsTargetMask(t *test.T) {
	const target = "10101"

	bestOverall := 0.0
	for seed := int64(1); seed <= 5; seed++ {
		config := &AlgorithmConfig{
			PopulationSize: 10,
			Dimension:      5,
			Seed:           seed,
		}
		ga, err := NewGeneticAlgorithm(config, makeTargetFitness(target))
		if err != nil {
			t.Fatalf("NewGeneticAlgorithm failed: %v", err)
		}

		if err := ga.Search(50, false, 5); err != nil {
			t.Fatalf("Search failed for seed %v: %v", seed, err)
		}

		if len(ga.Population) != 10 || len(ga.Fitness) != 10 {
			t.Fatalf("Seed %v: final generation has %v candidates and %v fitness values, expected 10 and 10",
				seed, len(ga.Population), len(ga.Fitness))
		}

		best := ga.Fitness[0]
		if best < 3 {
			t.Errorf("Seed %v: best fitness [%v] is implausibly low", seed, best)
		}
		if best == 5 && !ga.Population[0].Equal(NewCandidateFromGenotype(target)) {
			t.Errorf("Seed %v: fitness 5 but best mask [%v] is not the target", seed, ga.Population[0].Genotype())
		}
		if best > bestOverall {
			bestOverall = best
		}
	}

	if bestOverall != 5 {
		t.Errorf("No seeded run found the target mask; best overall fitness [%v]", bestOverall)
	}
}

func TestSearchInvariants(t *test.T) {
	recorder := &captureRecorder{}
	ga := makeAlgorithm(t)
	ga.SetRecorder(recorder)

	if err := ga.Search(20, false, 5); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(recorder.steps) < 2 {
		t.Fatalf("Recorder saw only %v generations", len(recorder.steps))
	}

	// Elitist reduction: the best fitness never regresses between
	// generations.
	for i := 1; i < len(recorder.best); i++ {
		if recorder.best[i] < recorder.best[i-1] {
			t.Errorf("Best fitness regressed from [%v] to [%v] at generation %v",
				recorder.best[i-1], recorder.best[i], recorder.steps[i])
		}
	}

	if len(recorder.finalPop) != ga.PopulationSize || len(recorder.finalFit) != ga.PopulationSize {
		t.Errorf("Final generation has %v candidates and %v fitness values, expected %v",
			len(recorder.finalPop), len(recorder.finalFit), ga.PopulationSize)
	}

	if recorder.outcome != OutcomeConverged && recorder.outcome != OutcomeExhausted {
		t.Errorf("Outcome [%v] is not a normal termination", recorder.outcome)
	}
}

func TestSearchConvergence(t *test.T) {
	constant := func(mask []bool) (float64, error) { return 1, nil }

	recorder := &captureRecorder{}
	ga, err := NewGeneticAlgorithm(makeAlgorithmConfig(), constant)
	if err != nil {
		t.Fatalf("NewGeneticAlgorithm failed: %v", err)
	}
	ga.SetRecorder(recorder)

	repeat := 4
	if err := ga.Search(50, false, repeat); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if recorder.outcome != OutcomeConverged {
		t.Fatalf("Outcome [%v] is not expected value [%v]", recorder.outcome, OutcomeConverged)
	}

	// Constant fitness never improves on the baseline, so convergence
	// triggers on exactly the repeat-th generation.
	if recorder.finalStep != repeat {
		t.Errorf("Converged on step [%v], expected [%v]", recorder.finalStep, repeat)
	}
}

func TestSearchOffspringEvaluationFailure(t *test.T) {
	config := makeAlgorithmConfig()
	calls := 0
	fitFunc := func(mask []bool) (float64, error) {
		calls++
		if calls > config.PopulationSize {
			return 0, fmt.Errorf("model fitting failed")
		}
		return float64(calls), nil
	}

	recorder := &captureRecorder{}
	ga, err := NewGeneticAlgorithm(config, fitFunc)
	if err != nil {
		t.Fatalf("NewGeneticAlgorithm failed: %v", err)
	}
	ga.SetRecorder(recorder)

	if err := ga.Search(10, false, 5); err == nil {
		t.Fatalf("Search succeeded despite an unrecoverable offspring batch")
	}

	if recorder.outcome != OutcomeFailed {
		t.Errorf("Outcome [%v] is not expected value [%v]", recorder.outcome, OutcomeFailed)
	}

	// The failed step must not replace the current generation.
	if len(ga.Population) != config.PopulationSize || len(ga.Fitness) != config.PopulationSize {
		t.Errorf("Failed step altered the generation: %v candidates, %v fitness values",
			len(ga.Population), len(ga.Fitness))
	}
}

func TestSearchRecombinationParentsDistinct(t *test.T) {
	ga := makeAlgorithm(t)

	// Wrap the default recombination to assert the two parents are never
	// the same population member.
	wrapped := CutAndSplice
	orig := wrapped.Combine
	wrapped.Combine = func(rng *rand.Rand, p1, p2 Candidate) Candidate {
		if &p1[0] == &p2[0] {
			t.Errorf("Recombination received the same candidate as both parents")
		}
		return orig(rng, p1, p2)
	}

	if err := ga.SetOperators([]Operator{wrapped, RandomPermutation}); err != nil {
		t.Fatalf("SetOperators failed: %v", err)
	}

	if err := ga.Search(10, false, 5); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
}
