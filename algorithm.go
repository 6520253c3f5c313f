package genetic_screen

import (
	"fmt"
	"log"
	"math/rand"
	"time"
)

// AlgorithmConfig carries the construction parameters for the optimizer.
type AlgorithmConfig struct {
	PopulationSize int   `toml:"population_size"`
	Dimension      int   `toml:"dimension"`
	Seed           int64 `toml:"seed"`
	Workers        int   `toml:"workers"`
}

// GeneticAlgorithm searches the space of boolean parameter masks for the
// mask maximizing a user-supplied fitness function. Population and Fitness
// are index-aligned and replaced wholesale each generation; after Search
// returns, Population[0]/Fitness[0] hold the best candidate found.
type GeneticAlgorithm struct {
	PopulationSize int
	Dimension      int
	Population     []Candidate
	Fitness        []float64
	Operators      []Operator

	eval     *evaluator
	rng      *rand.Rand
	recorder Recorder
}

// NewGeneticAlgorithm validates the config and builds an optimizer with a
// random starting population and the default operator set. A Seed of 0
// seeds from the clock. The RNG is owned by the instance, so a non-zero
// seed makes the whole search reproducible.
func NewGeneticAlgorithm(config *AlgorithmConfig, fitFunc FitFunc) (*GeneticAlgorithm, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.PopulationSize < 2 {
		return nil, fmt.Errorf("population size must be at least 2, got %d", config.PopulationSize)
	}
	if config.Dimension < 1 {
		return nil, fmt.Errorf("dimension must be positive, got %d", config.Dimension)
	}
	if fitFunc == nil {
		return nil, fmt.Errorf("a fitness function must be supplied")
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	return &GeneticAlgorithm{
		PopulationSize: config.PopulationSize,
		Dimension:      config.Dimension,
		Population:     NewRandomPopulation(rng, config.PopulationSize, config.Dimension),
		Operators:      DefaultOperators(),
		eval:           newEvaluator(fitFunc, config.Workers),
		rng:            rng,
	}, nil
}

// SetPopulation replaces the starting population with a caller-supplied
// one. Must be called before Search.
func (ga *GeneticAlgorithm) SetPopulation(population []Candidate) error {
	if len(population) != ga.PopulationSize {
		return fmt.Errorf("population has %d candidates, want %d", len(population), ga.PopulationSize)
	}
	for i, c := range population {
		if len(c) != ga.Dimension {
			return fmt.Errorf("candidate %d has dimension %d, want %d", i, len(c), ga.Dimension)
		}
	}
	ga.Population = population
	ga.Fitness = nil
	return nil
}

// SetOperators replaces the default operator set.
func (ga *GeneticAlgorithm) SetOperators(operators []Operator) error {
	if len(operators) == 0 {
		return fmt.Errorf("operator list cannot be empty")
	}
	for _, op := range operators {
		switch op.Arity {
		case UnaryOperator:
			if op.Mutate == nil {
				return fmt.Errorf("unary operator %q has no Mutate function", op.Name)
			}
		case BinaryOperator:
			if op.Combine == nil {
				return fmt.Errorf("binary operator %q has no Combine function", op.Name)
			}
		default:
			return fmt.Errorf("operator %q has unknown arity %d", op.Name, op.Arity)
		}
	}
	ga.Operators = operators
	return nil
}

// SetRecorder attaches an observer for per-generation metrics and the final
// outcome. Recorder failures are logged, never fatal to the search.
func (ga *GeneticAlgorithm) SetRecorder(recorder Recorder) {
	ga.recorder = recorder
}

// Search runs the generational loop: evaluate, breed a full offspring
// generation, evaluate it, merge and reduce, check convergence. It stops on
// convergence, step budget exhaustion, or an unrecoverable offspring
// evaluation failure.
func (ga *GeneticAlgorithm) Search(steps int, verbose bool, repeat int) error {
	if steps < 1 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	if repeat < 1 {
		return fmt.Errorf("repeat must be positive, got %d", repeat)
	}

	fitness, err := ga.eval.Evaluate(ga.Population)
	if err != nil {
		return fmt.Errorf("failed to evaluate starting population: %w", err)
	}
	ga.Fitness = fitness
	ga.report(0, verbose)

	converge := NewConvergence()
	converge.NoProgress(ga.Fitness, repeat)

	for step := 1; step <= steps; step++ {
		offspring := ga.newGeneration()

		offspringFit, err := ga.eval.Evaluate(offspring)
		if err != nil {
			ga.finish(OutcomeFailed, step)
			return fmt.Errorf("offspring evaluation failed on step %d: %w", step, err)
		}

		pool := make([]Candidate, 0, len(ga.Population)+len(offspring))
		pool = append(pool, ga.Population...)
		pool = append(pool, offspring...)
		poolFit := make([]float64, 0, len(ga.Fitness)+len(offspringFit))
		poolFit = append(poolFit, ga.Fitness...)
		poolFit = append(poolFit, offspringFit...)

		if err := ga.populationReduction(pool, poolFit); err != nil {
			ga.finish(OutcomeFailed, step)
			return fmt.Errorf("population reduction failed on step %d: %w", step, err)
		}

		ga.report(step, verbose)

		if converge.NoProgress(ga.Fitness, repeat) {
			log.Printf("CONVERGED on step %d", step)
			ga.finish(OutcomeConverged, step)
			return nil
		}
	}

	ga.finish(OutcomeExhausted, steps)
	return nil
}

// newGeneration breeds a full offspring generation. The operator for each
// slot is drawn uniformly from the operator list; parents come from
// rank-scaled selection, with binary operators guaranteed two distinct
// population members.
func (ga *GeneticAlgorithm) newGeneration() []Candidate {
	offspring := make([]Candidate, ga.PopulationSize)
	for i := range offspring {
		op := ga.Operators[ga.rng.Intn(len(ga.Operators))]
		p1 := ga.selectParent()

		if op.Arity == BinaryOperator {
			p2 := ga.selectDistinctParent(p1)
			offspring[i] = op.Combine(ga.rng, ga.Population[p1], ga.Population[p2])
		} else {
			offspring[i] = op.Mutate(ga.rng, ga.Population[p1])
		}
	}
	return offspring
}

func (ga *GeneticAlgorithm) report(step int, verbose bool) {
	if !verbose && ga.recorder == nil {
		return
	}
	metrics := ComputeMetrics(ga.Population, ga.Fitness)
	if verbose {
		log.Printf("new generation, current best fitness: %.3f mean fitness: %.3f, worst fitness: %.3f",
			metrics.BestFitness, metrics.MeanFitness, metrics.WorstFitness)
	}
	if ga.recorder != nil {
		if err := ga.recorder.RecordGeneration(step, metrics); err != nil {
			log.Printf("Warning: failed to record generation %d: %v", step, err)
		}
	}
}

func (ga *GeneticAlgorithm) finish(outcome string, step int) {
	if ga.recorder == nil {
		return
	}
	if err := ga.recorder.RecordOutcome(outcome, step, ga.Population, ga.Fitness); err != nil {
		log.Printf("Warning: failed to record search outcome: %v", err)
	}
}
