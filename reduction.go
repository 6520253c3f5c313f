package genetic_screen

import (
	"fmt"
	"log"
	"math"
	"sort"
)

// fitnessTolerance is the rounding applied before uniqueness checks during
// population reduction. Deduplicating on rounded fitness rather than
// genotype is a cheap diversity heuristic: two candidates scoring within
// 1e-5 of each other are almost always the same solution.
const fitnessTolerance = 1e5

func roundFitness(fit float64) float64 {
	if math.IsInf(fit, 0) {
		return fit
	}
	return math.Round(fit*fitnessTolerance) / fitnessTolerance
}

// populationReduction merges the current generation with its offspring and
// truncates back to PopulationSize: stable sort by fitness descending, then
// walk the pool accepting only candidates whose rounded fitness has not
// been accepted yet. The best candidate is always accepted first, so the
// best-so-far fitness never regresses.
//
// If duplicate fitness values exhaust the pool before the population is
// full, the remainder is topped up with fresh random candidates, evaluated
// immediately so population and fitness stay aligned at PopulationSize.
func (ga *GeneticAlgorithm) populationReduction(pool []Candidate, fitness []float64) error {
	order := make([]int, len(pool))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fitness[order[a]] > fitness[order[b]]
	})

	nextPopulation := make([]Candidate, 0, ga.PopulationSize)
	nextFitness := make([]float64, 0, ga.PopulationSize)
	unique := make(map[float64]bool, ga.PopulationSize)

	for _, idx := range order {
		if len(nextPopulation) == ga.PopulationSize {
			break
		}
		rounded := roundFitness(fitness[idx])
		if unique[rounded] {
			continue
		}
		unique[rounded] = true
		nextPopulation = append(nextPopulation, pool[idx])
		nextFitness = append(nextFitness, fitness[idx])
	}

	if missing := ga.PopulationSize - len(nextPopulation); missing > 0 {
		log.Printf("Reduction pool collapsed to %d unique fitness values. Topping up with %d random candidates.",
			len(nextPopulation), missing)
		fill := NewRandomPopulation(ga.rng, missing, ga.Dimension)
		fillFit, err := ga.eval.Evaluate(fill)
		if err != nil {
			return fmt.Errorf("failed to evaluate top-up candidates: %w", err)
		}
		nextPopulation = append(nextPopulation, fill...)
		nextFitness = append(nextFitness, fillFit...)

		// A top-up candidate can outscore an accepted survivor. Restore
		// descending fitness order so the best candidate stays at index 0.
		reorder := make([]int, len(nextPopulation))
		for i := range reorder {
			reorder[i] = i
		}
		sort.SliceStable(reorder, func(a, b int) bool {
			return nextFitness[reorder[a]] > nextFitness[reorder[b]]
		})
		sortedPopulation := make([]Candidate, len(nextPopulation))
		sortedFitness := make([]float64, len(nextFitness))
		for i, idx := range reorder {
			sortedPopulation[i] = nextPopulation[idx]
			sortedFitness[i] = nextFitness[idx]
		}
		nextPopulation = sortedPopulation
		nextFitness = sortedFitness
	}

	ga.Population = nextPopulation
	ga.Fitness = nextFitness
	return nil
}
