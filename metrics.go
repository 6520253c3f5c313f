package genetic_screen

import (
	"math"

	sm "github.com/xrash/smetrics"
)

// PopulationMetrics holds aggregate fitness and diversity metrics for one
// generation.
type PopulationMetrics struct {
	BestFitness  float64
	MeanFitness  float64
	WorstFitness float64

	// UniqueGenotypes counts distinct masks in the population.
	UniqueGenotypes int
	// MeanSimilarity is the mean pairwise Jaro-Winkler similarity of the
	// genotype strings, in [0, 1]. 1 means the population has collapsed to
	// one mask.
	MeanSimilarity float64
}

// ComputeMetrics aggregates fitness and genotype-diversity metrics for an
// aligned (population, fitness) pair. A -Inf fitness from a failed
// candidate propagates into the mean and worst, same as the raw values the
// caller holds.
func ComputeMetrics(population []Candidate, fitness []float64) *PopulationMetrics {
	m := &PopulationMetrics{
		BestFitness:  math.Inf(-1),
		WorstFitness: math.Inf(1),
	}

	var sum float64
	for _, fit := range fitness {
		sum += fit
		if fit > m.BestFitness {
			m.BestFitness = fit
		}
		if fit < m.WorstFitness {
			m.WorstFitness = fit
		}
	}
	if len(fitness) > 0 {
		m.MeanFitness = sum / float64(len(fitness))
	}

	genotypes := make([]string, len(population))
	seen := make(map[string]bool, len(population))
	for i, c := range population {
		genotypes[i] = c.Genotype()
		seen[genotypes[i]] = true
	}
	m.UniqueGenotypes = len(seen)

	if len(genotypes) > 1 {
		var total float64
		pairs := 0
		for i := 0; i < len(genotypes); i++ {
			for j := i + 1; j < len(genotypes); j++ {
				total += sm.JaroWinkler(genotypes[i], genotypes[j], 0.7, 4)
				pairs++
			}
		}
		m.MeanSimilarity = total / float64(pairs)
	} else if len(genotypes) == 1 {
		m.MeanSimilarity = 1
	}

	return m
}
