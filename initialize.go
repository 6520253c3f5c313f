package genetic_screen

import (
	"math/rand"
)

// NewRandomPopulation synthesizes the starting generation: populationSize
// candidates with each position drawn independently from {0, 1}. Candidates
// are not required to be distinct.
func NewRandomPopulation(rng *rand.Rand, populationSize, dimension int) []Candidate {
	population := make([]Candidate, populationSize)
	for i := range population {
		population[i] = NewRandomCandidate(rng, dimension)
	}
	return population
}
