package genetic_screen

import (
	"sort"
)

// selection draws one parent from the current population using rank-scaled
// roulette selection. Acceptance probability depends on fitness rank, not
// raw magnitude, which caps the dominance of outlier fitness values.
//
// Ranks are assigned by a stable descending sort on fitness; the candidate
// at rank r (0 = best) gets acceptance scale (n-r)/(n+2), so the worst gets
// 1/(n+2) and the best n/(n+2). Candidates are then tested in a shuffled
// order against a uniform draw. A full scan with no acceptance returns
// ok=false and the caller retries.
func (ga *GeneticAlgorithm) selection(fitness []float64) (int, bool) {
	n := len(fitness)
	order := ga.rng.Perm(n)

	ranked := make([]int, n)
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return fitness[ranked[a]] > fitness[ranked[b]]
	})

	step := 1.0 / float64(n+2)
	scale := make([]float64, n)
	for rank, idx := range ranked {
		scale[idx] = float64(n-rank) * step
	}

	for _, idx := range order {
		if scale[idx] > ga.rng.Float64() {
			return idx, true
		}
	}
	return -1, false
}

// selectParent retries selection until it accepts a candidate. Every scale
// value is positive, so this terminates with probability 1.
func (ga *GeneticAlgorithm) selectParent() int {
	for {
		if idx, ok := ga.selection(ga.Fitness); ok {
			return idx
		}
	}
}

// selectDistinctParent retries until selection accepts a candidate other
// than the population member at index first. Value-equal candidates at
// different indices are allowed.
func (ga *GeneticAlgorithm) selectDistinctParent(first int) int {
	for {
		idx := ga.selectParent()
		if idx != first {
			return idx
		}
	}
}
