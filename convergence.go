package genetic_screen

// Convergence tracks the best fitness seen across generations and signals
// termination once it stops improving. State is scoped to one search; each
// Search call builds a fresh tracker.
type Convergence struct {
	tracking bool
	best     float64
	count    int
}

func NewConvergence() *Convergence {
	return &Convergence{}
}

// NoProgress is called once per generation with the current fitness slice.
// It returns true when the best fitness has failed to strictly improve for
// repeat consecutive calls. The first call only records the baseline.
func (c *Convergence) NoProgress(fitness []float64, repeat int) bool {
	best := maxFitness(fitness)
	if !c.tracking || best > c.best {
		c.tracking = true
		c.best = best
		c.count = 0
		return false
	}
	c.count++
	return c.count >= repeat
}

func maxFitness(fitness []float64) float64 {
	best := fitness[0]
	for _, fit := range fitness[1:] {
		if fit > best {
			best = fit
		}
	}
	return best
}
