package genetic_screen

// Recorder observes a search: one call per generation (step 0 is the
// evaluated starting population) and one call when the search terminates.
// Implementations must not assume ownership of the population slice.
type Recorder interface {
	RecordGeneration(step int, metrics *PopulationMetrics) error
	RecordOutcome(outcome string, step int, population []Candidate, fitness []float64) error
}
