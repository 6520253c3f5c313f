package genetic_screen

const DEBUG = false

// Search outcomes as recorded against a run.
const (
	OutcomeConverged = "converged"
	OutcomeExhausted = "exhausted"
	OutcomeFailed    = "eval_failed"
)
