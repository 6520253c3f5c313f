package genetic_screen

import (
	"math/rand"
)

type OperatorArity int

const (
	// UnaryOperator takes one parent and produces one child.
	UnaryOperator OperatorArity = iota + 1
	// BinaryOperator takes two distinct parents and produces one child.
	BinaryOperator
)

// Operator is one genetic operation. The arity is declared up front so the
// generation loop knows how many parents to draw; it never inspects the
// function values themselves.
type Operator struct {
	Name    string
	Arity   OperatorArity
	Mutate  func(rng *rand.Rand, parent Candidate) Candidate
	Combine func(rng *rand.Rand, p1, p2 Candidate) Candidate
}

// CutAndSplice is single-point crossover: the child takes p1 up to a random
// cut and p2 from the cut onward. Callers must not pass the same population
// member as both parents.
var CutAndSplice = Operator{
	Name:    "cut_and_splice",
	Arity:   BinaryOperator,
	Combine: cutAndSplice,
}

// RandomPermutation shuffles the parent's values into a new order. The
// child keeps the same number of included dimensions.
var RandomPermutation = Operator{
	Name:   "random_permutation",
	Arity:  UnaryOperator,
	Mutate: randomPermutation,
}

func DefaultOperators() []Operator {
	return []Operator{CutAndSplice, RandomPermutation}
}

func cutAndSplice(rng *rand.Rand, p1, p2 Candidate) Candidate {
	if len(p1) < 2 {
		return p1.Clone()
	}
	// Cut in [1, len-1] so both parents contribute.
	cut := 1 + rng.Intn(len(p1)-1)
	child := make(Candidate, len(p1))
	copy(child, p1[:cut])
	copy(child[cut:], p2[cut:])
	return child
}

func randomPermutation(rng *rand.Rand, parent Candidate) Candidate {
	child := parent.Clone()
	rng.Shuffle(len(child), func(i, j int) {
		child[i], child[j] = child[j], child[i]
	})
	return child
}
