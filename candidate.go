package genetic_screen

import (
	"math/rand"
	str "strings"

	cp "github.com/jinzhu/copier"
)

// A Candidate is one parameter set in the search space: a fixed-length
// inclusion mask over the model's dimensions. Candidates are never mutated
// in place; operators always return a fresh one.
type Candidate []bool

func NewRandomCandidate(rng *rand.Rand, dimension int) Candidate {
	c := make(Candidate, dimension)
	for i := range c {
		c[i] = rng.Intn(2) == 1
	}
	return c
}

// NewCandidateFromGenotype parses the string form produced by Genotype,
// e.g. "10101". Anything other than '1' is treated as excluded.
func NewCandidateFromGenotype(genotype string) Candidate {
	c := make(Candidate, len(genotype))
	for i, r := range genotype {
		c[i] = r == '1'
	}
	return c
}

func (c Candidate) Clone() Candidate {
	var clone Candidate
	cp.Copy(&clone, &c)
	return clone
}

// Genotype renders the mask as a '0'/'1' string. Used for persistence and
// for string-metric diversity comparisons.
func (c Candidate) Genotype() string {
	var sb str.Builder
	sb.Grow(len(c))
	for _, included := range c {
		if included {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Included returns the count of selected dimensions.
func (c Candidate) Included() int {
	count := 0
	for _, in := range c {
		if in {
			count++
		}
	}
	return count
}

func (c Candidate) Equal(other Candidate) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}
