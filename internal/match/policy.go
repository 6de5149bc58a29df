// Package match pairs scorefile variants with target genome variants,
// labels the best candidate per scorefile row and filters scores by overlap.
package match

import "runtime"

// Policy holds the labelling options. It is built once from the command
// line and passed by value.
type Policy struct {
	RemoveAmbiguous    bool // drop candidates on strand-ambiguous A/T or C/G targets
	RemoveMultiallelic bool // drop candidates on multiallelic target sites
	SkipFlip           bool // never consider strand-flipped matches
	KeepFirstMatch     bool // keep the first of several equally ranked candidates
}

// DefaultPolicy returns the conservative default policy.
func DefaultPolicy() Policy {
	return Policy{
		RemoveAmbiguous:    true,
		RemoveMultiallelic: true,
	}
}

// Engine configures the matching worker pool.
type Engine struct {
	// Threads bounds the number of chromosomes matched concurrently.
	// If 0, runtime.NumCPU() is used.
	Threads int
}

func (e Engine) workers() int {
	if e.Threads <= 0 {
		return runtime.NumCPU()
	}
	return e.Threads
}
