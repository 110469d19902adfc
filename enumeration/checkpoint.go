package enumeration

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// PermutationCheckpoint describes the position of a PermutationGenerator: the arrangement of positions the next call
// to Next will produce. Checkpoints are plain data and remain valid for any generator built over a list of the same
// length.
type PermutationCheckpoint struct {
	// Indices describes the pending arrangement as a list of positions into the generator's elements. It is empty
	// when Exhausted is set.
	Indices []int `json:"indices,omitempty"`

	// Exhausted indicates that no arrangements remain.
	Exhausted bool `json:"exhausted,omitempty"`
}

// Clone returns a deep copy of the PermutationCheckpoint.
func (c PermutationCheckpoint) Clone() PermutationCheckpoint {
	return PermutationCheckpoint{Indices: slices.Clone(c.Indices), Exhausted: c.Exhausted}
}

// String returns a human-readable representation of the PermutationCheckpoint.
func (c PermutationCheckpoint) String() string {
	if c.Exhausted {
		return "exhausted"
	}
	return fmt.Sprintf("%v", c.Indices)
}

// CombinationCheckpoint describes the position of a CombinationGenerator: the ascending index tuple of the
// combination the next call to Next will produce.
type CombinationCheckpoint struct {
	// Indices describes the pending combination as ascending positions into the generator's elements. It is empty
	// when Exhausted is set.
	Indices []int `json:"indices,omitempty"`

	// Exhausted indicates that no combinations remain.
	Exhausted bool `json:"exhausted,omitempty"`
}

// Clone returns a deep copy of the CombinationCheckpoint.
func (c CombinationCheckpoint) Clone() CombinationCheckpoint {
	return CombinationCheckpoint{Indices: slices.Clone(c.Indices), Exhausted: c.Exhausted}
}

// String returns a human-readable representation of the CombinationCheckpoint.
func (c CombinationCheckpoint) String() string {
	if c.Exhausted {
		return "exhausted"
	}
	return fmt.Sprintf("%v", c.Indices)
}

// SequenceCheckpoint describes the position of a SequenceGenerator as the composition of the length level in
// progress, the combination cursor for that level and the permutation cursor over the combination being arranged.
type SequenceCheckpoint struct {
	// Length describes the arrangement length currently being produced.
	Length int `json:"length"`

	// Combination describes the next combination of Length positions to be arranged once CurrentCombination is
	// finished.
	Combination CombinationCheckpoint `json:"combination"`

	// CurrentCombination describes the ascending positions currently being arranged. It is empty if no combination
	// is in progress.
	CurrentCombination []int `json:"currentCombination,omitempty"`

	// Permutation describes the pending arrangement of CurrentCombination, expressed as positions into
	// CurrentCombination rather than into the generator's elements.
	Permutation PermutationCheckpoint `json:"permutation"`
}

// Clone returns a deep copy of the SequenceCheckpoint.
func (c SequenceCheckpoint) Clone() SequenceCheckpoint {
	return SequenceCheckpoint{
		Length:             c.Length,
		Combination:        c.Combination.Clone(),
		CurrentCombination: slices.Clone(c.CurrentCombination),
		Permutation:        c.Permutation.Clone(),
	}
}

// CompletedLength returns the highest arrangement length which was fully produced at the time the checkpoint was
// captured. A level is complete once both its combination and permutation cursors are exhausted.
func (c SequenceCheckpoint) CompletedLength() int {
	if c.Combination.Exhausted && c.Permutation.Exhausted {
		return c.Length
	}
	return c.Length - 1
}

// CurrentPermutationIndices returns the pending arrangement of the combination in progress, as positions into that
// combination. Returns nil if no arrangement is pending.
func (c SequenceCheckpoint) CurrentPermutationIndices() []int {
	if c.Permutation.Exhausted {
		return nil
	}
	return slices.Clone(c.Permutation.Indices)
}

// String returns a human-readable representation of the SequenceCheckpoint.
func (c SequenceCheckpoint) String() string {
	return fmt.Sprintf("length=%d combination=%v current=%v permutation=%v",
		c.Length, c.Combination, c.CurrentCombination, c.Permutation)
}
