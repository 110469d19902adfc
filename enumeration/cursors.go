package enumeration

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// permutationCursor walks every arrangement of the positions 0..n-1 in ascending lexicographic order. It operates on
// positions only; generators project positions back onto their elements when an arrangement is produced.
type permutationCursor struct {
	// indices describes the next arrangement to be produced. It is nil once the cursor is exhausted.
	indices []int
}

// newPermutationCursor creates a permutationCursor positioned at the identity arrangement of n positions. An empty
// position list yields no arrangements at all.
func newPermutationCursor(n int) permutationCursor {
	// Zero positions produce zero arrangements, so the cursor starts exhausted.
	if n <= 0 {
		return permutationCursor{}
	}

	// Start at the identity arrangement
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return permutationCursor{indices: indices}
}

// restorePermutationCursor creates a permutationCursor over n positions from a PermutationCheckpoint.
// Returns an error if the checkpoint does not describe an arrangement of n positions.
func restorePermutationCursor(n int, checkpoint PermutationCheckpoint) (permutationCursor, error) {
	// Exhausted checkpoints and empty position lists restore to an exhausted cursor.
	if checkpoint.Exhausted || n <= 0 {
		return permutationCursor{}, nil
	}

	// Verify the arrangement covers every position exactly once.
	if len(checkpoint.Indices) != n {
		return permutationCursor{}, invalidArgumentf("permutation checkpoint holds %d indices, expected %d", len(checkpoint.Indices), n)
	}
	seen := make([]bool, n)
	for _, index := range checkpoint.Indices {
		if index < 0 || index >= n || seen[index] {
			return permutationCursor{}, invalidArgumentf("permutation checkpoint %v is not an arrangement of %d positions", checkpoint.Indices, n)
		}
		seen[index] = true
	}
	return permutationCursor{indices: slices.Clone(checkpoint.Indices)}, nil
}

// hasNext indicates whether the cursor has an arrangement left to produce.
func (c *permutationCursor) hasNext() bool {
	return c.indices != nil
}

// next returns the pending arrangement and advances the cursor to its lexicographic successor.
func (c *permutationCursor) next() ([]int, error) {
	if c.indices == nil {
		return nil, errors.WithStack(ErrExhausted)
	}

	// Capture the pending arrangement before mutating our state in place.
	current := slices.Clone(c.indices)

	// Find the rightmost position which is smaller than its right neighbour. If none exists, the pending arrangement
	// was the last one in lexicographic order.
	i := len(c.indices) - 2
	for i >= 0 && c.indices[i] >= c.indices[i+1] {
		i--
	}
	if i < 0 {
		c.indices = nil
		return current, nil
	}

	// Swap it with the rightmost value larger than it, then reverse the descending suffix.
	j := len(c.indices) - 1
	for c.indices[j] <= c.indices[i] {
		j--
	}
	c.indices[i], c.indices[j] = c.indices[j], c.indices[i]
	slices.Reverse(c.indices[i+1:])
	return current, nil
}

// checkpoint returns a PermutationCheckpoint describing the pending arrangement.
func (c *permutationCursor) checkpoint() PermutationCheckpoint {
	if c.indices == nil {
		return PermutationCheckpoint{Exhausted: true}
	}
	return PermutationCheckpoint{Indices: slices.Clone(c.indices)}
}

// combinationCursor walks every ascending k-tuple of the positions 0..n-1 in combinadic order. Its state is always
// the tuple the next call to next will produce.
type combinationCursor struct {
	// n describes the amount of positions to choose from.
	n int
	// indices describes the next combination to be produced. It is nil once the cursor is exhausted.
	indices []int
}

// newCombinationCursor creates a combinationCursor positioned at (0, 1, ..., k-1). Callers are responsible for
// ensuring 1 <= k <= n.
func newCombinationCursor(n int, k int) combinationCursor {
	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}
	return combinationCursor{n: n, indices: indices}
}

// restoreCombinationCursor creates a combinationCursor choosing k of n positions from a CombinationCheckpoint.
// Returns an error if the checkpoint does not describe an ascending k-tuple of valid positions.
func restoreCombinationCursor(n int, k int, checkpoint CombinationCheckpoint) (combinationCursor, error) {
	if checkpoint.Exhausted {
		return combinationCursor{n: n}, nil
	}
	if err := validateCombination(n, k, checkpoint.Indices); err != nil {
		return combinationCursor{}, err
	}
	return combinationCursor{n: n, indices: slices.Clone(checkpoint.Indices)}, nil
}

// validateCombination verifies that indices is a strictly ascending k-tuple of positions in [0, n).
func validateCombination(n int, k int, indices []int) error {
	if len(indices) != k {
		return invalidArgumentf("combination %v holds %d indices, expected %d", indices, len(indices), k)
	}
	for i, index := range indices {
		if index < 0 || index >= n {
			return invalidArgumentf("combination %v references position %d outside of [0, %d)", indices, index, n)
		}
		if i > 0 && indices[i-1] >= index {
			return invalidArgumentf("combination %v is not strictly ascending", indices)
		}
	}
	return nil
}

// hasNext indicates whether the cursor has a combination left to produce.
func (c *combinationCursor) hasNext() bool {
	return c.indices != nil
}

// next returns the pending combination and advances the cursor to its combinadic successor.
func (c *combinationCursor) next() ([]int, error) {
	if c.indices == nil {
		return nil, errors.WithStack(ErrExhausted)
	}

	// Capture the pending combination before mutating our state in place.
	current := slices.Clone(c.indices)

	// Find the rightmost index which has not reached its maximum value of n-k+i.
	k := len(c.indices)
	i := k - 1
	for i >= 0 && c.indices[i] == c.n-k+i {
		i--
	}
	if i < 0 {
		c.indices = nil
		return current, nil
	}

	// Increment it and reset every index to its right to the smallest ascending values.
	c.indices[i]++
	for j := i + 1; j < k; j++ {
		c.indices[j] = c.indices[j-1] + 1
	}
	return current, nil
}

// checkpoint returns a CombinationCheckpoint describing the pending combination.
func (c *combinationCursor) checkpoint() CombinationCheckpoint {
	if c.indices == nil {
		return CombinationCheckpoint{Exhausted: true}
	}
	return CombinationCheckpoint{Indices: slices.Clone(c.indices)}
}
