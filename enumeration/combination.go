package enumeration

import "iter"

// CombinationGenerator lazily enumerates every subset of k elements of a list, in ascending lexicographic (combinadic)
// order of the subsets' positions. For four elements and k = 3 this yields (0,1,2), (0,1,3), (0,2,3), (1,2,3).
// A CombinationGenerator is a single mutable cursor and is not safe for concurrent use.
type CombinationGenerator[T any] struct {
	// elements describes the list being chosen from. It is borrowed from the caller and never mutated.
	elements []T

	// k describes the size of each combination.
	k int

	// cursor tracks the pending combination of positions.
	cursor combinationCursor
}

// NewCombinationGenerator creates a CombinationGenerator over every subset of k elements.
// Returns an error wrapping ErrInvalidArgument if elements is empty or k is outside of [1, len(elements)].
func NewCombinationGenerator[T any](elements []T, k int) (*CombinationGenerator[T], error) {
	if err := validateCombinationParameters(len(elements), k); err != nil {
		return nil, err
	}
	return &CombinationGenerator[T]{
		elements: elements,
		k:        k,
		cursor:   newCombinationCursor(len(elements), k),
	}, nil
}

// ResumeCombinationGenerator creates a CombinationGenerator whose first call to Next reproduces the combination the
// checkpoint points at, then continues in the same order.
// Returns an error wrapping ErrInvalidArgument if the parameters are invalid or the checkpoint is not an ascending
// tuple of k positions.
func ResumeCombinationGenerator[T any](elements []T, k int, checkpoint CombinationCheckpoint) (*CombinationGenerator[T], error) {
	if err := validateCombinationParameters(len(elements), k); err != nil {
		return nil, err
	}
	cursor, err := restoreCombinationCursor(len(elements), k, checkpoint)
	if err != nil {
		return nil, err
	}
	return &CombinationGenerator[T]{
		elements: elements,
		k:        k,
		cursor:   cursor,
	}, nil
}

// validateCombinationParameters verifies a combination size k can be chosen from n elements.
func validateCombinationParameters(n int, k int) error {
	if n == 0 {
		return invalidArgumentf("cannot choose combinations from an empty list")
	}
	if k <= 0 {
		return invalidArgumentf("combination size must be positive, got %d", k)
	}
	if k > n {
		return invalidArgumentf("combination size %d exceeds the number of elements %d", k, n)
	}
	return nil
}

// Size returns the size of each combination produced.
func (g *CombinationGenerator[T]) Size() int {
	return g.k
}

// HasNext indicates whether at least one combination remains.
func (g *CombinationGenerator[T]) HasNext() bool {
	return g.cursor.hasNext()
}

// NextIndices returns the next combination as ascending positions into the generator's elements and advances the
// generator. Returns ErrExhausted if no combination remains.
func (g *CombinationGenerator[T]) NextIndices() ([]int, error) {
	return g.cursor.next()
}

// Next returns the elements of the next combination, ordered by position, and advances the generator.
// Returns ErrExhausted if no combination remains.
func (g *CombinationGenerator[T]) Next() ([]T, error) {
	indices, err := g.cursor.next()
	if err != nil {
		return nil, err
	}
	return projectIndices(g.elements, indices), nil
}

// Checkpoint returns the combination the next call to Next will produce, which can be provided to
// ResumeCombinationGenerator.
func (g *CombinationGenerator[T]) Checkpoint() CombinationCheckpoint {
	return g.cursor.checkpoint()
}

// All returns an iterator over the remaining combinations. Iterating advances the generator.
func (g *CombinationGenerator[T]) All() iter.Seq[[]T] {
	return drain(g.HasNext, g.Next)
}
