package enumeration

import (
	"iter"

	"github.com/crytic/seqenum/utils"
)

// PermutationGenerator lazily enumerates every arrangement of a list of elements, in ascending lexicographic order of
// the arrangements' positions. Elements are addressed by position only, so duplicate values are treated as distinct.
// A PermutationGenerator is a single mutable cursor and is not safe for concurrent use.
type PermutationGenerator[T any] struct {
	// elements describes the list being arranged. It is borrowed from the caller and never mutated.
	elements []T

	// cursor tracks the pending arrangement of positions.
	cursor permutationCursor
}

// NewPermutationGenerator creates a PermutationGenerator positioned at the identity arrangement of elements. An empty
// list produces no arrangements.
func NewPermutationGenerator[T any](elements []T) *PermutationGenerator[T] {
	return &PermutationGenerator[T]{
		elements: elements,
		cursor:   newPermutationCursor(len(elements)),
	}
}

// ResumePermutationGenerator creates a PermutationGenerator over elements whose remaining output is exactly the tail of
// the enumeration starting at the provided checkpoint.
// Returns an error wrapping ErrInvalidArgument if the checkpoint is not an arrangement of len(elements) positions.
func ResumePermutationGenerator[T any](elements []T, checkpoint PermutationCheckpoint) (*PermutationGenerator[T], error) {
	cursor, err := restorePermutationCursor(len(elements), checkpoint)
	if err != nil {
		return nil, err
	}
	return &PermutationGenerator[T]{
		elements: elements,
		cursor:   cursor,
	}, nil
}

// HasNext indicates whether at least one arrangement remains.
func (g *PermutationGenerator[T]) HasNext() bool {
	return g.cursor.hasNext()
}

// NextIndices returns the next arrangement as positions into the generator's elements and advances the generator.
// Returns ErrExhausted if no arrangement remains.
func (g *PermutationGenerator[T]) NextIndices() ([]int, error) {
	return g.cursor.next()
}

// Next returns the next arrangement of the generator's elements and advances the generator.
// Returns ErrExhausted if no arrangement remains.
func (g *PermutationGenerator[T]) Next() ([]T, error) {
	indices, err := g.cursor.next()
	if err != nil {
		return nil, err
	}
	return projectIndices(g.elements, indices), nil
}

// Checkpoint returns a snapshot of the generator's position which can be provided to ResumePermutationGenerator.
func (g *PermutationGenerator[T]) Checkpoint() PermutationCheckpoint {
	return g.cursor.checkpoint()
}

// All returns an iterator over the remaining arrangements. Iterating advances the generator.
func (g *PermutationGenerator[T]) All() iter.Seq[[]T] {
	return drain(g.HasNext, g.Next)
}

// projectIndices maps a list of positions back onto the elements they address.
func projectIndices[T any](elements []T, indices []int) []T {
	return utils.SliceSelect(indices, func(index int) T {
		return elements[index]
	})
}

// drain builds an iterator which pulls items through next until hasNext reports exhaustion or the consumer stops.
func drain[T any](hasNext func() bool, next func() ([]T, error)) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		for hasNext() {
			item, err := next()
			if err != nil || !yield(item) {
				return
			}
		}
	}
}
