package enumeration

import (
	"iter"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// SequenceGenerator lazily enumerates every ordered, non-repeating arrangement of 1 to maxLength elements of a list.
// Lengths are produced in increasing order. Within a length L, every combination of L positions is taken in
// combinadic order and every arrangement of that combination is produced before moving to the next one.
// A SequenceGenerator is a single mutable cursor and is not safe for concurrent use.
type SequenceGenerator[T any] struct {
	// elements describes the list being arranged. It is borrowed from the caller and never mutated.
	elements []T

	// maxLength describes the longest arrangement this generator will produce.
	maxLength int

	// length describes the arrangement length currently being produced.
	length int

	// combinations tracks the next combination of length positions to arrange.
	combinations combinationCursor

	// currentCombination describes the ascending positions currently being arranged, or nil if none is in progress.
	currentCombination []int

	// permutations tracks the pending arrangement of currentCombination.
	permutations permutationCursor

	// totalIterated counts the sequences produced by this generator instance.
	totalIterated uint64
}

// NewSequenceGenerator creates a SequenceGenerator which produces arrangements of every length up to the number of
// elements. Returns an error wrapping ErrInvalidArgument if elements is empty.
func NewSequenceGenerator[T any](elements []T) (*SequenceGenerator[T], error) {
	return NewBoundedSequenceGenerator(elements, len(elements))
}

// NewBoundedSequenceGenerator creates a SequenceGenerator which produces arrangements of 1 to maxLength elements.
// Returns an error wrapping ErrInvalidArgument if elements is empty or maxLength is outside of [1, len(elements)].
func NewBoundedSequenceGenerator[T any](elements []T, maxLength int) (*SequenceGenerator[T], error) {
	if err := validateSequenceParameters(len(elements), maxLength); err != nil {
		return nil, err
	}

	// Start at the first combination of a single element, then position on its first arrangement.
	g := &SequenceGenerator[T]{
		elements:     elements,
		maxLength:    maxLength,
		length:       1,
		combinations: newCombinationCursor(len(elements), 1),
	}
	g.advance()
	return g, nil
}

// ResumeSequenceGenerator creates a SequenceGenerator which continues the enumeration described by a checkpoint. The
// maxLength provided may differ from the one in effect when the checkpoint was captured: if it does not exceed the
// length level already completed at that time, nothing remains to be produced. Otherwise the level in progress is
// finished and longer levels follow, up to maxLength.
// Returns an error wrapping ErrInvalidArgument if the parameters are invalid or the checkpoint is malformed.
func ResumeSequenceGenerator[T any](elements []T, maxLength int, checkpoint SequenceCheckpoint) (*SequenceGenerator[T], error) {
	n := len(elements)
	if err := validateSequenceParameters(n, maxLength); err != nil {
		return nil, err
	}

	// Verify the length level is one that could exist for this list.
	if checkpoint.Length < 1 || checkpoint.Length > n {
		return nil, invalidArgumentf("sequence checkpoint length %d is outside of [1, %d]", checkpoint.Length, n)
	}

	// Restore our combination cursor for the level in progress.
	combinations, err := restoreCombinationCursor(n, checkpoint.Length, checkpoint.Combination)
	if err != nil {
		return nil, err
	}

	// Restore the combination being arranged along with its permutation cursor, if any.
	var currentCombination []int
	permutations := permutationCursor{}
	if len(checkpoint.CurrentCombination) > 0 {
		if err = validateCombination(n, checkpoint.Length, checkpoint.CurrentCombination); err != nil {
			return nil, err
		}

		// The combination cursor always points past the combination being arranged.
		if !checkpoint.Combination.Exhausted && slices.Compare(checkpoint.CurrentCombination, checkpoint.Combination.Indices) >= 0 {
			return nil, invalidArgumentf("sequence checkpoint combination %v does not precede pending combination %v",
				checkpoint.CurrentCombination, checkpoint.Combination.Indices)
		}
		currentCombination = slices.Clone(checkpoint.CurrentCombination)
		permutations, err = restorePermutationCursor(checkpoint.Length, checkpoint.Permutation)
		if err != nil {
			return nil, err
		}
	} else if !checkpoint.Permutation.Exhausted {
		return nil, invalidArgumentf("sequence checkpoint has a pending permutation but no combination in progress")
	}

	g := &SequenceGenerator[T]{
		elements:           elements,
		maxLength:          maxLength,
		length:             checkpoint.Length,
		combinations:       combinations,
		currentCombination: currentCombination,
		permutations:       permutations,
	}

	// If the new bound does not go past the level already completed, there is nothing left to produce. We keep the
	// restored cursors so the generator reports the same checkpoint it was resumed from.
	if maxLength <= checkpoint.CompletedLength() {
		return g, nil
	}

	// Otherwise, position on the next pending arrangement, moving on to longer levels if needed.
	g.advance()
	return g, nil
}

// validateSequenceParameters verifies arrangements of up to maxLength elements can be drawn from n elements.
func validateSequenceParameters(n int, maxLength int) error {
	if n == 0 {
		return invalidArgumentf("cannot generate sequences from an empty list")
	}
	if maxLength <= 0 {
		return invalidArgumentf("maximum sequence length must be positive, got %d", maxLength)
	}
	if maxLength > n {
		return invalidArgumentf("maximum sequence length %d exceeds the number of elements %d", maxLength, n)
	}
	return nil
}

// advance moves the generator's cursors forward until an arrangement is pending or every level up to maxLength has
// been exhausted. Advancing eagerly keeps HasNext free of side effects.
func (g *SequenceGenerator[T]) advance() {
	for !g.permutations.hasNext() {
		// If the current level has combinations left, begin arranging the next one.
		if g.combinations.hasNext() {
			// The cursor was checked above, so this cannot fail.
			g.currentCombination, _ = g.combinations.next()
			g.permutations = newPermutationCursor(g.length)
			continue
		}

		// The current level is complete. Stop if it was the last one, otherwise move on to the next length.
		if g.length >= g.maxLength {
			return
		}
		g.length++
		g.combinations = newCombinationCursor(len(g.elements), g.length)
		g.currentCombination = nil
	}
}

// MaxLength returns the longest arrangement length this generator produces.
func (g *SequenceGenerator[T]) MaxLength() int {
	return g.maxLength
}

// HasNext indicates whether at least one arrangement remains.
func (g *SequenceGenerator[T]) HasNext() bool {
	return g.permutations.hasNext() && g.length <= g.maxLength
}

// NextIndices returns the next arrangement as positions into the generator's elements and advances the generator.
// Returns ErrExhausted if no arrangement remains.
func (g *SequenceGenerator[T]) NextIndices() ([]int, error) {
	if !g.HasNext() {
		return nil, errors.WithStack(ErrExhausted)
	}

	// Obtain the pending arrangement of our current combination and map it onto element positions.
	arrangement, err := g.permutations.next()
	if err != nil {
		return nil, err
	}
	positions := make([]int, len(arrangement))
	for i, index := range arrangement {
		positions[i] = g.currentCombination[index]
	}

	// Update our count and position the cursors on the following arrangement.
	g.totalIterated++
	g.advance()
	return positions, nil
}

// Next returns the next arrangement of the generator's elements and advances the generator.
// Returns ErrExhausted if no arrangement remains.
func (g *SequenceGenerator[T]) Next() ([]T, error) {
	positions, err := g.NextIndices()
	if err != nil {
		return nil, err
	}
	return projectIndices(g.elements, positions), nil
}

// CurrentIndex returns a snapshot of the generator's position which can be provided to ResumeSequenceGenerator.
func (g *SequenceGenerator[T]) CurrentIndex() SequenceCheckpoint {
	return SequenceCheckpoint{
		Length:             g.length,
		Combination:        g.combinations.checkpoint(),
		CurrentCombination: slices.Clone(g.currentCombination),
		Permutation:        g.permutations.checkpoint(),
	}
}

// Checkpoint is an alias of CurrentIndex.
func (g *SequenceGenerator[T]) Checkpoint() SequenceCheckpoint {
	return g.CurrentIndex()
}

// CurrentPermutationIndices returns the pending arrangement of the combination in progress, as positions into that
// combination. Returns nil if no arrangement is pending.
func (g *SequenceGenerator[T]) CurrentPermutationIndices() []int {
	return g.CurrentIndex().CurrentPermutationIndices()
}

// TotalIterated returns the amount of sequences produced by this generator instance. Generators resumed from a
// checkpoint start counting from zero.
func (g *SequenceGenerator[T]) TotalIterated() uint64 {
	return g.totalIterated
}

// All returns an iterator over the remaining arrangements. Iterating advances the generator.
func (g *SequenceGenerator[T]) All() iter.Seq[[]T] {
	return drain(g.HasNext, g.Next)
}
