package enumeration

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ErrCountOverflow is returned when the size of an enumeration space does not fit in 256 bits.
var ErrCountOverflow = errors.New("enumeration space size overflows 256 bits")

// PermutationCount returns P(n, k) = n! / (n-k)!, the amount of ordered arrangements of k out of n elements.
// Returns an error wrapping ErrInvalidArgument if k is outside of [0, n], or ErrCountOverflow if the result does not fit
// in 256 bits.
func PermutationCount(n int, k int) (*uint256.Int, error) {
	if n < 0 || k < 0 || k > n {
		return nil, invalidArgumentf("cannot arrange %d out of %d elements", k, n)
	}

	// Multiply the k largest factors of n!
	result := uint256.NewInt(1)
	for i := n - k + 1; i <= n; i++ {
		var overflow bool
		result, overflow = new(uint256.Int).MulOverflow(result, uint256.NewInt(uint64(i)))
		if overflow {
			return nil, errors.Wrapf(ErrCountOverflow, "P(%d, %d)", n, k)
		}
	}
	return result, nil
}

// CombinationCount returns C(n, k), the amount of subsets of k out of n elements.
// Returns an error wrapping ErrInvalidArgument if k is outside of [0, n], or ErrCountOverflow if an intermediate
// product does not fit in 256 bits.
func CombinationCount(n int, k int) (*uint256.Int, error) {
	if n < 0 || k < 0 || k > n {
		return nil, invalidArgumentf("cannot choose %d out of %d elements", k, n)
	}

	// C(n, k) = C(n, n-k), so we iterate over the smaller of the two.
	if n-k < k {
		k = n - k
	}

	// Each partial product result * (n-i) / (i+1) is itself a binomial coefficient, so the division is exact.
	result := uint256.NewInt(1)
	for i := 0; i < k; i++ {
		product, overflow := new(uint256.Int).MulOverflow(result, uint256.NewInt(uint64(n-i)))
		if overflow {
			return nil, errors.Wrapf(ErrCountOverflow, "C(%d, %d)", n, k)
		}
		result = product.Div(product, uint256.NewInt(uint64(i+1)))
	}
	return result, nil
}

// SequenceCount returns the sum of P(n, L) for L = 1..maxLength, the amount of arrangements a SequenceGenerator over
// n elements bounded by maxLength produces.
// Returns an error wrapping ErrInvalidArgument if maxLength is outside of [0, n], or ErrCountOverflow if the result
// does not fit in 256 bits.
func SequenceCount(n int, maxLength int) (*uint256.Int, error) {
	if n < 0 || maxLength < 0 || maxLength > n {
		return nil, invalidArgumentf("cannot bound sequences of %d elements by length %d", n, maxLength)
	}

	// P(n, L) = P(n, L-1) * (n-L+1), so we build each level's count from the previous one.
	total := uint256.NewInt(0)
	level := uint256.NewInt(1)
	for length := 1; length <= maxLength; length++ {
		var overflow bool
		level, overflow = new(uint256.Int).MulOverflow(level, uint256.NewInt(uint64(n-length+1)))
		if overflow {
			return nil, errors.Wrapf(ErrCountOverflow, "P(%d, %d)", n, length)
		}
		total, overflow = new(uint256.Int).AddOverflow(total, level)
		if overflow {
			return nil, errors.Wrapf(ErrCountOverflow, "sequence count for %d elements up to length %d", n, maxLength)
		}
	}
	return total, nil
}

// LevelCounts returns P(n, L) for every L = 1..maxLength, indexed by L-1.
// Returns an error under the same conditions as SequenceCount.
func LevelCounts(n int, maxLength int) ([]*uint256.Int, error) {
	if n < 0 || maxLength < 0 || maxLength > n {
		return nil, invalidArgumentf("cannot bound sequences of %d elements by length %d", n, maxLength)
	}
	counts := make([]*uint256.Int, 0, maxLength)
	for length := 1; length <= maxLength; length++ {
		count, err := PermutationCount(n, length)
		if err != nil {
			return nil, err
		}
		counts = append(counts, count)
	}
	return counts, nil
}
