package planning

import (
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// PlannerMetrics represents a struct tracking metrics for a Planner run. It is safe to read from any goroutine while
// the planner is running.
type PlannerMetrics struct {
	// startTime describes the time at which the metrics were created.
	startTime time.Time

	// resumedIterated describes the amount of sequences the run produced before this invocation.
	resumedIterated uint64

	// sequencesGenerated describes the amount of sequences produced during this invocation.
	sequencesGenerated atomic.Uint64

	// checkpointsSaved describes the amount of checkpoints saved during this invocation.
	checkpointsSaved atomic.Uint64

	// spaceSize describes the amount of sequences in the run's enumeration space, or nil if it is too large to count.
	spaceSize *uint256.Int
}

// newPlannerMetrics obtains a new PlannerMetrics struct for a run that already produced resumedIterated sequences out
// of spaceSize. A nil spaceSize indicates an enumeration space too large to count.
func newPlannerMetrics(resumedIterated uint64, spaceSize *uint256.Int) *PlannerMetrics {
	return &PlannerMetrics{
		startTime:       time.Now(),
		resumedIterated: resumedIterated,
		spaceSize:       spaceSize,
	}
}

// SequencesGenerated returns the amount of sequences produced during this invocation.
func (m *PlannerMetrics) SequencesGenerated() uint64 {
	return m.sequencesGenerated.Load()
}

// TotalIterated returns the cumulative amount of sequences the run produced across every resumption.
func (m *PlannerMetrics) TotalIterated() uint64 {
	return m.resumedIterated + m.sequencesGenerated.Load()
}

// CheckpointsSaved returns the amount of checkpoints saved during this invocation.
func (m *PlannerMetrics) CheckpointsSaved() uint64 {
	return m.checkpointsSaved.Load()
}

// Elapsed returns the time elapsed since this invocation started.
func (m *PlannerMetrics) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// SpaceSize returns a copy of the size of the run's enumeration space, or nil if it is too large to count.
func (m *PlannerMetrics) SpaceSize() *uint256.Int {
	if m.spaceSize == nil {
		return nil
	}
	return new(uint256.Int).Set(m.spaceSize)
}

// Progress returns the percentage of the enumeration space the run has produced, rounded to two decimal places.
// The second return value is false if the space is too large to count or empty.
func (m *PlannerMetrics) Progress() (decimal.Decimal, bool) {
	if m.spaceSize == nil || m.spaceSize.IsZero() {
		return decimal.Zero, false
	}

	// A resumed run with a smaller bound may have produced more than its current space holds.
	iterated := decimal.NewFromBigInt(uint256.NewInt(m.TotalIterated()).ToBig(), 0)
	space := decimal.NewFromBigInt(m.spaceSize.ToBig(), 0)
	percentage := iterated.Mul(decimal.NewFromInt(100)).DivRound(space, 2)
	return decimal.Min(percentage, decimal.NewFromInt(100)), true
}
