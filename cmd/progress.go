package cmd

import (
	"io"
	"math"

	"github.com/crytic/seqenum/planning"
	"github.com/holiman/uint256"
	"github.com/schollz/progressbar/v3"
)

// attachProgressBar subscribes a progress bar rendered to the provided writer to the events of a planner. The bar
// tracks the cumulative amount of sequences of the run against the size of its enumeration space. Spaces too large
// for the bar are tracked as a spinner instead.
func attachProgressBar(planner *planning.Planner, w io.Writer) {
	var bar *progressbar.ProgressBar

	// Create the bar once the planner knows the size of its space and how far the run already went
	planner.Events.PlannerStarting.Subscribe(func(event planning.PlannerStartingEvent) error {
		metrics := event.Planner.Metrics()
		bar = progressbar.NewOptions64(progressBarMax(metrics.SpaceSize()),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("enumerating"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionClearOnFinish(),
		)
		return bar.Set64(int64(metrics.TotalIterated()))
	})

	// Advance the bar with every sequence
	planner.Events.SequenceGenerated.Subscribe(func(event planning.SequenceGeneratedEvent) error {
		return bar.Add64(1)
	})

	// Tear the bar down before the planner logs its summary
	planner.Events.PlannerStopping.Subscribe(func(event planning.PlannerStoppingEvent) error {
		if bar == nil {
			return nil
		}
		if event.Exhausted {
			return bar.Finish()
		}

		// Leave the bar at its current state
		_, err := io.WriteString(w, "\n")
		return err
	})
}

// progressBarMax returns the maximum of a progress bar tracking an enumeration space of the provided size, or -1 if the
// size is unknown or does not fit an int64.
func progressBarMax(spaceSize *uint256.Int) int64 {
	if spaceSize == nil || !spaceSize.IsUint64() || spaceSize.Uint64() > math.MaxInt64 {
		return -1
	}
	return int64(spaceSize.Uint64())
}
